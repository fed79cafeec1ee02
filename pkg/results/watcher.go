package results

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"gitlab.com/pala-software/livelist/pkg/livelist"
)

const notificationChannel = "livelist_change"

type watcherError struct {
	message string
}

func (err watcherError) Error() string {
	return err.message
}

func (err watcherError) Message() string {
	return err.message
}

func (watcherError) Status() int {
	return 503
}

var ErrWatcherClosed = &watcherError{message: "watcher closed"}

// Watcher keeps the result collections opened through it fresh. One
// connection from the pool is parked on LISTEN; every notification names
// a changed table and schedules a requery of the collections watching
// it. After a reconnect every collection is requeried, since
// notifications may have been missed in between.
type Watcher struct {
	pool *pgxpool.Pool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	open    map[string][]*Results
	started bool
	closed  bool
}

func NewWatcher(pool *pgxpool.Pool) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		pool:   pool,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		open:   map[string][]*Results{},
	}
}

// Start launches the notification listener. Collections opened before
// Start are usable, they just don't see changes yet.
func (watcher *Watcher) Start() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.started || watcher.closed {
		return
	}
	watcher.started = true
	go watcher.listen()
}

// Open loads a live collection over one table, narrowed down by where.
// Rows are ordered by the key column cast to text under C collation.
func (watcher *Watcher) Open(
	ctx context.Context,
	schema string,
	table string,
	keyColumn string,
	where livelist.Where,
) (*Results, error) {
	results := &Results{
		watcher:   watcher,
		schema:    schema,
		table:     table,
		keyColumn: keyColumn,
		where:     where,
		listeners: map[int]*resultsListener{},
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	// Register before the snapshot query so that a change landing during
	// the query schedules a refresh instead of going unseen.
	watcher.mu.Lock()
	if watcher.closed {
		watcher.mu.Unlock()
		return nil, ErrWatcherClosed
	}
	key := schema + "." + table
	watcher.open[key] = append(watcher.open[key], results)
	watcher.mu.Unlock()

	rows, err := results.query(ctx)
	if err != nil {
		watcher.unregister(results)
		return nil, err
	}
	results.rows = rows

	go results.run()
	return results, nil
}

// Close invalidates every open collection and stops the listener.
func (watcher *Watcher) Close() error {
	watcher.mu.Lock()
	if watcher.closed {
		watcher.mu.Unlock()
		return nil
	}
	watcher.closed = true
	started := watcher.started
	open := watcher.open
	watcher.open = map[string][]*Results{}
	watcher.mu.Unlock()

	watcher.cancel()
	if started {
		<-watcher.done
	}

	for _, list := range open {
		for _, results := range list {
			results.invalidate()
		}
	}
	return nil
}

func (watcher *Watcher) unregister(results *Results) {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	key := results.schema + "." + results.table
	open := watcher.open[key]
	for index, candidate := range open {
		if candidate == results {
			watcher.open[key] = slices.Delete(open, index, index+1)
			break
		}
	}
	if len(watcher.open[key]) == 0 {
		delete(watcher.open, key)
	}
}

func (watcher *Watcher) listen() {
	defer close(watcher.done)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0

	for {
		err := watcher.consume(policy)
		if watcher.ctx.Err() != nil {
			return
		}
		if err != nil {
			fmt.Println(err)
		}

		select {
		case <-watcher.ctx.Done():
			return
		case <-time.After(policy.NextBackOff()):
		}
	}
}

func (watcher *Watcher) consume(policy *backoff.ExponentialBackOff) error {
	conn, err := watcher.pool.Acquire(watcher.ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(watcher.ctx, "LISTEN "+notificationChannel)
	if err != nil {
		return err
	}
	policy.Reset()

	// Catch up on anything that changed while not listening.
	watcher.refreshAll()

	for {
		notification, err := conn.Conn().WaitForNotification(watcher.ctx)
		if err != nil {
			return err
		}
		watcher.refreshTable(notification.Payload)
	}
}

func (watcher *Watcher) refreshTable(table string) {
	watcher.mu.Lock()
	open := slices.Clone(watcher.open[table])
	watcher.mu.Unlock()

	for _, results := range open {
		results.scheduleRefresh()
	}
}

func (watcher *Watcher) refreshAll() {
	watcher.mu.Lock()
	var open []*Results
	for _, list := range watcher.open {
		open = append(open, list...)
	}
	watcher.mu.Unlock()

	for _, results := range open {
		results.scheduleRefresh()
	}
}
