package results

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"gitlab.com/pala-software/livelist/pkg/livelist"
)

// Results is a live collection over one table. Reads are safe from any
// goroutine. Change notifications are delivered on a dispatch goroutine
// owned by the collection, one at a time, after the snapshot already
// reflects the change.
type Results struct {
	watcher   *Watcher
	schema    string
	table     string
	keyColumn string
	where     livelist.Where

	wake chan struct{}
	done chan struct{}

	mu        sync.Mutex
	rows      []livelist.Row
	listeners map[int]*resultsListener
	nextID    int
	tasks     []func()
	closed    bool
}

// resultsListener defers delta delivery until the listener has received
// its initial notification on the dispatch goroutine.
type resultsListener struct {
	notify livelist.Listener
	ready  bool
}

func (results *Results) Len() int {
	results.mu.Lock()
	defer results.mu.Unlock()
	return len(results.rows)
}

func (results *Results) Item(index int) (livelist.Row, bool) {
	results.mu.Lock()
	defer results.mu.Unlock()
	if index < 0 || index >= len(results.rows) {
		return livelist.Row{}, false
	}
	return results.rows[index], true
}

func (results *Results) Valid() bool {
	results.mu.Lock()
	defer results.mu.Unlock()
	return !results.closed
}

func (results *Results) Subscribe(listener livelist.Listener) livelist.Subscription {
	results.mu.Lock()
	if results.closed {
		results.mu.Unlock()
		return livelist.SubscriptionFunc(func() {})
	}
	id := results.nextID
	results.nextID++
	entry := &resultsListener{notify: listener}
	results.listeners[id] = entry
	results.mu.Unlock()

	results.schedule(func() {
		results.mu.Lock()
		_, active := results.listeners[id]
		if active {
			entry.ready = true
		}
		results.mu.Unlock()
		if active {
			listener(nil)
		}
	})

	return livelist.SubscriptionFunc(func() {
		results.mu.Lock()
		delete(results.listeners, id)
		results.mu.Unlock()
	})
}

// Close invalidates the collection and detaches it from its watcher.
func (results *Results) Close() error {
	results.watcher.unregister(results)
	results.invalidate()
	return nil
}

func (results *Results) Details() map[string]string {
	details := map[string]string{
		"schema": results.schema,
		"table":  results.table,
		"key":    results.keyColumn,
	}
	results.where.AddDetails(details)
	return details
}

func (results *Results) invalidate() {
	results.mu.Lock()
	if results.closed {
		results.mu.Unlock()
		return
	}
	results.closed = true
	results.listeners = map[int]*resultsListener{}
	results.tasks = nil
	results.mu.Unlock()

	close(results.done)
}

func (results *Results) schedule(task func()) {
	results.mu.Lock()
	if results.closed {
		results.mu.Unlock()
		return
	}
	results.tasks = append(results.tasks, task)
	results.mu.Unlock()

	select {
	case results.wake <- struct{}{}:
	default:
	}
}

func (results *Results) scheduleRefresh() {
	results.schedule(results.refresh)
}

func (results *Results) run() {
	for {
		select {
		case <-results.done:
			return
		case <-results.wake:
			for {
				results.mu.Lock()
				tasks := results.tasks
				results.tasks = nil
				results.mu.Unlock()

				if len(tasks) == 0 {
					break
				}
				for _, task := range tasks {
					task()
				}
			}
		}
	}
}

func (results *Results) refresh() {
	snapshot, err := results.query(results.watcher.ctx)
	if err != nil {
		// Keep the last known state. The next notification or reconnect
		// tries again.
		fmt.Println(err)
		return
	}

	results.mu.Lock()
	if results.closed {
		results.mu.Unlock()
		return
	}
	changes := diffRows(results.rows, snapshot)
	results.rows = snapshot
	listeners := make([]livelist.Listener, 0, len(results.listeners))
	for _, entry := range results.listeners {
		// Listeners waiting for their initial notification pick this
		// change up from the snapshot instead.
		if entry.ready {
			listeners = append(listeners, entry.notify)
		}
	}
	results.mu.Unlock()

	if changes.IsEmpty() {
		return
	}
	for _, listener := range listeners {
		listener(changes)
	}
}

func (results *Results) query(ctx context.Context) ([]livelist.Row, error) {
	keyIdent := pgx.Identifier{"t", results.keyColumn}.Sanitize()
	rows, err := results.watcher.pool.Query(
		ctx,
		fmt.Sprintf(
			`SELECT %s::text, to_json(t) FROM %s AS t %s ORDER BY %s::text COLLATE "C"`,
			keyIdent,
			pgx.Identifier{results.schema, results.table}.Sanitize(),
			results.where.String("t", 1),
			keyIdent,
		),
		results.where.Values()...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshot []livelist.Row
	for rows.Next() {
		var row livelist.Row
		err = rows.Scan(&row.Key, &row.Data)
		if err != nil {
			return nil, err
		}
		snapshot = append(snapshot, row)
	}
	return snapshot, rows.Err()
}
