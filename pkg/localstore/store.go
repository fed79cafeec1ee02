package localstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	_ "modernc.org/sqlite"

	"gitlab.com/pala-software/livelist/pkg/livelist"
)

var ErrStoreClosed = errors.New("store closed")

// Store is an embedded single-file database holding named lists of keyed
// JSON rows. Mutations update the lists opened from the store and notify
// their listeners synchronously, before the mutating call returns.
type Store struct {
	db *sql.DB

	mu     sync.Mutex
	lists  map[string][]*List
	closed bool
}

// Open creates or opens the database file at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer at a time; a single connection avoids
	// busy errors.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(
		`CREATE TABLE IF NOT EXISTS rows (
			list TEXT NOT NULL,
			key TEXT NOT NULL,
			data TEXT NOT NULL,
			PRIMARY KEY (list, key)
		)`,
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:    db,
		lists: map[string][]*List{},
	}, nil
}

// List opens a live collection over one named list, ordered by key.
func (store *Store) List(name string) (*List, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.closed {
		return nil, ErrStoreClosed
	}

	rows, err := store.db.Query(
		`SELECT key, data FROM rows WHERE list = ? ORDER BY key`,
		name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := &List{
		store:     store,
		name:      name,
		listeners: map[int]livelist.Listener{},
	}
	for rows.Next() {
		var key, data string
		err = rows.Scan(&key, &data)
		if err != nil {
			return nil, err
		}
		list.rows = append(list.rows, livelist.Row{
			Key:  key,
			Data: json.RawMessage(data),
		})
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}

	store.lists[name] = append(store.lists[name], list)
	return list, nil
}

// Put inserts or replaces the row at key. Open lists are notified unless
// the stored data is unchanged.
func (store *Store) Put(name, key string, data json.RawMessage) error {
	store.mu.Lock()
	if store.closed {
		store.mu.Unlock()
		return ErrStoreClosed
	}

	_, err := store.db.Exec(
		`INSERT INTO rows (list, key, data) VALUES (?, ?, ?)
		ON CONFLICT (list, key) DO UPDATE SET data = excluded.data`,
		name,
		key,
		string(data),
	)
	if err != nil {
		store.mu.Unlock()
		return err
	}

	var dispatch []func()
	for _, list := range store.lists[name] {
		if notify := list.put(key, data); notify != nil {
			dispatch = append(dispatch, notify)
		}
	}
	store.mu.Unlock()

	for _, notify := range dispatch {
		notify()
	}
	return nil
}

// Delete removes the row at key, if present.
func (store *Store) Delete(name, key string) error {
	store.mu.Lock()
	if store.closed {
		store.mu.Unlock()
		return ErrStoreClosed
	}

	_, err := store.db.Exec(
		`DELETE FROM rows WHERE list = ? AND key = ?`,
		name,
		key,
	)
	if err != nil {
		store.mu.Unlock()
		return err
	}

	var dispatch []func()
	for _, list := range store.lists[name] {
		if notify := list.delete(key); notify != nil {
			dispatch = append(dispatch, notify)
		}
	}
	store.mu.Unlock()

	for _, notify := range dispatch {
		notify()
	}
	return nil
}

// Close closes the database and invalidates every open list. Lists stop
// notifying without a final event.
func (store *Store) Close() error {
	store.mu.Lock()
	if store.closed {
		store.mu.Unlock()
		return nil
	}
	store.closed = true
	lists := store.lists
	store.lists = map[string][]*List{}
	store.mu.Unlock()

	for _, open := range lists {
		for _, list := range open {
			list.invalidate()
		}
	}
	return store.db.Close()
}

func (store *Store) unregister(list *List) {
	store.mu.Lock()
	defer store.mu.Unlock()
	open := store.lists[list.name]
	for index, candidate := range open {
		if candidate == list {
			store.lists[list.name] = append(open[:index:index], open[index+1:]...)
			break
		}
	}
	if len(store.lists[list.name]) == 0 {
		delete(store.lists, list.name)
	}
}
