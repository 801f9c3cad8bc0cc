// Package inmem implements greeter.GreeterStore in process memory. Write
// transactions are serialised and applied copy-on-write so a failed callback
// leaves the store untouched.
package inmem

import (
	"context"
	"sort"
	"sync"

	"greeter"
)

// DB is an in-memory greeter store.
type DB struct {
	mu     sync.RWMutex
	writes sync.Mutex // serialises Update
	rows   map[int64]greeter.Greeter
	seq    int64
}

// NewDB returns an empty store.
func NewDB() *DB {
	return &DB{rows: make(map[int64]greeter.Greeter)}
}

// Len returns the number of stored greeters.
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.rows)
}

// View runs fn against a snapshot of the store. Writes are rejected.
func (db *DB) View(ctx context.Context, fn func(repo greeter.GreeterRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&repository{tx: db.snapshot(), readOnly: true})
}

// Update runs fn against a private copy of the store and swaps it in if fn
// returns nil.
func (db *DB) Update(ctx context.Context, fn func(repo greeter.GreeterRepository) error) error {
	db.writes.Lock()
	defer db.writes.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := db.snapshot()
	if err := fn(&repository{tx: tx}); err != nil {
		return err
	}

	db.mu.Lock()
	db.rows, db.seq = tx.rows, tx.seq
	db.mu.Unlock()
	return nil
}

func (db *DB) snapshot() *tx {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows := make(map[int64]greeter.Greeter, len(db.rows))
	for id, g := range db.rows {
		rows[id] = g
	}
	return &tx{rows: rows, seq: db.seq}
}

// tx is the working copy a transaction operates on.
type tx struct {
	rows map[int64]greeter.Greeter
	seq  int64
}

// sorted returns copies of the rows ordered by less.
func (tx *tx) sorted(less func(a, b *greeter.Greeter) bool) []*greeter.Greeter {
	a := make([]*greeter.Greeter, 0, len(tx.rows))
	for _, g := range tx.rows {
		g := g
		a = append(a, &g)
	}
	sort.Slice(a, func(i, j int) bool { return less(a[i], a[j]) })
	return a
}

func byID(a, b *greeter.Greeter) bool { return a.ID < b.ID }

type repository struct {
	tx       *tx
	readOnly bool
}

func (r *repository) Save(_ context.Context, draft greeter.Draft) (*greeter.Greeter, error) {
	if r.readOnly {
		return nil, greeter.Errorf(greeter.EINTERNAL, "Cannot write in a read-only transaction.")
	}

	switch d := draft.(type) {
	case greeter.Unsaved:
		r.tx.seq++
		g := greeter.Greeter{
			ID:         r.tx.seq,
			FirstName:  d.FirstName,
			LastName:   d.LastName,
			Salutation: d.Salutation,
		}
		r.tx.rows[g.ID] = g
		return &g, nil

	case greeter.Saved:
		if _, ok := r.tx.rows[d.ID]; !ok {
			return nil, greeter.Errorf(greeter.ENOTFOUND, "Greeter not found.")
		}
		g := greeter.Greeter{
			ID:         d.ID,
			FirstName:  d.FirstName,
			LastName:   d.LastName,
			Salutation: d.Salutation,
		}
		r.tx.rows[g.ID] = g
		return &g, nil
	}
	return nil, greeter.Errorf(greeter.EINTERNAL, "Unknown draft type %T.", draft)
}

func (r *repository) FindAll(_ context.Context) ([]*greeter.Greeter, error) {
	return r.tx.sorted(byID), nil
}

func (r *repository) FindByID(_ context.Context, id int64) (*greeter.Greeter, error) {
	g, ok := r.tx.rows[id]
	if !ok {
		return nil, greeter.Errorf(greeter.ENOTFOUND, "Greeter not found.")
	}
	return &g, nil
}

func (r *repository) DeleteByID(_ context.Context, id int64) error {
	if r.readOnly {
		return greeter.Errorf(greeter.EINTERNAL, "Cannot write in a read-only transaction.")
	}
	delete(r.tx.rows, id)
	return nil
}

func (r *repository) FindGreeter(_ context.Context, firstName, lastName string) (*greeter.Greeter, error) {
	for _, g := range r.tx.sorted(byID) {
		if g.FirstName == firstName && g.LastName == lastName {
			return g, nil
		}
	}
	return nil, greeter.Errorf(greeter.ENOTFOUND, "Greeter not found.")
}

func (r *repository) FindFirstByOrderByLastNameAsc(_ context.Context) (*greeter.Greeter, error) {
	a := r.tx.sorted(func(a, b *greeter.Greeter) bool {
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.ID < b.ID
	})
	if len(a) == 0 {
		return nil, greeter.Errorf(greeter.ENOTFOUND, "Greeter not found.")
	}
	return a[0], nil
}
