package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"greeter"
)

// greeterTable is the table holding greeter rows.
const greeterTable = "greeter"

// GreeterRepository implements greeter.GreeterRepository on top of an open transaction.
type GreeterRepository struct {
	tx *Tx
}

// Save inserts an Unsaved draft or updates the row of a Saved draft.
// Returns ENOTFOUND if a Saved draft matches no row.
func (r *GreeterRepository) Save(ctx context.Context, draft greeter.Draft) (*greeter.Greeter, error) {
	switch d := draft.(type) {
	case greeter.Unsaved:
		g := &greeter.Greeter{
			FirstName:  d.FirstName,
			LastName:   d.LastName,
			Salutation: d.Salutation,
		}
		if err := r.tx.insert(ctx, g, greeterTable); err != nil {
			return nil, fmt.Errorf("insert greeter: %w", err)
		}
		return g, nil

	case greeter.Saved:
		g := &greeter.Greeter{
			ID:         d.ID,
			FirstName:  d.FirstName,
			LastName:   d.LastName,
			Salutation: d.Salutation,
		}
		if err := r.tx.update(ctx, g, greeterTable); err != nil {
			if greeter.ErrorCode(err) == greeter.ENOTFOUND {
				return nil, greeter.Errorf(greeter.ENOTFOUND, "Greeter not found.")
			}
			return nil, fmt.Errorf("update greeter: %w", err)
		}
		return g, nil
	}
	return nil, greeter.Errorf(greeter.EINTERNAL, "Unknown draft type %T.", draft)
}

// FindAll returns every greeter ordered by ID.
func (r *GreeterRepository) FindAll(ctx context.Context) ([]*greeter.Greeter, error) {
	greeters := make([]*greeter.Greeter, 0)
	if err := r.tx.SelectContext(ctx, &greeters, `
		SELECT id, first_name, last_name, salutation
		FROM greeter
		ORDER BY id`,
	); err != nil {
		return nil, err
	}
	return greeters, nil
}

// FindByID returns ENOTFOUND if the greeter does not exist.
func (r *GreeterRepository) FindByID(ctx context.Context, id int64) (*greeter.Greeter, error) {
	return r.tx.findGreeter(ctx, `
		SELECT id, first_name, last_name, salutation
		FROM greeter
		WHERE id = $1`,
		id,
	)
}

// DeleteByID removes the greeter. Missing rows are ignored.
func (r *GreeterRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.tx.ExecContext(ctx, `DELETE FROM greeter WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete greeter: %w", err)
	}
	return nil
}

// FindGreeter returns the greeter matching both names, lowest ID first.
func (r *GreeterRepository) FindGreeter(ctx context.Context, firstName, lastName string) (*greeter.Greeter, error) {
	return r.tx.findGreeter(ctx, `
		SELECT id, first_name, last_name, salutation
		FROM greeter
		WHERE first_name = $1 AND last_name = $2
		ORDER BY id
		LIMIT 1`,
		firstName, lastName,
	)
}

// FindFirstByOrderByLastNameAsc returns the greeter with the smallest last name.
func (r *GreeterRepository) FindFirstByOrderByLastNameAsc(ctx context.Context) (*greeter.Greeter, error) {
	return r.tx.findGreeter(ctx, `
		SELECT id, first_name, last_name, salutation
		FROM greeter
		ORDER BY last_name ASC, id ASC
		LIMIT 1`,
	)
}

// findGreeter is a helper function to fetch a single greeter with query.
// Returns ENOTFOUND if no row matches.
func (tx *Tx) findGreeter(ctx context.Context, query string, args ...interface{}) (*greeter.Greeter, error) {
	var g greeter.Greeter

	if err := tx.GetContext(ctx, &g, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &greeter.Error{Code: greeter.ENOTFOUND, Message: "Greeter not found."}
		}
		return nil, err
	}
	return &g, nil
}
