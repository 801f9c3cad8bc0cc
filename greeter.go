package greeter

import (
	"context"
	"fmt"
)

// EntityName is the name used for greeters in alerts and error payloads.
const EntityName = "greeter"

// Greeter represents a stored greeter row. A zero ID means the greeter has
// never been persisted; storage assigns the ID on first save.
type Greeter struct {
	ID int64 `db:"id,omitempty"`

	FirstName  string `db:"first_name"`
	LastName   string `db:"last_name"`
	Salutation string `db:"salutation"`
}

// Fields returns the greeter's data fields without its identity.
func (g *Greeter) Fields() Fields {
	return Fields{
		FirstName:  g.FirstName,
		LastName:   g.LastName,
		Salutation: g.Salutation,
	}
}

// Draft returns the write-path variant of the greeter: Unsaved if it has no
// ID yet, Saved otherwise.
func (g *Greeter) Draft() Draft {
	if g.ID == 0 {
		return Unsaved{Fields: g.Fields()}
	}
	return Saved{ID: g.ID, Fields: g.Fields()}
}

// Equal reports whether g and other are the same stored greeter. Greeters
// without an ID are only equal to themselves.
func (g *Greeter) Equal(other *Greeter) bool {
	if g == nil || other == nil {
		return false
	} else if g == other {
		return true
	}
	return g.ID != 0 && g.ID == other.ID
}

func (g *Greeter) String() string {
	return fmt.Sprintf("Greeter{id=%d, firstName='%s', lastName='%s', salutation='%s'}",
		g.ID, g.FirstName, g.LastName, g.Salutation)
}

// GreeterDTO is the boundary representation of a greeter. ID is nil until the
// greeter has been persisted.
type GreeterDTO struct {
	ID *int64 `json:"id"`

	FirstName  string `json:"firstName" validate:"required,min=1,max=25"`
	LastName   string `json:"lastName" validate:"required,min=1,max=25"`
	Salutation string `json:"salutation" validate:"required,min=1,max=255"`
}

// Equal reports whether both DTOs carry the same non-nil ID.
func (d GreeterDTO) Equal(other GreeterDTO) bool {
	return d.ID != nil && other.ID != nil && *d.ID == *other.ID
}

func (d GreeterDTO) String() string {
	id := "null"
	if d.ID != nil {
		id = fmt.Sprint(*d.ID)
	}
	return fmt.Sprintf("GreeterDTO{id=%s, firstName='%s', lastName='%s', salutation='%s'}",
		id, d.FirstName, d.LastName, d.Salutation)
}

// Fields holds the data columns shared by both Draft variants.
type Fields struct {
	FirstName  string
	LastName   string
	Salutation string
}

// Draft is a greeter about to be written. It is either Unsaved (insert) or
// Saved (update in place).
type Draft interface {
	draft()
}

// Unsaved is a greeter that has never been persisted.
type Unsaved struct {
	Fields
}

// Saved is a greeter that already owns a storage ID.
type Saved struct {
	ID int64
	Fields
}

func (Unsaved) draft() {}
func (Saved) draft()   {}

// GreeterService represents a service for managing greeters.
type GreeterService interface {
	// Persists a greeter. Inserts when dto.ID is nil and updates in place
	// otherwise. Returns ENOTFOUND when updating a greeter that does not exist.
	// The returned DTO always carries an ID.
	Save(ctx context.Context, dto GreeterDTO) (*GreeterDTO, error)

	// Retrieves every greeter ordered by ID.
	FindAll(ctx context.Context) ([]*GreeterDTO, error)

	// Retrieves a greeter by ID. Returns ENOTFOUND if it does not exist.
	FindOne(ctx context.Context, id int64) (*GreeterDTO, error)

	// Permanently deletes a greeter. Deleting a missing greeter is not an error.
	Delete(ctx context.Context, id int64) error
}

// GreeterMiddleware describes a service (as opposed to endpoint) middleware for the GreeterService.
type GreeterMiddleware func(service GreeterService) GreeterService

// GreeterRepository is the persistence boundary for greeters. A repository is
// always bound to a single open transaction.
type GreeterRepository interface {
	// Inserts an Unsaved draft and assigns its ID, or updates the row of a
	// Saved draft. Returns ENOTFOUND if a Saved draft matches no row.
	Save(ctx context.Context, draft Draft) (*Greeter, error)

	// Returns every greeter ordered by ID.
	FindAll(ctx context.Context) ([]*Greeter, error)

	// Returns ENOTFOUND if the greeter does not exist.
	FindByID(ctx context.Context, id int64) (*Greeter, error)

	// Removes the greeter. No-op if it does not exist.
	DeleteByID(ctx context.Context, id int64) error

	// Returns the greeter matching both names exactly, lowest ID first.
	// Returns ENOTFOUND if there is none.
	FindGreeter(ctx context.Context, firstName, lastName string) (*Greeter, error)

	// Returns the greeter with the lexicographically smallest last name.
	// Returns ENOTFOUND if there are no greeters.
	FindFirstByOrderByLastNameAsc(ctx context.Context) (*Greeter, error)
}

// GreeterStore opens transaction scopes around a GreeterRepository. The
// transaction commits only if fn returns nil and is rolled back on every
// other exit path.
type GreeterStore interface {
	// View runs fn inside a read-only transaction.
	View(ctx context.Context, fn func(repo GreeterRepository) error) error

	// Update runs fn inside a read-write transaction.
	Update(ctx context.Context, fn func(repo GreeterRepository) error) error
}
