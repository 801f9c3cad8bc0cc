// Package service implements greeter.GreeterService on top of a
// greeter.GreeterStore. Every method runs in exactly one transaction scope.
package service

import (
	"context"

	"greeter"
)

// GreeterService maps DTOs to entities and delegates storage to the store.
type GreeterService struct {
	store greeter.GreeterStore
}

// NewGreeterService returns a new instance of GreeterService attached to store.
func NewGreeterService(store greeter.GreeterStore) *GreeterService {
	return &GreeterService{store: store}
}

// Save persists dto in a read-write transaction. Inserts when dto has no ID,
// updates in place otherwise. No validation is performed here.
func (s *GreeterService) Save(ctx context.Context, dto greeter.GreeterDTO) (*greeter.GreeterDTO, error) {
	draft := greeter.ToDraft(&dto)

	var saved *greeter.Greeter
	if err := s.store.Update(ctx, func(repo greeter.GreeterRepository) (err error) {
		saved, err = repo.Save(ctx, draft)
		return err
	}); err != nil {
		return nil, err
	}
	return greeter.ToDTO(saved), nil
}

// FindAll returns every greeter in repository order.
func (s *GreeterService) FindAll(ctx context.Context) ([]*greeter.GreeterDTO, error) {
	var greeters []*greeter.Greeter
	if err := s.store.View(ctx, func(repo greeter.GreeterRepository) (err error) {
		greeters, err = repo.FindAll(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	return greeter.ToDTOs(greeters), nil
}

// FindOne returns ENOTFOUND if the greeter does not exist.
func (s *GreeterService) FindOne(ctx context.Context, id int64) (*greeter.GreeterDTO, error) {
	return s.view(ctx, func(repo greeter.GreeterRepository) (*greeter.Greeter, error) {
		return repo.FindByID(ctx, id)
	})
}

// Delete removes the greeter. Deleting a missing greeter succeeds.
func (s *GreeterService) Delete(ctx context.Context, id int64) error {
	return s.store.Update(ctx, func(repo greeter.GreeterRepository) error {
		return repo.DeleteByID(ctx, id)
	})
}

// FindGreeter returns the greeter matching both names exactly.
// Returns ENOTFOUND if there is none.
func (s *GreeterService) FindGreeter(ctx context.Context, firstName, lastName string) (*greeter.GreeterDTO, error) {
	return s.view(ctx, func(repo greeter.GreeterRepository) (*greeter.Greeter, error) {
		return repo.FindGreeter(ctx, firstName, lastName)
	})
}

// FindFirstByOrderByLastNameAsc returns the greeter whose last name sorts
// first. Returns ENOTFOUND if there are no greeters.
func (s *GreeterService) FindFirstByOrderByLastNameAsc(ctx context.Context) (*greeter.GreeterDTO, error) {
	return s.view(ctx, func(repo greeter.GreeterRepository) (*greeter.Greeter, error) {
		return repo.FindFirstByOrderByLastNameAsc(ctx)
	})
}

// view runs a single-greeter lookup in a read-only transaction.
func (s *GreeterService) view(ctx context.Context, find func(repo greeter.GreeterRepository) (*greeter.Greeter, error)) (*greeter.GreeterDTO, error) {
	var g *greeter.Greeter
	if err := s.store.View(ctx, func(repo greeter.GreeterRepository) (err error) {
		g, err = find(repo)
		return err
	}); err != nil {
		return nil, err
	}
	return greeter.ToDTO(g), nil
}
