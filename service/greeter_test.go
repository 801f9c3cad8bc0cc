package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greeter"
	"greeter/inmem"
	"greeter/service"
)

func newService(t *testing.T) (*service.GreeterService, *inmem.DB) {
	t.Helper()
	db := inmem.NewDB()
	return service.NewGreeterService(db), db
}

func mustSave(t *testing.T, s *service.GreeterService, first, last, salutation string) *greeter.GreeterDTO {
	t.Helper()
	dto, err := s.Save(context.Background(), greeter.GreeterDTO{FirstName: first, LastName: last, Salutation: salutation})
	require.NoError(t, err)
	return dto
}

func TestGreeterService_Save(t *testing.T) {
	t.Run("Insert", func(t *testing.T) {
		s, db := newService(t)
		ctx := context.Background()

		in := greeter.GreeterDTO{FirstName: "Jane", LastName: "Doe", Salutation: "Dr."}
		out, err := s.Save(ctx, in)
		require.NoError(t, err)
		require.NotNil(t, out.ID)
		assert.Equal(t, 1, db.Len())

		found, err := s.FindOne(ctx, *out.ID)
		require.NoError(t, err)
		assert.Equal(t, in.FirstName, found.FirstName)
		assert.Equal(t, in.LastName, found.LastName)
		assert.Equal(t, in.Salutation, found.Salutation)
	})

	t.Run("UpdateInPlace", func(t *testing.T) {
		s, db := newService(t)
		ctx := context.Background()

		saved := mustSave(t, s, "AAAAAAAAAA", "AAAAAAAAAA", "AAAAAAAAAA")
		mustSave(t, s, "Other", "Greeter", "Hi")

		updated, err := s.Save(ctx, greeter.GreeterDTO{ID: saved.ID, FirstName: "BBBBBBBBBB", LastName: "BBBBBBBBBB", Salutation: "BBBBBBBBBB"})
		require.NoError(t, err)
		assert.Equal(t, *saved.ID, *updated.ID)
		assert.Equal(t, 2, db.Len())

		found, err := s.FindOne(ctx, *saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "BBBBBBBBBB", found.FirstName)
		assert.Equal(t, "BBBBBBBBBB", found.LastName)
		assert.Equal(t, "BBBBBBBBBB", found.Salutation)
	})

	t.Run("UpdateNonExisting", func(t *testing.T) {
		s, db := newService(t)
		id := int64(999)

		_, err := s.Save(context.Background(), greeter.GreeterDTO{ID: &id, FirstName: "a", LastName: "b", Salutation: "c"})
		assert.Equal(t, greeter.ENOTFOUND, greeter.ErrorCode(err))
		assert.Equal(t, 0, db.Len())
	})

	t.Run("UpdateZeroID", func(t *testing.T) {
		s, db := newService(t)
		mustSave(t, s, "Jane", "Doe", "Dr.")
		id := int64(0)

		_, err := s.Save(context.Background(), greeter.GreeterDTO{ID: &id, FirstName: "a", LastName: "b", Salutation: "c"})
		assert.Equal(t, greeter.ENOTFOUND, greeter.ErrorCode(err))
		assert.Equal(t, 1, db.Len())
	})
}

func TestGreeterService_FindAll(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Len(t, all, 0)

	a := mustSave(t, s, "Jane", "Doe", "Dr.")
	b := mustSave(t, s, "John", "Roe", "Mr.")

	all, err = s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].Equal(*a))
	assert.True(t, all[1].Equal(*b))
}

func TestGreeterService_FindOne_NotFound(t *testing.T) {
	s, _ := newService(t)

	_, err := s.FindOne(context.Background(), 999999999)
	assert.Equal(t, greeter.ENOTFOUND, greeter.ErrorCode(err))
}

func TestGreeterService_Delete(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()

	saved := mustSave(t, s, "Jane", "Doe", "Dr.")
	require.NoError(t, s.Delete(ctx, *saved.ID))
	assert.Equal(t, 0, db.Len())

	_, err := s.FindOne(ctx, *saved.ID)
	assert.Equal(t, greeter.ENOTFOUND, greeter.ErrorCode(err))

	// Deleting again is not an error.
	assert.NoError(t, s.Delete(ctx, *saved.ID))
}

func TestGreeterService_FindGreeter(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	mustSave(t, s, "Jane", "Roe", "Ms.")
	want := mustSave(t, s, "Jane", "Doe", "Dr.")
	mustSave(t, s, "Jane", "Doe", "Prof.")

	found, err := s.FindGreeter(ctx, "Jane", "Doe")
	require.NoError(t, err)
	assert.True(t, found.Equal(*want))

	_, err = s.FindGreeter(ctx, "John", "Doe")
	assert.Equal(t, greeter.ENOTFOUND, greeter.ErrorCode(err))
}

func TestGreeterService_FindFirstByOrderByLastNameAsc(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	_, err := s.FindFirstByOrderByLastNameAsc(ctx)
	assert.Equal(t, greeter.ENOTFOUND, greeter.ErrorCode(err))

	mustSave(t, s, "Zed", "Zimmer", "Hey")
	want := mustSave(t, s, "Amy", "Adams", "Hi")
	mustSave(t, s, "Bob", "Baker", "Yo")

	found, err := s.FindFirstByOrderByLastNameAsc(ctx)
	require.NoError(t, err)
	assert.Equal(t, *want.ID, *found.ID)
	assert.Equal(t, "Adams", found.LastName)
}

// Ensure each operation opens the right kind of transaction.
func TestGreeterService_TransactionScopes(t *testing.T) {
	store := &recordingStore{GreeterStore: inmem.NewDB()}
	s := service.NewGreeterService(store)
	ctx := context.Background()

	saved, err := s.Save(ctx, greeter.GreeterDTO{FirstName: "Jane", LastName: "Doe", Salutation: "Dr."})
	require.NoError(t, err)
	_, _ = s.FindAll(ctx)
	_, _ = s.FindOne(ctx, *saved.ID)
	_, _ = s.FindGreeter(ctx, "Jane", "Doe")
	_, _ = s.FindFirstByOrderByLastNameAsc(ctx)
	require.NoError(t, s.Delete(ctx, *saved.ID))

	assert.Equal(t, []string{"update", "view", "view", "view", "view", "update"}, store.calls)
}

func TestGreeterService_StoreError(t *testing.T) {
	boom := errors.New("connection refused")
	s := service.NewGreeterService(&failingStore{err: boom})
	ctx := context.Background()

	_, err := s.Save(ctx, greeter.GreeterDTO{FirstName: "Jane", LastName: "Doe", Salutation: "Dr."})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, greeter.EINTERNAL, greeter.ErrorCode(err))

	_, err = s.FindAll(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Delete(ctx, 1), boom)
}

type recordingStore struct {
	greeter.GreeterStore
	calls []string
}

func (s *recordingStore) View(ctx context.Context, fn func(repo greeter.GreeterRepository) error) error {
	s.calls = append(s.calls, "view")
	return s.GreeterStore.View(ctx, fn)
}

func (s *recordingStore) Update(ctx context.Context, fn func(repo greeter.GreeterRepository) error) error {
	s.calls = append(s.calls, "update")
	return s.GreeterStore.Update(ctx, fn)
}

type failingStore struct {
	err error
}

func (s *failingStore) View(context.Context, func(repo greeter.GreeterRepository) error) error {
	return s.err
}

func (s *failingStore) Update(context.Context, func(repo greeter.GreeterRepository) error) error {
	return s.err
}
