package greeter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greeter"
)

func TestToDTO(t *testing.T) {
	t.Run("Saved", func(t *testing.T) {
		dto := greeter.ToDTO(&greeter.Greeter{ID: 3, FirstName: "Jane", LastName: "Doe", Salutation: "Dr."})
		require.NotNil(t, dto.ID)
		assert.Equal(t, int64(3), *dto.ID)
		assert.Equal(t, "Jane", dto.FirstName)
		assert.Equal(t, "Doe", dto.LastName)
		assert.Equal(t, "Dr.", dto.Salutation)
	})

	t.Run("Unsaved", func(t *testing.T) {
		dto := greeter.ToDTO(&greeter.Greeter{FirstName: "Jane"})
		assert.Nil(t, dto.ID)
	})
}

func TestMapper_RoundTrip(t *testing.T) {
	entities := []*greeter.Greeter{
		{ID: 42, FirstName: "AAAAAAAAAA", LastName: "BBBBBBBBBB", Salutation: "CCCCCCCCCC"},
		{FirstName: "Jane", LastName: "Doe", Salutation: "Dr."},
	}
	for _, e := range entities {
		assert.Equal(t, *e, *greeter.ToEntity(greeter.ToDTO(e)))
	}

	dtos := []*greeter.GreeterDTO{
		{ID: int64p(9), FirstName: "Jane", LastName: "Doe", Salutation: "Dr."},
		{FirstName: "John", LastName: "Roe", Salutation: "Mr."},
	}
	for _, d := range dtos {
		assert.Equal(t, *d, *greeter.ToDTO(greeter.ToEntity(d)))
	}
}

func TestToDraft(t *testing.T) {
	t.Run("NilID", func(t *testing.T) {
		d := greeter.ToDraft(&greeter.GreeterDTO{FirstName: "Jane", LastName: "Doe", Salutation: "Dr."})
		assert.Equal(t, greeter.Unsaved{Fields: greeter.Fields{FirstName: "Jane", LastName: "Doe", Salutation: "Dr."}}, d)
	})

	t.Run("ID", func(t *testing.T) {
		d := greeter.ToDraft(&greeter.GreeterDTO{ID: int64p(7), FirstName: "Jane"})
		assert.Equal(t, greeter.Saved{ID: 7, Fields: greeter.Fields{FirstName: "Jane"}}, d)
	})

	t.Run("ZeroID", func(t *testing.T) {
		d := greeter.ToDraft(&greeter.GreeterDTO{ID: int64p(0), FirstName: "Jane"})
		assert.Equal(t, greeter.Saved{ID: 0, Fields: greeter.Fields{FirstName: "Jane"}}, d)
	})
}

func TestToDTOs(t *testing.T) {
	assert.NotNil(t, greeter.ToDTOs(nil))
	assert.Len(t, greeter.ToDTOs(nil), 0)

	dtos := greeter.ToDTOs([]*greeter.Greeter{{ID: 2}, {ID: 1}})
	require.Len(t, dtos, 2)
	assert.Equal(t, int64(2), *dtos[0].ID)
	assert.Equal(t, int64(1), *dtos[1].ID)
}

func TestFromID(t *testing.T) {
	assert.Nil(t, greeter.FromID(nil))
	assert.Equal(t, &greeter.Greeter{ID: 42}, greeter.FromID(int64p(42)))
}

func TestFromName(t *testing.T) {
	assert.Nil(t, greeter.FromName("", "Doe"))
	assert.Nil(t, greeter.FromName("Jane", ""))
	assert.Equal(t, &greeter.Greeter{FirstName: "Jane", LastName: "Doe"}, greeter.FromName("Jane", "Doe"))
}
