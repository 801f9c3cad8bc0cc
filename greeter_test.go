package greeter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greeter"
)

func int64p(v int64) *int64 { return &v }

func TestGreeter_Equal(t *testing.T) {
	t.Run("SameID", func(t *testing.T) {
		a := &greeter.Greeter{ID: 1, FirstName: "A"}
		b := &greeter.Greeter{ID: 1, FirstName: "B"}
		assert.True(t, a.Equal(b))
	})

	t.Run("DifferentID", func(t *testing.T) {
		assert.False(t, (&greeter.Greeter{ID: 1}).Equal(&greeter.Greeter{ID: 2}))
	})

	t.Run("UnsavedNeverEqualsOther", func(t *testing.T) {
		a := &greeter.Greeter{FirstName: "Jane"}
		b := &greeter.Greeter{FirstName: "Jane"}
		assert.False(t, a.Equal(b))
		assert.False(t, a.Equal(&greeter.Greeter{ID: 1}))
		assert.False(t, (&greeter.Greeter{ID: 1}).Equal(a))
	})

	t.Run("Self", func(t *testing.T) {
		a := &greeter.Greeter{}
		assert.True(t, a.Equal(a))
	})

	t.Run("Nil", func(t *testing.T) {
		var a *greeter.Greeter
		assert.False(t, a.Equal(&greeter.Greeter{ID: 1}))
		assert.False(t, (&greeter.Greeter{ID: 1}).Equal(nil))
	})
}

func TestGreeterDTO_Equal(t *testing.T) {
	assert.True(t, greeter.GreeterDTO{ID: int64p(1)}.Equal(greeter.GreeterDTO{ID: int64p(1)}))
	assert.False(t, greeter.GreeterDTO{ID: int64p(1)}.Equal(greeter.GreeterDTO{ID: int64p(2)}))
	assert.False(t, greeter.GreeterDTO{}.Equal(greeter.GreeterDTO{ID: int64p(1)}))
	assert.False(t, greeter.GreeterDTO{ID: int64p(1)}.Equal(greeter.GreeterDTO{}))

	var d greeter.GreeterDTO
	assert.False(t, d.Equal(d))
}

func TestGreeter_Draft(t *testing.T) {
	t.Run("Unsaved", func(t *testing.T) {
		g := &greeter.Greeter{FirstName: "Jane", LastName: "Doe", Salutation: "Dr."}
		d, ok := g.Draft().(greeter.Unsaved)
		require.True(t, ok)
		assert.Equal(t, greeter.Fields{FirstName: "Jane", LastName: "Doe", Salutation: "Dr."}, d.Fields)
	})

	t.Run("Saved", func(t *testing.T) {
		g := &greeter.Greeter{ID: 7, FirstName: "Jane", LastName: "Doe", Salutation: "Dr."}
		d, ok := g.Draft().(greeter.Saved)
		require.True(t, ok)
		assert.Equal(t, int64(7), d.ID)
		assert.Equal(t, "Doe", d.LastName)
	})
}

func TestGreeter_String(t *testing.T) {
	g := &greeter.Greeter{ID: 1, FirstName: "Jane", LastName: "Doe", Salutation: "Dr."}
	assert.Equal(t, "Greeter{id=1, firstName='Jane', lastName='Doe', salutation='Dr.'}", g.String())

	d := greeter.GreeterDTO{FirstName: "Jane", LastName: "Doe", Salutation: "Dr."}
	assert.Equal(t, "GreeterDTO{id=null, firstName='Jane', lastName='Doe', salutation='Dr.'}", d.String())
}
