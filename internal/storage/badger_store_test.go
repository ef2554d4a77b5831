package storage

import (
	"testing"

	"svc/internal/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

func (n *note) GetID() string { return n.ID }

func setupTestDB(t *testing.T) *badger.DB {
	db, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBadgerStore(t *testing.T) {
	db := setupTestDB(t)
	store := NewBadgerStore(db, "note")

	t.Run("Create", func(t *testing.T) {
		require.NoError(t, store.Create(&note{ID: "1", Body: "one"}))

		err := store.Create(&note{ID: "1", Body: "dup"})
		assert.True(t, errors.Is(err, errors.ErrConflict))

		err = store.Create(&note{})
		assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	})

	t.Run("Get", func(t *testing.T) {
		var n note
		require.NoError(t, store.Get("1", &n))
		assert.Equal(t, "one", n.Body)

		err := store.Get("missing", &n)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("Put", func(t *testing.T) {
		require.NoError(t, store.Put(&note{ID: "1", Body: "uno"}))
		var n note
		require.NoError(t, store.Get("1", &n))
		assert.Equal(t, "uno", n.Body)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Create(&note{ID: "2", Body: "two"}))

		// a second prefix in the same db stays separate
		other := NewBadgerStore(db, "other")
		require.NoError(t, other.Create(&note{ID: "3", Body: "three"}))

		var notes []note
		require.NoError(t, store.List(&notes))
		require.Len(t, notes, 2)
		assert.Equal(t, "uno", notes[0].Body)
		assert.Equal(t, "two", notes[1].Body)

		n, err := store.Count()
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete("2"))
		err := store.Delete("2")
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}
