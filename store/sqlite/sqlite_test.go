package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/cschleiden/go-resume/store"
	"github.com/cschleiden/go-resume/store/test"
	"github.com/stretchr/testify/require"
)

func Test_SqliteStore(t *testing.T) {
	test.StoreTest(t, func() store.Store {
		s, err := NewInMemoryStore()
		if err != nil {
			panic(err)
		}

		return s
	}, func(s store.Store) {
		if err := s.Close(); err != nil {
			panic(err)
		}
	})
}

func Test_SqliteStore_MigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.db")

	s, err := NewSqliteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	require.NoError(t, s.Close())

	s, err = NewSqliteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
