package memory

import (
	"testing"

	"github.com/cschleiden/go-resume/store"
	"github.com/cschleiden/go-resume/store/test"
)

func Test_MemoryStore(t *testing.T) {
	test.StoreTest(t, func() store.Store {
		return NewMemoryStore()
	}, nil)
}
