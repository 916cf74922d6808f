package graph

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Augmentor_Augment(t *testing.T) {
	entry := NewNode("Build", "Task")
	entry.Then(NewNode("Deploy", "Task")).Then(entry)

	d, err := NewAugmentor(NewRegistry()).Augment("stack", entry)
	require.NoError(t, err)

	require.Equal(t, DispatcherID, d.ID)
	require.Same(t, entry, d.Default)
	require.Len(t, d.Choices, 2)
	require.Equal(t, Choice{Variable: "$.resumeTo", Equals: "Build", Next: entry}, d.Choices[0])
	require.Equal(t, "Deploy", d.Choices[1].Equals)
}

func Test_Augmentor_SingletonPerScope(t *testing.T) {
	a := NewAugmentor(NewRegistry())

	first, err := a.Augment("stack", NewNode("A", "Task"))
	require.NoError(t, err)

	second, err := a.Augment("stack", NewNode("B", "Task"))
	require.NoError(t, err)
	require.Same(t, first, second)

	other, err := a.Augment("other-stack", NewNode("B", "Task"))
	require.NoError(t, err)
	require.NotSame(t, first, other)
}

func Test_Augmentor_Concurrent(t *testing.T) {
	a := NewAugmentor(NewRegistry())
	entry := NewNode("A", "Task")

	results := make([]*Dispatcher, 10)
	errs := make([]error, 10)

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			results[i], errs[i] = a.Augment("stack", entry)
		}(i)
	}
	wg.Wait()

	for i, d := range results {
		require.NoError(t, errs[i])
		require.Same(t, results[0], d)
	}
}

func Test_Augmentor_IDConflict(t *testing.T) {
	entry := NewNode("Build", "Task")
	entry.Then(NewNode(DispatcherID, "Pass"))

	r := NewRegistry()
	_, err := NewAugmentor(r).Augment("stack", entry)

	var conflict *ErrIDConflict
	require.True(t, errors.As(err, &conflict))

	// Nothing was registered, the next build runs
	built := false
	_, err = r.GetOrCreate("stack", DispatcherID, func() (any, error) {
		built = true
		return "placeholder", nil
	})
	require.NoError(t, err)
	require.True(t, built)
}

func Test_Augmentor_UnexpectedType(t *testing.T) {
	r := NewRegistry()
	_, err := r.GetOrCreate("stack", DispatcherID, func() (any, error) { return "not a dispatcher", nil })
	require.NoError(t, err)

	_, err = NewAugmentor(r).Augment("stack", NewNode("A", "Task"))

	var unexpected *ErrUnexpectedType
	require.ErrorAs(t, err, &unexpected)
}
