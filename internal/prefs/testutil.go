package prefs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestStore creates an in-memory preferences store for testing.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	require.NoError(t, err, "failed to create test preferences store")

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
