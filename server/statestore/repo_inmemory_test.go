package statestore_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-ad-auth/server/statestore"
	"github.com/stretchr/testify/require"
)

const testTTL = 10 * time.Minute

// TestConsume_RoundTrip tests that a stored state comes back once with its return URL.
func TestConsume_RoundTrip(t *testing.T) {
	repo := statestore.NewInMemoryRepo(testTTL)
	defer repo.Close()

	require.NoError(t, repo.Put("state-1", &statestore.AuthState{ReturnURL: "/reports"}))

	authState, err := repo.Consume("state-1")
	require.NoError(t, err)
	require.Equal(t, "/reports", authState.ReturnURL)
	require.False(t, authState.CreatedAt.IsZero())
}

// TestConsume_OneShot tests that a state cannot be consumed twice.
func TestConsume_OneShot(t *testing.T) {
	repo := statestore.NewInMemoryRepo(testTTL)
	defer repo.Close()

	require.NoError(t, repo.Put("state-1", &statestore.AuthState{ReturnURL: "/"}))

	_, err := repo.Consume("state-1")
	require.NoError(t, err)

	authState, err := repo.Consume("state-1")
	require.ErrorIs(t, err, statestore.StateNotFoundErr)
	require.Nil(t, authState)
}

// TestConsume_Unknown tests that an unknown state reports not-found.
func TestConsume_Unknown(t *testing.T) {
	repo := statestore.NewInMemoryRepo(testTTL)
	defer repo.Close()

	authState, err := repo.Consume("never-stored")
	require.ErrorIs(t, err, statestore.StateNotFoundErr)
	require.Nil(t, authState)
}

// TestConsume_Expired tests that a state older than the TTL is rejected and removed.
func TestConsume_Expired(t *testing.T) {
	repo := statestore.NewInMemoryRepo(testTTL)
	defer repo.Close()

	require.NoError(t, repo.Put("state-1", &statestore.AuthState{
		ReturnURL: "/",
		CreatedAt: time.Now().Add(-testTTL - time.Second),
	}))

	authState, err := repo.Consume("state-1")
	require.ErrorIs(t, err, statestore.StateExpiredErr)
	require.Nil(t, authState)

	_, err = repo.Consume("state-1")
	require.ErrorIs(t, err, statestore.StateNotFoundErr)
}

// TestPut_Validation tests that empty states and nil payloads are rejected.
func TestPut_Validation(t *testing.T) {
	repo := statestore.NewInMemoryRepo(testTTL)
	defer repo.Close()

	require.Error(t, repo.Put("", &statestore.AuthState{}))
	require.Error(t, repo.Put("state-1", nil))
}
