package sessions_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-ad-auth/sessions"
	"github.com/stretchr/testify/require"
)

func testSession(identity string) *sessions.Session {
	return &sessions.Session{
		Identity:     identity,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresOn:    1700000000,
		TokenType:    "Bearer",
		Resource:     "https://graph.windows.net",
		Scope:        "user_impersonation",
		Groups:       []string{testGroupID, otherGroupID},
	}
}

// TestInMemoryRepo_UpsertAndGet tests basic store and retrieve
func TestInMemoryRepo_UpsertAndGet(t *testing.T) {
	repo := sessions.NewInMemorySessionRepo()
	ctx := context.Background()

	err := repo.Upsert(ctx, testSession(testIdentity))
	require.NoError(t, err)

	got, err := repo.Get(ctx, testIdentity)
	require.NoError(t, err)
	require.Equal(t, testSession(testIdentity), got)
}

// TestInMemoryRepo_GetUnknownIdentity tests the not-found branch
func TestInMemoryRepo_GetUnknownIdentity(t *testing.T) {
	repo := sessions.NewInMemorySessionRepo()

	_, err := repo.Get(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, sessions.SessionNotFoundErr)
}

// TestInMemoryRepo_UpsertReplaces tests that a second upsert replaces the first
func TestInMemoryRepo_UpsertReplaces(t *testing.T) {
	repo := sessions.NewInMemorySessionRepo()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testSession(testIdentity)))

	replacement := testSession(testIdentity)
	replacement.AccessToken = "access-2"
	replacement.Groups = []string{testGroupID}
	require.NoError(t, repo.Upsert(ctx, replacement))

	got, err := repo.Get(ctx, testIdentity)
	require.NoError(t, err)
	require.Equal(t, "access-2", got.AccessToken)
	require.Equal(t, []string{testGroupID}, got.Groups)
}

// TestInMemoryRepo_UpsertCopies tests that stored sessions are isolated from
// later caller mutations
func TestInMemoryRepo_UpsertCopies(t *testing.T) {
	repo := sessions.NewInMemorySessionRepo()
	ctx := context.Background()

	session := testSession(testIdentity)
	require.NoError(t, repo.Upsert(ctx, session))

	session.Groups[0] = "mutated"
	session.AccessToken = "mutated"

	got, err := repo.Get(ctx, testIdentity)
	require.NoError(t, err)
	require.Equal(t, testGroupID, got.Groups[0])
	require.Equal(t, "access-1", got.AccessToken)
}

// TestInMemoryRepo_Delete tests removal, including unknown identities
func TestInMemoryRepo_Delete(t *testing.T) {
	repo := sessions.NewInMemorySessionRepo()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testSession(testIdentity)))
	require.NoError(t, repo.Delete(ctx, testIdentity))

	_, err := repo.Get(ctx, testIdentity)
	require.ErrorIs(t, err, sessions.SessionNotFoundErr)

	// Deleting an identity that no longer exists is not an error
	require.NoError(t, repo.Delete(ctx, testIdentity))
}

// TestInMemoryRepo_EmptyIdentity tests input validation
func TestInMemoryRepo_EmptyIdentity(t *testing.T) {
	repo := sessions.NewInMemorySessionRepo()
	ctx := context.Background()

	require.Error(t, repo.Upsert(ctx, &sessions.Session{}))

	_, err := repo.Get(ctx, "")
	require.Error(t, err)
	require.NotErrorIs(t, err, sessions.SessionNotFoundErr)
}
