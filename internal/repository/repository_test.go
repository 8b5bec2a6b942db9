package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitutor/internal/auth"
	"aitutor/internal/backend"
	"aitutor/internal/database"
	"aitutor/internal/models"
	"aitutor/internal/security"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.RunMigrations(context.Background())
	require.NoError(t, err)
	return db
}

func newTestProvider(t *testing.T) (*AuthProvider, *UserRepository) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	return NewAuthProvider(users, security.NewTokenSigner("test-secret", "aitutor"), time.Hour), users
}

func TestAuthProviderSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)

	session, err := p.SignUp(ctx, "Kid@Test.com", "secret1", models.RoleChild)
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.Equal(t, "kid@test.com", session.User.Email)
	assert.Equal(t, models.RoleChild, session.Role())

	_, err = p.SignUp(ctx, "kid@test.com", "secret1", models.RoleParent)
	assert.ErrorIs(t, err, auth.ErrUserAlreadyRegistered)

	_, err = p.SignUp(ctx, "short@test.com", "abc", models.RoleParent)
	assert.ErrorIs(t, err, auth.ErrWeakPassword)

	_, err = p.SignUp(ctx, "hangul@test.com", "가나다", models.RoleParent)
	assert.ErrorIs(t, err, auth.ErrWeakPassword)

	signedIn, err := p.SignIn(ctx, "kid@test.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, signedIn.User.ID)

	_, err = p.SignIn(ctx, "kid@test.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "nobody@test.com", "secret1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthProviderGetUserAndSignOut(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)

	session, err := p.SignUp(ctx, "parent@test.com", "secret1", models.RoleParent)
	require.NoError(t, err)

	restored, err := p.GetUser(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User, restored.User)

	require.NoError(t, p.SignOut(ctx, session.AccessToken))

	_, err = p.GetUser(ctx, session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	// revoking twice is harmless
	assert.NoError(t, p.SignOut(ctx, session.AccessToken))
	assert.NoError(t, p.SignOut(ctx, "garbage"))

	_, err = p.GetUser(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestAuthProviderOAuth(t *testing.T) {
	ctx := context.Background()
	p, users := newTestProvider(t)

	identity := auth.OAuthIdentity{Provider: "google", Subject: "g-1", Email: "oauth@test.com", Name: "Oh Auth"}
	first, err := p.SignInWithOAuth(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, models.RoleParent, first.Role())
	assert.Equal(t, "Oh Auth", first.User.Name)

	again, err := p.SignInWithOAuth(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, again.User.ID)

	// existing password account gets linked by email
	pw, err := p.SignUp(ctx, "linked@test.com", "secret1", models.RoleChild)
	require.NoError(t, err)
	linked, err := p.SignInWithOAuth(ctx, auth.OAuthIdentity{Provider: "google", Subject: "g-2", Email: "linked@test.com"})
	require.NoError(t, err)
	assert.Equal(t, pw.User.ID, linked.User.ID)
	assert.Equal(t, models.RoleChild, linked.Role())

	stored, err := users.GetUserByOAuth(ctx, "google", "g-2")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, pw.User.ID, stored.ID)

	_, err = p.SignInWithOAuth(ctx, auth.OAuthIdentity{Provider: "google"})
	assert.Error(t, err)
}

func TestCleanupExpiredSessions(t *testing.T) {
	ctx := context.Background()
	p, users := newTestProvider(t)

	session, err := p.SignUp(ctx, "parent@test.com", "secret1", models.RoleParent)
	require.NoError(t, err)

	_, err = users.CreateSession(ctx, "old", session.User.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	n, err := p.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = p.GetUser(ctx, session.AccessToken)
	assert.NoError(t, err)
}

func createUser(t *testing.T, users *UserRepository, email string) string {
	t.Helper()
	u, err := users.CreateUser(context.Background(), email, "hash", "", models.RoleParent)
	require.NoError(t, err)
	return u.ID
}

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	userID := createUser(t, NewUserRepository(db), "parent@test.com")
	repo := NewProfileRepository(db)

	_, err := repo.GetProfile(ctx, userID)
	assert.ErrorIs(t, err, backend.ErrNotFound)

	created, err := repo.CreateProfile(ctx, &models.Profile{ID: userID, FullName: "parent", UserType: models.RoleParent, IsActive: true})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	created.FullName = "Kim Parent"
	created.SchoolName = "Hanbit"
	require.NoError(t, repo.UpdateProfile(ctx, created))

	got, err := repo.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Kim Parent", got.FullName)
	assert.Equal(t, "Hanbit", got.SchoolName)
	assert.Equal(t, models.RoleParent, got.UserType)
	assert.True(t, got.IsActive)

	err = repo.UpdateProfile(ctx, &models.Profile{ID: "missing", FullName: "x"})
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestChildRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := NewUserRepository(db)
	parentID := createUser(t, users, "parent@test.com")
	otherID := createUser(t, users, "other@test.com")
	repo := NewChildRepository(db)

	children, err := repo.ListChildren(ctx, parentID)
	require.NoError(t, err)
	assert.Empty(t, children)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first, err := repo.CreateChild(ctx, &models.Child{ParentID: parentID, FullName: "Min", BirthDate: "2015-03-02", GradeLevel: "Elementary 4", IsActive: true, CreatedAt: base})
	require.NoError(t, err)
	_, err = repo.CreateChild(ctx, &models.Child{ParentID: parentID, FullName: "Jun", BirthDate: "2012-01-10", GradeLevel: "Middle 1", IsActive: true, CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)

	children, err = repo.ListChildren(ctx, parentID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "Min", children[0].FullName)
	assert.Equal(t, "Jun", children[1].FullName)

	// another parent cannot delete it
	assert.ErrorIs(t, repo.DeleteChild(ctx, otherID, first.ID), backend.ErrNotFound)

	require.NoError(t, repo.DeleteChild(ctx, parentID, first.ID))
	children, err = repo.ListChildren(ctx, parentID)
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestGoalRepositoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	userID := createUser(t, NewUserRepository(db), "kid@test.com")
	repo := NewGoalRepository(db)

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	titles := []string{"first", "second", "third"}
	for i, title := range titles {
		_, err := repo.CreateGoal(ctx, &models.Goal{
			UserID:    userID,
			Title:     title,
			GoalType:  models.GoalShortTerm,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	goals, err := repo.ListGoals(ctx, userID)
	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, "third", goals[0].Title)
	assert.Equal(t, "first", goals[2].Title)

	got, err := repo.GetGoal(ctx, userID, goals[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Title)

	_, err = repo.GetGoal(ctx, "someone-else", goals[1].ID)
	assert.ErrorIs(t, err, backend.ErrNotFound)

	empty, err := repo.ListGoals(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
