package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitutor/internal/auth"
	"aitutor/internal/backend"
	"aitutor/internal/logger"
	"aitutor/internal/models"
	"aitutor/internal/security"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(logger.Nop(), srv.URL+"/", "anon-key", "service-key", time.Second)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClientRequiresConfig(t *testing.T) {
	_, err := NewClient(logger.Nop(), "", "key", "", 0)
	assert.Error(t, err)
	_, err = NewClient(nil, "http://x", "key", "", 0)
	assert.Error(t, err)
}

func TestSignUpSendsRoleMetadata(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "at",
			"expires_in":   3600,
			"user": map[string]any{
				"id":            "u1",
				"email":         "kid@test.com",
				"user_metadata": map[string]any{"user_type": "child"},
			},
		})
	})

	session, err := NewAuthProvider(c, "").SignUp(context.Background(), "kid@test.com", "secret1", models.RoleChild)
	require.NoError(t, err)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, models.RoleChild, session.Role())
	assert.False(t, session.ExpiresAt.IsZero())
	assert.Equal(t, map[string]any{"user_type": "child"}, body["data"])
}

func TestSignUpPendingConfirmation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "u2", "email": "p@test.com"})
	})

	session, err := NewAuthProvider(c, "").SignUp(context.Background(), "p@test.com", "secret1", models.RoleParent)
	require.NoError(t, err)
	assert.Empty(t, session.AccessToken)
	assert.Equal(t, "u2", session.User.ID)
}

func TestSignInErrorMapsToFriendlyMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
	})

	_, err := NewAuthProvider(c, "").SignIn(context.Background(), "a@b.co", "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
	assert.Equal(t, "Incorrect email or password.", auth.Message(err, ""))
}

func TestSignOutIgnoresRevokedToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer old-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "invalid JWT"})
	})

	assert.NoError(t, NewAuthProvider(c, "").SignOut(context.Background(), "old-token"))
}

func TestGetUserVerifiesLocally(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusOK, map[string]any{
			"id":            "u1",
			"email":         "parent@test.com",
			"user_metadata": map[string]any{"user_type": "parent", "name": "Kim"},
		})
	})
	p := NewAuthProvider(c, "jwt-secret")

	_, err := p.GetUser(context.Background(), "forged")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	assert.Zero(t, calls)

	token, err := security.NewTokenSigner("jwt-secret", "supabase").Issue("u1", "parent@test.com", "", security.UserMetadata{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	session, err := p.GetUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Kim", session.User.Name)
	assert.Equal(t, models.RoleParent, session.Role())
}

func TestGetProfileNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/profiles", r.URL.Path)
		assert.Equal(t, "eq.u1", r.URL.Query().Get("id"))
		assert.Equal(t, acceptSingleObject, r.Header.Get("Accept"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusNotAcceptable, map[string]any{
			"code":    "PGRST116",
			"message": "JSON object requested, multiple (or no) rows returned",
		})
	})

	ctx := backend.WithAccessToken(context.Background(), "user-token")
	_, err := NewTables(c).GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestListGoalsNewestFirstQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.u1", q.Get("user_id"))
		assert.Equal(t, "created_at.desc", q.Get("order"))
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "g2", "user_id": "u1", "title": "Newer", "goal_type": "short_term", "created_at": "2026-05-02T10:00:00.123+00:00"},
			{"id": "g1", "user_id": "u1", "title": "Older", "goal_type": "long_term", "target_date": nil, "created_at": "2026-05-01T10:00:00+00:00"},
		})
	})

	goals, err := NewTables(c).ListGoals(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "Newer", goals[0].Title)
	assert.Equal(t, models.GoalLongTerm, goals[1].GoalType)
}

func TestCreateGoalSendsRow(t *testing.T) {
	var row map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, preferRepresentation, r.Header.Get("Prefer"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &row))
		writeJSON(w, http.StatusCreated, map[string]any{"id": "g9", "user_id": "u1", "title": "Read", "goal_type": "medium_term"})
	})

	created, err := NewTables(c).CreateGoal(context.Background(), &models.Goal{UserID: "u1", Title: "Read", GoalType: models.GoalMediumTerm})
	require.NoError(t, err)
	assert.Equal(t, "g9", created.ID)
	assert.Nil(t, row["target_date"])
	assert.NotContains(t, row, "id")
}

func TestDeleteChildScopedToParent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "eq.p1", r.URL.Query().Get("parent_id"))
		writeJSON(w, http.StatusOK, []map[string]any{})
	})

	err := NewTables(c).DeleteChild(context.Background(), "p1", "c1")
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestParseAPIError(t *testing.T) {
	e := parseAPIError(422, []byte(`{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`))
	assert.Equal(t, "user_already_exists", e.Code)
	assert.True(t, errors.Is(e, auth.ErrUserAlreadyRegistered))

	e = parseAPIError(502, []byte("bad gateway"))
	assert.Equal(t, "bad gateway", e.Message)
	assert.Equal(t, 502, e.Status)
}
