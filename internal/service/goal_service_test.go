package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitutor/internal/goalstore"
	"aitutor/internal/logger"
	"aitutor/internal/models"
	"aitutor/internal/validation"
)

func newGoalService(f *fakeBackend, temp goalstore.Store) (*GoalService, *fakeStructurer) {
	st := &fakeStructurer{}
	svc := NewGoalService(logger.Nop(), f, temp, st, validation.New())
	return svc, st
}

func goalRequest(title string) models.CreateGoalRequest {
	return models.CreateGoalRequest{Title: title, GoalType: models.GoalShortTerm}
}

func TestAnonymousCreateStaysLocal(t *testing.T) {
	f := newFakeBackend()
	temp := goalstore.NewMemoryStore(time.Hour)
	svc, _ := newGoalService(f, temp)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	visitor := Principal{VisitorID: "v1"}

	goal, err := svc.CreateGoal(context.Background(), visitor, goalRequest("Learn fractions"))
	require.NoError(t, err)
	assert.Equal(t, "temp_1700000000000", goal.ID)
	assert.Equal(t, models.AnonymousOwner, goal.UserID)
	assert.True(t, goal.IsTemporary())
	assert.Empty(t, f.Calls())

	second, err := svc.CreateGoal(context.Background(), visitor, goalRequest("Read a book"))
	require.NoError(t, err)
	assert.Equal(t, "temp_1700000000001", second.ID)

	cached := svc.TempGoals(context.Background(), "v1")
	require.Len(t, cached, 2)
	assert.Equal(t, "Read a book", cached[0].Title)
	assert.Equal(t, "Learn fractions", cached[1].Title)

	list, err := svc.ListGoals(context.Background(), visitor)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.Calls())
}

func TestAnonymousCreateSurvivesCacheFailure(t *testing.T) {
	log, logs := logger.NewObserved()
	f := newFakeBackend()
	svc := NewGoalService(log, f, failingStore{}, &fakeStructurer{}, validation.New())

	goal, err := svc.CreateGoal(context.Background(), Principal{VisitorID: "v1"}, goalRequest("Learn fractions"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(goal.ID, models.TempGoalPrefix))
	assert.Empty(t, f.Calls())
	assert.Equal(t, 2, logs.FilterMessage("Failed to read temp goals").Len()+logs.FilterMessage("Failed to cache temp goal").Len())
	assert.Empty(t, svc.TempGoals(context.Background(), "v1"))
}

func TestAuthenticatedGoals(t *testing.T) {
	f := newFakeBackend()
	svc, _ := newGoalService(f, goalstore.NewMemoryStore(time.Hour))
	p := Principal{Session: parentSession(), VisitorID: "v1"}

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.CreateGoal(context.Background(), p, goalRequest(title))
		require.NoError(t, err)
	}

	goals, err := svc.ListGoals(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, "third", goals[0].Title)
	assert.Equal(t, "first", goals[2].Title)
	assert.Empty(t, svc.TempGoals(context.Background(), "v1"))
	for _, token := range f.tokens {
		assert.Equal(t, "parent-token", token)
	}
}

func TestGoalValidation(t *testing.T) {
	f := newFakeBackend()
	svc, _ := newGoalService(f, goalstore.NewMemoryStore(time.Hour))

	_, err := svc.CreateGoal(context.Background(), Principal{Session: parentSession()}, models.CreateGoalRequest{Title: "   ", GoalType: models.GoalLongTerm})
	require.Error(t, err)
	_, err = svc.CreateGoal(context.Background(), Principal{Session: parentSession()}, models.CreateGoalRequest{Title: "x", GoalType: "someday"})
	require.Error(t, err)
	assert.Empty(t, f.Calls())
}

func TestGoalBackendErrorsArePrefixed(t *testing.T) {
	f := newFakeBackend()
	f.err = errors.New("permission denied")
	svc, _ := newGoalService(f, goalstore.NewMemoryStore(time.Hour))
	p := Principal{Session: parentSession()}

	_, err := svc.CreateGoal(context.Background(), p, goalRequest("x"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to create goal:"))

	_, err = svc.ListGoals(context.Background(), p)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to list goals:"))
}

func TestTempGoalIDSkipsTaken(t *testing.T) {
	now := time.UnixMilli(5)
	existing := []models.Goal{{ID: "temp_5"}, {ID: "temp_6"}}
	assert.Equal(t, "temp_7", tempGoalID(now, existing))
	assert.Equal(t, "temp_5", tempGoalID(now, nil))
}

func TestStructureGoalsUsesSessionRole(t *testing.T) {
	svc, st := newGoalService(newFakeBackend(), goalstore.NewMemoryStore(time.Hour))

	resp := svc.StructureGoals(context.Background(), Principal{Session: childSession()}, "  get better at math ")
	assert.Equal(t, "get better at math", resp.StructuredGoals[0].Title)
	svc.StructureGoals(context.Background(), Principal{VisitorID: "v1"}, "read more")

	assert.Equal(t, []models.Role{models.RoleChild, models.RoleParent}, st.roles)
}

func TestGenerateRoadmap(t *testing.T) {
	f := newFakeBackend()
	svc, st := newGoalService(f, goalstore.NewMemoryStore(time.Hour))
	ctx := context.Background()

	t.Run("temp goal", func(t *testing.T) {
		anon := Principal{VisitorID: "v1"}
		goal, err := svc.CreateGoal(ctx, anon, goalRequest("Learn fractions"))
		require.NoError(t, err)

		roadmap, err := svc.GenerateRoadmap(ctx, anon, goal.ID)
		require.NoError(t, err)
		assert.Equal(t, "Start: Learn fractions", roadmap.Roadmap[0].Title)

		_, err = svc.GenerateRoadmap(ctx, Principal{VisitorID: "someone-else"}, goal.ID)
		assert.ErrorIs(t, err, ErrGoalNotFound)
	})

	t.Run("persisted goal", func(t *testing.T) {
		p := Principal{Session: parentSession()}
		goal, err := svc.CreateGoal(ctx, p, goalRequest("Algebra"))
		require.NoError(t, err)

		_, err = svc.GenerateRoadmap(ctx, p, goal.ID)
		require.NoError(t, err)
		assert.Contains(t, st.roadmapFor, goal.ID)

		_, err = svc.GenerateRoadmap(ctx, Principal{VisitorID: "v1"}, goal.ID)
		assert.ErrorIs(t, err, ErrGoalNotFound)
		_, err = svc.GenerateRoadmap(ctx, p, "missing")
		assert.ErrorIs(t, err, ErrGoalNotFound)
	})

	t.Run("service error surfaces", func(t *testing.T) {
		st.roadmapErr = errors.New("failed to generate roadmap: boom")
		p := Principal{Session: parentSession()}
		goal, err := svc.CreateGoal(ctx, p, goalRequest("Geometry"))
		require.NoError(t, err)

		_, err = svc.GenerateRoadmap(ctx, p, goal.ID)
		assert.EqualError(t, err, "failed to generate roadmap: boom")
	})
}
