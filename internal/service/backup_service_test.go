package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitutor/internal/logger"
	"aitutor/internal/models"
)

type fakeUsers []models.Credential

func (f fakeUsers) ListUsers(ctx context.Context) ([]models.Credential, error) {
	return f, nil
}

func TestBackupExport(t *testing.T) {
	f := newFakeBackend()
	ctx := context.Background()
	f.profiles["parent-1"] = models.Profile{ID: "parent-1", FullName: "Pat", UserType: models.RoleParent}
	_, err := f.CreateChild(ctx, &models.Child{ParentID: "parent-1", FullName: "Sam"})
	require.NoError(t, err)
	_, err = f.CreateGoal(ctx, &models.Goal{UserID: "parent-1", Title: "Reading"})
	require.NoError(t, err)

	users := fakeUsers{
		{ID: "parent-1", Email: "parent@test.com", PasswordHash: "hash", Role: models.RoleParent},
		{ID: "child-1", Email: "kid@test.com", Role: models.RoleChild},
	}
	svc := NewBackupService(logger.Nop(), users, f.stores(), "sqlite")
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	var buf bytes.Buffer
	require.NoError(t, svc.WriteExport(ctx, &buf))

	var got BackupData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, backupVersion, got.Version)
	assert.Equal(t, "sqlite", got.DatabaseType)
	assert.Len(t, got.Users, 2)
	assert.Equal(t, "hash", got.Users[0].PasswordHash)
	require.Len(t, got.Profiles, 1)
	assert.Equal(t, "Pat", got.Profiles[0].FullName)
	require.Len(t, got.Children, 1)
	assert.Equal(t, "Sam", got.Children[0].FullName)
	require.Len(t, got.Goals, 1)
	assert.True(t, got.ExportedAt.Equal(svc.now()))
}
