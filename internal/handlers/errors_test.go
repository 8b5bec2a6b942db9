package handlers

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitutor/internal/logger"
	"aitutor/internal/service"
	"aitutor/internal/supabase"
	"aitutor/internal/validation"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	log, logs := logger.NewObserved()
	recorder := httptest.NewRecorder()

	respondWithError(log, recorder, 418, "Teapot", "", nil)

	assert.Equal(t, 418, recorder.Code)
	assert.Equal(t, "Teapot", strings.TrimSpace(recorder.Body.String()))
	assert.Zero(t, logs.Len())
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	log, logs := logger.NewObserved()
	recorder := httptest.NewRecorder()

	respondWithError(log, recorder, 500, ErrInternalServerError, "", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, ErrInternalServerError, entries[0].Message)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestPageErrorMessage(t *testing.T) {
	rls := &supabase.APIError{Status: 403, Code: "42501", Message: "new row violates row-level security policy"}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"hosted create failure keeps prefix", fmt.Errorf("failed to create goal: %w", rls), "failed to create goal: new row violates row-level security policy"},
		{"hosted list failure keeps prefix", fmt.Errorf("failed to list goals: %w", rls), "failed to list goals: new row violates row-level security policy"},
		{"plain wrapped error", fmt.Errorf("failed to list goals: %w", errors.New("disk I/O error")), "failed to list goals: disk I/O error"},
		{"service sentinel", service.ErrParentOnly, service.ErrParentOnly.Error()},
		{"validation error", &validation.Error{Message: "Please enter a goal title."}, "Please enter a goal title."},
		{"auth text is not rewritten", errors.New("Invalid login credentials"), "Invalid login credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageErrorMessage(tt.err))
		})
	}
}
