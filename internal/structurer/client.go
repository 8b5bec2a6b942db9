// Package structurer calls the AI service that turns free-text learning goals
// into structured suggestions and builds study roadmaps.
package structurer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aitutor/internal/logger"
	"aitutor/internal/models"
)

const (
	pathStructureGoals  = "/api/structure-goals"
	pathGenerateRoadmap = "/api/generate-roadmap"

	FallbackMessage = "AI service unavailable. A default goal was created."
)

// Fallback is the response used whenever the service cannot be reached or
// answers with something unusable
func Fallback() *models.GoalStructureResponse {
	return &models.GoalStructureResponse{
		StructuredGoals: []models.GoalSuggestion{{
			Title:       "Set a learning goal",
			Description: "Describe a specific learning goal.",
			GoalType:    models.GoalMediumTerm,
			Subject:     "Other",
		}},
		Message: FallbackMessage,
	}
}

// HTTPError is a non-2xx answer from the AI service
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("ai service http %d: %s", e.StatusCode, e.Body)
}

// Client talks to the AI service
type Client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL
func NewClient(log *logger.Logger, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		log:        log.With("service", "StructurerClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ai service decode error: %w", err)
	}
	return nil
}

type structureRequest struct {
	UserInput string `json:"user_input"`
	UserType  string `json:"user_type"`
}

// StructureGoals asks the service to structure input. It never fails: on any
// error the Fallback response is returned.
func (c *Client) StructureGoals(ctx context.Context, input string, role models.Role) *models.GoalStructureResponse {
	if role == "" {
		role = models.RoleParent
	}

	var resp models.GoalStructureResponse
	err := c.post(ctx, pathStructureGoals, structureRequest{UserInput: input, UserType: string(role)}, &resp)
	if err != nil {
		c.log.Warn("Goal structuring failed, using fallback", "error", err.Error())
		return Fallback()
	}
	if resp.StructuredGoals == nil {
		resp.StructuredGoals = []models.GoalSuggestion{}
	}
	return &resp
}

type roadmapRequest struct {
	GoalID          string  `json:"goal_id"`
	GoalTitle       string  `json:"goal_title"`
	GoalDescription string  `json:"goal_description"`
	GoalType        string  `json:"goal_type"`
	TargetDate      *string `json:"target_date"`
}

// GenerateRoadmap asks the service for a step-by-step plan towards goal
func (c *Client) GenerateRoadmap(ctx context.Context, goal *models.Goal) (*models.RoadmapResponse, error) {
	req := roadmapRequest{
		GoalID:          goal.ID,
		GoalTitle:       goal.Title,
		GoalDescription: goal.Description,
		GoalType:        string(goal.GoalType),
	}
	if goal.TargetDate != "" {
		req.TargetDate = &goal.TargetDate
	}

	var resp models.RoadmapResponse
	if err := c.post(ctx, pathGenerateRoadmap, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to generate roadmap: %w", err)
	}
	return &resp, nil
}
