// Package supabase is the hosted backend adapter: GoTrue for identity and
// PostgREST for the profiles, children and goals tables.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aitutor/internal/backend"
	"aitutor/internal/logger"
)

// PostgREST error code for a single-row select that matched nothing
const codeNoRows = "PGRST116"

// APIError is a non-2xx answer from GoTrue or PostgREST
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase http %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase http %d: %s", e.Status, e.Message)
}

// ProviderMessage returns the message as reported by the service
func (e *APIError) ProviderMessage() string {
	return e.Message
}

// Is matches sentinel errors whose text equals the service message, so
// errors.Is(err, auth.ErrInvalidCredentials) holds for GoTrue failures.
// A PGRST116 answer matches backend.ErrNotFound.
func (e *APIError) Is(target error) bool {
	if target == backend.ErrNotFound {
		return e.Code == codeNoRows
	}
	return target != nil && e.Message != "" && e.Message == target.Error()
}

// errorBody covers the error shapes of both services
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func parseAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}

	// PostgREST sends a string code; GoTrue sends the HTTP status as a number
	var code string
	if json.Unmarshal(body.Code, &code) == nil {
		apiErr.Code = code
	}
	if body.ErrorCode != "" {
		apiErr.Code = body.ErrorCode
	}

	for _, msg := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
		if msg != "" {
			apiErr.Message = msg
			break
		}
	}
	return apiErr
}

// Client talks to one Supabase project
type Client struct {
	log        *logger.Logger
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a client for the project at baseURL
func NewClient(log *logger.Logger, baseURL, anonKey, serviceKey string, timeout time.Duration) (*Client, error) {
	if baseURL == "" || anonKey == "" {
		return nil, fmt.Errorf("missing SUPABASE_URL or SUPABASE_ANON_KEY")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		log:        log.With("service", "SupabaseClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	token   string
	headers map[string]string
}

// do sends one request and decodes a 2xx body into out when out is non-nil
func (c *Client) do(ctx context.Context, r request, out any) error {
	var buf bytes.Buffer
	if r.body != nil {
		if err := json.NewEncoder(&buf).Encode(r.body); err != nil {
			return err
		}
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, &buf)
	if err != nil {
		return err
	}

	token := r.token
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

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
		apiErr := parseAPIError(resp.StatusCode, raw)
		c.log.Debug("Supabase request failed",
			"method", r.method,
			"path", r.path,
			"status", apiErr.Status,
			"code", apiErr.Code,
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("supabase decode error: %w", err)
	}
	return nil
}
