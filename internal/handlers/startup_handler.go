package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"sync"
)

// StartupStep is one initialization step shown on the loading page
type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Startup tracks initialization progress. Until MarkReady installs the real
// handler every request gets the loading page, and /healthz reports progress.
type Startup struct {
	mu       sync.RWMutex
	ready    bool
	current  string
	progress int
	steps    []StartupStep
	handler  http.Handler
}

// NewStartup creates a tracker for the named steps
func NewStartup(stepNames ...string) *Startup {
	steps := make([]StartupStep, len(stepNames))
	for i, name := range stepNames {
		steps[i] = StartupStep{Name: name}
	}
	return &Startup{current: "Initializing...", steps: steps}
}

// SetCurrentStep updates the current initialization step
func (s *Startup) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed and updates progress
func (s *Startup) CompleteStep(stepName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.steps {
		if s.steps[i].Name == stepName {
			s.steps[i].Completed = true
			break
		}
	}

	completed := 0
	for _, step := range s.steps {
		if step.Completed {
			completed++
		}
	}
	if len(s.steps) > 0 {
		s.progress = (completed * 100) / len(s.steps)
	}
}

// MarkReady installs the application handler
func (s *Startup) MarkReady(h http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
	s.ready = true
	s.current = "Server ready"
	s.progress = 100
	for i := range s.steps {
		s.steps[i].Completed = true
	}
}

// IsReady returns whether the server is fully initialized
func (s *Startup) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

type startupStatus struct {
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

func (s *Startup) status() startupStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return startupStatus{
		Ready:    s.ready,
		Current:  s.current,
		Progress: s.progress,
		Steps:    append([]StartupStep(nil), s.steps...),
	}
}

func (s *Startup) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/healthz" {
		s.Healthz(w, r)
		return
	}

	s.mu.RLock()
	h := s.handler
	s.mu.RUnlock()
	if h != nil {
		h.ServeHTTP(w, r)
		return
	}
	s.showLoading(w)
}

// Healthz reports initialization status as JSON
func (s *Startup) Healthz(w http.ResponseWriter, r *http.Request) {
	st := s.status()
	w.Header().Set("Content-Type", "application/json")
	if !st.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(st)
}

var loadingPage = template.Must(template.New("loading").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<meta http-equiv="refresh" content="2">
	<title>AI Tutor - Starting Up</title>
	<style>
		body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; background: #6366f1; min-height: 100vh; display: flex; align-items: center; justify-content: center; margin: 0; }
		.container { background: white; border-radius: 20px; padding: 40px; max-width: 500px; width: 100%; }
		h1 { text-align: center; }
		.progress-bar { height: 12px; background: #e0e0e0; border-radius: 6px; overflow: hidden; margin-bottom: 20px; }
		.progress-fill { height: 100%; background: #6366f1; }
		.steps { list-style: none; padding: 0; }
		.step.completed { color: #10b981; }
		.current-status { text-align: center; font-style: italic; color: #6366f1; }
	</style>
</head>
<body>
	<div class="container">
		<h1>AI Tutor</h1>
		<div class="progress-bar"><div class="progress-fill" style="width: {{.Progress}}%"></div></div>
		<p>{{.Progress}}% Complete</p>
		<ul class="steps">
			{{range .Steps}}<li class="step {{if .Completed}}completed{{end}}">{{if .Completed}}&#10003;{{else}}&#9675;{{end}} {{.Name}}</li>{{end}}
		</ul>
		<div class="current-status">{{.Current}}</div>
	</div>
</body>
</html>`))

func (s *Startup) showLoading(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = loadingPage.Execute(w, s.status())
}
