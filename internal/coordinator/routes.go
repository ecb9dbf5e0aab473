package coordinator

import (
	"net/http"
	"strconv"

	"github.com/speier/claudia/internal/metrics"
	"github.com/speier/claudia/internal/model"
	"github.com/speier/claudia/internal/ops"
)

func (c *Coordinator) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", c.handleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /status", c.read(c.handleStatus))
	mux.HandleFunc("GET /tasks", c.read(c.handleListTasks))
	mux.HandleFunc("GET /parallel-summary", c.read(c.handleParallelSummary))
	mux.HandleFunc("GET /subtask/progress", c.read(c.handleSubtaskProgress))

	mux.HandleFunc("POST /session/register", c.write(c.handleSessionRegister))
	mux.HandleFunc("POST /session/heartbeat", c.write(c.handleSessionHeartbeat))
	mux.HandleFunc("POST /session/end", c.write(c.handleSessionEnd))

	mux.HandleFunc("POST /task/create", c.write(c.handleTaskCreate))
	mux.HandleFunc("POST /task/request", c.write(c.handleTaskRequest))
	mux.HandleFunc("POST /task/complete", c.write(c.handleTaskComplete))
	mux.HandleFunc("POST /task/reopen", c.write(c.handleTaskReopen))
	mux.HandleFunc("POST /task/edit", c.write(c.handleTaskEdit))
	mux.HandleFunc("POST /task/delete", c.write(c.handleTaskDelete))
	mux.HandleFunc("POST /task/note", c.write(c.handleTaskNote))
	mux.HandleFunc("POST /task/bulk-complete", c.write(c.handleBulkComplete))
	mux.HandleFunc("POST /subtask/create", c.write(c.handleSubtaskCreate))
}

// read wraps a GET handler with request logging; reads do not need the
// coordinator-wide mutation mutex beyond what Ops/Store already take
// internally for their own snapshot consistency.
func (c *Coordinator) read(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger().Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		metrics.RequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.status)).Inc()
	}
}

// write wraps a mutating handler with the coordinator's single mutual
// exclusion primitive: no two mutating handlers ever run their critical
// section concurrently, and a successful mutation marks the in-memory state
// dirty for the next flush/broadcast tick.
func (c *Coordinator) write(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger().Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")

		c.mu.Lock()
		defer c.mu.Unlock()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		if rec.status < 300 {
			c.dirty = true
		}
		metrics.RequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.status)).Inc()
	}
}

// statusRecorder captures the status code written by a handler so it can be
// reported to metrics after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (c *Coordinator) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *Coordinator) handleStatus(w http.ResponseWriter, r *http.Request) {
	report, err := c.ops.Status()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (c *Coordinator) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.ops.ListTasks(r.URL.Query().Get("status"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (c *Coordinator) handleParallelSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := c.ops.ParallelSummary()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (c *Coordinator) handleSubtaskProgress(w http.ResponseWriter, r *http.Request) {
	parentID := r.URL.Query().Get("parent_id")
	report, err := c.ops.SubtaskProgress(parentID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (c *Coordinator) handleSessionRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string      `json:"session_id"`
		Role      model.Role  `json:"role"`
		Context   string      `json:"context"`
		Labels    []string    `json:"labels"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	sess, err := c.ops.RegisterSession(body.SessionID, body.Role, body.Context, body.Labels)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (c *Coordinator) handleSessionHeartbeat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	if err := c.ops.Heartbeat(body.SessionID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (c *Coordinator) handleSessionEnd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
		Release   *bool  `json:"release"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	release := true
	if body.Release != nil {
		release = *body.Release
	}
	if err := c.ops.EndSession(body.SessionID, release); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (c *Coordinator) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var in ops.CreateTaskInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, err)
		return
	}
	task, err := c.ops.CreateTask(in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (c *Coordinator) handleTaskRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID       string   `json:"session_id"`
		PreferredLabels []string `json:"preferred_labels"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	task, err := c.ops.RequestTask(body.SessionID, body.PreferredLabels)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (c *Coordinator) handleTaskComplete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaskID    string `json:"task_id"`
		SessionID string `json:"session_id"`
		Note      string `json:"note"`
		Branch    string `json:"branch"`
		Force     bool   `json:"force"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	task, err := c.ops.CompleteTask(body.TaskID, body.SessionID, body.Note, body.Branch, body.Force)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (c *Coordinator) handleTaskReopen(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaskID    string `json:"task_id"`
		SessionID string `json:"session_id"`
		Note      string `json:"note"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	task, err := c.ops.ReopenTask(body.TaskID, body.Note, body.SessionID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (c *Coordinator) handleTaskEdit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaskID string `json:"task_id"`
		ops.EditFields
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	task, err := c.ops.EditTask(body.TaskID, body.EditFields)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (c *Coordinator) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaskID string `json:"task_id"`
		Force  bool   `json:"force"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	if err := c.ops.DeleteTask(body.TaskID, body.Force); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (c *Coordinator) handleTaskNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaskID    string `json:"task_id"`
		SessionID string `json:"session_id"`
		Note      string `json:"note"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	if err := c.ops.NoteTask(body.TaskID, body.SessionID, body.Note); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (c *Coordinator) handleBulkComplete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaskIDs   []string `json:"task_ids"`
		SessionID string   `json:"session_id"`
		Note      string   `json:"note"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	result, err := c.ops.BulkComplete(body.TaskIDs, body.SessionID, body.Note)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (c *Coordinator) handleSubtaskCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ParentID string `json:"parent_id"`
		ops.CreateTaskInput
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	task, err := c.ops.CreateSubtask(body.ParentID, body.CreateTaskInput)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}
