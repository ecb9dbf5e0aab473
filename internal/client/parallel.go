package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/speier/claudia/internal/model"
	"github.com/speier/claudia/internal/ops"
)

// retrySchedule is the backoff delay before each retry attempt, capped at
// the final entry.
var retrySchedule = []time.Duration{
	500 * time.Millisecond,
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
}

const maxAttempts = 5

// httpDispatcher satisfies dispatcher by calling the Coordinator's HTTP
// API, retrying transient failures with exponential backoff. A 4xx
// response is never retried: it reports a client-side mistake the retry
// cannot fix.
type httpDispatcher struct {
	baseURL string
	client  *http.Client
}

func newHTTPDispatcher(baseURL string) *httpDispatcher {
	return &httpDispatcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// call issues method to path with reqBody marshaled as the JSON body (nil
// for none) and decodes a 2xx response into respBody (nil to discard).
func (d *httpDispatcher) call(method, path string, reqBody, respBody any) error {
	var payload []byte
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return model.Internal(err, "encoding request")
		}
		payload = data
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(retrySchedule[min(attempt-1, len(retrySchedule)-1)])
		}

		status, body, err := d.do(method, path, payload)
		if err != nil {
			lastErr = model.Unavailable("coordinator unreachable: %v", err)
			continue
		}

		if status >= 200 && status < 300 {
			if respBody != nil && len(body) > 0 {
				if err := json.Unmarshal(body, respBody); err != nil {
					return model.Internal(err, "decoding response from %s", path)
				}
			}
			return nil
		}

		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		kind := model.Kind(eb.Kind)
		if kind == "" {
			kind = model.KindFromHTTPStatus(status)
		}
		msg := eb.Error
		if msg == "" {
			msg = fmt.Sprintf("coordinator returned status %d", status)
		}

		if status >= 400 && status < 500 {
			return &model.ClaudiaError{Kind: kind, Message: msg}
		}
		lastErr = &model.ClaudiaError{Kind: kind, Message: msg}
	}
	return lastErr
}

func (d *httpDispatcher) do(method, path string, payload []byte) (int, []byte, error) {
	ctx := context.Background()
	if d.client.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.client.Timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, bodyReader)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

func (d *httpDispatcher) RegisterSession(sessionID string, role model.Role, context string, labels []string) (*model.Session, error) {
	var out model.Session
	err := d.call(http.MethodPost, "/session/register", map[string]any{
		"session_id": sessionID, "role": role, "context": context, "labels": labels,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *httpDispatcher) Heartbeat(sessionID string) error {
	return d.call(http.MethodPost, "/session/heartbeat", map[string]any{"session_id": sessionID}, nil)
}

func (d *httpDispatcher) EndSession(sessionID string, release bool) error {
	return d.call(http.MethodPost, "/session/end", map[string]any{"session_id": sessionID, "release": release}, nil)
}

func (d *httpDispatcher) RequestTask(sessionID string, preferredLabels []string) (*model.Task, error) {
	var out model.Task
	err := d.call(http.MethodPost, "/task/request", map[string]any{
		"session_id": sessionID, "preferred_labels": preferredLabels,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, nil
	}
	return &out, nil
}

func (d *httpDispatcher) CreateTask(in ops.CreateTaskInput) (*model.Task, error) {
	var out model.Task
	if err := d.call(http.MethodPost, "/task/create", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *httpDispatcher) GetTask(id string) (*model.Task, error) {
	tasks, err := d.ListTasks("")
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, model.NotFound("task %s", id)
}

func (d *httpDispatcher) ListTasks(status string) ([]*model.Task, error) {
	path := "/tasks"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out []*model.Task
	if err := d.call(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *httpDispatcher) EditTask(taskID string, fields ops.EditFields) (*model.Task, error) {
	body := struct {
		TaskID string `json:"task_id"`
		ops.EditFields
	}{TaskID: taskID, EditFields: fields}
	var out model.Task
	if err := d.call(http.MethodPost, "/task/edit", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *httpDispatcher) DeleteTask(taskID string, force bool) error {
	return d.call(http.MethodPost, "/task/delete", map[string]any{"task_id": taskID, "force": force}, nil)
}

func (d *httpDispatcher) NoteTask(taskID, sessionID, note string) error {
	return d.call(http.MethodPost, "/task/note", map[string]any{
		"task_id": taskID, "session_id": sessionID, "note": note,
	}, nil)
}

func (d *httpDispatcher) CompleteTask(taskID, sessionID, note, branch string, force bool) (*model.Task, error) {
	var out model.Task
	err := d.call(http.MethodPost, "/task/complete", map[string]any{
		"task_id": taskID, "session_id": sessionID, "note": note, "branch": branch, "force": force,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *httpDispatcher) ReopenTask(taskID, note, sessionID string) (*model.Task, error) {
	var out model.Task
	err := d.call(http.MethodPost, "/task/reopen", map[string]any{
		"task_id": taskID, "note": note, "session_id": sessionID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *httpDispatcher) BulkComplete(taskIDs []string, sessionID, note string) (*ops.BulkCompleteResult, error) {
	var out ops.BulkCompleteResult
	err := d.call(http.MethodPost, "/task/bulk-complete", map[string]any{
		"task_ids": taskIDs, "session_id": sessionID, "note": note,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// StartTimer, StopTimer and Undo have no route in the Coordinator's HTTP
// API table, so parallel mode reports them unavailable rather than
// silently no-opping.
func (d *httpDispatcher) StartTimer(taskID string) (*model.Task, error) {
	return nil, model.Unavailable("timer control is not available in parallel mode")
}

func (d *httpDispatcher) StopTimer(taskID string) (*model.Task, error) {
	return nil, model.Unavailable("timer control is not available in parallel mode")
}

func (d *httpDispatcher) CreateSubtask(parentID string, in ops.CreateTaskInput) (*model.Task, error) {
	body := struct {
		ParentID string `json:"parent_id"`
		ops.CreateTaskInput
	}{ParentID: parentID, CreateTaskInput: in}
	var out model.Task
	if err := d.call(http.MethodPost, "/subtask/create", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *httpDispatcher) SubtaskProgress(parentID string) (*ops.SubtaskProgressReport, error) {
	var out ops.SubtaskProgressReport
	path := "/subtask/progress?parent_id=" + url.QueryEscape(parentID)
	if err := d.call(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *httpDispatcher) Status() (*ops.StatusReport, error) {
	var out ops.StatusReport
	if err := d.call(http.MethodGet, "/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *httpDispatcher) ParallelSummary() (map[string][]*model.Task, error) {
	var out map[string][]*model.Task
	if err := d.call(http.MethodGet, "/parallel-summary", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *httpDispatcher) Undo() (*model.Task, error) {
	return nil, model.Unavailable("undo is not available in parallel mode")
}

// InstantiateTemplate has no route in the Coordinator's HTTP API table:
// templates are seeded and instantiated against the local templates.json,
// so this is single-mode-only for now.
func (d *httpDispatcher) InstantiateTemplate(templateID, title string) (*model.Task, error) {
	return nil, model.Unavailable("template instantiation is not available in parallel mode")
}
