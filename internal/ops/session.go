package ops

import "github.com/speier/claudia/internal/model"

// RegisterSession registers or updates a session.
func (o *Ops) RegisterSession(sessionID string, role model.Role, context string, labels []string) (*model.Session, error) {
	return o.Registry.Register(sessionID, role, context, labels)
}

// Heartbeat refreshes a session's liveness timestamp.
func (o *Ops) Heartbeat(sessionID string) error {
	return o.Registry.Heartbeat(sessionID)
}

// EndSession removes a session, releasing its task unless release is false.
func (o *Ops) EndSession(sessionID string, release bool) error {
	_, err := o.Registry.End(sessionID, release)
	return err
}

// RequestTask asks the scheduler for the next task the session should
// claim.
func (o *Ops) RequestTask(sessionID string, preferredLabels []string) (*model.Task, error) {
	maxConcurrent := 1
	if o.Config != nil {
		maxConcurrent = o.Config.MaxConcurrent
	}
	return o.Registry.RequestTask(sessionID, preferredLabels, maxConcurrent)
}

// Cleanup ends every session stale beyond the configured threshold.
func (o *Ops) Cleanup() ([]string, error) {
	threshold := 180
	if o.Config != nil {
		threshold = o.Config.CleanupThresholdSeconds
	}
	return o.Registry.Cleanup(threshold)
}
