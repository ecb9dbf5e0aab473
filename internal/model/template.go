package model

// SubtaskTemplate describes one subtask to be created when a Template is
// instantiated.
type SubtaskTemplate struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    *int     `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// Template is a reusable task shape plus its subtask breakdown.
type Template struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	DefaultPriority int               `json:"default_priority"`
	DefaultLabels   []string          `json:"default_labels,omitempty"`
	Subtasks        []SubtaskTemplate `json:"subtasks,omitempty"`
}
