package ops

import "github.com/speier/claudia/internal/model"

// InstantiateTemplate creates a task from a template plus one subtask per
// template subtask entry.
func (o *Ops) InstantiateTemplate(templateID, title string) (*model.Task, error) {
	tmpl, err := o.Store.Template(templateID)
	if err != nil {
		return nil, err
	}

	priority := tmpl.DefaultPriority
	parent, err := o.CreateTask(CreateTaskInput{
		Title:    title,
		Priority: &priority,
		Labels:   tmpl.DefaultLabels,
	})
	if err != nil {
		return nil, err
	}

	for _, sub := range tmpl.Subtasks {
		subPriority := priority
		if sub.Priority != nil {
			subPriority = *sub.Priority
		}
		if _, err := o.CreateSubtask(parent.ID, CreateTaskInput{
			Title:       sub.Title,
			Description: sub.Description,
			Priority:    &subPriority,
			Labels:      sub.Labels,
		}); err != nil {
			return nil, err
		}
	}

	return o.GetTask(parent.ID)
}
