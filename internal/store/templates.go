package store

import (
	"encoding/json"
	"os"

	"github.com/speier/claudia/internal/model"
)

type templateFile struct {
	Templates []*model.Template `json:"templates"`
}

func (s *Store) loadTemplates() ([]*model.Template, error) {
	data, err := os.ReadFile(s.path(templatesFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, model.Internal(err, "reading templates.json")
	}
	var tf templateFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, model.Internal(err, "parsing templates.json")
	}
	return tf.Templates, nil
}

// Templates returns every known template.
func (s *Store) Templates() ([]*model.Template, error) {
	var templates []*model.Template
	err := s.withLock(func() error {
		var err error
		templates, err = s.loadTemplates()
		return err
	})
	return templates, err
}

// Template returns one template by id.
func (s *Store) Template(id string) (*model.Template, error) {
	templates, err := s.Templates()
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, model.NotFound("template %s", id)
}

// SaveTemplate upserts a template by id.
func (s *Store) SaveTemplate(t *model.Template) error {
	return s.withLock(func() error {
		templates, err := s.loadTemplates()
		if err != nil {
			return err
		}
		replaced := false
		for i, existing := range templates {
			if existing.ID == t.ID {
				templates[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			templates = append(templates, t)
		}
		return writeJSONAtomic(s.path(templatesFile), templateFile{Templates: templates})
	})
}
