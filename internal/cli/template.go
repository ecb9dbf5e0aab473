package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/speier/claudia/internal/config"
	"github.com/speier/claudia/internal/model"
	"github.com/speier/claudia/internal/store"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage task templates",
}

var templateImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Load template definitions from a templates.yaml file into the project",
	Long: `Reads a YAML document containing a list of templates and writes each one
into templates.json. Templates are local seed data, not coordinated state,
so import always runs against the state directory directly rather than
through the client façade.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return exitError(err)
		}
		var templates []*model.Template
		if err := yaml.Unmarshal(data, &templates); err != nil {
			return exitError(fmt.Errorf("parsing %s: %w", args[0], err))
		}

		cfg, err := config.Load(stateDir)
		if err != nil {
			return exitError(err)
		}
		s, err := store.New(stateDir, time.Duration(cfg.LockTimeoutSeconds)*time.Second)
		if err != nil {
			return exitError(err)
		}
		for _, tmpl := range templates {
			if tmpl.ID == "" {
				return exitError(fmt.Errorf("template %q is missing an id", tmpl.Name))
			}
			if err := s.SaveTemplate(tmpl); err != nil {
				return exitError(err)
			}
		}
		fmt.Printf("imported %d template(s)\n", len(templates))
		return nil
	},
}

var templateInstantiateCmd = &cobra.Command{
	Use:   "instantiate [template-id] [title]",
	Short: "Create a task and its subtasks from a template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		task, err := a.InstantiateTemplate(args[0], args[1])
		if err != nil {
			return exitError(err)
		}
		return printJSON(task)
	},
}

func init() {
	templateCmd.AddCommand(templateImportCmd, templateInstantiateCmd)
}
