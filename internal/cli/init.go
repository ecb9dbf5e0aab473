package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speier/claudia/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a state directory with default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if err := cfg.Save(stateDir); err != nil {
			return exitError(err)
		}
		fmt.Printf("initialized state directory %s\n", stateDir)
		return nil
	},
}
