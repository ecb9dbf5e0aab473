package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/speier/claudia/internal/client"
)

func newAgent() (*client.Agent, error) {
	return client.New(stateDir)
}

// resolveSession returns the --session flag value, or a freshly generated
// session id when the flag was left empty.
func resolveSession() string {
	if sessionID != "" {
		return sessionID
	}
	return "session-" + uuid.New().String()[:8]
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func exitError(err error) error {
	return fmt.Errorf("claudia: %w", err)
}
