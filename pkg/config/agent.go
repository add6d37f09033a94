package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// agentIDFile is the name of the file holding the persisted agent id,
// stored next to the config file.
const agentIDFile = "agent-id"

// EnsureAgentID returns the agent's stable identifier, generating and
// persisting one on first start. The id lives next to the config file so
// restarts and upgrades keep the same hub identity.
func (c *Config) EnsureAgentID() (string, error) {
	if c.Agent.ID != "" {
		return c.Agent.ID, nil
	}

	path := filepath.Join(getConfigDir(), agentIDFile)
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			c.Agent.ID = id
			return id, nil
		}
	}

	id := uuid.New().String()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		return "", fmt.Errorf("failed to persist agent id: %w", err)
	}

	c.Agent.ID = id
	return id, nil
}
