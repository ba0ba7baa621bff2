package config

import (
	"fmt"
	"strconv"
	"time"
)

// Key describes a configuration key.
type Key struct {
	Key         string   // Full key name (e.g., "github.token")
	Description string   // Human-readable description
	EnvVars     []string // Extra env var names, checked after TT_<KEY>
	Secret      bool     // Masked by Config.Redacted
	Default     string   // Default value (empty = no default)
	Validate    func(string) error
}

// Keys defines all valid configuration keys. Besides TT_<KEY> every key also
// honours the legacy variable names (GITHUB_TOKEN, PATH_TASK, ...), so existing .env files
// keep working.
var Keys = []Key{
	{
		Key:         "tasks.path",
		Description: "Directory holding the task documents",
		EnvVars:     []string{"PATH_TASK"},
		Default:     "./tasks",
	},
	{
		Key:         "timezone",
		Description: "IANA timezone used for session dates and times",
		EnvVars:     []string{"TIME_TRACKER_TIMEZONE"},
		Default:     "UTC",
		Validate:    validateTimezone,
	},
	{
		Key:         "github.token",
		Description: "GitHub token with repo and project scopes",
		EnvVars:     []string{"GITHUB_TOKEN"},
		Secret:      true,
	},
	{
		Key:         "github.repo",
		Description: "Repository as owner/repo",
		EnvVars:     []string{"GITHUB_REPO"},
	},
	{
		Key:         "github.api_url",
		Description: "REST API base URL",
		Default:     "https://api.github.com",
	},
	{
		Key:         "github.graphql_url",
		Description: "GraphQL endpoint",
		Default:     "https://api.github.com/graphql",
	},
	{
		Key:         "github.project.id",
		Description: "Projects (v2) node ID",
		EnvVars:     []string{"GITHUB_PROJECT_ID"},
	},
	{
		Key:         "github.project.number",
		Description: "Projects (v2) number owned by the token's user",
		EnvVars:     []string{"GITHUB_PROJECT_NUMBER"},
		Default:     "0",
		Validate:    validateNonNegative,
	},
	{
		Key:         "github.project.status_field_id",
		Description: "Node ID of the project's single select status field",
		EnvVars:     []string{"GITHUB_PROJECT_STATUS_FIELD_ID"},
	},
	{
		Key:         "github.project.options.in-progress",
		Description: "Status option ID for in-progress tasks",
		EnvVars:     []string{"TIME_TRACKER_IN_PROGRESS"},
	},
	{
		Key:         "github.project.options.waiting",
		Description: "Status option ID for paused tasks",
		EnvVars:     []string{"TIME_TRACKER_WAITING"},
	},
	{
		Key:         "github.project.options.completed",
		Description: "Status option ID for finished tasks",
		EnvVars:     []string{"TIME_TRACKER_COMPLETE"},
	},
}

// LookupKey returns the definition of key.
func LookupKey(key string) (Key, bool) {
	for _, k := range Keys {
		if k.Key == key {
			return k, true
		}
	}
	return Key{}, false
}

func validateTimezone(s string) error {
	if _, err := time.LoadLocation(s); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s, err)
	}
	return nil
}

func validateNonNegative(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	if n < 0 {
		return fmt.Errorf("invalid number %d: must not be negative", n)
	}
	return nil
}
