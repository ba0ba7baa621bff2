package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comandaflow/timetrack/internal/config"
	"github.com/comandaflow/timetrack/internal/debug"
	"github.com/comandaflow/timetrack/internal/ui"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Run: func(cmd *cobra.Command, args []string) {
		redacted := cfg.Redacted()
		if jsonOutput {
			outputJSON(redacted)
			return
		}
		out, err := redacted.YAML()
		if err != nil {
			FatalError("failed to render config: %v", err)
		}
		debug.PrintNormal("%s\n", ui.RenderMuted("# "+configSource()))
		_, _ = os.Stdout.Write(out)
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the supported configuration keys",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			type keyInfo struct {
				Key         string   `json:"key"`
				Description string   `json:"description"`
				Default     string   `json:"default,omitempty"`
				Env         []string `json:"env"`
				Secret      bool     `json:"secret,omitempty"`
			}
			keys := make([]keyInfo, 0, len(config.Keys))
			for _, k := range config.Keys {
				keys = append(keys, keyInfo{
					Key:         k.Key,
					Description: k.Description,
					Default:     k.Default,
					Env:         envNames(k),
					Secret:      k.Secret,
				})
			}
			outputJSON(keys)
			return
		}
		for _, k := range config.Keys {
			fmt.Printf("%s\n  %s\n", ui.RenderBold(k.Key), k.Description)
			if k.Default != "" {
				fmt.Printf("  default: %s\n", k.Default)
			}
			fmt.Printf("  env: %s\n", strings.Join(envNames(k), ", "))
		}
	},
}

func envNames(k config.Key) []string {
	return append([]string{config.EnvPrefix + "_" + config.EnvName(k.Key)}, k.EnvVars...)
}

func init() {
	configCmd.AddCommand(configShowCmd, configKeysCmd)
	rootCmd.AddCommand(configCmd)
}
