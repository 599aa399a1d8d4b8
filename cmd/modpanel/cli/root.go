package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	apiURL     string
	verbose    bool
	appVersion string // set in Execute, reported by serve and mcp
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modpanel",
		Short: "Moderation dashboard for the SkillExchange platform",
		Long: `modpanel: the SkillExchange moderation dashboard.

It logs an administrator into the SkillExchange backend, loads every user and
report, and lets moderators triage the report queue, change user status and
hide chat messages. Use it from the terminal, serve it as a local HTTP API,
or expose it to AI agents over MCP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./modpanel.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for the session store (default: ~/.modpanel)")
	cmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "SkillExchange backend base URL")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	viper.BindPFlag("api.base_url", cmd.PersistentFlags().Lookup("api-url"))

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newDashboardCmd())
	cmd.AddCommand(newReportsCmd())
	cmd.AddCommand(newUsersCmd())
	cmd.AddCommand(newMessagesCmd())
	cmd.AddCommand(newActionsCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newOpenAPICmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

// initConfig sets up environment overrides. The config file itself is read
// by loadSettings so that ${VAR} references in it are expanded.
func initConfig() {
	viper.SetEnvPrefix("MODPANEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// configFilePath returns the config file to load, or "" when there is none.
func configFilePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	candidates := []string{"modpanel.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".modpanel", "modpanel.yaml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
