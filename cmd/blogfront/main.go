// Command blogfront serves, browses and maintains a markdown blog.
package main

import (
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/blogfront"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("blogfront failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blogfront",
		Short:         "A markdown blog front end: web server, terminal browser and content tools",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "config file (default ./blogfront.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(serveCmd())
	root.AddCommand(browseCmd())
	root.AddCommand(manifestCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	return root
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"log-level":   "log_level",
	"addr":        "addr",
	"content-dir": "content_dir",
	"content-url": "content_url",
	"base-path":   "base_path",
	"watch":       "watch",
}

// loadConfig resolves the site configuration for cmd. Only flags the
// command defines are bound, and only explicitly set flags override the
// file and environment.
func loadConfig(cmd *cobra.Command) (blogfront.SiteConfig, error) {
	v := viper.New()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	}
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return blogfront.SiteConfig{}, err
		}
	}
	return blogfront.LoadConfig(v)
}

// newLogger installs the JSON logger at the configured level as the default.
func newLogger(cfg blogfront.SiteConfig) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	return logger
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the blogfront version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blogfront %s\n", Version)
		},
	}
}
