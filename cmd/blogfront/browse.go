package main

import (
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/eringen/blogfront/internal/tui"
	"github.com/eringen/blogfront/theme"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Search and read posts in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// The alternate screen owns the terminal; loader warnings would tear it.
			loader, err := cfg.NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
			if err != nil {
				return err
			}

			ambient := theme.Light
			if lipgloss.HasDarkBackground() {
				ambient = theme.Dark
			}
			opts := tui.Options{
				Title:      cfg.Name,
				Loader:     loader,
				Ambient:    ambient,
				Debounce:   cfg.SearchDebounce,
				DateLayout: cfg.DateLayout,
			}
			if store, err := theme.DefaultFileStore(); err == nil {
				opts.Store = store
			}

			_, err = tea.NewProgram(tui.New(opts), tea.WithAltScreen()).Run()
			return err
		},
	}
	f := cmd.Flags()
	f.String("content-dir", "", "directory with posts.json and pages/")
	f.String("content-url", "", "remote content root, overrides --content-dir")
	return cmd
}
