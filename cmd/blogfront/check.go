package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/eringen/blogfront/content"
)

var (
	errorLabel   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warningLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	fileLabel    = lipgloss.NewStyle().Faint(true)
)

func checkCmd() *cobra.Command {
	var pattern string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Lint the metadata block of every page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			findings, err := content.Check(os.DirFS(filepath.Join(cfg.ContentDir, content.PagesDir)), pattern)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			errs := 0
			for _, f := range findings {
				label := warningLabel.Render(string(f.Severity))
				if f.Severity == content.SeverityError {
					errs++
					label = errorLabel.Render(string(f.Severity))
				}
				fmt.Fprintf(w, "%s %s %s\n", label, fileLabel.Render(f.File), f.Message)
			}
			if errs > 0 {
				return fmt.Errorf("%d error(s) in %d finding(s)", errs, len(findings))
			}
			fmt.Fprintf(w, "%d finding(s), no errors\n", len(findings))
			return nil
		},
	}
	f := cmd.Flags()
	f.String("content-dir", "", "directory with posts.json and pages/")
	f.StringVar(&pattern, "pattern", content.DefaultPattern, "glob selecting pages, relative to pages/")
	return cmd
}
