package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eringen/blogfront/content"
)

func manifestCmd() *cobra.Command {
	var (
		pattern string
		stdout  bool
	)
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Rebuild posts.json from the pages directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			posts, err := content.BuildManifest(os.DirFS(filepath.Join(cfg.ContentDir, content.PagesDir)), pattern)
			if err != nil {
				return err
			}
			if stdout {
				return content.WriteManifest(cmd.OutOrStdout(), posts)
			}

			var buf bytes.Buffer
			if err := content.WriteManifest(&buf, posts); err != nil {
				return err
			}
			out := filepath.Join(cfg.ContentDir, content.ManifestName)
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d posts to %s\n", len(posts), out)
			return nil
		},
	}
	f := cmd.Flags()
	f.String("content-dir", "", "directory with posts.json and pages/")
	f.StringVar(&pattern, "pattern", content.DefaultPattern, "glob selecting pages, relative to pages/")
	f.BoolVar(&stdout, "stdout", false, "print the manifest instead of writing it")
	return cmd
}
