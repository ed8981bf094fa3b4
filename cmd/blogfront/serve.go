package main

import (
	"github.com/spf13/cobra"

	"github.com/eringen/blogfront"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			logger.Info("starting blogfront", "version", Version)

			app := blogfront.New(cfg, blogfront.ViewFuncs{}, blogfront.WithLogger(logger))
			return app.Start(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.String("addr", "", "listen address")
	f.String("content-dir", "", "directory with posts.json and pages/")
	f.String("content-url", "", "remote content root, overrides --content-dir")
	f.String("base-path", "", `mount point, e.g. "/blog/", or "auto"`)
	f.Bool("watch", false, "invalidate the manifest cache when content changes")
	return cmd
}
