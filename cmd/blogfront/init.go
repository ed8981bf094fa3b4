package main

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eringen/blogfront"
	"github.com/eringen/blogfront/content"
	"github.com/eringen/blogfront/scaffold"
)

// scaffoldData holds the template variables passed to every scaffold template.
type scaffoldData struct {
	SiteName   string
	ConfigFile string
	ContentDir string
	Date       string
}

// starterConfig is the blogfront.yaml written by init. Durations are
// strings so the file reads "1m0s" rather than nanoseconds.
type starterConfig struct {
	Name             string `yaml:"name"`
	URL              string `yaml:"url"`
	Description      string `yaml:"description"`
	Lang             string `yaml:"lang"`
	Addr             string `yaml:"addr"`
	BasePath         string `yaml:"base_path"`
	ContentDir       string `yaml:"content_dir"`
	StaticDir        string `yaml:"static_dir"`
	Watch            bool   `yaml:"watch"`
	ManifestCacheTTL string `yaml:"manifest_cache_ttl"`
	SearchDebounce   string `yaml:"search_debounce"`
	DateLayout       string `yaml:"date_layout"`
}

// now is replaced in tests.
var now = time.Now

func initCmd() *cobra.Command {
	var name, siteURL string
	cmd := &cobra.Command{
		Use:   "init <dir>",
		Short: "Create a new blog with a starter post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.OutOrStdout(), args[0], name, siteURL)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "site name (default derived from <dir>)")
	cmd.Flags().StringVar(&siteURL, "url", "", "canonical site URL")
	return cmd
}

func runInit(w io.Writer, dir, name, siteURL string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	cfg := blogfront.SiteConfig{Name: name, URL: siteURL}
	if cfg.Name == "" {
		cfg.Name = toTitle(filepath.Base(dir))
	}
	cfg.Watch = true
	if err := blogfront.PrepareConfig(&cfg); err != nil {
		return err
	}

	data := scaffoldData{
		SiteName:   cfg.Name,
		ConfigFile: blogfront.ConfigName + ".yaml",
		ContentDir: cfg.ContentDir,
		Date:       now().Format(time.DateOnly),
	}

	fmt.Fprintf(w, "Creating new blog: %s\n\n", dir)

	if err := writeTemplates(w, dir, data); err != nil {
		return err
	}
	if err := writeStarterConfig(w, dir, cfg); err != nil {
		return err
	}
	if err := writeStarterManifest(w, filepath.Join(dir, cfg.ContentDir)); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Done! Next steps:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  cd %s\n", dir)
	fmt.Fprintln(w, "  blogfront serve")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Add posts under %s, then run 'blogfront manifest'.\n", filepath.Join(cfg.ContentDir, content.PagesDir))
	fmt.Fprintln(w, "Set BLOGFRONT_SESSION_SECRET in .env for production.")
	return nil
}

func writeTemplates(w io.Writer, dir string, data scaffoldData) error {
	root := "templates"
	return fs.WalkDir(scaffold.Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		// Pages live inside the content directory.
		if relPath == content.PagesDir || strings.HasPrefix(relPath, content.PagesDir+string(filepath.Separator)) {
			relPath = filepath.Join(data.ContentDir, relPath)
		}

		outPath := strings.TrimSuffix(filepath.Join(dir, relPath), ".tmpl")
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		src, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(src))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}
		return writeFile(w, outPath, buf.Bytes())
	})
}

func writeStarterConfig(w io.Writer, dir string, cfg blogfront.SiteConfig) error {
	out, err := yaml.Marshal(starterConfig{
		Name:             cfg.Name,
		URL:              cfg.URL,
		Description:      cfg.Description,
		Lang:             cfg.Lang,
		Addr:             cfg.Addr,
		BasePath:         cfg.BasePath,
		ContentDir:       cfg.ContentDir,
		StaticDir:        cfg.StaticDir,
		Watch:            cfg.Watch,
		ManifestCacheTTL: cfg.ManifestCacheTTL.String(),
		SearchDebounce:   cfg.SearchDebounce.String(),
		DateLayout:       cfg.DateLayout,
	})
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return writeFile(w, filepath.Join(dir, blogfront.ConfigName+".yaml"), out)
}

func writeStarterManifest(w io.Writer, contentDir string) error {
	posts, err := content.BuildManifest(os.DirFS(filepath.Join(contentDir, content.PagesDir)), content.DefaultPattern)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := content.WriteManifest(&buf, posts); err != nil {
		return err
	}
	return writeFile(w, filepath.Join(contentDir, content.ManifestName), buf.Bytes())
}

func writeFile(w io.Writer, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	fmt.Fprintf(w, "  created %s\n", path)
	return nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
