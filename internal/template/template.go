// Package template deploys starter bot projects from embedded templates.
package template

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed all:templates
var templates embed.FS

// Style selects the kind of starter bot.
type Style string

const (
	StyleSlash  Style = "slash"
	StylePrefix Style = "prefix"
)

var (
	ErrUnknownStyle   = errors.New("template: unknown style")
	ErrUnknownLicense = errors.New("template: unknown license")
	ErrExists         = errors.New("template: file already exists")
)

// ParseStyle accepts "slash" or "prefix".
func ParseStyle(s string) (Style, error) {
	switch st := Style(strings.ToLower(strings.TrimSpace(s))); st {
	case StyleSlash, StylePrefix:
		return st, nil
	}
	return "", fmt.Errorf("%w %q (want slash or prefix)", ErrUnknownStyle, s)
}

// Profile is the author data substituted into a template.
type Profile struct {
	StartingVersion    string
	DefaultDescription string
	GitProfileURL      string
	AuthorEmail        string
	AuthorName         string
	PreferredLicense   string
}

// Placeholder is deployed when no profile is given.
var Placeholder = Profile{
	StartingVersion:    "0.1.0",
	DefaultDescription: "Simple template for a discordgo bot built with filament.",
	GitProfileURL:      "https://github.com/keshon",
	AuthorEmail:        "author@example.com",
	AuthorName:         "keshon",
	PreferredLicense:   "unlicense",
}

// Options configure Deploy.
type Options struct {
	Profile Profile
	// Project defaults to the base name of the target directory.
	Project string
	// Force overwrites existing files.
	Force bool
	Now   func() time.Time
}

type data struct {
	Profile
	Project string
	Module  string
	Style   Style
	Year    int
}

// Deploy writes the template for style into dir and returns the paths it
// wrote, relative to dir. Existing files are left alone and reported as
// ErrExists unless opts.Force is set.
func Deploy(dir string, style Style, opts Options) ([]string, error) {
	if _, err := ParseStyle(string(style)); err != nil {
		return nil, err
	}
	if opts.Profile == (Profile{}) {
		opts.Profile = Placeholder
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}
	if opts.Project == "" {
		opts.Project = filepath.Base(abs)
	}

	d := data{
		Profile: opts.Profile,
		Project: opts.Project,
		Module:  modulePath(opts.Profile.GitProfileURL, opts.Project),
		Style:   style,
		Year:    opts.Now().Year(),
	}

	license, err := licenseFile(opts.Profile.PreferredLicense)
	if err != nil {
		return nil, err
	}

	files := map[string]string{"LICENSE": license}
	root := path.Join("templates", string(style)+"_bot")
	err = fs.WalkDir(templates, root, func(p string, e fs.DirEntry, err error) error {
		if err != nil || e.IsDir() {
			return err
		}
		rel := strings.TrimPrefix(p, root+"/")
		files[strings.TrimSuffix(rel, ".tmpl")] = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}

	if !opts.Force {
		for rel := range files {
			if _, err := os.Stat(filepath.Join(abs, filepath.FromSlash(rel))); err == nil {
				return nil, fmt.Errorf("%w: %s", ErrExists, rel)
			}
		}
	}

	var written []string
	for _, rel := range slices.Sorted(maps.Keys(files)) {
		if err := render(abs, rel, files[rel], d); err != nil {
			return written, err
		}
		written = append(written, rel)
		log.Debug().Str("component", "template").Str("file", rel).Msg("deployed")
	}
	return written, nil
}

func render(dir, rel, src string, d data) error {
	raw, err := templates.ReadFile(src)
	if err != nil {
		return fmt.Errorf("template: %w", err)
	}
	tpl, err := template.New(rel).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return fmt.Errorf("template %s: %w", rel, err)
	}

	dst := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("template: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("template: %w", err)
	}
	if err := tpl.Execute(f, d); err != nil {
		f.Close()
		return fmt.Errorf("template %s: %w", rel, err)
	}
	return f.Close()
}

func licenseFile(name string) (string, error) {
	p := path.Join("templates", "licenses", strings.ToLower(name)+".tmpl")
	if _, err := fs.Stat(templates, p); err != nil {
		return "", fmt.Errorf("%w %q", ErrUnknownLicense, name)
	}
	return p, nil
}

// modulePath turns "https://github.com/user" and "bot" into "github.com/user/bot".
func modulePath(profileURL, project string) string {
	host := strings.TrimSuffix(profileURL, "/")
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if host == "" {
		return project
	}
	return host + "/" + project
}
