// Package config loads the pagetool configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/morningstar/pagetool/internal/edition"
	"github.com/morningstar/pagetool/internal/helpers"
	"github.com/morningstar/pagetool/internal/upload"
)

// LoadedPath tracks which config file was loaded, for error messages.
var LoadedPath string

// ErrUnknownTarget is returned when a named delivery target is not
// configured.
var ErrUnknownTarget = errors.New("unknown delivery target")

// Config holds the user's configuration.
type Config struct {
	// PagesRoot is the directory holding edition directories. A leading ~
	// is expanded on use.
	PagesRoot string `yaml:"pages_root"`
	// Directory name templates as Go time layouts; empty fields use the
	// house defaults.
	EditionLayout  string `yaml:"edition_layout,omitempty"`
	PressPDFLayout string `yaml:"press_pdf_layout,omitempty"`
	WebPDFLayout   string `yaml:"web_pdf_layout,omitempty"`
	// Targets are the named delivery servers pages can be uploaded to.
	Targets map[string]Target `yaml:"targets,omitempty"`
}

// Target describes one delivery server.
type Target struct {
	// Protocol is "ftp" or "sftp".
	Protocol string `yaml:"protocol"`
	Host     string `yaml:"host"`
	// Port defaults to the protocol's standard port.
	Port int    `yaml:"port,omitempty"`
	User string `yaml:"user"`
	// Password may be left empty: SFTP then authenticates via the SSH
	// agent and FTP prompts when run interactively.
	Password string `yaml:"password,omitempty"`
	// Path is the remote directory (or chain of subdirectories) to change
	// into before uploading.
	Path string `yaml:"path,omitempty"`
	// KeepNames uploads pages under their in-house filenames instead of
	// their external names.
	KeepNames bool `yaml:"keep_names,omitempty"`
	// KnownHosts is a known_hosts file for strict SFTP host key checking.
	// When empty any host key is accepted.
	KnownHosts string `yaml:"known_hosts,omitempty"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{PagesRoot: edition.DefaultPagesRoot}
}

// Load reads the configuration. When explicit is non-empty only that path
// is tried; otherwise the working directory and the user config directory
// are searched, and a missing file yields the defaults.
func Load(explicit string) (*Config, error) {
	if explicit != "" {
		return readFile(explicit)
	}

	paths := []string{"pagetool.yaml"}
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "pagetool", "config.yaml"))
	}

	for _, path := range paths {
		exists, err := helpers.FileExists(path)
		if err != nil {
			return nil, fmt.Errorf("check config %s: %w", path, err)
		}
		if exists {
			return readFile(path)
		}
	}
	LoadedPath = ""
	return Default(), nil
}

func readFile(path string) (*Config, error) {
	expanded, err := helpers.ExpandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", expanded, err)
	}
	if cfg.PagesRoot == "" {
		cfg.PagesRoot = edition.DefaultPagesRoot
	}
	LoadedPath = expanded

	warnInsecurePermissions(expanded, cfg)
	return cfg, nil
}

// warnInsecurePermissions tightens the config file's mode when it holds
// target passwords and is readable by other users.
func warnInsecurePermissions(path string, cfg *Config) {
	hasPassword := false
	for _, t := range cfg.Targets {
		if t.Password != "" {
			hasPassword = true
			break
		}
	}
	if !hasPassword || runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.Mode().Perm()&0o077 == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "WARNING: config file %s holds passwords but is readable by others (%04o)\n",
		path, info.Mode().Perm())
	if err := os.Chmod(path, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "   fix manually: chmod 600 %s\n", path)
	}
}

// Layouts returns the edition directory layouts configured, with defaults
// for unset fields.
func (c *Config) Layouts() edition.Layouts {
	return edition.Layouts{
		Edition: c.EditionLayout,
		Press:   c.PressPDFLayout,
		Web:     c.WebPDFLayout,
	}
}

// TargetByName looks up a configured delivery target and validates it.
func (c *Config) TargetByName(name string) (Target, error) {
	t, ok := c.Targets[name]
	if !ok {
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}
	if err := t.Validate(); err != nil {
		return Target{}, fmt.Errorf("target %q: %w", name, err)
	}
	return t, nil
}

// Validate checks that the target can be dialled.
func (t Target) Validate() error {
	switch t.Protocol {
	case "ftp", "sftp":
	case "":
		return errors.New("protocol is required")
	default:
		return fmt.Errorf("unsupported protocol %q (want ftp or sftp)", t.Protocol)
	}
	if t.Host == "" {
		return errors.New("host is required")
	}
	if t.User == "" {
		return errors.New("user is required")
	}
	if t.Path != "" {
		if err := helpers.ValidatePath(t.Path); err != nil {
			return fmt.Errorf("path: %w", err)
		}
	}
	return nil
}

// SFTPConfig converts the target to the upload package's SFTP settings.
func (t Target) SFTPConfig() upload.SFTPConfig {
	return upload.SFTPConfig{
		Host:       t.Host,
		Port:       t.Port,
		User:       t.User,
		Password:   t.Password,
		KnownHosts: t.KnownHosts,
	}
}
