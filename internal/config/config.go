// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config represents the build configuration. Every path is resolved relative
// to the working directory the CLI is started from.
type Config struct {
	// Paths
	OutputDir         string `json:"output_dir,omitempty" env:"RESUME_OUTPUT_DIR" validate:"required"`
	TemplatePath      string `json:"template,omitempty" env:"RESUME_TEMPLATE" validate:"required"`
	StagedTemplate    string `json:"staged_template,omitempty" env:"RESUME_STAGED_TEMPLATE" validate:"required,excludesall=/"`
	DefaultAvatarPath string `json:"default_avatar,omitempty" env:"RESUME_DEFAULT_AVATAR" validate:"required"`
	AvatarFileName    string `json:"avatar_name,omitempty" env:"RESUME_AVATAR_NAME" validate:"required,excludesall=/"`
	IconDir           string `json:"icon_dir,omitempty" env:"RESUME_ICON_DIR" validate:"required"`
	IconExtension     string `json:"icon_extension,omitempty" env:"RESUME_ICON_EXTENSION" validate:"required,startswith=."`
	ArtifactName      string `json:"artifact,omitempty" env:"RESUME_ARTIFACT" validate:"required,excludesall=/"`

	// Remote profile lookup
	ProfileAPIBase     string `json:"profile_api_base,omitempty" env:"RESUME_PROFILE_API_BASE" validate:"required,url"`
	HTTPTimeoutSeconds int    `json:"http_timeout_seconds,omitempty" env:"RESUME_HTTP_TIMEOUT_SECONDS"`
	PersistAvatar      *bool  `json:"persist_avatar,omitempty" env:"RESUME_PERSIST_AVATAR"`

	// External tools
	Converter             string `json:"converter,omitempty" env:"RESUME_CONVERTER" validate:"required"`
	Compiler              string `json:"compiler,omitempty" env:"RESUME_COMPILER" validate:"required"`
	CompileTimeoutSeconds int    `json:"compile_timeout_seconds,omitempty" env:"RESUME_COMPILE_TIMEOUT_SECONDS"`

	// Behavior
	Verbose bool `json:"verbose,omitempty" env:"RESUME_VERBOSE"`
}

// Default returns the configuration the build uses when nothing is overridden.
func Default() Config {
	return Config{
		OutputDir:          "output",
		TemplatePath:       filepath.Join("jankapunkt-template", "template.tex"),
		StagedTemplate:     "resume.tex",
		DefaultAvatarPath:  filepath.Join("jankapunkt-template", "untitled.jpg"),
		AvatarFileName:     "untitled.jpg",
		IconDir:            "icons",
		IconExtension:      ".svg",
		ArtifactName:       "resume.pdf",
		ProfileAPIBase:     "https://api.github.com",
		HTTPTimeoutSeconds: 10,
		PersistAvatar:      boolPtr(true),
		Converter:          "inkscape",
		Compiler:           "xelatex",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields with any RESUME_* environment variables that are set.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'http_timeout_seconds' must be non-negative")
	}
	if c.CompileTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'compile_timeout_seconds' must be non-negative")
	}

	// The artifact is matched by exact name inside the output directory
	if strings.ContainsRune(c.ArtifactName, filepath.Separator) || c.ArtifactName == "." || c.ArtifactName == ".." {
		return fmt.Errorf("config error: 'artifact' must be a bare file name: %s", c.ArtifactName)
	}

	// The engine names its output after the staged template
	if want := strings.TrimSuffix(c.StagedTemplate, filepath.Ext(c.StagedTemplate)) + ".pdf"; want != c.ArtifactName {
		return fmt.Errorf("config error: 'artifact' must be %s to match 'staged_template' %s", want, c.StagedTemplate)
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply built-in defaults beneath values loaded from a file.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.TemplatePath == "" {
		result.TemplatePath = defaults.TemplatePath
	}
	if result.StagedTemplate == "" {
		result.StagedTemplate = defaults.StagedTemplate
	}
	if result.DefaultAvatarPath == "" {
		result.DefaultAvatarPath = defaults.DefaultAvatarPath
	}
	if result.AvatarFileName == "" {
		result.AvatarFileName = defaults.AvatarFileName
	}
	if result.IconDir == "" {
		result.IconDir = defaults.IconDir
	}
	if result.IconExtension == "" {
		result.IconExtension = defaults.IconExtension
	}
	if result.ArtifactName == "" {
		result.ArtifactName = defaults.ArtifactName
	}
	if result.ProfileAPIBase == "" {
		result.ProfileAPIBase = defaults.ProfileAPIBase
	}
	if result.Converter == "" {
		result.Converter = defaults.Converter
	}
	if result.Compiler == "" {
		result.Compiler = defaults.Compiler
	}

	// Int fields: use default if zero
	if result.HTTPTimeoutSeconds == 0 {
		result.HTTPTimeoutSeconds = defaults.HTTPTimeoutSeconds
	}
	if result.CompileTimeoutSeconds == 0 {
		result.CompileTimeoutSeconds = defaults.CompileTimeoutSeconds
	}

	// Pointer fields: use default only if unset, so a file can say false
	if result.PersistAvatar == nil && defaults.PersistAvatar != nil {
		result.PersistAvatar = boolPtr(*defaults.PersistAvatar)
	}

	// Bool fields: a file can only switch these on, so OR them in
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// PersistFetchedAvatar reports whether a downloaded avatar is also saved to
// the default avatar path. Unset means yes.
func (c *Config) PersistFetchedAvatar() bool {
	return c.PersistAvatar == nil || *c.PersistAvatar
}

// HTTPTimeout returns the bound applied to each profile API request.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// CompileTimeout returns the compiler bound; zero means no bound.
func (c *Config) CompileTimeout() time.Duration {
	return time.Duration(c.CompileTimeoutSeconds) * time.Second
}

// StagedTemplatePath is where the template is copied inside the output directory.
func (c *Config) StagedTemplatePath() string {
	return filepath.Join(c.OutputDir, c.StagedTemplate)
}

// AvatarDestPath is where the resolved avatar is copied inside the output directory.
func (c *Config) AvatarDestPath() string {
	return filepath.Join(c.OutputDir, c.AvatarFileName)
}

// Resolve builds the effective configuration: built-in defaults, then the
// optional JSON file at path, then RESUME_* environment variables.
// CLI flags are applied on top by the caller.
func Resolve(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	cfg = cfg.MergeWithDefaults(Default())
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func boolPtr(b bool) *bool {
	return &b
}
