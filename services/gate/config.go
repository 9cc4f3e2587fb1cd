// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/lintgate/services/gate/format"
	"github.com/AleutianAI/lintgate/services/gate/probe"
	"github.com/AleutianAI/lintgate/services/gate/runner"
	"github.com/AleutianAI/lintgate/services/gate/telemetry"
)

// DefaultConfigFile is read from the working directory when no path is given.
const DefaultConfigFile = ".lintgate.yaml"

// Environment variables that override file values.
const (
	EnvEnvManager  = "LINTGATE_ENV_MANAGER"
	EnvEnvironment = "LINTGATE_ENVIRONMENT"
	EnvLintCommand = "LINTGATE_LINT_COMMAND"
)

// Config controls a Gate and the transports built around it.
type Config struct {
	// EditTools lists the tool kinds that count as file edits.
	EditTools []string `yaml:"edit_tools" validate:"required,min=1,dive,required"`

	// EnvManager is the executable whose presence is probed first.
	EnvManager string `yaml:"env_manager" validate:"required"`

	// Environment must appear in the env manager's listing.
	Environment string `yaml:"environment" validate:"required"`

	// EnvListArgs are passed to EnvManager to list its environments.
	EnvListArgs []string `yaml:"env_list_args" validate:"required,min=1,dive,required"`

	// LintCommand is run through Shell when both probes pass.
	LintCommand string `yaml:"lint_command" validate:"required"`

	// LintTimeout bounds the lint command.
	LintTimeout time.Duration `yaml:"lint_timeout" validate:"gt=0"`

	// ProbeTimeout bounds each probe.
	ProbeTimeout time.Duration `yaml:"probe_timeout" validate:"gt=0"`

	// MaxLines caps the lint output carried in a failure.
	MaxLines int `yaml:"max_lines" validate:"gt=0"`

	Shell         string `yaml:"shell" validate:"required"`
	KillOnTimeout bool   `yaml:"kill_on_timeout"`
	WorkDir       string `yaml:"work_dir"`
	LocateCommand string `yaml:"locate_command" validate:"required"`

	Telemetry telemetry.Config `yaml:"telemetry"`
	Server    ServerConfig     `yaml:"server"`
	Watch     WatchConfig      `yaml:"watch"`
}

// ServerConfig configures the HTTP hook endpoint.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

// WatchConfig configures the directory watcher.
type WatchConfig struct {
	// Debounce is how long a path must stay quiet before it is linted.
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`

	// MinInterval is the minimum spacing between two lint runs.
	MinInterval time.Duration `yaml:"min_interval" validate:"gte=0"`

	// Ignore holds base names or glob patterns that are never linted.
	Ignore []string `yaml:"ignore"`
}

// DefaultConfig returns the built-in configuration: a hatch-managed project
// with a "develop" environment that exposes a "linters" script.
func DefaultConfig() Config {
	return Config{
		EditTools:     []string{ToolKindEdit},
		EnvManager:    "hatch",
		Environment:   "develop",
		EnvListArgs:   append([]string(nil), probe.DefaultEnvListArgs...),
		LintCommand:   "hatch --env develop run linters",
		LintTimeout:   runner.DefaultTimeout,
		ProbeTimeout:  probe.DefaultTimeout,
		MaxLines:      format.DefaultMaxLines,
		Shell:         runner.DefaultShell,
		LocateCommand: probe.DefaultLocateCommand,
		Telemetry:     telemetry.DefaultConfig(),
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
		Watch: WatchConfig{
			Debounce:    300 * time.Millisecond,
			MinInterval: 2 * time.Second,
			Ignore: []string{
				".git", "node_modules", "__pycache__", ".venv", "*.swp", "*.tmp",
				".ruff_cache", ".mypy_cache", ".pytest_cache", ".hatch", "*_cache",
			},
		},
	}
}

// LoadConfig reads configuration from path.
//
// Description:
//
//	Starts from DefaultConfig, overlays the YAML file, then applies the
//	LINTGATE_* environment overrides and validates the result. An empty
//	path means DefaultConfigFile; if that file does not exist the defaults
//	are used. An explicit path that does not exist is an error.
//
// Outputs:
//
//	Config - The validated configuration.
//	error - Read or parse failure, or ErrInvalidConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvEnvManager)); v != "" {
		c.EnvManager = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEnvironment)); v != "" {
		c.Environment = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLintCommand)); v != "" {
		c.LintCommand = v
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of c and its nested sections.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// IsEditTool reports whether kind is one of the configured edit tool kinds.
func (c Config) IsEditTool(kind string) bool {
	for _, t := range c.EditTools {
		if t == kind {
			return true
		}
	}
	return false
}
