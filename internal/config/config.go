// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"anycode/internal/helper"
	"anycode/internal/tools"
)

// Config represents the engine configuration.
type Config struct {
	ToolLimits    ToolLimits              `json:"tool_limits,omitempty"`
	Sandbox       SandboxSettings         `json:"sandbox,omitempty"`
	HelperServers map[string]HelperServer `json:"helper_servers,omitempty"`
	LogFile       string                  `json:"log_file,omitempty"`
}

// ToolLimits configures resource limits for file-reading tools.
type ToolLimits struct {
	MaxFileSizeBytes int64 `json:"max_file_size_bytes,omitempty"`
	MaxViewLines     int   `json:"max_view_lines,omitempty"`
	MaxLineWidth     int   `json:"max_line_width,omitempty"`
}

// SandboxSettings bounds shell command execution.
type SandboxSettings struct {
	BannedCommands        []string `json:"banned_commands,omitempty"`
	DefaultTimeoutSeconds int      `json:"default_timeout_seconds,omitempty"`
	MaxTimeoutSeconds     int      `json:"max_timeout_seconds,omitempty"`
}

// HelperServer describes a long-lived helper subprocess to start around tool
// execution.
type HelperServer struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// DefaultConfig returns a config with default values: the filesystem and
// version-control helpers the engine conventionally runs alongside, and the
// built-in tool limits.
func DefaultConfig() *Config {
	defaultLimits := tools.DefaultLimits()
	defaultSandbox := tools.DefaultSandboxConfig()
	return &Config{
		ToolLimits: ToolLimits{
			MaxFileSizeBytes: defaultLimits.MaxFileSizeBytes,
			MaxViewLines:     defaultLimits.MaxViewLines,
			MaxLineWidth:     defaultLimits.MaxLineWidth,
		},
		Sandbox: SandboxSettings{
			DefaultTimeoutSeconds: int(defaultSandbox.DefaultTimeout.Seconds()),
			MaxTimeoutSeconds:     int(defaultSandbox.MaxTimeout.Seconds()),
		},
		HelperServers: map[string]HelperServer{
			"filesystem": {
				Command: "npx",
				Args:    []string{"@modelcontextprotocol/server-filesystem", "."},
			},
			"git": {
				Command: "uv",
				Args:    []string{"--directory", ".", "run", "mcp-server-git"},
			},
		},
	}
}

// LoadConfig loads configuration from a JSON file on top of the defaults.
// Unknown keys are rejected so typos surface instead of being ignored.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(config); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	return config, nil
}

// Apply pushes the configuration into the tools package.
func (c *Config) Apply() {
	tools.ConfigureLimits(tools.Limits{
		MaxFileSizeBytes: c.ToolLimits.MaxFileSizeBytes,
		MaxViewLines:     c.ToolLimits.MaxViewLines,
		MaxLineWidth:     c.ToolLimits.MaxLineWidth,
	})
	tools.ConfigureSandbox(tools.SandboxConfig{
		ExtraBannedCommands: c.Sandbox.BannedCommands,
		DefaultTimeout:      time.Duration(c.Sandbox.DefaultTimeoutSeconds) * time.Second,
		MaxTimeout:          time.Duration(c.Sandbox.MaxTimeoutSeconds) * time.Second,
	})
}

// HelperSpecs converts the configured helper servers into start specs, in a
// stable order.
func (c *Config) HelperSpecs() []helper.ServerSpec {
	if len(c.HelperServers) == 0 {
		return nil
	}
	names := make([]string, 0, len(c.HelperServers))
	for name := range c.HelperServers {
		names = append(names, name)
	}
	// map order is random; keep startup deterministic
	sort.Strings(names)

	specs := make([]helper.ServerSpec, 0, len(names))
	for _, name := range names {
		server := c.HelperServers[name]
		specs = append(specs, helper.ServerSpec{
			Name:    name,
			Command: server.Command,
			Args:    server.Args,
			Env:     server.Env,
		})
	}
	return specs
}
