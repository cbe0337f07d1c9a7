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

package tools

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"anycode/internal/errors"
)

// ProcessResult is the payload of run_bash on normal completion. Output
// concatenates stdout with stderr when stderr is non-empty.
type ProcessResult struct {
	ExitCode int    `json:"exitCode"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	Output   string `json:"output"`
}

// defaultBannedCommands are networking and browser-launching binaries that
// run_bash refuses before ever spawning a process.
var defaultBannedCommands = []string{
	"alias", "curl", "curlie", "wget", "axel", "aria2c", "nc", "telnet",
	"lynx", "w3m", "links", "httpie", "xh", "http-prompt", "chrome",
	"firefox", "safari",
}

// SandboxConfig bounds process execution.
type SandboxConfig struct {
	// ExtraBannedCommands extends the built-in denylist.
	ExtraBannedCommands []string
	// DefaultTimeout applies when the caller gives no timeout.
	DefaultTimeout time.Duration
	// MaxTimeout caps any caller-requested timeout.
	MaxTimeout time.Duration
}

// DefaultSandboxConfig returns the default process sandbox bounds.
func DefaultSandboxConfig() SandboxConfig {
	return SandboxConfig{
		DefaultTimeout: 1800 * time.Second,
		MaxTimeout:     600 * time.Second,
	}
}

var (
	sandboxMu      sync.RWMutex
	currentSandbox = DefaultSandboxConfig()
)

// ConfigureSandbox sets the global process sandbox configuration.
func ConfigureSandbox(c SandboxConfig) {
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = DefaultSandboxConfig().DefaultTimeout
	}
	if c.MaxTimeout <= 0 {
		c.MaxTimeout = DefaultSandboxConfig().MaxTimeout
	}
	sandboxMu.Lock()
	defer sandboxMu.Unlock()
	currentSandbox = c
}

func getSandbox() SandboxConfig {
	sandboxMu.RLock()
	defer sandboxMu.RUnlock()
	return currentSandbox
}

func runBash(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	command, err := requiredString(args, "command")
	if err != nil {
		return nil, err
	}

	sandbox := getSandbox()

	// Denylist before spawn: a whole-word match anywhere in the raw command
	// string refuses execution without ever creating a process.
	if banned := matchBannedCommand(command, sandbox.ExtraBannedCommands); banned != "" {
		return nil, errors.Newf(errors.CodePolicyDenied,
			"command '%s' is not allowed for security reasons", banned)
	}

	budget := sandbox.DefaultTimeout
	if ms, ok := intArg(args, "timeout"); ok && ms > 0 {
		budget = time.Duration(ms) * time.Millisecond
		if budget > sandbox.MaxTimeout {
			budget = sandbox.MaxTimeout
		}
	}

	execCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 5 * time.Second

	runErr := cmd.Run()

	// On timeout the process is terminated and no partial output is returned.
	if execCtx.Err() == context.DeadlineExceeded {
		return nil, errors.Newf(errors.CodeTimeout,
			"command timed out after %s", budget)
	}
	if execCtx.Err() == context.Canceled {
		return nil, errors.Wrap(errors.CodeTimeout, "command canceled", execCtx.Err())
	}

	exitCode := 0
	if runErr != nil {
		exitErr, ok := runErr.(*exec.ExitError)
		if !ok {
			return nil, errors.Wrap(errors.CodeIOFailure, "failed to run command", runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	stdoutStr := stdout.String()
	stderrStr := stderr.String()
	output := stdoutStr
	if stderrStr != "" {
		output = stdoutStr + "\n" + stderrStr
	}
	return &ProcessResult{
		ExitCode: exitCode,
		Stdout:   stdoutStr,
		Stderr:   stderrStr,
		Output:   output,
	}, nil
}

// matchBannedCommand returns the first denylisted name appearing as a whole
// word in the command string, or "" when none match.
func matchBannedCommand(command string, extra []string) string {
	for _, banned := range defaultBannedCommands {
		if bannedWordPattern(banned).MatchString(command) {
			return banned
		}
	}
	for _, banned := range extra {
		if strings.TrimSpace(banned) == "" {
			continue
		}
		if bannedWordPattern(banned).MatchString(command) {
			return banned
		}
	}
	return ""
}

var (
	bannedPatternMu    sync.Mutex
	bannedPatternCache = map[string]*regexp.Regexp{}
)

func bannedWordPattern(name string) *regexp.Regexp {
	bannedPatternMu.Lock()
	defer bannedPatternMu.Unlock()
	if re, ok := bannedPatternCache[name]; ok {
		return re
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	bannedPatternCache[name] = re
	return re
}
