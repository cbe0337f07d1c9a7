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

// Package helper manages the long-lived helper subprocesses (a
// filesystem-serving process and a version-control process) that tool
// execution consumes as external collaborators. Each helper speaks
// newline-delimited JSON request/response frames over stdin/stdout; its
// protocol is not reimplemented here, only transported.
package helper

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServerSpec describes one helper subprocess.
type ServerSpec struct {
	Name    string
	Command string
	Args    []string
	Env     map[string]string
}

type request struct {
	ID     int                    `json:"id"`
	Op     string                 `json:"op"`
	Params map[string]interface{} `json:"params,omitempty"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type response struct {
	ID     int             `json:"id"`
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *responseError  `json:"error,omitempty"`
}

// Server is one running helper subprocess.
type Server struct {
	spec   ServerSpec
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	mu     sync.Mutex
	nextID int
}

// Manager starts helper servers before tool invocations run and stops them
// afterward.
type Manager struct {
	logger  zerolog.Logger
	specs   []ServerSpec
	servers map[string]*Server
}

// NewManager creates a manager for the given helper specs.
func NewManager(logger zerolog.Logger, specs []ServerSpec) *Manager {
	return &Manager{
		logger:  logger,
		specs:   specs,
		servers: make(map[string]*Server),
	}
}

// Start launches every configured helper. On failure, helpers already
// started are stopped before returning.
func (m *Manager) Start(ctx context.Context) error {
	for _, spec := range m.specs {
		server, err := startServer(ctx, spec)
		if err != nil {
			m.Stop()
			return fmt.Errorf("failed to start helper %s: %w", spec.Name, err)
		}
		m.servers[spec.Name] = server
		m.logger.Info().Str("helper", spec.Name).Str("command", spec.Command).Msg("Helper server started")
	}
	return nil
}

// Stop terminates all running helpers: stdin is closed to request a clean
// exit, and the process is killed if it lingers.
func (m *Manager) Stop() {
	for name, server := range m.servers {
		server.stop()
		m.logger.Info().Str("helper", name).Msg("Helper server stopped")
		delete(m.servers, name)
	}
}

// Server returns a running helper by name.
func (m *Manager) Server(name string) (*Server, bool) {
	server, ok := m.servers[name]
	return server, ok
}

func startServer(ctx context.Context, spec ServerSpec) (*Server, error) {
	if spec.Command == "" {
		return nil, fmt.Errorf("helper command is empty")
	}

	cmd := exec.Command(spec.Command, spec.Args...)
	if len(spec.Env) > 0 {
		cmd.Env = os.Environ()
		for key, value := range spec.Env {
			cmd.Env = append(cmd.Env, key+"="+value)
		}
	}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	return &Server{
		spec:   spec,
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}, nil
}

// Call sends one request frame and reads the matching response frame.
func (s *Server) Call(ctx context.Context, op string, params map[string]interface{}) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	req := request{ID: s.nextID, Op: op, Params: params}
	frame, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("helper %s: encode request: %w", s.spec.Name, err)
	}
	frame = append(frame, '\n')
	if _, err := s.stdin.Write(frame); err != nil {
		return nil, fmt.Errorf("helper %s: write request: %w", s.spec.Name, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := s.stdout.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("helper %s: read response: %w", s.spec.Name, err)
		}
		var resp response
		if err := json.Unmarshal(line, &resp); err != nil {
			return nil, fmt.Errorf("helper %s: decode response: %w", s.spec.Name, err)
		}
		if resp.ID != req.ID {
			// Stale frame from an earlier abandoned call; skip it.
			continue
		}
		if !resp.OK {
			if resp.Error != nil {
				return nil, fmt.Errorf("helper %s: %s: %s", s.spec.Name, resp.Error.Code, resp.Error.Message)
			}
			return nil, fmt.Errorf("helper %s: operation failed", s.spec.Name)
		}
		return resp.Result, nil
	}
}

func (s *Server) stop() {
	if s.stdin != nil {
		s.stdin.Close()
	}
	if s.cmd == nil || s.cmd.Process == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		s.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		s.cmd.Process.Kill()
		<-done
	}
}
