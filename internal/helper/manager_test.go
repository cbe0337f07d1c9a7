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

package helper

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// scriptedSpec builds a helper whose responses are a fixed shell script
// reading frames from stdin.
func scriptedSpec(name, script string) ServerSpec {
	return ServerSpec{
		Name:    name,
		Command: "sh",
		Args:    []string{"-c", script},
	}
}

func TestManagerStartAndCall(t *testing.T) {
	// Echo back a fixed ok frame for every request. Call IDs start at 1.
	spec := scriptedSpec("echoer",
		`while read line; do echo '{"id":1,"ok":true,"result":{"pong":true}}'; done`)

	manager := NewManager(zerolog.Nop(), []ServerSpec{spec})
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	server, ok := manager.Server("echoer")
	if !ok {
		t.Fatal("server not registered under its name")
	}

	result, err := server.Call(context.Background(), "ping", nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if !strings.Contains(string(result), `"pong":true`) {
		t.Fatalf("result = %s", result)
	}
}

func TestCallSkipsStaleFrames(t *testing.T) {
	// A stale frame with a mismatched ID precedes the real response.
	spec := scriptedSpec("stale",
		`while read line; do
  echo '{"id":99,"ok":true,"result":{"stale":true}}'
  echo '{"id":1,"ok":true,"result":{"fresh":true}}'
done`)

	manager := NewManager(zerolog.Nop(), []ServerSpec{spec})
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	server, _ := manager.Server("stale")
	result, err := server.Call(context.Background(), "op", nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if !strings.Contains(string(result), `"fresh":true`) {
		t.Fatalf("result = %s, want the frame matching the request ID", result)
	}
}

func TestCallSurfacesHelperError(t *testing.T) {
	spec := scriptedSpec("failing",
		`while read line; do echo '{"id":1,"ok":false,"error":{"code":"not_found","message":"no such path"}}'; done`)

	manager := NewManager(zerolog.Nop(), []ServerSpec{spec})
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	server, _ := manager.Server("failing")
	_, err := server.Call(context.Background(), "op", nil)
	if err == nil {
		t.Fatal("helper error frame should surface as an error")
	}
	if !strings.Contains(err.Error(), "not_found") || !strings.Contains(err.Error(), "no such path") {
		t.Fatalf("error = %v, want code and message", err)
	}
}

func TestManagerStartFailureStopsStartedHelpers(t *testing.T) {
	good := scriptedSpec("good", `while read line; do :; done`)
	bad := ServerSpec{Name: "bad", Command: ""}

	manager := NewManager(zerolog.Nop(), []ServerSpec{good, bad})
	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("Start should fail when one helper cannot start")
	}
	if _, ok := manager.Server("good"); ok {
		t.Fatal("helpers started before the failure must be stopped")
	}
}

func TestManagerStopIsIdempotent(t *testing.T) {
	spec := scriptedSpec("once", `while read line; do :; done`)
	manager := NewManager(zerolog.Nop(), []ServerSpec{spec})
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	manager.Stop()
	manager.Stop()
}
