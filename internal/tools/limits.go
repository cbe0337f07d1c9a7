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

import "sync"

// Limits configures size bounds for file-reading tool operations.
type Limits struct {
	MaxFileSizeBytes int64
	MaxViewLines     int
	MaxLineWidth     int
}

const (
	defaultMaxFileSizeBytes int64 = 10 * 1024 * 1024
	defaultMaxViewLines           = 2000
	defaultMaxLineWidth           = 2000
)

// searchResultCap bounds how many matches a search returns; results beyond
// the cap set the truncated flag instead.
const searchResultCap = 100

var (
	limitsMu      sync.RWMutex
	currentLimits = DefaultLimits()
)

// DefaultLimits returns the default resource limits for tool operations.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSizeBytes: defaultMaxFileSizeBytes,
		MaxViewLines:     defaultMaxViewLines,
		MaxLineWidth:     defaultMaxLineWidth,
	}
}

// ConfigureLimits sets the global limits for tool operations.
func ConfigureLimits(l Limits) {
	limitsMu.Lock()
	defer limitsMu.Unlock()
	currentLimits = normalizeLimits(l)
}

func getLimits() Limits {
	limitsMu.RLock()
	defer limitsMu.RUnlock()
	return currentLimits
}

func normalizeLimits(l Limits) Limits {
	if l.MaxFileSizeBytes <= 0 {
		l.MaxFileSizeBytes = defaultMaxFileSizeBytes
	}
	if l.MaxViewLines <= 0 {
		l.MaxViewLines = defaultMaxViewLines
	}
	if l.MaxLineWidth <= 0 {
		l.MaxLineWidth = defaultMaxLineWidth
	}
	return l
}
