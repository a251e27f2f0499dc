// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-recovery
//
// go-recovery is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-recovery is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-recovery.  If not, see <https://www.gnu.org/licenses/>.

package timers

import (
	"time"

	"github.com/algorand/go-deadlock"
)

// Manual is a clock that only moves when Advance is called.
type Manual struct {
	mu      deadlock.Mutex
	elapsed time.Duration
	waiters map[time.Duration]chan time.Time
}

// MakeManualClock creates a manual clock at its zero point.
func MakeManualClock() *Manual {
	return &Manual{waiters: make(map[time.Duration]chan time.Time)}
}

// Zero resets the clock and drops the pending timeouts. It returns the same
// clock so that the caller keeps control over it.
func (m *Manual) Zero() Clock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elapsed = 0
	m.waiters = make(map[time.Duration]chan time.Time)
	return m
}

// TimeoutAt returns a channel closed once the clock is advanced past delta.
func (m *Manual) TimeoutAt(delta time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if delta <= m.elapsed {
		timeout := make(chan time.Time)
		close(timeout)
		return timeout
	}
	ch, ok := m.waiters[delta]
	if !ok {
		ch = make(chan time.Time)
		m.waiters[delta] = ch
	}
	return ch
}

// Since returns how far the clock was advanced since Zero.
func (m *Manual) Since() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed
}

// Advance moves the clock forward by d and fires every timeout reached.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elapsed += d
	for delta, ch := range m.waiters {
		if delta <= m.elapsed {
			close(ch)
			delete(m.waiters, delta)
		}
	}
}

// Pending returns the number of timeouts not fired yet.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}
