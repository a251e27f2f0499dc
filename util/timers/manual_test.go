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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-recovery/test/partitiontest"
)

func TestManualFiresOnAdvance(t *testing.T) {
	partitiontest.PartitionTest(t)

	m := MakeManualClock()
	c := m.Zero()
	first := c.TimeoutAt(time.Second)
	second := c.TimeoutAt(2 * time.Second)
	require.Equal(t, first, c.TimeoutAt(time.Second))
	require.Equal(t, 2, m.Pending())

	m.Advance(999 * time.Millisecond)
	require.False(t, polled(first))

	m.Advance(time.Millisecond)
	require.True(t, polled(first))
	require.False(t, polled(second))
	require.Equal(t, 1, m.Pending())

	m.Advance(time.Hour)
	require.True(t, polled(second))
	require.Zero(t, m.Pending())
	require.Equal(t, time.Hour+time.Second, m.Since())

	// already passed
	require.True(t, polled(c.TimeoutAt(time.Minute)))
}

func TestManualZeroDropsTimeouts(t *testing.T) {
	partitiontest.PartitionTest(t)

	m := MakeManualClock()
	m.TimeoutAt(time.Second)
	m.Advance(500 * time.Millisecond)

	c := m.Zero()
	require.Zero(t, m.Pending())
	require.Zero(t, c.Since())
	require.False(t, polled(c.TimeoutAt(100*time.Millisecond)))
}
