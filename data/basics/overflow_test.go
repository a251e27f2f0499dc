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

package basics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-recovery/test/partitiontest"
)

func TestOverflowTracker(t *testing.T) {
	partitiontest.PartitionTest(t)

	var ot OverflowTracker
	require.Equal(t, Balance(130), ot.Add(100, ot.ScalarMul(10, 3)))
	require.False(t, ot.Overflowed)

	ot.Add(math.MaxUint64, 1)
	require.True(t, ot.Overflowed)

	ot = OverflowTracker{}
	ot.Sub(1, 2)
	require.True(t, ot.Overflowed)

	ot = OverflowTracker{}
	ot.ScalarMul(math.MaxUint64/2+1, 2)
	require.True(t, ot.Overflowed)
}

func TestSaturation(t *testing.T) {
	partitiontest.PartitionTest(t)

	require.Equal(t, Round(0), Round(5).SubSaturate(10))
	require.Equal(t, Round(math.MaxUint32), Round(math.MaxUint32-1).AddSaturate(10))
	require.Equal(t, uint64(math.MaxUint64), AddSaturate(uint64(math.MaxUint64), 1))
}

func TestSum(t *testing.T) {
	partitiontest.PartitionTest(t)

	total, overflowed := Sum(50, 20, 5, 3, 2)
	require.False(t, overflowed)
	require.Equal(t, Balance(80), total)

	_, overflowed = Sum(math.MaxUint64, 1)
	require.True(t, overflowed)

	total, overflowed = Sum()
	require.False(t, overflowed)
	require.Zero(t, total)
}

func TestMuldiv(t *testing.T) {
	partitiontest.PartitionTest(t)

	res, overflowed := Muldiv(uint64(50), uint64(6000), 1000)
	require.False(t, overflowed)
	require.Equal(t, uint64(300), res)

	res, overflowed = Muldiv(uint64(math.MaxUint64), uint64(1000), 1000)
	require.False(t, overflowed)
	require.Equal(t, uint64(math.MaxUint64), res)

	_, overflowed = Muldiv(uint64(math.MaxUint64), uint64(1001), 1000)
	require.True(t, overflowed)
}
