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

package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-recovery/test/partitiontest"
)

type testStruct struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`
	A       uint64   `codec:"a"`
	B       string   `codec:"b"`
	C       []byte   `codec:"c"`
}

func TestOmitEmpty(t *testing.T) {
	partitiontest.PartitionTest(t)

	var x testStruct
	enc := Encode(&x)
	require.Equal(t, 1, len(enc))
}

func TestEncodeOrder(t *testing.T) {
	partitiontest.PartitionTest(t)

	var a struct {
		A int
		B string
	}
	a.A = 1
	a.B = "foo"

	var b struct {
		B string
		A int
	}
	b.A = 1
	b.B = "foo"

	require.Equal(t, Encode(&a), Encode(&b))
}

func TestDecodeRoundTrip(t *testing.T) {
	partitiontest.PartitionTest(t)

	x := testStruct{A: 7, B: "friend", C: []byte{1, 2}}
	var y testStruct
	require.NoError(t, Decode(Encode(&x), &y))
	require.Equal(t, x, y)

	require.ErrorIs(t, Decode(nil, &y), ErrInvalidObject)

	var unknown struct {
		Z uint64 `codec:"z"`
	}
	unknown.Z = 3
	require.Error(t, Decode(Encode(&unknown), &y))
}

func TestStorageItemModule(t *testing.T) {
	partitiontest.PartitionTest(t)

	require.Equal(t, "recovery", RecoveryActiveItem.Module())
	require.Equal(t, "staking", StakingLedgerItem.Module())
	require.Equal(t, "bare", StorageItem("bare").Module())
}
