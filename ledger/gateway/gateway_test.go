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

package gateway

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hdevalence/ed25519consensus"
	"github.com/stretchr/testify/require"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/protocol"
	"github.com/algorand/go-recovery/test/partitiontest"
)

func TestActiveRecoveryKeyRoundTrip(t *testing.T) {
	partitiontest.PartitionTest(t)

	lost := basics.Address{1, 2, 3}
	rescuer := basics.Address{9, 8, 7}
	key := ActiveRecoveryKey(lost, rescuer)
	require.Equal(t, protocol.RecoveryActiveItem, key.Item)
	require.Len(t, key.Key, 64)

	gotLost, gotRescuer, err := DecodeActiveRecoveryKey(key.Key)
	require.NoError(t, err)
	require.Equal(t, lost, gotLost)
	require.Equal(t, rescuer, gotRescuer)

	_, _, err = DecodeActiveRecoveryKey(key.Key[:40])
	require.Error(t, err)
}

func TestAccountKey(t *testing.T) {
	partitiontest.PartitionTest(t)

	addr := basics.Address{42}
	key := AccountKey(protocol.RecoveryProxyItem, addr)
	got, err := DecodeAccountKey(key.Key)
	require.NoError(t, err)
	require.Equal(t, addr, got)

	// the key must not alias the address array
	key.Key[0] = 0
	require.Equal(t, byte(42), addr[0])

	_, err = DecodeAccountKey([]byte{1})
	require.Error(t, err)
	require.Empty(t, SingletonKey(protocol.StakingEraItem).Key)
}

func TestSignCallVerifies(t *testing.T) {
	partitiontest.PartitionTest(t)

	seed := make([]byte, 32)
	seed[0] = 7
	signer, err := MakeEd25519Signer(seed)
	require.NoError(t, err)

	call := Call{Type: protocol.VouchCall, Lost: basics.Address{1}, Rescuer: basics.Address{2}, Nonce: 3}
	signed := SignCall(call, signer)
	require.Equal(t, signer.Address(), signed.Signer)
	require.True(t, ed25519consensus.Verify(signed.Signer[:], call.SigningBytes(), signed.Sig))

	tampered := call
	tampered.Nonce++
	require.False(t, ed25519consensus.Verify(signed.Signer[:], tampered.SigningBytes(), signed.Sig))

	other := SignCall(tampered, signer)
	require.NotEqual(t, signed.ID(), other.ID())
	require.Equal(t, signed.ID(), SignCall(call, signer).ID())

	_, err = MakeEd25519Signer(seed[:10])
	require.Error(t, err)
}

func TestTxIDText(t *testing.T) {
	partitiontest.PartitionTest(t)

	id := TxID{0xab, 0xcd}
	text, err := id.MarshalText()
	require.NoError(t, err)

	var decoded TxID
	require.NoError(t, decoded.UnmarshalText(text))
	require.Equal(t, id, decoded)
	require.Error(t, decoded.UnmarshalText([]byte("abcd")))
	require.Error(t, decoded.UnmarshalText([]byte("zz")))
}

func TestLedgerRejectedError(t *testing.T) {
	partitiontest.PartitionTest(t)

	err := fmt.Errorf("submit: %w", Reject(protocol.ClaimCall, RejectDelayPeriod, "%d blocks left", 5))
	var rejected *LedgerRejectedError
	require.True(t, errors.As(err, &rejected))
	require.Equal(t, RejectDelayPeriod, rejected.Code)
	require.Equal(t, "ledger rejected clm call: delay-period (5 blocks left)", rejected.Error())

	bare := &LedgerRejectedError{Call: protocol.VouchCall, Code: RejectNotFriend}
	require.Equal(t, "ledger rejected vch call: not-friend", bare.Error())
}
