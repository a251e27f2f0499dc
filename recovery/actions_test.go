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

package recovery

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/ledgercore"
	"github.com/algorand/go-recovery/protocol"
	"github.com/algorand/go-recovery/test/partitiontest"
)

func TestRoleOf(t *testing.T) {
	partitiontest.PartitionTest(t)

	lost, rescuer := basics.Address{0xaa}, basics.Address{0xbb}
	friends := friendsN(3)
	cfg := HasConfig(ledgercore.RecoveryConfig{Threshold: 2, Friends: friends})

	require.Equal(t, RoleOwner, RoleOf(lost, lost, rescuer, cfg))
	require.Equal(t, RoleRescuer, RoleOf(rescuer, lost, rescuer, cfg))
	require.Equal(t, RoleFriend, RoleOf(friends[1], lost, rescuer, cfg))
	require.Equal(t, RoleFriend|RoleRescuer, RoleOf(friends[0], lost, friends[0], cfg))
	require.Equal(t, RoleObserver, RoleOf(basics.Address{0xcc}, lost, rescuer, cfg))
	require.Equal(t, RoleObserver, RoleOf(friends[1], lost, rescuer, NotConfigured()))

	require.Equal(t, "friend", RoleFriend.String())
	require.Equal(t, "rescuer+friend", (RoleFriend | RoleRescuer).String())
	require.Equal(t, "observer", RoleObserver.String())
	require.False(t, RoleOwner.Has(RoleObserver))
}

func TestLegalActions(t *testing.T) {
	partitiontest.PartitionTest(t)

	tests := []struct {
		state   State
		role    Role
		vouched bool
		want    []Action
	}{
		{AwaitingInputs, RoleOwner, false, nil},
		{Unconfigured, RoleOwner, false, []Action{ActionConfigure}},
		{Unconfigured, RoleFriend, false, nil},
		{Configured, RoleOwner, false, []Action{ActionRemoveRecovery}},
		{Configured, RoleRescuer, false, []Action{ActionInitiate}},
		{Configured, RoleObserver, false, nil},
		{Configured, RoleFriend, false, nil},
		{Configured, RoleRescuer | RoleFriend, false, []Action{ActionInitiate}},
		{AttemptOpen, RoleFriend, false, []Action{ActionVouch, ActionClose}},
		{AttemptOpen, RoleFriend, true, nil},
		{AttemptOpen, RoleOwner, false, []Action{ActionClose}},
		{AttemptOpen, RoleRescuer, false, nil},
		{Claimable, RoleRescuer, false, []Action{ActionClaim}},
		{Claimable, RoleRescuer | RoleFriend, false, []Action{ActionClaim, ActionVouch}},
		{AttemptOpen, RoleRescuer | RoleFriend, false, []Action{ActionVouch}},
		{Claimable, RoleFriend, true, nil},
		{Claimable, RoleOwner, false, []Action{ActionClose}},
		{ProxyEstablished, RoleRescuer, false, []Action{ActionWithdraw}},
		{ProxyEstablished, RoleOwner, false, nil},
	}
	for _, test := range tests {
		require.Equal(t, test.want, LegalActions(test.state, test.role, test.vouched), "%s as %s (vouched %v)", test.state, test.role, test.vouched)
	}
}

func TestActionCallTypes(t *testing.T) {
	partitiontest.PartitionTest(t)

	require.Equal(t, protocol.ConfigureCall, ActionConfigure.CallType())
	require.Equal(t, protocol.RemoveRecoveryCall, ActionRemoveRecovery.CallType())
	require.Equal(t, protocol.InitiateCall, ActionInitiate.CallType())
	require.Equal(t, protocol.VouchCall, ActionVouch.CallType())
	require.Equal(t, protocol.ClaimCall, ActionClaim.CallType())
	require.Equal(t, protocol.CloseRecoveryCall, ActionClose.CallType())
	require.Equal(t, protocol.WithdrawCall, ActionWithdraw.CallType())
}

func TestFriendEncodingsAreTheSameFriend(t *testing.T) {
	partitiontest.PartitionTest(t)

	friend := basics.Address{0xd4, 0x35, 0x93, 0xc7}
	cfg := ledgercore.RecoveryConfig{Threshold: 1, Friends: []basics.Address{friend}}

	ss58, err := friend.EncodePrefixed(42)
	require.NoError(t, err)
	otherNet, err := friend.EncodePrefixed(0)
	require.NoError(t, err)
	ids := []string{ss58, otherNet, friend.String(), "0x" + hex.EncodeToString(friend[:])}
	for _, id := range ids {
		ok, err := IsFriendIdentifier(cfg, id)
		require.NoError(t, err, id)
		require.True(t, ok, id)

		canonical, err := basics.Canonicalize(id, 42)
		require.NoError(t, err)
		require.Equal(t, ss58, canonical)
		again, err := basics.Canonicalize(canonical, 42)
		require.NoError(t, err)
		require.Equal(t, canonical, again)
	}

	stranger, err := (basics.Address{0x01}).EncodePrefixed(42)
	require.NoError(t, err)
	ok, err := IsFriendIdentifier(cfg, stranger)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = IsFriendIdentifier(cfg, "not an address")
	require.Error(t, err)
}
