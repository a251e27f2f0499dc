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
	"strings"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/ledgercore"
	"github.com/algorand/go-recovery/protocol"
)

// Action is a state transition some party can request.
type Action string

// Actions, one per ledger call.
const (
	ActionConfigure      Action = "configure"
	ActionRemoveRecovery Action = "remove"
	ActionInitiate       Action = "initiate"
	ActionVouch          Action = "vouch"
	ActionClaim          Action = "claim"
	ActionClose          Action = "close"
	ActionWithdraw       Action = "withdraw"
)

var actionCalls = map[Action]protocol.CallType{
	ActionConfigure:      protocol.ConfigureCall,
	ActionRemoveRecovery: protocol.RemoveRecoveryCall,
	ActionInitiate:       protocol.InitiateCall,
	ActionVouch:          protocol.VouchCall,
	ActionClaim:          protocol.ClaimCall,
	ActionClose:          protocol.CloseRecoveryCall,
	ActionWithdraw:       protocol.WithdrawCall,
}

// CallType returns the ledger call that performs the action.
func (a Action) CallType() protocol.CallType {
	return actionCalls[a]
}

// Role is the set of parts an acting account plays for a pair. An account may
// play several (a friend can also be the rescuer); the zero Role is an observer.
type Role uint8

const (
	// RoleOwner is the lost account itself.
	RoleOwner Role = 1 << iota
	// RoleRescuer is the rescuer of the pair.
	RoleRescuer
	// RoleFriend is one of the configured friends of the lost account.
	RoleFriend

	// RoleObserver plays no part.
	RoleObserver Role = 0
)

// Has reports whether r includes every role of x.
func (r Role) Has(x Role) bool {
	return r&x == x && x != 0
}

func (r Role) String() string {
	if r == RoleObserver {
		return "observer"
	}
	var parts []string
	if r.Has(RoleOwner) {
		parts = append(parts, "owner")
	}
	if r.Has(RoleRescuer) {
		parts = append(parts, "rescuer")
	}
	if r.Has(RoleFriend) {
		parts = append(parts, "friend")
	}
	return strings.Join(parts, "+")
}

// MarshalText encodes the role as its name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// RoleOf classifies acting for the pair (lost, rescuer). Friendship is decided
// against the configured friends, never against who has vouched.
func RoleOf(acting, lost, rescuer basics.Address, cfg ConfigResult) Role {
	var r Role
	if acting == lost {
		r |= RoleOwner
	}
	if acting == rescuer && rescuer != lost {
		r |= RoleRescuer
	}
	if cfg.IsConfigured() && cfg.Config.IsFriend(acting) {
		r |= RoleFriend
	}
	return r
}

// IsFriendIdentifier reports whether id names one of the configured friends.
// id may use any supported encoding or network prefix: encodings of the same
// public key are the same friend.
func IsFriendIdentifier(cfg ledgercore.RecoveryConfig, id string) (bool, error) {
	addr, _, err := basics.ParseAddress(id)
	if err != nil {
		return false, err
	}
	return cfg.IsFriend(addr), nil
}

// LegalActions lists what an account with role may do in state. vouched tells
// whether the acting account already vouched for the pair's attempt. A friend
// that is also the rescuer takes part in the attempt and may not close it.
func LegalActions(state State, role Role, vouched bool) []Action {
	freeFriend := role.Has(RoleFriend) && !vouched
	var out []Action
	switch state {
	case Unconfigured:
		if role.Has(RoleOwner) {
			out = append(out, ActionConfigure)
		}
	case Configured:
		if role.Has(RoleOwner) {
			out = append(out, ActionRemoveRecovery)
		}
		if role.Has(RoleRescuer) {
			out = append(out, ActionInitiate)
		}
	case AttemptOpen, Claimable:
		if state == Claimable && role.Has(RoleRescuer) {
			out = append(out, ActionClaim)
		}
		if freeFriend {
			out = append(out, ActionVouch)
		}
		if role.Has(RoleOwner) || (freeFriend && !role.Has(RoleRescuer)) {
			out = append(out, ActionClose)
		}
	case ProxyEstablished:
		if role.Has(RoleRescuer) {
			out = append(out, ActionWithdraw)
		}
	}
	return out
}
