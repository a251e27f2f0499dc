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
	"fmt"
	"slices"

	"github.com/algorand/go-recovery/config"
	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/util/metrics"
)

var preconditionRejections = metrics.MakeCounter(metrics.PreconditionRejectionsTotal, "action", "reason")

// NormalizeFriends parses friend identifiers in any supported encoding and
// returns the set of their accounts in ledger order.
func NormalizeFriends(ids []string) ([]basics.Address, error) {
	addrs := make([]basics.Address, 0, len(ids))
	for _, id := range ids {
		addr, _, err := basics.ParseAddress(id)
		if err != nil {
			return nil, precondition(ActionConfigure, ReasonBadFriends, "%v", err)
		}
		addrs = append(addrs, addr)
	}
	return basics.SortedUnique(addrs), nil
}

// PrepareConfigure checks that owner can make itself recoverable with friends
// and returns the call. friends must already be in ledger order (see NormalizeFriends).
func PrepareConfigure(v View, owner basics.Address, friends []basics.Address, threshold uint16, delay basics.Round, consts config.RecoveryConsts) (gateway.Call, error) {
	if owner != v.Lost {
		return gateway.Call{}, precondition(ActionConfigure, ReasonNotOwner, "%s configures only itself", owner)
	}
	if v.Inputs.Config.Status != Absent {
		return gateway.Call{}, precondition(ActionConfigure, ReasonWrongState, "configuration is %s", v.Inputs.Config.Status)
	}
	if !basics.IsStrictlySorted(friends) {
		return gateway.Call{}, precondition(ActionConfigure, ReasonUnsortedFriends, "friends must be sorted and unique")
	}
	if len(friends) > int(consts.MaxFriends) {
		return gateway.Call{}, precondition(ActionConfigure, ReasonTooManyFriends, "%d friends, at most %d", len(friends), consts.MaxFriends)
	}
	if threshold == 0 || int(threshold) > len(friends) {
		return gateway.Call{}, precondition(ActionConfigure, ReasonThreshold, "threshold %d with %d friends", threshold, len(friends))
	}
	if _, err := ConfigureDeposit(len(friends), consts); err != nil {
		return gateway.Call{}, err
	}
	return gateway.Call{
		Type:        ActionConfigure.CallType(),
		Friends:     slices.Clone(friends),
		Threshold:   threshold,
		DelayPeriod: delay,
	}, nil
}

// PrepareRemoveRecovery checks that owner can drop its recovery configuration.
func PrepareRemoveRecovery(v View, owner basics.Address) (gateway.Call, error) {
	if owner != v.Lost {
		return gateway.Call{}, precondition(ActionRemoveRecovery, ReasonNotOwner, "%s", owner)
	}
	if v.State != Configured {
		return gateway.Call{}, precondition(ActionRemoveRecovery, ReasonWrongState, "pair is %s", v.State)
	}
	return gateway.Call{Type: ActionRemoveRecovery.CallType()}, nil
}

// PrepareInitiate checks that the pair's rescuer can open an attempt.
func PrepareInitiate(v View, rescuer basics.Address) (gateway.Call, error) {
	if rescuer != v.Rescuer || rescuer == v.Lost {
		return gateway.Call{}, precondition(ActionInitiate, ReasonNotRescuer, "%s", rescuer)
	}
	if v.State != Configured {
		return gateway.Call{}, precondition(ActionInitiate, ReasonWrongState, "pair is %s", v.State)
	}
	return gateway.Call{Type: ActionInitiate.CallType(), Lost: v.Lost}, nil
}

// PrepareVouch checks that friend can vouch for the pair's attempt.
func PrepareVouch(v View, friend basics.Address) (gateway.Call, error) {
	if v.State != AttemptOpen && v.State != Claimable {
		return gateway.Call{}, precondition(ActionVouch, ReasonWrongState, "pair is %s", v.State)
	}
	if !v.Inputs.Config.Config.IsFriend(friend) {
		return gateway.Call{}, precondition(ActionVouch, ReasonNotFriend, "%s", friend)
	}
	if v.Inputs.Attempt.Attempt.HasVouched(friend) {
		return gateway.Call{}, precondition(ActionVouch, ReasonAlreadyVouched, "%s", friend)
	}
	return gateway.Call{Type: ActionVouch.CallType(), Lost: v.Lost, Rescuer: v.Rescuer}, nil
}

// PrepareClaim checks that the threshold and delay of the pair's attempt are
// both met, and that rescuer is the pair's rescuer.
func PrepareClaim(v View, rescuer basics.Address) (gateway.Call, error) {
	if rescuer != v.Rescuer {
		return gateway.Call{}, precondition(ActionClaim, ReasonNotRescuer, "%s", rescuer)
	}
	if v.State == AttemptOpen {
		a, cfg := v.Inputs.Attempt.Attempt, v.Inputs.Config
		if !thresholdMet(a, cfg) {
			return gateway.Call{}, precondition(ActionClaim, ReasonThreshold, "%d of %d vouches", len(a.Vouched), cfg.Config.Threshold)
		}
		return gateway.Call{}, precondition(ActionClaim, ReasonDelayNotElapsed, "%d blocks left", RemainingBlocks(a, cfg.Config, v.Inputs.Round))
	}
	if v.State != Claimable {
		return gateway.Call{}, precondition(ActionClaim, ReasonWrongState, "pair is %s", v.State)
	}
	return gateway.Call{Type: ActionClaim.CallType(), Lost: v.Lost}, nil
}

// PrepareClose checks that closer, the owner or a friend that has not vouched
// and is not the rescuer, can close the pair's attempt.
func PrepareClose(v View, closer basics.Address) (gateway.Call, error) {
	if v.State != AttemptOpen && v.State != Claimable {
		return gateway.Call{}, precondition(ActionClose, ReasonWrongState, "pair is %s", v.State)
	}
	if closer != v.Lost {
		if closer == v.Rescuer {
			return gateway.Call{}, precondition(ActionClose, ReasonOwnAttempt, "%s is the rescuer", closer)
		}
		if !v.Inputs.Config.Config.IsFriend(closer) {
			return gateway.Call{}, precondition(ActionClose, ReasonNotFriend, "%s", closer)
		}
		if v.Inputs.Attempt.Attempt.HasVouched(closer) {
			return gateway.Call{}, precondition(ActionClose, ReasonAlreadyVouched, "%s takes part in the attempt", closer)
		}
	}
	return gateway.Call{Type: ActionClose.CallType(), Lost: v.Lost, Rescuer: v.Rescuer}, nil
}

// PrepareWithdraw checks that rescuer holds the proxy of the pair's lost
// account and returns the withdrawal call for the balances in snap.
func PrepareWithdraw(v View, rescuer basics.Address, snap BalanceSnapshot) (gateway.Call, error) {
	if rescuer != v.Rescuer {
		return gateway.Call{}, precondition(ActionWithdraw, ReasonNotRescuer, "%s", rescuer)
	}
	if v.State != ProxyEstablished {
		return gateway.Call{}, precondition(ActionWithdraw, ReasonWrongState, "pair is %s", v.State)
	}
	return gateway.Call{Type: ActionWithdraw.CallType(), Lost: v.Lost, SpanCount: snap.SpanCount()}, nil
}

// Prepare dispatches to the builder of action. Configure needs its own
// parameters and is not handled here.
func Prepare(action Action, v View, acting basics.Address, snap BalanceSnapshot) (gateway.Call, error) {
	switch action {
	case ActionRemoveRecovery:
		return PrepareRemoveRecovery(v, acting)
	case ActionInitiate:
		return PrepareInitiate(v, acting)
	case ActionVouch:
		return PrepareVouch(v, acting)
	case ActionClaim:
		return PrepareClaim(v, acting)
	case ActionClose:
		return PrepareClose(v, acting)
	case ActionWithdraw:
		return PrepareWithdraw(v, acting, snap)
	}
	return gateway.Call{}, fmt.Errorf("no generic builder for action %q", action)
}
