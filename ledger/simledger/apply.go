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

package simledger

import (
	"slices"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/ledger/ledgercore"
	"github.com/algorand/go-recovery/protocol"
)

// evaluator applies one call to a callCow.
type evaluator struct {
	cow    *callCow
	call   gateway.Call
	signer basics.Address
	round  basics.Round
	era    basics.EraIndex
	params Params
}

func (ev *evaluator) reject(code gateway.RejectCode, format string, args ...interface{}) error {
	return gateway.Reject(ev.call.Type, code, format, args...)
}

func (ev *evaluator) apply() error {
	switch ev.call.Type {
	case protocol.ConfigureCall:
		return ev.configure()
	case protocol.RemoveRecoveryCall:
		return ev.removeRecovery()
	case protocol.InitiateCall:
		return ev.initiate()
	case protocol.VouchCall:
		return ev.vouch()
	case protocol.ClaimCall:
		return ev.claim()
	case protocol.CloseRecoveryCall:
		return ev.closeRecovery()
	case protocol.WithdrawCall:
		return ev.withdrawAsRecovered()
	case protocol.EndowCall:
		return ev.credit(ev.signer, ev.call.Amount)
	case protocol.BondCall:
		return ev.bond(ev.signer, ev.call.Amount)
	case protocol.UnbondCall:
		return ev.unbond(ev.signer, ev.call.Amount)
	default:
		return ev.reject(gateway.RejectUnknownCall, "%q", ev.call.Type)
	}
}

func (ev *evaluator) config(lost basics.Address) (cfg ledgercore.RecoveryConfig, found bool, err error) {
	found, err = ev.cow.read(gateway.AccountKey(protocol.RecoveryRecoverableItem, lost), &cfg)
	return
}

func (ev *evaluator) attempt(lost, rescuer basics.Address) (a ledgercore.ActiveRecovery, found bool, err error) {
	found, err = ev.cow.read(gateway.ActiveRecoveryKey(lost, rescuer), &a)
	return
}

func (ev *evaluator) proxyOf(rescuer basics.Address) (lost basics.Address, found bool, err error) {
	found, err = ev.cow.read(gateway.AccountKey(protocol.RecoveryProxyItem, rescuer), &lost)
	return
}

func (ev *evaluator) configure() error {
	c := ev.call
	_, exists, err := ev.config(ev.signer)
	if err != nil {
		return err
	}
	if exists {
		return ev.reject(gateway.RejectAlreadyRecoverable, "%s", ev.signer)
	}
	if c.Threshold == 0 {
		return ev.reject(gateway.RejectZeroThreshold, "")
	}
	if len(c.Friends) > int(ev.params.Consts.MaxFriends) {
		return ev.reject(gateway.RejectMaxFriends, "%d friends, at most %d", len(c.Friends), ev.params.Consts.MaxFriends)
	}
	if int(c.Threshold) > len(c.Friends) {
		return ev.reject(gateway.RejectThreshold, "threshold %d with %d friends", c.Threshold, len(c.Friends))
	}
	if !basics.IsStrictlySorted(c.Friends) {
		return ev.reject(gateway.RejectNotSorted, "")
	}

	var ot basics.OverflowTracker
	deposit := ot.Add(ev.params.Consts.ConfigDepositBase, ot.ScalarMul(ev.params.Consts.FriendDepositFactor, uint64(len(c.Friends))))
	if ot.Overflowed {
		return ev.reject(gateway.RejectOverflow, "configuration deposit")
	}
	if err := ev.reserve(ev.signer, deposit); err != nil {
		return err
	}
	cfg := ledgercore.RecoveryConfig{
		Threshold:   c.Threshold,
		DelayPeriod: c.DelayPeriod,
		Friends:     slices.Clone(c.Friends),
		Deposit:     deposit,
	}
	ev.cow.write(gateway.AccountKey(protocol.RecoveryRecoverableItem, ev.signer), &cfg)
	return nil
}

func (ev *evaluator) removeRecovery() error {
	cfg, exists, err := ev.config(ev.signer)
	if err != nil {
		return err
	}
	if !exists {
		return ev.reject(gateway.RejectNotRecoverable, "%s", ev.signer)
	}
	active, err := ev.cow.scan(protocol.RecoveryActiveItem, ev.signer[:])
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return ev.reject(gateway.RejectStillActive, "%d open attempts", len(active))
	}
	if err := ev.unreserve(ev.signer, cfg.Deposit); err != nil {
		return err
	}
	ev.cow.del(gateway.AccountKey(protocol.RecoveryRecoverableItem, ev.signer))
	return nil
}

func (ev *evaluator) initiate() error {
	lost := ev.call.Lost
	if lost == ev.signer {
		return ev.reject(gateway.RejectNotAllowed, "account cannot rescue itself")
	}
	_, exists, err := ev.config(lost)
	if err != nil {
		return err
	}
	if !exists {
		return ev.reject(gateway.RejectNotRecoverable, "%s", lost)
	}
	_, started, err := ev.attempt(lost, ev.signer)
	if err != nil {
		return err
	}
	if started {
		return ev.reject(gateway.RejectAlreadyStarted, "%s by %s", lost, ev.signer)
	}
	deposit := ev.params.Consts.RecoveryDeposit
	if err := ev.reserve(ev.signer, deposit); err != nil {
		return err
	}
	a := ledgercore.ActiveRecovery{Created: ev.round, Deposit: deposit}
	ev.cow.write(gateway.ActiveRecoveryKey(lost, ev.signer), &a)
	return nil
}

func (ev *evaluator) vouch() error {
	lost, rescuer := ev.call.Lost, ev.call.Rescuer
	cfg, exists, err := ev.config(lost)
	if err != nil {
		return err
	}
	if !exists {
		return ev.reject(gateway.RejectNotRecoverable, "%s", lost)
	}
	a, started, err := ev.attempt(lost, rescuer)
	if err != nil {
		return err
	}
	if !started {
		return ev.reject(gateway.RejectNotStarted, "%s by %s", lost, rescuer)
	}
	if !cfg.IsFriend(ev.signer) {
		return ev.reject(gateway.RejectNotFriend, "%s", ev.signer)
	}
	pos, vouched := basics.SearchSorted(a.Vouched, ev.signer)
	if vouched {
		return ev.reject(gateway.RejectAlreadyVouched, "%s", ev.signer)
	}
	a.Vouched = slices.Insert(a.Vouched, pos, ev.signer)
	ev.cow.write(gateway.ActiveRecoveryKey(lost, rescuer), &a)
	return nil
}

func (ev *evaluator) claim() error {
	lost := ev.call.Lost
	cfg, exists, err := ev.config(lost)
	if err != nil {
		return err
	}
	if !exists {
		return ev.reject(gateway.RejectNotRecoverable, "%s", lost)
	}
	a, started, err := ev.attempt(lost, ev.signer)
	if err != nil {
		return err
	}
	if !started {
		return ev.reject(gateway.RejectNotStarted, "%s by %s", lost, ev.signer)
	}
	if claimableAt := a.Created.AddSaturate(cfg.DelayPeriod); ev.round < claimableAt {
		return ev.reject(gateway.RejectDelayPeriod, "%d blocks left", claimableAt-ev.round)
	}
	if len(a.Vouched) < int(cfg.Threshold) {
		return ev.reject(gateway.RejectThreshold, "%d of %d vouches", len(a.Vouched), cfg.Threshold)
	}
	_, isProxy, err := ev.proxyOf(ev.signer)
	if err != nil {
		return err
	}
	if isProxy {
		return ev.reject(gateway.RejectAlreadyProxy, "%s", ev.signer)
	}
	ev.cow.write(gateway.AccountKey(protocol.RecoveryProxyItem, ev.signer), lost)
	return nil
}

func (ev *evaluator) closeRecovery() error {
	lost, rescuer := ev.call.Lost, ev.call.Rescuer
	a, started, err := ev.attempt(lost, rescuer)
	if err != nil {
		return err
	}
	if !started {
		return ev.reject(gateway.RejectNotStarted, "%s by %s", lost, rescuer)
	}
	if ev.signer != lost {
		cfg, exists, err := ev.config(lost)
		if err != nil {
			return err
		}
		if !exists || ev.signer == rescuer || !cfg.IsFriend(ev.signer) || a.HasVouched(ev.signer) {
			return ev.reject(gateway.RejectNotAllowed, "%s may not close this attempt", ev.signer)
		}
	}
	if err := ev.repatriateReserved(rescuer, ev.signer, a.Deposit); err != nil {
		return err
	}
	ev.cow.del(gateway.ActiveRecoveryKey(lost, rescuer))
	return nil
}

// withdrawAsRecovered acts on behalf of the lost account: every open attempt
// is closed into it, its configuration is removed, unbonded stake is redeemed,
// remaining stake is unbonded, and the available balance moves to the rescuer.
// The proxy grant stays while stake is still bonded so the rescuer can come back.
func (ev *evaluator) withdrawAsRecovered() error {
	lost, rescuer := ev.call.Lost, ev.signer
	proxied, isProxy, err := ev.proxyOf(rescuer)
	if err != nil {
		return err
	}
	if !isProxy || proxied != lost {
		return ev.reject(gateway.RejectNotAllowed, "%s is not a proxy of %s", rescuer, lost)
	}

	active, err := ev.cow.scan(protocol.RecoveryActiveItem, lost[:])
	if err != nil {
		return err
	}
	for _, e := range active {
		_, other, err := gateway.DecodeActiveRecoveryKey(e.Key)
		if err != nil {
			return err
		}
		var a ledgercore.ActiveRecovery
		if err := protocol.Decode(e.Value, &a); err != nil {
			return err
		}
		if err := ev.repatriateReserved(other, lost, a.Deposit); err != nil {
			return err
		}
		ev.cow.del(gateway.ActiveRecoveryKey(lost, other))
	}

	cfg, exists, err := ev.config(lost)
	if err != nil {
		return err
	}
	if exists {
		if err := ev.unreserve(lost, cfg.Deposit); err != nil {
			return err
		}
		ev.cow.del(gateway.AccountKey(protocol.RecoveryRecoverableItem, lost))
	}

	bonded, err := ev.withdrawUnbonded(lost, ev.call.SpanCount)
	if err != nil {
		return err
	}
	if bonded {
		if err := ev.unbondAll(lost); err != nil {
			return err
		}
	}

	ad, err := ev.cow.account(lost)
	if err != nil {
		return err
	}
	if err := ev.transfer(lost, rescuer, ad.Available()); err != nil {
		return err
	}
	if !bonded {
		ev.cow.del(gateway.AccountKey(protocol.RecoveryProxyItem, rescuer))
	}
	return nil
}
