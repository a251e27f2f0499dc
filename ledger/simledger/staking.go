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
	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/ledger/ledgercore"
	"github.com/algorand/go-recovery/protocol"
)

func (ev *evaluator) stakingLedger(stash basics.Address) (sl ledgercore.StakingLedger, found bool, err error) {
	found, err = ev.cow.read(gateway.AccountKey(protocol.StakingLedgerItem, stash), &sl)
	return
}

// lock keeps the frozen part of the stash balance equal to its total stake.
func (ev *evaluator) lock(stash basics.Address, sl ledgercore.StakingLedger) error {
	ad, err := ev.cow.account(stash)
	if err != nil {
		return err
	}
	ad.Frozen = sl.Total
	ev.cow.putAccount(stash, ad)
	if sl.Total == 0 {
		ev.cow.del(gateway.AccountKey(protocol.StakingLedgerItem, stash))
		ev.cow.del(gateway.AccountKey(protocol.StakingSpansItem, stash))
		return nil
	}
	ev.cow.write(gateway.AccountKey(protocol.StakingLedgerItem, stash), &sl)
	return nil
}

func (ev *evaluator) bond(stash basics.Address, amount basics.Balance) error {
	if amount == 0 {
		return ev.reject(gateway.RejectNotAllowed, "zero bond")
	}
	ad, err := ev.cow.account(stash)
	if err != nil {
		return err
	}
	if ad.Available() < amount {
		return ev.reject(gateway.RejectInsufficientFunds, "%s has %d available, bonding %d", stash, ad.Available(), amount)
	}
	sl, found, err := ev.stakingLedger(stash)
	if err != nil {
		return err
	}
	var ot basics.OverflowTracker
	sl.Total = ot.Add(sl.Total, amount)
	sl.Active = ot.Add(sl.Active, amount)
	if ot.Overflowed {
		return ev.reject(gateway.RejectOverflow, "bonding for %s", stash)
	}
	if !found {
		spans := ledgercore.SlashingSpans{LastStart: ev.era}
		ev.cow.write(gateway.AccountKey(protocol.StakingSpansItem, stash), &spans)
	}
	return ev.lock(stash, sl)
}

func (ev *evaluator) unbond(stash basics.Address, amount basics.Balance) error {
	sl, found, err := ev.stakingLedger(stash)
	if err != nil {
		return err
	}
	if !found {
		return ev.reject(gateway.RejectNotAllowed, "%s is not bonded", stash)
	}
	amount = basics.MinB(amount, sl.Active)
	if amount == 0 {
		return nil
	}
	sl.Active -= amount
	unlockAt := basics.EraIndex(basics.AddSaturate(uint32(ev.era), ev.params.BondingDuration))
	if n := len(sl.Unlocking); n > 0 && sl.Unlocking[n-1].Era == unlockAt {
		sl.Unlocking[n-1].Value += amount
	} else {
		sl.Unlocking = append(sl.Unlocking, ledgercore.UnlockChunk{Value: amount, Era: unlockAt})
	}
	return ev.lock(stash, sl)
}

func (ev *evaluator) unbondAll(stash basics.Address) error {
	sl, found, err := ev.stakingLedger(stash)
	if err != nil || !found {
		return err
	}
	return ev.unbond(stash, sl.Active)
}

// withdrawUnbonded releases every chunk whose era has been reached and
// reports whether any stake is left bonded or unlocking.
func (ev *evaluator) withdrawUnbonded(stash basics.Address, spanCount uint32) (bool, error) {
	sl, found, err := ev.stakingLedger(stash)
	if err != nil || !found {
		return false, err
	}
	var spans ledgercore.SlashingSpans
	hasSpans, err := ev.cow.read(gateway.AccountKey(protocol.StakingSpansItem, stash), &spans)
	if err != nil {
		return false, err
	}
	if hasSpans && spanCount < spans.Count() {
		return false, ev.reject(gateway.RejectSpanCount, "quoted %d, stash has %d", spanCount, spans.Count())
	}

	kept := sl.Unlocking[:0]
	for _, chunk := range sl.Unlocking {
		if chunk.Era <= ev.era {
			sl.Total -= chunk.Value
			continue
		}
		kept = append(kept, chunk)
	}
	sl.Unlocking = kept
	if err := ev.lock(stash, sl); err != nil {
		return false, err
	}
	return sl.Total > 0, nil
}
