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
	"context"
	"fmt"

	"github.com/algorand/go-recovery/data/basics"
)

// AggregateWithdrawable computes what a proxy can move out of the lost account
// described by snap. ownDeposit is what closing the pair returns to the lost
// account (see OwnDeposit) and others are the deposits of competing attempts
// that are closed into it. Unlocking chunks whose era has been reached are
// redeemable; the rest stay unlocking. Bonded stake is reported but not
// withdrawable.
//
// The function only reads snap: callers fetch the snapshot once and pass it
// in, so a chunk cannot be counted both as unlocking and as redeemable.
func AggregateWithdrawable(snap BalanceSnapshot, ownDeposit basics.Balance, others []basics.Balance) (WithdrawAmounts, error) {
	var ot basics.OverflowTracker
	out := WithdrawAmounts{
		Available:  snap.Account.Available(),
		OwnDeposit: ownDeposit,
		SpanCount:  snap.SpanCount(),
	}
	if snap.Staking != nil {
		out.Staked = snap.Staking.Active
		for _, chunk := range snap.Staking.Unlocking {
			if chunk.Era <= snap.Era {
				out.Redeemable = ot.Add(out.Redeemable, chunk.Value)
			} else {
				out.Unlocking = ot.Add(out.Unlocking, chunk.Value)
			}
		}
	}
	for _, d := range others {
		out.OtherRescuerDeposits = ot.Add(out.OtherRescuerDeposits, d)
	}
	out.TotalWithdrawable = ot.Add(ot.Add(out.Available, out.Redeemable), ot.Add(out.OwnDeposit, out.OtherRescuerDeposits))
	if ot.Overflowed {
		return WithdrawAmounts{}, ErrOverflow
	}
	return out, nil
}

// OwnDeposit is what the pair itself returns to the lost account on
// withdrawal: the configuration deposit and the rescuer's own attempt deposit.
func OwnDeposit(cfg ConfigResult, own AttemptResult) (basics.Balance, error) {
	var deposits []basics.Balance
	if cfg.IsConfigured() {
		deposits = append(deposits, cfg.Config.Deposit)
	}
	if own.Status == Present {
		deposits = append(deposits, own.Attempt.Deposit)
	}
	total, overflowed := basics.Sum(deposits...)
	if overflowed {
		return 0, ErrOverflow
	}
	return total, nil
}

// Withdrawable gathers the inputs of AggregateWithdrawable for the pair
// (lost, rescuer) and aggregates them.
func (c *Coordinator) Withdrawable(ctx context.Context, lost, rescuer basics.Address) (WithdrawAmounts, error) {
	cfg, err := c.ResolveConfig(ctx, lost)
	if err != nil {
		return WithdrawAmounts{}, err
	}
	own, err := c.TrackAttempt(ctx, lost, rescuer)
	if err != nil {
		return WithdrawAmounts{}, err
	}
	competing, err := c.rescuers.CompetingRescuers(ctx, lost, rescuer)
	if err != nil {
		return WithdrawAmounts{}, err
	}
	snap, err := c.FetchBalanceSnapshot(ctx, lost)
	if err != nil {
		return WithdrawAmounts{}, err
	}

	ownDeposit, err := OwnDeposit(cfg, own)
	if err != nil {
		return WithdrawAmounts{}, err
	}
	others := make([]basics.Balance, 0, len(competing))
	for _, r := range competing {
		if r.Attempt != nil {
			others = append(others, r.Attempt.Deposit)
		}
	}
	amounts, err := AggregateWithdrawable(snap, ownDeposit, others)
	if err != nil {
		return WithdrawAmounts{}, fmt.Errorf("aggregate withdrawable of %s: %w", lost, err)
	}
	return amounts, nil
}
