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

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/ledger/ledgercore"
	"github.com/algorand/go-recovery/recovery"
)

var stateColors = map[recovery.State]color.Attribute{
	recovery.AwaitingInputs:   color.FgRed,
	recovery.Unconfigured:     color.FgWhite,
	recovery.Configured:       color.FgCyan,
	recovery.AttemptOpen:      color.FgYellow,
	recovery.Claimable:        color.FgGreen,
	recovery.ProxyEstablished: color.FgGreen,
}

func colorState(s recovery.State) string {
	c, ok := stateColors[s]
	if !ok {
		c = color.FgRed
	}
	return color.New(c).Sprint(s.String())
}

func formatConfig(cfg ledgercore.RecoveryConfig, render func(basics.Address) string) []string {
	lines := []string{
		fmt.Sprintf("Threshold:     %d of %d friends", cfg.Threshold, len(cfg.Friends)),
		fmt.Sprintf("Delay period:  %d blocks", cfg.DelayPeriod),
		fmt.Sprintf("Deposit:       %s", cfg.Deposit),
	}
	for _, f := range cfg.Friends {
		lines = append(lines, "  friend "+render(f))
	}
	return lines
}

func formatVouches(a recovery.Attempt, cfg ledgercore.RecoveryConfig) string {
	s := fmt.Sprintf("%d/%d vouches", len(a.Vouched), cfg.Threshold)
	if len(a.Vouched) >= int(cfg.Threshold) {
		return color.New(color.FgGreen).Sprint(s)
	}
	return s
}

func formatTiming(t *recovery.Timing) string {
	if t == nil {
		return "n/a"
	}
	if t.Remaining == 0 {
		return fmt.Sprintf("claimable since round %d (%d blocks elapsed)", t.ClaimableAt, t.Elapsed)
	}
	if t.EstimatedSeconds == 0 {
		return fmt.Sprintf("claimable at round %d, %d blocks remaining", t.ClaimableAt, t.Remaining)
	}
	est := time.Duration(t.EstimatedSeconds) * time.Second
	return fmt.Sprintf("claimable at round %d, %d blocks remaining (~%s)", t.ClaimableAt, t.Remaining, est)
}

func formatActions(actions []recovery.Action) string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

func formatAmounts(w recovery.WithdrawAmounts) []string {
	return []string{
		fmt.Sprintf("Withdrawable:         %s", color.New(color.FgGreen).Sprint(w.TotalWithdrawable)),
		fmt.Sprintf("  available:          %s", w.Available),
		fmt.Sprintf("  redeemable:         %s", w.Redeemable),
		fmt.Sprintf("  own deposit:        %s", w.OwnDeposit),
		fmt.Sprintf("Staked:               %s", w.Staked),
		fmt.Sprintf("Unlocking:            %s", w.Unlocking),
		fmt.Sprintf("Other rescuer deposits: %s", w.OtherRescuerDeposits),
		fmt.Sprintf("Slashing spans:       %d", w.SpanCount),
	}
}

// describeSubmitError separates local refusals, ledger rejections and
// transport failures for the user.
func describeSubmitError(what string, err error) string {
	var pre *recovery.PreconditionError
	if errors.As(err, &pre) {
		return fmt.Sprintf(errorRefused, what, pre)
	}
	var rej *gateway.LedgerRejectedError
	if errors.As(err, &rej) {
		return fmt.Sprintf(errorRejected, what, rej.Code, rej.Detail)
	}
	return fmt.Sprintf(errorSubmitFailed, what, err)
}
