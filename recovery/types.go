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

// Package recovery coordinates social recovery of lost accounts: it resolves
// recovery configurations, tracks competing rescue attempts, derives the
// recovery state of an account pair, computes deposits and timings, and
// aggregates what a rescuer can withdraw once it acts as the account's proxy.
//
// The ledger is the only source of truth. Nothing in this package keeps
// authoritative state; every answer is derived from gateway queries.
package recovery

import (
	"slices"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/ledgercore"
)

// Attempt is an in-progress recovery of Lost by Rescuer.
type Attempt struct {
	Lost    basics.Address   `codec:"lost" json:"lost"`
	Rescuer basics.Address   `codec:"rescuer" json:"rescuer"`
	Created basics.Round     `codec:"created" json:"created"`
	Deposit basics.Balance   `codec:"deposit" json:"deposit"`
	Vouched []basics.Address `codec:"vouched" json:"vouched"`
}

func makeAttempt(lost, rescuer basics.Address, rec ledgercore.ActiveRecovery) Attempt {
	return Attempt{
		Lost:    lost,
		Rescuer: rescuer,
		Created: rec.Created,
		Deposit: rec.Deposit,
		Vouched: slices.Clone(rec.Vouched),
	}
}

// HasVouched reports whether friend has vouched for this attempt.
func (a Attempt) HasVouched(friend basics.Address) bool {
	_, found := basics.SearchSorted(a.Vouched, friend)
	return found
}

// ProxyGrant records that Proxy may act on behalf of Lost.
type ProxyGrant struct {
	Lost  basics.Address `codec:"lost" json:"lost"`
	Proxy basics.Address `codec:"proxy" json:"proxy"`
}

// Rescuer is one account trying to recover a lost account.
type Rescuer struct {
	Account basics.Address `codec:"account" json:"account"`
	Attempt *Attempt       `codec:"attempt" json:"attempt,omitempty"`
}

// WithdrawAmounts breaks down what a proxy can move out of a lost account.
type WithdrawAmounts struct {
	TotalWithdrawable    basics.Balance `codec:"total" json:"total"`
	Available            basics.Balance `codec:"available" json:"available"`
	Redeemable           basics.Balance `codec:"redeemable" json:"redeemable"`
	Staked               basics.Balance `codec:"staked" json:"staked"`
	Unlocking            basics.Balance `codec:"unlocking" json:"unlocking"`
	OwnDeposit           basics.Balance `codec:"ownDeposit" json:"ownDeposit"`
	OtherRescuerDeposits basics.Balance `codec:"otherDeposits" json:"otherDeposits"`
	SpanCount            uint32         `codec:"spans" json:"spans"`
}
