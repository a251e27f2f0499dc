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

package ledgercore

import (
	"github.com/algorand/go-recovery/data/basics"
)

// RecoveryConfig is the recovery configuration stored for a recoverable account.
// Friends is kept in ascending byte order; the ledger rejects anything else.
type RecoveryConfig struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Threshold   uint16           `codec:"thr"`
	DelayPeriod basics.Round     `codec:"dly"`
	Friends     []basics.Address `codec:"frnd"`
	Deposit     basics.Balance   `codec:"dep"`
}

// IsFriend reports whether addr is one of the configured friends.
func (c RecoveryConfig) IsFriend(addr basics.Address) bool {
	_, found := basics.SearchSorted(c.Friends, addr)
	return found
}

// ActiveRecovery is the ledger record of an in-progress recovery attempt,
// keyed by (lost, rescuer).
type ActiveRecovery struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Created basics.Round     `codec:"crt"`
	Deposit basics.Balance   `codec:"dep"`
	Vouched []basics.Address `codec:"vch"`
}

// HasVouched reports whether friend already vouched for this attempt.
func (a ActiveRecovery) HasVouched(friend basics.Address) bool {
	_, found := basics.SearchSorted(a.Vouched, friend)
	return found
}
