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

package basics

import (
	"strconv"
)

// Balance is an amount of the chain's native currency, in indivisible base units.
// There is deliberately no floating point representation of a Balance anywhere.
type Balance uint64

// Round is a block height.
type Round uint32

// EraIndex is the index of a staking bonding period.
type EraIndex uint32

// String returns the balance in base units.
func (b Balance) String() string {
	return strconv.FormatUint(uint64(b), 10)
}

// IsZero checks if the balance is empty.
func (b Balance) IsZero() bool {
	return b == 0
}

// SubSaturate subtracts x from the round, clamping at zero.
func (r Round) SubSaturate(x Round) Round {
	return SubSaturate(r, x)
}

// AddSaturate adds x to the round, clamping at the largest representable round.
func (r Round) AddSaturate(x Round) Round {
	return AddSaturate(r, x)
}
