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
	"github.com/algorand/go-recovery/config"
	"github.com/algorand/go-recovery/data/basics"
)

// ConfigureDeposit is the deposit reserved when an account becomes recoverable
// with friendCount friends: base + factor * friendCount.
func ConfigureDeposit(friendCount int, consts config.RecoveryConsts) (basics.Balance, error) {
	if friendCount < 0 {
		return 0, ErrOverflow
	}
	var ot basics.OverflowTracker
	deposit := ot.Add(consts.ConfigDepositBase, ot.ScalarMul(consts.FriendDepositFactor, uint64(friendCount)))
	if ot.Overflowed {
		return 0, ErrOverflow
	}
	return deposit, nil
}

// InitiateDeposit is the deposit reserved from a rescuer when it opens an attempt.
func InitiateDeposit(consts config.RecoveryConsts) basics.Balance {
	return consts.RecoveryDeposit
}
