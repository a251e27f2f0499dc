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
	"math/bits"
	"time"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/ledgercore"
)

// ClaimableAt is the first round at which the delay of an attempt has elapsed.
func ClaimableAt(a Attempt, cfg ledgercore.RecoveryConfig) basics.Round {
	return a.Created.AddSaturate(cfg.DelayPeriod)
}

// RemainingBlocks is the number of rounds left before the delay elapses, or 0.
// It is for display only; claimability is decided by the state machine.
func RemainingBlocks(a Attempt, cfg ledgercore.RecoveryConfig, current basics.Round) basics.Round {
	return ClaimableAt(a, cfg).SubSaturate(current)
}

// ElapsedBlocks is the number of rounds since the attempt was opened.
func ElapsedBlocks(a Attempt, current basics.Round) basics.Round {
	return current.SubSaturate(a.Created)
}

// EstimatedSeconds converts a number of rounds to seconds at blockTimeMs per round.
func EstimatedSeconds(remaining basics.Round, blockTimeMs uint64) (uint64, error) {
	hi, lo := bits.Mul64(uint64(remaining), blockTimeMs)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo / 1000, nil
}

// EstimatedDuration is EstimatedSeconds as a time.Duration.
func EstimatedDuration(remaining basics.Round, blockTimeMs uint64) (time.Duration, error) {
	secs, err := EstimatedSeconds(remaining, blockTimeMs)
	if err != nil {
		return 0, err
	}
	if secs > uint64(1<<63-1)/uint64(time.Second) {
		return 0, ErrOverflow
	}
	return time.Duration(secs) * time.Second, nil
}
