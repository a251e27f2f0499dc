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

	"github.com/algorand/go-recovery/data/basics"
)

// State is the recovery state of a (lost, rescuer) pair.
type State uint8

const (
	// AwaitingInputs means some query has not resolved, or two queries
	// disagree; the caller should wait or re-query.
	AwaitingInputs State = iota
	// Unconfigured means the account is not recoverable.
	Unconfigured
	// Configured means the account is recoverable and the rescuer has no attempt.
	Configured
	// AttemptOpen means the rescuer has an attempt that cannot be claimed yet.
	AttemptOpen
	// Claimable means the threshold is met and the delay has elapsed.
	Claimable
	// ProxyEstablished means the rescuer controls the account.
	ProxyEstablished
)

var stateNames = [...]string{
	AwaitingInputs:   "awaiting-inputs",
	Unconfigured:     "unconfigured",
	Configured:       "configured",
	AttemptOpen:      "attempt-open",
	Claimable:        "claimable",
	ProxyEstablished: "proxy-established",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", s)
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown recovery state %q", text)
}

// Inputs are the partial answers the state is derived from. Round is only
// meaningful when HasRound is set.
type Inputs struct {
	Config   ConfigResult  `codec:"config" json:"config"`
	Attempt  AttemptResult `codec:"attempt" json:"attempt"`
	Proxy    ProxyResult   `codec:"proxy" json:"proxy"`
	Round    basics.Round  `codec:"round" json:"round"`
	HasRound bool          `codec:"hasRound" json:"hasRound"`
}

// DeriveState maps any combination of resolved and pending inputs to a state.
// It never guesses: whenever the inputs are incomplete or inconsistent it
// returns AwaitingInputs.
func DeriveState(in Inputs) State {
	switch in.Proxy {
	case ProxyYes:
		return ProxyEstablished
	case ProxyPending:
		return AwaitingInputs
	}

	switch in.Config.Status {
	case Absent:
		switch in.Attempt.Status {
		case Absent:
			return Unconfigured
		default:
			// an attempt without a configuration means the two answers come from
			// different blocks
			return AwaitingInputs
		}
	case Present:
		switch in.Attempt.Status {
		case Absent:
			return Configured
		case Present:
			if !in.HasRound || in.Round < in.Attempt.Attempt.Created {
				// the round was read from a block older than the attempt
				return AwaitingInputs
			}
			if thresholdMet(in.Attempt.Attempt, in.Config) && delayElapsed(in.Attempt.Attempt, in.Config, in.Round) {
				return Claimable
			}
			return AttemptOpen
		}
	}
	return AwaitingInputs
}

func thresholdMet(a Attempt, cfg ConfigResult) bool {
	return len(a.Vouched) >= int(cfg.Config.Threshold)
}

// delayElapsed expects current to be at or after the attempt's round.
func delayElapsed(a Attempt, cfg ConfigResult, current basics.Round) bool {
	return current-a.Created >= cfg.Config.DelayPeriod
}
