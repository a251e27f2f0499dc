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
	"errors"
	"fmt"
)

// ErrOverflow aborts a deposit or balance computation that does not fit in a balance.
var ErrOverflow = errors.New("recovery: balance arithmetic overflow")

// Reason classifies a precondition failure.
type Reason string

// Precondition failure reasons, in lexicographic order.
const (
	ReasonAlreadyVouched  Reason = "already-vouched"
	ReasonBadFriends      Reason = "bad-friends"
	ReasonDelayNotElapsed Reason = "delay-not-elapsed"
	ReasonNotFriend       Reason = "not-friend"
	ReasonNotOwner        Reason = "not-owner"
	ReasonNotRescuer      Reason = "not-rescuer"
	ReasonOwnAttempt      Reason = "own-attempt"
	ReasonThreshold       Reason = "threshold"
	ReasonTooManyFriends  Reason = "too-many-friends"
	ReasonUnsortedFriends Reason = "unsorted-friends"
	ReasonWrongState      Reason = "wrong-state"
)

// PreconditionError is returned when an action is refused locally because its
// guard does not hold. Nothing was submitted; the caller may fix the input and retry.
type PreconditionError struct {
	Action Action
	Reason Reason
	Detail string
}

// Error satisfies builtin interface `error`
func (e *PreconditionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("cannot %s: %s", e.Action, e.Reason)
	}
	return fmt.Sprintf("cannot %s: %s: %s", e.Action, e.Reason, e.Detail)
}

func precondition(action Action, reason Reason, format string, args ...interface{}) *PreconditionError {
	preconditionRejections.Inc(string(action), string(reason))
	return &PreconditionError{Action: action, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
