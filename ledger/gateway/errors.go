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

package gateway

import (
	"fmt"

	"github.com/algorand/go-recovery/protocol"
)

// RejectCode classifies why the ledger refused a call.
type RejectCode string

// Reject codes surfaced by ledgers, in lexicographic order.
const (
	RejectAlreadyProxy       RejectCode = "already-proxy"
	RejectAlreadyRecoverable RejectCode = "already-recoverable"
	RejectAlreadyStarted     RejectCode = "already-started"
	RejectAlreadyVouched     RejectCode = "already-vouched"
	RejectBadSignature       RejectCode = "bad-signature"
	RejectDelayPeriod        RejectCode = "delay-period"
	RejectInsufficientFunds  RejectCode = "insufficient-funds"
	RejectMaxFriends         RejectCode = "max-friends"
	RejectNotAllowed         RejectCode = "not-allowed"
	RejectNotFriend          RejectCode = "not-friend"
	RejectNotRecoverable     RejectCode = "not-recoverable"
	RejectNotSorted          RejectCode = "not-sorted"
	RejectNotStarted         RejectCode = "not-started"
	RejectOverflow           RejectCode = "overflow"
	RejectSpanCount          RejectCode = "span-count"
	RejectStaleNonce         RejectCode = "stale-nonce"
	RejectStillActive        RejectCode = "still-active"
	RejectThreshold          RejectCode = "threshold"
	RejectUnknownCall        RejectCode = "unknown-call"
	RejectZeroThreshold      RejectCode = "zero-threshold"
)

// LedgerRejectedError is returned when the ledger refuses a submitted call.
// It is terminal for that submission; callers decide whether to retry.
type LedgerRejectedError struct {
	Call   protocol.CallType `json:"call"`
	Code   RejectCode        `json:"code"`
	Detail string            `json:"detail"`
}

// Error satisfies builtin interface `error`
func (e *LedgerRejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("ledger rejected %s call: %s", e.Call, e.Code)
	}
	return fmt.Sprintf("ledger rejected %s call: %s (%s)", e.Call, e.Code, e.Detail)
}

// Reject builds a LedgerRejectedError.
func Reject(call protocol.CallType, code RejectCode, format string, args ...interface{}) *LedgerRejectedError {
	return &LedgerRejectedError{Call: call, Code: code, Detail: fmt.Sprintf(format, args...)}
}
