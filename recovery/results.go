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

	"github.com/algorand/go-recovery/ledger/ledgercore"
)

// Resolution is the state of one ledger question. The zero value is Pending:
// the answer is not known yet, which is different from a known absence.
type Resolution uint8

const (
	// Pending means the query has not resolved yet.
	Pending Resolution = iota
	// Absent means the ledger has no such record.
	Absent
	// Present means the record exists.
	Present
)

func (r Resolution) String() string {
	switch r {
	case Pending:
		return "pending"
	case Absent:
		return "absent"
	case Present:
		return "present"
	}
	return "unknown"
}

// MarshalText encodes the resolution by name.
func (r Resolution) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a resolution name.
func (r *Resolution) UnmarshalText(text []byte) error {
	for _, v := range []Resolution{Pending, Absent, Present} {
		if v.String() == string(text) {
			*r = v
			return nil
		}
	}
	return fmt.Errorf("unknown resolution %q", text)
}

// ConfigResult is the answer to "is this account recoverable".
type ConfigResult struct {
	Status Resolution                `codec:"status" json:"status"`
	Config ledgercore.RecoveryConfig `codec:"config" json:"config"`
}

// NotConfigured is the resolved absence of a recovery configuration.
func NotConfigured() ConfigResult { return ConfigResult{Status: Absent} }

// HasConfig wraps a resolved recovery configuration.
func HasConfig(cfg ledgercore.RecoveryConfig) ConfigResult {
	return ConfigResult{Status: Present, Config: cfg}
}

// IsConfigured reports whether the result carries a configuration.
func (c ConfigResult) IsConfigured() bool { return c.Status == Present }

// AttemptResult is the answer to "is this rescuer recovering this account".
type AttemptResult struct {
	Status  Resolution `codec:"status" json:"status"`
	Attempt Attempt    `codec:"attempt" json:"attempt"`
}

// NoAttempt is the resolved absence of an attempt.
func NoAttempt() AttemptResult { return AttemptResult{Status: Absent} }

// HasAttempt wraps a resolved attempt.
func HasAttempt(a Attempt) AttemptResult { return AttemptResult{Status: Present, Attempt: a} }

// ProxyResult is the answer to "is this rescuer already the proxy of this account".
type ProxyResult uint8

const (
	// ProxyPending means the proxy query has not resolved yet.
	ProxyPending ProxyResult = iota
	// ProxyNo means the rescuer is not a proxy of the account.
	ProxyNo
	// ProxyYes means the rescuer controls the account through a proxy grant.
	ProxyYes
)

func (p ProxyResult) String() string {
	switch p {
	case ProxyPending:
		return "pending"
	case ProxyNo:
		return "no"
	case ProxyYes:
		return "yes"
	}
	return "unknown"
}

// MarshalText encodes the proxy answer by name.
func (p ProxyResult) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a proxy answer name.
func (p *ProxyResult) UnmarshalText(text []byte) error {
	for _, v := range []ProxyResult{ProxyPending, ProxyNo, ProxyYes} {
		if v.String() == string(text) {
			*p = v
			return nil
		}
	}
	return fmt.Errorf("unknown proxy answer %q", text)
}
