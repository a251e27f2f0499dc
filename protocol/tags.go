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

package protocol

// StorageItem names a keyed storage map of the ledger. Items are scoped by
// their pallet-like module prefix ("recovery/", "staking/", ...).
type StorageItem string

// Storage items read by the coordinator, in lexicographic order to avoid dups.
const (
	RecoveryActiveItem      StorageItem = "recovery/active"
	RecoveryConstsItem      StorageItem = "recovery/consts"
	RecoveryProxyItem       StorageItem = "recovery/proxy"
	RecoveryRecoverableItem StorageItem = "recovery/recoverable"
	StakingEraItem          StorageItem = "staking/era"
	StakingLedgerItem       StorageItem = "staking/ledger"
	StakingSpansItem        StorageItem = "staking/spans"
	SystemAccountItem       StorageItem = "system/account"
)

// Module returns the module prefix of the item ("recovery" for "recovery/active").
func (s StorageItem) Module() string {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return string(s[:i])
		}
	}
	return string(s)
}

// CallType identifies a state-changing ledger call.
type CallType string

const (
	// ConfigureCall makes the signer recoverable.
	ConfigureCall CallType = "cfg"
	// RemoveRecoveryCall removes the signer's recovery configuration.
	RemoveRecoveryCall CallType = "rmv"
	// InitiateCall opens a recovery attempt by the signer against a lost account.
	InitiateCall CallType = "ini"
	// VouchCall endorses a rescuer's attempt.
	VouchCall CallType = "vch"
	// ClaimCall turns a claimable attempt into a proxy grant.
	ClaimCall CallType = "clm"
	// CloseRecoveryCall closes an open attempt and moves its deposit to the closer.
	CloseRecoveryCall CallType = "cls"
	// WithdrawCall sweeps a recovered account into its rescuer and closes it as recovered.
	WithdrawCall CallType = "wdr"

	// EndowCall, BondCall and UnbondCall only exist on development ledgers.
	EndowCall  CallType = "end"
	BondCall   CallType = "bnd"
	UnbondCall CallType = "unb"
)

// HashID is a domain separation prefix for an object type that might be hashed
type HashID string

// Hash IDs for specific object types, in lexicographic order to avoid dups.
const (
	Call       HashID = "CL"
	SignedCall HashID = "SC"
)
