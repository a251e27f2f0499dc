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

package v1

import (
	"github.com/algorand/go-recovery/config"
	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/protocol"
	"github.com/algorand/go-recovery/recovery"
)

// ErrorResponse is returned by every failing route. Rejection is set when the
// ledger refused a submitted call, so clients can rebuild the typed error.
type ErrorResponse struct {
	Message   string                       `json:"message"`
	Rejection *gateway.LedgerRejectedError `json:"rejection,omitempty"`
}

// StatusResponse describes the latest block of the ledger.
type StatusResponse struct {
	Round basics.Round    `json:"round"`
	Era   basics.EraIndex `json:"era"`
}

// StorageKey names one record in a batch request. Key holds the raw key bytes.
type StorageKey struct {
	Item protocol.StorageItem `json:"item"`
	Key  []byte               `json:"key,omitempty"`
}

// StorageValue is the msgpack-encoded value of one record.
type StorageValue struct {
	Found bool   `json:"found"`
	Value []byte `json:"value,omitempty"`
}

// StorageEntry is one record of a scanned storage item.
type StorageEntry struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

// StorageEntriesResponse lists every record of a storage item.
type StorageEntriesResponse struct {
	Entries []StorageEntry `json:"entries"`
}

// StorageBatchRequest asks for several records from one block.
type StorageBatchRequest struct {
	Keys []StorageKey `json:"keys"`
}

// StorageBatchResponse answers a StorageBatchRequest, position by position.
type StorageBatchResponse struct {
	Values []StorageValue `json:"values"`
}

// ConstsResponse carries the recovery constants published by the ledger.
type ConstsResponse struct {
	Consts config.RecoveryConsts `json:"consts"`
}

// DepositResponse carries the deposits reserved by configure and initiate.
type DepositResponse struct {
	Friends   int            `json:"friends"`
	Configure basics.Balance `json:"configure"`
	Initiate  basics.Balance `json:"initiate"`
}

// ConfigResponse is the resolved recovery configuration of an account.
type ConfigResponse struct {
	Lost   basics.Address        `json:"lost"`
	Config recovery.ConfigResult `json:"config"`
}

// StateResponse is the view of a pair, and optionally what an acting account
// may do on it. Incomplete is set when some query failed; the view still
// carries what resolved.
type StateResponse struct {
	View       recovery.View     `json:"view"`
	Acting     *basics.Address   `json:"acting,omitempty"`
	Role       string            `json:"role,omitempty"`
	Actions    []recovery.Action `json:"actions,omitempty"`
	Timing     *recovery.Timing  `json:"timing,omitempty"`
	Incomplete string            `json:"incomplete,omitempty"`
}

// RescuersResponse lists the rescuers competing for an account.
type RescuersResponse struct {
	Lost     basics.Address     `json:"lost"`
	Rescuers []recovery.Rescuer `json:"rescuers"`
}

// ProxyResponse tells which account, if any, a rescuer acts for.
type ProxyResponse struct {
	Rescuer basics.Address  `json:"rescuer"`
	Lost    *basics.Address `json:"lost,omitempty"`
}

// WithdrawableResponse breaks down what the rescuer can withdraw from the lost account.
type WithdrawableResponse struct {
	Lost    basics.Address           `json:"lost"`
	Rescuer basics.Address           `json:"rescuer"`
	Amounts recovery.WithdrawAmounts `json:"amounts"`
}
