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

// Package gateway defines the contract between the recovery coordinator and
// the distributed ledger it observes.
package gateway

import (
	"context"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/protocol"
)

// Entry is one key/value pair of a storage item.
type Entry struct {
	Key   []byte
	Value []byte
}

// Gateway is the read/submit surface of a ledger node.
//
// Every method is a suspension point and honours ctx cancellation. A single
// call reflects a single block; no consistency is promised across calls.
type Gateway interface {
	// Query looks up one storage value. found is false when the record does not exist.
	Query(ctx context.Context, key StorageKey) (value []byte, found bool, err error)

	// QueryBatch looks up several storage values, all answered from the same block.
	// Absent records come back as nil entries at their position.
	QueryBatch(ctx context.Context, keys []StorageKey) ([][]byte, error)

	// QueryAllEntries returns every record of a storage item. This is a full scan.
	QueryAllEntries(ctx context.Context, item protocol.StorageItem) ([]Entry, error)

	// CurrentRound returns the height of the latest block.
	CurrentRound(ctx context.Context) (basics.Round, error)

	// Submit signs call with signer and submits it. A call the ledger refuses
	// fails with a *LedgerRejectedError.
	Submit(ctx context.Context, call Call, signer Signer) (Receipt, error)
}
