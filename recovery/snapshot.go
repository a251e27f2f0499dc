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
	"context"
	"fmt"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/ledger/ledgercore"
	"github.com/algorand/go-recovery/protocol"
)

// BalanceSnapshot is everything the withdrawal aggregation needs about a lost
// account, read from a single block.
type BalanceSnapshot struct {
	Account ledgercore.AccountData    `codec:"account" json:"account"`
	Staking *ledgercore.StakingLedger `codec:"staking" json:"staking,omitempty"`
	Spans   *ledgercore.SlashingSpans `codec:"spans" json:"spans,omitempty"`
	Era     basics.EraIndex           `codec:"era" json:"era"`
}

// SpanCount is the slashing span count a withdrawal must quote.
func (s BalanceSnapshot) SpanCount() uint32 {
	if s.Spans == nil {
		return 0
	}
	return s.Spans.Count()
}

// FetchBalanceSnapshot reads the balance, staking ledger, slashing spans and
// current era of lost in one batched query.
func (c *Coordinator) FetchBalanceSnapshot(ctx context.Context, lost basics.Address) (snap BalanceSnapshot, err error) {
	keys := []gateway.StorageKey{
		gateway.AccountKey(protocol.SystemAccountItem, lost),
		gateway.AccountKey(protocol.StakingLedgerItem, lost),
		gateway.AccountKey(protocol.StakingSpansItem, lost),
		gateway.SingletonKey(protocol.StakingEraItem),
	}
	values, err := c.gw.QueryBatch(ctx, keys)
	if err != nil {
		return snap, fmt.Errorf("fetch balance snapshot of %s: %w", lost, err)
	}
	if len(values) != len(keys) {
		return snap, fmt.Errorf("fetch balance snapshot of %s: %d answers for %d keys", lost, len(values), len(keys))
	}

	if values[0] != nil {
		if err := protocol.Decode(values[0], &snap.Account); err != nil {
			return snap, fmt.Errorf("decode account %s: %w", lost, err)
		}
	}
	if values[1] != nil {
		snap.Staking = new(ledgercore.StakingLedger)
		if err := protocol.Decode(values[1], snap.Staking); err != nil {
			return snap, fmt.Errorf("decode staking ledger of %s: %w", lost, err)
		}
	}
	if values[2] != nil {
		snap.Spans = new(ledgercore.SlashingSpans)
		if err := protocol.Decode(values[2], snap.Spans); err != nil {
			return snap, fmt.Errorf("decode slashing spans of %s: %w", lost, err)
		}
	}
	if values[3] == nil {
		return snap, fmt.Errorf("ledger publishes no %s", protocol.StakingEraItem)
	}
	if err := protocol.Decode(values[3], &snap.Era); err != nil {
		return snap, fmt.Errorf("decode current era: %w", err)
	}
	return snap, nil
}
