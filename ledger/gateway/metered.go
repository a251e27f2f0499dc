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
	"context"
	"errors"
	"time"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/protocol"
	"github.com/algorand/go-recovery/util/metrics"
)

var (
	queriesTotal      = metrics.MakeCounter(metrics.GatewayQueriesTotal, "op")
	queryErrorsTotal  = metrics.MakeCounter(metrics.GatewayQueryErrorsTotal, "op")
	querySeconds      = metrics.MakeHistogram(metrics.GatewayQuerySeconds, "op")
	submitsTotal      = metrics.MakeCounter(metrics.GatewaySubmitsTotal, "call")
	ledgerRejectTotal = metrics.MakeCounter(metrics.LedgerRejectionsTotal, "call", "code")
)

type metered struct {
	gw Gateway
}

// WithMetrics wraps gw so that every query and submission is counted and timed.
func WithMetrics(gw Gateway) Gateway {
	if _, ok := gw.(metered); ok {
		return gw
	}
	return metered{gw: gw}
}

func observe(op string, start time.Time, err error) {
	queriesTotal.Inc(op)
	querySeconds.ObserveSince(start, op)
	if err != nil {
		queryErrorsTotal.Inc(op)
	}
}

func (m metered) Query(ctx context.Context, key StorageKey) (v []byte, found bool, err error) {
	start := time.Now()
	v, found, err = m.gw.Query(ctx, key)
	observe("query", start, err)
	return
}

func (m metered) QueryBatch(ctx context.Context, keys []StorageKey) (v [][]byte, err error) {
	start := time.Now()
	v, err = m.gw.QueryBatch(ctx, keys)
	observe("batch", start, err)
	return
}

func (m metered) QueryAllEntries(ctx context.Context, item protocol.StorageItem) (e []Entry, err error) {
	start := time.Now()
	e, err = m.gw.QueryAllEntries(ctx, item)
	observe("scan", start, err)
	return
}

func (m metered) CurrentRound(ctx context.Context) (r basics.Round, err error) {
	start := time.Now()
	r, err = m.gw.CurrentRound(ctx)
	observe("round", start, err)
	return
}

func (m metered) Submit(ctx context.Context, call Call, signer Signer) (Receipt, error) {
	submitsTotal.Inc(string(call.Type))
	r, err := m.gw.Submit(ctx, call, signer)
	var rejected *LedgerRejectedError
	if errors.As(err, &rejected) {
		ledgerRejectTotal.Inc(string(call.Type), string(rejected.Code))
	}
	return r, err
}
