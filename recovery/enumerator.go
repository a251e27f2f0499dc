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
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/ledger/ledgercore"
	"github.com/algorand/go-recovery/protocol"
)

// scanCheckEvery is how many entries are filtered between cancellation checks.
const scanCheckEvery = 256

// EnumerateCompetingRescuers scans every active recovery on the ledger and
// returns the rescuers of lost other than exclude, ordered by address.
// The active set is not indexed by lost account, so this is a full scan:
// callers that ask repeatedly should put a cache in front of it.
func (c *Coordinator) EnumerateCompetingRescuers(ctx context.Context, lost basics.Address, exclude ...basics.Address) ([]Rescuer, error) {
	entries, err := c.gw.QueryAllEntries(ctx, protocol.RecoveryActiveItem)
	if err != nil {
		return nil, fmt.Errorf("scan active recoveries: %w", err)
	}
	rescuers, err := filterRescuers(ctx, entries, lost, exclude)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("scanned %d active recoveries, %d against %s", len(entries), len(rescuers), lost)
	return rescuers, nil
}

// CompetingRescuers implements RescuerSource with a direct scan.
func (c *Coordinator) CompetingRescuers(ctx context.Context, lost basics.Address, exclude ...basics.Address) ([]Rescuer, error) {
	return c.EnumerateCompetingRescuers(ctx, lost, exclude...)
}

func filterRescuers(ctx context.Context, entries []gateway.Entry, lost basics.Address, exclude []basics.Address) ([]Rescuer, error) {
	var out []Rescuer
	for i, e := range entries {
		if i%scanCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !bytes.HasPrefix(e.Key, lost[:]) {
			continue
		}
		entryLost, rescuer, err := gateway.DecodeActiveRecoveryKey(e.Key)
		if err != nil {
			return nil, err
		}
		if entryLost != lost || slices.Contains(exclude, rescuer) {
			continue
		}
		var rec ledgercore.ActiveRecovery
		if err := protocol.Decode(e.Value, &rec); err != nil {
			return nil, fmt.Errorf("decode attempt on %s by %s: %w", lost, rescuer, err)
		}
		a := makeAttempt(lost, rescuer, rec)
		out = append(out, Rescuer{Account: rescuer, Attempt: &a})
	}
	slices.SortFunc(out, func(a, b Rescuer) int {
		return bytes.Compare(a.Account[:], b.Account[:])
	})
	return out, nil
}

// ExcludeRescuers drops the rescuers listed in exclude, keeping the order.
func ExcludeRescuers(rescuers []Rescuer, exclude ...basics.Address) []Rescuer {
	if len(exclude) == 0 {
		return rescuers
	}
	out := make([]Rescuer, 0, len(rescuers))
	for _, r := range rescuers {
		if !slices.Contains(exclude, r.Account) {
			out = append(out, r)
		}
	}
	return out
}
