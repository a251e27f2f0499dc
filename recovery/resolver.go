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

// ResolveConfig fetches the recovery configuration of lost. A missing record
// resolves to NotConfigured; a failed query is returned as an error and never
// mistaken for absence.
func (c *Coordinator) ResolveConfig(ctx context.Context, lost basics.Address) (ConfigResult, error) {
	raw, found, err := c.gw.Query(ctx, gateway.AccountKey(protocol.RecoveryRecoverableItem, lost))
	if err != nil {
		return ConfigResult{}, fmt.Errorf("resolve recovery config of %s: %w", lost, err)
	}
	if !found {
		return NotConfigured(), nil
	}
	var cfg ledgercore.RecoveryConfig
	if err := protocol.Decode(raw, &cfg); err != nil {
		return ConfigResult{}, fmt.Errorf("decode recovery config of %s: %w", lost, err)
	}
	return HasConfig(cfg), nil
}
