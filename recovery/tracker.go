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

// TrackAttempt fetches the attempt of rescuer against lost.
func (c *Coordinator) TrackAttempt(ctx context.Context, lost, rescuer basics.Address) (AttemptResult, error) {
	raw, found, err := c.gw.Query(ctx, gateway.ActiveRecoveryKey(lost, rescuer))
	if err != nil {
		return AttemptResult{}, fmt.Errorf("track attempt on %s by %s: %w", lost, rescuer, err)
	}
	if !found {
		return NoAttempt(), nil
	}
	var rec ledgercore.ActiveRecovery
	if err := protocol.Decode(raw, &rec); err != nil {
		return AttemptResult{}, fmt.Errorf("decode attempt on %s by %s: %w", lost, rescuer, err)
	}
	return HasAttempt(makeAttempt(lost, rescuer, rec)), nil
}

// IsProxy reports whether rescuer holds the proxy grant of lost.
func (c *Coordinator) IsProxy(ctx context.Context, lost, rescuer basics.Address) (ProxyResult, error) {
	proxied, found, err := c.ProxiedAccount(ctx, rescuer)
	if err != nil {
		return ProxyPending, err
	}
	if found && proxied == lost {
		return ProxyYes, nil
	}
	return ProxyNo, nil
}

// ProxiedAccount returns the account rescuer is a proxy of, if any.
func (c *Coordinator) ProxiedAccount(ctx context.Context, rescuer basics.Address) (lost basics.Address, found bool, err error) {
	raw, found, err := c.gw.Query(ctx, gateway.AccountKey(protocol.RecoveryProxyItem, rescuer))
	if err != nil {
		return lost, false, fmt.Errorf("query proxy of %s: %w", rescuer, err)
	}
	if !found {
		return lost, false, nil
	}
	if err := protocol.Decode(raw, &lost); err != nil {
		return lost, false, fmt.Errorf("decode proxy of %s: %w", rescuer, err)
	}
	return lost, true, nil
}
