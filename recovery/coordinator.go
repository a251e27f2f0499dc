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

	"github.com/algorand/go-recovery/config"
	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/logging"
	"github.com/algorand/go-recovery/protocol"
)

// RescuerSource lists the rescuers competing for a lost account.
type RescuerSource interface {
	CompetingRescuers(ctx context.Context, lost basics.Address, exclude ...basics.Address) ([]Rescuer, error)
}

// Options tune a Coordinator.
type Options struct {
	// AddressPrefix is the network prefix account identifiers are rendered with.
	AddressPrefix basics.AddressPrefix

	// BlockTimeMillis is the expected block interval used for time estimates.
	BlockTimeMillis uint64
}

// OptionsFromConfig extracts coordinator options from the local configuration.
func OptionsFromConfig(cfg config.Local) Options {
	return Options{AddressPrefix: cfg.Prefix(), BlockTimeMillis: cfg.BlockTimeMillis}
}

// Coordinator answers recovery questions about account pairs from ledger queries.
// It is safe for concurrent use and holds no state besides its collaborators.
type Coordinator struct {
	gw       gateway.Gateway
	log      logging.Logger
	opts     Options
	rescuers RescuerSource
}

// MakeCoordinator builds a coordinator on top of gw.
func MakeCoordinator(gw gateway.Gateway, log logging.Logger, opts Options) *Coordinator {
	c := &Coordinator{gw: gw, log: log, opts: opts}
	c.rescuers = c
	return c
}

// UseRescuerSource replaces the direct scan used to find competing rescuers,
// typically with a cache in front of EnumerateCompetingRescuers.
func (c *Coordinator) UseRescuerSource(src RescuerSource) {
	c.rescuers = src
}

// Gateway returns the ledger gateway the coordinator queries.
func (c *Coordinator) Gateway() gateway.Gateway {
	return c.gw
}

// Options returns the options the coordinator was built with.
func (c *Coordinator) Options() Options {
	return c.opts
}

// Consts reads the recovery constants published by the ledger.
func (c *Coordinator) Consts(ctx context.Context) (consts config.RecoveryConsts, err error) {
	raw, found, err := c.gw.Query(ctx, gateway.SingletonKey(protocol.RecoveryConstsItem))
	if err != nil {
		return consts, fmt.Errorf("query recovery constants: %w", err)
	}
	if !found {
		return consts, fmt.Errorf("ledger publishes no %s", protocol.RecoveryConstsItem)
	}
	if err := protocol.Decode(raw, &consts); err != nil {
		return consts, fmt.Errorf("decode recovery constants: %w", err)
	}
	return consts, nil
}

// Deposits computes the deposits of the two reserving actions from the ledger constants.
func (c *Coordinator) Deposits(ctx context.Context, friendCount int) (configure, initiate basics.Balance, err error) {
	consts, err := c.Consts(ctx)
	if err != nil {
		return 0, 0, err
	}
	configure, err = ConfigureDeposit(friendCount, consts)
	if err != nil {
		return 0, 0, err
	}
	return configure, InitiateDeposit(consts), nil
}

// Submit sends a prepared call through the gateway. Ledger rejections come back unchanged.
func (c *Coordinator) Submit(ctx context.Context, call gateway.Call, signer gateway.Signer) (gateway.Receipt, error) {
	r, err := c.gw.Submit(ctx, call, signer)
	if err != nil {
		c.log.Infof("%s by %s failed: %v", call.Type, signer.Address(), err)
		return r, err
	}
	c.log.Infof("%s by %s included at round %d (tx %s)", call.Type, signer.Address(), r.Round, r.TxID)
	return r, nil
}
