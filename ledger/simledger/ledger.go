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

// Package simledger is an in-process development ledger. It implements
// gateway.Gateway with the recovery, proxy, balance and staking rules the
// coordinator observes, and keeps its state in a kvstore.
package simledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/algorand/go-deadlock"
	"github.com/hdevalence/ed25519consensus"

	"github.com/algorand/go-recovery/config"
	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/ledger/ledgercore"
	"github.com/algorand/go-recovery/logging"
	"github.com/algorand/go-recovery/protocol"
	"github.com/algorand/go-recovery/util/kvstore"
	"github.com/algorand/go-recovery/util/timers"
)

// roundKey holds the latest round. It sorts before every storage item.
var roundKey = []byte("\x00round")

var errLedgerClosed = errors.New("simledger: ledger is closed")

// Params are the rules of a development ledger.
type Params struct {
	Consts          config.RecoveryConsts
	EraLength       uint32
	BondingDuration uint32
	Fee             basics.Balance
}

// ParamsFromConfig extracts ledger params from the daemon configuration.
func ParamsFromConfig(cfg config.DevLedgerParams) Params {
	return Params{
		Consts:          cfg.Consts,
		EraLength:       cfg.EraLength,
		BondingDuration: cfg.BondingDuration,
		Fee:             cfg.Fee,
	}
}

// Ledger is a development ledger. Every call executes at the current round;
// rounds only move forward through AdvanceRounds, AdvanceTo or Run.
type Ledger struct {
	mu     deadlock.RWMutex
	db     kvstore.KVStore
	params Params
	round  basics.Round
	log    logging.Logger
	closed bool
}

// Open opens (or creates) a development ledger stored under dbPathPrefix.
// An existing ledger keeps the recovery constants it was created with.
func Open(dbPathPrefix string, inMem bool, params Params, log logging.Logger) (*Ledger, error) {
	if params.EraLength == 0 {
		return nil, errors.New("simledger: EraLength must be positive")
	}
	db, err := kvstore.NewKVStore("pebble", dbPathPrefix, inMem)
	if err != nil {
		return nil, fmt.Errorf("simledger: open store: %w", err)
	}
	l := &Ledger{db: db, params: params, log: log}
	if err := l.init(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) init() error {
	raw, found, err := lookup(l.db, roundKey)
	if err != nil {
		return err
	}
	if found {
		if err := protocol.Decode(raw, &l.round); err != nil {
			return fmt.Errorf("simledger: corrupt round: %w", err)
		}
		consts, found, err := lookup(l.db, dbKey(gateway.SingletonKey(protocol.RecoveryConstsItem)))
		if err != nil {
			return err
		}
		if found {
			if err := protocol.Decode(consts, &l.params.Consts); err != nil {
				return fmt.Errorf("simledger: corrupt consts: %w", err)
			}
		}
		l.log.Infof("simledger: reopened at round %d", l.round)
		return nil
	}

	genesis := makeCallCow(l.db)
	genesis.write(gateway.SingletonKey(protocol.RecoveryConstsItem), &l.params.Consts)
	genesis.write(gateway.SingletonKey(protocol.StakingEraItem), basics.EraIndex(0))
	if err := genesis.commit(); err != nil {
		return err
	}
	l.log.Infof("simledger: created with consts %+v", l.params.Consts)
	return l.db.Set(roundKey, protocol.Encode(l.round))
}

// Close releases the underlying store. Closing twice is a no-op.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}

// Consts returns the recovery constants of this ledger.
func (l *Ledger) Consts() config.RecoveryConsts {
	return l.params.Consts
}

// Latest returns the current round.
func (l *Ledger) Latest() basics.Round {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.round
}

// Era returns the current staking era.
func (l *Ledger) Era() basics.EraIndex {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.eraOf(l.round)
}

func (l *Ledger) eraOf(rnd basics.Round) basics.EraIndex {
	return basics.EraIndex(uint32(rnd) / l.params.EraLength)
}

// AdvanceRounds moves the ledger n rounds forward.
func (l *Ledger) AdvanceRounds(n uint32) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setRoundLocked(l.round.AddSaturate(basics.Round(n)))
}

// AdvanceTo moves the ledger forward to rnd.
func (l *Ledger) AdvanceTo(rnd basics.Round) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rnd < l.round {
		return fmt.Errorf("simledger: cannot rewind from round %d to %d", l.round, rnd)
	}
	return l.setRoundLocked(rnd)
}

func (l *Ledger) setRoundLocked(rnd basics.Round) error {
	if l.closed {
		return errLedgerClosed
	}
	if rnd == l.round {
		return nil
	}
	batch := l.db.NewBatch()
	if err := batch.Set(roundKey, protocol.Encode(rnd)); err != nil {
		batch.Cancel()
		return err
	}
	if era := l.eraOf(rnd); era != l.eraOf(l.round) {
		if err := batch.Set(dbKey(gateway.SingletonKey(protocol.StakingEraItem)), protocol.Encode(era)); err != nil {
			batch.Cancel()
			return err
		}
		l.log.Debugf("simledger: era %d starts at round %d", era, rnd)
	}
	if err := batch.Commit(); err != nil {
		return err
	}
	l.round = rnd
	return nil
}

// Run produces round n of this run at n intervals after clock is zeroed,
// until ctx is done. A run that falls behind catches up one round at a time.
func (l *Ledger) Run(ctx context.Context, clock timers.Clock, interval time.Duration) error {
	clock = clock.Zero()
	for n := time.Duration(1); ; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.TimeoutAt(n * interval):
			if err := l.AdvanceRounds(1); err != nil {
				l.log.Errorf("simledger: advancing round: %v", err)
				return err
			}
		}
	}
}

// Fund credits amount to addr without a call. It is meant for genesis allocations and tests.
func (l *Ledger) Fund(addr basics.Address, amount basics.Balance) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cow := makeCallCow(l.db)
	ad, err := cow.account(addr)
	if err != nil {
		return err
	}
	free, overflowed := basics.OAdd(ad.Free, amount)
	if overflowed {
		return fmt.Errorf("simledger: funding %s overflows", addr)
	}
	ad.Free = free
	cow.putAccount(addr, ad)
	return cow.commit()
}

// Query implements gateway.Gateway.
func (l *Ledger) Query(ctx context.Context, key gateway.StorageKey) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return lookup(l.db, dbKey(key))
}

// QueryBatch implements gateway.Gateway. All keys are read under one lock, so
// the answers describe the same round.
func (l *Ledger) QueryBatch(ctx context.Context, keys []gateway.StorageKey) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([][]byte, len(keys))
	for i, key := range keys {
		v, _, err := lookup(l.db, dbKey(key))
		if err != nil {
			return nil, fmt.Errorf("simledger: query %s: %w", key, err)
		}
		out[i] = v
	}
	return out, nil
}

// QueryAllEntries implements gateway.Gateway.
func (l *Ledger) QueryAllEntries(ctx context.Context, item protocol.StorageItem) ([]gateway.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries, err := scanRange(l.db, itemPrefix(item, nil))
	if err != nil {
		return nil, err
	}
	base := len(item) + 1
	for i := range entries {
		entries[i].Key = entries[i].Key[base:]
	}
	return entries, nil
}

// CurrentRound implements gateway.Gateway.
func (l *Ledger) CurrentRound(ctx context.Context) (basics.Round, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return l.Latest(), nil
}

// Submit implements gateway.Gateway. The call nonce is taken from the signer's account.
func (l *Ledger) Submit(ctx context.Context, call gateway.Call, signer gateway.Signer) (gateway.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return gateway.Receipt{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ad, err := makeCallCow(l.db).account(signer.Address())
	if err != nil {
		return gateway.Receipt{}, err
	}
	call.Nonce = ad.Nonce
	return l.applyLocked(gateway.SignCall(call, signer))
}

// SubmitSigned applies a call signed elsewhere.
func (l *Ledger) SubmitSigned(ctx context.Context, stx gateway.SignedCall) (gateway.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return gateway.Receipt{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applyLocked(stx)
}

func (l *Ledger) applyLocked(stx gateway.SignedCall) (gateway.Receipt, error) {
	call := stx.Call
	if !ed25519consensus.Verify(stx.Signer[:], call.SigningBytes(), stx.Sig) {
		return gateway.Receipt{}, gateway.Reject(call.Type, gateway.RejectBadSignature, "signer %s", stx.Signer)
	}

	cow := makeCallCow(l.db)
	ad, err := cow.account(stx.Signer)
	if err != nil {
		return gateway.Receipt{}, err
	}
	if ad.Nonce != call.Nonce {
		return gateway.Receipt{}, gateway.Reject(call.Type, gateway.RejectStaleNonce, "have %d, account at %d", call.Nonce, ad.Nonce)
	}

	ev := &evaluator{
		cow:    cow,
		call:   call,
		signer: stx.Signer,
		round:  l.round,
		era:    l.eraOf(l.round),
		params: l.params,
	}
	if err := ev.apply(); err != nil {
		l.log.Debugf("simledger: %s from %s rejected at round %d: %v", call.Type, stx.Signer, l.round, err)
		return gateway.Receipt{}, err
	}

	var fee basics.Balance
	if call.Type != protocol.EndowCall {
		fee = l.params.Fee
	}
	ad, err = cow.account(stx.Signer)
	if err != nil {
		return gateway.Receipt{}, err
	}
	if ad.Available() < fee {
		return gateway.Receipt{}, gateway.Reject(call.Type, gateway.RejectInsufficientFunds, "cannot pay fee %d", fee)
	}
	ad.Free -= fee
	ad.Nonce++
	cow.putAccount(stx.Signer, ad)

	if err := cow.commit(); err != nil {
		return gateway.Receipt{}, fmt.Errorf("simledger: commit %s: %w", call.Type, err)
	}
	receipt := gateway.Receipt{Round: l.round, Fee: fee, TxID: stx.ID()}
	l.log.Infof("simledger: applied %s from %s at round %d (tx %s)", call.Type, stx.Signer, l.round, receipt.TxID)
	return receipt, nil
}

// Account returns the balance record of addr.
func (l *Ledger) Account(addr basics.Address) (ledgercore.AccountData, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return makeCallCow(l.db).account(addr)
}
