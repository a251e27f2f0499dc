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

package simledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/ledger/ledgercore"
	"github.com/algorand/go-recovery/logging"
	"github.com/algorand/go-recovery/protocol"
	"github.com/algorand/go-recovery/test/partitiontest"
	"github.com/algorand/go-recovery/util/timers"
)

type fixture struct {
	t       testing.TB
	l       *Ledger
	lost    gateway.Signer
	rescuer gateway.Signer
	friends []gateway.Signer
}

// newFixture funds a lost account, a rescuer and three friends, and has the
// lost account configure recovery with threshold 2 and delay 100.
func newFixture(t testing.TB) *fixture {
	f := &fixture{
		t:       t,
		l:       OpenTestLedger(t, TestParams()),
		lost:    TestAccount(t, "lost"),
		rescuer: TestAccount(t, "rescuer"),
	}
	for _, name := range []string{"F1", "F2", "F3"} {
		f.friends = append(f.friends, TestAccount(t, name))
	}
	for _, s := range append([]gateway.Signer{f.lost, f.rescuer}, f.friends...) {
		require.NoError(t, f.l.Fund(s.Address(), 1000))
	}
	return f
}

func (f *fixture) friendAddrs() []basics.Address {
	var out []basics.Address
	for _, s := range f.friends {
		out = append(out, s.Address())
	}
	return basics.SortedUnique(out)
}

func (f *fixture) submit(call gateway.Call, signer gateway.Signer) (gateway.Receipt, error) {
	return f.l.Submit(context.Background(), call, signer)
}

func (f *fixture) mustSubmit(call gateway.Call, signer gateway.Signer) gateway.Receipt {
	r, err := f.submit(call, signer)
	require.NoError(f.t, err)
	return r
}

func (f *fixture) configure() {
	f.mustSubmit(gateway.Call{Type: protocol.ConfigureCall, Friends: f.friendAddrs(), Threshold: 2, DelayPeriod: 100}, f.lost)
}

func (f *fixture) attempt() (a ledgercore.ActiveRecovery, found bool) {
	raw, found, err := f.l.Query(context.Background(), gateway.ActiveRecoveryKey(f.lost.Address(), f.rescuer.Address()))
	require.NoError(f.t, err)
	if found {
		require.NoError(f.t, protocol.Decode(raw, &a))
	}
	return
}

func requireRejected(t testing.TB, err error, code gateway.RejectCode) {
	var rejected *gateway.LedgerRejectedError
	require.True(t, errors.As(err, &rejected), "expected rejection, got %v", err)
	require.Equal(t, code, rejected.Code)
}

func TestConfigureReservesDeposit(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newFixture(t)
	f.configure()

	ad, err := f.l.Account(f.lost.Address())
	require.NoError(t, err)
	require.Equal(t, basics.Balance(130), ad.Reserved)
	require.Equal(t, basics.Balance(870), ad.Free)
	require.Equal(t, uint64(1), ad.Nonce)

	raw, found, err := f.l.Query(context.Background(), gateway.AccountKey(protocol.RecoveryRecoverableItem, f.lost.Address()))
	require.NoError(t, err)
	require.True(t, found)
	var cfg ledgercore.RecoveryConfig
	require.NoError(t, protocol.Decode(raw, &cfg))
	require.Equal(t, uint16(2), cfg.Threshold)
	require.Equal(t, basics.Round(100), cfg.DelayPeriod)
	require.Equal(t, f.friendAddrs(), cfg.Friends)

	_, err = f.submit(gateway.Call{Type: protocol.ConfigureCall, Friends: f.friendAddrs(), Threshold: 1}, f.lost)
	requireRejected(t, err, gateway.RejectAlreadyRecoverable)
}

func TestConfigureValidation(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newFixture(t)
	friends := f.friendAddrs()
	unsorted := []basics.Address{friends[2], friends[0]}

	_, err := f.submit(gateway.Call{Type: protocol.ConfigureCall, Friends: friends, Threshold: 0}, f.lost)
	requireRejected(t, err, gateway.RejectZeroThreshold)
	_, err = f.submit(gateway.Call{Type: protocol.ConfigureCall, Friends: friends, Threshold: 4}, f.lost)
	requireRejected(t, err, gateway.RejectThreshold)
	_, err = f.submit(gateway.Call{Type: protocol.ConfigureCall, Friends: unsorted, Threshold: 1}, f.lost)
	requireRejected(t, err, gateway.RejectNotSorted)
	_, err = f.submit(gateway.Call{Type: protocol.ConfigureCall, Friends: make([]basics.Address, 10), Threshold: 1}, f.lost)
	requireRejected(t, err, gateway.RejectMaxFriends)

	poor := TestAccount(t, "poor")
	require.NoError(t, f.l.Fund(poor.Address(), 100))
	_, err = f.submit(gateway.Call{Type: protocol.ConfigureCall, Friends: friends, Threshold: 1}, poor)
	requireRejected(t, err, gateway.RejectInsufficientFunds)

	// rejected calls leave no trace, nonce included
	ad, err := f.l.Account(f.lost.Address())
	require.NoError(t, err)
	require.Equal(t, ledgercore.AccountData{Free: 1000}, ad)
}

func TestRecoveryLifecycle(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newFixture(t)
	f.configure()
	lost, rescuer := f.lost.Address(), f.rescuer.Address()

	require.NoError(t, f.l.AdvanceTo(1000))
	r := f.mustSubmit(gateway.Call{Type: protocol.InitiateCall, Lost: lost}, f.rescuer)
	require.Equal(t, basics.Round(1000), r.Round)
	a, found := f.attempt()
	require.True(t, found)
	require.Equal(t, basics.Round(1000), a.Created)
	require.Equal(t, basics.Balance(50), a.Deposit)

	_, err := f.submit(gateway.Call{Type: protocol.InitiateCall, Lost: lost}, f.rescuer)
	requireRejected(t, err, gateway.RejectAlreadyStarted)

	require.NoError(t, f.l.AdvanceTo(1010))
	f.mustSubmit(gateway.Call{Type: protocol.VouchCall, Lost: lost, Rescuer: rescuer}, f.friends[0])
	_, err = f.submit(gateway.Call{Type: protocol.VouchCall, Lost: lost, Rescuer: rescuer}, f.friends[0])
	requireRejected(t, err, gateway.RejectAlreadyVouched)
	_, err = f.submit(gateway.Call{Type: protocol.VouchCall, Lost: lost, Rescuer: rescuer}, f.rescuer)
	requireRejected(t, err, gateway.RejectNotFriend)

	require.NoError(t, f.l.AdvanceTo(1050))
	f.mustSubmit(gateway.Call{Type: protocol.VouchCall, Lost: lost, Rescuer: rescuer}, f.friends[1])

	require.NoError(t, f.l.AdvanceTo(1099))
	_, err = f.submit(gateway.Call{Type: protocol.ClaimCall, Lost: lost}, f.rescuer)
	requireRejected(t, err, gateway.RejectDelayPeriod)

	require.NoError(t, f.l.AdvanceTo(1101))
	f.mustSubmit(gateway.Call{Type: protocol.ClaimCall, Lost: lost}, f.rescuer)
	raw, found, err := f.l.Query(context.Background(), gateway.AccountKey(protocol.RecoveryProxyItem, rescuer))
	require.NoError(t, err)
	require.True(t, found)
	var proxied basics.Address
	require.NoError(t, protocol.Decode(raw, &proxied))
	require.Equal(t, lost, proxied)

	_, err = f.submit(gateway.Call{Type: protocol.ClaimCall, Lost: lost}, f.rescuer)
	requireRejected(t, err, gateway.RejectAlreadyProxy)

	_, err = f.submit(gateway.Call{Type: protocol.RemoveRecoveryCall}, f.lost)
	requireRejected(t, err, gateway.RejectStillActive)
}

func TestClaimNeedsThreshold(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newFixture(t)
	f.configure()
	f.mustSubmit(gateway.Call{Type: protocol.InitiateCall, Lost: f.lost.Address()}, f.rescuer)
	f.mustSubmit(gateway.Call{Type: protocol.VouchCall, Lost: f.lost.Address(), Rescuer: f.rescuer.Address()}, f.friends[2])
	require.NoError(t, f.l.AdvanceRounds(500))
	_, err := f.submit(gateway.Call{Type: protocol.ClaimCall, Lost: f.lost.Address()}, f.rescuer)
	requireRejected(t, err, gateway.RejectThreshold)
}

func TestRescuerFriendCannotClose(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newFixture(t)
	f.rescuer = f.friends[2]
	f.configure()
	lost, rescuer := f.lost.Address(), f.rescuer.Address()
	f.mustSubmit(gateway.Call{Type: protocol.InitiateCall, Lost: lost}, f.rescuer)

	_, err := f.submit(gateway.Call{Type: protocol.CloseRecoveryCall, Lost: lost, Rescuer: rescuer}, f.rescuer)
	requireRejected(t, err, gateway.RejectNotAllowed)

	ad, err := f.l.Account(rescuer)
	require.NoError(t, err)
	require.Equal(t, basics.Balance(50), ad.Reserved)
	require.Equal(t, basics.Balance(950), ad.Free)
	_, found := f.attempt()
	require.True(t, found)

	// another friend that has not vouched still can
	f.mustSubmit(gateway.Call{Type: protocol.CloseRecoveryCall, Lost: lost, Rescuer: rescuer}, f.friends[0])
	_, found = f.attempt()
	require.False(t, found)
}

func TestCloseReturnsDepositToCloser(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newFixture(t)
	f.configure()
	lost, rescuer := f.lost.Address(), f.rescuer.Address()
	f.mustSubmit(gateway.Call{Type: protocol.InitiateCall, Lost: lost}, f.rescuer)
	f.mustSubmit(gateway.Call{Type: protocol.VouchCall, Lost: lost, Rescuer: rescuer}, f.friends[0])

	// a friend that vouched takes part in the attempt and cannot close it
	_, err := f.submit(gateway.Call{Type: protocol.CloseRecoveryCall, Lost: lost, Rescuer: rescuer}, f.friends[0])
	requireRejected(t, err, gateway.RejectNotAllowed)
	_, err = f.submit(gateway.Call{Type: protocol.CloseRecoveryCall, Lost: lost, Rescuer: rescuer}, f.rescuer)
	requireRejected(t, err, gateway.RejectNotAllowed)

	closer := f.friends[1]
	before, err := f.l.Account(closer.Address())
	require.NoError(t, err)
	f.mustSubmit(gateway.Call{Type: protocol.CloseRecoveryCall, Lost: lost, Rescuer: rescuer}, closer)
	after, err := f.l.Account(closer.Address())
	require.NoError(t, err)
	require.Equal(t, before.Free+50, after.Free)

	resc, err := f.l.Account(rescuer)
	require.NoError(t, err)
	require.Zero(t, resc.Reserved)
	require.Equal(t, basics.Balance(950), resc.Free)
	_, found := f.attempt()
	require.False(t, found)

	// with no attempt left the owner can remove the configuration and gets the deposit back
	f.mustSubmit(gateway.Call{Type: protocol.RemoveRecoveryCall}, f.lost)
	ad, err := f.l.Account(lost)
	require.NoError(t, err)
	require.Equal(t, ledgercore.AccountData{Free: 1000, Nonce: 2}, ad)
}

func TestWithdrawAsRecovered(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newFixture(t)
	lost, rescuer := f.lost.Address(), f.rescuer.Address()
	other := TestAccount(t, "other")
	require.NoError(t, f.l.Fund(other.Address(), 1000))

	// 400 bonded, 100 of which unbonded in era 0 and redeemable from era 28
	f.mustSubmit(gateway.Call{Type: protocol.BondCall, Amount: 400}, f.lost)
	f.mustSubmit(gateway.Call{Type: protocol.UnbondCall, Amount: 100}, f.lost)
	f.configure()
	f.mustSubmit(gateway.Call{Type: protocol.InitiateCall, Lost: lost}, f.rescuer)
	f.mustSubmit(gateway.Call{Type: protocol.InitiateCall, Lost: lost}, other)
	for _, fr := range f.friends[:2] {
		f.mustSubmit(gateway.Call{Type: protocol.VouchCall, Lost: lost, Rescuer: rescuer}, fr)
	}
	require.NoError(t, f.l.AdvanceRounds(28*600))
	f.mustSubmit(gateway.Call{Type: protocol.ClaimCall, Lost: lost}, f.rescuer)

	_, err := f.submit(gateway.Call{Type: protocol.WithdrawCall, Lost: lost, SpanCount: 0}, f.rescuer)
	requireRejected(t, err, gateway.RejectSpanCount)
	_, err = f.submit(gateway.Call{Type: protocol.WithdrawCall, Lost: lost, SpanCount: 1}, other)
	requireRejected(t, err, gateway.RejectNotAllowed)

	// available 1000-400-130 = 470, redeemable 100, config deposit 130, attempts 50+50
	f.mustSubmit(gateway.Call{Type: protocol.WithdrawCall, Lost: lost, SpanCount: 1}, f.rescuer)
	resc, err := f.l.Account(rescuer)
	require.NoError(t, err)
	require.Equal(t, basics.Balance(950+470+100+130+100), resc.Free)
	require.Zero(t, resc.Reserved)

	ad, err := f.l.Account(lost)
	require.NoError(t, err)
	require.Equal(t, basics.Balance(300), ad.Free)
	require.Equal(t, basics.Balance(300), ad.Frozen)

	entries, err := f.l.QueryAllEntries(context.Background(), protocol.RecoveryActiveItem)
	require.NoError(t, err)
	require.Empty(t, entries)
	_, found, err := f.l.Query(context.Background(), gateway.AccountKey(protocol.RecoveryRecoverableItem, lost))
	require.NoError(t, err)
	require.False(t, found)

	// the remaining stake is unbonding, so the proxy grant survives until it is swept
	_, found, err = f.l.Query(context.Background(), gateway.AccountKey(protocol.RecoveryProxyItem, rescuer))
	require.NoError(t, err)
	require.True(t, found)

	require.NoError(t, f.l.AdvanceRounds(28*600))
	f.mustSubmit(gateway.Call{Type: protocol.WithdrawCall, Lost: lost, SpanCount: 1}, f.rescuer)
	ad, err = f.l.Account(lost)
	require.NoError(t, err)
	require.Zero(t, ad.Free)
	_, found, err = f.l.Query(context.Background(), gateway.AccountKey(protocol.RecoveryProxyItem, rescuer))
	require.NoError(t, err)
	require.False(t, found)
}

func TestNonceAndSignature(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newFixture(t)
	call := gateway.Call{Type: protocol.EndowCall, Amount: 5, Nonce: 0}
	stx := gateway.SignCall(call, f.lost)
	_, err := f.l.SubmitSigned(context.Background(), stx)
	require.NoError(t, err)

	_, err = f.l.SubmitSigned(context.Background(), stx)
	requireRejected(t, err, gateway.RejectStaleNonce)

	forged := gateway.SignCall(gateway.Call{Type: protocol.EndowCall, Amount: 5, Nonce: 1}, f.lost)
	forged.Signer = f.rescuer.Address()
	_, err = f.l.SubmitSigned(context.Background(), forged)
	requireRejected(t, err, gateway.RejectBadSignature)

	_, err = f.submit(gateway.Call{Type: "???"}, f.lost)
	requireRejected(t, err, gateway.RejectUnknownCall)
}

func TestFeesAndEras(t *testing.T) {
	partitiontest.PartitionTest(t)

	params := TestParams()
	params.Fee = 3
	l := OpenTestLedger(t, params)
	s := TestAccount(t, "payer")
	require.NoError(t, l.Fund(s.Address(), 10))

	r, err := l.Submit(context.Background(), gateway.Call{Type: protocol.BondCall, Amount: 4}, s)
	require.NoError(t, err)
	require.Equal(t, basics.Balance(3), r.Fee)
	ad, err := l.Account(s.Address())
	require.NoError(t, err)
	require.Equal(t, basics.Balance(7), ad.Free)
	require.Equal(t, basics.Balance(4), ad.Frozen)

	_, err = l.Submit(context.Background(), gateway.Call{Type: protocol.UnbondCall, Amount: 4}, s)
	require.NoError(t, err)
	_, err = l.Submit(context.Background(), gateway.Call{Type: protocol.UnbondCall, Amount: 4}, s)
	requireRejected(t, err, gateway.RejectInsufficientFunds)

	require.Equal(t, basics.EraIndex(0), l.Era())
	require.NoError(t, l.AdvanceTo(1234))
	require.Equal(t, basics.EraIndex(2), l.Era())
	raw, found, err := l.Query(context.Background(), gateway.SingletonKey(protocol.StakingEraItem))
	require.NoError(t, err)
	require.True(t, found)
	var era basics.EraIndex
	require.NoError(t, protocol.Decode(raw, &era))
	require.Equal(t, basics.EraIndex(2), era)
	require.Error(t, l.AdvanceTo(10))
}

func TestQueryBatchAndCancellation(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newFixture(t)
	vals, err := f.l.QueryBatch(context.Background(), []gateway.StorageKey{
		gateway.AccountKey(protocol.SystemAccountItem, f.lost.Address()),
		gateway.AccountKey(protocol.SystemAccountItem, basics.Address{}),
		gateway.SingletonKey(protocol.RecoveryConstsItem),
	})
	require.NoError(t, err)
	require.Len(t, vals, 3)
	require.NotNil(t, vals[0])
	require.Nil(t, vals[1])
	require.NotNil(t, vals[2])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.l.QueryAllEntries(ctx, protocol.RecoveryActiveItem)
	require.ErrorIs(t, err, context.Canceled)
	_, err = f.l.Submit(ctx, gateway.Call{Type: protocol.EndowCall}, f.lost)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReopenKeepsState(t *testing.T) {
	partitiontest.PartitionTest(t)

	dir := filepath.Join(t.TempDir(), "ledger")
	params := TestParams()
	l, err := Open(dir, false, params, logging.TestingLog(t))
	require.NoError(t, err)
	require.NoError(t, l.AdvanceTo(42))
	s := TestAccount(t, "saved")
	require.NoError(t, l.Fund(s.Address(), 7))
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	// constants are fixed at creation
	params.Consts.RecoveryDeposit = 999
	l, err = Open(dir, false, params, logging.TestingLog(t))
	require.NoError(t, err)
	defer l.Close()
	require.Equal(t, basics.Round(42), l.Latest())
	require.Equal(t, basics.Balance(50), l.Consts().RecoveryDeposit)
	ad, err := l.Account(s.Address())
	require.NoError(t, err)
	require.Equal(t, basics.Balance(7), ad.Free)

	_, err = Open(filepath.Join(t.TempDir(), "bad"), true, Params{}, logging.TestingLog(t))
	require.Error(t, err)
}

// TestVouchingIsMonotonic drives random vouches and round advances, and checks
// that the vouched set only ever grows and stays a sorted subset of the friends.
func TestVouchingIsMonotonic(t *testing.T) {
	partitiontest.PartitionTest(t)

	rapid.Check(t, func(t1 *rapid.T) {
		f := newFixture(t)
		defer f.l.Close()
		f.configure()
		lost, rescuer := f.lost.Address(), f.rescuer.Address()
		f.mustSubmit(gateway.Call{Type: protocol.InitiateCall, Lost: lost}, f.rescuer)

		voters := append([]gateway.Signer{f.rescuer, f.lost}, f.friends...)
		friends := f.friendAddrs()
		prev := 0
		steps := rapid.IntRange(1, 12).Draw(t1, "steps")
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(t1, "advance") {
				require.NoError(t1, f.l.AdvanceRounds(uint32(rapid.IntRange(1, 80).Draw(t1, "rounds"))))
			}
			voter := voters[rapid.IntRange(0, len(voters)-1).Draw(t1, "voter")]
			_, err := f.submit(gateway.Call{Type: protocol.VouchCall, Lost: lost, Rescuer: rescuer}, voter)
			if err != nil {
				var rejected *gateway.LedgerRejectedError
				require.True(t1, errors.As(err, &rejected))
			}

			a, found := f.attempt()
			require.True(t1, found)
			require.GreaterOrEqual(t1, len(a.Vouched), prev)
			require.True(t1, basics.IsStrictlySorted(a.Vouched))
			for _, v := range a.Vouched {
				_, ok := basics.SearchSorted(friends, v)
				require.True(t1, ok)
			}
			prev = len(a.Vouched)
		}
	})
}

func TestRunFollowsClock(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := OpenTestLedger(t, TestParams())
	clock := timers.MakeManualClock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	start, err := l.CurrentRound(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, clock, time.Second) }()
	require.Eventually(t, func() bool { return clock.Pending() == 1 }, 5*time.Second, time.Millisecond)

	clock.Advance(3 * time.Second)
	require.Eventually(t, func() bool {
		rnd, err := l.CurrentRound(ctx)
		return err == nil && rnd == start+3
	}, 5*time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return clock.Pending() == 1 }, 5*time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	rnd, err := l.CurrentRound(context.Background())
	require.NoError(t, err)
	require.Equal(t, start+3, rnd)
}
