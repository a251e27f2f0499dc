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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/ledger/simledger"
	"github.com/algorand/go-recovery/logging"
	"github.com/algorand/go-recovery/test/partitiontest"
)

type pairFixture struct {
	t       *testing.T
	l       *simledger.Ledger
	c       *Coordinator
	lost    gateway.Signer
	rescuer gateway.Signer
	friends []gateway.Signer
}

func newPairFixture(t *testing.T) *pairFixture {
	l := simledger.OpenTestLedger(t, simledger.TestParams())
	f := &pairFixture{
		t:       t,
		l:       l,
		c:       MakeCoordinator(gateway.WithMetrics(l), logging.TestingLog(t), Options{AddressPrefix: 42, BlockTimeMillis: 6000}),
		lost:    simledger.TestAccount(t, "lost"),
		rescuer: simledger.TestAccount(t, "rescuer"),
	}
	for _, name := range []string{"F1", "F2", "F3"} {
		f.friends = append(f.friends, simledger.TestAccount(t, name))
	}
	for _, s := range append([]gateway.Signer{f.lost, f.rescuer}, f.friends...) {
		f.fund(s)
	}
	return f
}

func (f *pairFixture) fund(s gateway.Signer) {
	require.NoError(f.t, f.l.Fund(s.Address(), 1000))
}

func (f *pairFixture) observe() View {
	v, err := f.c.Observe(context.Background(), f.lost.Address(), f.rescuer.Address())
	require.NoError(f.t, err)
	return v
}

func (f *pairFixture) submit(call gateway.Call, err error, signer gateway.Signer) gateway.Receipt {
	require.NoError(f.t, err)
	r, err := f.c.Submit(context.Background(), call, signer)
	require.NoError(f.t, err)
	return r
}

func (f *pairFixture) configure() {
	var ids []string
	for _, s := range f.friends {
		id, err := s.Address().EncodePrefixed(42)
		require.NoError(f.t, err)
		ids = append(ids, id)
	}
	friends, err := NormalizeFriends(ids)
	require.NoError(f.t, err)
	consts, err := f.c.Consts(context.Background())
	require.NoError(f.t, err)
	call, err := PrepareConfigure(f.observe(), f.lost.Address(), friends, 2, 100, consts)
	f.submit(call, err, f.lost)
}

func requirePrecondition(t *testing.T, err error, reason Reason) {
	var pe *PreconditionError
	require.True(t, errors.As(err, &pe), "expected precondition failure, got %v", err)
	require.Equal(t, reason, pe.Reason)
}

// TestRecoveryScenario walks one recovery from configuration to withdrawal:
// threshold 2, delay 100, three friends, attempt opened at round 1000,
// vouches at 1010 and 1050, claimable from 1100 and claimed at 1101.
func TestRecoveryScenario(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newPairFixture(t)
	lost, rescuer := f.lost.Address(), f.rescuer.Address()

	v := f.observe()
	require.Equal(t, Unconfigured, v.State)
	require.Equal(t, []Action{ActionConfigure}, v.Actions(lost))
	require.Empty(t, v.Actions(rescuer))

	f.configure()
	v = f.observe()
	require.Equal(t, Configured, v.State)
	require.Equal(t, basics.Balance(130), v.Inputs.Config.Config.Deposit)
	require.Equal(t, []Action{ActionInitiate}, v.Actions(rescuer))

	require.NoError(t, f.l.AdvanceTo(1000))
	call, err := PrepareInitiate(v, rescuer)
	f.submit(call, err, f.rescuer)
	v = f.observe()
	require.Equal(t, AttemptOpen, v.State)
	timing, err := v.Timing(f.c.Options().BlockTimeMillis)
	require.NoError(t, err)
	require.Equal(t, &Timing{Round: 1000, ClaimableAt: 1100, Remaining: 100, EstimatedSeconds: 600}, timing)

	require.NoError(t, f.l.AdvanceTo(1010))
	call, err = PrepareVouch(v, f.friends[0].Address())
	f.submit(call, err, f.friends[0])
	v = f.observe()
	require.Equal(t, AttemptOpen, v.State)
	_, err = PrepareClaim(v, rescuer)
	requirePrecondition(t, err, ReasonThreshold)
	_, err = PrepareVouch(v, f.friends[0].Address())
	requirePrecondition(t, err, ReasonAlreadyVouched)

	require.NoError(t, f.l.AdvanceTo(1050))
	call, err = PrepareVouch(v, f.friends[1].Address())
	f.submit(call, err, f.friends[1])
	v = f.observe()
	require.Equal(t, AttemptOpen, v.State)
	_, err = PrepareClaim(v, rescuer)
	requirePrecondition(t, err, ReasonDelayNotElapsed)

	require.NoError(t, f.l.AdvanceTo(1099))
	require.Equal(t, AttemptOpen, f.observe().State)

	require.NoError(t, f.l.AdvanceTo(1100))
	v = f.observe()
	require.Equal(t, Claimable, v.State)
	require.Equal(t, []Action{ActionClaim}, v.Actions(rescuer))
	require.Equal(t, []Action{ActionVouch, ActionClose}, v.Actions(f.friends[2].Address()))
	require.Empty(t, v.Actions(f.friends[0].Address()))
	require.Equal(t, []Action{ActionClose}, v.Actions(lost))

	require.NoError(t, f.l.AdvanceTo(1101))
	call, err = PrepareClaim(v, rescuer)
	r := f.submit(call, err, f.rescuer)
	require.Equal(t, basics.Round(1101), r.Round)

	v = f.observe()
	require.Equal(t, ProxyEstablished, v.State)
	require.Equal(t, []Action{ActionWithdraw}, v.Actions(rescuer))

	amounts, err := f.c.Withdrawable(context.Background(), lost, rescuer)
	require.NoError(t, err)
	require.Equal(t, WithdrawAmounts{TotalWithdrawable: 1050, Available: 870, OwnDeposit: 180}, amounts)

	snap, err := f.c.FetchBalanceSnapshot(context.Background(), lost)
	require.NoError(t, err)
	call, err = PrepareWithdraw(v, rescuer, snap)
	f.submit(call, err, f.rescuer)

	ad, err := f.l.Account(rescuer)
	require.NoError(t, err)
	require.Equal(t, basics.Balance(950+1050), ad.Free)
	v = f.observe()
	require.Equal(t, Unconfigured, v.State)
}

func TestCloseByFriendReturnsDeposit(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newPairFixture(t)
	f.configure()
	call, err := PrepareInitiate(f.observe(), f.rescuer.Address())
	f.submit(call, err, f.rescuer)
	v := f.observe()
	call, err = PrepareVouch(v, f.friends[0].Address())
	f.submit(call, err, f.friends[0])
	v = f.observe()

	_, err = PrepareClose(v, f.friends[0].Address())
	requirePrecondition(t, err, ReasonAlreadyVouched)
	_, err = PrepareClose(v, f.rescuer.Address())
	requirePrecondition(t, err, ReasonOwnAttempt)
	_, err = PrepareClose(v, simledger.TestAccount(t, "stranger").Address())
	requirePrecondition(t, err, ReasonNotFriend)

	closer := f.friends[2]
	call, err = PrepareClose(v, closer.Address())
	f.submit(call, err, closer)

	ad, err := f.l.Account(closer.Address())
	require.NoError(t, err)
	require.Equal(t, basics.Balance(1050), ad.Free)
	require.Equal(t, Configured, f.observe().State)
}

// TestCloseByOwnerReturnsDeposit has the lost account close an attempt
// opened at round 1000 at round 1050: the recovery deposit goes to it and the
// pair is configured again.
func TestCloseByOwnerReturnsDeposit(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newPairFixture(t)
	lost := f.lost.Address()
	f.configure()
	require.NoError(t, f.l.AdvanceTo(1000))
	call, err := PrepareInitiate(f.observe(), f.rescuer.Address())
	f.submit(call, err, f.rescuer)

	require.NoError(t, f.l.AdvanceTo(1050))
	v := f.observe()
	require.Equal(t, AttemptOpen, v.State)
	require.Equal(t, []Action{ActionClose}, v.Actions(lost))

	before, err := f.l.Account(lost)
	require.NoError(t, err)
	call, err = PrepareClose(v, lost)
	r := f.submit(call, err, f.lost)
	require.Equal(t, basics.Round(1050), r.Round)

	after, err := f.l.Account(lost)
	require.NoError(t, err)
	require.Equal(t, before.Free+50, after.Free)
	rescuer, err := f.l.Account(f.rescuer.Address())
	require.NoError(t, err)
	require.Equal(t, basics.Balance(950), rescuer.Free)

	v = f.observe()
	require.Equal(t, Configured, v.State)
	require.Equal(t, []Action{ActionInitiate}, v.Actions(f.rescuer.Address()))
}

func TestRescuerFriendCannotCloseOwnAttempt(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newPairFixture(t)
	f.rescuer = f.friends[2]
	rescuer := f.rescuer.Address()
	f.configure()
	call, err := PrepareInitiate(f.observe(), rescuer)
	f.submit(call, err, f.rescuer)

	v := f.observe()
	require.Equal(t, AttemptOpen, v.State)
	require.Equal(t, RoleRescuer|RoleFriend, v.Role(rescuer))
	require.Equal(t, []Action{ActionVouch}, v.Actions(rescuer))
	_, err = PrepareClose(v, rescuer)
	requirePrecondition(t, err, ReasonOwnAttempt)

	// the ledger refuses the call even when it skips the local checks
	_, err = f.c.Submit(context.Background(), gateway.Call{Type: ActionClose.CallType(), Lost: v.Lost, Rescuer: rescuer}, f.rescuer)
	var rejected *gateway.LedgerRejectedError
	require.True(t, errors.As(err, &rejected), "expected a ledger rejection, got %v", err)
	require.Equal(t, gateway.RejectNotAllowed, rejected.Code)

	ad, err := f.l.Account(rescuer)
	require.NoError(t, err)
	require.Equal(t, basics.Balance(950), ad.Free)
	require.Equal(t, AttemptOpen, f.observe().State)
}

func TestEnumerateCompetingRescuers(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newPairFixture(t)
	f.configure()
	lost := f.lost.Address()

	// another recoverable account keeps its own attempts out of the result
	other := simledger.TestAccount(t, "other-lost")
	f.fund(other)
	consts, err := f.c.Consts(context.Background())
	require.NoError(t, err)
	otherView, err := f.c.Observe(context.Background(), other.Address(), f.rescuer.Address())
	require.NoError(t, err)
	call, err := PrepareConfigure(otherView, other.Address(), []basics.Address{f.friends[0].Address()}, 1, 10, consts)
	f.submit(call, err, other)

	var rescuers []gateway.Signer
	for _, name := range []string{"R1", "R2", "R3"} {
		r := simledger.TestAccount(t, name)
		f.fund(r)
		rescuers = append(rescuers, r)
		v, err := f.c.Observe(context.Background(), lost, r.Address())
		require.NoError(t, err)
		call, err := PrepareInitiate(v, r.Address())
		f.submit(call, err, r)
	}
	v, err := f.c.Observe(context.Background(), other.Address(), rescuers[0].Address())
	require.NoError(t, err)
	call, err = PrepareInitiate(v, rescuers[0].Address())
	f.submit(call, err, rescuers[0])

	got, err := f.c.EnumerateCompetingRescuers(context.Background(), lost, rescuers[1].Address())
	require.NoError(t, err)
	want := basics.SortedUnique([]basics.Address{rescuers[0].Address(), rescuers[2].Address()})
	require.Len(t, got, 2)
	for i, r := range got {
		require.Equal(t, want[i], r.Account)
		require.NotNil(t, r.Attempt)
		require.Equal(t, lost, r.Attempt.Lost)
		require.Equal(t, basics.Balance(50), r.Attempt.Deposit)
	}

	all, err := f.c.EnumerateCompetingRescuers(context.Background(), lost)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, got, ExcludeRescuers(all, rescuers[1].Address()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.c.EnumerateCompetingRescuers(ctx, lost)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithdrawableCountsCompetingDeposits(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newPairFixture(t)
	f.configure()
	lost, rescuer := f.lost.Address(), f.rescuer.Address()
	competitor := simledger.TestAccount(t, "competitor")
	f.fund(competitor)

	for _, s := range []gateway.Signer{f.rescuer, competitor} {
		v, err := f.c.Observe(context.Background(), lost, s.Address())
		require.NoError(t, err)
		call, err := PrepareInitiate(v, s.Address())
		f.submit(call, err, s)
	}
	v := f.observe()
	for _, fr := range f.friends[:2] {
		call, err := PrepareVouch(v, fr.Address())
		f.submit(call, err, fr)
	}
	require.NoError(t, f.l.AdvanceRounds(100))
	call, err := PrepareClaim(f.observe(), rescuer)
	f.submit(call, err, f.rescuer)

	amounts, err := f.c.Withdrawable(context.Background(), lost, rescuer)
	require.NoError(t, err)
	require.Equal(t, basics.Balance(50), amounts.OtherRescuerDeposits)
	require.Equal(t, basics.Balance(870+180+50), amounts.TotalWithdrawable)

	snap, err := f.c.FetchBalanceSnapshot(context.Background(), lost)
	require.NoError(t, err)
	call, err = PrepareWithdraw(f.observe(), rescuer, snap)
	f.submit(call, err, f.rescuer)
	ad, err := f.l.Account(rescuer)
	require.NoError(t, err)
	require.Equal(t, 950+amounts.TotalWithdrawable, ad.Free)
}

func TestDepositsFromLedger(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newPairFixture(t)
	configure, initiate, err := f.c.Deposits(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, basics.Balance(130), configure)
	require.Equal(t, basics.Balance(50), initiate)
}

func TestPrepareConfigurePreconditions(t *testing.T) {
	partitiontest.PartitionTest(t)

	f := newPairFixture(t)
	consts := testConsts()
	v := f.observe()
	friends := friendsN(3)
	lost := f.lost.Address()

	_, err := PrepareConfigure(v, f.rescuer.Address(), friends, 2, 10, consts)
	requirePrecondition(t, err, ReasonNotOwner)
	_, err = PrepareConfigure(v, lost, []basics.Address{friends[1], friends[0]}, 1, 10, consts)
	requirePrecondition(t, err, ReasonUnsortedFriends)
	_, err = PrepareConfigure(v, lost, []basics.Address{friends[0], friends[0]}, 1, 10, consts)
	requirePrecondition(t, err, ReasonUnsortedFriends)
	_, err = PrepareConfigure(v, lost, friends, 0, 10, consts)
	requirePrecondition(t, err, ReasonThreshold)
	_, err = PrepareConfigure(v, lost, friends, 4, 10, consts)
	requirePrecondition(t, err, ReasonThreshold)
	_, err = PrepareConfigure(v, lost, friendsN(10), 4, 10, consts)
	requirePrecondition(t, err, ReasonTooManyFriends)

	_, err = NormalizeFriends([]string{"garbage"})
	requirePrecondition(t, err, ReasonBadFriends)

	f.configure()
	_, err = PrepareConfigure(f.observe(), lost, friends, 2, 10, consts)
	requirePrecondition(t, err, ReasonWrongState)

	_, err = PrepareWithdraw(f.observe(), f.rescuer.Address(), BalanceSnapshot{})
	requirePrecondition(t, err, ReasonWrongState)
	_, err = PrepareInitiate(f.observe(), lost)
	requirePrecondition(t, err, ReasonNotRescuer)
	_, err = PrepareRemoveRecovery(f.observe(), f.rescuer.Address())
	requirePrecondition(t, err, ReasonNotOwner)
	call, err := PrepareRemoveRecovery(f.observe(), lost)
	f.submit(call, err, f.lost)
	require.Equal(t, Unconfigured, f.observe().State)
}

func TestPrepareDispatch(t *testing.T) {
	partitiontest.PartitionTest(t)

	v := View{Lost: basics.Address{1}, Rescuer: basics.Address{2}, State: Configured}
	call, err := Prepare(ActionInitiate, v, v.Rescuer, BalanceSnapshot{})
	require.NoError(t, err)
	require.Equal(t, ActionInitiate.CallType(), call.Type)
	require.Equal(t, v.Lost, call.Lost)

	_, err = Prepare(ActionConfigure, v, v.Lost, BalanceSnapshot{})
	require.Error(t, err)
}

func TestPreconditionErrorMessage(t *testing.T) {
	partitiontest.PartitionTest(t)

	err := &PreconditionError{Action: ActionClaim, Reason: ReasonThreshold, Detail: "1 of 2 vouches"}
	require.Equal(t, "cannot claim: threshold: 1 of 2 vouches", err.Error())
	require.Equal(t, "cannot vouch: not-friend", (&PreconditionError{Action: ActionVouch, Reason: ReasonNotFriend}).Error())
}
