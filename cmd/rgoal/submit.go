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

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/protocol"
	"github.com/algorand/go-recovery/recovery"
)

var (
	signerSeed  string
	friendIDs   []string
	threshold   uint16
	delayPeriod uint32
	devAmount   uint64
)

func init() {
	submitCmd.PersistentFlags().StringVarP(&signerSeed, "seed", "s", "", "Hex seed of the signing account ($RECOVERY_SEED)")

	submitCmd.AddCommand(configureCmd)
	submitCmd.AddCommand(removeCmd)
	submitCmd.AddCommand(initiateCmd)
	submitCmd.AddCommand(vouchCmd)
	submitCmd.AddCommand(claimCmd)
	submitCmd.AddCommand(closeCmd)
	submitCmd.AddCommand(withdrawCmd)
	submitCmd.AddCommand(devCmd)

	configureCmd.Flags().StringArrayVarP(&friendIDs, "friend", "f", nil, "Friend account, in any address encoding (repeatable)")
	configureCmd.Flags().Uint16VarP(&threshold, "threshold", "n", 0, "Number of vouches needed to claim")
	configureCmd.Flags().Uint32Var(&delayPeriod, "delay", 0, "Blocks between initiation and the earliest claim")
	configureCmd.MarkFlagRequired("friend")
	configureCmd.MarkFlagRequired("threshold")

	initiateCmd.Flags().StringVarP(&lostAddress, "lost", "l", "", "Lost account to recover")
	initiateCmd.MarkFlagRequired("lost")

	vouchCmd.Flags().StringVarP(&lostAddress, "lost", "l", "", "Lost account")
	vouchCmd.Flags().StringVarP(&rescuerAddress, "rescuer", "r", "", "Rescuer vouched for")
	vouchCmd.MarkFlagRequired("lost")
	vouchCmd.MarkFlagRequired("rescuer")

	claimCmd.Flags().StringVarP(&lostAddress, "lost", "l", "", "Lost account")
	claimCmd.MarkFlagRequired("lost")

	closeCmd.Flags().StringVarP(&lostAddress, "lost", "l", "", "Lost account")
	closeCmd.Flags().StringVarP(&rescuerAddress, "rescuer", "r", "", "Rescuer whose attempt is closed")
	closeCmd.MarkFlagRequired("lost")
	closeCmd.MarkFlagRequired("rescuer")

	withdrawCmd.Flags().StringVarP(&lostAddress, "lost", "l", "", "Lost account the signer is proxy for")
	withdrawCmd.MarkFlagRequired("lost")

	devCmd.AddCommand(endowCmd)
	devCmd.AddCommand(bondCmd)
	devCmd.AddCommand(unbondCmd)
	for _, c := range []*cobra.Command{endowCmd, bondCmd, unbondCmd} {
		c.Flags().Uint64VarP(&devAmount, "amount", "a", 0, "Amount in base units")
		c.MarkFlagRequired("amount")
	}
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Sign and submit recovery calls",
	Long:  `Sign and submit recovery calls. Every call is checked against the current ledger state before it is signed; calls that would certainly fail are refused locally.`,
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpFunc()(cmd, args)
	},
}

// observePair resolves the pair and stops on any failed query, since calls
// are only prepared from a complete view.
func observePair(ctx context.Context, coord *recovery.Coordinator, lost, rescuer basics.Address) recovery.View {
	v, err := coord.Observe(ctx, lost, rescuer)
	if err != nil {
		reportErrorf(errorRequestFail, err)
	}
	return v
}

func submitCall(ctx context.Context, coord *recovery.Coordinator, what string, call gateway.Call, signer gateway.Signer) {
	receipt, err := coord.Submit(ctx, call, signer)
	if err != nil {
		reportErrorln(describeSubmitError(what, err))
	}
	reportInfof(infoSubmitted, what, renderAddress(signer.Address()), receipt.Round, receipt.Fee, receipt.TxID)
}

// prepareAndSubmit runs one of the generic recovery actions for the pair.
func prepareAndSubmit(action recovery.Action, lost, rescuer basics.Address) {
	signer := ensureSigner(signerSeed)
	coord := ensureCoordinator()
	ctx, cancel := requestContext()
	defer cancel()

	v := observePair(ctx, coord, lost, rescuer)
	var snap recovery.BalanceSnapshot
	if action == recovery.ActionWithdraw {
		var err error
		snap, err = coord.FetchBalanceSnapshot(ctx, lost)
		if err != nil {
			reportErrorf(errorRequestFail, err)
		}
		if snap.Staking != nil && len(snap.Staking.Unlocking) > 0 {
			reportInfof(infoRedeemingSpans, len(snap.Staking.Unlocking), renderAddress(lost))
		}
	}
	call, err := recovery.Prepare(action, v, signer.Address(), snap)
	if err != nil {
		reportErrorln(describeSubmitError(string(action), err))
	}
	submitCall(ctx, coord, string(action), call, signer)
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Make the signing account recoverable by a set of friends",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		signer := ensureSigner(signerSeed)
		coord := ensureCoordinator()
		ctx, cancel := requestContext()
		defer cancel()

		friends, err := recovery.NormalizeFriends(friendIDs)
		if err != nil {
			reportErrorln(describeSubmitError(string(recovery.ActionConfigure), err))
		}
		if len(friends) != len(friendIDs) {
			reportWarnf(warnMergedFriends, len(friendIDs), len(friends))
		}
		if int(threshold) > len(friends) {
			reportErrorf(errorTooManyThreshold, threshold, len(friends))
		}
		consts, err := coord.Consts(ctx)
		if err != nil {
			reportErrorf(errorRequestFail, err)
		}

		owner := signer.Address()
		v := observePair(ctx, coord, owner, basics.Address{})
		call, err := recovery.PrepareConfigure(v, owner, friends, threshold, basics.Round(delayPeriod), consts)
		if err != nil {
			reportErrorln(describeSubmitError(string(recovery.ActionConfigure), err))
		}
		if dep, err := recovery.ConfigureDeposit(len(friends), consts); err == nil {
			reportInfof(infoConfigureDeposit, dep)
		}
		submitCall(ctx, coord, string(recovery.ActionConfigure), call, signer)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Drop the recovery configuration of the signing account",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		owner := ensureSigner(signerSeed).Address()
		prepareAndSubmit(recovery.ActionRemoveRecovery, owner, basics.Address{})
	},
}

var initiateCmd = &cobra.Command{
	Use:   "initiate",
	Short: "Open a recovery attempt on a lost account, with the signer as rescuer",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		lost := requireAddressFlag("lost", lostAddress)
		rescuer := ensureSigner(signerSeed).Address()
		ctx, cancel := requestContext()
		consts, err := ensureCoordinator().Consts(ctx)
		cancel()
		if err == nil {
			reportInfof(infoInitiateDeposit, recovery.InitiateDeposit(consts))
		}
		prepareAndSubmit(recovery.ActionInitiate, lost, rescuer)
	},
}

var vouchCmd = &cobra.Command{
	Use:   "vouch",
	Short: "Vouch, as a friend of the lost account, for a rescuer's attempt",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		lost := requireAddressFlag("lost", lostAddress)
		rescuer := requireAddressFlag("rescuer", rescuerAddress)
		prepareAndSubmit(recovery.ActionVouch, lost, rescuer)
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim a lost account once enough friends vouched and the delay elapsed",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		lost := requireAddressFlag("lost", lostAddress)
		prepareAndSubmit(recovery.ActionClaim, lost, ensureSigner(signerSeed).Address())
	},
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close a rescuer's attempt and slash its deposit",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		lost := requireAddressFlag("lost", lostAddress)
		rescuer := requireAddressFlag("rescuer", rescuerAddress)
		prepareAndSubmit(recovery.ActionClose, lost, rescuer)
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Move everything withdrawable out of a recovered account",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		lost := requireAddressFlag("lost", lostAddress)
		prepareAndSubmit(recovery.ActionWithdraw, lost, ensureSigner(signerSeed).Address())
	},
}

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Calls only accepted by the development ledger",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpFunc()(cmd, args)
	},
}

func submitDevCall(what string, typ protocol.CallType) {
	signer := ensureSigner(signerSeed)
	coord := ensureCoordinator()
	ctx, cancel := requestContext()
	defer cancel()
	submitCall(ctx, coord, what, gateway.Call{Type: typ, Amount: basics.Balance(devAmount)}, signer)
}

var endowCmd = &cobra.Command{
	Use:   "endow",
	Short: "Credit the signing account",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		submitDevCall("endow", protocol.EndowCall)
	},
}

var bondCmd = &cobra.Command{
	Use:   "bond",
	Short: "Bond part of the signing account's free balance",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		submitDevCall("bond", protocol.BondCall)
	},
}

var unbondCmd = &cobra.Command{
	Use:   "unbond",
	Short: "Start unbonding part of the signing account's active stake",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		submitDevCall("unbond", protocol.UnbondCall)
	},
}
