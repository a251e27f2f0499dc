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
	"crypto/rand"
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/algorand/go-recovery/ledger/gateway"
)

var accountAddress string

func init() {
	accountCmd.AddCommand(newAccountCmd)
	accountCmd.AddCommand(showAccountCmd)
	accountCmd.AddCommand(balanceCmd)

	showAccountCmd.Flags().StringVarP(&signerSeed, "seed", "s", "", "Hex seed of the account ($RECOVERY_SEED)")

	balanceCmd.Flags().StringVarP(&accountAddress, "address", "a", "", "Account to look up")
	balanceCmd.MarkFlagRequired("address")
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Create accounts and inspect their balances",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpFunc()(cmd, args)
	},
}

func printAccount(signer *gateway.Ed25519Signer, seed []byte) {
	addr := signer.Address()
	if seed != nil {
		reportInfof("Seed:            %s", hex.EncodeToString(seed))
	}
	reportInfof("Address:         %s", renderAddress(addr))
	reportInfof("Checksummed:     %s", addr.String())
	reportInfof("Public key:      0x%s", hex.EncodeToString(addr[:]))
}

var newAccountCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new signing key",
	Long:  `Generate a new signing key. The seed is printed once and not stored anywhere; keep it safe.`,
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		seed := make([]byte, 32)
		if _, err := rand.Read(seed); err != nil {
			reportErrorf(errorGeneratingSeed, err)
		}
		signer, err := gateway.MakeEd25519Signer(seed)
		if err != nil {
			reportErrorf(errorGeneratingSeed, err)
		}
		reportInfoln(infoCreatedNewAccount)
		printAccount(signer, seed)
	},
}

var showAccountCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the addresses of a seed",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		printAccount(ensureSigner(signerSeed), nil)
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the balance and stake of an account",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		addr := requireAddressFlag("address", accountAddress)

		ctx, cancel := requestContext()
		defer cancel()
		snap, err := ensureCoordinator().FetchBalanceSnapshot(ctx, addr)
		if err != nil {
			reportErrorf(errorRequestFail, err)
		}
		acct := snap.Account
		reportInfof("Account:   %s", renderAddress(addr))
		reportInfof("Free:      %s", acct.Free)
		reportInfof("Available: %s", acct.Available())
		reportInfof("Reserved:  %s", acct.Reserved)
		reportInfof("Frozen:    %s", acct.Frozen)
		reportInfof("Nonce:     %d", acct.Nonce)
		if snap.Staking != nil {
			reportInfof("Staked:    %s active of %s", snap.Staking.Active, snap.Staking.Total)
			for _, chunk := range snap.Staking.Unlocking {
				state := "unlocking"
				if chunk.Era <= snap.Era {
					state = "redeemable"
				}
				reportInfof("  %s %s at era %d", chunk.Value, state, chunk.Era)
			}
		}
		reportInfof("Era:       %d", snap.Era)
	},
}
