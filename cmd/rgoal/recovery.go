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
	"github.com/spf13/cobra"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/recovery"
)

var (
	lostAddress     string
	rescuerAddress  string
	actingAddress   string
	excludeAccounts []string
	friendCount     int
)

func init() {
	statusCmd.Flags().StringVarP(&lostAddress, "lost", "l", "", "Lost account")
	statusCmd.Flags().StringVarP(&rescuerAddress, "rescuer", "r", "", "Rescuer account")
	statusCmd.Flags().StringVarP(&actingAddress, "acting", "a", "", "Account whose role and allowed actions are listed")
	statusCmd.MarkFlagRequired("lost")
	statusCmd.MarkFlagRequired("rescuer")

	configCmd.Flags().StringVarP(&lostAddress, "lost", "l", "", "Lost account")
	configCmd.MarkFlagRequired("lost")

	rescuersCmd.Flags().StringVarP(&lostAddress, "lost", "l", "", "Lost account")
	rescuersCmd.Flags().StringArrayVarP(&excludeAccounts, "exclude", "x", nil, "Rescuer left out of the listing (repeatable)")
	rescuersCmd.MarkFlagRequired("lost")

	depositCmd.Flags().IntVarP(&friendCount, "friends", "f", 0, "Number of friends of the configuration")

	withdrawableCmd.Flags().StringVarP(&lostAddress, "lost", "l", "", "Lost account")
	withdrawableCmd.Flags().StringVarP(&rescuerAddress, "rescuer", "r", "", "Rescuer acting as proxy")
	withdrawableCmd.MarkFlagRequired("lost")
	withdrawableCmd.MarkFlagRequired("rescuer")

	proxyCmd.Flags().StringVarP(&rescuerAddress, "rescuer", "r", "", "Rescuer account")
	proxyCmd.MarkFlagRequired("rescuer")

	ledgerCmd.AddCommand(ledgerStatusCmd)
	ledgerCmd.AddCommand(healthCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the recovery state of a lost account and one rescuer",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		lost := requireAddressFlag("lost", lostAddress)
		rescuer := requireAddressFlag("rescuer", rescuerAddress)
		var acting basics.Address
		if actingAddress != "" {
			acting = parseAddressArg(actingAddress)
		}

		ctx, cancel := requestContext()
		defer cancel()
		resp, err := ensureRestClient().State(ctx, lost, rescuer, acting)
		if err != nil {
			reportErrorf(errorRequestFail, err)
		}

		in := resp.View.Inputs
		reportInfof("Lost:          %s", renderAddress(lost))
		reportInfof("Rescuer:       %s", renderAddress(rescuer))
		reportInfof("State:         %s", colorState(resp.View.State))
		if in.HasRound {
			reportInfof("Round:         %d", in.Round)
		}
		switch in.Config.Status {
		case recovery.Present:
			for _, line := range formatConfig(in.Config.Config, renderAddress) {
				reportInfoln(line)
			}
		case recovery.Absent:
			reportInfof(infoNotConfigured, renderAddress(lost))
		}
		switch in.Attempt.Status {
		case recovery.Present:
			a := in.Attempt.Attempt
			reportInfof("Attempt:       opened in round %d, deposit %s, %s", a.Created, a.Deposit, formatVouches(a, in.Config.Config))
			reportInfof("Timing:        %s", formatTiming(resp.Timing))
		case recovery.Absent:
			reportInfoln(infoNoAttempt)
		}
		reportInfof("Proxy:         %s", in.Proxy)

		if resp.Acting != nil {
			reportInfof("Acting:        %s (%s)", renderAddress(*resp.Acting), resp.Role)
			if len(resp.Actions) == 0 {
				reportInfof(infoNoActions, renderAddress(*resp.Acting))
			} else {
				reportInfof("Actions:       %s", formatActions(resp.Actions))
			}
		}
		if resp.Incomplete != "" {
			reportWarnf(infoPartialView, resp.Incomplete)
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the recovery configuration of an account",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		lost := requireAddressFlag("lost", lostAddress)

		ctx, cancel := requestContext()
		defer cancel()
		resp, err := ensureRestClient().Config(ctx, lost)
		if err != nil {
			reportErrorf(errorRequestFail, err)
		}
		if !resp.Config.IsConfigured() {
			reportInfof(infoNotConfigured, renderAddress(lost))
			return
		}
		for _, line := range formatConfig(resp.Config.Config, renderAddress) {
			reportInfoln(line)
		}
	},
}

var rescuersCmd = &cobra.Command{
	Use:   "rescuers",
	Short: "List the rescuers competing to recover an account",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		lost := requireAddressFlag("lost", lostAddress)
		exclude := make([]basics.Address, 0, len(excludeAccounts))
		for _, x := range excludeAccounts {
			exclude = append(exclude, parseAddressArg(x))
		}

		ctx, cancel := requestContext()
		defer cancel()
		resp, err := ensureRestClient().Rescuers(ctx, lost, exclude...)
		if err != nil {
			reportErrorf(errorRequestFail, err)
		}
		if len(resp.Rescuers) == 0 {
			reportInfoln(infoNoRescuers)
			return
		}
		for _, r := range resp.Rescuers {
			if r.Attempt == nil {
				reportInfoln(renderAddress(r.Account))
				continue
			}
			reportInfof("%s  round %d  deposit %s  %d vouches", renderAddress(r.Account), r.Attempt.Created, r.Attempt.Deposit, len(r.Attempt.Vouched))
		}
	},
}

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Show the deposits reserved by configuring and initiating recovery",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		if friendCount < 0 {
			reportErrorf(errorNegativeFriends, friendCount)
		}
		ctx, cancel := requestContext()
		defer cancel()
		resp, err := ensureRestClient().Deposit(ctx, friendCount)
		if err != nil {
			reportErrorf(errorRequestFail, err)
		}
		reportInfof("Configure with %d friends: %s", resp.Friends, resp.Configure)
		reportInfof("Initiate:                  %s", resp.Initiate)
	},
}

var withdrawableCmd = &cobra.Command{
	Use:   "withdrawable",
	Short: "Show what a proxy rescuer can withdraw from a lost account",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		lost := requireAddressFlag("lost", lostAddress)
		rescuer := requireAddressFlag("rescuer", rescuerAddress)

		ctx, cancel := requestContext()
		defer cancel()
		resp, err := ensureRestClient().Withdrawable(ctx, lost, rescuer)
		if err != nil {
			reportErrorf(errorRequestFail, err)
		}
		for _, line := range formatAmounts(resp.Amounts) {
			reportInfoln(line)
		}
	},
}

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Show which lost account a rescuer acts for",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		rescuer := requireAddressFlag("rescuer", rescuerAddress)

		ctx, cancel := requestContext()
		defer cancel()
		resp, err := ensureRestClient().Proxy(ctx, rescuer)
		if err != nil {
			reportErrorf(errorRequestFail, err)
		}
		if resp.Lost == nil {
			reportInfof(infoNotAProxy, renderAddress(rescuer))
			return
		}
		reportInfof(infoProxyFor, renderAddress(rescuer), renderAddress(*resp.Lost))
	},
}

var constsCmd = &cobra.Command{
	Use:   "consts",
	Short: "Show the recovery constants of the ledger",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := requestContext()
		defer cancel()
		resp, err := ensureRestClient().Consts(ctx)
		if err != nil {
			reportErrorf(errorRequestFail, err)
		}
		c := resp.Consts
		reportInfof("Config deposit base:    %s", c.ConfigDepositBase)
		reportInfof("Friend deposit factor:  %s", c.FriendDepositFactor)
		reportInfof("Max friends:            %d", c.MaxFriends)
		reportInfof("Recovery deposit:       %s", c.RecoveryDeposit)
	},
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the ledger behind the daemon",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpFunc()(cmd, args)
	},
}

var ledgerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest round and era",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := requestContext()
		defer cancel()
		resp, err := ensureRestClient().Status(ctx)
		if err != nil {
			reportErrorf(errorRequestFail, err)
		}
		reportInfof("Round: %d", resp.Round)
		reportInfof("Era:   %d", resp.Era)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the daemon answers",
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := requestContext()
		defer cancel()
		if err := ensureRestClient().HealthCheck(ctx); err != nil {
			reportErrorf(errorRequestFail, err)
		}
		settings := ensureSettings()
		reportInfof(infoHealthy, settings.URL.Host)
	},
}
