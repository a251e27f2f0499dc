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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/algorand/go-recovery/logging"
)

var log = logging.Base()

var validateNoPosArgsFn = cobra.NoArgs

var (
	dataDir        string
	endpointFlag   string
	apiTokenFlag   string
	addressPrefix  uint16
	blockTimeMs    uint64
	requestTimeout time.Duration
)

func init() {
	// recovery.go
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(rescuersCmd)
	rootCmd.AddCommand(depositCmd)
	rootCmd.AddCommand(withdrawableCmd)
	rootCmd.AddCommand(proxyCmd)
	rootCmd.AddCommand(constsCmd)
	rootCmd.AddCommand(ledgerCmd)

	// submit.go
	rootCmd.AddCommand(submitCmd)

	// account.go
	rootCmd.AddCommand(accountCmd)

	rootCmd.PersistentFlags().StringVarP(&dataDir, "datadir", "d", "", "Data directory of the recovery daemon ($RECOVERY_DATA)")
	rootCmd.PersistentFlags().StringVarP(&endpointFlag, "endpoint", "e", "", "Daemon endpoint, overrides the address read from the data directory")
	rootCmd.PersistentFlags().StringVarP(&apiTokenFlag, "token", "t", "", "API token, overrides the token read from the data directory")
	rootCmd.PersistentFlags().Uint16Var(&addressPrefix, "prefix", 0, "Network prefix addresses are printed with (defaults to the daemon's configuration)")
	rootCmd.PersistentFlags().Uint64Var(&blockTimeMs, "block-time", 0, "Expected block interval in milliseconds (defaults to the daemon's configuration)")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "timeout", 30*time.Second, "Timeout of every request to the daemon")
}

var rootCmd = &cobra.Command{
	Use:   "rgoal",
	Short: "CLI for the recovery coordinator",
	Long:  `rgoal queries a recovery daemon about recoverable accounts and submits recovery calls signed with local keys.`,
	Args:  validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, args []string) {
		//If no arguments passed, we should fallback to help
		cmd.HelpFunc()(cmd, args)
	},
}

// Write commands to exercise all subcommands with `-h`
func runAllHelps(c *cobra.Command, out io.Writer) (err error) {
	if c.Runnable() {
		cmd := c.CommandPath() + " -h\n"
		_, err = out.Write([]byte(cmd))
		if err != nil {
			return
		}
	}
	for _, sub := range c.Commands() {
		err = runAllHelps(sub, out)
		if err != nil {
			return
		}
	}
	return
}

func main() {
	if len(os.Args) == 2 && os.Args[1] == "helptest" {
		// rgoal helptest | bash -x -e
		runAllHelps(rootCmd, os.Stdout)
		os.Exit(0)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func reportInfoln(args ...interface{}) {
	fmt.Println(args...)
}

func reportInfof(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func reportWarnf(format string, args ...interface{}) {
	fmt.Printf("Warning: "+format+"\n", args...)
	log.Warnf(format, args...)
}

func reportErrorln(args ...interface{}) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

func reportErrorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
