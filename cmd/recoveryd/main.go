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
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/algorand/go-recovery/config"
	"github.com/algorand/go-recovery/daemon/recoveryd"
	"github.com/algorand/go-recovery/logging"
	"github.com/algorand/go-recovery/util/codecs"
)

var dataDirectory = flag.String("d", "", "Root recoveryd data path")
var listenIP = flag.String("l", "", "Override config.EndpointAddress (REST listening address) with ip:port")
var ledgerOverride = flag.String("r", "", "Override config.LedgerEndpoint with the URL of a remote ledger node")
var initAndExit = flag.Bool("x", false, "Write the effective configuration into the data directory and exit")

func main() {
	flag.Parse()
	exitCode := run()
	os.Exit(exitCode)
}

func run() int {
	dataDir := resolveDataDir()
	if len(dataDir) == 0 {
		fmt.Fprintln(os.Stderr, "Data directory not specified.  Please use -d or set $RECOVERY_DATA in your environment.")
		return 1
	}
	absolutePath, err := filepath.Abs(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Can't convert data directory's path to absolute, %v\n", dataDir)
		return 1
	}

	// If data directory doesn't exist, we can't run. Don't bother trying.
	if _, err1 := os.Stat(absolutePath); err1 != nil {
		fmt.Fprintf(os.Stderr, "Data directory %s does not appear to be valid\n", dataDir)
		return 1
	}

	log := logging.Base()
	// before doing anything further, attempt to acquire the recoveryd lock
	// to ensure this is the only daemon running against this data directory
	lockPath := filepath.Join(absolutePath, "recoveryd.lock")
	fileLock := flock.New(lockPath)
	locked, err := fileLock.TryLock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "unexpected failure in establishing recoveryd.lock: %s \n", err.Error())
		return 1
	}
	if !locked {
		fmt.Fprintln(os.Stderr, "failed to lock recoveryd.lock; is an instance of recoveryd already running in this data directory?")
		return 1
	}
	defer fileLock.Unlock()

	cfg, err := config.LoadConfigFromDisk(absolutePath)
	if err != nil {
		// log is not setup yet, this will log to stderr
		log.Errorf("Cannot load config: %v", err)
		return 1
	}
	if *listenIP != "" {
		cfg.EndpointAddress = *listenIP
	}
	if *ledgerOverride != "" {
		cfg.LedgerEndpoint = *ledgerOverride
	}

	fmt.Printf("Config loaded from %s\n", absolutePath)
	fmt.Println("Configuration after loading/defaults merge: ")
	printed := cfg
	if printed.APIToken != "" {
		printed.APIToken = "<redacted>"
	}
	if printed.LedgerAPIToken != "" {
		printed.LedgerAPIToken = "<redacted>"
	}
	if err := codecs.NewFormattedJSONEncoder(os.Stdout).Encode(printed); err != nil {
		fmt.Println("Error encoding config: ", err)
	}

	if *initAndExit {
		if err := cfg.SaveToDisk(absolutePath); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot save config: %v\n", err)
			return 1
		}
		return 0
	}

	s := recoveryd.Server{RootPath: absolutePath}
	if err := s.Initialize(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Error(err)
		return 1
	}
	fmt.Printf("Session %s\n", s.SessionID())
	if err := s.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func resolveDataDir() string {
	// Figure out what data directory to tell recoveryd to use.
	// If not specified on cmdline with '-d', look for default in environment.
	var dir string
	if dataDirectory == nil || *dataDirectory == "" {
		dir = os.Getenv("RECOVERY_DATA")
	} else {
		dir = *dataDirectory
	}
	return dir
}
