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

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/util/codecs"
)

// ConfigFilename is the name of the config.json file where we store per-daemon-instance settings
const ConfigFilename = "config.json"

// Local holds the per-instance configuration settings for the coordinator daemon and CLI.
type Local struct {
	// Version tracks the current version of the defaults so we can migrate old -> new.
	Version uint32

	// BaseLoggerDebugLevel specifies the logging level for recoveryd (recoveryd.log). The levels range
	// from 0 (critical error / silent) to 5 (debug / verbose). The default value is 4 ('Info').
	BaseLoggerDebugLevel uint32

	// LogFormatJSON switches the daemon log to JSON lines.
	LogFormatJSON bool

	// EndpointAddress is the address and port the REST API listens on.
	EndpointAddress string

	// APIToken guards every REST route except /health and /metrics. Empty disables auth.
	APIToken string

	// LedgerEndpoint is the URL of a remote ledger node speaking the /v1/ledger API.
	// When empty, the daemon runs an embedded development ledger.
	LedgerEndpoint string

	// LedgerAPIToken is sent to the remote ledger node.
	LedgerAPIToken string

	// AddressPrefix is the network prefix friend identifiers are canonicalized to.
	AddressPrefix uint16

	// BlockTimeMillis is the expected block interval, used only for display estimates.
	BlockTimeMillis uint64

	// RescuerScanCacheTTL bounds how long a competing-rescuer scan is reused.
	RescuerScanCacheTTL time.Duration

	// RescuerScanCacheSize is the number of lost accounts whose scans are cached.
	RescuerScanCacheSize int

	// QueryTimeout bounds every ledger query issued by the REST handlers.
	QueryTimeout time.Duration

	// EnableMetrics exposes prometheus metrics on /metrics.
	EnableMetrics bool

	// DevLedger holds the parameters of the embedded development ledger.
	DevLedger DevLedgerParams
}

// DevLedgerParams describes the rules of the embedded development ledger.
type DevLedgerParams struct {
	// Consts are the recovery constants the ledger publishes under recovery/consts.
	Consts RecoveryConsts

	// EraLength is the number of rounds per staking era.
	EraLength uint32

	// BondingDuration is the number of eras unbonded stake stays locked.
	BondingDuration uint32

	// Fee is charged to the signer of every accepted call.
	Fee basics.Balance

	// InMemory keeps ledger state off disk.
	InMemory bool
}

// RecoveryConsts are the protocol-wide recovery constants.
type RecoveryConsts struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	ConfigDepositBase   basics.Balance `codec:"base"`
	FriendDepositFactor basics.Balance `codec:"factor"`
	MaxFriends          uint16         `codec:"maxf"`
	RecoveryDeposit     basics.Balance `codec:"rdep"`
}

var defaultLocal = Local{
	Version:              1,
	BaseLoggerDebugLevel: 4,
	EndpointAddress:      "127.0.0.1:8280",
	AddressPrefix:        42,
	BlockTimeMillis:      6000,
	RescuerScanCacheTTL:  30 * time.Second,
	RescuerScanCacheSize: 256,
	QueryTimeout:         20 * time.Second,
	EnableMetrics:        true,
	DevLedger: DevLedgerParams{
		Consts: RecoveryConsts{
			ConfigDepositBase:   100,
			FriendDepositFactor: 10,
			MaxFriends:          9,
			RecoveryDeposit:     50,
		},
		EraLength:       600,
		BondingDuration: 28,
		Fee:             1,
		InMemory:        true,
	},
}

// GetDefaultLocal returns a copy of the current defaultLocal config
func GetDefaultLocal() Local {
	return defaultLocal
}

// LoadConfigFromDisk returns a Local config structure based on merging the defaults
// with settings loaded from the config file from the custom dir.  If the custom file
// does not exist, the default config is returned without an error.
func LoadConfigFromDisk(custom string) (c Local, err error) {
	c, err = mergeConfigFromFile(filepath.Join(custom, ConfigFilename), defaultLocal)
	if errors.Is(err, os.ErrNotExist) {
		return defaultLocal, nil
	}
	if err != nil {
		return
	}
	err = c.Validate()
	return
}

func mergeConfigFromFile(configpath string, source Local) (Local, error) {
	f, err := os.Open(configpath)
	if err != nil {
		return source, err
	}
	defer f.Close()

	err = loadConfig(f, &source)
	return source, err
}

func loadConfig(reader io.Reader, config *Local) error {
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	return dec.Decode(config)
}

// Validate rejects settings the daemon cannot run with.
func (cfg Local) Validate() error {
	if _, err := (basics.Address{}).EncodePrefixed(basics.AddressPrefix(cfg.AddressPrefix)); err != nil {
		return fmt.Errorf("invalid AddressPrefix %d: %w", cfg.AddressPrefix, err)
	}
	if cfg.BlockTimeMillis == 0 {
		return errors.New("BlockTimeMillis must be positive")
	}
	if cfg.RescuerScanCacheSize < 0 {
		return errors.New("RescuerScanCacheSize must not be negative")
	}
	if cfg.LedgerEndpoint == "" && cfg.DevLedger.EraLength == 0 {
		return errors.New("DevLedger.EraLength must be positive")
	}
	return nil
}

// Prefix returns the configured address prefix.
func (cfg Local) Prefix() basics.AddressPrefix {
	return basics.AddressPrefix(cfg.AddressPrefix)
}

// SaveToDisk writes the Local settings into a root/ConfigFilename file
func (cfg Local) SaveToDisk(root string) error {
	configpath := filepath.Join(root, ConfigFilename)
	filename := os.ExpandEnv(configpath)
	return cfg.SaveToFile(filename)
}

// SaveToFile saves the config to a specific filename, allowing overriding the default name
func (cfg Local) SaveToFile(filename string) error {
	return codecs.SaveObjectToFile(filename, cfg, true)
}
