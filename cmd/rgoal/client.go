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
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/algorand/go-recovery/config"
	"github.com/algorand/go-recovery/daemon/recoveryd/api/client"
	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/recovery"
)

const (
	dataDirEnvVar = "RECOVERY_DATA"
	seedEnvVar    = "RECOVERY_SEED"
	netFilename   = "recoveryd.net"
)

var errNoEndpoint = errors.New(errorNoEndpoint)

// endpointSettings is everything needed to talk to one daemon.
type endpointSettings struct {
	URL         url.URL
	Token       string
	Prefix      basics.AddressPrefix
	BlockTimeMs uint64
}

// resolveEndpoint works out the daemon address and token. Explicit values win;
// otherwise they are read from dir, which is where recoveryd writes its
// listening address and keeps its configuration.
func resolveEndpoint(dir, endpoint, token string) (endpointSettings, error) {
	if dir == "" {
		dir = os.Getenv(dataDirEnvVar)
	}
	cfg := config.GetDefaultLocal()
	if dir != "" {
		var err error
		cfg, err = config.LoadConfigFromDisk(dir)
		if err != nil {
			return endpointSettings{}, fmt.Errorf(errorReadingConfig, dir, err)
		}
	}

	if endpoint == "" {
		if dir == "" {
			return endpointSettings{}, errNoEndpoint
		}
		netPath := filepath.Join(dir, netFilename)
		raw, err := os.ReadFile(netPath)
		if err != nil {
			return endpointSettings{}, fmt.Errorf(errorReadingNetFile, netPath, err)
		}
		endpoint = strings.TrimSpace(string(raw))
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpointSettings{}, fmt.Errorf(errorBadEndpoint, endpoint, err)
	}

	if token == "" {
		token = cfg.APIToken
	}
	return endpointSettings{
		URL:         *u,
		Token:       token,
		Prefix:      cfg.Prefix(),
		BlockTimeMs: cfg.BlockTimeMillis,
	}, nil
}

var cachedSettings *endpointSettings

func ensureSettings() endpointSettings {
	if cachedSettings != nil {
		return *cachedSettings
	}
	settings, err := resolveEndpoint(dataDir, endpointFlag, apiTokenFlag)
	if err != nil {
		reportErrorln(err)
	}
	flags := rootCmd.PersistentFlags()
	if flags.Changed("prefix") {
		settings.Prefix = basics.AddressPrefix(addressPrefix)
	}
	if flags.Changed("block-time") {
		settings.BlockTimeMs = blockTimeMs
	}
	cachedSettings = &settings
	return settings
}

func ensureRestClient() client.RestClient {
	settings := ensureSettings()
	return client.MakeRestClient(settings.URL, settings.Token)
}

// ensureCoordinator returns a coordinator that reads the ledger through the
// daemon. Calls are prepared and signed locally.
func ensureCoordinator() *recovery.Coordinator {
	settings := ensureSettings()
	rc := client.MakeRestClient(settings.URL, settings.Token)
	return recovery.MakeCoordinator(rc, log, recovery.Options{
		AddressPrefix:   settings.Prefix,
		BlockTimeMillis: settings.BlockTimeMs,
	})
}

func requestContext() (context.Context, context.CancelFunc) {
	if requestTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), requestTimeout)
}

func parseAddressArg(s string) basics.Address {
	addr, _, err := basics.ParseAddress(s)
	if err != nil {
		reportErrorf(errorParseAddr, s, err)
	}
	return addr
}

func requireAddressFlag(name, value string) basics.Address {
	if value == "" {
		reportErrorf(errorMissingFlag, name)
	}
	return parseAddressArg(value)
}

func renderAddress(addr basics.Address) string {
	s, err := addr.EncodePrefixed(ensureSettings().Prefix)
	if err != nil {
		reportErrorf(errorRenderAddr, err)
	}
	return s
}

// parseSeed decodes a hex encoded 32 byte ed25519 seed. A 0x prefix is accepted.
func parseSeed(s string) (*gateway.Ed25519Signer, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	seed, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return gateway.MakeEd25519Signer(seed)
}

func ensureSigner(seed string) *gateway.Ed25519Signer {
	if seed == "" {
		seed = os.Getenv(seedEnvVar)
	}
	if seed == "" {
		reportErrorln(errorNoSeed)
	}
	signer, err := parseSeed(seed)
	if err != nil {
		reportErrorf(errorBadSeed, err)
	}
	return signer
}
