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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-recovery/config"
	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/test/partitiontest"
)

func TestResolveEndpointFromDataDir(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Setenv(dataDirEnvVar, "")

	dir := t.TempDir()
	cfg := config.GetDefaultLocal()
	cfg.APIToken = "datadir-token"
	cfg.AddressPrefix = 0
	cfg.BlockTimeMillis = 2000
	require.NoError(t, cfg.SaveToDisk(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, netFilename), []byte("127.0.0.1:8123\n"), 0644))

	settings, err := resolveEndpoint(dir, "", "")
	require.NoError(t, err)
	require.Equal(t, "http", settings.URL.Scheme)
	require.Equal(t, "127.0.0.1:8123", settings.URL.Host)
	require.Equal(t, "datadir-token", settings.Token)
	require.Equal(t, basics.AddressPrefix(0), settings.Prefix)
	require.Equal(t, uint64(2000), settings.BlockTimeMs)

	settings, err = resolveEndpoint(dir, "https://node.example:9000", "flag-token")
	require.NoError(t, err)
	require.Equal(t, "https", settings.URL.Scheme)
	require.Equal(t, "node.example:9000", settings.URL.Host)
	require.Equal(t, "flag-token", settings.Token)
}

func TestResolveEndpointFromEnvironment(t *testing.T) {
	partitiontest.PartitionTest(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, netFilename), []byte("127.0.0.1:9999"), 0644))
	t.Setenv(dataDirEnvVar, dir)

	settings, err := resolveEndpoint("", "", "")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", settings.URL.Host)
	require.Empty(t, settings.Token)
	require.Equal(t, config.GetDefaultLocal().Prefix(), settings.Prefix)
}

func TestResolveEndpointErrors(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Setenv(dataDirEnvVar, "")

	_, err := resolveEndpoint("", "", "")
	require.ErrorIs(t, err, errNoEndpoint)

	// recoveryd not running: no net file
	_, err = resolveEndpoint(t.TempDir(), "", "")
	require.ErrorContains(t, err, netFilename)

	settings, err := resolveEndpoint("", "localhost:8280", "")
	require.NoError(t, err)
	require.Equal(t, "localhost:8280", settings.URL.Host)
}

func TestParseSeed(t *testing.T) {
	partitiontest.PartitionTest(t)

	const seedHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	a, err := parseSeed(seedHex)
	require.NoError(t, err)
	b, err := parseSeed(" 0x" + seedHex + "\n")
	require.NoError(t, err)
	require.Equal(t, a.Address(), b.Address())
	require.False(t, a.Address().IsZero())

	_, err = parseSeed("zz")
	require.Error(t, err)
	_, err = parseSeed(seedHex[:62])
	require.Error(t, err)
}
