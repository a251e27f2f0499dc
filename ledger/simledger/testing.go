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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/algorand/go-recovery/config"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/logging"
)

// TestParams returns the ledger rules used throughout the tests: base 100,
// factor 10, 9 friends at most, recovery deposit 50, no fees.
func TestParams() Params {
	p := ParamsFromConfig(config.GetDefaultLocal().DevLedger)
	p.Fee = 0
	return p
}

// OpenTestLedger opens an in-memory ledger that is closed when the test ends.
func OpenTestLedger(tb testing.TB, params Params) *Ledger {
	l, err := Open(filepath.Join(tb.TempDir(), "ledger"), true, params, logging.TestingLog(tb))
	require.NoError(tb, err)
	tb.Cleanup(func() { l.Close() })
	return l
}

// TestAccount returns a deterministic signer derived from name.
func TestAccount(tb testing.TB, name string) *gateway.Ed25519Signer {
	seed := blake2b.Sum256([]byte(name))
	s, err := gateway.MakeEd25519Signer(seed[:])
	require.NoError(tb, err)
	return s
}
