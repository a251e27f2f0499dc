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

package gateway

import (
	"encoding/hex"
	"fmt"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/protocol"
)

// StorageKey addresses one record of a storage item.
type StorageKey struct {
	Item protocol.StorageItem
	Key  []byte
}

// String renders the key as item/hex.
func (k StorageKey) String() string {
	return fmt.Sprintf("%s/%s", k.Item, hex.EncodeToString(k.Key))
}

// AccountKey addresses a record of item keyed by a single account.
func AccountKey(item protocol.StorageItem, addr basics.Address) StorageKey {
	key := make([]byte, len(addr))
	copy(key, addr[:])
	return StorageKey{Item: item, Key: key}
}

// SingletonKey addresses an item holding a single value.
func SingletonKey(item protocol.StorageItem) StorageKey {
	return StorageKey{Item: item}
}

// ActiveRecoveryKey addresses the attempt of rescuer against lost.
// The layout is lost || rescuer, so all attempts against one lost account
// share a prefix but are not indexed by it on the ledger.
func ActiveRecoveryKey(lost, rescuer basics.Address) StorageKey {
	key := make([]byte, 0, len(lost)+len(rescuer))
	key = append(key, lost[:]...)
	key = append(key, rescuer[:]...)
	return StorageKey{Item: protocol.RecoveryActiveItem, Key: key}
}

// DecodeActiveRecoveryKey splits an active recovery key into its lost and rescuer parts.
func DecodeActiveRecoveryKey(key []byte) (lost, rescuer basics.Address, err error) {
	if len(key) != len(lost)+len(rescuer) {
		err = fmt.Errorf("active recovery key has %d bytes, expected %d", len(key), len(lost)+len(rescuer))
		return
	}
	copy(lost[:], key[:len(lost)])
	copy(rescuer[:], key[len(lost):])
	return
}

// DecodeAccountKey reads an account-keyed storage key back into an address.
func DecodeAccountKey(key []byte) (addr basics.Address, err error) {
	if len(key) != len(addr) {
		err = fmt.Errorf("account key has %d bytes, expected %d", len(key), len(addr))
		return
	}
	copy(addr[:], key)
	return
}
