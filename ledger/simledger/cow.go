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
	"bytes"
	"errors"
	"sort"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/ledger/ledgercore"
	"github.com/algorand/go-recovery/protocol"
	"github.com/algorand/go-recovery/util/kvstore"
)

// dbKey lays storage items out as item || 0x00 || key so that every item is a
// contiguous key range.
func dbKey(key gateway.StorageKey) []byte {
	out := make([]byte, 0, len(key.Item)+1+len(key.Key))
	out = append(out, key.Item...)
	out = append(out, 0)
	return append(out, key.Key...)
}

func itemPrefix(item protocol.StorageItem, prefix []byte) []byte {
	return dbKey(gateway.StorageKey{Item: item, Key: prefix})
}

type cowValue struct {
	value   []byte
	deleted bool
}

// callCow buffers the writes of a single call on top of the committed store.
// Nothing reaches the store unless the whole call succeeds.
type callCow struct {
	db   kvstore.KVStore
	mods map[string]cowValue
}

func makeCallCow(db kvstore.KVStore) *callCow {
	return &callCow{db: db, mods: make(map[string]cowValue)}
}

func (cb *callCow) get(key gateway.StorageKey) ([]byte, bool, error) {
	k := dbKey(key)
	if mod, ok := cb.mods[string(k)]; ok {
		return mod.value, !mod.deleted, nil
	}
	return lookup(cb.db, k)
}

func (cb *callCow) put(key gateway.StorageKey, value []byte) {
	cb.mods[string(dbKey(key))] = cowValue{value: value}
}

func (cb *callCow) del(key gateway.StorageKey) {
	cb.mods[string(dbKey(key))] = cowValue{deleted: true}
}

// scan returns the entries of item whose key starts with prefix, with the
// buffered writes applied, ordered by key.
func (cb *callCow) scan(item protocol.StorageItem, prefix []byte) ([]gateway.Entry, error) {
	p := itemPrefix(item, prefix)
	merged := make(map[string][]byte)
	committed, err := scanRange(cb.db, p)
	if err != nil {
		return nil, err
	}
	for _, e := range committed {
		merged[string(e.Key)] = e.Value
	}
	for k, mod := range cb.mods {
		if !bytes.HasPrefix([]byte(k), p) {
			continue
		}
		if mod.deleted {
			delete(merged, k)
		} else {
			merged[k] = mod.value
		}
	}

	entries := make([]gateway.Entry, 0, len(merged))
	for k, v := range merged {
		entries = append(entries, gateway.Entry{Key: []byte(k), Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return bytes.Compare(entries[i].Key, entries[j].Key) < 0 })
	base := len(item) + 1
	for i := range entries {
		entries[i].Key = entries[i].Key[base:]
	}
	return entries, nil
}

func (cb *callCow) commit() error {
	if len(cb.mods) == 0 {
		return nil
	}
	batch := cb.db.NewBatch()
	for k, mod := range cb.mods {
		var err error
		if mod.deleted {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Set([]byte(k), mod.value)
		}
		if err != nil {
			batch.Cancel()
			return err
		}
	}
	return batch.Commit()
}

func (cb *callCow) read(key gateway.StorageKey, obj interface{}) (bool, error) {
	raw, found, err := cb.get(key)
	if err != nil || !found {
		return false, err
	}
	return true, protocol.Decode(raw, obj)
}

func (cb *callCow) write(key gateway.StorageKey, obj interface{}) {
	cb.put(key, protocol.Encode(obj))
}

func (cb *callCow) account(addr basics.Address) (ad ledgercore.AccountData, err error) {
	_, err = cb.read(gateway.AccountKey(protocol.SystemAccountItem, addr), &ad)
	return
}

func (cb *callCow) putAccount(addr basics.Address, ad ledgercore.AccountData) {
	key := gateway.AccountKey(protocol.SystemAccountItem, addr)
	if ad == (ledgercore.AccountData{}) {
		cb.del(key)
		return
	}
	cb.write(key, &ad)
}

func lookup(db kvstore.KVStore, k []byte) ([]byte, bool, error) {
	v, err := db.Get(k)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func scanRange(db kvstore.KVStore, prefix []byte) (entries []gateway.Entry, err error) {
	iter := db.NewIterator(prefix, kvstore.PrefixEnd(prefix))
	defer func() {
		if cerr := iter.Close(); err == nil {
			err = cerr
		}
	}()
	for ; iter.Valid(); iter.Next() {
		var v []byte
		v, err = iter.Value()
		if err != nil {
			return nil, err
		}
		entries = append(entries, gateway.Entry{Key: iter.Key(), Value: v})
	}
	return entries, nil
}
