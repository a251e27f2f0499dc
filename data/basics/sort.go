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

package basics

import (
	"bytes"
	"slices"
)

// SortAddresses sorts a slice of addresses in ascending byte order, in place.
func SortAddresses(addrs []Address) {
	slices.SortFunc(addrs, func(a, b Address) int {
		return bytes.Compare(a[:], b[:])
	})
}

// SortedUnique returns a sorted copy of addrs with duplicates removed.
func SortedUnique(addrs []Address) []Address {
	out := slices.Clone(addrs)
	SortAddresses(out)
	return slices.Compact(out)
}

// IsStrictlySorted reports whether addrs is in ascending order without duplicates.
func IsStrictlySorted(addrs []Address) bool {
	for i := 1; i < len(addrs); i++ {
		if !addrs[i-1].Less(addrs[i]) {
			return false
		}
	}
	return true
}

// SearchSorted reports whether target is present in the ascending slice addrs,
// and the position where it is or would be inserted.
func SearchSorted(addrs []Address, target Address) (int, bool) {
	return slices.BinarySearchFunc(addrs, target, func(a, b Address) int {
		return bytes.Compare(a[:], b[:])
	})
}
