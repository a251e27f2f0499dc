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
	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
)

func (ev *evaluator) credit(addr basics.Address, amount basics.Balance) error {
	ad, err := ev.cow.account(addr)
	if err != nil {
		return err
	}
	free, overflowed := basics.OAdd(ad.Free, amount)
	if overflowed {
		return ev.reject(gateway.RejectOverflow, "crediting %s", addr)
	}
	ad.Free = free
	ev.cow.putAccount(addr, ad)
	return nil
}

func (ev *evaluator) reserve(addr basics.Address, amount basics.Balance) error {
	ad, err := ev.cow.account(addr)
	if err != nil {
		return err
	}
	if ad.Available() < amount {
		return ev.reject(gateway.RejectInsufficientFunds, "%s has %d available, needs %d", addr, ad.Available(), amount)
	}
	reserved, overflowed := basics.OAdd(ad.Reserved, amount)
	if overflowed {
		return ev.reject(gateway.RejectOverflow, "reserving for %s", addr)
	}
	ad.Free -= amount
	ad.Reserved = reserved
	ev.cow.putAccount(addr, ad)
	return nil
}

func (ev *evaluator) unreserve(addr basics.Address, amount basics.Balance) error {
	return ev.repatriateReserved(addr, addr, amount)
}

// repatriateReserved moves up to amount of from's reserved balance into to's free balance.
func (ev *evaluator) repatriateReserved(from, to basics.Address, amount basics.Balance) error {
	ad, err := ev.cow.account(from)
	if err != nil {
		return err
	}
	amount = basics.MinB(amount, ad.Reserved)
	ad.Reserved -= amount
	ev.cow.putAccount(from, ad)
	return ev.credit(to, amount)
}

func (ev *evaluator) transfer(from, to basics.Address, amount basics.Balance) error {
	if amount == 0 || from == to {
		return nil
	}
	ad, err := ev.cow.account(from)
	if err != nil {
		return err
	}
	if ad.Available() < amount {
		return ev.reject(gateway.RejectInsufficientFunds, "%s has %d available, needs %d", from, ad.Available(), amount)
	}
	ad.Free -= amount
	ev.cow.putAccount(from, ad)
	return ev.credit(to, amount)
}
