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

package ledgercore

import (
	"github.com/algorand/go-recovery/data/basics"
)

// AccountData is the balance record of an account.
//
// Free funds may be partially frozen by staking locks; Reserved funds back
// deposits (recovery configuration, recovery attempts) and are not spendable.
type AccountData struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Free     basics.Balance `codec:"free"`
	Reserved basics.Balance `codec:"rsv"`
	Frozen   basics.Balance `codec:"frz"`
	Nonce    uint64         `codec:"nonce"`
}

// Available returns the transferable part of the free balance.
func (a AccountData) Available() basics.Balance {
	return basics.SubSaturate(a.Free, a.Frozen)
}

// UnlockChunk is a piece of stake that becomes redeemable at Era.
type UnlockChunk struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Value basics.Balance  `codec:"v"`
	Era   basics.EraIndex `codec:"era"`
}

// StakingLedger is the bonded stake of a stash account.
type StakingLedger struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Total     basics.Balance `codec:"tot"`
	Active    basics.Balance `codec:"act"`
	Unlocking []UnlockChunk  `codec:"unl"`
}

// SlashingSpans records the slashing span history of a stash.
type SlashingSpans struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	SpanIndex uint32            `codec:"idx"`
	LastStart basics.EraIndex   `codec:"last"`
	Prior     []basics.EraIndex `codec:"prior"`
}

// Count returns the number of spans, which withdrawal calls must quote.
func (s SlashingSpans) Count() uint32 {
	return uint32(len(s.Prior)) + 1
}
