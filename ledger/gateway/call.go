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
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/protocol"
)

// Call is a state-changing ledger call. Which fields are meaningful depends on Type.
type Call struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Type protocol.CallType `codec:"type"`

	// Lost is the lost account the call refers to (initiate, vouch, claim, withdraw).
	Lost basics.Address `codec:"lost"`

	// Rescuer is the rescuer whose attempt the call refers to (vouch, close).
	Rescuer basics.Address `codec:"resc"`

	// Friends, Threshold and DelayPeriod configure recovery.
	Friends     []basics.Address `codec:"frnd"`
	Threshold   uint16           `codec:"thr"`
	DelayPeriod basics.Round     `codec:"dly"`

	// Amount is used by the development calls (endow, bond).
	Amount basics.Balance `codec:"amt"`

	// SpanCount is quoted by withdraw when redeeming unbonded stake.
	SpanCount uint32 `codec:"spans"`

	// Nonce must equal the signer's account nonce.
	Nonce uint64 `codec:"nonce"`
}

// SigningBytes returns the domain separated bytes a signer signs.
func (c Call) SigningBytes() []byte {
	enc := protocol.Encode(&c)
	msg := make([]byte, 0, len(protocol.Call)+len(enc))
	msg = append(msg, protocol.Call...)
	return append(msg, enc...)
}

// SignedCall is a call together with its signer and signature.
type SignedCall struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Call   Call           `codec:"call"`
	Signer basics.Address `codec:"sgnr"`
	Sig    []byte         `codec:"sig"`
}

// TxID identifies a submitted call.
type TxID [32]byte

// String returns the hex encoding of the id.
func (id TxID) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText encodes the id as hex.
func (id TxID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a hex id.
func (id *TxID) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(raw) != len(id) {
		return fmt.Errorf("tx id has %d bytes, expected %d", len(raw), len(id))
	}
	copy(id[:], raw)
	return nil
}

// ID returns the transaction id of the signed call.
func (s SignedCall) ID() TxID {
	enc := protocol.Encode(&s)
	h, _ := blake2b.New256(nil)
	h.Write([]byte(protocol.SignedCall))
	h.Write(enc)
	var id TxID
	copy(id[:], h.Sum(nil))
	return id
}

// Receipt describes an included call.
type Receipt struct {
	Round basics.Round   `codec:"rnd" json:"round"`
	Fee   basics.Balance `codec:"fee" json:"fee"`
	TxID  TxID           `codec:"txid" json:"txid"`
}

// Signer produces signatures on behalf of one account.
type Signer interface {
	Address() basics.Address
	Sign(msg []byte) []byte
}

// Ed25519Signer signs with an in-memory ed25519 key.
type Ed25519Signer struct {
	key ed25519.PrivateKey
}

// MakeEd25519Signer derives a signer from a 32 byte seed.
func MakeEd25519Signer(seed []byte) (*Ed25519Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed has %d bytes, expected %d", len(seed), ed25519.SeedSize)
	}
	return &Ed25519Signer{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// Address returns the public key of the signer.
func (s *Ed25519Signer) Address() (addr basics.Address) {
	copy(addr[:], s.key.Public().(ed25519.PublicKey))
	return
}

// Sign signs msg.
func (s *Ed25519Signer) Sign(msg []byte) []byte {
	return ed25519.Sign(s.key, msg)
}

// SignCall binds call to signer.
func SignCall(call Call, signer Signer) SignedCall {
	return SignedCall{
		Call:   call,
		Signer: signer.Address(),
		Sig:    signer.Sign(call.SigningBytes()),
	}
}
