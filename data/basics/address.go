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
	"crypto/sha512"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

type (
	// Address is the 32 byte public key identifying an account on the ledger.
	Address [32]byte

	// AddressPrefix is the network discriminator embedded in prefixed (SS58 style)
	// textual addresses. Valid prefixes are below 16384.
	AddressPrefix uint16

	// AddressFormat names the textual encoding an address was parsed from.
	AddressFormat int
)

const (
	// ChecksumFormat is the base32 encoding with a 4 byte hash suffix (Address.String).
	ChecksumFormat AddressFormat = iota
	// PrefixedFormat is the base58 encoding with a network prefix and blake2b checksum.
	PrefixedFormat
	// HexFormat is the raw public key as 0x-prefixed hex.
	HexFormat
)

const (
	checksumLength         = 4
	prefixedChecksumLength = 2
	maxAddressPrefix       = 16383
)

var prefixedChecksumContext = []byte("SS58PRE")

var (
	// ErrAddressPrefix is returned for prefixes outside the two-byte encodable range.
	ErrAddressPrefix = errors.New("address prefix out of range")
	// ErrAddressFormat is returned when a string matches none of the supported encodings.
	ErrAddressFormat = errors.New("unrecognized address format")
)

var addressEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// GetChecksum returns the checksum as []byte
// Checksums are the last 4 bytes of the sha512/256 of the public key.
func (addr Address) GetChecksum() []byte {
	shortAddressHash := sha512.Sum512_256(addr[:])
	checksum := shortAddressHash[len(shortAddressHash)-checksumLength:]
	return checksum
}

// UnmarshalChecksumAddress tries to unmarshal the checksummed address string.
func UnmarshalChecksumAddress(address string) (Address, error) {
	decoded, err := addressEncoding.DecodeString(address)
	if err != nil {
		return Address{}, fmt.Errorf("failed to decode address %s to base 32", address)
	}
	var short Address
	if len(decoded) != len(short)+checksumLength {
		return Address{}, fmt.Errorf("decoded bad addr: %s", address)
	}

	copy(short[:], decoded[:len(short)])
	incomingchecksum := decoded[len(decoded)-checksumLength:]

	calculatedchecksum := short.GetChecksum()
	if !bytes.Equal(incomingchecksum, calculatedchecksum) {
		return Address{}, fmt.Errorf("address %s is malformed, checksum verification failed", address)
	}

	// Validate that we had a canonical string representation
	if short.String() != address {
		return Address{}, fmt.Errorf("address %s is non-canonical", address)
	}

	return short, nil
}

// String returns a string representation of Address
func (addr Address) String() string {
	var addrWithChecksum []byte
	addrWithChecksum = append(addr[:], addr.GetChecksum()...)
	return addressEncoding.EncodeToString(addrWithChecksum)
}

// IsZero checks if an address is the zero value.
func (addr Address) IsZero() bool {
	return addr == Address{}
}

// Less orders addresses by their raw bytes.
func (addr Address) Less(other Address) bool {
	return bytes.Compare(addr[:], other[:]) < 0
}

// MarshalText returns the address string as an array of bytes
func (addr Address) MarshalText() ([]byte, error) {
	return []byte(addr.String()), nil
}

// UnmarshalText initializes the Address from an array of bytes.
// Any of the supported textual formats is accepted.
func (addr *Address) UnmarshalText(text []byte) error {
	address, _, err := ParseAddress(string(text))
	if err == nil {
		*addr = address
		return nil
	}
	return err
}

func prefixBytes(prefix AddressPrefix) ([]byte, error) {
	switch {
	case prefix < 64:
		return []byte{byte(prefix)}, nil
	case prefix <= maxAddressPrefix:
		first := byte((prefix&0x00fc)>>2) | 0x40
		second := byte(prefix>>8) | byte((prefix&0x0003)<<6)
		return []byte{first, second}, nil
	default:
		return nil, ErrAddressPrefix
	}
}

func prefixedChecksum(payload []byte) []byte {
	h, _ := blake2b.New512(nil)
	h.Write(prefixedChecksumContext)
	h.Write(payload)
	return h.Sum(nil)[:prefixedChecksumLength]
}

// EncodePrefixed returns the base58 prefixed encoding of the address for the given network.
func (addr Address) EncodePrefixed(prefix AddressPrefix) (string, error) {
	payload, err := prefixBytes(prefix)
	if err != nil {
		return "", err
	}
	payload = append(payload, addr[:]...)
	payload = append(payload, prefixedChecksum(payload)...)
	return base58.Encode(payload), nil
}

// UnmarshalPrefixedAddress decodes a base58 prefixed address, returning the public key
// and the network prefix it was encoded for.
func UnmarshalPrefixedAddress(address string) (Address, AddressPrefix, error) {
	decoded, err := base58.Decode(address)
	if err != nil {
		return Address{}, 0, fmt.Errorf("failed to decode address %s to base 58: %w", address, err)
	}
	if len(decoded) < 1 {
		return Address{}, 0, fmt.Errorf("decoded bad addr: %s", address)
	}

	var prefix AddressPrefix
	var prefixLen int
	switch b0 := decoded[0]; {
	case b0 < 64:
		prefix = AddressPrefix(b0)
		prefixLen = 1
	case b0 < 128:
		if len(decoded) < 2 {
			return Address{}, 0, fmt.Errorf("decoded bad addr: %s", address)
		}
		b1 := decoded[1]
		prefix = AddressPrefix(b0&0x3f)<<2 | AddressPrefix(b1>>6) | AddressPrefix(b1&0x3f)<<8
		prefixLen = 2
	default:
		return Address{}, 0, fmt.Errorf("address %s uses a reserved prefix", address)
	}

	var short Address
	if len(decoded) != prefixLen+len(short)+prefixedChecksumLength {
		return Address{}, 0, fmt.Errorf("decoded bad addr: %s", address)
	}
	body := decoded[:prefixLen+len(short)]
	if !bytes.Equal(decoded[len(body):], prefixedChecksum(body)) {
		return Address{}, 0, fmt.Errorf("address %s is malformed, checksum verification failed", address)
	}
	copy(short[:], body[prefixLen:])
	return short, prefix, nil
}

// ParseAddress accepts any supported textual encoding of an account and returns its
// public key. Two strings naming the same key in different encodings, or under
// different network prefixes, parse to the same Address.
func ParseAddress(s string) (Address, AddressFormat, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		raw, err := hex.DecodeString(s[2:])
		if err != nil {
			return Address{}, HexFormat, fmt.Errorf("failed to decode hex address %s: %w", s, err)
		}
		var short Address
		if len(raw) != len(short) {
			return Address{}, HexFormat, fmt.Errorf("hex address %s has %d bytes, expected %d", s, len(raw), len(short))
		}
		copy(short[:], raw)
		return short, HexFormat, nil
	}

	if addr, err := UnmarshalChecksumAddress(s); err == nil {
		return addr, ChecksumFormat, nil
	}

	addr, _, err := UnmarshalPrefixedAddress(s)
	if err == nil {
		return addr, PrefixedFormat, nil
	}
	return Address{}, 0, fmt.Errorf("%w: %s", ErrAddressFormat, s)
}

// Canonicalize re-encodes any supported address string with the given network prefix.
// Canonicalizing an already canonical string returns it unchanged.
func Canonicalize(s string, prefix AddressPrefix) (string, error) {
	addr, _, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return addr.EncodePrefixed(prefix)
}
