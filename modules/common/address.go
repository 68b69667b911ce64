package common

import (
	"fmt"
	"math/big"
)

const AddrLen = 15

type Address [AddrLen]byte

func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddrLen:]
	}
	*a = Address{}
	copy(a[AddrLen-len(b):], b)
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return string(a.cxid())
}

func (a Address) Hex() string {
	return string(a.hex())
}

func (a Address) CXID() string {
	return string(a.cxid())
}

func (a Address) BigInt() *big.Int {
	return new(big.Int).SetBytes(a.Bytes())
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return a.cxid(), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	s := string(text)
	switch {
	case has1cxPrefix(s):
		s = s[3:]
	case has0xPrefix(s):
		s = s[2:]
	}

	b, err := decodeStrict(s)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", text, err)
	}
	if len(b) != AddrLen {
		return fmt.Errorf("invalid address length; expected: %d, given: %d", AddrLen, len(b))
	}

	a.SetBytes(b)
	return nil
}

func BytesToAddress(b []byte) Address {
	var addr Address
	addr.SetBytes(b)
	return addr
}

func HashToAddress(h Hash) Address {
	return BytesToAddress(h.Bytes())
}

func HexToAddress(s string) Address {
	if has0xPrefix(s) {
		s = s[2:]
	}
	return BytesToAddress(decode(s))
}

func CXIDToAddress(s string) Address {
	if has1cxPrefix(s) {
		s = s[3:]
	}
	return BytesToAddress(decode(s))
}

func (a Address) hex() []byte {
	return hexEncoder(a[:])
}

func (a Address) cxid() []byte {
	return cxidEncoder(a[:])
}
