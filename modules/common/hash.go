package common

import (
	"fmt"
	"math/big"
)

const HashLen = 32

type Hash [HashLen]byte

// SetBytes right-aligns buf into h, keeping the last HashLen bytes when buf is longer.
func (h *Hash) SetBytes(buf []byte) {
	if len(buf) > HashLen {
		buf = buf[len(buf)-HashLen:]
	}
	*h = Hash{}
	copy(h[HashLen-len(buf):], buf)
}

func (h Hash) IsValid() bool {
	for _, b := range h {
		if b != 0 {
			return true
		}
	}
	return false
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return string(h.hex())
}

func (h Hash) Hex() string {
	return string(h.hex())
}

func (h Hash) CXID() string {
	return string(h.cxid())
}

func (h Hash) BigInt() *big.Int {
	return new(big.Int).SetBytes(h.Bytes())
}

// LeadingZeroBits counts the zero bits before the first set bit, big-endian.
func (h Hash) LeadingZeroBits() uint64 {
	var n uint64
	for _, b := range h {
		if b == 0 {
			n += 8
			continue
		}
		for mask := byte(0x80); mask != 0 && b&mask == 0; mask >>= 1 {
			n++
		}
		break
	}
	return n
}

func (h Hash) MarshalText() ([]byte, error) {
	return h.hex(), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	s := string(text)
	if has0xPrefix(s) {
		s = s[2:]
	}

	b, err := decodeStrict(s)
	if err != nil {
		return fmt.Errorf("invalid hash %q: %w", text, err)
	}
	if len(b) != HashLen {
		return fmt.Errorf("invalid hash length; expected: %d, given: %d", HashLen, len(b))
	}

	h.SetBytes(b)
	return nil
}

func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

func BigIntToHash(n *big.Int) Hash {
	return BytesToHash(n.Bytes())
}

func HexToHash(s string) Hash {
	if has0xPrefix(s) {
		s = s[2:]
	}

	return BytesToHash(decode(s))
}

func CXIDToHash(s string) Hash {
	if has1cxPrefix(s) {
		s = s[3:]
	}

	return BytesToHash(decode(s))
}

func (h Hash) hex() []byte {
	return hexEncoder(h[:])
}

func (h Hash) cxid() []byte {
	return cxidEncoder(h[:])
}
