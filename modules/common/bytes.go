package common

import (
	"encoding/binary"
	"encoding/hex"
)

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && s[1] == 'x'
}

func has1cxPrefix(s string) bool {
	return len(s) >= 3 && s[0] == '1' && s[1] == 'c' && s[2] == 'x'
}

func EncodeToHex(data []byte) string {
	return string(hexEncoder(data))
}

func EncodeToCXID(data []byte) string {
	return string(cxidEncoder(data))
}

func hexEncoder(data []byte) []byte {
	buf := make([]byte, len(data)*2+2)
	copy(buf[:2], "0x")
	hex.Encode(buf[2:], data)
	return buf
}

func cxidEncoder(data []byte) []byte {
	buf := make([]byte, len(data)*2+3)
	copy(buf[:3], "1cx")
	hex.Encode(buf[3:], data)
	return buf
}

// decode ignores malformed input and returns what it could not parse as empty.
func decode(s string) []byte {
	b, _ := hex.DecodeString(s)
	return b
}

func decodeStrict(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// Uint64ToBytes encodes n big endian, so encoded values sort like the numbers.
func Uint64ToBytes(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
