package common

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestAddress_SetBytes(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  Address
	}{
		{
			name:  "nil bytes",
			input: nil,
			want:  Address{},
		},
		{
			name:  "shorter than AddrLen",
			input: []byte{0x01, 0x02, 0x03},
			want: func() Address {
				var a Address
				copy(a[AddrLen-3:], []byte{0x01, 0x02, 0x03})
				return a
			}(),
		},
		{
			name:  "longer than AddrLen",
			input: append(bytes.Repeat([]byte{0xBB}, 10), bytes.Repeat([]byte{0xCC}, AddrLen)...),
			want: func() Address {
				var a Address
				copy(a[:], bytes.Repeat([]byte{0xCC}, AddrLen))
				return a
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BytesToAddress(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BytesToAddress(%x) = %x, want %x", tt.input, got, tt.want)
			}
		})
	}
}

func TestAddress_Encodings(t *testing.T) {
	a := BytesToAddress(bytes.Repeat([]byte{0x1F}, AddrLen))
	wantCXID := "1cx" + strings.Repeat("1f", AddrLen)
	wantHex := "0x" + strings.Repeat("1f", AddrLen)

	if got := a.String(); got != wantCXID {
		t.Errorf("Address.String() = %q, want %q", got, wantCXID)
	}
	if got := a.Hex(); got != wantHex {
		t.Errorf("Address.Hex() = %q, want %q", got, wantHex)
	}
	if got := CXIDToAddress(wantCXID); got != a {
		t.Errorf("CXIDToAddress(%q) = %x, want %x", wantCXID, got, a)
	}
	if got := HexToAddress(wantHex); got != a {
		t.Errorf("HexToAddress(%q) = %x, want %x", wantHex, got, a)
	}
	if got := HashToAddress(BytesToHash(a.Bytes())); got != a {
		t.Errorf("HashToAddress() = %x, want %x", got, a)
	}
}

func TestAddress_JSON(t *testing.T) {
	a := BytesToAddress([]byte("validator_address_0x123"))

	b, err := json.Marshal(struct {
		Miner Address `json:"miner"`
	}{a})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	var got struct {
		Miner Address `json:"miner"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("json.Unmarshal(%s) error = %v", b, err)
	}
	if got.Miner != a {
		t.Errorf("json round trip = %x, want %x", got.Miner, a)
	}
	if a.IsZero() || !(Address{}).IsZero() {
		t.Errorf("Address.IsZero() mismatch")
	}
}
