package crypto

import (
	"errors"
	"fmt"
	"math/big"

	pec256 "github.com/polarysfoundation/pec-256"
	pm256 "github.com/polarysfoundation/pm-256"
	"github.com/polarysfoundation/polarys-bio/modules/common"
)

const SignatureLen = 64

var c = pec256.PEC256()

var ErrInvalidSignature = errors.New("invalid signature")

func Pm256(b []byte) []byte {
	buf := make([]byte, 32)
	h := pm256.New256()
	h.Write(b)
	h.Sum(buf[:0])

	return buf
}

// HashOf returns the pm-256 digest of b as a common.Hash.
func HashOf(b []byte) common.Hash {
	return common.BytesToHash(Pm256(b))
}

func GenerateKey() (pec256.PrivKey, pec256.PubKey, error) {
	priv, pub, _, err := c.GenerateKeyPair()
	if err != nil {
		return pec256.PrivKey{}, pec256.PubKey{}, fmt.Errorf("generating keypair: %w", err)
	}

	return priv, pub, nil
}

func Sign(data common.Hash, priv pec256.PrivKey) (*big.Int, *big.Int, error) {
	return c.Sign(data.Bytes(), priv.BigInt())
}

func Verify(data common.Hash, r, s *big.Int, pub pec256.PubKey) (bool, error) {
	return c.Verify(data[:], r, s, pub.BigInt())
}

// SignHash signs h and encodes the signature as r || s, 32 bytes each.
func SignHash(h common.Hash, priv pec256.PrivKey) ([]byte, error) {
	r, s, err := Sign(h, priv)
	if err != nil {
		return nil, err
	}

	signature := make([]byte, SignatureLen)
	r.FillBytes(signature[:32])
	s.FillBytes(signature[32:])
	return signature, nil
}

// VerifyHash checks an r || s signature produced by SignHash.
func VerifyHash(h common.Hash, signature []byte, pub pec256.PubKey) (bool, error) {
	if len(signature) != SignatureLen {
		return false, ErrInvalidSignature
	}

	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])
	return Verify(h, r, s, pub)
}

func PubKeyToAddress(pub pec256.PubKey) common.Address {
	h := Pm256(pub.Bytes())
	return common.BytesToAddress(h[len(h)-common.AddrLen:])
}
