package keystore

import (
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	pec256 "github.com/polarysfoundation/pec-256"
	"github.com/polarysfoundation/polarys-bio/modules/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	keyExt = ".key"

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	saltLen      = 16
)

// keyFile is the on-disk form of a private key, sealed with a key derived from
// the passphrase by argon2id.
type keyFile struct {
	Address    common.Address `json:"address"`
	PubKey     []byte         `json:"pubkey"`
	Salt       []byte         `json:"salt"`
	Nonce      []byte         `json:"nonce"`
	Ciphertext []byte         `json:"ciphertext"`
}

func deriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}

func sealKey(addr common.Address, priv pec256.PrivKey, pub pec256.PubKey, passphrase []byte) (*keyFile, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	plain := priv.BigInt().FillBytes(make([]byte, 32))
	return &keyFile{
		Address:    addr,
		PubKey:     append([]byte(nil), pub[:]...),
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plain, addr.Bytes()),
	}, nil
}

func (kf *keyFile) open(passphrase []byte) (pec256.PrivKey, error) {
	aead, err := chacha20poly1305.New(deriveKey(passphrase, kf.Salt))
	if err != nil {
		return pec256.PrivKey{}, err
	}

	plain, err := aead.Open(nil, kf.Nonce, kf.Ciphertext, kf.Address.Bytes())
	if err != nil {
		return pec256.PrivKey{}, ErrWrongPassphrase
	}

	return pec256.BytesToPrivKey(plain), nil
}

func keyPath(dir string, addr common.Address) string {
	return filepath.Join(dir, addr.CXID()+keyExt)
}

func writeKeyFile(dir string, kf *keyFile) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := json.Marshal(kf)
	if err != nil {
		return err
	}

	return os.WriteFile(keyPath(dir, kf.Address), data, 0o600)
}

func readKeyFile(dir string, addr common.Address) (*keyFile, error) {
	data, err := os.ReadFile(keyPath(dir, addr))
	if os.IsNotExist(err) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	kf := new(keyFile)
	if err := json.Unmarshal(data, kf); err != nil {
		return nil, err
	}
	if kf.Address != addr {
		return nil, ErrAddressMismatch
	}
	return kf, nil
}

func listKeyFiles(dir string) ([]common.Address, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var addrs []common.Address
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, keyExt) {
			continue
		}
		var addr common.Address
		if err := addr.UnmarshalText([]byte(strings.TrimSuffix(name, keyExt))); err != nil {
			continue
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
