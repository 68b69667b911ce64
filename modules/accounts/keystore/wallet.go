package keystore

import (
	"fmt"
	"sync"

	pec256 "github.com/polarysfoundation/pec-256"
	"github.com/polarysfoundation/polarys-bio/modules/common"
	"github.com/polarysfoundation/polarys-bio/modules/crypto"
	"github.com/sirupsen/logrus"
)

type Wallet struct {
	dir     string
	address common.Address
	priv    pec256.PrivKey
	pub     pec256.PubKey
	locked  bool
	mutex   sync.RWMutex
	log     *logrus.Logger
}

// InitWalletSecure opens the locked wallet for a stored account.
func InitWalletSecure(dir string, a common.Address, log *logrus.Logger) *Wallet {
	return &Wallet{
		dir:     dir,
		address: a,
		locked:  true,
		log:     log,
	}
}

// NewWallet creates a key, stores it under dir sealed with passphrase and
// returns the wallet unlocked.
func NewWallet(dir string, passphrase []byte, log *logrus.Logger) (*Wallet, error) {
	priv, pub, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	addr := crypto.PubKeyToAddress(pub)
	kf, err := sealKey(addr, priv, pub, passphrase)
	if err != nil {
		return nil, err
	}
	if err := writeKeyFile(dir, kf); err != nil {
		return nil, fmt.Errorf("failed to store key: %w", err)
	}

	log.WithField("address", addr).Info("created account")

	return &Wallet{
		dir:     dir,
		address: addr,
		priv:    priv,
		pub:     pub,
		log:     log,
	}, nil
}

func (w *Wallet) Address() common.Address {
	return w.address
}

func (w *Wallet) PubKey() (pec256.PubKey, error) {
	w.mutex.RLock()
	defer w.mutex.RUnlock()

	if w.locked {
		return pec256.PubKey{}, ErrLocked
	}
	return w.pub, nil
}

func (w *Wallet) SignHash(h common.Hash) ([]byte, error) {
	w.mutex.RLock()
	defer w.mutex.RUnlock()

	if w.locked {
		return nil, ErrLocked
	}
	return crypto.SignHash(h, w.priv)
}

func (w *Wallet) IsLocked() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.locked
}

func (w *Wallet) Lock() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.priv = pec256.PrivKey{}
	w.pub = pec256.PubKey{}
	w.locked = true
}

func (w *Wallet) Unlock(passphrase []byte) error {
	kf, err := readKeyFile(w.dir, w.address)
	if err != nil {
		return err
	}

	priv, err := kf.open(passphrase)
	if err != nil {
		return err
	}

	pub := pec256.BytesToPubKey(kf.PubKey)
	if crypto.PubKeyToAddress(pub) != w.address {
		return fmt.Errorf("%w: expected %s", ErrAddressMismatch, w.address)
	}
	if err := checkKeyPair(priv, pub); err != nil {
		return err
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.priv = priv
	w.pub = pub
	w.locked = false

	w.log.WithField("address", w.address).Debug("unlocked account")
	return nil
}

// checkKeyPair signs a digest of pub to confirm priv belongs to pub.
func checkKeyPair(priv pec256.PrivKey, pub pec256.PubKey) error {
	digest := crypto.HashOf(pub[:])
	sig, err := crypto.SignHash(digest, priv)
	if err != nil {
		return err
	}

	ok, err := crypto.VerifyHash(digest, sig, pub)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAddressMismatch
	}
	return nil
}

// ListAccounts returns the addresses that have a key file under dir.
func ListAccounts(dir string) ([]common.Address, error) {
	return listKeyFiles(dir)
}
