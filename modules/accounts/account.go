package accounts

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	pec256 "github.com/polarysfoundation/pec-256"
	"github.com/polarysfoundation/polarys-bio/modules/accounts/keystore"
	"github.com/polarysfoundation/polarys-bio/modules/common"
	"github.com/sirupsen/logrus"
)

var ErrNoAccounts = errors.New("no accounts")

type Accounts struct {
	dir      string
	accounts map[common.Address]*keystore.Wallet
	mutex    sync.RWMutex
	log      *logrus.Logger
}

// InitAccounts loads the locked wallets stored under datadir/keystore.
func InitAccounts(datadir string, log *logrus.Logger) (*Accounts, error) {
	a := &Accounts{
		dir:      filepath.Join(datadir, "keystore"),
		accounts: make(map[common.Address]*keystore.Wallet),
		log:      log,
	}

	if err := a.scan(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Accounts) NewAccount(passphrase []byte) (common.Address, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	w, err := keystore.NewWallet(a.dir, passphrase, a.log)
	if err != nil {
		a.log.Warn(err)
		return common.Address{}, err
	}

	a.accounts[w.Address()] = w
	return w.Address(), nil
}

// Addresses lists known accounts in byte order.
func (a *Accounts) Addresses() []common.Address {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	addrs := make([]common.Address, 0, len(a.accounts))
	for addr := range a.accounts {
		addrs = append(addrs, addr)
	}
	slices.SortFunc(addrs, func(x, y common.Address) int {
		return bytes.Compare(x[:], y[:])
	})
	return addrs
}

// Coinbase returns the first account, creating one with passphrase when none
// exists, and unlocks it.
func (a *Accounts) Coinbase(passphrase []byte) (common.Address, error) {
	addrs := a.Addresses()
	if len(addrs) == 0 {
		return a.NewAccount(passphrase)
	}

	if err := a.Unlock(addrs[0], passphrase); err != nil {
		return common.Address{}, err
	}
	return addrs[0], nil
}

func (a *Accounts) Unlock(account common.Address, passphrase []byte) error {
	w, err := a.wallet(account)
	if err != nil {
		return err
	}
	return w.Unlock(passphrase)
}

func (a *Accounts) Lock(account common.Address) error {
	w, err := a.wallet(account)
	if err != nil {
		return err
	}
	w.Lock()
	return nil
}

func (a *Accounts) SignHash(account common.Address, h common.Hash) ([]byte, error) {
	w, err := a.wallet(account)
	if err != nil {
		return nil, err
	}
	return w.SignHash(h)
}

func (a *Accounts) PubKey(account common.Address) (pec256.PubKey, error) {
	w, err := a.wallet(account)
	if err != nil {
		return pec256.PubKey{}, err
	}
	return w.PubKey()
}

func (a *Accounts) wallet(account common.Address) (*keystore.Wallet, error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if len(a.accounts) == 0 {
		return nil, ErrNoAccounts
	}

	w, ok := a.accounts[account]
	if !ok {
		return nil, fmt.Errorf("%w: %s", keystore.ErrAccountNotFound, account)
	}
	return w, nil
}

func (a *Accounts) scan() error {
	addrs, err := keystore.ListAccounts(a.dir)
	if err != nil {
		return err
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	for _, addr := range addrs {
		if _, ok := a.accounts[addr]; !ok {
			a.accounts[addr] = keystore.InitWalletSecure(a.dir, addr, a.log)
		}
	}
	return nil
}
