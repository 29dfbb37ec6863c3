// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/wasabi-swap-team/wasabi-swap-farm/builtin/reverts"
	"github.com/wasabi-swap-team/wasabi-swap-farm/builtin/storage"
	"github.com/wasabi-swap-team/wasabi-swap-farm/state"
	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

var (
	slotTotalSupply = storage.NameToSlot("total-supply")
	slotMaster      = storage.NameToSlot("master")
	slotHandedOver  = storage.NameToSlot("master-handed-over")
	slotBalances    = storage.NameToSlot("balances")
	slotAllowances  = storage.NameToSlot("allowances")
)

func allowanceKey(owner, spender wasabi.Address) wasabi.Bytes32 {
	return wasabi.Blake2b(owner.Bytes(), spender.Bytes())
}

// Token is a fungible ledger hosted in contract storage.
//
// Supply only changes through master-gated Mint/Burn; transfers conserve
// balances. The farm uses two instances: the reward unit and the staking
// receipt unit, both mastered by the reward engine after bootstrap.
type Token struct {
	addr wasabi.Address

	totalSupply *storage.Uint256
	master      *storage.Address
	handedOver  *storage.Bool
	balances    *storage.Mapping[wasabi.Address, *big.Int]
	allowances  *storage.Mapping[wasabi.Bytes32, *big.Int]
}

// New creates a token instance bound to its contract address.
func New(addr wasabi.Address, st *state.State) *Token {
	sctx := storage.NewContext(addr, st)
	return &Token{
		addr:        addr,
		totalSupply: storage.NewUint256(sctx, slotTotalSupply),
		master:      storage.NewAddress(sctx, slotMaster),
		handedOver:  storage.NewBool(sctx, slotHandedOver),
		balances:    storage.NewMapping[wasabi.Address, *big.Int](sctx, slotBalances),
		allowances:  storage.NewMapping[wasabi.Bytes32, *big.Int](sctx, slotAllowances),
	}
}

// Address returns the ledger's contract address.
func (t *Token) Address() wasabi.Address {
	return t.addr
}

// Initialize sets the master account. It fails if the ledger already has one.
func (t *Token) Initialize(master wasabi.Address) error {
	current, err := t.master.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.New(reverts.InvalidConfig, "ledger %v already initialized", t.addr)
	}
	t.master.Set(master)
	return nil
}

// Master returns the account allowed to mint and burn.
func (t *Token) Master() (wasabi.Address, error) {
	return t.master.Get()
}

// TransferMastership hands the mint/burn authority over to newMaster.
// The handover can happen exactly once over the ledger's lifetime.
func (t *Token) TransferMastership(caller, newMaster wasabi.Address) error {
	if err := t.checkMaster(caller); err != nil {
		return err
	}
	handedOver, err := t.handedOver.Get()
	if err != nil {
		return err
	}
	if handedOver {
		return reverts.New(reverts.Unauthorized, "mastership of %v already handed over", t.addr)
	}
	t.master.Set(newMaster)
	t.handedOver.Set(true)
	return nil
}

// TotalSupply returns the total amount of units in existence.
func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

// BalanceOf returns the balance of the given account.
func (t *Token) BalanceOf(addr wasabi.Address) (*big.Int, error) {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal, nil
}

// Transfer moves amount from one account to another.
func (t *Token) Transfer(from, to wasabi.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative transfer amount")
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return reverts.New(reverts.InsufficientCustody, "balance of %v is less than %v", from, amount)
	}
	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.balances.Set(from, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	return t.balances.Set(to, new(big.Int).Add(toBal, amount))
}

// Approve lets spender move up to amount out of owner's balance.
func (t *Token) Approve(owner, spender wasabi.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative allowance")
	}
	return t.allowances.Set(allowanceKey(owner, spender), amount)
}

// Allowance returns the remaining allowance from owner to spender.
func (t *Token) Allowance(owner, spender wasabi.Address) (*big.Int, error) {
	allowance, err := t.allowances.Get(allowanceKey(owner, spender))
	if err != nil {
		return nil, err
	}
	if allowance == nil {
		return new(big.Int), nil
	}
	return allowance, nil
}

// TransferFrom moves amount from one account to another on behalf of spender,
// consuming spender's allowance.
func (t *Token) TransferFrom(spender, from, to wasabi.Address, amount *big.Int) error {
	allowance, err := t.Allowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return reverts.New(reverts.Unauthorized, "allowance of %v for %v is less than %v", from, spender, amount)
	}
	if err := t.Transfer(from, to, amount); err != nil {
		return err
	}
	return t.allowances.Set(allowanceKey(from, spender), new(big.Int).Sub(allowance, amount))
}

// Mint creates amount units on the to account. Master only.
func (t *Token) Mint(caller, to wasabi.Address, amount *big.Int) error {
	if err := t.checkMaster(caller); err != nil {
		return err
	}
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative mint amount")
	}
	bal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.balances.Set(to, new(big.Int).Add(bal, amount)); err != nil {
		return err
	}
	return t.totalSupply.Add(amount)
}

// Burn destroys amount units on the from account. Master only.
func (t *Token) Burn(caller, from wasabi.Address, amount *big.Int) error {
	if err := t.checkMaster(caller); err != nil {
		return err
	}
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative burn amount")
	}
	bal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.New(reverts.InsufficientCustody, "balance of %v is less than %v", from, amount)
	}
	if err := t.balances.Set(from, new(big.Int).Sub(bal, amount)); err != nil {
		return err
	}
	return t.totalSupply.Sub(amount)
}

func (t *Token) checkMaster(caller wasabi.Address) error {
	master, err := t.master.Get()
	if err != nil {
		return err
	}
	if caller != master {
		return reverts.New(reverts.Unauthorized, "%v is not the ledger master", caller)
	}
	return nil
}
