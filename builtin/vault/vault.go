// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/wasabi-swap-team/wasabi-swap-farm/builtin/reverts"
	"github.com/wasabi-swap-team/wasabi-swap-farm/builtin/storage"
	"github.com/wasabi-swap-team/wasabi-swap-farm/builtin/token"
	"github.com/wasabi-swap-team/wasabi-swap-farm/log"
	"github.com/wasabi-swap-team/wasabi-swap-farm/state"
	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

var logger = log.WithContext("pkg", "vault")

var (
	slotAdmin            = storage.NameToSlot("admin")
	slotAsset            = storage.NameToSlot("asset")
	slotFunder           = storage.NameToSlot("funder")
	slotCumulativeFunded = storage.NameToSlot("cumulative-funded")
	slotBeneficiaries    = storage.NameToSlot("beneficiaries")
)

// Vault is a vesting allocation ledger: an administrator funds a pool of
// entitlements which beneficiaries draw down proportionally to their
// basis-point share of cumulative funding, up to a hard cap.
//
// The farm instantiates it twice, for the contributors pool and the team
// pool, over the same implementation.
type Vault struct {
	addr  wasabi.Address
	state *state.State

	admin            *storage.Address
	asset            *storage.Address
	funder           *storage.Address
	cumulativeFunded *storage.Uint256
	beneficiaries    *storage.Mapping[wasabi.Address, *Beneficiary]
}

// New creates a vault instance bound to its contract address.
func New(addr wasabi.Address, st *state.State) *Vault {
	sctx := storage.NewContext(addr, st)
	return &Vault{
		addr:             addr,
		state:            st,
		admin:            storage.NewAddress(sctx, slotAdmin),
		asset:            storage.NewAddress(sctx, slotAsset),
		funder:           storage.NewAddress(sctx, slotFunder),
		cumulativeFunded: storage.NewUint256(sctx, slotCumulativeFunded),
		beneficiaries:    storage.NewMapping[wasabi.Address, *Beneficiary](sctx, slotBeneficiaries),
	}
}

// Address returns the vault's contract address.
func (v *Vault) Address() wasabi.Address {
	return v.addr
}

// Initialize binds the administrator, the vested asset ledger and the
// account allowed to credit mint-funded deposits. It fails if the vault
// is already initialized.
func (v *Vault) Initialize(admin, asset, funder wasabi.Address) error {
	current, err := v.admin.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.New(reverts.InvalidConfig, "vault %v already initialized", v.addr)
	}
	v.admin.Set(admin)
	v.asset.Set(asset)
	v.funder.Set(funder)
	return nil
}

// RegisterBeneficiary adds a beneficiary with a lifetime cap and a
// basis-point share of every funding deposit. Registration is retroactive:
// the share applies to all funding ever received, not only future deposits.
// Admin only.
func (v *Vault) RegisterBeneficiary(caller, account wasabi.Address, cap *big.Int, shareBps uint32) (err error) {
	defer v.revertIfErr(v.state.NewCheckpoint(), &err)

	if err := v.checkAdmin(caller); err != nil {
		return err
	}
	if shareBps > wasabi.BpsDenominator {
		return reverts.New(reverts.InvalidConfig, "share %d exceeds %d bps", shareBps, wasabi.BpsDenominator)
	}
	if cap.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative cap")
	}
	b, err := v.beneficiaries.Get(account)
	if err != nil {
		return err
	}
	if !b.IsEmpty() {
		return reverts.New(reverts.InvalidConfig, "beneficiary %v already registered", account)
	}
	err = v.beneficiaries.Set(account, &Beneficiary{
		Registered: true,
		ShareBps:   shareBps,
		Cap:        cap,
		Withdrawn:  new(big.Int),
	})
	if err != nil {
		return err
	}

	logger.Info("registered beneficiary", "vault", v.addr, "account", account, "cap", cap, "shareBps", shareBps)
	return nil
}

// Deposit funds the vault. The amount is pulled from the caller's balance
// on the vested asset ledger; the caller must be the administrator or the
// funder and must have approved the vault beforehand.
func (v *Vault) Deposit(caller wasabi.Address, amount *big.Int) (err error) {
	defer v.revertIfErr(v.state.NewCheckpoint(), &err)

	if err := v.checkFunding(caller, amount); err != nil {
		return err
	}
	asset, err := v.assetLedger()
	if err != nil {
		return err
	}
	if err := asset.TransferFrom(v.addr, caller, v.addr, amount); err != nil {
		return err
	}
	if err := v.cumulativeFunded.Add(amount); err != nil {
		return err
	}

	logger.Debug("vault funded", "vault", v.addr, "amount", amount)
	return nil
}

// Credit records a funding deposit whose units are already in the vault's
// custody, typically minted there by the reward engine. Funder only.
func (v *Vault) Credit(caller wasabi.Address, amount *big.Int) (err error) {
	defer v.revertIfErr(v.state.NewCheckpoint(), &err)

	funder, err := v.funder.Get()
	if err != nil {
		return err
	}
	if caller != funder {
		return reverts.New(reverts.Unauthorized, "%v is not the vault funder", caller)
	}
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative funding amount")
	}
	return v.cumulativeFunded.Add(amount)
}

// Withdraw pays out part of the caller's available amount.
func (v *Vault) Withdraw(caller wasabi.Address, amount *big.Int) (err error) {
	defer v.revertIfErr(v.state.NewCheckpoint(), &err)

	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative withdrawal amount")
	}
	b, err := v.beneficiaries.Get(caller)
	if err != nil {
		return err
	}
	if b.IsEmpty() {
		return reverts.New(reverts.Unauthorized, "%v is not a registered beneficiary", caller)
	}
	funded, err := v.cumulativeFunded.Get()
	if err != nil {
		return err
	}
	if b.Available(funded).Cmp(amount) < 0 {
		return reverts.New(reverts.InsufficientAvailable, "withdrawal of %v exceeds available amount", amount)
	}

	b.Withdrawn = new(big.Int).Add(b.Withdrawn, amount)
	if err := v.beneficiaries.Set(caller, b); err != nil {
		return err
	}
	asset, err := v.assetLedger()
	if err != nil {
		return err
	}
	if err := asset.Transfer(v.addr, caller, amount); err != nil {
		return err
	}

	logger.Info("beneficiary withdrew", "vault", v.addr, "account", caller, "amount", amount)
	return nil
}

// Revoke zeroes the beneficiary's share, forfeiting both future vesting and
// any unwithdrawn vested amount. Irreversible. Admin only.
func (v *Vault) Revoke(caller, account wasabi.Address) (err error) {
	defer v.revertIfErr(v.state.NewCheckpoint(), &err)

	if err := v.checkAdmin(caller); err != nil {
		return err
	}
	b, err := v.beneficiaries.Get(account)
	if err != nil {
		return err
	}
	if b.IsEmpty() {
		return reverts.New(reverts.InvalidConfig, "beneficiary %v is not registered", account)
	}
	b.ShareBps = 0
	if err := v.beneficiaries.Set(account, b); err != nil {
		return err
	}

	logger.Info("revoked beneficiary", "vault", v.addr, "account", account)
	return nil
}

// EmergencyWithdraw moves part of the vault's custody directly to the
// administrator, bypassing per-beneficiary accounting. CumulativeFunded is
// left untouched, so aggregate entitlement can afterwards exceed custody;
// late beneficiary withdrawals then fail at the asset ledger. Admin only.
func (v *Vault) EmergencyWithdraw(caller wasabi.Address, amount *big.Int) (err error) {
	defer v.revertIfErr(v.state.NewCheckpoint(), &err)

	if err := v.checkAdmin(caller); err != nil {
		return err
	}
	asset, err := v.assetLedger()
	if err != nil {
		return err
	}
	if err := asset.Transfer(v.addr, caller, amount); err != nil {
		return err
	}

	logger.Warn("emergency withdrawal", "vault", v.addr, "amount", amount)
	return nil
}

// Available returns the amount the account may currently withdraw.
func (v *Vault) Available(account wasabi.Address) (*big.Int, error) {
	b, err := v.beneficiaries.Get(account)
	if err != nil {
		return nil, err
	}
	funded, err := v.cumulativeFunded.Get()
	if err != nil {
		return nil, err
	}
	return b.Available(funded), nil
}

// RegisteredStatus returns whether the account is a registered beneficiary.
func (v *Vault) RegisteredStatus(account wasabi.Address) (bool, error) {
	b, err := v.beneficiaries.Get(account)
	if err != nil {
		return false, err
	}
	return !b.IsEmpty(), nil
}

// RegisteredCap returns the account's lifetime entitlement cap.
func (v *Vault) RegisteredCap(account wasabi.Address) (*big.Int, error) {
	b, err := v.beneficiaries.Get(account)
	if err != nil {
		return nil, err
	}
	if b.Cap == nil {
		return new(big.Int), nil
	}
	return b.Cap, nil
}

// ShareBps returns the account's share of funding deposits in basis points.
func (v *Vault) ShareBps(account wasabi.Address) (uint32, error) {
	b, err := v.beneficiaries.Get(account)
	if err != nil {
		return 0, err
	}
	return b.ShareBps, nil
}

// CumulativeFunded returns the sum of all funding deposits ever received.
func (v *Vault) CumulativeFunded() (*big.Int, error) {
	return v.cumulativeFunded.Get()
}

// Admin returns the vault administrator.
func (v *Vault) Admin() (wasabi.Address, error) {
	return v.admin.Get()
}

// Asset returns the address of the vested asset ledger.
func (v *Vault) Asset() (wasabi.Address, error) {
	return v.asset.Get()
}

func (v *Vault) assetLedger() (*token.Token, error) {
	asset, err := v.asset.Get()
	if err != nil {
		return nil, err
	}
	return token.New(asset, v.state), nil
}

func (v *Vault) checkAdmin(caller wasabi.Address) error {
	admin, err := v.admin.Get()
	if err != nil {
		return err
	}
	if caller != admin {
		return reverts.New(reverts.Unauthorized, "%v is not the vault admin", caller)
	}
	return nil
}

func (v *Vault) checkFunding(caller wasabi.Address, amount *big.Int) error {
	admin, err := v.admin.Get()
	if err != nil {
		return err
	}
	funder, err := v.funder.Get()
	if err != nil {
		return err
	}
	if caller != admin && caller != funder {
		return reverts.New(reverts.Unauthorized, "%v may not fund the vault", caller)
	}
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative funding amount")
	}
	return nil
}

// revertIfErr drops all state changes of the enclosing call when it fails.
func (v *Vault) revertIfErr(checkpoint int, err *error) {
	if *err != nil {
		v.state.RevertTo(checkpoint)
	}
}
