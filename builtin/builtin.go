// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin hosts the native contracts of the farm: the fungible
// ledgers, the two vesting vaults and the reward engine, each bound to a
// well-known address derived from its name.
package builtin

import (
	"math/big"

	"github.com/wasabi-swap-team/wasabi-swap-farm/builtin/chef"
	"github.com/wasabi-swap-team/wasabi-swap-farm/builtin/token"
	"github.com/wasabi-swap-team/wasabi-swap-farm/builtin/vault"
	"github.com/wasabi-swap-team/wasabi-swap-farm/state"
	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

// Well-known contract addresses.
var (
	WasabiAddress            = wasabi.BytesToAddress([]byte("wasabi"))
	StakedWasabiAddress      = wasabi.BytesToAddress([]byte("staked-wasabi"))
	TeamVaultAddress         = wasabi.BytesToAddress([]byte("team-vault"))
	ContributorsVaultAddress = wasabi.BytesToAddress([]byte("contributors-vault"))
	ChefAddress              = wasabi.BytesToAddress([]byte("chef"))
)

// Wasabi returns the reward token ledger bound to the given state.
func Wasabi(st *state.State) *token.Token {
	return token.New(WasabiAddress, st)
}

// StakedWasabi returns the staking receipt ledger bound to the given state.
func StakedWasabi(st *state.State) *token.Token {
	return token.New(StakedWasabiAddress, st)
}

// TeamVault returns the team vesting vault bound to the given state.
func TeamVault(st *state.State) *vault.Vault {
	return vault.New(TeamVaultAddress, st)
}

// ContributorsVault returns the contributors vesting vault bound to the
// given state.
func ContributorsVault(st *state.State) *vault.Vault {
	return vault.New(ContributorsVaultAddress, st)
}

// Chef returns the reward engine bound to the given state.
func Chef(st *state.State) *chef.Chef {
	return chef.New(ChefAddress, st)
}

// Beneficiary is a genesis vesting allocation.
type Beneficiary struct {
	Account  wasabi.Address
	Cap      *big.Int
	ShareBps uint32
}

// BootstrapConfig are the genesis parameters of the farm.
type BootstrapConfig struct {
	Admin         wasabi.Address
	EmissionRate  *big.Int
	Split         chef.Split
	StartHeight   uint32
	StakingWeight *big.Int

	// vesting allocations registered at genesis
	Team         []Beneficiary
	Contributors []Beneficiary
}

// Bootstrap deploys and wires the whole farm on the given state: both
// token ledgers, the two vaults funded by the engine, and the engine
// itself, which receives mastership of both ledgers so it alone can mint.
func Bootstrap(st *state.State, cfg BootstrapConfig, height uint32) error {
	wsb := Wasabi(st)
	if err := wsb.Initialize(cfg.Admin); err != nil {
		return err
	}
	swsb := StakedWasabi(st)
	if err := swsb.Initialize(cfg.Admin); err != nil {
		return err
	}
	teamVault := TeamVault(st)
	if err := teamVault.Initialize(cfg.Admin, WasabiAddress, ChefAddress); err != nil {
		return err
	}
	contribVault := ContributorsVault(st)
	if err := contribVault.Initialize(cfg.Admin, WasabiAddress, ChefAddress); err != nil {
		return err
	}
	for _, b := range cfg.Team {
		if err := teamVault.RegisterBeneficiary(cfg.Admin, b.Account, b.Cap, b.ShareBps); err != nil {
			return err
		}
	}
	for _, b := range cfg.Contributors {
		if err := contribVault.RegisterBeneficiary(cfg.Admin, b.Account, b.Cap, b.ShareBps); err != nil {
			return err
		}
	}
	err := Chef(st).Initialize(chef.Config{
		Admin:             cfg.Admin,
		RewardToken:       WasabiAddress,
		ReceiptToken:      StakedWasabiAddress,
		TeamVault:         TeamVaultAddress,
		ContributorsVault: ContributorsVaultAddress,
		EmissionRate:      cfg.EmissionRate,
		Split:             cfg.Split,
		StartHeight:       cfg.StartHeight,
		StakingWeight:     cfg.StakingWeight,
	}, height)
	if err != nil {
		return err
	}
	if err := wsb.TransferMastership(cfg.Admin, ChefAddress); err != nil {
		return err
	}
	return swsb.TransferMastership(cfg.Admin, ChefAddress)
}
