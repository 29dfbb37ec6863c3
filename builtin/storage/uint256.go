// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/wasabi-swap-team/wasabi-swap-farm/builtin/reverts"
	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

// Uint256 is a wrapper for storage and retrieval of an unsigned 256-bit
// integer, similar to an uint256 variable in a smart contract.
type Uint256 struct {
	context *Context
	pos     wasabi.Bytes32
}

func NewUint256(context *Context, slot wasabi.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

// Set stores the value. Values that do not fit 256 bits or are negative
// are rejected instead of silently truncated.
func (u *Uint256) Set(value *big.Int) error {
	if _, overflow := uint256.FromBig(value); overflow || value.Sign() < 0 {
		return reverts.New(reverts.ArithmeticOverflow, "value out of uint256 range at slot %v", u.pos.AbbrevString())
	}
	u.context.state.SetStorage(u.context.address, u.pos, wasabi.BytesToBytes32(value.Bytes()))
	return nil
}

func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(storage.Add(storage, value))
}

func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(storage.Sub(storage, value))
}
