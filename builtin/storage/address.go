// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

// Address is a wrapper for storage and retrieval of an account address,
// similar to an address variable in a smart contract.
type Address struct {
	context *Context
	pos     wasabi.Bytes32
}

func NewAddress(context *Context, slot wasabi.Bytes32) *Address {
	return &Address{context: context, pos: slot}
}

func (a *Address) Get() (wasabi.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return wasabi.Address{}, err
	}
	return wasabi.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr wasabi.Address) {
	a.context.state.SetStorage(a.context.address, a.pos, wasabi.BytesToBytes32(addr.Bytes()))
}
