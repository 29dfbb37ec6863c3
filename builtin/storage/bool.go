// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

// Bool is a wrapper for storage and retrieval of a boolean flag.
type Bool struct {
	context *Context
	pos     wasabi.Bytes32
}

func NewBool(context *Context, slot wasabi.Bytes32) *Bool {
	return &Bool{context: context, pos: slot}
}

func (b *Bool) Get() (bool, error) {
	storage, err := b.context.state.GetStorage(b.context.address, b.pos)
	if err != nil {
		return false, err
	}
	return !storage.IsZero(), nil
}

func (b *Bool) Set(value bool) {
	var storage wasabi.Bytes32
	if value {
		storage[31] = 1
	}
	b.context.state.SetStorage(b.context.address, b.pos, storage)
}
