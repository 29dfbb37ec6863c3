// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

// Value is an RLP-encoded record stored at a fixed slot of the owning
// contract, similar to a struct variable in a smart contract.
type Value[V any] struct {
	context *Context
	pos     wasabi.Bytes32
}

func NewValue[V any](context *Context, pos wasabi.Bytes32) *Value[V] {
	return &Value[V]{context: context, pos: pos}
}

func (v *Value[V]) Get() (value V, err error) {
	err = v.context.state.DecodeStorage(v.context.address, v.pos, func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (v *Value[V]) Set(value V) error {
	return v.context.state.EncodeStorage(v.context.address, v.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}
