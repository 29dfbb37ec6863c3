// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/wasabi-swap-team/wasabi-swap-farm/state"
	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

// Context binds typed storage accessors to a contract account.
type Context struct {
	address wasabi.Address
	state   *state.State
}

func NewContext(address wasabi.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Address() wasabi.Address {
	return c.address
}

// NameToSlot derives a storage slot from a variable name.
func NameToSlot(name string) wasabi.Bytes32 {
	return wasabi.BytesToBytes32([]byte(name))
}
