// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

// Source reads a committed storage value of the host ledger.
// It returns the raw value and whether the key exists.
type Source func(addr wasabi.Address, key wasabi.Bytes32) (rlp.RawValue, bool)

type storageKey struct {
	addr wasabi.Address
	key  wasabi.Bytes32
}

// State presents the per-call view of contract storage on the host ledger.
//
// The host serializes all state-changing calls, so State needs no locking.
// Checkpoint/RevertTo give each public operation all-or-nothing semantics.
type State struct {
	sm *stackedMap[storageKey, rlp.RawValue]
}

// New creates a state instance with an empty committed layer.
// It is the in-memory stand-in for the host ledger used in tests and tooling.
func New() *State {
	return NewWithSource(func(wasabi.Address, wasabi.Bytes32) (rlp.RawValue, bool) {
		return nil, false
	})
}

// NewWithSource creates a state instance reading through to src.
func NewWithSource(src Source) *State {
	sm := newStackedMap(func(k storageKey) (rlp.RawValue, bool) {
		return src(k.addr, k.key)
	})
	sm.Push() // base layer for writes
	return &State{sm: sm}
}

// GetRawStorage returns the storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr wasabi.Address, key wasabi.Bytes32) (rlp.RawValue, error) {
	raw, _ := s.sm.Get(storageKey{addr, key})
	return raw, nil
}

// SetRawStorage sets the storage value in rlp raw.
func (s *State) SetRawStorage(addr wasabi.Address, key wasabi.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns the word-sized storage value for the given address and key.
func (s *State) GetStorage(addr wasabi.Address, key wasabi.Bytes32) (wasabi.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return wasabi.Bytes32{}, err
	}
	if len(raw) == 0 {
		return wasabi.Bytes32{}, nil
	}
	_, content, _, err := rlp.Split(raw)
	if err != nil {
		return wasabi.Bytes32{}, err
	}
	return wasabi.BytesToBytes32(content), nil
}

// SetStorage sets the word-sized storage value for the given address and key.
func (s *State) SetStorage(addr wasabi.Address, key, value wasabi.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// EncodeStorage sets the storage value encoded by the given enc method.
func (s *State) EncodeStorage(addr wasabi.Address, key wasabi.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return err
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage gets and decodes the storage value.
func (s *State) DecodeStorage(addr wasabi.Address, key wasabi.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	return dec(raw)
}

// NewCheckpoint makes a checkpoint of the current state.
// It returns the checkpoint to be passed to RevertTo.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts the state to the given checkpoint.
// Reverted checkpoints are invalidated.
func (s *State) RevertTo(checkpoint int) {
	s.sm.PopTo(checkpoint)
}
