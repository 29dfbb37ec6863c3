// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Reason classifies why a contract call was rejected.
type Reason int

const (
	// Unauthorized caller lacks the required role.
	Unauthorized Reason = iota + 1
	// InvalidConfig malformed administrator input.
	InvalidConfig
	// InsufficientStake withdraw/unstake exceeds the recorded position.
	InsufficientStake
	// InsufficientAvailable vesting withdrawal exceeds the available amount.
	InsufficientAvailable
	// InsufficientCustody a payout would exceed the actually held balance.
	// Signals an upstream accounting violation when raised on internal paths.
	InsufficientCustody
	// ArithmeticOverflow a computed value does not fit its storage width.
	ArithmeticOverflow
)

func (r Reason) String() string {
	switch r {
	case Unauthorized:
		return "unauthorized"
	case InvalidConfig:
		return "invalid config"
	case InsufficientStake:
		return "insufficient stake"
	case InsufficientAvailable:
		return "insufficient available balance"
	case InsufficientCustody:
		return "insufficient custody balance"
	case ArithmeticOverflow:
		return "arithmetic overflow"
	default:
		return "reverted"
	}
}

// ErrRevert is a contract-rule violation. The whole call it aborts
// leaves no state behind.
type ErrRevert struct {
	reason  Reason
	message string
}

func New(reason Reason, format string, args ...any) *ErrRevert {
	return &ErrRevert{
		reason:  reason,
		message: fmt.Sprintf(format, args...),
	}
}

func (e *ErrRevert) Error() string {
	return e.reason.String() + ": " + e.message
}

// Reason returns the classification of the revert.
func (e *ErrRevert) Reason() Reason {
	return e.reason
}

// IsRevert reports whether err is a contract-rule violation,
// as opposed to a host storage failure.
func IsRevert(err error) bool {
	var ve *ErrRevert
	return errors.As(err, &ve)
}

// Is reports whether err is a revert with the given reason.
func Is(err error, reason Reason) bool {
	var ve *ErrRevert
	if !errors.As(err, &ve) {
		return false
	}
	return ve.reason == reason
}
