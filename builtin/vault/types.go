// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

// Beneficiary is a vesting allocation record.
// Records are never deleted; revocation zeroes ShareBps.
type Beneficiary struct {
	Registered bool
	ShareBps   uint32   // share of every funding deposit, parts per 10000
	Cap        *big.Int // maximum lifetime entitlement
	Withdrawn  *big.Int // cumulative amount paid out
}

// IsEmpty returns whether the record holds no registration.
func (b *Beneficiary) IsEmpty() bool {
	return !b.Registered
}

// Available returns the amount the beneficiary may withdraw given the
// ledger's cumulative funding. It is a pure function of cumulative state:
// min(cap, cumulativeFunded*shareBps/10000) - withdrawn, clamped at zero.
func (b *Beneficiary) Available(cumulativeFunded *big.Int) *big.Int {
	if b.IsEmpty() {
		return new(big.Int)
	}
	vested := new(big.Int).Mul(cumulativeFunded, new(big.Int).SetUint64(uint64(b.ShareBps)))
	vested.Div(vested, big.NewInt(wasabi.BpsDenominator))
	if b.Cap != nil && vested.Cmp(b.Cap) > 0 {
		vested.Set(b.Cap)
	}
	withdrawn := b.Withdrawn
	if withdrawn == nil {
		withdrawn = new(big.Int)
	}
	available := vested.Sub(vested, withdrawn)
	if available.Sign() < 0 {
		return new(big.Int)
	}
	return available
}
