// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chef

import (
	"encoding/binary"
	"math/big"

	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

// Pool is a staking pool record. Pools are addressed by a stable index and
// never deleted; a deactivated pool keeps its record with weight zero.
// Pool 0 is reserved for self-staking of the reward unit.
type Pool struct {
	Asset             wasabi.Address // ledger of the accepted staked asset
	Weight            *big.Int       // relative share of the total emission
	AccRewardPerShare *big.Int       // fixed point, scaled by wasabi.RewardScale
	LastSettledHeight uint32
	TotalStaked       *big.Int
}

// IsEmpty returns whether the record holds no pool.
func (p *Pool) IsEmpty() bool {
	return p.Asset.IsZero()
}

// Position is a user's stake in one pool.
type Position struct {
	Staked     *big.Int
	RewardDebt *big.Int // portion of AccRewardPerShare already attributed, fixed point
}

// IsEmpty returns whether the position holds no stake and no debt.
func (p *Position) IsEmpty() bool {
	return p.Staked.Sign() == 0 && p.RewardDebt.Sign() == 0
}

// PendingReward returns the reward accrued to the position since its last
// settlement against the given per-share accumulator.
func (p *Position) PendingReward(accRewardPerShare *big.Int) *big.Int {
	pending := new(big.Int).Mul(p.Staked, accRewardPerShare)
	pending.Div(pending, wasabi.RewardScale)
	pending.Sub(pending, p.RewardDebt)
	if pending.Sign() < 0 {
		return new(big.Int)
	}
	return pending
}

// settleDebt returns the reward debt of the position as of the given
// accumulator value.
func (p *Position) settleDebt(accRewardPerShare *big.Int) *big.Int {
	debt := new(big.Int).Mul(p.Staked, accRewardPerShare)
	return debt.Div(debt, wasabi.RewardScale)
}

// Split is the three-way emission split: stakers, team vault, contributors
// vault. The three percentages always sum to exactly 100.
type Split struct {
	Staker       uint32
	Team         uint32
	Contributors uint32
}

// Sum returns the sum of the three percentages. The sum is widened to
// uint64 so oversized entries cannot wrap around to a valid total.
func (s Split) Sum() uint64 {
	return uint64(s.Staker) + uint64(s.Team) + uint64(s.Contributors)
}

type poolKey uint32

func (k poolKey) Bytes() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(k))
	return b
}

type positionKey struct {
	pool    uint32
	account wasabi.Address
}

func (k positionKey) Bytes() []byte {
	b := make([]byte, 4, 4+wasabi.AddressLength)
	binary.BigEndian.PutUint32(b, k.pool)
	return append(b, k.account.Bytes()...)
}
