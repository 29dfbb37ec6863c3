// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chef

import (
	"math/big"

	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

// emissionState is the engine-wide configuration a settlement runs under.
type emissionState struct {
	rate        *big.Int // reward units emitted per height
	split       Split
	totalWeight *big.Int
	enabled     bool
}

// settlement is the outcome of advancing a pool to a new height.
// The amounts are newly minted units: staker goes to engine custody and
// into the pool's per-share accumulator, team and contributors fund the
// two vesting vaults.
type settlement struct {
	pool         Pool
	staker       *big.Int
	team         *big.Int
	contributors *big.Int
}

func (s *settlement) mintsAnything() bool {
	return s.staker.Sign() > 0 || s.team.Sign() > 0 || s.contributors.Sign() > 0
}

// settle advances the pool to the given height and computes the emission
// minted for the elapsed interval. It is pure: transfer side effects are
// left to the caller.
//
// All divisions truncate; accrual lost to truncation is forfeited, not
// carried forward. When emission is disabled, or there is nothing staked,
// or the pool carries no weight, the height still advances so that
// re-enabling emission cannot produce a retroactive burst.
func settle(p *Pool, height uint32, es emissionState) settlement {
	out := settlement{
		pool: Pool{
			Asset:             p.Asset,
			Weight:            new(big.Int).Set(p.Weight),
			AccRewardPerShare: new(big.Int).Set(p.AccRewardPerShare),
			LastSettledHeight: p.LastSettledHeight,
			TotalStaked:       new(big.Int).Set(p.TotalStaked),
		},
		staker:       new(big.Int),
		team:         new(big.Int),
		contributors: new(big.Int),
	}
	if height <= p.LastSettledHeight {
		return out
	}
	out.pool.LastSettledHeight = height

	if !es.enabled ||
		es.totalWeight.Sign() == 0 ||
		p.TotalStaked.Sign() == 0 ||
		p.Weight.Sign() == 0 {
		return out
	}

	elapsed := new(big.Int).SetUint64(uint64(height - p.LastSettledHeight))
	emission := elapsed.Mul(elapsed, es.rate)
	emission.Mul(emission, p.Weight)
	emission.Div(emission, es.totalWeight)

	percent := big.NewInt(wasabi.PercentDenominator)
	out.staker.Mul(emission, new(big.Int).SetUint64(uint64(es.split.Staker))).Div(out.staker, percent)
	out.team.Mul(emission, new(big.Int).SetUint64(uint64(es.split.Team))).Div(out.team, percent)
	out.contributors.Mul(emission, new(big.Int).SetUint64(uint64(es.split.Contributors))).Div(out.contributors, percent)

	if out.staker.Sign() > 0 {
		perShare := new(big.Int).Mul(out.staker, wasabi.RewardScale)
		perShare.Div(perShare, p.TotalStaked)
		out.pool.AccRewardPerShare.Add(out.pool.AccRewardPerShare, perShare)
	}
	return out
}
