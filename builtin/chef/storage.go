// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chef

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/wasabi-swap-team/wasabi-swap-farm/builtin/storage"
	"github.com/wasabi-swap-team/wasabi-swap-farm/state"
	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

var (
	slotAdmin             = storage.NameToSlot("admin")
	slotRewardToken       = storage.NameToSlot("reward-token")
	slotReceiptToken      = storage.NameToSlot("receipt-token")
	slotTeamVault         = storage.NameToSlot("team-vault")
	slotContributorsVault = storage.NameToSlot("contributors-vault")
	slotPools             = storage.NameToSlot("pools")
	slotPoolCount         = storage.NameToSlot("pool-count")
	slotPositions         = storage.NameToSlot("positions")
	slotTotalWeight       = storage.NameToSlot("total-weight")
	slotEmissionRate      = storage.NameToSlot("emission-rate")
	slotEmissionSplit     = storage.NameToSlot("emission-split")
	slotEmissionEnabled   = storage.NameToSlot("emission-enabled")
	slotStartHeight       = storage.NameToSlot("start-height")
)

// chefStorage is the root storage of the reward engine.
type chefStorage struct {
	admin             *storage.Address
	rewardToken       *storage.Address
	receiptToken      *storage.Address
	teamVault         *storage.Address
	contributorsVault *storage.Address

	pools     *storage.Mapping[poolKey, *Pool]
	positions *storage.Mapping[positionKey, *Position]

	poolCount       *storage.Uint256
	totalWeight     *storage.Uint256
	emissionRate    *storage.Uint256
	emissionSplit   *storage.Value[Split]
	emissionEnabled *storage.Bool
	startHeight     *storage.Uint256
}

func newStorage(addr wasabi.Address, st *state.State) *chefStorage {
	sctx := storage.NewContext(addr, st)
	return &chefStorage{
		admin:             storage.NewAddress(sctx, slotAdmin),
		rewardToken:       storage.NewAddress(sctx, slotRewardToken),
		receiptToken:      storage.NewAddress(sctx, slotReceiptToken),
		teamVault:         storage.NewAddress(sctx, slotTeamVault),
		contributorsVault: storage.NewAddress(sctx, slotContributorsVault),
		pools:             storage.NewMapping[poolKey, *Pool](sctx, slotPools),
		positions:         storage.NewMapping[positionKey, *Position](sctx, slotPositions),
		poolCount:         storage.NewUint256(sctx, slotPoolCount),
		totalWeight:       storage.NewUint256(sctx, slotTotalWeight),
		emissionRate:      storage.NewUint256(sctx, slotEmissionRate),
		emissionSplit:     storage.NewValue[Split](sctx, slotEmissionSplit),
		emissionEnabled:   storage.NewBool(sctx, slotEmissionEnabled),
		startHeight:       storage.NewUint256(sctx, slotStartHeight),
	}
}

func (s *chefStorage) getPool(id uint32) (*Pool, error) {
	p, err := s.pools.Get(poolKey(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pool")
	}
	if p.Weight == nil {
		p.Weight = new(big.Int)
	}
	if p.AccRewardPerShare == nil {
		p.AccRewardPerShare = new(big.Int)
	}
	if p.TotalStaked == nil {
		p.TotalStaked = new(big.Int)
	}
	return p, nil
}

func (s *chefStorage) setPool(id uint32, p *Pool) error {
	if err := s.pools.Set(poolKey(id), p); err != nil {
		return errors.Wrap(err, "failed to set pool")
	}
	return nil
}

func (s *chefStorage) getPosition(id uint32, account wasabi.Address) (*Position, error) {
	pos, err := s.positions.Get(positionKey{pool: id, account: account})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get position")
	}
	if pos.Staked == nil {
		pos.Staked = new(big.Int)
	}
	if pos.RewardDebt == nil {
		pos.RewardDebt = new(big.Int)
	}
	return pos, nil
}

func (s *chefStorage) setPosition(id uint32, account wasabi.Address, pos *Position) error {
	if err := s.positions.Set(positionKey{pool: id, account: account}, pos); err != nil {
		return errors.Wrap(err, "failed to set position")
	}
	return nil
}

func (s *chefStorage) getPoolCount() (uint32, error) {
	count, err := s.poolCount.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get pool count")
	}
	return uint32(count.Uint64()), nil
}

func (s *chefStorage) setPoolCount(count uint32) error {
	return s.poolCount.Set(new(big.Int).SetUint64(uint64(count)))
}

// emissionState loads the engine-wide settlement inputs.
func (s *chefStorage) emissionState() (emissionState, error) {
	rate, err := s.emissionRate.Get()
	if err != nil {
		return emissionState{}, errors.Wrap(err, "failed to get emission rate")
	}
	split, err := s.emissionSplit.Get()
	if err != nil {
		return emissionState{}, errors.Wrap(err, "failed to get emission split")
	}
	totalWeight, err := s.totalWeight.Get()
	if err != nil {
		return emissionState{}, errors.Wrap(err, "failed to get total weight")
	}
	enabled, err := s.emissionEnabled.Get()
	if err != nil {
		return emissionState{}, errors.Wrap(err, "failed to get emission gate")
	}
	return emissionState{
		rate:        rate,
		split:       split,
		totalWeight: totalWeight,
		enabled:     enabled,
	}, nil
}

func (s *chefStorage) getStartHeight() (uint32, error) {
	h, err := s.startHeight.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get start height")
	}
	return uint32(h.Uint64()), nil
}
