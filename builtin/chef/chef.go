// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chef

import (
	"math/big"

	"github.com/wasabi-swap-team/wasabi-swap-farm/builtin/reverts"
	"github.com/wasabi-swap-team/wasabi-swap-farm/builtin/token"
	"github.com/wasabi-swap-team/wasabi-swap-farm/builtin/vault"
	"github.com/wasabi-swap-team/wasabi-swap-farm/log"
	"github.com/wasabi-swap-team/wasabi-swap-farm/state"
	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

var logger = log.WithContext("pkg", "chef")

// StakingPoolID is the reserved pool for self-staking the reward unit.
const StakingPoolID = uint32(0)

// Config are the engine's bootstrap parameters.
type Config struct {
	Admin             wasabi.Address
	RewardToken       wasabi.Address
	ReceiptToken      wasabi.Address
	TeamVault         wasabi.Address
	ContributorsVault wasabi.Address

	EmissionRate  *big.Int // reward units emitted per height
	Split         Split
	StartHeight   uint32   // heights before this emit nothing
	StakingWeight *big.Int // weight of the self-staking pool
}

// Chef is the reward engine. It owns the pool registry, the per-pool and
// per-position accrual state and the emission configuration, and it
// custodies staked assets plus the staker share of newly minted reward.
//
// Every state-changing operation first settles the touched pool up to the
// call height, then settles the caller's pending reward against the pool's
// per-share accumulator, and only then applies the requested change.
type Chef struct {
	addr  wasabi.Address
	state *state.State
	store *chefStorage
}

// New creates an engine instance bound to its contract address.
func New(addr wasabi.Address, st *state.State) *Chef {
	return &Chef{
		addr:  addr,
		state: st,
		store: newStorage(addr, st),
	}
}

// Address returns the engine's contract address.
func (c *Chef) Address() wasabi.Address {
	return c.addr
}

// Initialize sets up the engine and creates the self-staking pool.
// It fails if the engine is already initialized or the split is malformed.
func (c *Chef) Initialize(cfg Config, height uint32) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)

	current, err := c.store.admin.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.New(reverts.InvalidConfig, "engine %v already initialized", c.addr)
	}
	if cfg.Admin.IsZero() {
		return reverts.New(reverts.InvalidConfig, "zero admin address")
	}
	if err := validSplit(cfg.Split); err != nil {
		return err
	}
	if cfg.EmissionRate.Sign() < 0 || cfg.StakingWeight.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative emission rate or weight")
	}

	c.store.admin.Set(cfg.Admin)
	c.store.rewardToken.Set(cfg.RewardToken)
	c.store.receiptToken.Set(cfg.ReceiptToken)
	c.store.teamVault.Set(cfg.TeamVault)
	c.store.contributorsVault.Set(cfg.ContributorsVault)
	if err := c.store.emissionRate.Set(cfg.EmissionRate); err != nil {
		return err
	}
	if err := c.store.emissionSplit.Set(cfg.Split); err != nil {
		return err
	}
	c.store.emissionEnabled.Set(true)
	if err := c.store.startHeight.Set(new(big.Int).SetUint64(uint64(cfg.StartHeight))); err != nil {
		return err
	}

	// the self-staking pool occupies index 0
	startHeight := max(height, cfg.StartHeight)
	err = c.store.setPool(StakingPoolID, &Pool{
		Asset:             cfg.RewardToken,
		Weight:            cfg.StakingWeight,
		AccRewardPerShare: new(big.Int),
		LastSettledHeight: startHeight,
		TotalStaked:       new(big.Int),
	})
	if err != nil {
		return err
	}
	if err := c.store.setPoolCount(1); err != nil {
		return err
	}
	if err := c.store.totalWeight.Set(cfg.StakingWeight); err != nil {
		return err
	}

	logger.Info("engine initialized", "addr", c.addr, "rate", cfg.EmissionRate, "startHeight", cfg.StartHeight)
	return nil
}

//
// Getters - no state change
//

// PoolLength returns the number of registered pools, the reserved
// self-staking pool included.
func (c *Chef) PoolLength() (uint32, error) {
	return c.store.getPoolCount()
}

// GetPool returns the pool record for the given id.
func (c *Chef) GetPool(id uint32) (*Pool, error) {
	pool, err := c.store.getPool(id)
	if err != nil {
		return nil, err
	}
	if pool.IsEmpty() {
		return nil, reverts.New(reverts.InvalidConfig, "unknown pool %d", id)
	}
	return pool, nil
}

// GetPosition returns the account's stake in the given pool.
func (c *Chef) GetPosition(id uint32, account wasabi.Address) (*Position, error) {
	return c.store.getPosition(id, account)
}

// TotalWeight returns the sum of all pool weights.
func (c *Chef) TotalWeight() (*big.Int, error) {
	return c.store.totalWeight.Get()
}

// EmissionRate returns the reward units emitted per height.
func (c *Chef) EmissionRate() (*big.Int, error) {
	return c.store.emissionRate.Get()
}

// SplitPercent returns the current three-way emission split.
func (c *Chef) SplitPercent() (Split, error) {
	return c.store.emissionSplit.Get()
}

// EmissionEnabled returns whether settlement currently mints emission.
func (c *Chef) EmissionEnabled() (bool, error) {
	return c.store.emissionEnabled.Get()
}

// Admin returns the engine administrator.
func (c *Chef) Admin() (wasabi.Address, error) {
	return c.store.admin.Get()
}

// StartHeight returns the height emission starts at.
func (c *Chef) StartHeight() (uint32, error) {
	return c.store.getStartHeight()
}

// ContributorsVault returns the contributors vault address.
func (c *Chef) ContributorsVault() (wasabi.Address, error) {
	return c.store.contributorsVault.Get()
}

// TeamVault returns the team vault address.
func (c *Chef) TeamVault() (wasabi.Address, error) {
	return c.store.teamVault.Get()
}

// PendingReward returns what the account would be paid if the pool were
// settled at the given height. It never mutates state and matches the
// amount actually paid by a deposit or withdrawal of zero at that height.
func (c *Chef) PendingReward(id uint32, account wasabi.Address, height uint32) (*big.Int, error) {
	pool, err := c.GetPool(id)
	if err != nil {
		return nil, err
	}
	pos, err := c.store.getPosition(id, account)
	if err != nil {
		return nil, err
	}
	es, err := c.store.emissionState()
	if err != nil {
		return nil, err
	}
	settled := settle(pool, height, es)
	return pos.PendingReward(settled.pool.AccRewardPerShare), nil
}

//
// Setters - state change
//

// SettlePool mints the emission elapsed since the pool's last settlement
// and folds the staker share into the per-share accumulator. Anyone may
// call it.
func (c *Chef) SettlePool(id uint32, height uint32) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)

	if _, err := c.settlePool(id, height); err != nil {
		return err
	}
	return nil
}

// MassSettle settles every registered pool up to the given height.
func (c *Chef) MassSettle(height uint32) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)
	return c.massSettle(height)
}

// Deposit stakes amount of the pool's asset for the caller, paying out any
// pending reward first. A deposit of zero is the idiomatic way to harvest.
// The self-staking pool is served by EnterStaking instead.
func (c *Chef) Deposit(caller wasabi.Address, id uint32, amount *big.Int, height uint32) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)
	logger.Debug("deposit", "pool", id, "account", caller, "amount", amount, "height", height)

	if id == StakingPoolID {
		return reverts.New(reverts.InvalidConfig, "pool %d accepts stake via EnterStaking", id)
	}
	if err := c.applyDeposit(caller, id, amount, height); err != nil {
		logger.Info("deposit failed", "pool", id, "account", caller, "error", err)
		return err
	}
	return nil
}

// Withdraw unstakes amount of the pool's asset for the caller, paying out
// any pending reward first.
func (c *Chef) Withdraw(caller wasabi.Address, id uint32, amount *big.Int, height uint32) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)
	logger.Debug("withdraw", "pool", id, "account", caller, "amount", amount, "height", height)

	if id == StakingPoolID {
		return reverts.New(reverts.InvalidConfig, "pool %d releases stake via LeaveStaking", id)
	}
	if err := c.applyWithdraw(caller, id, amount, height); err != nil {
		logger.Info("withdraw failed", "pool", id, "account", caller, "error", err)
		return err
	}
	return nil
}

// EnterStaking stakes amount of the reward unit into the self-staking pool
// and mints staking receipts 1:1.
func (c *Chef) EnterStaking(caller wasabi.Address, amount *big.Int, height uint32) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)
	logger.Debug("enter staking", "account", caller, "amount", amount, "height", height)

	if err := c.applyDeposit(caller, StakingPoolID, amount, height); err != nil {
		logger.Info("enter staking failed", "account", caller, "error", err)
		return err
	}
	if amount.Sign() > 0 {
		receipt, err := c.receiptLedger()
		if err != nil {
			return err
		}
		if err := receipt.Mint(c.addr, caller, amount); err != nil {
			return err
		}
	}
	return nil
}

// LeaveStaking unstakes amount of the reward unit from the self-staking
// pool and burns the caller's staking receipts 1:1.
func (c *Chef) LeaveStaking(caller wasabi.Address, amount *big.Int, height uint32) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)
	logger.Debug("leave staking", "account", caller, "amount", amount, "height", height)

	if err := c.applyWithdraw(caller, StakingPoolID, amount, height); err != nil {
		logger.Info("leave staking failed", "account", caller, "error", err)
		return err
	}
	if amount.Sign() > 0 {
		receipt, err := c.receiptLedger()
		if err != nil {
			return err
		}
		if err := receipt.Burn(c.addr, caller, amount); err != nil {
			return err
		}
	}
	return nil
}

// EmergencyWithdraw returns the caller's full stake without settling the
// pool, forfeiting any pending reward. Circuit breaker, not an exit path.
func (c *Chef) EmergencyWithdraw(caller wasabi.Address, id uint32) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)

	pool, err := c.GetPool(id)
	if err != nil {
		return err
	}
	pos, err := c.store.getPosition(id, caller)
	if err != nil {
		return err
	}
	staked := pos.Staked

	pool.TotalStaked = new(big.Int).Sub(pool.TotalStaked, staked)
	if err := c.store.setPool(id, pool); err != nil {
		return err
	}
	err = c.store.setPosition(id, caller, &Position{Staked: new(big.Int), RewardDebt: new(big.Int)})
	if err != nil {
		return err
	}
	asset := token.New(pool.Asset, c.state)
	if err := asset.Transfer(c.addr, caller, staked); err != nil {
		return err
	}
	if id == StakingPoolID && staked.Sign() > 0 {
		receipt, err := c.receiptLedger()
		if err != nil {
			return err
		}
		if err := receipt.Burn(c.addr, caller, staked); err != nil {
			return err
		}
	}

	logger.Warn("emergency withdrawal", "pool", id, "account", caller, "amount", staked)
	return nil
}

// Add registers a new pool for the given staked asset. Admin only.
// With massSettle, all existing pools are settled first so the new weight
// does not retroactively change an already elapsed interval.
func (c *Chef) Add(caller wasabi.Address, weight *big.Int, asset wasabi.Address, massSettle bool, height uint32) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)

	if err := c.checkAdmin(caller); err != nil {
		return err
	}
	if weight.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative pool weight")
	}
	if asset.IsZero() {
		return reverts.New(reverts.InvalidConfig, "zero asset address")
	}
	if massSettle {
		if err := c.massSettle(height); err != nil {
			return err
		}
	}

	count, err := c.store.getPoolCount()
	if err != nil {
		return err
	}
	startHeight, err := c.store.getStartHeight()
	if err != nil {
		return err
	}
	err = c.store.setPool(count, &Pool{
		Asset:             asset,
		Weight:            weight,
		AccRewardPerShare: new(big.Int),
		LastSettledHeight: max(height, startHeight),
		TotalStaked:       new(big.Int),
	})
	if err != nil {
		return err
	}
	if err := c.store.setPoolCount(count + 1); err != nil {
		return err
	}
	if err := c.store.totalWeight.Add(weight); err != nil {
		return err
	}

	logger.Info("added pool", "pool", count, "asset", asset, "weight", weight)
	return nil
}

// SetWeight reweights a pool, adjusting the total weight. Admin only.
// Setting weight to zero deactivates the pool without deleting it.
func (c *Chef) SetWeight(caller wasabi.Address, id uint32, weight *big.Int, massSettle bool, height uint32) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)

	if err := c.checkAdmin(caller); err != nil {
		return err
	}
	if weight.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative pool weight")
	}
	if massSettle {
		if err := c.massSettle(height); err != nil {
			return err
		}
	}

	pool, err := c.GetPool(id)
	if err != nil {
		return err
	}
	if err := c.store.totalWeight.Sub(pool.Weight); err != nil {
		return err
	}
	if err := c.store.totalWeight.Add(weight); err != nil {
		return err
	}
	pool.Weight = weight
	if err := c.store.setPool(id, pool); err != nil {
		return err
	}

	logger.Info("reweighted pool", "pool", id, "weight", weight)
	return nil
}

// UpdateEmissionRate sets the reward units emitted per height. Admin only.
// Pools are not settled automatically; callers relying on point-in-time
// semantics should settle beforehand.
func (c *Chef) UpdateEmissionRate(caller wasabi.Address, rate *big.Int) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)

	if err := c.checkAdmin(caller); err != nil {
		return err
	}
	if rate.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative emission rate")
	}
	if err := c.store.emissionRate.Set(rate); err != nil {
		return err
	}

	logger.Info("updated emission rate", "rate", rate)
	return nil
}

// UpdateSplitPercent sets the three-way emission split. Admin only.
// The slice must hold exactly the staker, team, and contributors
// percentages, summing to exactly 100.
func (c *Chef) UpdateSplitPercent(caller wasabi.Address, percents []uint32) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)

	if err := c.checkAdmin(caller); err != nil {
		return err
	}
	if len(percents) != wasabi.SplitShares {
		return reverts.New(reverts.InvalidConfig, "split needs %d entries, got %d", wasabi.SplitShares, len(percents))
	}
	split := Split{Staker: percents[0], Team: percents[1], Contributors: percents[2]}
	if err := validSplit(split); err != nil {
		return err
	}
	if err := c.store.emissionSplit.Set(split); err != nil {
		return err
	}

	logger.Info("updated emission split", "staker", split.Staker, "team", split.Team, "contributors", split.Contributors)
	return nil
}

// SetEmissionEnabled gates emission minting. While disabled, settlements
// still advance pool heights, so re-enabling emits no retroactive burst.
// Admin only.
func (c *Chef) SetEmissionEnabled(caller wasabi.Address, enabled bool) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)

	if err := c.checkAdmin(caller); err != nil {
		return err
	}
	c.store.emissionEnabled.Set(enabled)

	logger.Info("emission gate updated", "enabled", enabled)
	return nil
}

// SetContributorsVault repoints the contributors vault. Admin only.
func (c *Chef) SetContributorsVault(caller, addr wasabi.Address) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)

	if err := c.checkAdmin(caller); err != nil {
		return err
	}
	c.store.contributorsVault.Set(addr)
	return nil
}

// SetTeamVault repoints the team vault. Admin only.
func (c *Chef) SetTeamVault(caller, addr wasabi.Address) (err error) {
	defer c.revertIfErr(c.state.NewCheckpoint(), &err)

	if err := c.checkAdmin(caller); err != nil {
		return err
	}
	c.store.teamVault.Set(addr)
	return nil
}

//
// internals
//

// applyDeposit settles the pool, pays the caller's pending reward and
// stakes amount.
func (c *Chef) applyDeposit(caller wasabi.Address, id uint32, amount *big.Int, height uint32) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative deposit amount")
	}
	pool, err := c.settlePool(id, height)
	if err != nil {
		return err
	}
	pos, err := c.store.getPosition(id, caller)
	if err != nil {
		return err
	}
	if err := c.payPending(caller, pos, pool.AccRewardPerShare); err != nil {
		return err
	}
	if amount.Sign() > 0 {
		asset := token.New(pool.Asset, c.state)
		if err := asset.TransferFrom(c.addr, caller, c.addr, amount); err != nil {
			return err
		}
		pos.Staked = new(big.Int).Add(pos.Staked, amount)
		pool.TotalStaked = new(big.Int).Add(pool.TotalStaked, amount)
		if err := c.store.setPool(id, pool); err != nil {
			return err
		}
	}
	pos.RewardDebt = pos.settleDebt(pool.AccRewardPerShare)
	return c.store.setPosition(id, caller, pos)
}

// applyWithdraw settles the pool, pays the caller's pending reward and
// unstakes amount.
func (c *Chef) applyWithdraw(caller wasabi.Address, id uint32, amount *big.Int, height uint32) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidConfig, "negative withdrawal amount")
	}
	pos, err := c.store.getPosition(id, caller)
	if err != nil {
		return err
	}
	if pos.Staked.Cmp(amount) < 0 {
		return reverts.New(reverts.InsufficientStake, "withdrawal of %v exceeds stake %v", amount, pos.Staked)
	}
	pool, err := c.settlePool(id, height)
	if err != nil {
		return err
	}
	if err := c.payPending(caller, pos, pool.AccRewardPerShare); err != nil {
		return err
	}
	if amount.Sign() > 0 {
		pos.Staked = new(big.Int).Sub(pos.Staked, amount)
		pool.TotalStaked = new(big.Int).Sub(pool.TotalStaked, amount)
		if err := c.store.setPool(id, pool); err != nil {
			return err
		}
		asset := token.New(pool.Asset, c.state)
		if err := asset.Transfer(c.addr, caller, amount); err != nil {
			return err
		}
	}
	pos.RewardDebt = pos.settleDebt(pool.AccRewardPerShare)
	return c.store.setPosition(id, caller, pos)
}

// payPending pays the position's accrued reward out of engine custody.
// A custody shortfall indicates an accounting bug upstream and propagates.
func (c *Chef) payPending(account wasabi.Address, pos *Position, accRewardPerShare *big.Int) error {
	pending := pos.PendingReward(accRewardPerShare)
	if pending.Sign() == 0 {
		return nil
	}
	reward, err := c.rewardLedger()
	if err != nil {
		return err
	}
	if err := reward.Transfer(c.addr, account, pending); err != nil {
		return err
	}
	logger.Debug("paid pending reward", "account", account, "amount", pending)
	return nil
}

// settlePool runs the pure settlement and applies its mint side effects:
// staker share to engine custody, team and contributors shares as funding
// deposits into the two vaults.
func (c *Chef) settlePool(id uint32, height uint32) (*Pool, error) {
	pool, err := c.GetPool(id)
	if err != nil {
		return nil, err
	}
	es, err := c.store.emissionState()
	if err != nil {
		return nil, err
	}
	settled := settle(pool, height, es)
	if err := c.store.setPool(id, &settled.pool); err != nil {
		return nil, err
	}
	if !settled.mintsAnything() {
		return &settled.pool, nil
	}

	reward, err := c.rewardLedger()
	if err != nil {
		return nil, err
	}
	if settled.staker.Sign() > 0 {
		if err := reward.Mint(c.addr, c.addr, settled.staker); err != nil {
			return nil, err
		}
	}
	if settled.team.Sign() > 0 {
		addr, err := c.store.teamVault.Get()
		if err != nil {
			return nil, err
		}
		if err := c.fundVault(addr, reward, settled.team); err != nil {
			return nil, err
		}
	}
	if settled.contributors.Sign() > 0 {
		addr, err := c.store.contributorsVault.Get()
		if err != nil {
			return nil, err
		}
		if err := c.fundVault(addr, reward, settled.contributors); err != nil {
			return nil, err
		}
	}

	logger.Debug("settled pool", "pool", id, "height", height,
		"staker", settled.staker, "team", settled.team, "contributors", settled.contributors)
	return &settled.pool, nil
}

func (c *Chef) massSettle(height uint32) error {
	count, err := c.store.getPoolCount()
	if err != nil {
		return err
	}
	for id := uint32(0); id < count; id++ {
		if _, err := c.settlePool(id, height); err != nil {
			return err
		}
	}
	return nil
}

// fundVault mints amount into the vault's custody and records it there as
// a funding deposit.
func (c *Chef) fundVault(addr wasabi.Address, reward *token.Token, amount *big.Int) error {
	if err := reward.Mint(c.addr, addr, amount); err != nil {
		return err
	}
	return vault.New(addr, c.state).Credit(c.addr, amount)
}

func (c *Chef) rewardLedger() (*token.Token, error) {
	addr, err := c.store.rewardToken.Get()
	if err != nil {
		return nil, err
	}
	return token.New(addr, c.state), nil
}

func (c *Chef) receiptLedger() (*token.Token, error) {
	addr, err := c.store.receiptToken.Get()
	if err != nil {
		return nil, err
	}
	return token.New(addr, c.state), nil
}

func (c *Chef) checkAdmin(caller wasabi.Address) error {
	admin, err := c.store.admin.Get()
	if err != nil {
		return err
	}
	if caller != admin {
		return reverts.New(reverts.Unauthorized, "%v is not the engine admin", caller)
	}
	return nil
}

func validSplit(split Split) error {
	if split.Sum() != wasabi.PercentDenominator {
		return reverts.New(reverts.InvalidConfig, "split percentages sum to %d, want %d", split.Sum(), wasabi.PercentDenominator)
	}
	return nil
}

// revertIfErr drops all state changes of the enclosing call when it fails.
func (c *Chef) revertIfErr(checkpoint int, err *error) {
	if *err != nil {
		c.state.RevertTo(checkpoint)
	}
}
