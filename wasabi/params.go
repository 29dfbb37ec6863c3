// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wasabi

import "math/big"

// Constants of the farm protocol.
const (
	// SplitShares number of emission split recipients: stakers, team vault, contributors vault.
	SplitShares = 3

	// PercentDenominator denominator of emission split percentages.
	PercentDenominator = 100

	// BpsDenominator denominator of vesting allocation shares, in basis points.
	BpsDenominator = 10000
)

var (
	// RewardScale fixed-point scale of per-share reward accumulators.
	RewardScale = big.NewInt(1e12)
)
