// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/wasabi-swap-team/wasabi-swap-farm/wasabi"
)

func RandAddress() (addr wasabi.Address) {
	rand.Read(addr[:])
	return
}

func RandBytes32() (b wasabi.Bytes32) {
	rand.Read(b[:])
	return
}
