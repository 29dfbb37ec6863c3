// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackedMap(t *testing.T) {
	src := map[string]string{"base": "b"}
	sm := newStackedMap(func(key string) (string, bool) {
		v, ok := src[key]
		return v, ok
	})

	v, ok := sm.Get("base")
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = sm.Get("missing")
	assert.False(t, ok)

	sm.Push()
	sm.Put("k", "1")
	v, ok = sm.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	d := sm.Push()
	sm.Put("k", "2")
	sm.Put("base", "override")
	v, _ = sm.Get("k")
	assert.Equal(t, "2", v)
	v, _ = sm.Get("base")
	assert.Equal(t, "override", v)

	sm.PopTo(d)
	v, _ = sm.Get("k")
	assert.Equal(t, "1", v)
	v, _ = sm.Get("base")
	assert.Equal(t, "b", v)

	sm.Pop()
	_, ok = sm.Get("k")
	assert.False(t, ok)
}

func TestStackedMapPutOverwrite(t *testing.T) {
	sm := newStackedMap(func(string) (string, bool) { return "", false })

	d := sm.Push()
	sm.Put("k", "1")
	sm.Put("k", "2")
	v, _ := sm.Get("k")
	assert.Equal(t, "2", v)

	sm.PopTo(d)
	_, ok := sm.Get("k")
	assert.False(t, ok)
	assert.Equal(t, d, sm.Depth())
}
