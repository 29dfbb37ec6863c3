// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

// stackedMap maintains maps in a stack.
// Each map inherits key/value of the map that is at lower level.
// It acts as a map with snapshot-revert manner.
type stackedMap[K comparable, V any] struct {
	src            func(key K) (V, bool)
	mapStack       []*level[K, V]
	keyRevisionMap map[K][]int
}

type level[K comparable, V any] struct {
	kvs map[K]V
}

// newStackedMap creates an instance of stackedMap.
// src acts as the source of data.
func newStackedMap[K comparable, V any](src func(key K) (V, bool)) *stackedMap[K, V] {
	return &stackedMap[K, V]{
		src:            src,
		keyRevisionMap: make(map[K][]int),
	}
}

// Depth returns depth of the stack.
func (sm *stackedMap[K, V]) Depth() int {
	return len(sm.mapStack)
}

// Push pushes a new map on the stack.
// It returns stack depth before push.
func (sm *stackedMap[K, V]) Push() int {
	sm.mapStack = append(sm.mapStack, &level[K, V]{kvs: make(map[K]V)})
	return len(sm.mapStack) - 1
}

// Pop pops the map at top of the stack.
// It reverts all Put operations since the last Push.
func (sm *stackedMap[K, V]) Pop() {
	top := sm.mapStack[len(sm.mapStack)-1]
	for key := range top.kvs {
		revs := sm.keyRevisionMap[key]
		revs = revs[:len(revs)-1]
		if len(revs) == 0 {
			delete(sm.keyRevisionMap, key)
		} else {
			sm.keyRevisionMap[key] = revs
		}
	}
	sm.mapStack = sm.mapStack[:len(sm.mapStack)-1]
}

// PopTo pops maps until stack depth reaches depth.
func (sm *stackedMap[K, V]) PopTo(depth int) {
	for len(sm.mapStack) > depth {
		sm.Pop()
	}
}

// Get gets the value for the given key.
// The second return value indicates whether the given key is found.
func (sm *stackedMap[K, V]) Get(key K) (V, bool) {
	if revs, ok := sm.keyRevisionMap[key]; ok {
		lvl := sm.mapStack[revs[len(revs)-1]]
		if v, ok := lvl.kvs[key]; ok {
			return v, true
		}
	}
	return sm.src(key)
}

// Put puts key value into the map at stack top.
// It will panic if the stack is empty.
func (sm *stackedMap[K, V]) Put(key K, value V) {
	top := sm.mapStack[len(sm.mapStack)-1]
	if _, ok := top.kvs[key]; !ok {
		sm.keyRevisionMap[key] = append(sm.keyRevisionMap[key], len(sm.mapStack)-1)
	}
	top.kvs[key] = value
}
