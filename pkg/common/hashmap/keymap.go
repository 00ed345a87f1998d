// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hashmap

import (
	"github.com/matrixorigin/pipejoin/pkg/container/types"
)

func NewKeyMap(capacity int) *KeyMap {
	return &KeyMap{
		heads: make(map[uint64]int32, capacity),
		next:  make([]int32, 0, capacity),
		keys:  make([]Key, 0, capacity),
		sels:  make([][]types.RowLocator, 0, capacity),
	}
}

// Find returns the entry of the key with the given hash for which eq holds,
// or -1.
func (m *KeyMap) Find(hash uint64, eq EqualFunc) int {
	e, ok := m.heads[hash]
	if !ok {
		return -1
	}
	for ; e >= 0; e = m.next[e] {
		if eq(m.keys[e].Loc) {
			return int(e)
		}
	}
	return -1
}

// Insert adds a new entry for key. The caller must have checked that no
// equal key is present.
func (m *KeyMap) Insert(key Key, locs ...types.RowLocator) int {
	e := int32(len(m.keys))
	head, ok := m.heads[key.Hash]
	if !ok {
		head = -1
	}
	m.heads[key.Hash] = e
	m.next = append(m.next, head)
	m.keys = append(m.keys, key)
	m.sels = append(m.sels, append(make([]types.RowLocator, 0, len(locs)), locs...))
	m.rows += len(locs)
	return int(e)
}

func (m *KeyMap) Append(entry int, locs ...types.RowLocator) {
	m.sels[entry] = append(m.sels[entry], locs...)
	m.rows += len(locs)
}

// Upsert appends loc to the entry of the key equal to it, inserting a new
// entry keyed by loc if there is none.
func (m *KeyMap) Upsert(hash uint64, loc types.RowLocator, eq EqualFunc) (entry int, inserted bool) {
	if e := m.Find(hash, eq); e >= 0 {
		m.Append(e, loc)
		return e, false
	}
	return m.Insert(Key{Hash: hash, Loc: loc}, loc), true
}

func (m *KeyMap) Key(entry int) Key {
	return m.keys[entry]
}

func (m *KeyMap) Locators(entry int) []types.RowLocator {
	return m.sels[entry]
}

// Iterate calls fn for every entry in insertion order and stops at the first
// error.
func (m *KeyMap) Iterate(fn func(key Key, locs []types.RowLocator) error) error {
	for i := range m.keys {
		if err := fn(m.keys[i], m.sels[i]); err != nil {
			return err
		}
	}
	return nil
}

// GroupCount returns the number of distinct keys.
func (m *KeyMap) GroupCount() int {
	return len(m.keys)
}

// RowCount returns the number of locators.
func (m *KeyMap) RowCount() int {
	return m.rows
}

func (m *KeyMap) Free() {
	m.heads = nil
	m.next = nil
	m.keys = nil
	m.sels = nil
	m.rows = 0
}
