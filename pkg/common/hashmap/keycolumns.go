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
	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
)

// NewKeyColumns returns an empty store for n join keys. With nullsEqual set
// two NULL key values compare equal.
func NewKeyColumns(n int, nullsEqual bool) *KeyColumns {
	return &KeyColumns{n: n, nullsEqual: nullsEqual}
}

func (kc *KeyColumns) KeyCount() int {
	return kc.n
}

func (kc *KeyColumns) BatchCount() int {
	if kc.n == 0 {
		return 0
	}
	return len(kc.vecs) / kc.n
}

// Append stores the key columns of the next batch.
func (kc *KeyColumns) Append(frags []*vector.Vector) error {
	if len(frags) != kc.n {
		return moerr.NewInternalErrorNoCtx("append %d key columns to a store of %d keys", len(frags), kc.n)
	}
	for _, frag := range frags[1:] {
		if frag.Length() != frags[0].Length() {
			return moerr.NewInternalErrorNoCtx("key columns of one batch differ in length: %d, %d",
				frags[0].Length(), frag.Length())
		}
	}
	kc.vecs = append(kc.vecs, frags...)
	return nil
}

// Extend appends every batch of other after the batches of kc.
func (kc *KeyColumns) Extend(other *KeyColumns) error {
	if kc.n != other.n {
		return moerr.NewInternalErrorNoCtx("extend a store of %d keys with a store of %d keys", kc.n, other.n)
	}
	kc.vecs = append(kc.vecs, other.vecs...)
	return nil
}

// Fragments returns the key columns of batch b.
func (kc *KeyColumns) Fragments(b int) ([]*vector.Vector, error) {
	if b < 0 || b >= kc.BatchCount() {
		return nil, moerr.NewInternalErrorNoCtx("key batch %d out of range, %d batches", b, kc.BatchCount())
	}
	return kc.vecs[b*kc.n : b*kc.n+kc.n], nil
}

func (kc *KeyColumns) mustFragments(loc types.RowLocator) []*vector.Vector {
	frags, err := kc.Fragments(int(loc.Batch))
	if err != nil {
		panic(err)
	}
	if int(loc.Row) >= frags[0].Length() {
		panic(moerr.NewInternalErrorNoCtx("row locator %s out of range, batch has %d rows", loc, frags[0].Length()))
	}
	return frags
}

// EqualRow reports whether the key stored at loc equals row of vecs. A
// locator outside the store panics with an internal error.
func (kc *KeyColumns) EqualRow(loc types.RowLocator, vecs []*vector.Vector, row int) bool {
	frags := kc.mustFragments(loc)
	for i, frag := range frags {
		if !vector.EqualAt(frag, int(loc.Row), vecs[i], row, kc.nullsEqual) {
			return false
		}
	}
	return true
}

// EqualLocators reports whether the keys stored at a and b are equal.
func (kc *KeyColumns) EqualLocators(a, b types.RowLocator) bool {
	return kc.EqualRow(a, kc.mustFragments(b), int(b.Row))
}

func (kc *KeyColumns) Free() {
	kc.vecs = nil
}
