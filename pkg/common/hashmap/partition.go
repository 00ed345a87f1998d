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
	"math/bits"

	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
)

// HashToPartition maps a hash to [0, n) by taking the high word of hash*n.
func HashToPartition(hash uint64, n int) int {
	hi, _ := bits.Mul64(hash, uint64(n))
	return int(hi)
}

func NewPartitionedMap(n int) (*PartitionedMap, error) {
	if n <= 0 {
		return nil, moerr.NewInvalidArgNoCtx("partition count", n)
	}
	mp := &PartitionedMap{parts: make([]*KeyMap, n)}
	for i := range mp.parts {
		mp.parts[i] = NewKeyMap(InitSize)
	}
	return mp, nil
}

func (mp *PartitionedMap) Partitions() int {
	return len(mp.parts)
}

func (mp *PartitionedMap) Partition(i int) *KeyMap {
	return mp.parts[i]
}

// Route returns the partition owning hash.
func (mp *PartitionedMap) Route(hash uint64) *KeyMap {
	return mp.parts[HashToPartition(hash, len(mp.parts))]
}

func (mp *PartitionedMap) GroupCount() int {
	cnt := 0
	for _, m := range mp.parts {
		cnt += m.GroupCount()
	}
	return cnt
}

func (mp *PartitionedMap) RowCount() int {
	cnt := 0
	for _, m := range mp.parts {
		cnt += m.RowCount()
	}
	return cnt
}

func (mp *PartitionedMap) Free() {
	for _, m := range mp.parts {
		m.Free()
	}
	mp.parts = nil
}
