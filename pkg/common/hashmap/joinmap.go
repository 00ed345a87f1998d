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
	"sync/atomic"

	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/container/hashtable"
)

func NewJoinMap(seed hashtable.RandomState, mp *PartitionedMap, keys *KeyColumns, stack *batch.Stack) *JoinMap {
	return &JoinMap{
		refCnt: 0,
		valid:  true,
		seed:   seed,
		mp:     mp,
		keys:   keys,
		stack:  stack,
	}
}

func (jm *JoinMap) SetRowCount(cnt int64) {
	jm.rowcnt = cnt
}

func (jm *JoinMap) GetRowCount() int64 {
	return jm.rowcnt
}

func (jm *JoinMap) Seed() hashtable.RandomState {
	return jm.seed
}

func (jm *JoinMap) Map() *PartitionedMap {
	return jm.mp
}

func (jm *JoinMap) Keys() *KeyColumns {
	return jm.keys
}

func (jm *JoinMap) Stack() *batch.Stack {
	return jm.stack
}

func (jm *JoinMap) IncRef(cnt int32) {
	atomic.AddInt64(&jm.refCnt, int64(cnt))
}

func (jm *JoinMap) RefCount() int64 {
	return atomic.LoadInt64(&jm.refCnt)
}

func (jm *JoinMap) IsValid() bool {
	return jm.valid
}

// Free drops one reference and releases the map with the last one.
func (jm *JoinMap) Free() {
	if atomic.AddInt64(&jm.refCnt, -1) != 0 {
		return
	}
	jm.mp.Free()
	jm.keys.Free()
	jm.stack = nil
	jm.valid = false
}
