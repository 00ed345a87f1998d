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
	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/container/hashtable"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
)

const (
	// InitSize is the initial capacity of every partition of a PartitionedMap.
	InitSize = 512
)

// Key is the hash map key of one distinct join key. Only Hash is hashed,
// the key values are read back from a KeyColumns through Loc.
type Key struct {
	Hash uint64
	Loc  types.RowLocator
}

// EqualFunc reports whether the join key stored at loc equals the key being
// looked up. It is only called for entries whose hash matches.
type EqualFunc func(loc types.RowLocator) bool

// KeyMap maps distinct join keys to the locators of every row holding them.
// Entries sharing a hash are chained and told apart by an EqualFunc.
type KeyMap struct {
	// hash -> newest entry of the chain
	heads map[uint64]int32
	// next entry with the same hash, -1 ends the chain
	next []int32
	keys []Key
	sels [][]types.RowLocator
	rows int
}

// PartitionedMap is a fixed number of independent KeyMaps. A hash always
// routes to the same partition, see HashToPartition.
type PartitionedMap struct {
	parts []*KeyMap
}

// KeyColumns is the materialized join key store. With n join keys the
// columns of batch b live at [b*n, b*n+n).
type KeyColumns struct {
	n          int
	nullsEqual bool
	vecs       []*vector.Vector
}

// JoinMap is the finalized build side of a hash join, shared read-only by
// every probe operator through reference counting.
type JoinMap struct {
	refCnt int64
	valid  bool
	rowcnt int64
	seed   hashtable.RandomState
	mp     *PartitionedMap
	keys   *KeyColumns
	stack  *batch.Stack
}
