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

package hashbuild

import (
	"github.com/matrixorigin/pipejoin/pkg/common/hashmap"
	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/container/hashtable"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec"
	"github.com/matrixorigin/pipejoin/pkg/vm"
)

var _ vm.Sink = new(HashBuild)

const (
	Build = iota
	End
)

// Argument configures a hash build and the join it finalizes into. It is
// fixed at construction.
type Argument struct {
	Kind vm.JoinKind
	// Swapped is set when the build side is the right relation.
	Swapped bool
	// Suffix renames right relation columns colliding with left ones.
	Suffix    string
	BuildKeys []colexec.ExpressionExecutor
	ProbeKeys []colexec.ExpressionExecutor
	// Partitions is the partition count of the key index, runtime.GOMAXPROCS(0) if not positive.
	Partitions int
	// JoinNulls lets NULL keys match each other.
	JoinNulls bool
}

// Stats describes the state of a build.
type Stats struct {
	Batches    int
	Rows       int
	Indexed    int
	Groups     int
	Partitions int
}

type container struct {
	state int

	seed     hashtable.RandomState
	mp       *hashmap.PartitionedMap
	keys     *hashmap.KeyColumns
	keyTypes []types.Type
	schema   *schema
	bats     []*batch.Batch
	rows     int

	vecs   []*vector.Vector
	hashes []uint64
}

// schema is the column layout shared by every batch of a build.
type schema struct {
	attrs []string
	typs  []types.Type
}

type HashBuild struct {
	arg Argument
	ctr container
}
