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

package join

import (
	hll "github.com/axiomhq/hyperloglog"
	"github.com/matrixorigin/pipejoin/pkg/common/hashmap"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec"
	"github.com/matrixorigin/pipejoin/pkg/vm"
)

var _ vm.Operator = new(InnerJoin)

// Argument configures the probe side of an inner join.
type Argument struct {
	// Swapped is set when the build side is the right relation, the output
	// then lists the probe columns first.
	Swapped bool
	// Suffix renames right relation columns colliding with left ones.
	Suffix    string
	ProbeKeys []colexec.ExpressionExecutor
	JoinNulls bool
	// KeyTypes are the physical types of the build keys.
	KeyTypes []types.Type
}

// ProbeStats counts the work of an InnerJoin. Stats of clones can be merged.
type ProbeStats struct {
	Batches int64
	// Rows is the number of probe rows
	Rows int64
	// Matched is the number of probe rows with at least one match
	Matched int64
	// Emitted is the number of output rows
	Emitted int64

	sketch *hll.Sketch
}

type container struct {
	vecs      []*vector.Vector
	hashes    []uint64
	buildLocs []types.RowLocator
	probeSels []int64

	// probe key columns dropped from the output, resolved by name from the
	// first probe batch
	dropNames []string
	dropIdx   []int
	hashBuf   [8]byte
}

type InnerJoin struct {
	arg   Argument
	mp    *hashmap.JoinMap
	stats ProbeStats
	ctr   container
}
