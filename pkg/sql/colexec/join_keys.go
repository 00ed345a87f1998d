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

package colexec

import (
	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/container/hashtable"
	"github.com/matrixorigin/pipejoin/pkg/container/nulls"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
	"github.com/matrixorigin/pipejoin/pkg/vm/process"
)

// HashJoinKeys hashes the join key columns of every row into hashes, which
// must have a slot per row.
var HashJoinKeys = func(rs hashtable.RandomState, vecs []*vector.Vector, hashes []uint64) error {
	for i, vec := range vecs {
		if err := hashtable.HashVector(rs, vec, hashes, i > 0); err != nil {
			return err
		}
	}
	return nil
}

// EvalJoinKeys evaluates exprs against bat and returns the key columns in
// physical form, reusing the backing array of vecs. An evaluation error is
// returned unchanged.
func EvalJoinKeys(proc *process.Process, bat *batch.Batch, exprs []ExpressionExecutor, vecs []*vector.Vector) ([]*vector.Vector, error) {
	vecs = vecs[:0]
	for _, expr := range exprs {
		vec, err := expr.Eval(proc, bat)
		if err != nil {
			return nil, err
		}
		if vec.Length() != bat.RowCount() {
			return nil, moerr.NewInternalError(proc.Ctx, "join key has %d rows, batch has %d", vec.Length(), bat.RowCount())
		}
		vecs = append(vecs, vec.ToPhysical())
	}
	return vecs, nil
}

// JoinKeyNulls returns the rows having a NULL in any key column.
func JoinKeyNulls(vecs []*vector.Vector) *nulls.Nulls {
	nsp := &nulls.Nulls{}
	for _, vec := range vecs {
		if nulls.Any(vec.GetNulls()) {
			nulls.Or(nsp, vec.GetNulls(), nsp)
		}
	}
	return nsp
}

// KeyColumnNames returns the names of the key columns read by name, directly
// or through a cast. Other executors are skipped.
func KeyColumnNames(exprs []ExpressionExecutor) []string {
	var names []string
	for _, expr := range exprs {
		if col, ok := expr.(interface{ ColumnName() string }); ok && col.ColumnName() != "" {
			names = append(names, col.ColumnName())
		}
	}
	return names
}
