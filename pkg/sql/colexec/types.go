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
	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
	"github.com/matrixorigin/pipejoin/pkg/vm/process"
)

// ExpressionExecutor generates a column from a batch.
type ExpressionExecutor interface {
	// Eval must be deterministic and must not modify bat. The result may
	// share memory with bat.
	Eval(proc *process.Process, bat *batch.Batch) (*vector.Vector, error)

	// Free should release all memory of executor.
	Free()
}

// ColumnExpressionExecutor returns the column with the given name.
type ColumnExpressionExecutor struct {
	name string
}

// ColumnPosExecutor returns the column at a fixed position.
type ColumnPosExecutor struct {
	pos int
}

// CastExpressionExecutor converts the result of another executor to typ.
type CastExpressionExecutor struct {
	arg ExpressionExecutor
	typ types.Type
}
