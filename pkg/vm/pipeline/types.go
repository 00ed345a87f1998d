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

package pipeline

import (
	"github.com/matrixorigin/pipejoin/pkg/config"
	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec/hashbuild"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec/join"
)

// Pipeline runs a hash join over in memory inputs with a pool of workers.
type Pipeline struct {
	cfg config.JoinConfig
	arg hashbuild.Argument
}

// Result is the output of a run. Batches holds one batch per probe batch,
// in probe input order.
type Result struct {
	Batches []*batch.Batch
	// Swapped is set when the right input was built.
	Swapped bool
	Build   hashbuild.Stats
	Probe   join.ProbeStats
}

// RowCount returns the number of joined rows.
func (r *Result) RowCount() int {
	cnt := 0
	for _, bat := range r.Batches {
		cnt += bat.RowCount()
	}
	return cnt
}
