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
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec"
	"github.com/matrixorigin/pipejoin/pkg/vm"
	"github.com/matrixorigin/pipejoin/pkg/vm/process"
	"github.com/stretchr/testify/require"
)

type column struct {
	name  string
	vals  any
	nulls []bool
}

func ints(name string, vals ...int64) column {
	return column{name: name, vals: vals}
}

func strs(name string, vals ...string) column {
	return column{name: name, vals: vals}
}

func (c column) withNulls(nulls ...bool) column {
	c.nulls = nulls
	return c
}

func newBatch(t *testing.T, cols ...column) *batch.Batch {
	bat := batch.New(nil)
	rows := 0
	for _, c := range cols {
		var vec *vector.Vector
		switch vals := c.vals.(type) {
		case []int64:
			vec = vector.NewVec(types.T_int64.ToType())
			require.NoError(t, vector.AppendList(vec, vals, c.nulls))
		case []int32:
			vec = vector.NewVec(types.T_int32.ToType())
			require.NoError(t, vector.AppendList(vec, vals, c.nulls))
		case []string:
			vec = vector.NewVec(types.T_varchar.ToType())
			require.NoError(t, vector.AppendStringList(vec, vals, c.nulls))
		default:
			t.Fatalf("unsupported column %T", c.vals)
		}
		bat.Attrs = append(bat.Attrs, c.name)
		bat.Vecs = append(bat.Vecs, vec)
		rows = vec.Length()
	}
	bat.SetRowCount(rows)
	require.NoError(t, bat.Check())
	return bat
}

func cell(vec *vector.Vector, i int) string {
	if vec.IsNull(i) {
		return "null"
	}
	switch vec.GetType().Oid {
	case types.T_int64:
		return strconv.FormatInt(vector.MustFixedCol[int64](vec)[i], 10)
	case types.T_int32:
		return strconv.FormatInt(int64(vector.MustFixedCol[int32](vec)[i]), 10)
	case types.T_varchar:
		return vec.GetStringAt(i)
	}
	return fmt.Sprintf("?%s", vec.GetType())
}

// rowsOf renders every row as "name=value ..." in column order.
func rowsOf(bats ...*batch.Batch) []string {
	var rows []string
	for _, bat := range bats {
		for i := 0; i < bat.RowCount(); i++ {
			fields := make([]string, len(bat.Vecs))
			for j, vec := range bat.Vecs {
				fields[j] = bat.Attrs[j] + "=" + cell(vec, i)
			}
			rows = append(rows, strings.Join(fields, " "))
		}
	}
	return rows
}

func sortedRowsOf(bats ...*batch.Batch) []string {
	rows := rowsOf(bats...)
	sort.Strings(rows)
	return rows
}

func newProc(t *testing.T) *process.Process {
	proc := process.New(context.Background(), process.Limitation{})
	t.Cleanup(proc.Cancel)
	return proc
}

func newArg(buildKeys, probeKeys []string) Argument {
	return Argument{
		Kind:       vm.InnerJoin,
		Suffix:     "_right",
		BuildKeys:  colexec.NewColumnExpressionExecutors(buildKeys...),
		ProbeKeys:  colexec.NewColumnExpressionExecutors(probeKeys...),
		Partitions: 4,
	}
}

// reduce combines sinks pairwise until one is left.
func reduce(t *testing.T, proc *process.Process, sinks []vm.Sink) vm.Sink {
	for len(sinks) > 1 {
		next := make([]vm.Sink, 0, (len(sinks)+1)/2)
		for i := 0; i+1 < len(sinks); i += 2 {
			require.NoError(t, sinks[i].Combine(proc, sinks[i+1]))
			next = append(next, sinks[i])
		}
		if len(sinks)%2 == 1 {
			next = append(next, sinks[len(sinks)-1])
		}
		sinks = next
	}
	return sinks[0]
}

// probeAll finalizes sink and probes every batch of probes.
func probeAll(t *testing.T, proc *process.Process, sink vm.Sink, probes ...*batch.Batch) []*batch.Batch {
	op, err := sink.Finalize(proc)
	require.NoError(t, err)
	defer op.Free(proc)
	rbats := make([]*batch.Batch, 0, len(probes))
	for _, bat := range probes {
		rbat, err := op.Execute(proc, bat)
		require.NoError(t, err)
		require.NoError(t, rbat.Check())
		rbats = append(rbats, rbat)
	}
	return rbats
}
