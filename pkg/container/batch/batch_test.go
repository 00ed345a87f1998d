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

package batch

import (
	"testing"

	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
	"github.com/stretchr/testify/require"
)

func newTestBatch(t *testing.T, ids []int64, names []string) *Batch {
	bat := New([]string{"id", "name"})
	bat.Vecs[0] = vector.NewVec(types.T_int64.ToType())
	bat.Vecs[1] = vector.NewVec(types.T_varchar.ToType())
	require.NoError(t, vector.AppendList(bat.Vecs[0], ids, nil))
	require.NoError(t, vector.AppendStringList(bat.Vecs[1], names, nil))
	bat.SetRowCount(len(ids))
	require.NoError(t, bat.Check())
	return bat
}

func TestBatchGather(t *testing.T) {
	bat := newTestBatch(t, []int64{1, 2, 3}, []string{"a", "b", "c"})
	require.Equal(t, 1, bat.ColumnIndex("name"))
	require.Equal(t, -1, bat.ColumnIndex("none"))

	rbat, err := bat.Gather([]int64{2, 2, 0})
	require.NoError(t, err)
	require.Equal(t, 3, rbat.RowCount())
	require.Equal(t, []int64{3, 3, 1}, vector.MustFixedCol[int64](rbat.Vecs[0]))
	require.Equal(t, []string{"c", "c", "a"}, vector.MustStrCol(rbat.Vecs[1]))

	_, err = bat.Gather([]int64{5})
	require.Error(t, err)

	dup := bat.Dup()
	require.Equal(t, bat.String(), dup.String())
}

func TestBatchCheck(t *testing.T) {
	bat := newTestBatch(t, []int64{1}, []string{"a"})
	bat.SetRowCount(2)
	require.True(t, moerr.IsMoErrCode(bat.Check(), moerr.ErrInvalidInput))
	bat.Attrs = bat.Attrs[:1]
	require.Error(t, bat.Check())
}

func TestStack(t *testing.T) {
	b0 := newTestBatch(t, []int64{1, 2}, []string{"a", "b"})
	b1 := newTestBatch(t, []int64{3}, []string{"c"})
	s, err := NewStack([]*Batch{b0, b1})
	require.NoError(t, err)
	require.Equal(t, 3, s.RowCount())
	require.Equal(t, 2, s.BatchCount())
	require.Equal(t, []string{"id", "name"}, s.Attrs())

	rbat, err := s.Take([]types.RowLocator{{Batch: 1, Row: 0}, {Batch: 0, Row: 1}})
	require.NoError(t, err)
	require.Equal(t, []int64{3, 2}, vector.MustFixedCol[int64](rbat.Vecs[0]))
	require.Equal(t, []string{"c", "b"}, vector.MustStrCol(rbat.Vecs[1]))

	_, err = s.Take([]types.RowLocator{{Batch: 2, Row: 0}})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal))
	_, err = s.Take([]types.RowLocator{{Batch: 1, Row: 1}})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal))

	empty, err := NewStack(nil)
	require.NoError(t, err)
	rbat, err = empty.Take(nil)
	require.NoError(t, err)
	require.Equal(t, 0, rbat.RowCount())
	_, err = empty.Take([]types.RowLocator{{}})
	require.Error(t, err)
}

func TestStackSchemaMismatch(t *testing.T) {
	b0 := newTestBatch(t, []int64{1}, []string{"a"})
	b1 := New([]string{"id"})
	b1.Vecs[0] = vector.NewVec(types.T_int32.ToType())
	_, err := NewStack([]*Batch{b0, b1})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	b2 := New([]string{"id", "name"})
	b2.Vecs[0] = vector.NewVec(types.T_int32.ToType())
	b2.Vecs[1] = vector.NewVec(types.T_varchar.ToType())
	_, err = NewStack([]*Batch{b0, b2})
	require.Error(t, err)
}

func TestStackColumnOrder(t *testing.T) {
	b0 := newTestBatch(t, []int64{1}, []string{"a"})
	b1 := newTestBatch(t, []int64{2}, []string{"b"})
	b1.Attrs = []string{"name", "id"}
	_, err := NewStack([]*Batch{b0, b1})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	b1.Attrs = []string{"id", "label"}
	_, err = NewStack([]*Batch{b0, b1})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}

func TestEmptyStack(t *testing.T) {
	s := NewEmptyStack([]string{"id", "name"}, []types.Type{types.T_int64.ToType(), types.T_varchar.ToType()})
	require.Equal(t, 0, s.BatchCount())
	require.Equal(t, 0, s.RowCount())

	rbat, err := s.Take(nil)
	require.NoError(t, err)
	require.Equal(t, []string{"id", "name"}, rbat.Attrs)
	require.Equal(t, 2, rbat.VectorCount())
	require.Equal(t, 0, rbat.RowCount())
	require.Equal(t, types.T_varchar, rbat.Vecs[1].GetType().Oid)
	require.NoError(t, rbat.Check())

	_, err = s.Take([]types.RowLocator{{}})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal))
}
