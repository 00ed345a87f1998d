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
	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
)

// NewStack stacks bats without copying them. All batches must have the same
// column names and types, in the same order.
func NewStack(bats []*Batch) (*Stack, error) {
	s := &Stack{bats: bats}
	if len(bats) == 0 {
		return s, nil
	}
	s.attrs = bats[0].Attrs
	s.typs = make([]types.Type, len(bats[0].Vecs))
	for i, vec := range bats[0].Vecs {
		s.typs[i] = *vec.GetType()
	}
	for i, bat := range bats {
		if len(bat.Vecs) != len(s.attrs) || len(bat.Attrs) != len(s.attrs) {
			return nil, moerr.NewInvalidInputNoCtx("batch %d has %d columns, expected %d", i, len(bat.Vecs), len(s.attrs))
		}
		for j, vec := range bat.Vecs {
			if bat.Attrs[j] != s.attrs[j] {
				return nil, moerr.NewInvalidInputNoCtx("column %d of batch %d is %s, expected %s", j, i, bat.Attrs[j], s.attrs[j])
			}
			if !vec.GetType().Eq(s.typs[j]) {
				return nil, moerr.NewInvalidInputNoCtx("column %s of batch %d is %s, expected %s",
					s.attrs[j], i, vec.GetType(), s.typs[j])
			}
		}
		s.rows += bat.rowCount
	}
	return s, nil
}

// NewEmptyStack returns a stack with no rows whose Take still yields typed
// columns named attrs.
func NewEmptyStack(attrs []string, typs []types.Type) *Stack {
	return &Stack{attrs: attrs, typs: typs}
}

func (s *Stack) Attrs() []string {
	return s.attrs
}

func (s *Stack) BatchCount() int {
	return len(s.bats)
}

func (s *Stack) RowCount() int {
	return s.rows
}

// Take gathers the rows addressed by locs, in the order of locs.
func (s *Stack) Take(locs []types.RowLocator) (*Batch, error) {
	if len(s.bats) == 0 {
		if len(locs) > 0 {
			return nil, moerr.NewInternalErrorNoCtx("take %s from an empty stack", locs[0])
		}
		if s.typs == nil {
			return EmptyBatch, nil
		}
	}
	rbat := New(append([]string(nil), s.attrs...))
	for i, typ := range s.typs {
		rbat.Vecs[i] = vector.NewVec(typ)
	}
	for _, loc := range locs {
		if int(loc.Batch) >= len(s.bats) {
			return nil, moerr.NewInternalErrorNoCtx("row locator %s out of range, %d batches", loc, len(s.bats))
		}
		bat := s.bats[loc.Batch]
		for i, vec := range bat.Vecs {
			if err := rbat.Vecs[i].UnionOne(vec, int64(loc.Row)); err != nil {
				return nil, err
			}
		}
	}
	rbat.rowCount = len(locs)
	return rbat, nil
}
