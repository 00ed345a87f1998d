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
	"bytes"
	"fmt"

	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
)

func New(attrs []string) *Batch {
	return &Batch{
		Attrs: attrs,
		Vecs:  make([]*vector.Vector, len(attrs)),
	}
}

func NewWithSize(n int) *Batch {
	return &Batch{
		Attrs: make([]string, n),
		Vecs:  make([]*vector.Vector, n),
	}
}

func (bat *Batch) RowCount() int {
	return bat.rowCount
}

func (bat *Batch) SetRowCount(rowCount int) {
	bat.rowCount = rowCount
}

func (bat *Batch) VectorCount() int {
	return len(bat.Vecs)
}

func (bat *Batch) IsEmpty() bool {
	return bat.rowCount == 0
}

// ColumnIndex returns the position of the column named attr, or -1.
func (bat *Batch) ColumnIndex(attr string) int {
	for i, name := range bat.Attrs {
		if name == attr {
			return i
		}
	}
	return -1
}

// Gather returns a new batch holding the rows picked by sels.
func (bat *Batch) Gather(sels []int64) (*Batch, error) {
	rbat := New(append([]string(nil), bat.Attrs...))
	for i, vec := range bat.Vecs {
		v, err := vec.Gather(sels)
		if err != nil {
			return nil, err
		}
		rbat.Vecs[i] = v
	}
	rbat.rowCount = len(sels)
	return rbat, nil
}

// Check verifies that every column holds exactly RowCount rows.
func (bat *Batch) Check() error {
	if len(bat.Attrs) != len(bat.Vecs) {
		return moerr.NewInvalidInputNoCtx("batch has %d names for %d columns", len(bat.Attrs), len(bat.Vecs))
	}
	for i, vec := range bat.Vecs {
		if vec.Length() != bat.rowCount {
			return moerr.NewInvalidInputNoCtx("column %s has %d rows, batch has %d", bat.Attrs[i], vec.Length(), bat.rowCount)
		}
	}
	return nil
}

func (bat *Batch) Dup() *Batch {
	rbat := New(append([]string(nil), bat.Attrs...))
	for i, vec := range bat.Vecs {
		rbat.Vecs[i] = vec.Dup()
	}
	rbat.rowCount = bat.rowCount
	return rbat
}

func (bat *Batch) String() string {
	var buf bytes.Buffer

	for i, vec := range bat.Vecs {
		buf.WriteString(fmt.Sprintf("%d : %s\n", i, vec.String()))
	}
	return buf.String()
}
