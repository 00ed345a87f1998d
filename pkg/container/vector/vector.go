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

package vector

import (
	"bytes"
	"fmt"
	"unsafe"

	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/container/nulls"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
)

// Vector represent a column
type Vector struct {
	// type represent the type of column
	typ types.Type
	nsp *nulls.Nulls // nulls list

	// []T for fixed length types, [][]byte for char and varchar
	col    any
	length int
}

func NewVec(typ types.Type) *Vector {
	return &Vector{
		typ: typ,
		nsp: &nulls.Nulls{},
		col: newCol(typ.Oid, 0),
	}
}

func newCol(oid types.T, n int) any {
	switch oid {
	case types.T_bool:
		return make([]bool, 0, n)
	case types.T_int8:
		return make([]int8, 0, n)
	case types.T_int16:
		return make([]int16, 0, n)
	case types.T_int32:
		return make([]int32, 0, n)
	case types.T_int64:
		return make([]int64, 0, n)
	case types.T_uint8:
		return make([]uint8, 0, n)
	case types.T_uint16:
		return make([]uint16, 0, n)
	case types.T_uint32:
		return make([]uint32, 0, n)
	case types.T_uint64:
		return make([]uint64, 0, n)
	case types.T_float32:
		return make([]float32, 0, n)
	case types.T_float64:
		return make([]float64, 0, n)
	case types.T_date:
		return make([]types.Date, 0, n)
	case types.T_datetime:
		return make([]types.Datetime, 0, n)
	case types.T_char, types.T_varchar:
		return make([][]byte, 0, n)
	default:
		panic(moerr.NewInternalErrorNoCtx("unknown column type %s", oid))
	}
}

func (v *Vector) Length() int {
	return v.length
}

func (v *Vector) GetType() *types.Type {
	return &v.typ
}

func (v *Vector) GetNulls() *nulls.Nulls {
	return v.nsp
}

func (v *Vector) SetNulls(nsp *nulls.Nulls) {
	v.nsp = nsp
}

func (v *Vector) IsNull(i int) bool {
	return nulls.Contains(v.nsp, uint64(i))
}

func (v *Vector) GetBytesAt(i int) []byte {
	return v.col.([][]byte)[i]
}

func (v *Vector) GetStringAt(i int) string {
	return string(v.GetBytesAt(i))
}

// MustFixedCol returns the values of a fixed length vector, it panics if T
// does not match the column type.
func MustFixedCol[T types.FixedSizeT](v *Vector) []T {
	return v.col.([]T)
}

func MustBytesCol(v *Vector) [][]byte {
	return v.col.([][]byte)
}

func MustStrCol(v *Vector) []string {
	col := v.col.([][]byte)
	rs := make([]string, len(col))
	for i := range col {
		rs[i] = string(col[i])
	}
	return rs
}

func Append[T types.FixedSizeT](v *Vector, val T, isNull bool) error {
	col, ok := v.col.([]T)
	if !ok {
		return moerr.NewInternalErrorNoCtx("append %T to %s vector", val, v.typ)
	}
	if isNull {
		nulls.Add(v.nsp, uint64(v.length))
	}
	v.col = append(col, val)
	v.length++
	return nil
}

func AppendBytes(v *Vector, val []byte, isNull bool) error {
	col, ok := v.col.([][]byte)
	if !ok {
		return moerr.NewInternalErrorNoCtx("append bytes to %s vector", v.typ)
	}
	if isNull {
		nulls.Add(v.nsp, uint64(v.length))
		val = nil
	}
	v.col = append(col, append([]byte(nil), val...))
	v.length++
	return nil
}

func AppendList[T types.FixedSizeT](v *Vector, ws []T, isNulls []bool) error {
	for i, w := range ws {
		if err := Append(v, w, len(isNulls) > 0 && isNulls[i]); err != nil {
			return err
		}
	}
	return nil
}

func AppendStringList(v *Vector, ws []string, isNulls []bool) error {
	for i, w := range ws {
		if err := AppendBytes(v, []byte(w), len(isNulls) > 0 && isNulls[i]); err != nil {
			return err
		}
	}
	return nil
}

// ToPhysical returns the vector viewed with its physical type. Temporal
// columns share their memory with the result.
func (v *Vector) ToPhysical() *Vector {
	oid := v.typ.Oid.ToPhysical()
	if oid == v.typ.Oid {
		return v
	}
	w := &Vector{
		typ:    types.New(oid),
		nsp:    v.nsp,
		length: v.length,
	}
	switch v.typ.Oid {
	case types.T_date:
		w.col = reinterpret[types.Date, int32](v.col.([]types.Date))
	case types.T_datetime:
		w.col = reinterpret[types.Datetime, int64](v.col.([]types.Datetime))
	default:
		w.col = v.col
	}
	return w
}

func reinterpret[F, T types.FixedSizeT](col []F) []T {
	if len(col) == 0 {
		return []T{}
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(col))), len(col))
}

// Dup returns a deep copy of the vector.
func (v *Vector) Dup() *Vector {
	sels := make([]int64, v.length)
	for i := range sels {
		sels[i] = int64(i)
	}
	w, err := v.Gather(sels)
	if err != nil {
		panic(err)
	}
	return w
}

// String function is used to visually display the vector,
// which is used to implement the Printf interface
func (v *Vector) String() string {
	switch v.typ.Oid {
	case types.T_bool:
		return vecToString[bool](v)
	case types.T_int8:
		return vecToString[int8](v)
	case types.T_int16:
		return vecToString[int16](v)
	case types.T_int32:
		return vecToString[int32](v)
	case types.T_int64:
		return vecToString[int64](v)
	case types.T_uint8:
		return vecToString[uint8](v)
	case types.T_uint16:
		return vecToString[uint16](v)
	case types.T_uint32:
		return vecToString[uint32](v)
	case types.T_uint64:
		return vecToString[uint64](v)
	case types.T_float32:
		return vecToString[float32](v)
	case types.T_float64:
		return vecToString[float64](v)
	case types.T_date:
		return vecToString[types.Date](v)
	case types.T_datetime:
		return vecToString[types.Datetime](v)
	case types.T_char, types.T_varchar:
		col := MustStrCol(v)
		if len(col) == 1 {
			if nulls.Contains(v.nsp, 0) {
				return "null"
			}
			return col[0]
		}
		return fmt.Sprintf("%v-%s", col, nulls.String(v.nsp))
	default:
		panic("vec to string unknown types.")
	}
}

func vecToString[T types.FixedSizeT](v *Vector) string {
	col := MustFixedCol[T](v)
	if len(col) == 1 {
		if nulls.Contains(v.nsp, 0) {
			return "null"
		}
		return fmt.Sprintf("%v", col[0])
	}
	return fmt.Sprintf("%v-%s", col, nulls.String(v.nsp))
}

// EqualAt reports whether row i of v holds the same value as row j of w.
// Both vectors must be in physical form. Two NULLs are equal only when
// nullsEqual is set.
func EqualAt(v *Vector, i int, w *Vector, j int, nullsEqual bool) bool {
	vn, wn := v.IsNull(i), w.IsNull(j)
	if vn || wn {
		return vn && wn && nullsEqual
	}
	if v.typ.Oid != w.typ.Oid {
		return false
	}
	switch v.typ.Oid {
	case types.T_bool:
		return equalFixed[bool](v, i, w, j)
	case types.T_int8:
		return equalFixed[int8](v, i, w, j)
	case types.T_int16:
		return equalFixed[int16](v, i, w, j)
	case types.T_int32:
		return equalFixed[int32](v, i, w, j)
	case types.T_int64:
		return equalFixed[int64](v, i, w, j)
	case types.T_uint8:
		return equalFixed[uint8](v, i, w, j)
	case types.T_uint16:
		return equalFixed[uint16](v, i, w, j)
	case types.T_uint32:
		return equalFixed[uint32](v, i, w, j)
	case types.T_uint64:
		return equalFixed[uint64](v, i, w, j)
	case types.T_float32:
		return equalFloat[float32](v, i, w, j)
	case types.T_float64:
		return equalFloat[float64](v, i, w, j)
	case types.T_date:
		return equalFixed[types.Date](v, i, w, j)
	case types.T_datetime:
		return equalFixed[types.Datetime](v, i, w, j)
	case types.T_char, types.T_varchar:
		return bytes.Equal(v.GetBytesAt(i), w.GetBytesAt(j))
	}
	return false
}

func equalFixed[T types.FixedSizeT](v *Vector, i int, w *Vector, j int) bool {
	return MustFixedCol[T](v)[i] == MustFixedCol[T](w)[j]
}

// NaN equals NaN here so that a NaN key can find its own group.
func equalFloat[T types.Floats](v *Vector, i int, w *Vector, j int) bool {
	a, b := MustFixedCol[T](v)[i], MustFixedCol[T](w)[j]
	return a == b || (a != a && b != b)
}
