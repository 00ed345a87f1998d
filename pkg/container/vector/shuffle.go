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
	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/container/nulls"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
)

// Gather returns a new vector holding the rows of v picked by sels, in the
// order of sels. A selector outside [0, Length()) is an error.
func (v *Vector) Gather(sels []int64) (*Vector, error) {
	for _, sel := range sels {
		if sel < 0 || sel >= int64(v.length) {
			return nil, moerr.NewInternalErrorNoCtx("gather row %d out of range [0, %d)", sel, v.length)
		}
	}
	w := &Vector{
		typ:    v.typ,
		nsp:    nulls.Filter(v.nsp, sels),
		length: len(sels),
	}
	switch v.typ.Oid {
	case types.T_bool:
		w.col = gatherFixed[bool](v, sels)
	case types.T_int8:
		w.col = gatherFixed[int8](v, sels)
	case types.T_int16:
		w.col = gatherFixed[int16](v, sels)
	case types.T_int32:
		w.col = gatherFixed[int32](v, sels)
	case types.T_int64:
		w.col = gatherFixed[int64](v, sels)
	case types.T_uint8:
		w.col = gatherFixed[uint8](v, sels)
	case types.T_uint16:
		w.col = gatherFixed[uint16](v, sels)
	case types.T_uint32:
		w.col = gatherFixed[uint32](v, sels)
	case types.T_uint64:
		w.col = gatherFixed[uint64](v, sels)
	case types.T_float32:
		w.col = gatherFixed[float32](v, sels)
	case types.T_float64:
		w.col = gatherFixed[float64](v, sels)
	case types.T_date:
		w.col = gatherFixed[types.Date](v, sels)
	case types.T_datetime:
		w.col = gatherFixed[types.Datetime](v, sels)
	case types.T_char, types.T_varchar:
		col := MustBytesCol(v)
		rs := make([][]byte, len(sels))
		for i, sel := range sels {
			rs[i] = append([]byte(nil), col[sel]...)
		}
		w.col = rs
	default:
		return nil, moerr.NewNotSupportedNoCtx("gather on type %s", v.typ)
	}
	return w, nil
}

func gatherFixed[T types.FixedSizeT](v *Vector, sels []int64) []T {
	col := MustFixedCol[T](v)
	rs := make([]T, len(sels))
	for i, sel := range sels {
		rs[i] = col[sel]
	}
	return rs
}

// UnionOne appends row sel of w to v.
func (v *Vector) UnionOne(w *Vector, sel int64) error {
	if v.typ.Oid != w.typ.Oid {
		return moerr.NewInternalErrorNoCtx("union %s vector into %s vector", w.typ, v.typ)
	}
	if sel < 0 || sel >= int64(w.length) {
		return moerr.NewInternalErrorNoCtx("union row %d out of range [0, %d)", sel, w.length)
	}
	isNull := w.IsNull(int(sel))
	switch v.typ.Oid {
	case types.T_bool:
		return Append(v, MustFixedCol[bool](w)[sel], isNull)
	case types.T_int8:
		return Append(v, MustFixedCol[int8](w)[sel], isNull)
	case types.T_int16:
		return Append(v, MustFixedCol[int16](w)[sel], isNull)
	case types.T_int32:
		return Append(v, MustFixedCol[int32](w)[sel], isNull)
	case types.T_int64:
		return Append(v, MustFixedCol[int64](w)[sel], isNull)
	case types.T_uint8:
		return Append(v, MustFixedCol[uint8](w)[sel], isNull)
	case types.T_uint16:
		return Append(v, MustFixedCol[uint16](w)[sel], isNull)
	case types.T_uint32:
		return Append(v, MustFixedCol[uint32](w)[sel], isNull)
	case types.T_uint64:
		return Append(v, MustFixedCol[uint64](w)[sel], isNull)
	case types.T_float32:
		return Append(v, MustFixedCol[float32](w)[sel], isNull)
	case types.T_float64:
		return Append(v, MustFixedCol[float64](w)[sel], isNull)
	case types.T_date:
		return Append(v, MustFixedCol[types.Date](w)[sel], isNull)
	case types.T_datetime:
		return Append(v, MustFixedCol[types.Datetime](w)[sel], isNull)
	case types.T_char, types.T_varchar:
		return AppendBytes(v, w.GetBytesAt(int(sel)), isNull)
	}
	return moerr.NewNotSupportedNoCtx("union on type %s", v.typ)
}
