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

package hashtable

import (
	"math"

	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/container/nulls"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
)

// HashVector hashes every row of vec into hashes. With combine set the row
// hash is folded into the value already present in hashes, which is how
// multi-column keys are hashed.
func HashVector(rs RandomState, vec *vector.Vector, hashes []uint64, combine bool) error {
	if len(hashes) < vec.Length() {
		return moerr.NewInternalErrorNoCtx("hash %d rows into %d slots", vec.Length(), len(hashes))
	}
	switch vec.GetType().Oid {
	case types.T_bool:
		col := vector.MustFixedCol[bool](vec)
		hashFixed(rs, vec, hashes, combine, func(i int) uint64 {
			if col[i] {
				return 1
			}
			return 0
		})
	case types.T_int8:
		hashInts(rs, vec, vector.MustFixedCol[int8](vec), hashes, combine)
	case types.T_int16:
		hashInts(rs, vec, vector.MustFixedCol[int16](vec), hashes, combine)
	case types.T_int32:
		hashInts(rs, vec, vector.MustFixedCol[int32](vec), hashes, combine)
	case types.T_int64:
		hashInts(rs, vec, vector.MustFixedCol[int64](vec), hashes, combine)
	case types.T_date:
		hashInts(rs, vec, vector.MustFixedCol[types.Date](vec), hashes, combine)
	case types.T_datetime:
		hashInts(rs, vec, vector.MustFixedCol[types.Datetime](vec), hashes, combine)
	case types.T_uint8:
		hashUInts(rs, vec, vector.MustFixedCol[uint8](vec), hashes, combine)
	case types.T_uint16:
		hashUInts(rs, vec, vector.MustFixedCol[uint16](vec), hashes, combine)
	case types.T_uint32:
		hashUInts(rs, vec, vector.MustFixedCol[uint32](vec), hashes, combine)
	case types.T_uint64:
		hashUInts(rs, vec, vector.MustFixedCol[uint64](vec), hashes, combine)
	case types.T_float32:
		col := vector.MustFixedCol[float32](vec)
		hashFixed(rs, vec, hashes, combine, func(i int) uint64 {
			return floatBits(float64(col[i]))
		})
	case types.T_float64:
		col := vector.MustFixedCol[float64](vec)
		hashFixed(rs, vec, hashes, combine, func(i int) uint64 {
			return floatBits(col[i])
		})
	case types.T_char, types.T_varchar:
		col := vector.MustBytesCol(vec)
		nsp := vec.GetNulls()
		for i := range col {
			h := rs.NullHash()
			if !nulls.Contains(nsp, uint64(i)) {
				h = rs.HashBytes(col[i])
			}
			store(hashes, i, h, combine)
		}
	default:
		return moerr.NewNotSupportedNoCtx("hash on type %s", vec.GetType())
	}
	return nil
}

func hashInts[T types.Ints | types.Date | types.Datetime](rs RandomState, vec *vector.Vector, col []T, hashes []uint64, combine bool) {
	hashFixed(rs, vec, hashes, combine, func(i int) uint64 {
		return uint64(int64(col[i]))
	})
}

func hashUInts[T types.UInts](rs RandomState, vec *vector.Vector, col []T, hashes []uint64, combine bool) {
	hashFixed(rs, vec, hashes, combine, func(i int) uint64 {
		return uint64(col[i])
	})
}

func hashFixed(rs RandomState, vec *vector.Vector, hashes []uint64, combine bool, val func(int) uint64) {
	nsp := vec.GetNulls()
	hasNull := nulls.Any(nsp)
	for i, n := 0, vec.Length(); i < n; i++ {
		var h uint64
		if hasNull && nulls.Contains(nsp, uint64(i)) {
			h = rs.NullHash()
		} else {
			h = rs.HashUint64(val(i))
		}
		store(hashes, i, h, combine)
	}
}

func store(hashes []uint64, i int, h uint64, combine bool) {
	if combine {
		hashes[i] = HashCombine(hashes[i], h)
	} else {
		hashes[i] = h
	}
}

var canonicalNaN = math.Float64bits(math.NaN())

// floatBits maps -0 to 0 and every NaN to one NaN so that values which
// compare equal also hash equal.
func floatBits(f float64) uint64 {
	switch {
	case f == 0:
		return 0
	case f != f:
		return canonicalNaN
	}
	return math.Float64bits(f)
}
