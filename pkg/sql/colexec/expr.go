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
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
	"github.com/matrixorigin/pipejoin/pkg/vm/process"
)

func NewColumnExpressionExecutor(name string) *ColumnExpressionExecutor {
	return &ColumnExpressionExecutor{name: name}
}

// NewColumnExpressionExecutors returns one column executor per name.
func NewColumnExpressionExecutors(names ...string) []ExpressionExecutor {
	executors := make([]ExpressionExecutor, len(names))
	for i, name := range names {
		executors[i] = NewColumnExpressionExecutor(name)
	}
	return executors
}

func (expr *ColumnExpressionExecutor) ColumnName() string {
	return expr.name
}

func (expr *ColumnExpressionExecutor) Eval(proc *process.Process, bat *batch.Batch) (*vector.Vector, error) {
	idx := bat.ColumnIndex(expr.name)
	if idx < 0 {
		return nil, moerr.NewInvalidInput(proc.Ctx, "column %s not found", expr.name)
	}
	return bat.Vecs[idx], nil
}

func (expr *ColumnExpressionExecutor) Free() {
	// Nothing should do.
}

func NewColumnPosExecutor(pos int) *ColumnPosExecutor {
	return &ColumnPosExecutor{pos: pos}
}

func (expr *ColumnPosExecutor) Eval(proc *process.Process, bat *batch.Batch) (*vector.Vector, error) {
	// protected code. In fact, we shouldn't receive a wrong index here.
	if expr.pos < 0 || len(bat.Vecs) <= expr.pos {
		return nil, moerr.NewInternalError(proc.Ctx, "unexpected input batch for column expression")
	}
	return bat.Vecs[expr.pos], nil
}

func (expr *ColumnPosExecutor) Free() {
	// Nothing should do.
}

func NewCastExpressionExecutor(arg ExpressionExecutor, typ types.Type) *CastExpressionExecutor {
	return &CastExpressionExecutor{arg: arg, typ: typ}
}

func (expr *CastExpressionExecutor) Eval(proc *process.Process, bat *batch.Batch) (*vector.Vector, error) {
	vec, err := expr.arg.Eval(proc, bat)
	if err != nil {
		return nil, err
	}
	if vec.GetType().Oid == expr.typ.Oid {
		return vec, nil
	}
	return castVector(proc, vec, expr.typ)
}

// ColumnName returns the column the cast reads when its argument is a plain
// column reference, "" otherwise.
func (expr *CastExpressionExecutor) ColumnName() string {
	if col, ok := expr.arg.(interface{ ColumnName() string }); ok {
		return col.ColumnName()
	}
	return ""
}

func (expr *CastExpressionExecutor) Free() {
	expr.arg.Free()
}

type numeric interface {
	types.Number | types.Date | types.Datetime
}

func castVector(proc *process.Process, vec *vector.Vector, typ types.Type) (*vector.Vector, error) {
	var err error

	rvec := vector.NewVec(typ)
	switch typ.Oid {
	case types.T_int8:
		err = castNumeric[int8](proc, vec, rvec)
	case types.T_int16:
		err = castNumeric[int16](proc, vec, rvec)
	case types.T_int32:
		err = castNumeric[int32](proc, vec, rvec)
	case types.T_int64:
		err = castNumeric[int64](proc, vec, rvec)
	case types.T_uint8:
		err = castNumeric[uint8](proc, vec, rvec)
	case types.T_uint16:
		err = castNumeric[uint16](proc, vec, rvec)
	case types.T_uint32:
		err = castNumeric[uint32](proc, vec, rvec)
	case types.T_uint64:
		err = castNumeric[uint64](proc, vec, rvec)
	case types.T_float32:
		err = castNumeric[float32](proc, vec, rvec)
	case types.T_float64:
		err = castNumeric[float64](proc, vec, rvec)
	case types.T_char, types.T_varchar:
		if oid := vec.GetType().Oid; oid == types.T_char || oid == types.T_varchar {
			for i, s := range vector.MustBytesCol(vec) {
				if err = vector.AppendBytes(rvec, s, vec.IsNull(i)); err != nil {
					return nil, err
				}
			}
			return rvec, nil
		}
		err = moerr.NewNotSupported(proc.Ctx, "cast %s to %s", vec.GetType(), typ)
	default:
		err = moerr.NewNotSupported(proc.Ctx, "cast %s to %s", vec.GetType(), typ)
	}
	if err != nil {
		return nil, err
	}
	return rvec, nil
}

func castNumeric[T types.Number](proc *process.Process, vec, rvec *vector.Vector) error {
	var vals []T

	switch vec.GetType().Oid {
	case types.T_bool:
		col := vector.MustFixedCol[bool](vec)
		vals = make([]T, len(col))
		for i, b := range col {
			if b {
				vals[i] = 1
			}
		}
	case types.T_int8:
		vals = convert[int8, T](vector.MustFixedCol[int8](vec))
	case types.T_int16:
		vals = convert[int16, T](vector.MustFixedCol[int16](vec))
	case types.T_int32:
		vals = convert[int32, T](vector.MustFixedCol[int32](vec))
	case types.T_int64:
		vals = convert[int64, T](vector.MustFixedCol[int64](vec))
	case types.T_uint8:
		vals = convert[uint8, T](vector.MustFixedCol[uint8](vec))
	case types.T_uint16:
		vals = convert[uint16, T](vector.MustFixedCol[uint16](vec))
	case types.T_uint32:
		vals = convert[uint32, T](vector.MustFixedCol[uint32](vec))
	case types.T_uint64:
		vals = convert[uint64, T](vector.MustFixedCol[uint64](vec))
	case types.T_float32:
		vals = convert[float32, T](vector.MustFixedCol[float32](vec))
	case types.T_float64:
		vals = convert[float64, T](vector.MustFixedCol[float64](vec))
	case types.T_date:
		vals = convert[types.Date, T](vector.MustFixedCol[types.Date](vec))
	case types.T_datetime:
		vals = convert[types.Datetime, T](vector.MustFixedCol[types.Datetime](vec))
	default:
		return moerr.NewNotSupported(proc.Ctx, "cast %s to %s", vec.GetType(), rvec.GetType())
	}
	if err := vector.AppendList(rvec, vals, nil); err != nil {
		return err
	}
	rvec.SetNulls(vec.GetNulls().Clone())
	return nil
}

func convert[F numeric, T types.Number](col []F) []T {
	rs := make([]T, len(col))
	for i, v := range col {
		rs[i] = T(v)
	}
	return rs
}
