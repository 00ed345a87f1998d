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

package external

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
)

// WriteCSV writes bats to w, header first. NULL is written as an empty
// field. Batches without columns are skipped.
func WriteCSV(w io.Writer, bats []*batch.Batch) error {
	writer := csv.NewWriter(w)
	var header []string
	for _, bat := range bats {
		if bat.VectorCount() == 0 {
			continue
		}
		if header == nil {
			header = bat.Attrs
			if err := writer.Write(header); err != nil {
				return err
			}
		} else if len(bat.Attrs) != len(header) {
			return moerr.NewInvalidInputNoCtx("batch with %d columns after %d", len(bat.Attrs), len(header))
		}
		record := make([]string, len(bat.Vecs))
		for i := 0; i < bat.RowCount(); i++ {
			for j, vec := range bat.Vecs {
				field, err := formatValue(vec, i)
				if err != nil {
					return err
				}
				record[j] = field
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatValue(vec *vector.Vector, i int) (string, error) {
	if vec.IsNull(i) {
		return "", nil
	}
	switch vec.GetType().Oid {
	case types.T_bool:
		return strconv.FormatBool(vector.MustFixedCol[bool](vec)[i]), nil
	case types.T_int8:
		return strconv.FormatInt(int64(vector.MustFixedCol[int8](vec)[i]), 10), nil
	case types.T_int16:
		return strconv.FormatInt(int64(vector.MustFixedCol[int16](vec)[i]), 10), nil
	case types.T_int32:
		return strconv.FormatInt(int64(vector.MustFixedCol[int32](vec)[i]), 10), nil
	case types.T_int64:
		return strconv.FormatInt(vector.MustFixedCol[int64](vec)[i], 10), nil
	case types.T_uint8:
		return strconv.FormatUint(uint64(vector.MustFixedCol[uint8](vec)[i]), 10), nil
	case types.T_uint16:
		return strconv.FormatUint(uint64(vector.MustFixedCol[uint16](vec)[i]), 10), nil
	case types.T_uint32:
		return strconv.FormatUint(uint64(vector.MustFixedCol[uint32](vec)[i]), 10), nil
	case types.T_uint64:
		return strconv.FormatUint(vector.MustFixedCol[uint64](vec)[i], 10), nil
	case types.T_float32:
		return strconv.FormatFloat(float64(vector.MustFixedCol[float32](vec)[i]), 'g', -1, 32), nil
	case types.T_float64:
		return strconv.FormatFloat(vector.MustFixedCol[float64](vec)[i], 'g', -1, 64), nil
	case types.T_date:
		return vector.MustFixedCol[types.Date](vec)[i].String(), nil
	case types.T_datetime:
		return vector.MustFixedCol[types.Datetime](vec)[i].String(), nil
	case types.T_char, types.T_varchar:
		return vec.GetStringAt(i), nil
	}
	return "", moerr.NewNotSupportedNoCtx("write %s to csv", vec.GetType())
}
