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
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
	"github.com/matrixorigin/pipejoin/pkg/logutil"
	"github.com/matrixorigin/pipejoin/pkg/vm/process"
	"github.com/matrixorigin/simdcsv"
	"go.uber.org/zap"
)

// ReadFile reads the csv file at path into batches.
func ReadFile(proc *process.Process, path string, param CsvParam) ([]*batch.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, moerr.NewInvalidInput(proc.Ctx, "open %s: %v", path, err)
	}
	defer f.Close()
	bats, err := Read(proc, f, param)
	if err != nil {
		return nil, err
	}
	logutil.Debug("csv file loaded", zap.String("path", path), zap.Int("batches", len(bats)))
	return bats, nil
}

// Read parses r into batches of at most param.BatchRows rows. Column types
// are inferred from every value of the column: int64, then float64, then
// bool, varchar otherwise. Empty fields are NULL.
func Read(proc *process.Process, r io.Reader, param CsvParam) ([]*batch.Batch, error) {
	param.setDefaultValues()
	records, err := readRecords(proc.Ctx, r, param)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, moerr.NewInvalidInput(proc.Ctx, "csv without header")
	}

	cols := make([]column, len(records[0]))
	seen := make(map[string]struct{}, len(cols))
	for i, name := range records[0] {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, moerr.NewInvalidInput(proc.Ctx, "column %d has no name", i)
		}
		if _, ok := seen[name]; ok {
			return nil, moerr.NewInvalidInput(proc.Ctx, "duplicate column %s", name)
		}
		seen[name] = struct{}{}
		cols[i] = column{name: name, fields: make([]string, 0, len(records)-1)}
	}
	for line, rec := range records[1:] {
		if len(rec) != len(cols) {
			return nil, moerr.NewInvalidInput(proc.Ctx, "line %d has %d fields, expected %d", line+2, len(rec), len(cols))
		}
		for i, field := range rec {
			cols[i].fields = append(cols[i].fields, field)
		}
	}

	for i := range cols {
		cols[i].oid = inferType(cols[i].fields)
	}

	rows := len(records) - 1
	var bats []*batch.Batch
	for start := 0; start < rows; start += param.BatchRows {
		end := start + param.BatchRows
		if end > rows {
			end = rows
		}
		bat := batch.NewWithSize(len(cols))
		for i := range cols {
			bat.Attrs[i] = cols[i].name
			if bat.Vecs[i], err = cols[i].vector(start, end); err != nil {
				return nil, err
			}
		}
		bat.SetRowCount(end - start)
		bats = append(bats, bat)
	}
	return bats, nil
}

func (param *CsvParam) setDefaultValues() {
	if param.FieldTerminator == 0 {
		param.FieldTerminator = ','
	}
	if param.Comment == 0 {
		param.Comment = '#'
	}
	if param.BatchRows <= 0 {
		param.BatchRows = defaultBatchRows
	}
}

func readRecords(ctx context.Context, r io.Reader, param CsvParam) ([][]string, error) {
	reader := simdcsv.NewReaderWithOptions(r, param.FieldTerminator, param.Comment, param.LazyQuotes, param.TrimLeadingSpace)
	chunk := make([][]string, readChunk)
	var records [][]string
	for {
		var cnt int
		var err error
		chunk, cnt, err = reader.Read(readChunk, ctx, chunk)
		if err != nil {
			return nil, moerr.NewInvalidInput(ctx, "read csv: %v", err)
		}
		for _, rec := range chunk[:cnt] {
			records = append(records, append([]string(nil), rec...))
		}
		// a short read is the end of the input
		if cnt < readChunk {
			return records, nil
		}
	}
}

var inferOrder = []struct {
	oid   types.T
	parse func(string) error
}{
	{oid: types.T_int64, parse: func(s string) error { _, err := strconv.ParseInt(s, 10, 64); return err }},
	{oid: types.T_float64, parse: func(s string) error { _, err := strconv.ParseFloat(s, 64); return err }},
	{oid: types.T_bool, parse: func(s string) error { _, err := strconv.ParseBool(s); return err }},
}

// inferType returns the first type of inferOrder all non empty fields
// parse as, varchar if there is none.
func inferType(fields []string) types.T {
next:
	for _, cand := range inferOrder {
		for _, field := range fields {
			if field != "" && cand.parse(field) != nil {
				continue next
			}
		}
		return cand.oid
	}
	return types.T_varchar
}

func (col *column) vector(start, end int) (*vector.Vector, error) {
	oid := col.oid
	vec := vector.NewVec(oid.ToType())
	for _, field := range col.fields[start:end] {
		var err error
		isNull := field == ""
		switch oid {
		case types.T_int64:
			var v int64
			if !isNull {
				v, _ = strconv.ParseInt(field, 10, 64)
			}
			err = vector.Append(vec, v, isNull)
		case types.T_float64:
			var v float64
			if !isNull {
				v, _ = strconv.ParseFloat(field, 64)
			}
			err = vector.Append(vec, v, isNull)
		case types.T_bool:
			var v bool
			if !isNull {
				v, _ = strconv.ParseBool(field)
			}
			err = vector.Append(vec, v, isNull)
		default:
			err = vector.AppendBytes(vec, []byte(field), isNull)
		}
		if err != nil {
			return nil, err
		}
	}
	return vec, nil
}
