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

import "github.com/matrixorigin/pipejoin/pkg/container/types"

const (
	defaultBatchRows = 8192
	// readChunk is the number of records requested from the csv reader at once
	readChunk = 4000
)

// CsvParam describes a csv source. The first record holds the column names.
type CsvParam struct {
	// FieldTerminator separates fields, ',' when zero.
	FieldTerminator rune
	// Comment starts a comment line, '#' when zero.
	Comment          rune
	LazyQuotes       bool
	TrimLeadingSpace bool
	// BatchRows is the maximum number of rows per batch.
	BatchRows int
}

// column collects the text of one csv column before its type is known.
type column struct {
	name   string
	oid    types.T
	fields []string
}
