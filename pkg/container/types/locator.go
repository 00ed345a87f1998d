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

package types

import "fmt"

// RowLocator addresses one row of the retained build side batches.
type RowLocator struct {
	Batch uint32
	Row   uint32
}

func NewRowLocator(bat, row int) RowLocator {
	return RowLocator{Batch: uint32(bat), Row: uint32(row)}
}

// Shift returns the locator moved n batches forward, used when the batches
// of two partial builds are concatenated.
func (l RowLocator) Shift(n uint32) RowLocator {
	return RowLocator{Batch: l.Batch + n, Row: l.Row}
}

func (l RowLocator) String() string {
	return fmt.Sprintf("(%d, %d)", l.Batch, l.Row)
}
