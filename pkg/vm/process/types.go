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

package process

import (
	"context"
)

type Limitation struct {
	// BatchRows is the max rows for a batch read from a source
	BatchRows int64
}

// Process contains the execution context shared by the operators of a
// query.
type Process struct {
	Id  string // query id
	Lim Limitation

	Ctx    context.Context
	Cancel context.CancelFunc
}
