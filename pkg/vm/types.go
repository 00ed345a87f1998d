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

package vm

import (
	"bytes"

	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/vm/process"
)

type OpType int

const (
	HashBuild OpType = iota
	Join
	External
)

func (op OpType) String() string {
	switch op {
	case HashBuild:
		return "hash build"
	case Join:
		return "join"
	case External:
		return "external"
	}
	return "unknown"
}

// JoinKind is the closed set of join kinds known to the planner. Only
// InnerJoin has an implementation, the others are rejected when an operator
// is constructed.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	FullJoin
	SemiJoin
	AntiJoin
)

// Sink consumes a stream of batches and turns into an Operator once the
// stream ends. A Sink is used by a single goroutine at a time.
type Sink interface {
	// Ingest adds a batch to the sink.
	Ingest(proc *process.Process, bat *batch.Batch) error
	// Split returns an empty sink whose state can later be combined with this one.
	Split(worker int) Sink
	// Combine merges other, which must come from Split, into the sink.
	Combine(proc *process.Process, other Sink) error
	// Finalize turns the sink into an operator. The sink is spent afterwards.
	Finalize(proc *process.Process) (Operator, error)

	String(buf *bytes.Buffer)
}

// Operator transforms one batch into one batch.
type Operator interface {
	Execute(proc *process.Process, bat *batch.Batch) (*batch.Batch, error)
	// Split returns a clone for another worker sharing the read-only state.
	Split(worker int) Operator
	// Free releases the resources held by this instance.
	Free(proc *process.Process)

	String(buf *bytes.Buffer)
}
