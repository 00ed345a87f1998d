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
	"fmt"
	"strings"

	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/vm/process"
)

var joinKindNames = map[JoinKind]string{
	InnerJoin: "inner",
	LeftJoin:  "left",
	RightJoin: "right",
	FullJoin:  "full",
	SemiJoin:  "semi",
	AntiJoin:  "anti",
}

func (k JoinKind) String() string {
	if name, ok := joinKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("JoinKind(%d)", int(k))
}

// Supported returns true for the join kinds that can be executed.
func (k JoinKind) Supported() bool {
	return k == InnerJoin
}

// ParseJoinKind parses the name of a join kind, case insensitive.
func ParseJoinKind(s string) (JoinKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range joinKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, moerr.NewInvalidArgNoCtx("join kind", s)
}

// String range operators and call each operator's string function to show a query plan
func String(ops []interface{ String(*bytes.Buffer) }, buf *bytes.Buffer) {
	for i, op := range ops {
		if i > 0 {
			buf.WriteString(" -> ")
		}
		op.String(buf)
	}
}

// Run calls fn and converts a panic raised inside it into an error.
func Run(proc *process.Process, fn func() error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = moerr.ConvertPanicError(proc.Ctx, e)
		}
	}()
	return fn()
}

func CancelCheck(proc *process.Process) (error, bool) {
	select {
	case <-proc.Ctx.Done():
		return proc.Ctx.Err(), true
	default:
		return nil, false
	}
}
