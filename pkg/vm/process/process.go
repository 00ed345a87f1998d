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

// New creates a process whose context is cancelled by proc.Cancel or by the
// parent ctx.
func New(ctx context.Context, lim Limitation) *Process {
	proc := &Process{Lim: lim}
	proc.Ctx, proc.Cancel = context.WithCancel(ctx)
	return proc
}

func (proc *Process) QueryId() string {
	return proc.Id
}

func (proc *Process) SetQueryId(id string) {
	proc.Id = id
}

func (proc *Process) GetLim() Limitation {
	return proc.Lim
}

// NewChild returns a process sharing the query id and limits of proc that is
// cancelled together with it.
func (proc *Process) NewChild() *Process {
	child := New(proc.Ctx, proc.Lim)
	child.Id = proc.Id
	return child
}
