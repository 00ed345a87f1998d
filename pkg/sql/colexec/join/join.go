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

package join

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/matrixorigin/pipejoin/pkg/common/hashmap"
	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/container/nulls"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec"
	"github.com/matrixorigin/pipejoin/pkg/vm"
	"github.com/matrixorigin/pipejoin/pkg/vm/process"
)

const opName = "join"

// New returns an inner join probing mp. The join holds one reference to mp.
func New(arg Argument, mp *hashmap.JoinMap) *InnerJoin {
	mp.IncRef(1)
	return &InnerJoin{
		arg:   arg,
		mp:    mp,
		stats: newProbeStats(),
	}
}

func (innerJoin *InnerJoin) String(buf *bytes.Buffer) {
	buf.WriteString(opName)
	buf.WriteString(": inner join ")
	if innerJoin.arg.Swapped {
		buf.WriteString("swapped ")
	}
	buf.WriteString(fmt.Sprintf("on %d keys", len(innerJoin.arg.ProbeKeys)))
}

func (innerJoin *InnerJoin) OpType() vm.OpType {
	return vm.Join
}

// Stats returns the counters of this instance.
func (innerJoin *InnerJoin) Stats() *ProbeStats {
	return &innerJoin.stats
}

// Split returns a clone sharing the join map.
func (innerJoin *InnerJoin) Split(_ int) vm.Operator {
	return New(innerJoin.arg, innerJoin.mp)
}

func (innerJoin *InnerJoin) Free(_ *process.Process) {
	if innerJoin.mp != nil {
		innerJoin.mp.Free()
		innerJoin.mp = nil
	}
	innerJoin.ctr = container{}
}

// Execute joins bat with the build side and returns exactly one batch.
func (innerJoin *InnerJoin) Execute(proc *process.Process, bat *batch.Batch) (*batch.Batch, error) {
	ap := innerJoin.arg
	ctr := &innerJoin.ctr
	mp := innerJoin.mp
	if mp == nil || !mp.IsValid() {
		return nil, moerr.NewInvalidState(proc.Ctx, "probe on a freed join")
	}
	if bat == nil {
		return nil, moerr.NewInvalidInput(proc.Ctx, "nil probe batch")
	}

	vecs, err := colexec.EvalJoinKeys(proc, bat, ap.ProbeKeys, ctr.vecs)
	if err != nil {
		return nil, err
	}
	ctr.vecs = vecs
	if len(ap.KeyTypes) > 0 {
		if len(vecs) != len(ap.KeyTypes) {
			return nil, moerr.NewInternalError(proc.Ctx, "probe with %d keys, build has %d", len(vecs), len(ap.KeyTypes))
		}
		for i, vec := range vecs {
			if !vec.GetType().Eq(ap.KeyTypes[i]) {
				return nil, moerr.NewInvalidInput(proc.Ctx, "join key %d type mismatch: build %s, probe %s",
					i, ap.KeyTypes[i], vec.GetType())
			}
		}
	}

	count := bat.RowCount()
	innerJoin.stats.Batches++
	innerJoin.stats.Rows += int64(count)
	ctr.buildLocs = ctr.buildLocs[:0]
	ctr.probeSels = ctr.probeSels[:0]
	stack := mp.Stack()
	// an empty build matches nothing but still shapes the output
	if stack.BatchCount() > 0 {
		if err := innerJoin.match(mp, vecs, count); err != nil {
			return nil, err
		}
	}

	build, err := stack.Take(ctr.buildLocs)
	if err != nil {
		return nil, err
	}
	probe, err := innerJoin.dropKeyColumns(bat).Gather(ctr.probeSels)
	if err != nil {
		return nil, err
	}
	var rbat *batch.Batch
	if ap.Swapped {
		rbat, err = finishJoin(proc, probe, build, ap.Suffix)
	} else {
		rbat, err = finishJoin(proc, build, probe, ap.Suffix)
	}
	if err != nil {
		return nil, err
	}
	innerJoin.stats.Emitted += int64(rbat.RowCount())
	return rbat, nil
}

// match collects the build locators of every probe row whose key is found in
// mp, paired with that row.
func (innerJoin *InnerJoin) match(mp *hashmap.JoinMap, vecs []*vector.Vector, count int) error {
	ap := innerJoin.arg
	ctr := &innerJoin.ctr
	if cap(ctr.hashes) < count {
		ctr.hashes = make([]uint64, count)
	}
	hashes := ctr.hashes[:count]
	if err := colexec.HashJoinKeys(mp.Seed(), vecs, hashes); err != nil {
		return err
	}
	var nsp *nulls.Nulls
	if !ap.JoinNulls {
		nsp = colexec.JoinKeyNulls(vecs)
	}

	keys := mp.Keys()
	row := 0
	eq := func(loc types.RowLocator) bool {
		return keys.EqualRow(loc, vecs, row)
	}
	for row = 0; row < count; row++ {
		if nulls.Contains(nsp, uint64(row)) {
			continue
		}
		h := hashes[row]
		binary.LittleEndian.PutUint64(ctr.hashBuf[:], h)
		innerJoin.stats.insertKey(ctr.hashBuf[:])
		km := mp.Map().Route(h)
		e := km.Find(h, eq)
		if e < 0 {
			continue
		}
		innerJoin.stats.Matched++
		for _, loc := range km.Locators(e) {
			ctr.buildLocs = append(ctr.buildLocs, loc)
			ctr.probeSels = append(ctr.probeSels, int64(row))
		}
	}
	return nil
}

// dropKeyColumns returns a view of bat without the probe key columns read by
// name. bat itself is not modified.
func (innerJoin *InnerJoin) dropKeyColumns(bat *batch.Batch) *batch.Batch {
	ctr := &innerJoin.ctr
	if ctr.dropNames == nil || !ctr.resolvedFor(bat) {
		ctr.resolve(bat, colexec.KeyColumnNames(innerJoin.arg.ProbeKeys))
	}
	attrs := append([]string(nil), bat.Attrs...)
	vecs := append(bat.Vecs[:0:0], bat.Vecs...)
	// highest index first so that the remaining indices stay valid
	for i := len(ctr.dropIdx) - 1; i >= 0; i-- {
		idx := ctr.dropIdx[i]
		attrs = append(attrs[:idx], attrs[idx+1:]...)
		vecs = append(vecs[:idx], vecs[idx+1:]...)
	}
	view := &batch.Batch{Attrs: attrs, Vecs: vecs}
	view.SetRowCount(bat.RowCount())
	return view
}

func (ctr *container) resolve(bat *batch.Batch, names []string) {
	ctr.dropNames = make([]string, 0, len(names))
	ctr.dropIdx = ctr.dropIdx[:0]
	for _, name := range names {
		if idx := bat.ColumnIndex(name); idx >= 0 {
			ctr.dropIdx = append(ctr.dropIdx, idx)
		}
	}
	sort.Ints(ctr.dropIdx)
	ctr.dropIdx = dedup(ctr.dropIdx)
	for _, idx := range ctr.dropIdx {
		ctr.dropNames = append(ctr.dropNames, bat.Attrs[idx])
	}
}

func (ctr *container) resolvedFor(bat *batch.Batch) bool {
	for i, idx := range ctr.dropIdx {
		if idx >= len(bat.Attrs) || bat.Attrs[idx] != ctr.dropNames[i] {
			return false
		}
	}
	return true
}

func dedup(sorted []int) []int {
	if len(sorted) == 0 {
		return sorted
	}
	j := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[j] {
			j++
			sorted[j] = sorted[i]
		}
	}
	return sorted[:j+1]
}

// finishJoin concatenates a and b column-wise. A column of b whose name is
// already used gets suffix appended; a name still taken after that is an
// error.
func finishJoin(proc *process.Process, a, b *batch.Batch, suffix string) (*batch.Batch, error) {
	names := make(map[string]struct{}, len(a.Attrs)+len(b.Attrs))
	attrs := make([]string, 0, len(a.Attrs)+len(b.Attrs))
	for _, name := range a.Attrs {
		names[name] = struct{}{}
		attrs = append(attrs, name)
	}
	for _, name := range b.Attrs {
		if _, ok := names[name]; ok {
			name += suffix
			if _, ok := names[name]; ok {
				return nil, moerr.NewInvalidInput(proc.Ctx, "column %s already exists, try another suffix than %q", name, suffix)
			}
		}
		names[name] = struct{}{}
		attrs = append(attrs, name)
	}
	rbat := batch.New(attrs)
	copy(rbat.Vecs, a.Vecs)
	copy(rbat.Vecs[len(a.Vecs):], b.Vecs)
	rbat.SetRowCount(a.RowCount())
	return rbat, nil
}
