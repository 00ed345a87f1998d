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

package hashbuild

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/matrixorigin/pipejoin/pkg/common/hashmap"
	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/container/hashtable"
	"github.com/matrixorigin/pipejoin/pkg/container/nulls"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
	"github.com/matrixorigin/pipejoin/pkg/logutil"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec/join"
	"github.com/matrixorigin/pipejoin/pkg/vm"
	"github.com/matrixorigin/pipejoin/pkg/vm/process"
	"go.uber.org/zap"
)

const opName = "hash_build"

// New returns an empty build with a fresh hash seed. Only inner joins are
// accepted.
func New(arg Argument) (*HashBuild, error) {
	if !arg.Kind.Supported() {
		return nil, moerr.NewNotSupportedNoCtx("%s join", arg.Kind)
	}
	if len(arg.BuildKeys) == 0 {
		return nil, moerr.NewInvalidInputNoCtx("hash build without join keys")
	}
	if len(arg.BuildKeys) != len(arg.ProbeKeys) {
		return nil, moerr.NewInvalidInputNoCtx("%d build keys and %d probe keys", len(arg.BuildKeys), len(arg.ProbeKeys))
	}
	if arg.Partitions <= 0 {
		arg.Partitions = runtime.GOMAXPROCS(0)
	}
	return newHashBuild(arg, hashtable.NewRandomState()), nil
}

func newHashBuild(arg Argument, seed hashtable.RandomState) *HashBuild {
	mp, err := hashmap.NewPartitionedMap(arg.Partitions)
	if err != nil {
		panic(err)
	}
	return &HashBuild{
		arg: arg,
		ctr: container{
			state: Build,
			seed:  seed,
			mp:    mp,
			keys:  hashmap.NewKeyColumns(len(arg.BuildKeys), arg.JoinNulls),
		},
	}
}

func (hashBuild *HashBuild) String(buf *bytes.Buffer) {
	buf.WriteString(opName)
	buf.WriteString(fmt.Sprintf(": hash build %s join on %d keys", hashBuild.arg.Kind, len(hashBuild.arg.BuildKeys)))
}

func (hashBuild *HashBuild) OpType() vm.OpType {
	return vm.HashBuild
}

func (hashBuild *HashBuild) Seed() hashtable.RandomState {
	return hashBuild.ctr.seed
}

func (hashBuild *HashBuild) Stats() Stats {
	ctr := &hashBuild.ctr
	if ctr.state == End {
		return Stats{Partitions: hashBuild.arg.Partitions}
	}
	return Stats{
		Batches:    len(ctr.bats),
		Rows:       ctr.rows,
		Indexed:    ctr.mp.RowCount(),
		Groups:     ctr.mp.GroupCount(),
		Partitions: ctr.mp.Partitions(),
	}
}

// Ingest indexes the rows of bat and retains bat. bat must not be modified
// afterwards. Every batch must carry the column names, order and types of the
// first one; a batch without rows only fixes that layout. When a join key
// cannot be evaluated the error is returned unchanged and the build is left
// as it was.
func (hashBuild *HashBuild) Ingest(proc *process.Process, bat *batch.Batch) error {
	ctr := &hashBuild.ctr
	if ctr.state == End {
		return moerr.NewInvalidState(proc.Ctx, "ingest into a finalized hash build")
	}
	if bat == nil || (bat.IsEmpty() && len(bat.Vecs) == 0) {
		return nil
	}
	sch, err := newSchema(proc, bat)
	if err != nil {
		if bat.IsEmpty() {
			return nil
		}
		return err
	}
	if ctr.schema != nil {
		if err := ctr.schema.compare(proc, sch); err != nil {
			return err
		}
	}
	if bat.IsEmpty() {
		if ctr.schema == nil {
			ctr.schema = sch
		}
		return nil
	}

	vecs, err := colexec.EvalJoinKeys(proc, bat, hashBuild.arg.BuildKeys, ctr.vecs)
	if err != nil {
		return err
	}
	ctr.vecs = vecs
	if ctr.keyTypes == nil {
		keyTypes := make([]types.Type, len(vecs))
		for i, vec := range vecs {
			keyTypes[i] = *vec.GetType()
		}
		ctr.keyTypes = keyTypes
	} else if err := checkKeyTypes(proc, ctr.keyTypes, vecs); err != nil {
		return err
	}

	count := bat.RowCount()
	if cap(ctr.hashes) < count {
		ctr.hashes = make([]uint64, count)
	}
	hashes := ctr.hashes[:count]
	if err := colexec.HashJoinKeys(ctr.seed, vecs, hashes); err != nil {
		return err
	}
	var nsp *nulls.Nulls
	if !hashBuild.arg.JoinNulls {
		nsp = colexec.JoinKeyNulls(vecs)
	}

	if err := ctr.keys.Append(vecs); err != nil {
		return err
	}
	if ctr.schema == nil {
		ctr.schema = sch
	}
	b := len(ctr.bats)
	ctr.bats = append(ctr.bats, bat)
	ctr.rows += count

	row := 0
	eq := func(loc types.RowLocator) bool {
		return ctr.keys.EqualRow(loc, vecs, row)
	}
	for row = 0; row < count; row++ {
		// rows with a NULL key are kept but never match
		if nulls.Contains(nsp, uint64(row)) {
			continue
		}
		h := hashes[row]
		ctr.mp.Route(h).Upsert(h, types.NewRowLocator(b, row), eq)
	}
	return nil
}

func checkKeyTypes(proc *process.Process, keyTypes []types.Type, vecs []*vector.Vector) error {
	for i, vec := range vecs {
		if !vec.GetType().Eq(keyTypes[i]) {
			return moerr.NewInvalidInput(proc.Ctx, "join key %d changed type from %s to %s", i, keyTypes[i], vec.GetType())
		}
	}
	return nil
}

func newSchema(proc *process.Process, bat *batch.Batch) (*schema, error) {
	if len(bat.Attrs) != len(bat.Vecs) {
		return nil, moerr.NewInvalidInput(proc.Ctx, "build batch has %d names for %d columns", len(bat.Attrs), len(bat.Vecs))
	}
	sch := &schema{
		attrs: append([]string(nil), bat.Attrs...),
		typs:  make([]types.Type, len(bat.Vecs)),
	}
	for i, vec := range bat.Vecs {
		if vec == nil {
			return nil, moerr.NewInvalidInput(proc.Ctx, "build column %s has no data", bat.Attrs[i])
		}
		sch.typs[i] = *vec.GetType()
	}
	return sch, nil
}

// compare returns an error at the first column where o departs from sch.
// Columns are matched by position, so a reordering is a mismatch.
func (sch *schema) compare(proc *process.Process, o *schema) error {
	if len(o.attrs) != len(sch.attrs) {
		return moerr.NewInvalidInput(proc.Ctx, "build batch has %d columns, expected %d", len(o.attrs), len(sch.attrs))
	}
	for i, name := range sch.attrs {
		if o.attrs[i] != name {
			return moerr.NewInvalidInput(proc.Ctx, "build column %d is %s, expected %s", i, o.attrs[i], name)
		}
		if !o.typs[i].Eq(sch.typs[i]) {
			return moerr.NewInvalidInput(proc.Ctx, "build column %s changed type from %s to %s", name, sch.typs[i], o.typs[i])
		}
	}
	return nil
}

// Split returns an empty build sharing the configuration and the hash seed.
func (hashBuild *HashBuild) Split(_ int) vm.Sink {
	return newHashBuild(hashBuild.arg, hashBuild.ctr.seed)
}

// Combine moves the state of other, which must descend from the same New,
// into the build. Locators of other are shifted past the batches already
// held; keys are matched again by value and never rehashed. other is spent
// afterwards.
func (hashBuild *HashBuild) Combine(proc *process.Process, other vm.Sink) error {
	ctr := &hashBuild.ctr
	o, ok := other.(*HashBuild)
	if !ok {
		return moerr.NewInternalError(proc.Ctx, "combine %T into a hash build", other)
	}
	if o == hashBuild {
		return moerr.NewInternalError(proc.Ctx, "combine a hash build with itself")
	}
	if ctr.state == End || o.ctr.state == End {
		return moerr.NewInvalidState(proc.Ctx, "combine a finalized hash build")
	}
	octr := &o.ctr
	if octr.seed != ctr.seed {
		return moerr.NewInternalError(proc.Ctx, "combine hash builds with different seeds")
	}
	if octr.mp.Partitions() != ctr.mp.Partitions() {
		return moerr.NewInternalError(proc.Ctx, "combine hash builds with %d and %d partitions",
			ctr.mp.Partitions(), octr.mp.Partitions())
	}
	if octr.keys.KeyCount() != ctr.keys.KeyCount() {
		return moerr.NewInternalError(proc.Ctx, "combine hash builds with %d and %d keys",
			ctr.keys.KeyCount(), octr.keys.KeyCount())
	}
	if ctr.keyTypes != nil && octr.keyTypes != nil {
		for i := range ctr.keyTypes {
			if !ctr.keyTypes[i].Eq(octr.keyTypes[i]) {
				return moerr.NewInvalidInput(proc.Ctx, "combine hash builds with join key %d of type %s and %s",
					i, ctr.keyTypes[i], octr.keyTypes[i])
			}
		}
	}
	if ctr.schema != nil && octr.schema != nil {
		if err := ctr.schema.compare(proc, octr.schema); err != nil {
			return err
		}
	}

	shift := uint32(len(ctr.bats))
	if err := ctr.keys.Extend(octr.keys); err != nil {
		return err
	}
	ctr.bats = append(ctr.bats, octr.bats...)
	ctr.rows += octr.rows
	if ctr.keyTypes == nil {
		ctr.keyTypes = octr.keyTypes
	}
	if ctr.schema == nil {
		ctr.schema = octr.schema
	}

	var rep types.RowLocator
	eq := func(loc types.RowLocator) bool {
		return ctr.keys.EqualLocators(loc, rep)
	}
	for i := 0; i < ctr.mp.Partitions(); i++ {
		dst := ctr.mp.Partition(i)
		err := octr.mp.Partition(i).Iterate(func(key hashmap.Key, locs []types.RowLocator) error {
			shifted := make([]types.RowLocator, len(locs))
			for j, loc := range locs {
				shifted[j] = loc.Shift(shift)
			}
			rep = key.Loc.Shift(shift)
			if e := dst.Find(key.Hash, eq); e >= 0 {
				dst.Append(e, shifted...)
			} else {
				dst.Insert(hashmap.Key{Hash: key.Hash, Loc: rep}, shifted...)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	logutil.Debug("hash build combined",
		zap.Int("batches", len(ctr.bats)),
		zap.Int("rows", ctr.rows),
		zap.Int("groups", ctr.mp.GroupCount()))
	o.spend()
	return nil
}

// Finalize turns the build into the probe template of an inner join. The
// build is spent afterwards.
func (hashBuild *HashBuild) Finalize(proc *process.Process) (vm.Operator, error) {
	ctr := &hashBuild.ctr
	if ctr.state == End {
		return nil, moerr.NewInvalidState(proc.Ctx, "finalize a spent hash build")
	}
	if hashBuild.arg.Kind != vm.InnerJoin {
		return nil, moerr.NewNotSupported(proc.Ctx, "%s join", hashBuild.arg.Kind)
	}
	stack, err := batch.NewStack(ctr.bats)
	if err != nil {
		return nil, err
	}
	if stack.BatchCount() == 0 && ctr.schema != nil {
		stack = batch.NewEmptyStack(ctr.schema.attrs, ctr.schema.typs)
	}

	mp := hashmap.NewJoinMap(ctr.seed, ctr.mp, ctr.keys, stack)
	mp.SetRowCount(int64(ctr.rows))
	op := join.New(join.Argument{
		Swapped:   hashBuild.arg.Swapped,
		Suffix:    hashBuild.arg.Suffix,
		ProbeKeys: hashBuild.arg.ProbeKeys,
		JoinNulls: hashBuild.arg.JoinNulls,
		KeyTypes:  ctr.keyTypes,
	}, mp)

	logutil.Debug("hash build finalized",
		zap.Int("batches", stack.BatchCount()),
		zap.Int("rows", ctr.rows),
		zap.Int("groups", ctr.mp.GroupCount()),
		zap.Int("partitions", ctr.mp.Partitions()))
	hashBuild.spend()
	return op, nil
}

func (hashBuild *HashBuild) spend() {
	hashBuild.ctr = container{
		state: End,
		seed:  hashBuild.ctr.seed,
	}
}
