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
	"math/rand"
	"runtime"
	"sort"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/container/hashtable"
	"github.com/matrixorigin/pipejoin/pkg/container/types"
	"github.com/matrixorigin/pipejoin/pkg/container/vector"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec/join"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec/mock_colexec"
	"github.com/matrixorigin/pipejoin/pkg/vm"
	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/require"
)

// add unit tests for cases
type buildTestCase struct {
	arg  Argument
	want string
}

var (
	tcs []buildTestCase
)

func init() {
	tcs = []buildTestCase{
		{arg: newArg([]string{"id"}, []string{"id"}), want: "hash_build: hash build inner join on 1 keys"},
		{arg: newArg([]string{"a", "b"}, []string{"c", "d"}), want: "hash_build: hash build inner join on 2 keys"},
	}
}

func TestString(t *testing.T) {
	for _, tc := range tcs {
		buf := new(bytes.Buffer)
		hb, err := New(tc.arg)
		require.NoError(t, err)
		hb.String(buf)
		require.Equal(t, tc.want, buf.String())
		require.Equal(t, vm.HashBuild, hb.OpType())
	}
}

func TestNew(t *testing.T) {
	for _, kind := range []vm.JoinKind{vm.LeftJoin, vm.RightJoin, vm.FullJoin, vm.SemiJoin, vm.AntiJoin} {
		arg := newArg([]string{"id"}, []string{"id"})
		arg.Kind = kind
		_, err := New(arg)
		require.True(t, moerr.IsMoErrCode(err, moerr.ErrNotSupported), kind.String())
	}

	_, err := New(newArg(nil, nil))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	_, err = New(newArg([]string{"a", "b"}, []string{"a"}))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	arg := newArg([]string{"id"}, []string{"id"})
	arg.Partitions = 0
	hb, err := New(arg)
	require.NoError(t, err)
	require.Equal(t, runtime.GOMAXPROCS(0), hb.Stats().Partitions)

	other, err := New(arg)
	require.NoError(t, err)
	require.NotEqual(t, hb.Seed(), other.Seed())
	require.Equal(t, hb.Seed(), hb.Split(1).(*HashBuild).Seed())
}

func TestEndToEnd(t *testing.T) {
	proc := newProc(t)
	hb, err := New(newArg([]string{"id"}, []string{"id"}))
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("id", 1, 1, 2), strs("x", "a", "b", "c"))))

	rbats := probeAll(t, proc, hb, newBatch(t, ints("id", 1, 3), ints("y", 10, 99)))
	require.Equal(t, 1, len(rbats))
	require.Equal(t, []string{"id", "x", "y"}, rbats[0].Attrs)
	require.Equal(t, []string{"id=1 x=a y=10", "id=1 x=b y=10"}, sortedRowsOf(rbats...))
}

func TestHashCollision(t *testing.T) {
	stubs := gostub.Stub(&colexec.HashJoinKeys, func(_ hashtable.RandomState, _ []*vector.Vector, hashes []uint64) error {
		for i := range hashes {
			hashes[i] = 42
		}
		return nil
	})
	defer stubs.Reset()

	proc := newProc(t)
	hb, err := New(newArg([]string{"k1", "k2"}, []string{"k1", "k2"}))
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t,
		ints("k1", 1, 1, 2, 1), strs("k2", "a", "b", "a", "a"), ints("b", 10, 20, 30, 40))))
	stats := hb.Stats()
	require.Equal(t, 3, stats.Groups)
	require.Equal(t, 4, stats.Indexed)

	rbats := probeAll(t, proc, hb, newBatch(t,
		ints("k1", 1, 2, 2, 3), strs("k2", "b", "a", "b", "a"), ints("p", 1, 2, 3, 4)))
	require.Equal(t, []string{
		"k1=1 k2=b b=20 p=1",
		"k1=2 k2=a b=30 p=2",
	}, sortedRowsOf(rbats...))
}

func TestFanOut(t *testing.T) {
	proc := newProc(t)
	hb, err := New(newArg([]string{"k"}, []string{"k"}))
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("k", 7, 7, 8, 7), ints("b", 1, 2, 3, 4))))
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("k", 7, 9), ints("b", 5, 6))))

	rbats := probeAll(t, proc, hb, newBatch(t, ints("k", 7, 5), ints("p", 100, 200)))
	require.Equal(t, []string{
		"k=7 b=1 p=100",
		"k=7 b=2 p=100",
		"k=7 b=4 p=100",
		"k=7 b=5 p=100",
	}, sortedRowsOf(rbats...))
}

func TestNoMatch(t *testing.T) {
	proc := newProc(t)
	hb, err := New(newArg([]string{"k"}, []string{"k"}))
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("k", 1, 2), strs("x", "a", "b"))))

	rbats := probeAll(t, proc, hb,
		newBatch(t, ints("k", 3, 4), ints("p", 1, 2)),
		newBatch(t, ints("k"), ints("p")))
	require.Equal(t, 2, len(rbats))
	for _, rbat := range rbats {
		require.Equal(t, 0, rbat.RowCount())
		require.Equal(t, []string{"k", "x", "p"}, rbat.Attrs)
	}
}

func splitCombineData(t *testing.T, rng *rand.Rand) ([]*batch.Batch, []*batch.Batch) {
	var builds, probes []*batch.Batch
	id := int64(0)
	for b := 0; b < 8; b++ {
		n := 1 + rng.Intn(6)
		k1 := make([]int64, n)
		k2 := make([]string, n)
		bid := make([]int64, n)
		for i := 0; i < n; i++ {
			k1[i] = int64(rng.Intn(4))
			k2[i] = []string{"a", "b"}[rng.Intn(2)]
			bid[i] = id
			id++
		}
		builds = append(builds, newBatch(t, ints("k1", k1...), strs("k2", k2...), ints("bid", bid...)))
	}
	for p := 0; p < 3; p++ {
		k1 := []int64{0, 1, 2, 3, 4}
		k2 := []string{"a", "b", "a", "b", "a"}
		if p == 1 {
			k2 = []string{"b", "a", "b", "a", "b"}
		}
		probes = append(probes, newBatch(t, ints("k1", k1...), strs("k2", k2...), ints("pid", 1, 2, 3, 4, 5)))
	}
	return builds, probes
}

func TestSplitCombineEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, partitions := range []int{1, 3, 8} {
		builds, probes := splitCombineData(t, rng)
		arg := newArg([]string{"k1", "k2"}, []string{"k1", "k2"})
		arg.Partitions = partitions

		proc := newProc(t)
		seq, err := New(arg)
		require.NoError(t, err)
		for _, bat := range builds {
			require.NoError(t, seq.Ingest(proc, bat))
		}
		groups := seq.Stats().Groups
		want := sortedRowsOf(probeAll(t, proc, seq, probes...)...)
		require.NotEmpty(t, want)

		for _, k := range []int{1, 2, 3, 5} {
			root, err := New(arg)
			require.NoError(t, err)
			sinks := []vm.Sink{root}
			for i := 1; i < k; i++ {
				sinks = append(sinks, root.Split(i))
			}
			for _, bat := range builds {
				require.NoError(t, sinks[rng.Intn(k)].Ingest(proc, bat))
			}
			sink := reduce(t, proc, sinks)
			stats := sink.(*HashBuild).Stats()
			require.Equal(t, groups, stats.Groups, "k=%d", k)
			require.Equal(t, len(builds), stats.Batches)
			got := sortedRowsOf(probeAll(t, proc, sink, probes...)...)
			require.Equal(t, want, got, "partitions=%d k=%d", partitions, k)
		}
	}
}

func TestCombineMultiKey(t *testing.T) {
	proc := newProc(t)
	hb, err := New(newArg([]string{"k1", "k2", "k3"}, []string{"k1", "k2", "k3"}))
	require.NoError(t, err)
	other := hb.Split(1)

	// the keys differ only in their last column
	require.NoError(t, hb.Ingest(proc, newBatch(t,
		ints("k1", 1, 1), strs("k2", "a", "a"), ints("k3", 1, 2), ints("b", 1, 2))))
	require.NoError(t, other.Ingest(proc, newBatch(t,
		ints("k1", 1, 1, 1), strs("k2", "a", "a", "a"), ints("k3", 2, 3, 1), ints("b", 3, 4, 5))))
	require.NoError(t, hb.Combine(proc, other))

	stats := hb.Stats()
	require.Equal(t, 3, stats.Groups)
	require.Equal(t, 5, stats.Indexed)
	require.Equal(t, 2, stats.Batches)

	rbats := probeAll(t, proc, hb, newBatch(t,
		ints("k1", 1, 1, 1), strs("k2", "a", "a", "a"), ints("k3", 1, 2, 3), ints("p", 10, 20, 30)))
	require.Equal(t, []string{
		"k1=1 k2=a k3=1 b=1 p=10",
		"k1=1 k2=a k3=1 b=5 p=10",
		"k1=1 k2=a k3=2 b=2 p=20",
		"k1=1 k2=a k3=2 b=3 p=20",
		"k1=1 k2=a k3=3 b=4 p=30",
	}, sortedRowsOf(rbats...))
}

type otherSink struct {
	vm.Sink
}

func TestCombineErrors(t *testing.T) {
	proc := newProc(t)
	arg := newArg([]string{"k"}, []string{"k"})
	hb, err := New(arg)
	require.NoError(t, err)

	require.True(t, moerr.IsMoErrCode(hb.Combine(proc, otherSink{}), moerr.ErrInternal))
	require.True(t, moerr.IsMoErrCode(hb.Combine(proc, hb), moerr.ErrInternal))

	unrelated, err := New(arg)
	require.NoError(t, err)
	require.True(t, moerr.IsMoErrCode(hb.Combine(proc, unrelated), moerr.ErrInternal))

	arg.Partitions = 7
	require.True(t, moerr.IsMoErrCode(hb.Combine(proc, newHashBuild(arg, hb.Seed())), moerr.ErrInternal))

	wide := newArg([]string{"k", "j"}, []string{"k", "j"})
	require.True(t, moerr.IsMoErrCode(hb.Combine(proc, newHashBuild(wide, hb.Seed())), moerr.ErrInternal))

	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("k", 1))))
	strKeys := hb.Split(1)
	require.NoError(t, strKeys.Ingest(proc, newBatch(t, strs("k", "1"))))
	require.True(t, moerr.IsMoErrCode(hb.Combine(proc, strKeys), moerr.ErrInvalidInput))
	require.Equal(t, 1, hb.Stats().Batches)

	spent := hb.Split(2)
	_, err = spent.Finalize(proc)
	require.NoError(t, err)
	require.True(t, moerr.IsMoErrCode(hb.Combine(proc, spent), moerr.ErrInvalidState))

	// a combined sink is spent
	donor := hb.Split(3)
	require.NoError(t, hb.Combine(proc, donor))
	require.True(t, moerr.IsMoErrCode(donor.Ingest(proc, newBatch(t, ints("k", 1))), moerr.ErrInvalidState))
}

func TestEvalFailure(t *testing.T) {
	proc := newProc(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	evalErr := moerr.NewInvalidInputNoCtx("cannot evaluate key")
	key := mock_colexec.NewMockExpressionExecutor(ctrl)
	bat := newBatch(t, ints("k", 1, 2), ints("j", 3, 4))
	gomock.InOrder(
		key.EXPECT().Eval(gomock.Any(), bat).Return(bat.Vecs[1], nil),
		key.EXPECT().Eval(gomock.Any(), bat).Return(nil, evalErr),
	)

	arg := newArg([]string{"k"}, []string{"k", "j"})
	arg.BuildKeys = append(arg.BuildKeys, key)
	hb, err := New(arg)
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, bat))
	before := hb.Stats()

	err = hb.Ingest(proc, bat)
	require.Equal(t, evalErr, err)
	require.Equal(t, before, hb.Stats())

	rbats := probeAll(t, proc, hb, newBatch(t, ints("k", 2), ints("j", 4), ints("p", 9)))
	require.Equal(t, []string{"k=2 j=4 p=9"}, sortedRowsOf(rbats...))
}

func TestProbeEvalFailure(t *testing.T) {
	proc := newProc(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	evalErr := moerr.NewInvalidInputNoCtx("cannot evaluate key")
	key := mock_colexec.NewMockExpressionExecutor(ctrl)
	key.EXPECT().Eval(gomock.Any(), gomock.Any()).Return(nil, evalErr).Times(1)

	arg := newArg([]string{"k"}, nil)
	arg.ProbeKeys = []colexec.ExpressionExecutor{key}
	hb, err := New(arg)
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("k", 1))))
	op, err := hb.Finalize(proc)
	require.NoError(t, err)
	defer op.Free(proc)
	_, err = op.Execute(proc, newBatch(t, ints("k", 1)))
	require.Equal(t, evalErr, err)
}

func TestSpent(t *testing.T) {
	proc := newProc(t)
	hb, err := New(newArg([]string{"k"}, []string{"k"}))
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("k", 1))))
	op, err := hb.Finalize(proc)
	require.NoError(t, err)
	defer op.Free(proc)

	require.True(t, moerr.IsMoErrCode(hb.Ingest(proc, newBatch(t, ints("k", 1))), moerr.ErrInvalidState))
	_, err = hb.Finalize(proc)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
	require.Equal(t, 0, hb.Stats().Batches)
}

func TestFinalizeUnsupportedKind(t *testing.T) {
	proc := newProc(t)
	arg := newArg([]string{"k"}, []string{"k"})
	arg.Kind = vm.SemiJoin
	hb := newHashBuild(arg, hashtable.NewRandomState())
	_, err := hb.Finalize(proc)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNotSupported))
}

func TestNullKeys(t *testing.T) {
	for _, joinNulls := range []bool{false, true} {
		proc := newProc(t)
		arg := newArg([]string{"k"}, []string{"k"})
		arg.JoinNulls = joinNulls
		hb, err := New(arg)
		require.NoError(t, err)
		require.NoError(t, hb.Ingest(proc, newBatch(t,
			ints("k", 1, 0, 0).withNulls(false, true, true), ints("b", 1, 2, 3))))
		stats := hb.Stats()
		require.Equal(t, 3, stats.Rows)

		rbats := probeAll(t, proc, hb, newBatch(t,
			ints("k", 1, 0).withNulls(false, true), ints("p", 10, 20)))
		if joinNulls {
			require.Equal(t, 3, stats.Indexed)
			require.Equal(t, []string{"k=1 b=1 p=10", "k=null b=2 p=20", "k=null b=3 p=20"}, sortedRowsOf(rbats...))
		} else {
			require.Equal(t, 1, stats.Indexed)
			require.Equal(t, []string{"k=1 b=1 p=10"}, sortedRowsOf(rbats...))
		}
	}
}

func TestSwapInvariance(t *testing.T) {
	left := []*batch.Batch{
		newBatch(t, ints("id", 1, 2, 2), strs("l", "a", "b", "c")),
		newBatch(t, ints("id", 3, 1), strs("l", "d", "e")),
	}
	right := []*batch.Batch{
		newBatch(t, ints("rid", 2, 1, 4), ints("r", 20, 10, 40)),
	}

	proc := newProc(t)
	hb, err := New(newArg([]string{"id"}, []string{"rid"}))
	require.NoError(t, err)
	for _, bat := range left {
		require.NoError(t, hb.Ingest(proc, bat))
	}
	plain := probeAll(t, proc, hb, right...)

	arg := newArg([]string{"rid"}, []string{"id"})
	arg.Swapped = true
	swapped, err := New(arg)
	require.NoError(t, err)
	for _, bat := range right {
		require.NoError(t, swapped.Ingest(proc, bat))
	}
	flipped := probeAll(t, proc, swapped, left...)

	// the key column kept is always the build side one
	require.Equal(t, []string{"id", "l", "r"}, plain[0].Attrs)
	require.Equal(t, []string{"l", "rid", "r"}, flipped[0].Attrs)
	want := []string{"1 a 10", "1 e 10", "2 b 20", "2 c 20"}
	require.Equal(t, want, project(plain, "id", "l", "r"))
	require.Equal(t, want, project(flipped, "rid", "l", "r"))
}

// project renders the named columns of every row, sorted.
func project(bats []*batch.Batch, names ...string) []string {
	var rows []string
	for _, bat := range bats {
		for i := 0; i < bat.RowCount(); i++ {
			row := ""
			for j, name := range names {
				if j > 0 {
					row += " "
				}
				row += cell(bat.Vecs[bat.ColumnIndex(name)], i)
			}
			rows = append(rows, row)
		}
	}
	sort.Strings(rows)
	return rows
}

func TestColumnDropAndSuffix(t *testing.T) {
	proc := newProc(t)
	hb, err := New(newArg([]string{"id"}, []string{"id"}))
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("id", 1), strs("v", "b"))))
	probe := newBatch(t, strs("w", "x"), ints("id", 1), strs("v", "p"))
	rbats := probeAll(t, proc, hb, probe)
	require.Equal(t, []string{"id", "v", "w", "v_right"}, rbats[0].Attrs)
	require.Equal(t, []string{"id=1 v=b w=x v_right=p"}, rowsOf(rbats...))
	// the caller's batch keeps its key column
	require.Equal(t, []string{"w", "id", "v"}, probe.Attrs)

	hb, err = New(newArg([]string{"id"}, []string{"id"}))
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("id", 1), strs("v", "b"), strs("v_right", "c"))))
	op, err := hb.Finalize(proc)
	require.NoError(t, err)
	defer op.Free(proc)
	_, err = op.Execute(proc, newBatch(t, ints("id", 1), strs("v", "p")))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}

func TestEmptyBuild(t *testing.T) {
	proc := newProc(t)
	probe := newBatch(t, ints("id", 1, 2), ints("p", 5, 6))

	// a build without rows shapes the output like a build without a match
	hb, err := New(newArg([]string{"id"}, []string{"id"}))
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("id"), strs("v"))))
	require.NoError(t, hb.Ingest(proc, nil))
	require.NoError(t, hb.Ingest(proc, batch.EmptyBatch))
	require.Equal(t, 0, hb.Stats().Batches)
	empty := probeAll(t, proc, hb, probe)

	hb, err = New(newArg([]string{"id"}, []string{"id"}))
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("id", 9), strs("v", "x"))))
	miss := probeAll(t, proc, hb, probe)

	require.Equal(t, 1, len(empty))
	require.Equal(t, 0, empty[0].RowCount())
	require.Equal(t, []string{"id", "v", "p"}, empty[0].Attrs)
	require.Equal(t, miss[0].Attrs, empty[0].Attrs)
	for i, vec := range empty[0].Vecs {
		require.True(t, vec.GetType().Eq(*miss[0].Vecs[i].GetType()), "column %d", i)
	}

	// with no batch at all only the probe columns are known
	hb, err = New(newArg([]string{"id"}, []string{"id"}))
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, nil))
	rbats := probeAll(t, proc, hb, probe)
	require.Equal(t, []string{"p"}, rbats[0].Attrs)
	require.Equal(t, 0, rbats[0].RowCount())
}

func TestBuildColumnOrder(t *testing.T) {
	proc := newProc(t)
	hb, err := New(newArg([]string{"id"}, []string{"id"}))
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("id", 1), ints("a", 10), ints("b", 20))))

	// same types in another order would swap a and b
	err = hb.Ingest(proc, newBatch(t, ints("id", 2), ints("b", 21), ints("a", 11)))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	err = hb.Ingest(proc, newBatch(t, ints("id", 2), ints("a", 11)))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	err = hb.Ingest(proc, newBatch(t, ints("id", 2), ints("a", 11), strs("b", "21")))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	err = hb.Ingest(proc, newBatch(t, ints("id"), ints("b"), ints("a")))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	require.Equal(t, 1, hb.Stats().Batches)
	require.Equal(t, 1, hb.Stats().Rows)

	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("id", 2), ints("a", 11), ints("b", 21))))
	rbats := probeAll(t, proc, hb, newBatch(t, ints("id", 2)))
	require.Equal(t, []string{"id=2 a=11 b=21"}, rowsOf(rbats...))

	root, err := New(newArg([]string{"id"}, []string{"id"}))
	require.NoError(t, err)
	other := root.Split(1)
	require.NoError(t, root.Ingest(proc, newBatch(t, ints("id", 1), ints("a", 10), ints("b", 20))))
	require.NoError(t, other.Ingest(proc, newBatch(t, ints("id", 2), ints("b", 21), ints("a", 11))))
	require.True(t, moerr.IsMoErrCode(root.Combine(proc, other), moerr.ErrInvalidInput))
	require.Equal(t, 1, root.Stats().Batches)
	require.Equal(t, 1, other.(*HashBuild).Stats().Batches)

	// a sink that only saw an empty batch still brings its layout
	empty := root.Split(2)
	require.NoError(t, empty.Ingest(proc, newBatch(t, ints("id"), ints("b"), ints("a"))))
	require.True(t, moerr.IsMoErrCode(root.Combine(proc, empty), moerr.ErrInvalidInput))

	// and hands it on when the receiver has none
	fresh := root.Split(3).(*HashBuild)
	layout := root.Split(4)
	require.NoError(t, layout.Ingest(proc, newBatch(t, ints("id"), ints("a"), ints("b"))))
	require.NoError(t, fresh.Combine(proc, layout))
	rbats = probeAll(t, proc, fresh, newBatch(t, ints("id", 1), ints("p", 1)))
	require.Equal(t, []string{"id", "a", "b", "p"}, rbats[0].Attrs)
}

func TestKeyTypes(t *testing.T) {
	proc := newProc(t)
	hb, err := New(newArg([]string{"id"}, []string{"id"}))
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("id", 1, 2))))
	err = hb.Ingest(proc, newBatch(t, strs("id", "1")))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	require.Equal(t, 1, hb.Stats().Batches)

	op, err := hb.Finalize(proc)
	require.NoError(t, err)
	defer op.Free(proc)
	narrow := newBatch(t, column{name: "id", vals: []int32{2}}, ints("p", 5))
	_, err = op.Execute(proc, narrow)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	// a cast lines the probe key up with the build key, the column it reads
	// is dropped like a plain key column
	arg := newArg([]string{"id"}, nil)
	arg.ProbeKeys = []colexec.ExpressionExecutor{
		colexec.NewCastExpressionExecutor(colexec.NewColumnExpressionExecutor("id"), types.T_int64.ToType()),
	}
	hb, err = New(arg)
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("id", 1, 2))))
	rbats := probeAll(t, proc, hb, narrow)
	require.Equal(t, []string{"id", "p"}, rbats[0].Attrs)
	require.Equal(t, []string{"id=2 p=5"}, rowsOf(rbats...))
}

func TestProbeClones(t *testing.T) {
	proc := newProc(t)
	hb, err := New(newArg([]string{"id"}, []string{"id"}))
	require.NoError(t, err)
	require.NoError(t, hb.Ingest(proc, newBatch(t, ints("id", 1, 2, 3))))
	op, err := hb.Finalize(proc)
	require.NoError(t, err)
	clones := []vm.Operator{op, op.Split(1), op.Split(2)}

	total := new(join.ProbeStats)
	for i, clone := range clones {
		rbat, err := clone.Execute(proc, newBatch(t, ints("id", int64(i+1), 9), ints("p", 1, 2)))
		require.NoError(t, err)
		require.Equal(t, 1, rbat.RowCount())
		require.NoError(t, total.Merge(clone.(*join.InnerJoin).Stats()))
	}
	require.Equal(t, int64(6), total.Rows)
	require.Equal(t, int64(3), total.Matched)
	require.Equal(t, int64(3), total.Emitted)
	require.InDelta(t, 4, float64(total.DistinctKeys()), 1)

	for _, clone := range clones {
		clone.Free(proc)
	}
	_, err = op.Execute(proc, newBatch(t, ints("id", 1)))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
}
