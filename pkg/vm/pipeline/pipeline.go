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

package pipeline

import (
	"context"
	"runtime"
	"time"

	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/config"
	"github.com/matrixorigin/pipejoin/pkg/container/batch"
	"github.com/matrixorigin/pipejoin/pkg/logutil"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec/hashbuild"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec/join"
	"github.com/matrixorigin/pipejoin/pkg/vm"
	"github.com/matrixorigin/pipejoin/pkg/vm/process"
	"github.com/panjf2000/ants/v2"
	queue "github.com/yireyun/go-queue"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// New returns a pipeline joining with arg. Suffix and partitions left empty
// in arg are taken from cfg, and cfg.JoinNulls turns JoinNulls on.
func New(cfg config.JoinConfig, arg hashbuild.Argument) *Pipeline {
	if arg.Suffix == "" {
		arg.Suffix = cfg.Suffix
	}
	if arg.Partitions <= 0 {
		arg.Partitions = cfg.Partitions
	}
	arg.JoinNulls = arg.JoinNulls || cfg.JoinNulls
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{cfg: cfg, arg: arg}
}

// Run joins left with right. The left input is built unless SwapSmaller is
// set and left has more rows than right. A cancelled ctx stops the run
// between two batches with ctx.Err().
func (p *Pipeline) Run(ctx context.Context, left, right []*batch.Batch) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	arg := p.arg
	build, probe := left, right
	swapped := false
	if p.cfg.SwapSmaller && rowCount(left) > rowCount(right) {
		build, probe = right, left
		arg.BuildKeys, arg.ProbeKeys = arg.ProbeKeys, arg.BuildKeys
		arg.Swapped = !arg.Swapped
		swapped = true
	}

	proc := process.New(ctx, process.Limitation{BatchRows: p.cfg.BatchRows})
	defer proc.Cancel()

	root, err := hashbuild.New(arg)
	if err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(p.cfg.Workers, ants.WithPanicHandler(func(v interface{}) {
		logutil.Error("join worker panic", zap.Any("panic", v))
	}))
	if err != nil {
		return nil, moerr.NewInternalError(proc.Ctx, "create worker pool: %v", err)
	}
	defer pool.Release()

	sink, err := p.build(proc, pool, root, build)
	if err != nil {
		return nil, err
	}
	buildStats := sink.(*hashbuild.HashBuild).Stats()
	op, err := sink.Finalize(proc)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Swapped: swapped,
		Build:   buildStats,
	}
	res.Batches, res.Probe, err = p.probe(proc, pool, op, probe)
	if err != nil {
		return nil, err
	}

	logutil.Info("hash join done",
		zap.Bool("swapped", swapped),
		zap.Int("build-rows", buildStats.Rows),
		zap.Int("groups", buildStats.Groups),
		zap.Int64("probe-rows", res.Probe.Rows),
		zap.Int64("emitted", res.Probe.Emitted),
		zap.Uint64("distinct-probe-keys", res.Probe.DistinctKeys()),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// build ingests bats into one split of root per worker, worker w taking
// every n-th batch from w, then combines the splits pairwise.
func (p *Pipeline) build(proc *process.Process, pool *ants.Pool, root *hashbuild.HashBuild, bats []*batch.Batch) (vm.Sink, error) {
	n := p.cfg.Workers
	if n > len(bats) {
		n = len(bats)
	}
	if n == 0 {
		n = 1
	}
	sinks := make([]vm.Sink, n)
	sinks[0] = root
	for i := 1; i < n; i++ {
		sinks[i] = root.Split(i)
	}

	err := runAll(proc, pool, n, func(proc *process.Process, w int) error {
		for i := w; i < len(bats); i += n {
			if err, ok := vm.CancelCheck(proc); ok {
				return err
			}
			if err := sinks[w].Ingest(proc, bats[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for len(sinks) > 1 {
		half := len(sinks) / 2
		err := runAll(proc, pool, half, func(proc *process.Process, i int) error {
			return sinks[2*i].Combine(proc, sinks[2*i+1])
		})
		if err != nil {
			return nil, err
		}
		next := make([]vm.Sink, 0, half+1)
		for i := 0; i < half; i++ {
			next = append(next, sinks[2*i])
		}
		if len(sinks)%2 == 1 {
			next = append(next, sinks[len(sinks)-1])
		}
		sinks = next
	}
	return sinks[0], nil
}

// probe executes every batch of bats on one clone of op per worker. Batches
// are handed out through a queue, results keep the input order.
func (p *Pipeline) probe(proc *process.Process, pool *ants.Pool, op vm.Operator, bats []*batch.Batch) ([]*batch.Batch, join.ProbeStats, error) {
	var stats join.ProbeStats
	n := p.cfg.Workers
	if n > len(bats) {
		n = len(bats)
	}
	if n == 0 {
		n = 1
	}
	ops := make([]vm.Operator, n)
	ops[0] = op
	for i := 1; i < n; i++ {
		ops[i] = op.Split(i)
	}
	defer func() {
		for _, op := range ops {
			op.Free(proc)
		}
	}()

	q := queue.NewQueue(uint32(len(bats) + 1))
	for i := range bats {
		if ok, _ := q.Put(i); !ok {
			return nil, stats, moerr.NewInternalError(proc.Ctx, "probe queue is full at batch %d", i)
		}
	}

	rbats := make([]*batch.Batch, len(bats))
	err := runAll(proc, pool, n, func(proc *process.Process, w int) error {
		for {
			if err, ok := vm.CancelCheck(proc); ok {
				return err
			}
			v, ok, _ := q.Get()
			if !ok {
				return nil
			}
			i := v.(int)
			rbat, err := ops[w].Execute(proc, bats[i])
			if err != nil {
				return err
			}
			rbats[i] = rbat
		}
	})
	if err != nil {
		return nil, stats, err
	}

	for _, op := range ops {
		if err := stats.Merge(op.(*join.InnerJoin).Stats()); err != nil {
			return nil, stats, err
		}
	}
	return rbats, stats, nil
}

// runAll runs fn(0) ... fn(n-1) on the pool and waits for all of them. Each
// fn gets a child of proc that is cancelled by the first error, and that
// error is returned.
func runAll(proc *process.Process, pool *ants.Pool, n int, fn func(proc *process.Process, i int) error) error {
	g, ctx := errgroup.WithContext(proc.Ctx)
	child := process.New(ctx, proc.Lim)
	child.Id = proc.Id
	defer child.Cancel()

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			done := make(chan error, 1)
			err := pool.Submit(func() {
				done <- vm.Run(child, func() error { return fn(child, i) })
			})
			if err != nil {
				return moerr.NewInternalError(child.Ctx, "submit task %d: %v", i, err)
			}
			return <-done
		})
	}
	return g.Wait()
}

func rowCount(bats []*batch.Batch) int {
	cnt := 0
	for _, bat := range bats {
		if bat != nil {
			cnt += bat.RowCount()
		}
	}
	return cnt
}
