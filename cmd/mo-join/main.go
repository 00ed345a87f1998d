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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/matrixorigin/pipejoin/pkg/config"
	"github.com/matrixorigin/pipejoin/pkg/logutil"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec/external"
	"github.com/matrixorigin/pipejoin/pkg/sql/colexec/hashbuild"
	"github.com/matrixorigin/pipejoin/pkg/vm/pipeline"
	"github.com/matrixorigin/pipejoin/pkg/vm/process"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("cfg", "", "toml configuration, built in defaults if empty")
	leftFile   = flag.String("left", "", "csv file of the left relation")
	rightFile  = flag.String("right", "", "csv file of the right relation")
	leftOn     = flag.String("on", "", "comma separated join columns of the left relation")
	rightOn    = flag.String("right-on", "", "comma separated join columns of the right relation, -on if empty")
	outFile    = flag.String("out", "", "csv file the result is written to, stdout if empty")
)

func main() {
	flag.Parse()
	if *leftFile == "" || *rightFile == "" || *leftOn == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := parseConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse config from %s, error: %s\n", *configFile, err.Error())
		os.Exit(1)
	}
	logutil.SetupMOLogger(&cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		logutil.Error("mo-join failed", zap.Error(err))
		os.Exit(1)
	}
}

func parseConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadConfigFromFile(path)
}

func run(ctx context.Context, cfg *config.Config) error {
	kind, err := cfg.Join.JoinKind()
	if err != nil {
		return err
	}
	buildKeys := splitColumns(*leftOn)
	probeKeys := buildKeys
	if *rightOn != "" {
		probeKeys = splitColumns(*rightOn)
	}

	proc := process.New(ctx, process.Limitation{BatchRows: cfg.Join.BatchRows})
	defer proc.Cancel()
	param := external.CsvParam{BatchRows: int(cfg.Join.BatchRows)}
	left, err := external.ReadFile(proc, *leftFile, param)
	if err != nil {
		return err
	}
	right, err := external.ReadFile(proc, *rightFile, param)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg.Join, hashbuild.Argument{
		Kind:      kind,
		BuildKeys: colexec.NewColumnExpressionExecutors(buildKeys...),
		ProbeKeys: colexec.NewColumnExpressionExecutors(probeKeys...),
	})
	res, err := p.Run(ctx, left, right)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return external.WriteCSV(out, res.Batches)
}

func splitColumns(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
