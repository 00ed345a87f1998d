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

package config

import (
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/matrixorigin/pipejoin/pkg/common/moerr"
	"github.com/matrixorigin/pipejoin/pkg/logutil"
	"github.com/matrixorigin/pipejoin/pkg/vm"
)

const (
	defaultSuffix    = "_right"
	defaultBatchRows = 8192
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
	defaultMaxSize   = 512
)

// Config is the content of a mo-join configuration file.
type Config struct {
	Log  logutil.LogConfig `toml:"log"`
	Join JoinConfig        `toml:"join"`
}

// JoinConfig holds the parameters of the [join] section
type JoinConfig struct {
	// Kind of the join, only "inner" runs.
	Kind string `toml:"kind"`

	// Suffix renames right columns whose names are taken by left ones.
	Suffix string `toml:"suffix"`

	// Partitions of the key index. 0 means GOMAXPROCS.
	Partitions int `toml:"partitions"`

	// Workers building and probing in parallel. 0 means GOMAXPROCS.
	Workers int `toml:"workers"`

	// JoinNulls lets NULL keys match each other.
	JoinNulls bool `toml:"join-nulls"`

	// SwapSmaller builds over the smaller input.
	SwapSmaller bool `toml:"swap-smaller"`

	// BatchRows is the number of rows per batch read from a CSV source.
	BatchRows int64 `toml:"batch-rows"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Join.SwapSmaller = true
	cfg.SetDefaultValues()
	return cfg
}

// SetDefaultValues fills the zero values left by the configuration file.
func (cfg *Config) SetDefaultValues() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaultLogFormat
	}
	if cfg.Log.MaxSize == 0 {
		cfg.Log.MaxSize = defaultMaxSize
	}
	cfg.Join.SetDefaultValues()
}

func (jc *JoinConfig) SetDefaultValues() {
	if jc.Kind == "" {
		jc.Kind = vm.InnerJoin.String()
	}
	if jc.Suffix == "" {
		jc.Suffix = defaultSuffix
	}
	if jc.Partitions == 0 {
		jc.Partitions = runtime.GOMAXPROCS(0)
	}
	if jc.Workers == 0 {
		jc.Workers = runtime.GOMAXPROCS(0)
	}
	if jc.BatchRows == 0 {
		jc.BatchRows = defaultBatchRows
	}
}

// JoinKind returns the parsed kind.
func (jc *JoinConfig) JoinKind() (vm.JoinKind, error) {
	return vm.ParseJoinKind(jc.Kind)
}

// Validate checks a configuration with its defaults set.
func (cfg *Config) Validate() error {
	switch strings.ToLower(cfg.Log.Format) {
	case "console", "json":
	default:
		return moerr.NewBadConfigNoCtx("unsupported log format %q", cfg.Log.Format)
	}
	return cfg.Join.Validate()
}

func (jc *JoinConfig) Validate() error {
	kind, err := jc.JoinKind()
	if err != nil {
		return moerr.NewBadConfigNoCtx("join kind: %v", err)
	}
	if !kind.Supported() {
		return moerr.NewBadConfigNoCtx("%s join is not supported", kind)
	}
	if jc.Suffix == "" {
		return moerr.NewBadConfigNoCtx("empty suffix")
	}
	if jc.Partitions < 0 {
		return moerr.NewBadConfigNoCtx("partitions %d is negative", jc.Partitions)
	}
	if jc.Workers < 0 {
		return moerr.NewBadConfigNoCtx("workers %d is negative", jc.Workers)
	}
	if jc.BatchRows <= 0 {
		return moerr.NewBadConfigNoCtx("batch-rows %d is not positive", jc.BatchRows)
	}
	return nil
}

// LoadConfigFromFile decodes the file at path, sets the defaults and
// validates the result. Keys unknown to Config are rejected.
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Join.SwapSmaller = true
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, moerr.NewBadConfigNoCtx("decode %s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, moerr.NewBadConfigNoCtx("unknown key %s in %s", undecoded[0], path)
	}
	cfg.SetDefaultValues()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
