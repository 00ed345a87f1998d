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
	hll "github.com/axiomhq/hyperloglog"
)

func newProbeStats() ProbeStats {
	return ProbeStats{sketch: hll.New()}
}

func (s *ProbeStats) insertKey(key []byte) {
	s.sketch.Insert(key)
}

// DistinctKeys estimates the number of distinct non NULL probe keys.
func (s *ProbeStats) DistinctKeys() uint64 {
	if s.sketch == nil {
		return 0
	}
	return s.sketch.Estimate()
}

// Merge adds the counters of other to s.
func (s *ProbeStats) Merge(other *ProbeStats) error {
	s.Batches += other.Batches
	s.Rows += other.Rows
	s.Matched += other.Matched
	s.Emitted += other.Emitted
	if other.sketch == nil {
		return nil
	}
	if s.sketch == nil {
		s.sketch = hll.New()
	}
	return s.sketch.Merge(other.sketch)
}
