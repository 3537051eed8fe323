// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package pileup

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
)

// Collector builds the per-sample pileups at a single position.  It is not
// thread-safe; use one Collector per goroutine.
type Collector struct {
	pos     PosType
	filter  ReadFilter
	pileups map[string]Pileup

	nFiltered int
}

// NewCollector returns a Collector for 0-based position pos.
func NewCollector(pos PosType, filter ReadFilter) *Collector {
	return &Collector{
		pos:     pos,
		filter:  filter,
		pileups: make(map[string]Pileup),
	}
}

// AddSample makes sample present at the position even if none of its reads
// end up covering it.
func (c *Collector) AddSample(sample string) {
	if _, ok := c.pileups[sample]; !ok {
		c.pileups[sample] = Pileup{}
	}
}

// Add places r in sample's pileup if it passes the filter and its alignment
// covers the position.  It returns whether r was added.  The Collector keeps
// a reference to r, so the caller must not recycle it.
func (c *Collector) Add(sample string, r *sam.Record) (bool, error) {
	if !c.filter.Pass(r) {
		c.nFiltered++
		return false, nil
	}
	offset, covered, err := ReadOffset(r, c.pos)
	if err != nil || !covered {
		return false, err
	}
	c.pileups[sample] = append(c.pileups[sample], Element{Read: r, Offset: offset})
	return true, nil
}

// Pileups returns the collected pileups, keyed by sample.
func (c *Collector) Pileups() map[string]Pileup {
	if c.nFiltered != 0 {
		log.Debug.Printf("pileup.Collector: %d read(s) filtered at position %d", c.nFiltered, c.pos)
	}
	return c.pileups
}
