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
package sitescan

import (
	"context"
	"fmt"
	"runtime"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/bio-annotate/annotate"
	"github.com/grailbio/bio-annotate/encoding/bamprovider"
	"github.com/grailbio/bio-annotate/interval"
	"github.com/grailbio/bio-annotate/pileup"
	"github.com/grailbio/hts/sam"
)

// PosType is the integer type used to represent genomic positions.
type PosType = pileup.PosType

type Opts struct {
	// Commandline options.
	BedPath     string
	Region      string
	IndexPaths  []string
	MinBaseQual int
	FlagExclude int
	Mapq        int
	Annotations []string
	Parallelism int
}

var DefaultOpts = Opts{
	MinBaseQual: annotate.DefaultMinBaseQual,
	FlagExclude: pileup.DefaultReadFilter.FlagExclude,
	Mapq:        pileup.DefaultReadFilter.MinMapQ,
	Annotations: []string{annotate.ReadMeanLenKey},
	Parallelism: 0,
}

// Source is one input alignment file.
type Source struct {
	Provider bamprovider.Provider
	// DefaultSample names the sample of reads whose read group does not
	// declare one.
	DefaultSample string
}

// SiteResult holds the annotations computed at one position.
type SiteResult struct {
	RefName string
	// Pos is 0-based.
	Pos PosType
	// Values merges the Results of all annotations; nil if none produced
	// anything.
	Values annotate.Result
	// NumReads counts pileup elements across samples.
	NumReads int
	// Err is set if the site could not be annotated.
	Err error
}

// maxWindow bounds the number of consecutive positions whose reads are
// fetched with a single iterator.
const maxWindow = 4096

// sitePos identifies one position to annotate.
type sitePos struct {
	refName string
	pos     PosType
}

type sourceContext struct {
	provider bamprovider.Provider
	samples  *pileup.SampleResolver
	declared []string
}

// Scan annotates every position of sites, which should come from
// interval.Resolve, with each of annotations.  Positions are split into
// contiguous runs processed in parallel.  A failure confined to one site is
// recorded in that site's SiteResult and logged; Scan itself only fails on
// I/O errors.  Results are returned in site order.
func Scan(ctx context.Context, sources []Source, sites []interval.Entry, annotations []annotate.InfoFieldAnnotation, opts *Opts) ([]SiteResult, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("sitescan.Scan: no input sources")
	}
	srcCtxs := make([]sourceContext, len(sources))
	for i, src := range sources {
		header, err := src.Provider.GetHeader()
		if err != nil {
			return nil, err
		}
		resolver := pileup.NewSampleResolver(header, src.DefaultSample)
		srcCtxs[i] = sourceContext{
			provider: src.Provider,
			samples:  resolver,
			declared: resolver.Samples(),
		}
	}

	positions := make([]sitePos, 0, interval.NumPos(sites))
	for _, e := range sites {
		for pos := e.Start0; pos < e.End; pos++ {
			positions = append(positions, sitePos{e.RefName, pos})
		}
	}
	results := make([]SiteResult, len(positions))
	if len(positions) == 0 {
		return results, nil
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	nJob := parallelism
	if nJob > len(positions) {
		nJob = len(positions)
	}
	filter := pileup.ReadFilter{
		FlagExclude: opts.FlagExclude,
		MinMapQ:     opts.Mapq,
	}

	log.Printf("sitescan.Scan: annotating %d position(s) from %d source(s) (%d jobs)", len(positions), len(sources), nJob)
	err := traverse.Each(nJob, func(jobIdx int) error {
		startIdx := (jobIdx * len(positions)) / nJob
		endIdx := ((jobIdx + 1) * len(positions)) / nJob
		for startIdx < endIdx {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Extend the window over consecutive positions on one contig.
			windowEnd := startIdx + 1
			for windowEnd < endIdx && windowEnd-startIdx < maxWindow &&
				positions[windowEnd].refName == positions[startIdx].refName &&
				positions[windowEnd].pos == positions[windowEnd-1].pos+1 {
				windowEnd++
			}
			if err := scanWindow(positions[startIdx:windowEnd], results[startIdx:windowEnd], srcCtxs, annotations, filter); err != nil {
				return err
			}
			startIdx = windowEnd
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	nFailed := 0
	for _, r := range results {
		if r.Err != nil {
			nFailed++
		}
	}
	log.Printf("sitescan.Scan: done, %d of %d position(s) failed", nFailed, len(results))
	return results, nil
}

// scanWindow annotates positions, which must be consecutive on one contig.
func scanWindow(positions []sitePos, results []SiteResult, srcCtxs []sourceContext, annotations []annotate.InfoFieldAnnotation, filter pileup.ReadFilter) error {
	refName := positions[0].refName
	start := positions[0].pos
	limit := positions[len(positions)-1].pos + 1
	collectors := make([]*pileup.Collector, len(positions))
	for i, p := range positions {
		collectors[i] = pileup.NewCollector(p.pos, filter)
		results[i] = SiteResult{RefName: refName, Pos: p.pos}
	}
	for _, src := range srcCtxs {
		for _, sample := range src.declared {
			for _, c := range collectors {
				c.AddSample(sample)
			}
		}
		iter := src.provider.NewIterator(refName, int(start), int(limit))
		for iter.Scan() {
			r := iter.Record()
			sample := src.samples.Sample(r)
			first, last := readSpan(r, start, limit)
			for pos := first; pos < last; pos++ {
				idx := pos - start
				if results[idx].Err != nil {
					continue
				}
				if _, err := collectors[idx].Add(sample, r); err != nil {
					results[idx].Err = err
				}
			}
		}
		if err := iter.Close(); err != nil {
			return err
		}
	}
	for i, c := range collectors {
		res := &results[i]
		if res.Err == nil {
			annotateSite(res, c.Pileups(), annotations)
		}
		if res.Err != nil {
			log.Error.Printf("sitescan: skipping %s:%d: %v", res.RefName, res.Pos+1, res.Err)
		}
	}
	return nil
}

// readSpan returns the part of [start, limit) that r's alignment may cover.
func readSpan(r *sam.Record, start, limit PosType) (PosType, PosType) {
	first := PosType(r.Pos)
	if first < start {
		first = start
	}
	refLen, _ := r.Cigar.Lengths()
	last := PosType(r.Pos + refLen)
	if last > limit {
		last = limit
	}
	return first, last
}

func annotateSite(res *SiteResult, pileups map[string]pileup.Pileup, annotations []annotate.InfoFieldAnnotation) {
	for _, p := range pileups {
		res.NumReads += p.NumReads()
	}
	site := annotate.Site{
		RefName: res.RefName,
		Pos:     int(res.Pos),
		Pileups: pileups,
	}
	for _, a := range annotations {
		values, err := a.Annotate(&site)
		if err != nil {
			res.Err = err
			res.Values = nil
			return
		}
		for k, v := range values {
			if res.Values == nil {
				res.Values = make(annotate.Result)
			}
			res.Values[k] = v
		}
	}
}
