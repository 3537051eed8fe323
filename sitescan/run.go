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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bio-annotate/annotate"
	"github.com/grailbio/bio-annotate/encoding/bamprovider"
	"github.com/grailbio/bio-annotate/interval"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
)

// SampleNameFromPath derives a default sample name from an alignment path,
// e.g. "s3://bucket/NA12878.sorted.bam" -> "NA12878.sorted".
func SampleNameFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".bam")
}

// ResolveAnnotations returns the annotations named by opts.Annotations,
// configured with opts.MinBaseQual.
func ResolveAnnotations(opts *Opts) ([]annotate.InfoFieldAnnotation, error) {
	if opts.MinBaseQual < 0 || opts.MinBaseQual > 255 {
		return nil, fmt.Errorf("sitescan.ResolveAnnotations: invalid min-base-qual= argument %d", opts.MinBaseQual)
	}
	registry := annotate.DefaultRegistry
	if opts.MinBaseQual != annotate.DefaultMinBaseQual {
		registry = annotate.NewStandardRegistry(byte(opts.MinBaseQual))
	}
	return registry.Resolve(opts.Annotations)
}

// LoadSites reads the sites selected by opts (exactly one of BedPath and
// Region) and resolves them against header.
func LoadSites(ctx context.Context, opts *Opts, header *sam.Header) ([]interval.Entry, error) {
	var entries []interval.Entry
	switch {
	case (opts.BedPath != "") && (opts.Region != ""):
		return nil, fmt.Errorf("sitescan.LoadSites: -region and -bed flags can't be used together")
	case opts.BedPath != "":
		var err error
		if entries, err = interval.LoadBEDEntries(ctx, opts.BedPath); err != nil {
			return nil, err
		}
	case opts.Region != "":
		entry, err := interval.ParseRegionString(opts.Region)
		if err != nil {
			return nil, err
		}
		entries = []interval.Entry{entry}
	default:
		return nil, fmt.Errorf("sitescan.LoadSites: either -bed or -region is required")
	}
	return interval.Resolve(entries, header)
}

// Run annotates the sites selected by opts in the given BAM files, and writes
// the TSV to outPath ("" or "-" for stdout; a ".gz" path is gzipped).
func Run(ctx context.Context, bampaths []string, outPath string, opts *Opts) (results []SiteResult, err error) {
	if len(bampaths) == 0 {
		return nil, fmt.Errorf("sitescan.Run: at least one BAM path required")
	}
	if len(opts.IndexPaths) != 0 && len(opts.IndexPaths) != len(bampaths) {
		return nil, fmt.Errorf("sitescan.Run: got %d index path(s) for %d BAM path(s)", len(opts.IndexPaths), len(bampaths))
	}
	annotations, err := ResolveAnnotations(opts)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, len(bampaths))
	for i, path := range bampaths {
		var provOpts bamprovider.ProviderOpts
		if len(opts.IndexPaths) != 0 {
			provOpts.Index = opts.IndexPaths[i]
		}
		sources[i] = Source{
			Provider:      bamprovider.NewProvider(path, provOpts),
			DefaultSample: SampleNameFromPath(path),
		}
	}
	defer func() {
		for _, src := range sources {
			if e := src.Provider.Close(); e != nil && err == nil {
				err = e
			}
		}
	}()

	header, err := sources[0].Provider.GetHeader()
	if err != nil {
		return nil, err
	}
	sites, err := LoadSites(ctx, opts, header)
	if err != nil {
		return nil, err
	}
	if results, err = Scan(ctx, sources, sites, annotations, opts); err != nil {
		return nil, err
	}
	if err = writeOutput(ctx, outPath, results, annotations); err != nil {
		return nil, err
	}
	return results, nil
}

func writeOutput(ctx context.Context, outPath string, results []SiteResult, annotations []annotate.InfoFieldAnnotation) (err error) {
	if outPath == "" || outPath == "-" {
		return WriteTSV(os.Stdout, results, annotations)
	}
	var out file.File
	if out, err = file.Create(ctx, outPath); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := io.Writer(out.Writer(ctx))
	if fileio.DetermineType(outPath) == fileio.Gzip {
		gz := gzip.NewWriter(w)
		defer func() {
			if e := gz.Close(); e != nil && err == nil {
				err = e
			}
		}()
		w = gz
	}
	if err = WriteTSV(w, results, annotations); err != nil {
		return
	}
	log.Printf("sitescan.Run: wrote %d site(s) to %s", len(results), outPath)
	return
}
