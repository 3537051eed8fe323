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
package main

/*
bio-readmeanlen reports the mean number of aligned bases of the reads covering
each position of a BED file or region, over one or more BAMs.
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bio-annotate/sitescan"
)

var (
	bedPath         = flag.String("bed", sitescan.DefaultOpts.BedPath, "Input BED path; this xor -region required")
	region          = flag.String("region", sitescan.DefaultOpts.Region, "Restrict computation to the specified region. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>; this xor -bed required")
	indexPaths      = flag.String("index", "", "Comma-separated BAM index paths, one per BAM. Defaults to bampath + .bai")
	annotationNames = flag.String("annotations", strings.Join(sitescan.DefaultOpts.Annotations, ","), "Comma-separated annotations to compute")
	flagExclude     = flag.Int("flag-exclude", sitescan.DefaultOpts.FlagExclude, "Reads with a FLAG bit intersecting this value are skipped")
	mapq            = flag.Int("mapq", sitescan.DefaultOpts.Mapq, "Reads with MAPQ below this level are skipped")
	minBaseQual     = flag.Int("min-base-qual", sitescan.DefaultOpts.MinBaseQual, "Bases below this quality at either end of a read are treated as clipped")
	outPath         = flag.String("out", "-", "Output TSV path; '-' for stdout, .gz suffix for gzip")
	parallelism     = flag.Int("parallelism", 0, "Maximum number of simultaneous (local) jobs to launch; 0 = runtime.NumCPU()")
	plotHeight      = flag.Int("plot", 0, "If positive, print a chart of this height with per-site values to stderr")
)

func bioReadMeanLenUsage() {
	fmt.Printf("Usage: %s [OPTIONS] bampath...\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func main() {
	flag.Usage = bioReadMeanLenUsage
	shutdown := grail.Init()
	defer shutdown()

	bampaths := flag.Args()
	if len(bampaths) == 0 {
		log.Fatalf("Missing positional arguments (at least one bampath required); please check flag syntax")
	}
	ctx := vcontext.Background()
	opts := sitescan.Opts{
		BedPath:     *bedPath,
		Region:      *region,
		IndexPaths:  splitList(*indexPaths),
		MinBaseQual: *minBaseQual,
		FlagExclude: *flagExclude,
		Mapq:        *mapq,
		Annotations: splitList(*annotationNames),
		Parallelism: *parallelism,
	}
	annotations, err := sitescan.ResolveAnnotations(&opts)
	if err != nil {
		log.Fatalf("%v", err)
	}
	results, err := sitescan.Run(ctx, bampaths, *outPath, &opts)
	if err != nil {
		log.Panicf("%v", err)
	}
	for _, key := range sitescan.KeyNames(annotations) {
		summary, err := sitescan.Summarize(results, key)
		if err != nil {
			log.Printf("%v", err)
			continue
		}
		log.Printf("%v", summary)
		if *plotHeight > 0 {
			plot, err := sitescan.PlotSeries(results, key, *plotHeight)
			if err != nil {
				log.Panicf("%v", err)
			}
			if plot != "" {
				fmt.Fprintln(os.Stderr, plot)
			}
		}
	}
	log.Debug.Printf("exiting")
}
