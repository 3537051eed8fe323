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

/*
Given one or more coordinate-sorted, indexed BAMs, and a BED file or region
describing genomic positions of interest, bio-readmeanlen reports, for each
position, the mean number of aligned bases of the reads covering it
(ReadMeanLen).  A read's aligned bases exclude hard clips and any run of
low-quality bases (below -min-base-qual) at either end.  Low values flag
positions where reads tend to be heavily clipped, which often indicates local
mis-alignment.

Reads are assigned to samples by their RG tag and the header's @RG SM field;
reads without one are attributed to a sample named after their BAM file.

Output is a TSV with ##INFO header lines, followed by
"#CHROM POS ReadMeanLen" rows; positions without reads get ".".

Sample usage:
bio-readmeanlen \
    --bed my-regions.bed \
    --out readmeanlen.tsv.gz \
    --plot 10 \
    sample1.bam sample2.bam
*/
package main
