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
	"io"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/bio-annotate/annotate"
)

// missingValue is written for sites where an annotation produced nothing.
const missingValue = "."

// KeyNames returns the INFO keys of annotations, in order.
func KeyNames(annotations []annotate.InfoFieldAnnotation) []string {
	var keys []string
	for _, a := range annotations {
		keys = append(keys, a.KeyNames()...)
	}
	return keys
}

// WriteTSV writes results as a TSV with one column per annotation key.  The
// annotations' INFO header lines come first, followed by a
// "#CHROM POS <keys...>" line.  POS is 1-based.  Missing values, including
// those of failed sites, are written as ".".
func WriteTSV(w io.Writer, results []SiteResult, annotations []annotate.InfoFieldAnnotation) (err error) {
	outTSV := tsv.NewWriter(w)
	for _, a := range annotations {
		for _, line := range a.HeaderLines() {
			outTSV.WriteString(line.String())
			if err = outTSV.EndLine(); err != nil {
				return
			}
		}
	}
	keys := KeyNames(annotations)
	outTSV.WriteString("#CHROM")
	outTSV.WriteString("POS")
	for _, key := range keys {
		outTSV.WriteString(key)
	}
	if err = outTSV.EndLine(); err != nil {
		return
	}
	for _, res := range results {
		outTSV.WriteString(res.RefName)
		outTSV.WriteUint32(uint32(res.Pos + 1))
		for _, key := range keys {
			v, ok := res.Values[key]
			if !ok {
				v = missingValue
			}
			outTSV.WriteString(v)
		}
		if err = outTSV.EndLine(); err != nil {
			return
		}
	}
	return outTSV.Flush()
}
