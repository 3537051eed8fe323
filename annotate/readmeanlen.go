// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package annotate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"gonum.org/v1/gonum/stat"
)

// ReadMeanLenKey is the INFO key written by ReadMeanLen.
const ReadMeanLenKey = "ReadMeanLen"

// ReadMeanLenDescription is the header-line description of ReadMeanLenKey.
const ReadMeanLenDescription = "Mean number of aligned bases for reads - low number indicate possible mis-alignments"

// ReadMeanLen reports the mean number of aligned bases (see NumAlignedBases)
// over every read piled up at a site, across all samples.
type ReadMeanLen struct {
	// MinBaseQual is the clipping threshold passed to NumAlignedBases.
	MinBaseQual byte
}

// NewReadMeanLen returns a ReadMeanLen that clips end bases below
// minBaseQual.
func NewReadMeanLen(minBaseQual byte) *ReadMeanLen {
	return &ReadMeanLen{MinBaseQual: minBaseQual}
}

// KeyNames implements InfoFieldAnnotation.
func (a *ReadMeanLen) KeyNames() []string {
	return []string{ReadMeanLenKey}
}

// HeaderLines implements InfoFieldAnnotation.
func (a *ReadMeanLen) HeaderLines() []HeaderLine {
	return []HeaderLine{{
		ID:          ReadMeanLenKey,
		Number:      "1",
		Type:        Float,
		Description: ReadMeanLenDescription,
	}}
}

// Annotate implements InfoFieldAnnotation.  It returns no result when the
// site has no samples, or when the samples' pileups are all empty.
func (a *ReadMeanLen) Annotate(site *Site) (Result, error) {
	if len(site.Pileups) == 0 {
		return nil, nil
	}
	var lens []float64
	for sample, p := range site.Pileups {
		for _, e := range p {
			n, err := NumAlignedBases(e.Read, a.MinBaseQual)
			if err != nil {
				return nil, errors.E(err, fmt.Sprintf("ReadMeanLen: sample %s at %s:%d", sample, site.RefName, site.Pos+1))
			}
			lens = append(lens, float64(n))
		}
	}
	if len(lens) == 0 {
		return nil, nil
	}
	return Result{ReadMeanLenKey: FormatMean(stat.Mean(lens, nil))}, nil
}

// FormatMean renders v with exactly one digit after the decimal point.  Ties
// round away from zero, based on the shortest decimal representation of v, so
// 12.25 is "12.3" and 0.15 is "0.2".
func FormatMean(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%.1f", v)
	}
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	intPart, fracPart := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot+1:]
	}
	digits := []byte(intPart + "0")
	if len(fracPart) > 0 {
		digits[len(digits)-1] = fracPart[0]
	}
	if len(fracPart) > 1 && fracPart[1] >= '5' {
		i := len(digits) - 1
		for ; i >= 0 && digits[i] == '9'; i-- {
			digits[i] = '0'
		}
		if i < 0 {
			digits = append([]byte{'1'}, digits...)
		} else {
			digits[i]++
		}
	}
	sign := ""
	if v < 0 && strings.Trim(string(digits), "0") != "" {
		sign = "-"
	}
	n := len(digits)
	return sign + string(digits[:n-1]) + "." + string(digits[n-1:])
}
