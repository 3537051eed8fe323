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
	"fmt"
	"math"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of one annotation key over a scan.
type Summary struct {
	Key string
	// NumSites is the number of positions scanned, NumValues the number with
	// a value for Key, and NumFailed the number skipped due to errors.
	NumSites  int
	NumValues int
	NumFailed int
	// Mean, StdDev, Min and Max are NaN if NumValues is zero.  StdDev is also
	// NaN if NumValues is one.
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: %d/%d site(s) annotated, %d failed, mean %.1f, sd %.1f, range [%.1f, %.1f]",
		s.Key, s.NumValues, s.NumSites, s.NumFailed, s.Mean, s.StdDev, s.Min, s.Max)
}

// Values returns the numeric values of key across results, in site order,
// skipping sites without a value.
func Values(results []SiteResult, key string) ([]float64, error) {
	var values []float64
	for _, res := range results {
		v, ok := res.Values[key]
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("sitescan.Values: %s at %s:%d is not numeric: %v", key, res.RefName, res.Pos+1, err)
		}
		values = append(values, f)
	}
	return values, nil
}

// Summarize computes summary statistics of key over results.
func Summarize(results []SiteResult, key string) (Summary, error) {
	s := Summary{
		Key:      key,
		NumSites: len(results),
		Mean:     math.NaN(),
		StdDev:   math.NaN(),
		Min:      math.NaN(),
		Max:      math.NaN(),
	}
	for _, res := range results {
		if res.Err != nil {
			s.NumFailed++
		}
	}
	values, err := Values(results, key)
	if err != nil {
		return s, err
	}
	s.NumValues = len(values)
	if len(values) == 0 {
		return s, nil
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	s.Min, s.Max = values[0], values[0]
	for _, v := range values[1:] {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	return s, nil
}

// PlotSeries renders the values of key across results, in site order, as an
// ASCII line chart of the given height.  It returns "" if there is nothing to
// plot.
func PlotSeries(results []SiteResult, key string, height int) (string, error) {
	values, err := Values(results, key)
	if err != nil || len(values) == 0 {
		return "", err
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Precision(1),
		asciigraph.Caption(fmt.Sprintf("%s over %d site(s)", key, len(values)))), nil
}
