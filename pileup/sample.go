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
	"sort"

	"github.com/grailbio/hts/sam"
)

var (
	rgTag = sam.NewTag("RG")
	smTag = sam.NewTag("SM")
)

// SampleResolver maps reads to sample names through their RG aux tag and the
// header's @RG SM fields.
type SampleResolver struct {
	byReadGroup map[string]string
	fallback    string
}

// NewSampleResolver indexes header's read groups.  fallback is used for reads
// without an RG tag, and for read groups without an SM field; it is usually
// derived from the input file name.
func NewSampleResolver(header *sam.Header, fallback string) *SampleResolver {
	s := &SampleResolver{
		byReadGroup: make(map[string]string),
		fallback:    fallback,
	}
	if header == nil {
		return s
	}
	for _, rg := range header.RGs() {
		if sample := rg.Get(smTag); sample != "" {
			s.byReadGroup[rg.Name()] = sample
		}
	}
	return s
}

// Samples returns the distinct sample names declared by the header's read
// groups, in sorted order, or just the fallback if there are none.
func (s *SampleResolver) Samples() []string {
	if len(s.byReadGroup) == 0 {
		return []string{s.fallback}
	}
	seen := make(map[string]bool)
	var samples []string
	for _, sample := range s.byReadGroup {
		if !seen[sample] {
			seen[sample] = true
			samples = append(samples, sample)
		}
	}
	sort.Strings(samples)
	return samples
}

// Sample returns the sample r belongs to.
func (s *SampleResolver) Sample(r *sam.Record) string {
	aux := r.AuxFields.Get(rgTag)
	if aux == nil {
		return s.fallback
	}
	id, ok := aux.Value().(string)
	if !ok {
		return s.fallback
	}
	if sample, ok := s.byReadGroup[id]; ok {
		return sample
	}
	return s.fallback
}
