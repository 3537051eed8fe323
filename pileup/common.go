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
	"fmt"

	"github.com/grailbio/bio-annotate/interval"
	"github.com/grailbio/hts/sam"
)

// Common pileup components.

// PosType is the integer type used to represent genomic positions.
type PosType = interval.PosType

// Element is one read overlapping a pileup position.
type Element struct {
	Read *sam.Record
	// Offset is the 0-based index into Read's stored bases of the base aligned
	// to the pileup position, or -1 if the position falls in a deletion or
	// reference skip.
	Offset int
}

// IsDeletion returns true if the read spans the position without a base
// aligned to it.
func (e Element) IsDeletion() bool {
	return e.Offset < 0
}

// Pileup is the set of reads of one sample overlapping one position.  Element
// order is not meaningful.
type Pileup []Element

// NumReads returns the number of elements, deletions included.
func (p Pileup) NumReads() int {
	return len(p)
}

// ReadFilter selects the reads that may enter a pileup.
type ReadFilter struct {
	// FlagExclude drops reads with any of these FLAG bits set.
	FlagExclude int
	// MinMapQ drops reads with MAPQ below this value.
	MinMapQ int
}

// DefaultReadFilter drops unmapped, secondary, QC-fail, duplicate and
// supplementary reads.
var DefaultReadFilter = ReadFilter{
	FlagExclude: int(sam.Unmapped | sam.Secondary | sam.QCFail | sam.Duplicate | sam.Supplementary),
	MinMapQ:     0,
}

// Pass returns true if r passes the filter.  Reads without a CIGAR never
// pass, since they cannot be placed in a pileup.
func (f ReadFilter) Pass(r *sam.Record) bool {
	return (f.FlagExclude&int(r.Flags) == 0) && (int(r.MapQ) >= f.MinMapQ) && (len(r.Cigar) != 0)
}

// ReadOffset walks r's CIGAR to find the stored base aligned to the 0-based
// reference position refPos.  covered is false if r's alignment does not
// include refPos; otherwise offset is the base index, or -1 when refPos falls
// in a deletion or skip.
func ReadOffset(r *sam.Record, refPos PosType) (offset int, covered bool, err error) {
	posInRef := PosType(r.Pos)
	if refPos < posInRef {
		return -1, false, nil
	}
	posInRead := 0
	for _, co := range r.Cigar {
		cLen := co.Len()
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if refPos < posInRef+PosType(cLen) {
				return posInRead + int(refPos-posInRef), true, nil
			}
			posInRef += PosType(cLen)
			posInRead += cLen
		case sam.CigarInsertion, sam.CigarSoftClipped:
			posInRead += cLen
		case sam.CigarDeletion, sam.CigarSkipped:
			if refPos < posInRef+PosType(cLen) {
				return -1, true, nil
			}
			posInRef += PosType(cLen)
		case sam.CigarHardClipped, sam.CigarPadded:
			// do nothing
		default:
			return -1, false, fmt.Errorf("pileup.ReadOffset: unexpected CIGAR code %v in read %s", co, r.Name)
		}
	}
	return -1, false, nil
}
