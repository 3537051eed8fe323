// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package annotate

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// DefaultMinBaseQual is the base quality below which bases hanging off either
// end of a read are treated as clipped.
const DefaultMinBaseQual = 20

// ValidateRead checks the parts of r that clip counting depends on.  It
// returns an errors.Invalid error for an empty CIGAR, a quality array whose
// length differs from the sequence length, a CIGAR whose query length
// disagrees with the sequence, or a hard clip that is not at either end.
func ValidateRead(r *sam.Record) error {
	if len(r.Cigar) == 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("read %s has an empty CIGAR", r.Name))
	}
	if len(r.Qual) != r.Seq.Length {
		return errors.E(errors.Invalid, fmt.Sprintf("read %s has %d base qualities for %d bases", r.Name, len(r.Qual), r.Seq.Length))
	}
	last := len(r.Cigar) - 1
	for i, co := range r.Cigar {
		if co.Type() == sam.CigarHardClipped && i != 0 && i != last {
			return errors.E(errors.Invalid, fmt.Sprintf("read %s has an interior hard clip in CIGAR %v", r.Name, r.Cigar))
		}
	}
	// Reads stored without SEQ ("*") carry no bases to check against.
	if r.Seq.Length != 0 {
		if _, queryLen := r.Cigar.Lengths(); queryLen != r.Seq.Length {
			return errors.E(errors.Invalid, fmt.Sprintf("read %s: CIGAR %v covers %d bases, sequence has %d", r.Name, r.Cigar, queryLen, r.Seq.Length))
		}
	}
	return nil
}

// NumClippedBasesAtStart returns the number of bases clipped at the start of
// r: the length of a leading hard clip, plus the run of bases after it whose
// quality is below minBaseQual.  The result never exceeds the read length.
func NumClippedBasesAtStart(r *sam.Record, minBaseQual byte) (int, error) {
	if err := ValidateRead(r); err != nil {
		return 0, err
	}
	return clippedAtStart(r, minBaseQual), nil
}

// NumClippedBasesAtEnd is the mirror image of NumClippedBasesAtStart.
func NumClippedBasesAtEnd(r *sam.Record, minBaseQual byte) (int, error) {
	if err := ValidateRead(r); err != nil {
		return 0, err
	}
	return clippedAtEnd(r, minBaseQual), nil
}

// NumAlignedBases returns the read length minus the bases clipped at both
// ends, floored at zero.
func NumAlignedBases(r *sam.Record, minBaseQual byte) (int, error) {
	if err := ValidateRead(r); err != nil {
		return 0, err
	}
	return alignedBases(r, minBaseQual), nil
}

// OffsetFromClippedReadStart converts offset, an index into r's stored bases,
// to an index relative to the first base that survives start clipping.  The
// result is negative when offset itself is clipped.
func OffsetFromClippedReadStart(r *sam.Record, offset int, minBaseQual byte) (int, error) {
	nClipped, err := NumClippedBasesAtStart(r, minBaseQual)
	if err != nil {
		return 0, err
	}
	return offset - nClipped, nil
}

// Note that the hard-clip length is used as an offset into Qual, even though
// hard-clipped bases are not stored there.

func clippedAtStart(r *sam.Record, minBaseQual byte) int {
	n := 0
	if first := r.Cigar[0]; first.Type() == sam.CigarHardClipped {
		n = first.Len()
	}
	qual := r.Qual
	for i := n; i < len(qual) && qual[i] < minBaseQual; i++ {
		n++
	}
	return minInt(n, len(qual))
}

func clippedAtEnd(r *sam.Record, minBaseQual byte) int {
	n := 0
	if last := r.Cigar[len(r.Cigar)-1]; last.Type() == sam.CigarHardClipped {
		n = last.Len()
	}
	qual := r.Qual
	for i := len(qual) - n - 1; i >= 0 && qual[i] < minBaseQual; i-- {
		n++
	}
	return minInt(n, len(qual))
}

func alignedBases(r *sam.Record, minBaseQual byte) int {
	n := r.Seq.Length - clippedAtStart(r, minBaseQual) - clippedAtEnd(r, minBaseQual)
	if n < 0 {
		// The start and end clips overlap, e.g. an all-low-quality read.
		return 0
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
