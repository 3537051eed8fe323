// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package annotate_test

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/bio-annotate/annotate"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const minQ = annotate.DefaultMinBaseQual

// newRead returns a read with the given CIGAR whose stored bases all have
// quality 30, except for the indexes in lowQual, which get quality 5.
func newRead(t *testing.T, cigar string, lowQual ...int) *sam.Record {
	c, err := sam.ParseCigar([]byte(cigar))
	assert.NoError(t, err)
	_, readLen := c.Lengths()
	seq := make([]byte, readLen)
	qual := make([]byte, readLen)
	for i := range seq {
		seq[i] = 'C'
		qual[i] = 30
	}
	for _, i := range lowQual {
		qual[i] = 5
	}
	return &sam.Record{
		Name:  "r_" + cigar,
		Cigar: c,
		Seq:   sam.NewSeq(seq),
		Qual:  qual,
		MapQ:  60,
	}
}

func span(start, limit int) []int {
	var idx []int
	for i := start; i < limit; i++ {
		idx = append(idx, i)
	}
	return idx
}

func TestClippedBases(t *testing.T) {
	tests := []struct {
		cigar     string
		lowQual   []int
		wantStart int
		wantEnd   int
		wantAlign int
	}{
		{"30M", nil, 0, 0, 30},
		{"3S27M", nil, 0, 0, 30},
		{"30M", span(0, 4), 4, 0, 26},
		{"30M", span(27, 30), 0, 3, 27},
		{"30M", []int{0, 1, 5, 29}, 2, 1, 27},
		// The leading hard clip length is added to the count, and the quality
		// scan starts at that index.
		{"5H30M", nil, 5, 0, 25},
		{"5H30M", span(5, 8), 8, 0, 22},
		{"5H30M", span(0, 3), 5, 0, 25},
		{"30M4H", nil, 0, 4, 26},
		{"30M4H", span(24, 26), 0, 6, 24},
		{"2H30M2H", nil, 2, 2, 26},
		// Every base is low quality: both counts cover the whole read.
		{"10M", span(0, 10), 10, 10, 0},
		// Hard clip longer than the stored sequence.
		{"50H10M", nil, 10, 0, 0},
	}
	for _, test := range tests {
		r := newRead(t, test.cigar, test.lowQual...)
		start, err := annotate.NumClippedBasesAtStart(r, minQ)
		assert.NoError(t, err)
		end, err := annotate.NumClippedBasesAtEnd(r, minQ)
		assert.NoError(t, err)
		aligned, err := annotate.NumAlignedBases(r, minQ)
		assert.NoError(t, err)
		expect.EQ(t, start, test.wantStart, "cigar %s, low %v", test.cigar, test.lowQual)
		expect.EQ(t, end, test.wantEnd, "cigar %s, low %v", test.cigar, test.lowQual)
		expect.EQ(t, aligned, test.wantAlign, "cigar %s, low %v", test.cigar, test.lowQual)
		expect.LE(t, start, r.Seq.Length)
		expect.LE(t, end, r.Seq.Length)
	}
}

func TestClippedBasesThreshold(t *testing.T) {
	r := newRead(t, "20M", 0, 1, 2)
	r.Qual[3] = 19
	n, err := annotate.NumClippedBasesAtStart(r, 20)
	assert.NoError(t, err)
	expect.EQ(t, n, 4)
	n, err = annotate.NumClippedBasesAtStart(r, 19)
	assert.NoError(t, err)
	expect.EQ(t, n, 3)
	n, err = annotate.NumClippedBasesAtStart(r, 0)
	assert.NoError(t, err)
	expect.EQ(t, n, 0)
}

func TestOffsetFromClippedReadStart(t *testing.T) {
	r := newRead(t, "30M", 0, 1)
	off, err := annotate.OffsetFromClippedReadStart(r, 5, minQ)
	assert.NoError(t, err)
	expect.EQ(t, off, 3)
	off, err = annotate.OffsetFromClippedReadStart(r, 0, minQ)
	assert.NoError(t, err)
	expect.EQ(t, off, -2)
}

func TestValidateRead(t *testing.T) {
	good := newRead(t, "3S10M2I5M")
	expect.NoError(t, annotate.ValidateRead(good))

	noCigar := newRead(t, "10M")
	noCigar.Cigar = nil

	shortQual := newRead(t, "10M")
	shortQual.Qual = shortQual.Qual[:9]

	interiorClip := newRead(t, "5M3H5M")

	wrongLen := newRead(t, "10M")
	wrongLen.Cigar = newRead(t, "12M").Cigar

	for _, r := range []*sam.Record{noCigar, shortQual, interiorClip, wrongLen} {
		err := annotate.ValidateRead(r)
		if !errors.Is(errors.Invalid, err) {
			t.Errorf("read %s: expected an invalid-argument error, got %v", r.Name, err)
		}
		if _, err := annotate.NumAlignedBases(r, minQ); err == nil {
			t.Errorf("read %s: expected an error from NumAlignedBases", r.Name)
		}
	}
}
