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
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

var testChr, _ = sam.NewReference("chr1", "", "", 1000, nil, nil)

func newTestRead(t *testing.T, name string, pos int, cigar string) *sam.Record {
	c, err := sam.ParseCigar([]byte(cigar))
	assert.NoError(t, err)
	_, readLen := c.Lengths()
	seq := make([]byte, readLen)
	qual := make([]byte, readLen)
	for i := range seq {
		seq[i] = 'G'
		qual[i] = 35
	}
	return &sam.Record{
		Name:  name,
		Ref:   testChr,
		Pos:   pos,
		MapQ:  60,
		Cigar: c,
		Seq:   sam.NewSeq(seq),
		Qual:  qual,
	}
}

func TestReadOffset(t *testing.T) {
	tests := []struct {
		pos         int
		cigar       string
		refPos      PosType
		wantOffset  int
		wantCovered bool
	}{
		{100, "2S5M3D5M", 99, -1, false},
		{100, "2S5M3D5M", 100, 2, true},
		{100, "2S5M3D5M", 104, 6, true},
		{100, "2S5M3D5M", 105, -1, true},
		{100, "2S5M3D5M", 107, -1, true},
		{100, "2S5M3D5M", 108, 7, true},
		{100, "2S5M3D5M", 112, 11, true},
		{100, "2S5M3D5M", 113, -1, false},
		{10, "3M2I3M", 13, 5, true},
		{10, "3=1X2N4M", 13, 3, true},
		{10, "3=1X2N4M", 15, -1, true},
		{10, "3=1X2N4M", 16, 4, true},
		{0, "5H4M1P2M6H", 0, 0, true},
		{0, "5H4M1P2M6H", 5, 5, true},
		{0, "5H4M1P2M6H", 6, -1, false},
	}
	for _, test := range tests {
		r := newTestRead(t, "r", test.pos, test.cigar)
		offset, covered, err := ReadOffset(r, test.refPos)
		assert.NoError(t, err)
		expect.EQ(t, covered, test.wantCovered, "%s@%d refPos %d", test.cigar, test.pos, test.refPos)
		expect.EQ(t, offset, test.wantOffset, "%s@%d refPos %d", test.cigar, test.pos, test.refPos)
	}
}

func TestReadFilter(t *testing.T) {
	f := ReadFilter{FlagExclude: DefaultReadFilter.FlagExclude, MinMapQ: 20}
	r := newTestRead(t, "r", 0, "10M")
	expect.True(t, f.Pass(r))

	r.MapQ = 19
	expect.False(t, f.Pass(r))
	r.MapQ = 20
	expect.True(t, f.Pass(r))

	for _, flag := range []sam.Flags{sam.Unmapped, sam.Secondary, sam.QCFail, sam.Duplicate, sam.Supplementary} {
		r.Flags = flag | sam.Paired
		expect.False(t, f.Pass(r))
	}
	r.Flags = sam.Paired | sam.Reverse
	expect.True(t, f.Pass(r))

	r.Cigar = nil
	expect.False(t, f.Pass(r))
}

func TestSampleResolver(t *testing.T) {
	ref, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	assert.NoError(t, err)
	header, err := sam.NewHeader([]byte("@RG\tID:rg1\tSM:bob\n@RG\tID:rg2\tSM:alice\n@RG\tID:rg3\tSM:bob\n@RG\tID:rg4\n"), []*sam.Reference{ref})
	assert.NoError(t, err)
	s := NewSampleResolver(header, "file")
	expect.EQ(t, s.Samples(), []string{"alice", "bob"})

	withRG := func(id string) *sam.Record {
		r := newTestRead(t, "r", 0, "10M")
		aux, err := sam.NewAux(rgTag, id)
		assert.NoError(t, err)
		r.AuxFields = sam.AuxFields{aux}
		return r
	}
	expect.EQ(t, s.Sample(withRG("rg1")), "bob")
	expect.EQ(t, s.Sample(withRG("rg2")), "alice")
	expect.EQ(t, s.Sample(withRG("rg3")), "bob")
	expect.EQ(t, s.Sample(withRG("rg4")), "file")
	expect.EQ(t, s.Sample(withRG("unknown")), "file")
	expect.EQ(t, s.Sample(newTestRead(t, "r", 0, "10M")), "file")

	plain := NewSampleResolver(nil, "NA12878")
	expect.EQ(t, plain.Samples(), []string{"NA12878"})
	expect.EQ(t, plain.Sample(withRG("rg1")), "NA12878")
}

func TestCollector(t *testing.T) {
	c := NewCollector(105, DefaultReadFilter)
	c.AddSample("empty")
	c.AddSample("s1")

	covering := newTestRead(t, "covering", 100, "10M")
	deleted := newTestRead(t, "deleted", 100, "4M3D4M")
	before := newTestRead(t, "before", 90, "10M")
	dup := newTestRead(t, "dup", 100, "10M")
	dup.Flags = sam.Duplicate

	for _, test := range []struct {
		sample string
		r      *sam.Record
		want   bool
	}{
		{"s1", covering, true},
		{"s2", deleted, true},
		{"s1", before, false},
		{"s1", dup, false},
	} {
		added, err := c.Add(test.sample, test.r)
		assert.NoError(t, err)
		expect.EQ(t, added, test.want, test.r.Name)
	}
	pileups := c.Pileups()
	assert.EQ(t, len(pileups), 3)
	expect.EQ(t, pileups["empty"].NumReads(), 0)
	expect.EQ(t, pileups["s1"], Pileup{{Read: covering, Offset: 5}})
	assert.EQ(t, pileups["s2"].NumReads(), 1)
	expect.True(t, pileups["s2"][0].IsDeletion())
	expect.False(t, pileups["s1"][0].IsDeletion())
}
