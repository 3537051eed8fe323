package bamprovider

import (
	"github.com/grailbio/hts/sam"
)

// fakeProvider is only for unittests. It yields the given records.
type fakeProvider struct {
	header *sam.Header
	recs   []*sam.Record
}

type fakeIterator struct {
	recs []*sam.Record
	rec  *sam.Record

	refName      string
	start, limit int
}

// NewFakeProvider creates a provider that returns "header" in response to a
// GetHeader() call, and the records of recs that overlap the requested range
// from NewIterator.  recs need not be sorted.
func NewFakeProvider(header *sam.Header, recs []*sam.Record) Provider {
	return &fakeProvider{header, recs}
}

// GetHeader implements the Provider interface. It returns the header passed to
// the constructor.
func (b *fakeProvider) GetHeader() (*sam.Header, error) {
	return b.header, nil
}

// Close implements the Provider interface.
func (b *fakeProvider) Close() error {
	return nil
}

// NewIterator implements the Provider interface.
func (b *fakeProvider) NewIterator(refName string, start, limit int) Iterator {
	if _, err := lookupRef(b.header, refName); err != nil {
		return NewErrorIterator(err)
	}
	return &fakeIterator{recs: b.recs, refName: refName, start: start, limit: limit}
}

// Err implements the Iterator interface.
func (i *fakeIterator) Err() error {
	return nil
}

// Close implements the Iterator interface.
func (i *fakeIterator) Close() error {
	return nil
}

// Scan implements the Iterator interface.
func (i *fakeIterator) Scan() bool {
	for {
		if len(i.recs) == 0 {
			return false
		}
		i.rec = i.recs[0]
		i.recs = i.recs[1:]
		if i.rec.Ref != nil && i.rec.Ref.Name() == i.refName && overlaps(i.rec, i.start, i.limit) {
			return true
		}
	}
}

// Record implements the Iterator interface.
func (i *fakeIterator) Record() *sam.Record {
	// Return a copy so that the code under test cannot alter the
	// original test input data.
	copy := *i.rec
	return &copy
}
