package bamprovider

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

// ProviderOpts defines options for NewProvider.
type ProviderOpts struct {
	// Index specifies the name of the BAM index file. If Index=="", it
	// defaults to path + ".bai".
	Index string
}

// Provider allows reading a BAM file in parallel. Thread safe.
type Provider interface {
	// GetHeader returns the header for the provided BAM data.  The callee
	// must not modify the returned header object.
	//
	// REQUIRES: Close has not been called.
	GetHeader() (*sam.Header, error)

	// NewIterator returns an iterator over the mapped records whose alignment
	// overlaps the 0-based half-open range [start, limit) of contig refName.
	//
	// REQUIRES: Close has not been called.
	NewIterator(refName string, start, limit int) Iterator

	// Close must be called exactly once. It returns any error encountered
	// by the provider, or any iterator created by the provider.
	//
	// REQUIRES: All the iterators created by NewIterator have been closed.
	Close() error
}

// Iterator iterates over sam.Records in a particular genomic range, in
// coordinate order. Thread compatible.
type Iterator interface {
	// Scan returns where there are any records remaining in the iterator,
	// and if so, advances the iterator to the next record. If the iterator
	// reaches the end of its range, Scan() returns false.  If an error
	// occurs, Scan() returns false and the error can be retrieved by
	// calling Err().
	//
	// REQUIRES: Close has not been called.
	Scan() bool

	// Record returns the current record in the iterator. This must be
	// called only after a call to Scan() returns true.  The record stays
	// valid after further calls to Scan.
	//
	// REQUIRES: Close has not been called.
	Record() *sam.Record

	// Err returns the error encoutered during iteration, or nil if no error
	// occurred.  An io.EOF error will be translated to nil.
	Err() error

	// Close must be called exactly once. It returns the value of Err().
	Close() error
}

func mergeOpts(optList []ProviderOpts) ProviderOpts {
	opts := ProviderOpts{}
	for _, o := range optList {
		if o.Index != "" {
			opts.Index = o.Index
		}
	}
	return opts
}

// NewProvider creates a Provider for the BAM file at path.
func NewProvider(path string, optList ...ProviderOpts) Provider {
	opts := mergeOpts(optList)
	return &BAMProvider{Path: path, Index: opts.Index}
}

// overlaps checks whether r's alignment intersects [start, limit) on r's
// contig.
func overlaps(r *sam.Record, start, limit int) bool {
	if r.Pos >= limit {
		return false
	}
	refLen, _ := r.Cigar.Lengths()
	if refLen == 0 {
		// Treat reads without reference-consuming operations as covering their
		// start position only.
		refLen = 1
	}
	return r.Pos+refLen > start
}

// lookupRef finds the contig refName in h.
func lookupRef(h *sam.Header, refName string) (*sam.Reference, error) {
	for _, ref := range h.Refs() {
		if ref.Name() == refName {
			return ref, nil
		}
	}
	return nil, fmt.Errorf("bamprovider.NewIterator: reference '%s' not found", refName)
}

// failedIterator yields nothing, and reports err from Err and Close.
type failedIterator struct{ err error }

func (i failedIterator) Scan() bool          { return false }
func (i failedIterator) Record() *sam.Record { panic("bamprovider: Record called on a failed iterator") }
func (i failedIterator) Err() error          { return i.err }
func (i failedIterator) Close() error        { return i.err }

// NewErrorIterator returns an Iterator for a query that could not be started.
func NewErrorIterator(err error) Iterator {
	return failedIterator{err}
}
