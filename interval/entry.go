package interval

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/hts/sam"
)

// PosType is the coordinate type of an Entry.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// Entry represents a single interval, with 0-based coordinates.
type Entry struct {
	RefName string
	Start0  PosType
	End     PosType
}

// Len returns the number of positions in e.
func (e Entry) Len() int {
	return int(e.End - e.Start0)
}

func (e Entry) String() string {
	return fmt.Sprintf("%s:%d-%d", e.RefName, e.Start0+1, e.End)
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning a contig ID and 0-based interval boundaries.  The interval
// [0, PosTypeMax - 1) is returned if there is no positional restriction; use
// Resolve to clip it to the contig length.
func ParseRegionString(region string) (result Entry, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		return Entry{RefName: region, Start0: 0, End: PosTypeMax - 1}, nil
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID")
		return
	}
	result.RefName = region[:colonPos]
	rangeStr := strings.Replace(region[colonPos+1:], ",", "", -1)
	start1Str, endStr := rangeStr, rangeStr
	if dashPos := strings.IndexByte(rangeStr, '-'); dashPos != -1 {
		start1Str, endStr = rangeStr[:dashPos], rangeStr[dashPos+1:]
	}
	var start1, end int64
	if start1, err = strconv.ParseInt(start1Str, 10, 32); err != nil {
		return
	}
	if end, err = strconv.ParseInt(endStr, 10, 32); err != nil {
		return
	}
	if start1 <= 0 {
		err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", start1Str)
		return
	}
	if end < start1 || end >= PosTypeMax {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %v", rangeStr)
		return
	}
	result.Start0 = PosType(start1 - 1)
	result.End = PosType(end)
	return
}

// Resolve checks entries against header, clips them to the contig lengths,
// and returns them in header order with overlapping or touching intervals
// merged and empty ones dropped.
func Resolve(entries []Entry, header *sam.Header) ([]Entry, error) {
	refIDs := make(map[string]int)
	refLens := make(map[string]PosType)
	for _, ref := range header.Refs() {
		refIDs[ref.Name()] = ref.ID()
		refLens[ref.Name()] = PosType(ref.Len())
	}
	resolved := make([]Entry, 0, len(entries))
	for _, e := range entries {
		refLen, ok := refLens[e.RefName]
		if !ok {
			return nil, fmt.Errorf("interval.Resolve: contig %s not in BAM header", e.RefName)
		}
		if e.End > refLen {
			e.End = refLen
		}
		if e.End > e.Start0 {
			resolved = append(resolved, e)
		}
	}
	sort.SliceStable(resolved, func(i, j int) bool {
		a, b := resolved[i], resolved[j]
		if a.RefName != b.RefName {
			return refIDs[a.RefName] < refIDs[b.RefName]
		}
		return a.Start0 < b.Start0
	})
	merged := resolved[:0]
	for _, e := range resolved {
		if n := len(merged); n != 0 && merged[n-1].RefName == e.RefName && e.Start0 <= merged[n-1].End {
			// Intervals overlap, merge them.
			if e.End > merged[n-1].End {
				merged[n-1].End = e.End
			}
			continue
		}
		merged = append(merged, e)
	}
	return merged, nil
}

// NumPos returns the total number of positions covered by entries.
func NumPos(entries []Entry) int {
	n := 0
	for _, e := range entries {
		n += e.Len()
	}
	return n
}

// ForEachPos calls fn on every position of every entry, in order, stopping at
// the first error.
func ForEachPos(entries []Entry, fn func(refName string, pos PosType) error) error {
	for _, e := range entries {
		for pos := e.Start0; pos < e.End; pos++ {
			if err := fn(e.RefName, pos); err != nil {
				return err
			}
		}
	}
	return nil
}
