package interval

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

var (
	trackPrefix   = []byte("track")
	browserPrefix = []byte("browser")
)

// ReadBEDEntries reads the first three columns of every interval line of a
// BED file.  Blank lines, '#' comments, and track/browser lines are skipped.
// Intervals are returned in file order; see Resolve.
func ReadBEDEntries(reader io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(reader)
	var (
		entries []Entry
		tokens  [3][]byte
		lineIdx int
	)
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		if len(curLine) == 0 || curLine[0] == '#' || bytes.HasPrefix(curLine, trackPrefix) || bytes.HasPrefix(curLine, browserPrefix) {
			continue
		}
		nToken := getTokens(tokens[:], curLine)
		if nToken != 3 {
			if nToken == 0 {
				continue
			}
			return nil, errors.Errorf("interval.ReadBEDEntries: line %d has fewer tokens than expected", lineIdx)
		}
		start, err := strconv.Atoi(gunsafe.BytesToString(tokens[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "interval.ReadBEDEntries: line %d", lineIdx)
		}
		end, err := strconv.Atoi(gunsafe.BytesToString(tokens[2]))
		if err != nil {
			return nil, errors.Wrapf(err, "interval.ReadBEDEntries: line %d", lineIdx)
		}
		if start < 0 {
			return nil, errors.Errorf("interval.ReadBEDEntries: negative start coordinate %d on line %d", start, lineIdx)
		}
		if end < start || end >= PosTypeMax {
			return nil, errors.Errorf("interval.ReadBEDEntries: invalid coordinate pair on line %d", lineIdx)
		}
		entries = append(entries, Entry{
			// Must copy; tokens[0] points into the scanner's buffer.
			RefName: string(tokens[0]),
			Start0:  PosType(start),
			End:     PosType(end),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "interval.ReadBEDEntries")
	}
	return entries, nil
}

// LoadBEDEntries is a wrapper for ReadBEDEntries that takes a path instead of
// an io.Reader.  Gzipped files are decompressed.
func LoadBEDEntries(ctx context.Context, path string) (entries []Entry, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, infile, &err)
	reader := io.Reader(infile.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(reader); err != nil {
			return nil, errors.Wrapf(err, "interval.LoadBEDEntries: %s", path)
		}
		defer func() {
			if e := gz.Close(); e != nil && err == nil {
				err = e
			}
		}()
		reader = gz
	}
	if entries, err = ReadBEDEntries(reader); err != nil {
		return nil, errors.Wrapf(err, "interval.LoadBEDEntries: %s", path)
	}
	return
}
