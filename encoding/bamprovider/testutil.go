package bamprovider

import (
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// WriteIndexedBAM writes recs, which must be coordinate-sorted, to a BAM file
// at path, and a matching index at path + ".bai".  It exists to build small
// fixtures for tests.
func WriteIndexedBAM(ctx context.Context, path string, header *sam.Header, recs []*sam.Record) (err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return
	}
	bamWriter, err := bam.NewWriter(out.Writer(ctx), header, 1)
	if err != nil {
		out.Close(ctx)
		return
	}
	for _, r := range recs {
		if err = bamWriter.Write(r); err != nil {
			bamWriter.Close()
			out.Close(ctx)
			return
		}
	}
	if err = bamWriter.Close(); err != nil {
		return
	}
	if err = out.Close(ctx); err != nil {
		return
	}

	// Read the file back to learn each record's chunk.
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, in, &err)
	bamReader, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return
	}
	defer func() {
		if e := bamReader.Close(); e != nil && err == nil {
			err = e
		}
	}()
	var bai bam.Index
	for {
		r, e := bamReader.Read()
		if e == io.EOF {
			break
		}
		if e != nil {
			return e
		}
		if err = bai.Add(r, bamReader.LastChunk()); err != nil {
			return
		}
	}
	var baiOut file.File
	if baiOut, err = file.Create(ctx, path+".bai"); err != nil {
		return
	}
	if err = bam.WriteIndex(baiOut.Writer(ctx), &bai); err != nil {
		baiOut.Close(ctx)
		return
	}
	return baiOut.Close(ctx)
}
