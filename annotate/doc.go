// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
Package annotate computes per-site INFO-field annotations from the pileups of
one or more samples.

The only annotation currently shipped is ReadMeanLen: the mean number of
aligned bases over all reads piled up at a site.  A read's aligned bases are
its stored bases minus the bases clipped at either end, where clipping is
stricter than the CIGAR's soft-clip boundary: after any hard clip, a run of
bases below a base-quality threshold is also treated as clipped.  Low values
indicate that reads covering the site are mostly clipped, which is a common
signature of local mis-alignment.

Annotations are registered by name in a Registry, which is what a host (see
the sitescan package) dispatches through.
*/
package annotate
