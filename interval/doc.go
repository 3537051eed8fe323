/*Package interval turns region strings and BED files into the list of
  genomic positions ("sites") to annotate.
  Intervals are 0-based and half-open.  Overlapping and touching intervals on
  the same contig are merged, so every position is visited once.
  It assumes every position fits in a PosType, which is currently defined as
  int32 since that's what BAM files are limited to.
*/
package interval
