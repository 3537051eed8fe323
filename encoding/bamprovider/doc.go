// Package bamprovider provides region queries over coordinate-sorted, indexed
// BAM files.
//
// The Provider is an interface for reading the reads overlapping a genomic
// region; it can be shared by concurrent goroutines, each with its own
// Iterator.
package bamprovider
