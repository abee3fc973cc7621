// Package index encodes and decodes the BRK header and index records.
//
// Layout (all integers little-endian):
//
//	header:  magic "BRK1" | version u32 | file_count u32 | index_offset u64
//	data:    blobs, back to back, in [HeaderSize, index_offset)
//	index:   file_count records of
//	         path_len u16 | path | offset u64 | size u64 | original_size u64 |
//	         flags u32 | nonce [12] | tag [16]
//
// The packer and the reader both go through this package so the two sides
// cannot disagree on field order.
package index
