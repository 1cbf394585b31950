// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

import "encoding/binary"

// loadU32 reads a big-endian uint32 at byte offset off, or reports
// false if [off, off+4) does not fit in blob. It never panics, even
// on a negative or absurdly large off.
func loadU32(blob []byte, off int) (uint32, bool) {
	if off < 0 || off > len(blob)-4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(blob[off : off+4]), true
}

// loadU64 reads a big-endian uint64 at byte offset off, or reports
// false if [off, off+8) does not fit in blob.
func loadU64(blob []byte, off int) (uint64, bool) {
	if off < 0 || off > len(blob)-8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(blob[off : off+8]), true
}

// align4 rounds n up to the next multiple of 4.
func align4(n int) int {
	return (n + 3) &^ 3
}
