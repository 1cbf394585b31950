// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

// offInRange reports whether off lies in [low, high], without ever
// doing signed arithmetic that could wrap.
func offInRange(off, low, high uint64) bool {
	return off >= low && off <= high
}

// blockInRange reports whether the half-open byte range
// [off, off+size) fits entirely inside [low, high), catching the
// off+size overflow that a naive "off+size <= high" check would miss
// on a maliciously huge size.
func blockInRange(off, size, low, high uint64) bool {
	if off < low || off > high {
		return false
	}
	end := off + size
	if end < off {
		// overflowed
		return false
	}
	return end <= high
}
