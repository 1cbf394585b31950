// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

// reserveEntrySize is the width of one {address, size} pair in the
// memory-reservation map: two big-endian uint64s, regardless of
// header version (spec §3 "Memory reservation block").
const reserveEntrySize = 16

// NumMemRsv returns the number of entries in the memory-reservation
// map, not counting the terminating {0,0} sentinel.
func (b Blob) NumMemRsv() (int, error) {
	n := 0
	for {
		addr, size, err := b.rsvEntry(n)
		if err != nil {
			return 0, wrapOp("NumMemRsv", err)
		}
		if addr == 0 && size == 0 {
			return n, nil
		}
		n++
	}
}

// GetMemRsv returns the n'th memory-reservation entry.
func (b Blob) GetMemRsv(n int) (address uint64, size uint64, err error) {
	address, size, err = b.rsvEntry(n)
	if err != nil {
		return 0, 0, wrapOp("GetMemRsv", err)
	}
	if address == 0 && size == 0 {
		return 0, 0, errorf("GetMemRsv", KindNotFound, "index %d is at/past the terminating entry", n)
	}
	return address, size, nil
}

func (b Blob) rsvEntry(n int) (address uint64, size uint64, err error) {
	if n < 0 {
		return 0, 0, errorf("rsvEntry", KindBadOffset, "negative index %d", n)
	}
	rsvOff, err := b.OffMemRsvmap()
	if err != nil {
		return 0, 0, err
	}
	totalSize, err := b.TotalSize()
	if err != nil {
		return 0, 0, err
	}
	base := uint64(rsvOff) + uint64(n)*reserveEntrySize
	if !blockInRange(base, reserveEntrySize, 0, uint64(totalSize)) {
		return 0, 0, errorf("rsvEntry", KindTruncated, "reservation entry %d falls outside totalsize=%d", n, totalSize)
	}
	if base+reserveEntrySize > uint64(len(b)) {
		return 0, 0, errorf("rsvEntry", KindTruncated, "blob has %d bytes, entry %d needs %d", len(b), n, base+reserveEntrySize)
	}
	address, ok := loadU64(b, int(base))
	if !ok {
		return 0, 0, errorf("rsvEntry", KindTruncated, "could not read address of entry %d", n)
	}
	size, ok = loadU64(b, int(base)+8)
	if !ok {
		return 0, 0, errorf("rsvEntry", KindTruncated, "could not read size of entry %d", n)
	}
	return address, size, nil
}
