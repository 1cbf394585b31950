// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

import "bytes"

// GetString returns the NUL-terminated name at byte offset stroff in
// the strings block, excluding the terminator. For a finished
// (FDT_MAGIC) blob stroff must be non-negative, and for version>=17
// must additionally be less than size_dt_strings. For a blob still
// under sequential construction (FDT_SW_MAGIC) stroff is instead a
// negative offset counted back from the end of the strings block —
// the in-progress writer's convention, and the one place in this
// package where a signed offset is meaningful (spec §9).
func (b Blob) GetString(stroff int32) ([]byte, error) {
	magic, ok := b.magic()
	if !ok {
		return nil, errorf("GetString", KindTruncated, "header truncated")
	}
	stringsOff, err := b.OffDtStrings()
	if err != nil {
		return nil, wrapOp("GetString", err)
	}

	var base, limit uint64
	switch magic {
	case Magic:
		if stroff < 0 {
			return nil, errorf("GetString", KindBadOffset, "negative stroff=%d in finished blob", stroff)
		}
		version, err := b.Version()
		if err != nil {
			return nil, wrapOp("GetString", err)
		}
		if version >= 17 {
			size, err := b.SizeDtStrings()
			if err != nil {
				return nil, wrapOp("GetString", err)
			}
			if uint32(stroff) >= size {
				return nil, errorf("GetString", KindBadOffset, "stroff=%d >= size_dt_strings=%d", stroff, size)
			}
			limit = uint64(stringsOff) + uint64(size)
		} else {
			totalSize, err := b.TotalSize()
			if err != nil {
				return nil, wrapOp("GetString", err)
			}
			limit = uint64(totalSize)
		}
		base = uint64(stringsOff) + uint64(stroff)

	case SWMagic:
		size, err := b.SizeDtStrings()
		if err != nil {
			return nil, wrapOp("GetString", err)
		}
		end := uint64(stringsOff) + uint64(size)
		if stroff > 0 || uint64(-int64(stroff)) > uint64(size) {
			return nil, errorf("GetString", KindBadOffset, "stroff=%d out of range for in-progress strings block of size %d", stroff, size)
		}
		base = uint64(int64(end) + int64(stroff))
		limit = end

	default:
		return nil, errorf("GetString", KindBadMagic, "magic=%#08x is neither FDT_MAGIC nor FDT_SW_MAGIC", magic)
	}

	if base > limit || base > uint64(len(b)) {
		return nil, errorf("GetString", KindTruncated, "string offset %d out of range", base)
	}
	end := limit
	if end > uint64(len(b)) {
		end = uint64(len(b))
	}
	region := b[base:end]
	i := bytes.IndexByte(region, 0)
	if i < 0 {
		return nil, errorf("GetString", KindTruncated, "string at %d has no NUL before the strings-block boundary", base)
	}
	return region[:i], nil
}

// FindString does an unindexed linear scan of table for the pattern
// s+NUL and returns the matching slice of table, or nil if absent. No
// index is built and no temporary buffer is allocated: repeated calls
// re-scan from the start every time.
func FindString(table []byte, s []byte) []byte {
	for i := 0; i+len(s) < len(table); i++ {
		if table[i+len(s)] != 0 {
			continue
		}
		if bytes.Equal(table[i:i+len(s)], s) {
			return table[i : i+len(s)]
		}
	}
	return nil
}
