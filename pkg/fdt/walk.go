// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

import "encoding/binary"

// OffsetPtr is the sole means by which a structure-block Offset
// becomes a byte slice: every other function in this package that
// needs to read the struct block goes through it. It returns a slice
// borrowed from the blob covering [off_dt_struct+off, +length) iff
// that range fits inside totalsize and, for version>=17 blobs, inside
// size_dt_struct too.
func (b Blob) OffsetPtr(off Offset, length int) ([]byte, error) {
	if off < 0 || length < 0 {
		return nil, errorf("OffsetPtr", KindBadOffset, "negative offset=%d or length=%d", off, length)
	}
	structOff, err := b.OffDtStruct()
	if err != nil {
		return nil, wrapOp("OffsetPtr", err)
	}
	totalSize, err := b.TotalSize()
	if err != nil {
		return nil, wrapOp("OffsetPtr", err)
	}
	version, err := b.Version()
	if err != nil {
		return nil, wrapOp("OffsetPtr", err)
	}

	if version >= 17 {
		structSize, err := b.SizeDtStruct()
		if err != nil {
			return nil, wrapOp("OffsetPtr", err)
		}
		if !blockInRange(uint64(off), uint64(length), 0, uint64(structSize)) {
			return nil, errorf("OffsetPtr", KindTruncated, "[%d,+%d) exceeds size_dt_struct=%d", off, length, structSize)
		}
	}

	absOff := uint64(structOff) + uint64(off)
	if !blockInRange(absOff, uint64(length), 0, uint64(totalSize)) {
		return nil, errorf("OffsetPtr", KindTruncated, "[%d,+%d) exceeds totalsize=%d", absOff, length, totalSize)
	}
	// totalsize is the blob's self-reported claim; a truncated buffer
	// can be shorter than that claim, so the real backing slice is its
	// own, separate bound.
	if !blockInRange(absOff, uint64(length), 0, uint64(len(b))) {
		return nil, errorf("OffsetPtr", KindTruncated, "[%d,+%d) exceeds backing buffer length=%d", absOff, length, len(b))
	}
	return b[absOff : absOff+uint64(length)], nil
}

// NextTag reads the tag word at start, advances past whatever payload
// that tag carries, and returns (tag, next). On a malformed blob it
// returns TagEnd alongside a non-nil error: callers that only care
// about "is there another record" can treat any error the same as a
// clean TagEnd.
func (b Blob) NextTag(start Offset) (tag uint32, next Offset, err error) {
	tagBytes, err := b.OffsetPtr(start, 4)
	if err != nil {
		return TagEnd, 0, wrapOp("NextTag", err)
	}
	tagVal := binary.BigEndian.Uint32(tagBytes)
	cursor := start + 4

	switch tagVal {
	case TagBeginNode:
		nameLen, nerr := b.nameLen(cursor)
		if nerr != nil {
			return TagEnd, 0, wrapOp("NextTag", nerr)
		}
		cursor += Offset(nameLen + 1) // + NUL

	case TagProp:
		hdr, herr := b.OffsetPtr(cursor, 8)
		if herr != nil {
			return TagEnd, 0, wrapOp("NextTag", herr)
		}
		valueLen := binary.BigEndian.Uint32(hdr[0:4])
		cursor += 8

		lastComp, verr := b.LastCompVersion()
		if verr != nil {
			return TagEnd, 0, wrapOp("NextTag", verr)
		}
		if lastComp < 16 && valueLen >= 8 {
			// pre-v16 emitters pad the value to 8-byte
			// alignment when it's long enough to matter.
			if int(cursor)%8 != 0 {
				cursor += 4
			}
		}
		cursor += Offset(valueLen)

	case TagEndNode, TagNop, TagEnd:
		// no payload

	default:
		return TagEnd, 0, errorf("NextTag", KindBadStructure, "unknown tag %d at offset %d", tagVal, start)
	}

	aligned := Offset(align4(int(cursor)))
	// Revalidate the whole consumed range through OffsetPtr, even
	// though we already touched pieces of it: offset_ptr is the
	// only bounds authority, and we must not report a "next" that
	// a subsequent call can't re-derive.
	if _, err := b.OffsetPtr(start, int(aligned-start)); err != nil {
		return TagEnd, 0, wrapOp("NextTag", err)
	}
	return tagVal, aligned, nil
}

// nameLen scans forward from off (the byte right after a BEGIN_NODE
// tag word) for the name's NUL terminator and returns the name's
// length not counting the NUL.
func (b Blob) nameLen(off Offset) (int, error) {
	// Names are unbounded in length, so we can't ask OffsetPtr for
	// a fixed-size slice up front; probe one growing window at a
	// time, bounded by what's left of the struct block.
	const chunk = 64
	for length := 0; ; length += chunk {
		window, err := b.OffsetPtr(off, length+chunk)
		if err != nil {
			// try to read whatever is actually available so a
			// name ending exactly at the struct-block boundary
			// is still found instead of spuriously truncated.
			full, ferr := b.remainingStruct(off)
			if ferr != nil {
				return 0, errorf("nameLen", KindTruncated, "name starting at %d runs past the struct block", off)
			}
			if i := indexByte(full, 0); i >= 0 {
				return i, nil
			}
			return 0, errorf("nameLen", KindTruncated, "name starting at %d is not NUL-terminated", off)
		}
		if i := indexByte(window[length:], 0); i >= 0 {
			return length + i, nil
		}
	}
}

// remainingStruct returns every byte from off through the end of the
// struct block (used only by nameLen's fallback above).
func (b Blob) remainingStruct(off Offset) ([]byte, error) {
	structOff, err := b.OffDtStruct()
	if err != nil {
		return nil, err
	}
	totalSize, err := b.TotalSize()
	if err != nil {
		return nil, err
	}
	version, err := b.Version()
	if err != nil {
		return nil, err
	}
	limit := uint64(totalSize)
	if version >= 17 {
		structSize, err := b.SizeDtStruct()
		if err != nil {
			return nil, err
		}
		if bound := uint64(structOff) + uint64(structSize); bound < limit {
			limit = bound
		}
	}
	if bound := uint64(len(b)); bound < limit {
		limit = bound
	}
	absOff := uint64(structOff) + uint64(off)
	if absOff > limit {
		return nil, errorf("remainingStruct", KindTruncated, "offset %d past struct block", off)
	}
	return b[absOff:limit], nil
}

func indexByte(s []byte, c byte) int {
	for i, b := range s {
		if b == c {
			return i
		}
	}
	return -1
}

// CheckNodeOffset requires off to be non-negative, 4-aligned, and
// point at a BEGIN_NODE tag; it returns the offset following that
// tag's name on success.
func (b Blob) CheckNodeOffset(off Offset) (Offset, error) {
	if off < 0 || int(off)%4 != 0 {
		return 0, errorf("CheckNodeOffset", KindBadOffset, "offset %d is negative or misaligned", off)
	}
	tagBytes, err := b.OffsetPtr(off, 4)
	if err != nil {
		return 0, wrapOp("CheckNodeOffset", err)
	}
	if binary.BigEndian.Uint32(tagBytes) != TagBeginNode {
		return 0, errorf("CheckNodeOffset", KindBadOffset, "offset %d is not a BEGIN_NODE", off)
	}
	_, next, err := b.NextTag(off)
	if err != nil {
		return 0, wrapOp("CheckNodeOffset", err)
	}
	return next, nil
}

// CheckPropOffset requires off to be non-negative, 4-aligned, and
// point at a PROP tag; it returns the offset following that
// property's value on success.
func (b Blob) CheckPropOffset(off Offset) (Offset, error) {
	if off < 0 || int(off)%4 != 0 {
		return 0, errorf("CheckPropOffset", KindBadOffset, "offset %d is negative or misaligned", off)
	}
	tagBytes, err := b.OffsetPtr(off, 4)
	if err != nil {
		return 0, wrapOp("CheckPropOffset", err)
	}
	if binary.BigEndian.Uint32(tagBytes) != TagProp {
		return 0, errorf("CheckPropOffset", KindBadOffset, "offset %d is not a PROP", off)
	}
	_, next, err := b.NextTag(off)
	if err != nil {
		return 0, wrapOp("CheckPropOffset", err)
	}
	return next, nil
}
