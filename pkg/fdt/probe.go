// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

import "math"

// ROProbe performs the cheap, magic-and-version-only sanity check
// that every other query in this package presumes has already passed.
// It reads only header words: magic, version and last_comp_version
// for a finished blob, or magic and size_dt_struct (bytes 36-39) for
// a sequential-write one.
func (b Blob) ROProbe() error {
	magic, ok := b.magic()
	if !ok {
		return errorf("ROProbe", KindTruncated, "blob shorter than a magic word")
	}

	switch magic {
	case Magic:
		version, err := b.Version()
		if err != nil {
			return wrapOp("ROProbe", err)
		}
		lastComp, err := b.LastCompVersion()
		if err != nil {
			return wrapOp("ROProbe", err)
		}
		if version < FirstSupportedVersion || lastComp > LastSupportedVersion {
			return errorf("ROProbe", KindBadVersion,
				"version=%d last_comp_version=%d outside supported window [%d,%d]",
				version, lastComp, FirstSupportedVersion, LastSupportedVersion)
		}
		return nil
	case SWMagic:
		sizeDtStruct, ok := loadU32(b, offSizeDtStruct)
		if !ok {
			return errorf("ROProbe", KindTruncated, "sequential-write header truncated")
		}
		if sizeDtStruct == 0 {
			return errorf("ROProbe", KindBadState, "sequential-write blob not yet finalized")
		}
		return nil
	default:
		return errorf("ROProbe", KindBadMagic, "magic=%#08x is neither FDT_MAGIC nor FDT_SW_MAGIC", magic)
	}
}

// CheckHeader performs every check ROProbe does, plus the deep
// structural checks on the region table: internal version ordering,
// totalsize bounds, and every region offset/size fitting inside
// [header_size, totalsize] without unsigned overflow.
func (b Blob) CheckHeader() error {
	if err := b.ROProbe(); err != nil {
		return err
	}

	version, err := b.Version()
	if err != nil {
		return wrapOp("CheckHeader", err)
	}
	lastComp, err := b.LastCompVersion()
	if err != nil {
		return wrapOp("CheckHeader", err)
	}
	if version < lastComp {
		return errorf("CheckHeader", KindBadVersion, "version=%d < last_comp_version=%d", version, lastComp)
	}

	totalSize, err := b.TotalSize()
	if err != nil {
		return wrapOp("CheckHeader", err)
	}
	hdrSize := headerSize(version)
	if uint64(totalSize) < uint64(hdrSize) || uint64(totalSize) > math.MaxInt32 {
		return errorf("CheckHeader", KindTruncated, "totalsize=%d out of range [%d,%d]", totalSize, hdrSize, math.MaxInt32)
	}
	if len(b) < int(totalSize) {
		return errorf("CheckHeader", KindTruncated, "blob has %d bytes, totalsize claims %d", len(b), totalSize)
	}

	rsvOff, err := b.OffMemRsvmap()
	if err != nil {
		return wrapOp("CheckHeader", err)
	}
	if !offInRange(uint64(rsvOff), uint64(hdrSize), uint64(totalSize)) {
		return errorf("CheckHeader", KindTruncated, "off_mem_rsvmap=%d out of range [%d,%d]", rsvOff, hdrSize, totalSize)
	}

	structOff, err := b.OffDtStruct()
	if err != nil {
		return wrapOp("CheckHeader", err)
	}
	if version >= 17 {
		structSize, err := b.SizeDtStruct()
		if err != nil {
			return wrapOp("CheckHeader", err)
		}
		if !blockInRange(uint64(structOff), uint64(structSize), uint64(hdrSize), uint64(totalSize)) {
			return errorf("CheckHeader", KindTruncated, "struct block [%d,+%d) out of range", structOff, structSize)
		}
	} else if !offInRange(uint64(structOff), uint64(hdrSize), uint64(totalSize)) {
		return errorf("CheckHeader", KindTruncated, "off_dt_struct=%d out of range [%d,%d]", structOff, hdrSize, totalSize)
	}

	if version >= 3 {
		stringsOff, err := b.OffDtStrings()
		if err != nil {
			return wrapOp("CheckHeader", err)
		}
		stringsSize, err := b.SizeDtStrings()
		if err != nil {
			return wrapOp("CheckHeader", err)
		}
		if !blockInRange(uint64(stringsOff), uint64(stringsSize), uint64(hdrSize), uint64(totalSize)) {
			return errorf("CheckHeader", KindTruncated, "strings block [%d,+%d) out of range", stringsOff, stringsSize)
		}
	}

	return nil
}

// wrapOp re-tags an *Error produced by a lower-level accessor with
// the name of the higher-level operation that called it, keeping the
// original Kind and cause intact.
func wrapOp(op string, err error) error {
	if fe, ok := err.(*Error); ok {
		return &Error{Op: op, Kind: fe.Kind, Err: fe}
	}
	return &Error{Op: op, Kind: KindInternal, Err: err}
}
