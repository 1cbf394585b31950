// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

// CheckFull performs the full structural sweep (spec §4.7): it runs
// CheckHeader, then walks every node, every property on every node,
// and the whole memory-reservation map, so that a caller who passes
// CheckFull can trust every other accessor in this package not to
// surface a structural surprise later. bufSize is the size of the
// buffer the blob actually lives in (which may exceed totalsize);
// passing a bufSize smaller than totalsize is itself a failure.
func (b Blob) CheckFull(bufSize int) error {
	if err := b.CheckHeader(); err != nil {
		return wrapOp("CheckFull", err)
	}

	totalSize, err := b.TotalSize()
	if err != nil {
		return wrapOp("CheckFull", err)
	}
	if uint64(bufSize) < uint64(totalSize) {
		return errorf("CheckFull", KindTruncated, "buffer is %d bytes, totalsize claims %d", bufSize, totalSize)
	}

	if err := b.checkReserveMap(); err != nil {
		return wrapOp("CheckFull", err)
	}
	if err := b.checkStructure(); err != nil {
		return wrapOp("CheckFull", err)
	}
	return nil
}

func (b Blob) checkReserveMap() error {
	_, err := b.NumMemRsv()
	return err
}

func (b Blob) checkStructure() error {
	sawRoot := false
	var walkErr error
	err := b.Walk(func(off Offset, depth int) bool {
		if depth == 1 {
			sawRoot = true
		}
		for propOff, perr := b.FirstPropertyOffset(off); perr == nil; propOff, perr = b.NextPropertyOffset(propOff) {
			if _, _, err := b.GetPropByOffset(propOff); err != nil {
				walkErr = err
				return false
			}
		}
		return true
	})
	if err != nil {
		return err
	}
	if walkErr != nil {
		return walkErr
	}
	if !sawRoot {
		return errorf("checkStructure", KindBadStructure, "structure block has no nodes")
	}
	return nil
}
