// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

// Move copies blob into dst and returns the number of bytes copied.
// It is the one place this package touches a destination other than
// the source blob, and it still never allocates: dst is caller-owned.
// It returns KindNoSpace without partially copying if dst is smaller
// than blob's claimed totalsize.
func Move(dst []byte, blob Blob) (int, error) {
	totalSize, err := blob.TotalSize()
	if err != nil {
		return 0, wrapOp("Move", err)
	}
	if uint64(len(dst)) < uint64(totalSize) {
		return 0, errorf("Move", KindNoSpace, "dst has %d bytes, blob totalsize=%d", len(dst), totalSize)
	}
	if uint64(len(blob)) < uint64(totalSize) {
		return 0, errorf("Move", KindTruncated, "blob has %d bytes, totalsize claims %d", len(blob), totalSize)
	}
	return copy(dst, blob[:totalSize]), nil
}
