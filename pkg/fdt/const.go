// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package fdt is a read-only, zero-copy accessor over Flattened
// Device Tree (FDT/DTB) blobs: the compact, self-describing tree
// format bootloaders hand to kernels to describe hardware.
//
// Every exported function takes a Blob and one or more opaque
// Offsets and returns either a slice borrowed from the blob or an
// *Error; none of them copy blob bytes, mutate the blob, or cache
// anything between calls. They are not allocation-free: every *Error
// is a heap value, and GetPath and ParentOffset (and so NodeDepth and
// SupernodeAtDepth) build scratch slices while re-walking the tree.
// The blob is assumed hostile: callers are expected to run CheckHeader
// or CheckFull before trusting query results on an untrusted source,
// but every accessor self-bounds regardless.
package fdt

const (
	// Magic is the big-endian magic word of a finished blob.
	Magic uint32 = 0xd00dfeed
	// SWMagic is Magic's bitwise complement, marking a blob still
	// under sequential construction (spec §9 "Sequential-write magic").
	SWMagic uint32 = ^Magic
)

// Structure-block tags (spec §3 "Tag stream").
const (
	TagBeginNode uint32 = 1
	TagEndNode   uint32 = 2
	TagProp      uint32 = 3
	TagNop       uint32 = 4
	TagEnd       uint32 = 9
)

const (
	// FirstSupportedVersion is the oldest dtc_version this package will read.
	FirstSupportedVersion uint32 = 16
	// LastSupportedVersion is the newest last_comp_version this package will read.
	LastSupportedVersion uint32 = 17
)

// Reserved phandle values (spec §3 "Phandle").
const (
	PhandleNone     uint32 = 0
	PhandleReserved uint32 = 0xffffffff
)

// maxAliasDepth bounds /aliases indirection in PathOffset. The C
// source recurses without a limit; spec §9 ("Open question — alias
// cycles") asks us to bound it instead of preserving stack-depth-
// dependent behavior on a malformed cyclic alias chain.
const maxAliasDepth = 8

// headerFieldOffset gives the byte offset of each header field. Every
// field is a big-endian uint32; fields past last_comp_version only
// exist in blobs new enough to claim the corresponding header size
// (see headerSize below).
const (
	offMagic           = 0
	offTotalSize       = 4
	offOffDtStruct     = 8
	offOffDtStrings    = 12
	offOffMemRsvmap    = 16
	offVersion         = 20
	offLastCompVersion = 24
	offBootCpuidPhys   = 28
	offSizeDtStrings   = 32
	offSizeDtStruct    = 36
)

// headerSize returns the number of header bytes a blob of the given
// version is required to carry, per the version/size table in spec §3.
func headerSize(version uint32) int {
	switch {
	case version <= 1:
		return 28
	case version <= 2:
		return 32
	case version <= 3:
		return 36
	case version <= 16:
		return 40
	default:
		return 44
	}
}
