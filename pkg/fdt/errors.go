// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

import "fmt"

// ErrorKind classifies why a query over a blob failed. It is the Go
// counterpart of the historical C accessor's negative FDT_ERR_* return
// codes: every ErrorKind carries its numeric code so a caller that
// still thinks in those terms can recover it with (*Error).Code.
type ErrorKind int

const (
	// KindNotFound: a named node, property, sibling, or child is not present.
	KindNotFound ErrorKind = iota + 1
	// KindNoSpace: the caller's destination buffer is too small.
	KindNoSpace
	// KindBadOffset: an offset is negative, misaligned, or not at the expected tag.
	KindBadOffset
	// KindBadPath: a path failed to resolve, including a malformed or cyclic alias.
	KindBadPath
	// KindBadPhandle: a phandle value is 0 or 0xffffffff, both reserved.
	KindBadPhandle
	// KindBadState: a sequential-write blob has not been finalized.
	KindBadState
	// KindTruncated: a declared region or tag extends past totalsize, or a string lacks a NUL.
	KindTruncated
	// KindBadMagic: the header's first word is neither FDT_MAGIC nor FDT_SW_MAGIC.
	KindBadMagic
	// KindBadVersion: version/last_comp_version is outside the supported window.
	KindBadVersion
	// KindBadStructure: an unknown tag, unbalanced END_NODE, or missing END.
	KindBadStructure
	// KindInternal: an invariant was violated that an earlier check should have caught.
	KindInternal
	// KindBadValue: a property value has the wrong size, such as a phandle
	// property that is not 4 bytes long. The Stringlist helpers do not
	// report it: they accept a list whose last entry lacks a NUL.
	KindBadValue
)

// code mirrors the historical -FDT_ERR_* numbering, for parity with
// callers ported from the C-era calling convention (spec §9).
func (k ErrorKind) code() int {
	switch k {
	case KindNotFound:
		return 1
	case KindNoSpace:
		return 3
	case KindBadOffset:
		return 4
	case KindBadPath:
		return 5
	case KindBadPhandle:
		return 6
	case KindBadState:
		return 7
	case KindTruncated:
		return 8
	case KindBadMagic:
		return 9
	case KindBadVersion:
		return 10
	case KindBadStructure:
		return 11
	case KindInternal:
		return 13
	case KindBadValue:
		return 15
	default:
		return 13 // KindInternal
	}
}

// Error lets a bare ErrorKind (e.g. fdt.KindNotFound) be passed directly
// as the target of errors.Is.
func (k ErrorKind) Error() string { return k.String() }

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindNoSpace:
		return "no space"
	case KindBadOffset:
		return "bad offset"
	case KindBadPath:
		return "bad path"
	case KindBadPhandle:
		return "bad phandle"
	case KindBadState:
		return "bad state"
	case KindTruncated:
		return "truncated"
	case KindBadMagic:
		return "bad magic"
	case KindBadVersion:
		return "bad version"
	case KindBadStructure:
		return "bad structure"
	case KindInternal:
		return "internal error"
	case KindBadValue:
		return "bad value"
	default:
		return "unknown error"
	}
}

// Error is returned by every fallible query in this package. It names
// the failing operation and the underlying reason, in the same
// {Type/Method, Err} shape as lib/binstruct's UnmarshalError, adapted
// here to {Op, Kind, Err}.
type Error struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fdt: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("fdt: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the historical negative FDT_ERR_* code for this error,
// for callers that switch on an int rather than use errors.Is.
func (e *Error) Code() int { return -e.Kind.code() }

func errorf(op string, kind ErrorKind, format string, args ...any) error {
	var err error
	if format != "" {
		err = fmt.Errorf(format, args...)
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Is lets errors.Is(err, fdt.KindNotFound) work directly against an
// ErrorKind value, without the caller needing to type-assert *Error.
func (e *Error) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	if !ok {
		return false
	}
	return e.Kind == kind
}
