// Copyright (C) 2022  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package binstruct

import (
	"reflect"

	"go.fdtgo.dev/fdt/lib/binstruct/binint"
)

type (
	U8   = binint.U8
	U16  = binint.U16be
	U32  = binint.U32be
	U64  = binint.U64be
)

// intKind2Type maps a plain Go unsigned-integer field (the natural way
// to spell a header field in a struct definition) onto its wire
// encoding. Every FDT integer is big-endian, so a bare "uint32" field
// decodes the same way a "U32" field would.
var intKind2Type = map[reflect.Kind]reflect.Type{
	reflect.Uint8:  reflect.TypeOf(U8(0)),
	reflect.Uint16: reflect.TypeOf(U16(0)),
	reflect.Uint32: reflect.TypeOf(U32(0)),
	reflect.Uint64: reflect.TypeOf(U64(0)),
}
