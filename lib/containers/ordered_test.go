// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package containers_test

import (
	"go.fdtgo.dev/fdt/lib/containers"
)

// Phandles are plain uint32s; wrapping one in NativeOrdered is enough
// to sort a slice of them without writing a bespoke less-func.
var _ containers.Ordered[containers.NativeOrdered[uint32]] = containers.NativeOrdered[uint32]{}
