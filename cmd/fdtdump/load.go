// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"

	"github.com/datawire/dlib/dlog"

	"go.fdtgo.dev/fdt/lib/diskio"
	"go.fdtgo.dev/fdt/pkg/fdt"
)

// loadBlob memory-maps filename and runs CheckHeader before handing
// the blob back, so every subcommand gets the same validate-before-use
// guarantee without repeating it.
func loadBlob(ctx context.Context, filename string) (fdt.Blob, func() error, error) {
	mf, err := diskio.OpenMMap(filename)
	if err != nil {
		return nil, nil, err
	}
	blob := fdt.Blob(mf.Bytes())
	if err := blob.CheckHeader(); err != nil {
		mf.Close()
		return nil, nil, err
	}
	dlog.Debugf(ctx, "loaded %s: %d bytes", filename, len(blob))
	return blob, mf.Close, nil
}
