// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.fdtgo.dev/fdt/pkg/fdt"
)

func TestErrorIsMatchesKind(t *testing.T) {
	t.Parallel()
	blob := fdt.Blob(nil)
	err := blob.ROProbe()
	assert.True(t, errors.Is(err, fdt.KindTruncated))
	assert.False(t, errors.Is(err, fdt.KindBadMagic))
}

func TestErrorCodeMatchesHistoricalNumbering(t *testing.T) {
	t.Parallel()
	blob := fdt.Blob([]byte{1, 2, 3, 4})
	err := blob.ROProbe()
	var fe *fdt.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, -9, fe.Code()) // KindBadMagic historically was FDT_ERR_BADMAGIC == 9
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()
	inner := errors.New("boom")
	wrapped := &fdt.Error{Op: "Test", Kind: fdt.KindInternal, Err: inner}
	assert.Equal(t, inner, errors.Unwrap(wrapped))
}
