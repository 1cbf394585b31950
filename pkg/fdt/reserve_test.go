// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.fdtgo.dev/fdt/internal/fdtbuild"
	"go.fdtgo.dev/fdt/pkg/fdt"
)

func TestMemRsvMap(t *testing.T) {
	t.Parallel()
	b := fdtbuild.NewBuilder()
	b.Reservations = []fdtbuild.Reservation{
		{Address: 0x1000, Size: 0x200},
		{Address: 0x8000_0000, Size: 0x1000},
	}
	b.Root().AddPropString("model", "test")
	raw, err := b.Build()
	require.NoError(t, err)

	blob := fdt.Blob(raw)
	require.NoError(t, blob.CheckHeader())

	n, err := blob.NumMemRsv()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	addr, size, err := blob.GetMemRsv(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1000), addr)
	assert.Equal(t, uint64(0x200), size)

	addr, size, err = blob.GetMemRsv(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x8000_0000), addr)
	assert.Equal(t, uint64(0x1000), size)

	_, _, err = blob.GetMemRsv(2)
	assert.ErrorIs(t, err, fdt.KindNotFound)
}

func TestMemRsvMapEmpty(t *testing.T) {
	t.Parallel()
	b := fdtbuild.NewBuilder()
	b.Root().AddPropString("model", "test")
	raw, err := b.Build()
	require.NoError(t, err)

	blob := fdt.Blob(raw)
	n, err := blob.NumMemRsv()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
