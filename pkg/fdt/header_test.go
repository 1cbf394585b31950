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

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()
	b := fdtbuild.NewBuilder()
	b.BootCpuidPhys = 3
	b.Root().AddPropString("model", "test,board")

	raw, err := b.Build()
	require.NoError(t, err)

	blob := fdt.Blob(raw)
	require.NoError(t, blob.CheckHeader())

	hdr, err := blob.Header()
	require.NoError(t, err)
	assert.Equal(t, fdt.Magic, hdr.Magic)
	assert.Equal(t, uint32(17), hdr.Version)
	assert.Equal(t, uint32(17), hdr.LastCompVersion)
	assert.Equal(t, uint32(3), hdr.BootCpuidPhys)
	assert.Equal(t, uint32(len(raw)), hdr.TotalSize)
}

func TestROProbeRejectsGarbage(t *testing.T) {
	t.Parallel()
	blob := fdt.Blob([]byte{0, 1, 2, 3})
	err := blob.ROProbe()
	require.Error(t, err)
	assert.ErrorIs(t, err, fdt.KindBadMagic)
}

func TestROProbeRejectsTruncated(t *testing.T) {
	t.Parallel()
	blob := fdt.Blob([]byte{0xd0, 0x0d})
	err := blob.ROProbe()
	require.Error(t, err)
	assert.ErrorIs(t, err, fdt.KindTruncated)
}

func TestROProbeRejectsUnfinalizedSWMagic(t *testing.T) {
	t.Parallel()
	blob := fdt.Blob(fdtbuild.BuildSWMagic())
	// size_dt_struct is 0 in a not-yet-finalized sequential-write blob.
	err := blob.ROProbe()
	require.Error(t, err)
	assert.ErrorIs(t, err, fdt.KindBadState)
}

func TestCheckHeaderRejectsShrunkTotalSize(t *testing.T) {
	t.Parallel()
	b := fdtbuild.NewBuilder()
	b.Root().AddPropString("a", "b")
	raw, err := b.Build()
	require.NoError(t, err)

	// Lie about totalsize by truncating the blob itself.
	truncated := raw[:len(raw)-4]
	blob := fdt.Blob(truncated)
	err = blob.CheckHeader()
	require.Error(t, err)
	assert.ErrorIs(t, err, fdt.KindTruncated)
}

func TestHeaderSizeByVersion(t *testing.T) {
	t.Parallel()
	for _, v := range []uint32{16, 17} {
		v := v
		b := fdtbuild.NewBuilder()
		b.Version = v
		b.LastCompVersion = v
		b.Root().AddPropString("a", "b")
		raw, err := b.Build()
		require.NoError(t, err)

		blob := fdt.Blob(raw)
		size, err := blob.HeaderSize()
		require.NoError(t, err)
		if v >= 17 {
			assert.Equal(t, 44, size)
		} else {
			assert.Equal(t, 40, size)
		}
	}
}
