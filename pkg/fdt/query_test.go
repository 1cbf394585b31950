// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.fdtgo.dev/fdt/pkg/fdt"
)

func TestGetPath(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	off, err := blob.PathOffsetNamelen([]byte("/soc/serial@1000"))
	require.NoError(t, err)

	buf := make([]byte, 64)
	path, err := blob.GetPath(off, buf)
	require.NoError(t, err)
	assert.Equal(t, "/soc/serial@1000", string(path))
}

func TestGetPathNoSpace(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	off, err := blob.PathOffsetNamelen([]byte("/soc/serial@1000"))
	require.NoError(t, err)

	_, err = blob.GetPath(off, make([]byte, 2))
	require.Error(t, err)
	assert.ErrorIs(t, err, fdt.KindNoSpace)
}

func TestNodeDepthAndSupernode(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	off, err := blob.PathOffsetNamelen([]byte("/soc/serial@1000"))
	require.NoError(t, err)

	depth, err := blob.NodeDepth(off)
	require.NoError(t, err)
	assert.Equal(t, 2, depth)

	soc, err := blob.SupernodeAtDepth(off, 1)
	require.NoError(t, err)
	name, err := blob.GetName(soc)
	require.NoError(t, err)
	assert.Equal(t, "soc", string(name))

	root, err := blob.SupernodeAtDepth(off, 0)
	require.NoError(t, err)
	assert.Equal(t, fdt.Offset(0), root)
}

func TestNodeCheckCompatible(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	off, err := blob.PathOffsetNamelen([]byte("/soc/serial@1000"))
	require.NoError(t, err)

	assert.NoError(t, blob.NodeCheckCompatible(off, "test,uart"))
	assert.Error(t, blob.NodeCheckCompatible(off, "nonexistent"))
}

func TestNodeOffsetByCompatible(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	off, err := blob.NodeOffsetByCompatible(0, "test,uart")
	require.NoError(t, err)
	name, err := blob.GetName(off)
	require.NoError(t, err)
	assert.Equal(t, "serial@1000", string(name))

	_, err = blob.NodeOffsetByCompatible(0, "nonexistent")
	assert.ErrorIs(t, err, fdt.KindNotFound)
}

func TestPhandleLookup(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	off, err := blob.NodeOffsetByPhandle(2)
	require.NoError(t, err)
	name, err := blob.GetName(off)
	require.NoError(t, err)
	assert.Equal(t, "serial@1000", string(name))

	ph, err := blob.GetPhandle(off)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), ph)

	max, err := blob.GetMaxPhandle()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), max)
}

func TestNodeOffsetByPhandleRejectsReserved(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	_, err := blob.NodeOffsetByPhandle(fdt.PhandleNone)
	assert.ErrorIs(t, err, fdt.KindBadPhandle)

	_, err = blob.NodeOffsetByPhandle(fdt.PhandleReserved)
	assert.ErrorIs(t, err, fdt.KindBadPhandle)
}

func TestNumNodesAndWalk(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	n, err := blob.NumNodes()
	require.NoError(t, err)
	// root, cpus, cpu@0, soc, serial@1000, aliases
	assert.Equal(t, 6, n)

	var seen int
	stopAfter := 2
	err = blob.Walk(func(off fdt.Offset, depth int) bool {
		seen++
		return seen < stopAfter
	})
	require.NoError(t, err)
	assert.Equal(t, stopAfter, seen)
}

func TestStringlistHelpers(t *testing.T) {
	t.Parallel()
	value := []byte("test,board\x00test,generic\x00")

	assert.True(t, fdt.StringlistContains(value, "test,generic"))
	assert.False(t, fdt.StringlistContains(value, "nope"))
	assert.Equal(t, 2, fdt.StringlistCount(value))
	assert.Equal(t, 1, fdt.StringlistSearch(value, "test,generic"))
	assert.Equal(t, -1, fdt.StringlistSearch(value, "nope"))

	entry, err := fdt.StringlistGet(value, 0)
	require.NoError(t, err)
	assert.Equal(t, "test,board", string(entry))

	_, err = fdt.StringlistGet(value, 5)
	assert.ErrorIs(t, err, fdt.KindNotFound)
}
