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

func buildSampleTree(t *testing.T) fdt.Blob {
	t.Helper()
	b := fdtbuild.NewBuilder()
	root := b.Root()
	root.AddPropString("model", "test,board")
	root.AddPropString("compatible", "test,board\x00test,generic")

	cpus := root.AddChild("cpus")
	cpu0 := cpus.AddChild("cpu@0")
	cpu0.AddPropU32("reg", 0)
	cpu0.AddPropU32("phandle", 1)

	soc := root.AddChild("soc")
	uart := soc.AddChild("serial@1000")
	uart.AddPropString("compatible", "test,uart")
	uart.AddPropU32("phandle", 2)

	aliases := root.AddChild("aliases")
	aliases.AddPropString("serial0", "/soc/serial@1000")
	aliases.AddPropString("firstcpu", "/cpus/cpu@0")

	raw, err := b.Build()
	require.NoError(t, err)
	blob := fdt.Blob(raw)
	require.NoError(t, blob.CheckHeader())
	return blob
}

func TestSubnodeOffsetNamelenUnitAddress(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	cpus, err := blob.SubnodeOffsetNamelen(0, []byte("cpus"))
	require.NoError(t, err)

	cpu0, err := blob.SubnodeOffsetNamelen(cpus, []byte("cpu"))
	require.NoError(t, err)

	name, err := blob.GetName(cpu0)
	require.NoError(t, err)
	assert.Equal(t, "cpu@0", string(name))
}

func TestPathOffsetNamelenAbsolute(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	off, err := blob.PathOffsetNamelen([]byte("/soc/serial@1000"))
	require.NoError(t, err)
	name, err := blob.GetName(off)
	require.NoError(t, err)
	assert.Equal(t, "serial@1000", string(name))
}

func TestPathOffsetNamelenViaAlias(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	off, err := blob.PathOffsetNamelen([]byte("serial0"))
	require.NoError(t, err)
	name, err := blob.GetName(off)
	require.NoError(t, err)
	assert.Equal(t, "serial@1000", string(name))
}

func TestPathOffsetNamelenViaSecondAlias(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	off, err := blob.PathOffsetNamelen([]byte("firstcpu"))
	require.NoError(t, err)
	name, err := blob.GetName(off)
	require.NoError(t, err)
	assert.Equal(t, "cpu@0", string(name))
}

func TestPathOffsetNamelenUnknown(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	_, err := blob.PathOffsetNamelen([]byte("/does/not/exist"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fdt.KindBadPath)
}

func TestAliasCycleIsBounded(t *testing.T) {
	t.Parallel()
	b := fdtbuild.NewBuilder()
	root := b.Root()
	aliases := root.AddChild("aliases")
	aliases.AddPropString("a", "b")
	aliases.AddPropString("b", "a")
	raw, err := b.Build()
	require.NoError(t, err)
	blob := fdt.Blob(raw)
	require.NoError(t, blob.CheckHeader())

	_, err = blob.PathOffsetNamelen([]byte("a"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fdt.KindBadPath)
}

func TestNextSubnodeWalksSiblingsOnly(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	first, err := blob.FirstSubnode(0)
	require.NoError(t, err)
	firstName, err := blob.GetName(first)
	require.NoError(t, err)

	second, err := blob.NextSubnode(first)
	require.NoError(t, err)
	secondName, err := blob.GetName(second)
	require.NoError(t, err)

	assert.NotEqual(t, string(firstName), string(secondName))

	third, err := blob.NextSubnode(second)
	require.NoError(t, err)
	_, err = blob.NextSubnode(third)
	assert.ErrorIs(t, err, fdt.KindNotFound)
}
