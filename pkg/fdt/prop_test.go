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

func TestGetPropNamelen(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	value, err := blob.GetPropNamelen(0, []byte("model"))
	require.NoError(t, err)
	assert.Equal(t, "test,board\x00", string(value))
}

func TestGetPropNamelenMissing(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	_, err := blob.GetPropNamelen(0, []byte("does-not-exist"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fdt.KindNotFound)
}

func TestPropertyIterationOrder(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	var names []string
	off, err := blob.FirstPropertyOffset(0)
	for ; err == nil; off, err = blob.NextPropertyOffset(off) {
		name, _, gerr := blob.GetPropByOffset(off)
		require.NoError(t, gerr)
		names = append(names, string(name))
	}
	assert.ErrorIs(t, err, fdt.KindNotFound)
	assert.Equal(t, []string{"model", "compatible"}, names)
}

func TestPreV16RealignmentFixup(t *testing.T) {
	t.Parallel()
	b := fdtbuild.NewBuilder()
	b.Version = 16
	b.LastCompVersion = 15
	root := b.Root()
	// a single byte before this 8-byte-or-longer value forces the
	// legacy builder to insert the realignment pad.
	root.AddPropString("x", "y")
	root.AddProp("bignum", []byte{1, 2, 3, 4, 5, 6, 7, 8})

	raw, err := b.Build()
	require.NoError(t, err)
	blob := fdt.Blob(raw)
	require.NoError(t, blob.CheckHeader())

	value, err := blob.GetPropNamelen(0, []byte("bignum"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, value)
}

func TestGetPropertyByOffsetRejectsOldVersion(t *testing.T) {
	t.Parallel()
	b := fdtbuild.NewBuilder()
	b.Version = 16
	b.LastCompVersion = 15
	b.Root().AddPropString("a", "b")
	raw, err := b.Build()
	require.NoError(t, err)
	blob := fdt.Blob(raw)
	require.NoError(t, blob.CheckHeader())

	off, err := blob.FirstPropertyOffset(0)
	require.NoError(t, err)
	_, err = blob.GetPropertyByOffset(off)
	require.Error(t, err)
	assert.ErrorIs(t, err, fdt.KindBadVersion)
}
