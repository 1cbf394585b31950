// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.fdtgo.dev/fdt/internal/fdtbuild"
	"go.fdtgo.dev/fdt/pkg/fdt"
)

func TestCheckFullAcceptsWellFormedBlob(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)
	assert.NoError(t, blob.CheckFull(len(blob)))
}

func TestCheckFullRejectsUndersizedBuffer(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)
	err := blob.CheckFull(len(blob) - 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, fdt.KindTruncated)
}

func TestCheckFullRejectsCorruptProperty(t *testing.T) {
	t.Parallel()
	b := fdtbuild.NewBuilder()
	b.Root().AddPropU32("reg", 0)
	raw, err := b.Build()
	require.NoError(t, err)

	// Corrupt the property's value_len field (past the BEGIN_NODE tag
	// and root's empty, padded name, and the PROP tag itself) to claim
	// a length that runs past totalsize.
	structOff, err := fdt.Blob(raw).OffDtStruct()
	require.NoError(t, err)
	valueLenOff := int(structOff) + 8 + 4
	binary.BigEndian.PutUint32(raw[valueLenOff:valueLenOff+4], 0xffffffff)

	blob := fdt.Blob(raw)
	err = blob.CheckFull(len(raw))
	require.Error(t, err)
	assert.ErrorIs(t, err, fdt.KindTruncated)
}

func TestMove(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	dst := make([]byte, len(blob))
	n, err := fdt.Move(dst, blob)
	require.NoError(t, err)
	assert.Equal(t, len(blob), n)
	assert.Equal(t, []byte(blob), dst)
}

func TestMoveRejectsUndersizedDst(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	dst := make([]byte, len(blob)-1)
	_, err := fdt.Move(dst, blob)
	require.Error(t, err)
	assert.ErrorIs(t, err, fdt.KindNoSpace)
}
