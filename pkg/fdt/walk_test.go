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

func TestOffsetPtrRejectsOutOfRange(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	_, err := blob.OffsetPtr(-1, 4)
	assert.ErrorIs(t, err, fdt.KindBadOffset)

	_, err = blob.OffsetPtr(0, 1<<30)
	assert.ErrorIs(t, err, fdt.KindTruncated)
}

func TestNextTagWalksWholeStream(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	var tags []uint32
	off := fdt.Offset(0)
	for {
		tag, next, err := blob.NextTag(off)
		require.NoError(t, err)
		tags = append(tags, tag)
		if tag == fdt.TagEnd {
			break
		}
		off = next
	}
	assert.Equal(t, fdt.TagEnd, tags[len(tags)-1])
	assert.Contains(t, tags, fdt.TagBeginNode)
	assert.Contains(t, tags, fdt.TagProp)
	assert.Contains(t, tags, fdt.TagEndNode)
}

func TestCheckNodeOffsetRejectsNonNode(t *testing.T) {
	t.Parallel()
	blob := buildSampleTree(t)

	propOff, err := blob.FirstPropertyOffset(0)
	require.NoError(t, err)

	_, err = blob.CheckNodeOffset(propOff)
	assert.ErrorIs(t, err, fdt.KindBadOffset)
}

// TestWalkSelfBoundsAgainstTruncatedBuffer exercises a blob whose
// totalsize field is stale (larger than the real backing slice)
// without ever calling CheckHeader first: the walker must still
// bounds-check every OffsetPtr access against len(b), not just the
// blob's own claimed totalsize, or a truncated buffer panics instead
// of returning an error.
func TestWalkSelfBoundsAgainstTruncatedBuffer(t *testing.T) {
	t.Parallel()
	b := fdtbuild.NewBuilder()
	b.Root().AddPropString("a", "b")
	raw, err := b.Build()
	require.NoError(t, err)

	// Drop the last four bytes (the two-byte strings block and the
	// second half of the FDT_END tag); totalsize still claims the
	// original (larger) length.
	truncated := fdt.Blob(raw[:len(raw)-4])

	var walkErr error
	assert.NotPanics(t, func() {
		walkErr = truncated.Walk(func(off fdt.Offset, depth int) bool { return true })
	})
	require.Error(t, walkErr)
	assert.ErrorIs(t, walkErr, fdt.KindTruncated)
}

