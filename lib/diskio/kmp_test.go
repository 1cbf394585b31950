// Copyright (C) 2022  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package diskio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKMPTable(t *testing.T) {
	t.Parallel()
	substr := []byte("ababaa")
	table := buildKMPTable(substr)
	require.Equal(t, []int{0, 0, 1, 2, 3, 1}, table)
	for j, val := range table {
		matchLen := j + 1
		assert.Equalf(t, substr[:val], substr[matchLen-val:matchLen],
			"for table[%d]=%d", j, val)
	}
}

func naiveFindAll(str, substr []byte) []int64 {
	var matches []int64
	for i := range str {
		if bytes.HasPrefix(str[i:], substr) {
			matches = append(matches, int64(i))
		}
	}
	return matches
}

func FuzzFindAll(f *testing.F) {
	f.Add([]byte("xxabcxxabcxx"), []byte("abc"))
	f.Fuzz(func(t *testing.T, str, substr []byte) {
		if len(substr) == 0 {
			t.Skip()
		}
		exp := naiveFindAll(str, substr)
		act, err := FindAll(bytes.NewReader(str), substr)
		assert.NoError(t, err)
		assert.Equal(t, exp, act)
	})
}
