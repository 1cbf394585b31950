// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// phandleCache memoizes phandle->offset resolutions for one blob, so
// resolving the same phandle from several positional arguments of one
// "phandle" invocation doesn't re-walk the whole tree every time.
type phandleCache struct {
	initOnce sync.Once
	inner    *lru.ARCCache
}

func (c *phandleCache) init() {
	c.initOnce.Do(func() {
		c.inner, _ = lru.NewARC(128)
	})
}

func (c *phandleCache) Get(key uint32) (offset int32, ok bool) {
	c.init()
	v, ok := c.inner.Get(key)
	if !ok {
		return 0, false
	}
	return v.(int32), true
}

func (c *phandleCache) Add(key uint32, offset int32) {
	c.init()
	c.inner.Add(key, offset)
}
