// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

import "bytes"

// GetName returns node's own name, not including the NUL terminator.
// For last_comp_version<16 the stored name may still carry the full
// path of an old-style flat layout; this trims everything up to and
// including the final '/', matching the version-16+ convention.
func (b Blob) GetName(node Offset) ([]byte, error) {
	if _, err := b.CheckNodeOffset(node); err != nil {
		return nil, wrapOp("GetName", err)
	}
	nameLen, err := b.nameLen(node + 4)
	if err != nil {
		return nil, wrapOp("GetName", err)
	}
	full, err := b.OffsetPtr(node+4, nameLen)
	if err != nil {
		return nil, wrapOp("GetName", err)
	}

	lastComp, err := b.LastCompVersion()
	if err != nil {
		return nil, wrapOp("GetName", err)
	}
	if lastComp < 16 {
		if i := bytes.LastIndexByte(full, '/'); i >= 0 {
			return full[i+1:], nil
		}
	}
	return full, nil
}

// GetPath writes node's full path, root-to-node, into buf and returns
// the prefix of buf actually used. It returns KindNoSpace without
// writing a partial path if buf is too small.
func (b Blob) GetPath(node Offset, buf []byte) ([]byte, error) {
	var segs [][]byte
	cur := node
	for cur != 0 {
		name, err := b.GetName(cur)
		if err != nil {
			return nil, wrapOp("GetPath", err)
		}
		segs = append(segs, name)
		parent, err := b.ParentOffset(cur)
		if err != nil {
			return nil, wrapOp("GetPath", err)
		}
		cur = parent
	}

	need := 1 // leading '/'
	for i, s := range segs {
		need += len(s)
		if i > 0 {
			need++ // separating '/'
		}
	}
	if len(buf) < need {
		return nil, errorf("GetPath", KindNoSpace, "path needs %d bytes, buf has %d", need, len(buf))
	}

	out := buf[:0]
	out = append(out, '/')
	for i := len(segs) - 1; i >= 0; i-- {
		out = append(out, segs[i]...)
		if i > 0 {
			out = append(out, '/')
		}
	}
	return out, nil
}

// ParentOffset returns the offset of node's immediate parent, or 0 if
// node is the root.
func (b Blob) ParentOffset(node Offset) (Offset, error) {
	if node == 0 {
		return 0, nil
	}
	depth := 0
	off, err := b.NextNode(rootOffset, &depth)
	if err != nil {
		return 0, wrapOp("ParentOffset", err)
	}
	var stack []Offset
	stack = append(stack, 0)
	for {
		if off == node {
			if len(stack) == 0 {
				return 0, errorf("ParentOffset", KindBadOffset, "node %d has no parent frame", node)
			}
			return stack[len(stack)-1], nil
		}
		prevDepth := depth
		next, err := b.NextNode(off, &depth)
		if err != nil {
			return 0, errorf("ParentOffset", KindNotFound, "offset %d is not a descendant of the root", node)
		}
		if depth > prevDepth {
			stack = append(stack, off)
		} else {
			for d := prevDepth; d > depth && len(stack) > 0; d-- {
				stack = stack[:len(stack)-1]
			}
		}
		off = next
	}
}

// NodeDepth returns node's depth below the root (the root is depth 0).
func (b Blob) NodeDepth(node Offset) (int, error) {
	depth := 0
	for cur := node; cur != 0; {
		parent, err := b.ParentOffset(cur)
		if err != nil {
			return 0, wrapOp("NodeDepth", err)
		}
		depth++
		cur = parent
	}
	return depth, nil
}

// SupernodeAtDepth returns the ancestor of node (inclusive) that sits
// at the given depth below the root.
func (b Blob) SupernodeAtDepth(node Offset, depth int) (Offset, error) {
	nodeDepth, err := b.NodeDepth(node)
	if err != nil {
		return 0, wrapOp("SupernodeAtDepth", err)
	}
	if depth < 0 || depth > nodeDepth {
		return 0, errorf("SupernodeAtDepth", KindBadOffset, "depth %d out of range [0,%d]", depth, nodeDepth)
	}
	cur := node
	for nodeDepth > depth {
		parent, err := b.ParentOffset(cur)
		if err != nil {
			return 0, wrapOp("SupernodeAtDepth", err)
		}
		cur = parent
		nodeDepth--
	}
	return cur, nil
}

// NumNodes counts every node in the tree, root included.
func (b Blob) NumNodes() (int, error) {
	n := 0
	err := b.Walk(func(Offset, int) bool {
		n++
		return true
	})
	if err != nil {
		return 0, wrapOp("NumNodes", err)
	}
	return n, nil
}

// Walk performs a depth-first, pre-order traversal of every node
// starting at the root, calling fn(offset, depth) for each. Returning
// false from fn stops the walk early without error.
func (b Blob) Walk(fn func(offset Offset, depth int) bool) error {
	depth := 0
	off, err := b.NextNode(rootOffset, &depth)
	for err == nil {
		if !fn(off, depth) {
			return nil
		}
		off, err = b.NextNode(off, &depth)
	}
	if fe, ok := err.(*Error); ok && fe.Kind == KindNotFound {
		return nil
	}
	return wrapOp("Walk", err)
}

// NodeOffsetByPropValue searches from startOffset (inclusive) for the
// next node whose property named propname equals propval, skipping
// nodes that lack the property entirely.
func (b Blob) NodeOffsetByPropValue(startOffset Offset, propname string, propval []byte) (Offset, error) {
	found := Offset(-1)
	searching := true
	err := b.Walk(func(off Offset, depth int) bool {
		if searching {
			if off != startOffset {
				return true
			}
			searching = false
		}
		value, err := b.GetPropNamelen(off, []byte(propname))
		if err == nil && bytes.Equal(value, propval) {
			found = off
			return false
		}
		return true
	})
	if err != nil {
		return 0, wrapOp("NodeOffsetByPropValue", err)
	}
	if found < 0 {
		return 0, errorf("NodeOffsetByPropValue", KindNotFound, "no node with %s=%q at/after %d", propname, propval, startOffset)
	}
	return found, nil
}

// NodeCheckCompatible reports whether node's compatible property
// contains compat as one of its NUL-separated strings.
func (b Blob) NodeCheckCompatible(node Offset, compat string) error {
	value, err := b.GetPropNamelen(node, []byte("compatible"))
	if err != nil {
		return wrapOp("NodeCheckCompatible", err)
	}
	if StringlistContains(value, compat) {
		return nil
	}
	return errorf("NodeCheckCompatible", KindNotFound, "node %d is not compatible with %q", node, compat)
}

// NodeOffsetByCompatible searches from startOffset (inclusive) for the
// next node compatible with compat.
func (b Blob) NodeOffsetByCompatible(startOffset Offset, compat string) (Offset, error) {
	found := Offset(-1)
	searching := true
	err := b.Walk(func(off Offset, depth int) bool {
		if searching {
			if off != startOffset {
				return true
			}
			searching = false
		}
		if b.NodeCheckCompatible(off, compat) == nil {
			found = off
			return false
		}
		return true
	})
	if err != nil {
		return 0, wrapOp("NodeOffsetByCompatible", err)
	}
	if found < 0 {
		return 0, errorf("NodeOffsetByCompatible", KindNotFound, "no node compatible with %q at/after %d", compat, startOffset)
	}
	return found, nil
}

// GetPhandle returns node's phandle, checking the modern "phandle"
// property and falling back to the legacy "linux,phandle" name.
func (b Blob) GetPhandle(node Offset) (uint32, error) {
	value, err := b.GetPropNamelen(node, []byte("phandle"))
	if err != nil {
		value, err = b.GetPropNamelen(node, []byte("linux,phandle"))
	}
	if err != nil {
		return PhandleNone, errorf("GetPhandle", KindNotFound, "node %d has no phandle property", node)
	}
	if len(value) != 4 {
		return PhandleNone, errorf("GetPhandle", KindBadValue, "phandle property of node %d is %d bytes, want 4", node, len(value))
	}
	phandle, _ := loadU32(value, 0)
	if phandle == PhandleNone || phandle == PhandleReserved {
		return PhandleNone, errorf("GetPhandle", KindBadPhandle, "node %d has reserved phandle value %#x", node, phandle)
	}
	return phandle, nil
}

// NodeOffsetByPhandle returns the node carrying the given phandle.
func (b Blob) NodeOffsetByPhandle(phandle uint32) (Offset, error) {
	if phandle == PhandleNone || phandle == PhandleReserved {
		return 0, errorf("NodeOffsetByPhandle", KindBadPhandle, "phandle value %#x is reserved", phandle)
	}
	found := Offset(-1)
	err := b.Walk(func(off Offset, depth int) bool {
		if ph, err := b.GetPhandle(off); err == nil && ph == phandle {
			found = off
			return false
		}
		return true
	})
	if err != nil {
		return 0, wrapOp("NodeOffsetByPhandle", err)
	}
	if found < 0 {
		return 0, errorf("NodeOffsetByPhandle", KindNotFound, "no node with phandle %#x", phandle)
	}
	return found, nil
}

// GetMaxPhandle returns the largest phandle value used anywhere in the
// tree, or PhandleNone if no node has one.
func (b Blob) GetMaxPhandle() (uint32, error) {
	max := PhandleNone
	err := b.Walk(func(off Offset, depth int) bool {
		if ph, err := b.GetPhandle(off); err == nil && ph > max {
			max = ph
		}
		return true
	})
	if err != nil {
		return 0, wrapOp("GetMaxPhandle", err)
	}
	return max, nil
}

// StringlistContains reports whether the NUL-separated list in value
// contains s as one of its entries.
func StringlistContains(value []byte, s string) bool {
	return StringlistSearch(value, s) >= 0
}

// StringlistCount returns the number of NUL-separated entries in value
// (0 for an empty list).
func StringlistCount(value []byte) int {
	if len(value) == 0 {
		return 0
	}
	n := 1
	for _, c := range value {
		if c == 0 {
			n++
		}
	}
	if value[len(value)-1] == 0 {
		n--
	}
	return n
}

// StringlistSearch returns the index of s within the NUL-separated
// list in value, or -1 if absent.
func StringlistSearch(value []byte, s string) int {
	idx := 0
	for len(value) > 0 {
		end := bytes.IndexByte(value, 0)
		var entry []byte
		if end < 0 {
			entry, value = value, nil
		} else {
			entry, value = value[:end], value[end+1:]
		}
		if string(entry) == s {
			return idx
		}
		idx++
	}
	return -1
}

// StringlistGet returns the idx'th NUL-separated entry of value.
func StringlistGet(value []byte, idx int) ([]byte, error) {
	i := 0
	for len(value) > 0 {
		end := bytes.IndexByte(value, 0)
		var entry []byte
		if end < 0 {
			entry, value = value, nil
		} else {
			entry, value = value[:end], value[end+1:]
		}
		if i == idx {
			return entry, nil
		}
		i++
	}
	return nil, errorf("StringlistGet", KindNotFound, "index %d out of range (list has %d entries)", idx, i)
}
