// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

import (
	"bytes"
	"encoding/binary"
)

// NextNode advances through the tag stream from off, tracking depth
// in *depth, and returns the offset of the next BEGIN_NODE. Passing
// off=-1 begins a root-inclusive walk at structure-block offset 0.
//
// *depth must start at 0 for a walk rooted at off=-1 or at off itself;
// NextNode mutates it as it crosses BEGIN_NODE/END_NODE boundaries.
func (b Blob) NextNode(off Offset, depth *int) (Offset, error) {
	if off == rootOffset {
		off = 0
	} else {
		tagBytes, err := b.OffsetPtr(off, 4)
		if err != nil {
			return 0, wrapOp("NextNode", err)
		}
		if binary.BigEndian.Uint32(tagBytes) == TagBeginNode {
			var err error
			off, err = b.CheckNodeOffset(off)
			if err != nil {
				return 0, wrapOp("NextNode", err)
			}
		}
	}

	for {
		tagVal, next, err := b.NextTag(off)
		if err != nil {
			return 0, wrapOp("NextNode", err)
		}
		switch tagVal {
		case TagProp, TagNop:
			off = next
		case TagBeginNode:
			*depth++
			return off, nil
		case TagEndNode:
			*depth--
			if *depth < 0 {
				return 0, errorf("NextNode", KindBadStructure, "END_NODE with no matching BEGIN_NODE")
			}
			off = next
		case TagEnd:
			if *depth != 0 {
				return 0, errorf("NextNode", KindTruncated, "structure block ended at depth %d", *depth)
			}
			return 0, errorf("NextNode", KindNotFound, "no further nodes")
		default:
			return 0, errorf("NextNode", KindBadStructure, "unexpected tag %d", tagVal)
		}
	}
}

// FirstSubnode returns the offset of parent's first direct child, or
// a KindNotFound error if parent has none.
func (b Blob) FirstSubnode(parent Offset) (Offset, error) {
	depth := 0
	child, err := b.NextNode(parent, &depth)
	if err != nil {
		if depth < 0 {
			// parent's END_NODE came before any child's BEGIN_NODE
			return 0, errorf("FirstSubnode", KindNotFound, "no direct child of %d", parent)
		}
		return 0, wrapOp("FirstSubnode", err)
	}
	if depth != 1 {
		return 0, errorf("FirstSubnode", KindNotFound, "no direct child of %d", parent)
	}
	return child, nil
}

// NextSubnode returns the offset of the next sibling of the node
// beginning at offset, or KindNotFound once siblings are exhausted.
func (b Blob) NextSubnode(offset Offset) (Offset, error) {
	depth := 1
	for {
		next, err := b.NextNode(offset, &depth)
		if err != nil {
			if depth < 0 {
				return 0, errorf("NextSubnode", KindNotFound, "no further siblings of %d", offset)
			}
			return 0, wrapOp("NextSubnode", err)
		}
		if depth < 1 {
			return 0, errorf("NextSubnode", KindNotFound, "no further siblings of %d", offset)
		}
		if depth == 1 {
			return next, nil
		}
		offset = next
	}
}

// nodeNameEq implements the unit-address matching rule (spec §4.3,
// and §9's note on the C source's fdt_nodename_eq_ typo): name[:nlen]
// matches a stored node name either exactly, or — when the search key
// itself contains no '@' — as the part of the stored name before an
// '@' unit-address suffix.
func nodeNameEq(stored []byte, name []byte) bool {
	if bytes.Equal(stored, name) {
		return true
	}
	if bytes.IndexByte(name, '@') >= 0 {
		return false
	}
	if len(stored) <= len(name) || stored[len(name)] != '@' {
		return false
	}
	return bytes.Equal(stored[:len(name)], name)
}

// SubnodeOffsetNamelen searches parent's direct children for one
// whose name matches name under the unit-address rule, returning the
// first match in traversal order.
func (b Blob) SubnodeOffsetNamelen(parent Offset, name []byte) (Offset, error) {
	depth := 0
	off, err := b.NextNode(parent, &depth)
	if err != nil && depth >= 0 {
		return 0, wrapOp("SubnodeOffsetNamelen", err)
	}
	for err == nil && depth > 0 {
		if depth == 1 {
			nodeName, err := b.GetName(off)
			if err != nil {
				return 0, wrapOp("SubnodeOffsetNamelen", err)
			}
			if nodeNameEq(nodeName, name) {
				return off, nil
			}
		}
		off, err = b.NextNode(off, &depth)
		if err != nil {
			if fe, ok := err.(*Error); (ok && fe.Kind == KindNotFound) || depth < 0 {
				break
			}
			return 0, wrapOp("SubnodeOffsetNamelen", err)
		}
	}
	return 0, errorf("SubnodeOffsetNamelen", KindNotFound, "no child named %q under %d", name, parent)
}

// PathOffsetNamelen resolves a slash-separated path (optionally routed
// through an /aliases indirection for a relative first segment) to a
// node offset.
func (b Blob) PathOffsetNamelen(path []byte) (Offset, error) {
	off, err := b.pathOffset(path, 0)
	if err != nil {
		return 0, wrapOp("PathOffsetNamelen", err)
	}
	return off, nil
}

func (b Blob) pathOffset(path []byte, aliasDepth int) (Offset, error) {
	if len(path) == 0 || path[0] != '/' {
		return b.resolveAlias(path, aliasDepth)
	}
	return b.walkSegments(0, path)
}

// walkSegments resolves a (possibly alias-free) slash-separated path
// relative to start, skipping repeated/leading slashes and stopping
// at an empty suffix (which resolves to start itself).
func (b Blob) walkSegments(start Offset, path []byte) (Offset, error) {
	off := start
	rest := path
	for len(rest) > 0 {
		for len(rest) > 0 && rest[0] == '/' {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			break
		}
		end := bytes.IndexByte(rest, '/')
		var segment []byte
		if end < 0 {
			segment, rest = rest, nil
		} else {
			segment, rest = rest[:end], rest[end+1:]
		}
		child, err := b.SubnodeOffsetNamelen(off, segment)
		if err != nil {
			return 0, errorf("walkSegments", KindBadPath, "segment %q: %v", segment, err)
		}
		off = child
	}
	return off, nil
}
