// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

import "bytes"

// resolveAlias handles the leading segment of a path that doesn't
// start with '/': it is looked up as a property of /aliases, and the
// property's value (another path, itself possibly alias-relative) is
// resolved in its place before the remaining segments of the original
// path are walked from there. depth bounds the indirection chain so a
// blob with /aliases/a = "b", /aliases/b = "a" can't recurse forever.
func (b Blob) resolveAlias(path []byte, depth int) (Offset, error) {
	if depth >= maxAliasDepth {
		return 0, errorf("resolveAlias", KindBadPath, "alias indirection exceeded depth %d", maxAliasDepth)
	}

	end := bytes.IndexByte(path, '/')
	var name, rest []byte
	if end < 0 {
		name, rest = path, nil
	} else {
		name, rest = path[:end], path[end+1:]
	}
	if len(name) == 0 {
		return 0, errorf("resolveAlias", KindBadPath, "empty alias name")
	}

	aliasesNode, err := b.SubnodeOffsetNamelen(0, []byte("aliases"))
	if err != nil {
		return 0, errorf("resolveAlias", KindBadPath, "no /aliases node: %v", err)
	}

	target, err := b.GetPropNamelen(aliasesNode, name)
	if err != nil {
		return 0, errorf("resolveAlias", KindBadPath, "alias %q: %v", name, err)
	}
	target = trimNulTerm(target)
	if len(target) == 0 {
		return 0, errorf("resolveAlias", KindBadPath, "alias %q has an empty target", name)
	}

	var base Offset
	if target[0] == '/' {
		base, err = b.walkSegments(0, target)
	} else {
		base, err = b.pathOffset(target, depth+1)
	}
	if err != nil {
		return 0, errorf("resolveAlias", KindBadPath, "alias %q target %q: %v", name, target, err)
	}
	return b.walkSegments(base, rest)
}

// trimNulTerm drops a single trailing NUL from a property value, the
// form that comes back from GetPropNamelen for a string property.
func trimNulTerm(value []byte) []byte {
	if n := len(value); n > 0 && value[n-1] == 0 {
		return value[:n-1]
	}
	return value
}
