// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

import "encoding/binary"

// Property is a borrowed view of one PROP record: Value is a slice
// directly into the blob, taken as stored with no pre-v16
// realignment (see getPropValue for the realigned form).
type Property struct {
	NameOff uint32
	Value   []byte
}

// FirstPropertyOffset returns the offset of node's first property, or
// KindNotFound if the node has none (its property block ends at the
// first non-PROP/non-NOP tag, per convention — spec §4.5).
func (b Blob) FirstPropertyOffset(node Offset) (Offset, error) {
	nodeEnd, err := b.CheckNodeOffset(node)
	if err != nil {
		return 0, wrapOp("FirstPropertyOffset", err)
	}
	return b.scanToProperty(nodeEnd)
}

// NextPropertyOffset returns the offset of the property following the
// one at off, or KindNotFound if off was the node's last property.
func (b Blob) NextPropertyOffset(off Offset) (Offset, error) {
	next, err := b.CheckPropOffset(off)
	if err != nil {
		return 0, wrapOp("NextPropertyOffset", err)
	}
	return b.scanToProperty(next)
}

func (b Blob) scanToProperty(off Offset) (Offset, error) {
	for {
		tagBytes, err := b.OffsetPtr(off, 4)
		if err != nil {
			return 0, wrapOp("scanToProperty", err)
		}
		switch binary.BigEndian.Uint32(tagBytes) {
		case TagProp:
			return off, nil
		case TagNop:
			_, next, err := b.NextTag(off)
			if err != nil {
				return 0, wrapOp("scanToProperty", err)
			}
			off = next
		default:
			// BEGIN_NODE, END_NODE, END, or anything else ends
			// the property block.
			return 0, errorf("scanToProperty", KindNotFound, "no more properties at/after %d", off)
		}
	}
}

// GetPropertyByOffset returns the raw {name_off, value} pair at off,
// without any pre-v16 realignment (that requires knowing the owning
// node's offset, which this accessor does not take — see
// GetPropNamelen/GetPropByOffset for the realigned form). For blobs
// with last_comp_version < 16 this returns KindBadVersion, matching
// spec §4.5.
func (b Blob) GetPropertyByOffset(off Offset) (Property, error) {
	lastComp, err := b.LastCompVersion()
	if err != nil {
		return Property{}, wrapOp("GetPropertyByOffset", err)
	}
	if lastComp < 16 {
		return Property{}, errorf("GetPropertyByOffset", KindBadVersion,
			"raw by-offset access needs last_comp_version>=16 (have %d); use GetPropByOffset", lastComp)
	}
	return b.rawPropertyAt(off)
}

func (b Blob) rawPropertyAt(off Offset) (Property, error) {
	tagAndHdr, err := b.OffsetPtr(off, 12)
	if err != nil {
		return Property{}, wrapOp("rawPropertyAt", err)
	}
	if binary.BigEndian.Uint32(tagAndHdr[0:4]) != TagProp {
		return Property{}, errorf("rawPropertyAt", KindBadOffset, "offset %d is not a PROP", off)
	}
	valueLen := binary.BigEndian.Uint32(tagAndHdr[4:8])
	nameOff := binary.BigEndian.Uint32(tagAndHdr[8:12])
	value, err := b.OffsetPtr(off+12, int(valueLen))
	if err != nil {
		return Property{}, wrapOp("rawPropertyAt", err)
	}
	return Property{NameOff: nameOff, Value: value}, nil
}

// getPropValue returns a PROP record's value, applying the pre-v16
// realignment fixup: when last_comp_version<16 and the value is at
// least 8 bytes, the emitter inserted a 4-byte pad whenever the
// natural value position wasn't already 8-aligned (spec §4.5, §9).
func (b Blob) getPropValue(off Offset) (nameOff uint32, value []byte, err error) {
	tagAndHdr, err := b.OffsetPtr(off, 12)
	if err != nil {
		return 0, nil, wrapOp("getPropValue", err)
	}
	if binary.BigEndian.Uint32(tagAndHdr[0:4]) != TagProp {
		return 0, nil, errorf("getPropValue", KindBadOffset, "offset %d is not a PROP", off)
	}
	valueLen := binary.BigEndian.Uint32(tagAndHdr[4:8])
	nameOff = binary.BigEndian.Uint32(tagAndHdr[8:12])

	valueOff := off + 12
	lastComp, err := b.LastCompVersion()
	if err != nil {
		return 0, nil, wrapOp("getPropValue", err)
	}
	if lastComp < 16 && valueLen >= 8 && int(valueOff)%8 != 0 {
		valueOff += 4
	}

	value, err = b.OffsetPtr(valueOff, int(valueLen))
	if err != nil {
		return 0, nil, wrapOp("getPropValue", err)
	}
	return nameOff, value, nil
}

// GetPropertyNamelen iterates node's properties looking for one whose
// name (resolved through the string table) equals name, returning its
// PROP offset.
func (b Blob) GetPropertyNamelen(node Offset, name []byte) (Offset, error) {
	off, err := b.FirstPropertyOffset(node)
	for ; err == nil; off, err = b.NextPropertyOffset(off) {
		prop, perr := b.rawPropertyAt(off)
		if perr != nil {
			return 0, wrapOp("GetPropertyNamelen", perr)
		}
		propName, serr := b.GetString(int32(prop.NameOff))
		if serr != nil {
			return 0, wrapOp("GetPropertyNamelen", serr)
		}
		if stringEqual(propName, name) {
			return off, nil
		}
	}
	return 0, errorf("GetPropertyNamelen", KindNotFound, "node %d has no property %q", node, name)
}

// GetPropNamelen returns the value of node's property named name,
// with the pre-v16 realignment fixup already applied.
func (b Blob) GetPropNamelen(node Offset, name []byte) ([]byte, error) {
	off, err := b.GetPropertyNamelen(node, name)
	if err != nil {
		return nil, wrapOp("GetPropNamelen", err)
	}
	_, value, err := b.getPropValue(off)
	if err != nil {
		return nil, wrapOp("GetPropNamelen", err)
	}
	return value, nil
}

// GetPropByOffset resolves both the name and realigned value of the
// property at off.
func (b Blob) GetPropByOffset(off Offset) (name []byte, value []byte, err error) {
	nameOff, value, err := b.getPropValue(off)
	if err != nil {
		return nil, nil, wrapOp("GetPropByOffset", err)
	}
	name, err = b.GetString(int32(nameOff))
	if err != nil {
		return nil, nil, wrapOp("GetPropByOffset", err)
	}
	return name, value, nil
}

func stringEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
