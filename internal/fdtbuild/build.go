// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package fdtbuild assembles synthetic FDT/DTB blobs for tests. It is
// deliberately separate from pkg/fdt: nothing in pkg/fdt may depend on
// it, so the accessor side stays read-only and free of writer code.
package fdtbuild

import (
	"encoding/binary"

	"go.fdtgo.dev/fdt/lib/binstruct"
)

// header17 is the binstruct-tagged layout of a version-17 header, the
// shape Builder.Build emits. Earlier versions are produced by
// truncating/omitting trailing fields, done by hand in Build rather
// than via a second tagged struct, since binstruct only models
// fixed-offset structs and the header's very definition is "the tail
// grows with the version". headerSize(17) is 44 bytes, four more than
// this struct covers; Build leaves those four bytes zero.
type header17 struct {
	Magic           uint32 `bin:"off=0x00,siz=4"`
	TotalSize       uint32 `bin:"off=0x04,siz=4"`
	OffDtStruct     uint32 `bin:"off=0x08,siz=4"`
	OffDtStrings    uint32 `bin:"off=0x0c,siz=4"`
	OffMemRsvmap    uint32 `bin:"off=0x10,siz=4"`
	Version         uint32 `bin:"off=0x14,siz=4"`
	LastCompVersion uint32 `bin:"off=0x18,siz=4"`
	BootCpuidPhys   uint32 `bin:"off=0x1c,siz=4"`
	SizeDtStrings   uint32 `bin:"off=0x20,siz=4"`
	SizeDtStruct    uint32 `bin:"off=0x24,siz=4"`
	End             binstruct.End `bin:"off=0x28,siz=0"`
}

const (
	tagBeginNode uint32 = 1
	tagEndNode   uint32 = 2
	tagProp      uint32 = 3
	tagNop       uint32 = 4
	tagEnd       uint32 = 9
)

// Reservation is one memory-reservation map entry.
type Reservation struct {
	Address uint64
	Size    uint64
}

// prop is a pending PROP record: Name is resolved against the string
// table at Build time.
type prop struct {
	name  string
	value []byte
}

// node is a pending BEGIN_NODE...END_NODE span.
type node struct {
	name     string
	props    []prop
	children []*node
}

// Builder assembles a well-formed (or deliberately mutated) FDT blob
// bottom-up: add nodes and properties, then Build. It is not safe for
// concurrent use and is not zero-allocation — it exists only for
// tests.
type Builder struct {
	Version         uint32 // defaults to 17 if 0
	LastCompVersion uint32 // defaults to Version if 0
	BootCpuidPhys   uint32
	Reservations    []Reservation

	root *node
}

// NewBuilder returns a Builder with an empty root node ("/").
func NewBuilder() *Builder {
	return &Builder{root: &node{name: ""}}
}

// Root returns a handle for adding properties/children to "/".
func (b *Builder) Root() *NodeHandle {
	return &NodeHandle{n: b.root}
}

// NodeHandle lets callers build up a node's properties and subnodes
// before the blob is finalized.
type NodeHandle struct {
	n *node
}

// AddProp appends a property to this node. Calling AddProp twice with
// the same name builds an (invalid) blob with a duplicate property,
// which is sometimes exactly what a malformed-input test wants.
func (h *NodeHandle) AddProp(name string, value []byte) *NodeHandle {
	h.n.props = append(h.n.props, prop{name: name, value: value})
	return h
}

// AddPropString appends a NUL-terminated string property.
func (h *NodeHandle) AddPropString(name string, value string) *NodeHandle {
	return h.AddProp(name, append([]byte(value), 0))
}

// AddPropU32 appends a single big-endian uint32 property.
func (h *NodeHandle) AddPropU32(name string, value uint32) *NodeHandle {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, value)
	return h.AddProp(name, buf)
}

// AddChild appends a new child node named name and returns a handle
// to it.
func (h *NodeHandle) AddChild(name string) *NodeHandle {
	child := &node{name: name}
	h.n.children = append(h.n.children, child)
	return &NodeHandle{n: child}
}

// stringTable accumulates property names, returning each name's byte
// offset from the start of the strings block, deduplicating repeated
// names the way a real dtc emitter would.
type stringTable struct {
	buf     []byte
	offsets map[string]uint32
}

func newStringTable() *stringTable {
	return &stringTable{offsets: make(map[string]uint32)}
}

func (t *stringTable) intern(s string) uint32 {
	if off, ok := t.offsets[s]; ok {
		return off
	}
	off := uint32(len(t.buf))
	t.buf = append(t.buf, s...)
	t.buf = append(t.buf, 0)
	t.offsets[s] = off
	return off
}

func align4(n int) int { return (n + 3) &^ 3 }

func appendTag(buf []byte, tag uint32) []byte {
	var word [4]byte
	binary.BigEndian.PutUint32(word[:], tag)
	return append(buf, word[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var word [4]byte
	binary.BigEndian.PutUint32(word[:], v)
	return append(buf, word[:]...)
}

func padTo4(buf []byte) []byte {
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

func (n *node) emit(buf []byte, st *stringTable) []byte {
	buf = appendTag(buf, tagBeginNode)
	buf = append(buf, n.name...)
	buf = append(buf, 0)
	buf = padTo4(buf)
	for _, p := range n.props {
		buf = appendTag(buf, tagProp)
		buf = appendU32(buf, uint32(len(p.value)))
		buf = appendU32(buf, st.intern(p.name))
		buf = append(buf, p.value...)
		buf = padTo4(buf)
	}
	for _, child := range n.children {
		buf = child.emit(buf, st)
	}
	buf = appendTag(buf, tagEndNode)
	return buf
}

// Build serializes the tree into a complete blob. A zero Version
// builds a version-17 blob; pre-v16 versions get a header truncated
// to that version's size and their PROP records realigned to 8 bytes
// per the legacy convention pkg/fdt's accessors also implement.
func (b *Builder) Build() ([]byte, error) {
	version := b.Version
	if version == 0 {
		version = 17
	}
	lastComp := b.LastCompVersion
	if lastComp == 0 {
		lastComp = version
	}

	st := newStringTable()
	var structBuf []byte
	if lastComp < 16 {
		structBuf = b.root.emitLegacy(structBuf, st)
	} else {
		structBuf = b.root.emit(structBuf, st)
	}
	structBuf = appendTag(structBuf, tagEnd)
	structBuf = padTo4(structBuf)

	hdrSize := headerSize(version)

	rsvBuf := make([]byte, 0, (len(b.Reservations)+1)*16)
	for _, r := range b.Reservations {
		var entry [16]byte
		binary.BigEndian.PutUint64(entry[0:8], r.Address)
		binary.BigEndian.PutUint64(entry[8:16], r.Size)
		rsvBuf = append(rsvBuf, entry[:]...)
	}
	rsvBuf = append(rsvBuf, make([]byte, 16)...) // terminating {0,0}

	rsvOff := hdrSize
	rsvOff = align4(rsvOff)
	// the reservation map must be 8-aligned
	for rsvOff%8 != 0 {
		rsvOff++
	}
	structOff := rsvOff + len(rsvBuf)
	stringsOff := structOff + len(structBuf)
	totalSize := stringsOff + len(st.buf)

	out := make([]byte, totalSize)
	hdr := header17{
		Magic:           0xd00dfeed,
		TotalSize:       uint32(totalSize),
		OffDtStruct:     uint32(structOff),
		OffDtStrings:    uint32(stringsOff),
		OffMemRsvmap:    uint32(rsvOff),
		Version:         version,
		LastCompVersion: lastComp,
		BootCpuidPhys:   b.BootCpuidPhys,
		SizeDtStrings:   uint32(len(st.buf)),
		SizeDtStruct:    uint32(len(structBuf)),
	}
	hdrBytes, err := binstruct.Marshal(hdr)
	if err != nil {
		return nil, err
	}
	copy(out[0:hdrSize], hdrBytes)
	copy(out[rsvOff:], rsvBuf)
	copy(out[structOff:], structBuf)
	copy(out[stringsOff:], st.buf)
	return out, nil
}

func headerSize(version uint32) int {
	switch {
	case version <= 1:
		return 28
	case version <= 2:
		return 32
	case version <= 3:
		return 36
	case version <= 16:
		return 40
	default:
		return 44
	}
}

// emitLegacy mirrors emit but pads each PROP's value to 8-byte
// alignment (measured from the start of the struct block) whenever
// the value is at least 8 bytes long, the pre-v16 convention.
func (n *node) emitLegacy(buf []byte, st *stringTable) []byte {
	buf = appendTag(buf, tagBeginNode)
	buf = append(buf, n.name...)
	buf = append(buf, 0)
	buf = padTo4(buf)
	for _, p := range n.props {
		buf = appendTag(buf, tagProp)
		buf = appendU32(buf, uint32(len(p.value)))
		buf = appendU32(buf, st.intern(p.name))
		if len(p.value) >= 8 && len(buf)%8 != 0 {
			buf = append(buf, 0, 0, 0, 0)
		}
		buf = append(buf, p.value...)
		buf = padTo4(buf)
	}
	for _, child := range n.children {
		buf = child.emitLegacy(buf, st)
	}
	buf = appendTag(buf, tagEndNode)
	return buf
}

// BuildSWMagic produces a not-yet-finalized sequential-write blob: a
// header whose magic is the bitwise complement of FDT_MAGIC and whose
// size_dt_struct is left at 0, the in-progress marker ROProbe checks
// for.
func BuildSWMagic() []byte {
	out := make([]byte, 44)
	binary.BigEndian.PutUint32(out[0:4], ^uint32(0xd00dfeed))
	binary.BigEndian.PutUint32(out[4:8], 44)
	binary.BigEndian.PutUint32(out[20:24], 17)
	binary.BigEndian.PutUint32(out[24:28], 17)
	return out
}
