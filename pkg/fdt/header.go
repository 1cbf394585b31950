// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package fdt

// Blob is an immutable, caller-owned FDT image. This package never
// allocates a Blob or retains it beyond the call in progress, and only
// Move copies one (into a caller-owned buffer); every method call
// re-reads straight out of the backing array. The zero Blob is not a valid blob (ROProbe will reject it
// as truncated).
type Blob []byte

// Offset is a byte position within a Blob's structure block, always
// a multiple of 4 at tag boundaries. It is the opaque handle this
// package hands back in place of node/property pointers (spec §9).
type Offset int32

// rootOffset is the distinguished "not yet started" node offset that
// NextNode treats as "begin a root-inclusive walk at offset 0".
const rootOffset Offset = -1

// magic returns the blob's first 32-bit word, whatever it is; callers
// compare it against Magic/SWMagic themselves (see ROProbe).
func (b Blob) magic() (uint32, bool) {
	return loadU32(b, offMagic)
}

// TotalSize returns the header's totalsize field.
func (b Blob) TotalSize() (uint32, error) {
	v, ok := loadU32(b, offTotalSize)
	if !ok {
		return 0, errorf("TotalSize", KindTruncated, "header truncated")
	}
	return v, nil
}

// Version returns the header's version field.
func (b Blob) Version() (uint32, error) {
	v, ok := loadU32(b, offVersion)
	if !ok {
		return 0, errorf("Version", KindTruncated, "header truncated")
	}
	return v, nil
}

// LastCompVersion returns the header's last_comp_version field.
func (b Blob) LastCompVersion() (uint32, error) {
	v, ok := loadU32(b, offLastCompVersion)
	if !ok {
		return 0, errorf("LastCompVersion", KindTruncated, "header truncated")
	}
	return v, nil
}

// OffDtStruct returns the header's off_dt_struct field.
func (b Blob) OffDtStruct() (uint32, error) {
	v, ok := loadU32(b, offOffDtStruct)
	if !ok {
		return 0, errorf("OffDtStruct", KindTruncated, "header truncated")
	}
	return v, nil
}

// OffDtStrings returns the header's off_dt_strings field.
func (b Blob) OffDtStrings() (uint32, error) {
	v, ok := loadU32(b, offOffDtStrings)
	if !ok {
		return 0, errorf("OffDtStrings", KindTruncated, "header truncated")
	}
	return v, nil
}

// OffMemRsvmap returns the header's off_mem_rsvmap field.
func (b Blob) OffMemRsvmap() (uint32, error) {
	v, ok := loadU32(b, offOffMemRsvmap)
	if !ok {
		return 0, errorf("OffMemRsvmap", KindTruncated, "header truncated")
	}
	return v, nil
}

// BootCpuidPhys returns the header's boot_cpuid_phys field (version >= 2).
func (b Blob) BootCpuidPhys() (uint32, error) {
	version, err := b.Version()
	if err != nil {
		return 0, err
	}
	if version < 2 {
		return 0, errorf("BootCpuidPhys", KindBadVersion, "field absent before version 2 (have %d)", version)
	}
	v, ok := loadU32(b, offBootCpuidPhys)
	if !ok {
		return 0, errorf("BootCpuidPhys", KindTruncated, "header truncated")
	}
	return v, nil
}

// SizeDtStrings returns the header's size_dt_strings field (version >= 3).
func (b Blob) SizeDtStrings() (uint32, error) {
	version, err := b.Version()
	if err != nil {
		return 0, err
	}
	if version < 3 {
		return 0, errorf("SizeDtStrings", KindBadVersion, "field absent before version 3 (have %d)", version)
	}
	v, ok := loadU32(b, offSizeDtStrings)
	if !ok {
		return 0, errorf("SizeDtStrings", KindTruncated, "header truncated")
	}
	return v, nil
}

// SizeDtStruct returns the header's size_dt_struct field (version >= 17).
func (b Blob) SizeDtStruct() (uint32, error) {
	version, err := b.Version()
	if err != nil {
		return 0, err
	}
	if version < 17 {
		return 0, errorf("SizeDtStruct", KindBadVersion, "field absent before version 17 (have %d)", version)
	}
	v, ok := loadU32(b, offSizeDtStruct)
	if !ok {
		return 0, errorf("SizeDtStruct", KindTruncated, "header truncated")
	}
	return v, nil
}

// HeaderSize returns the number of header bytes this blob's claimed
// version requires, without validating anything else about the blob.
func (b Blob) HeaderSize() (int, error) {
	version, err := b.Version()
	if err != nil {
		return 0, err
	}
	return headerSize(version), nil
}

// HeaderFields is a plain-data snapshot of every header field,
// produced only for display/marshaling purposes (cmd/fdtdump, tests).
// It carries no binstruct tags: internal/fdtbuild has the tagged form
// used to build headers, and cmd/fdtdump prints this struct directly
// with fmt, encoding/json or yaml. It is never constructed by the core
// accessors above, which stay allocation-free.
type HeaderFields struct {
	Magic           uint32
	TotalSize       uint32
	OffDtStruct     uint32
	OffDtStrings    uint32
	OffMemRsvmap    uint32
	Version         uint32
	LastCompVersion uint32
	BootCpuidPhys   uint32
	SizeDtStrings   uint32
	SizeDtStruct    uint32
}

// Header materializes every field this blob's version defines,
// leaving version-absent fields at zero. It allocates one struct and
// is meant for diagnostics, not the hot query path.
func (b Blob) Header() (HeaderFields, error) {
	var h HeaderFields
	var err error
	if h.Magic, err = loadMagic(b); err != nil {
		return h, err
	}
	if h.TotalSize, err = b.TotalSize(); err != nil {
		return h, err
	}
	if h.OffDtStruct, err = b.OffDtStruct(); err != nil {
		return h, err
	}
	if h.OffDtStrings, err = b.OffDtStrings(); err != nil {
		return h, err
	}
	if h.OffMemRsvmap, err = b.OffMemRsvmap(); err != nil {
		return h, err
	}
	if h.Version, err = b.Version(); err != nil {
		return h, err
	}
	if h.LastCompVersion, err = b.LastCompVersion(); err != nil {
		return h, err
	}
	if h.Version >= 2 {
		if h.BootCpuidPhys, err = b.BootCpuidPhys(); err != nil {
			return h, err
		}
	}
	if h.Version >= 3 {
		if h.SizeDtStrings, err = b.SizeDtStrings(); err != nil {
			return h, err
		}
	}
	if h.Version >= 17 {
		if h.SizeDtStruct, err = b.SizeDtStruct(); err != nil {
			return h, err
		}
	}
	return h, nil
}

func loadMagic(b Blob) (uint32, error) {
	v, ok := b.magic()
	if !ok {
		return 0, errorf("Header", KindTruncated, "header truncated")
	}
	return v, nil
}
