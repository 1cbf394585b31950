// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package diskio

import (
	"os"

	"golang.org/x/sys/unix"
)

// MMapFile memory-maps a regular file read-only and exposes it as a
// flat byte slice, the same shape OSFile exposes through ReadAt but
// without the read(2) syscall per access: Bytes() is a window
// directly onto the page cache.
type MMapFile struct {
	f    *os.File
	data []byte
}

// OpenMMap opens name and maps its entire contents read-only.
func OpenMMap(name string) (*MMapFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return &MMapFile{f: f}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &MMapFile{f: f, data: data}, nil
}

// Bytes returns the mapped region. The slice is borrowed: it is only
// valid until Close.
func (m *MMapFile) Bytes() []byte { return m.data }

func (m *MMapFile) Name() string { return m.f.Name() }

func (m *MMapFile) Size() int64 { return int64(len(m.data)) }

func (m *MMapFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, os.ErrInvalid
	}
	n := copy(p, m.data[off:])
	return n, nil
}

func (m *MMapFile) WriteAt(p []byte, off int64) (int, error) {
	return 0, os.ErrPermission
}

// Close unmaps the region and closes the underlying file.
func (m *MMapFile) Close() error {
	var err error
	if m.data != nil {
		err = unix.Munmap(m.data)
	}
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}

var _ File[int64] = (*MMapFile)(nil)
