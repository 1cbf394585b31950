// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"go.fdtgo.dev/fdt/lib/containers"
	"go.fdtgo.dev/fdt/pkg/fdt"
)

func init() {
	cmd := &cobra.Command{
		Use:   "phandle FILE PHANDLE...",
		Short: "Resolve one or more phandle values to node paths",
		Args:  atLeastFileAndOnePhandle,
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, closeFn, err := loadBlob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			var cache phandleCache
			for _, arg := range args[1:] {
				ph, err := strconv.ParseUint(arg, 0, 32)
				if err != nil {
					return fmt.Errorf("phandle %q: %w", arg, err)
				}
				off, err := resolvePhandle(blob, &cache, uint32(ph))
				if err != nil {
					return err
				}
				path, perr := blob.GetPath(off, make([]byte, 4096))
				if perr != nil {
					return perr
				}
				fmt.Printf("%#x\t%s\n", ph, path)
			}
			return nil
		},
	}
	subcommands = append(subcommands, cmd)

	listCmd := &cobra.Command{
		Use:   "phandles FILE",
		Short: "List every phandle in the tree, sorted",
		Args:  cliutilExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, closeFn, err := loadBlob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer closeFn()
			return listPhandles(blob)
		},
	}
	subcommands = append(subcommands, listCmd)
}

func resolvePhandle(blob fdt.Blob, cache *phandleCache, ph uint32) (fdt.Offset, error) {
	if off, ok := cache.Get(ph); ok {
		return fdt.Offset(off), nil
	}
	off, err := blob.NodeOffsetByPhandle(ph)
	if err != nil {
		return 0, err
	}
	cache.Add(ph, int32(off))
	return off, nil
}

func listPhandles(blob fdt.Blob) error {
	var phandles []containers.NativeOrdered[uint32]
	err := blob.Walk(func(off fdt.Offset, depth int) bool {
		if ph, err := blob.GetPhandle(off); err == nil {
			phandles = append(phandles, containers.NativeOrdered[uint32]{Val: ph})
		}
		return true
	})
	if err != nil {
		return err
	}
	sortNativeOrdered(phandles)
	for _, ph := range phandles {
		fmt.Printf("%#x\n", ph.Val)
	}
	return nil
}

// sortNativeOrdered is a tiny insertion sort: phandle lists in a
// realistic tree are small enough that pulling in a generic sort
// algorithm from outside this tree isn't worth it, and the comparator
// this loop needs is exactly what containers.Ordered already exposes.
func sortNativeOrdered(s []containers.NativeOrdered[uint32]) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Cmp(s[j-1]) < 0; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func atLeastFileAndOnePhandle(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("requires a FILE and at least one PHANDLE argument")
	}
	return nil
}
