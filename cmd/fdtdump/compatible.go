// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"go.fdtgo.dev/fdt/pkg/fdt"
)

func init() {
	cmd := &cobra.Command{
		Use:   "compatible FILE STRING",
		Short: "List every node compatible with STRING",
		Args:  cliutilExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, closeFn, err := loadBlob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			compat := args[1]
			off := fdt.Offset(0)
			first := true
			for {
				if !first {
					var ferr error
					off, ferr = nextSibling(blob, off)
					if ferr != nil {
						break
					}
				}
				first = false
				var err error
				off, err = blob.NodeOffsetByCompatible(off, compat)
				if err != nil {
					if errors.Is(err, fdt.KindNotFound) {
						break
					}
					return err
				}
				path, perr := blob.GetPath(off, make([]byte, 4096))
				if perr != nil {
					return perr
				}
				fmt.Println(string(path))
			}
			return nil
		},
	}
	subcommands = append(subcommands, cmd)
}

// nextSibling advances one node forward in traversal order, for
// re-feeding into NodeOffsetByCompatible's inclusive startOffset.
func nextSibling(blob fdt.Blob, off fdt.Offset) (fdt.Offset, error) {
	// Re-walking from root is wasteful but keeps this subcommand
	// independent of any package-internal cursor state; the node
	// counts a CLI is run against are small enough for it not to
	// matter.
	found := fdt.Offset(-1)
	seen := false
	werr := blob.Walk(func(candidate fdt.Offset, d int) bool {
		if seen {
			found = candidate
			return false
		}
		if candidate == off {
			seen = true
		}
		return true
	})
	if werr != nil {
		return 0, werr
	}
	if found < 0 {
		return 0, fmt.Errorf("no node after offset %d", off)
	}
	return found, nil
}
