// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"
	"strings"

	"git.lukeshu.com/go/lowmemjson"
	"github.com/spf13/cobra"

	"go.fdtgo.dev/fdt/lib/containers"
	"go.fdtgo.dev/fdt/pkg/fdt"
)

func init() {
	var showProps bool
	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Walk and print every node's path",
		Args:  cliutilExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, closeFn, err := loadBlob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer closeFn()
			if format == "json" {
				return walkTreeJSON(blob, showProps)
			}
			return walkTree(blob, showProps)
		},
	}
	cmd.Flags().BoolVar(&showProps, "props", false, "also print each node's properties")
	subcommands = append(subcommands, cmd)
}

// pathBufs recycles the []byte buffers GetPath writes into across the
// walk, instead of allocating one per node.
var pathBufs containers.SlicePool[byte]

func walkTree(blob fdt.Blob, showProps bool) error {
	var walkErr error
	err := blob.Walk(func(off fdt.Offset, depth int) bool {
		buf := pathBufs.Get(4096)
		path, err := blob.GetPath(off, buf)
		if err != nil {
			walkErr = err
			return false
		}
		fmt.Println(string(path))
		pathBufs.Put(buf)

		if showProps {
			for propOff, perr := blob.FirstPropertyOffset(off); perr == nil; propOff, perr = blob.NextPropertyOffset(propOff) {
				name, value, gerr := blob.GetPropByOffset(propOff)
				if gerr != nil {
					walkErr = gerr
					return false
				}
				fmt.Printf("    %s = %s\n", name, formatPropValue(value))
			}
		}
		return true
	})
	if err != nil {
		return err
	}
	return walkErr
}

// treeNodeJSON is the --format=json record for one node, consumed by
// walkTreeJSON.
type treeNodeJSON struct {
	Path  string            `json:"path"`
	Props map[string]string `json:"props,omitempty"`
}

// walkTreeJSON collects one treeNodeJSON record per node and hands
// the list to lowmemjson the same way btrfs-rec's "inspect list-nodes"
// writes its node list: through writeJSONFile, rather than
// encoding/json.Marshal.
func walkTreeJSON(blob fdt.Blob, showProps bool) error {
	var nodes []treeNodeJSON
	var walkErr error
	err := blob.Walk(func(off fdt.Offset, depth int) bool {
		buf := pathBufs.Get(4096)
		path, err := blob.GetPath(off, buf)
		if err != nil {
			walkErr = err
			return false
		}
		rec := treeNodeJSON{Path: string(path)}
		pathBufs.Put(buf)

		if showProps {
			rec.Props = make(map[string]string)
			for propOff, perr := blob.FirstPropertyOffset(off); perr == nil; propOff, perr = blob.NextPropertyOffset(propOff) {
				name, value, gerr := blob.GetPropByOffset(propOff)
				if gerr != nil {
					walkErr = gerr
					return false
				}
				rec.Props[string(name)] = formatPropValue(value)
			}
		}
		nodes = append(nodes, rec)
		return true
	})
	if err != nil {
		return err
	}
	if walkErr != nil {
		return walkErr
	}
	return writeJSONFile(os.Stdout, nodes, lowmemjson.ReEncoder{
		Indent:                "  ",
		ForceTrailingNewlines: true,
	})
}

// formatPropValue renders a property value the way dtc's -O dts
// output does for the common case (a printable NUL-terminated
// string), falling back to a hex dump otherwise.
func formatPropValue(value []byte) string {
	if len(value) == 0 {
		return `""`
	}
	if isPrintableCString(value) {
		return fmt.Sprintf("%q", strings.TrimRight(string(value), "\x00"))
	}
	hex := make([]string, len(value))
	for i, c := range value {
		hex[i] = fmt.Sprintf("%02x", c)
	}
	return "[" + strings.Join(hex, " ") + "]"
}

func isPrintableCString(value []byte) bool {
	if value[len(value)-1] != 0 {
		return false
	}
	for _, c := range value[:len(value)-1] {
		if c == 0 || c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
