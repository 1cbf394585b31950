// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"go.fdtgo.dev/fdt/lib/diskio"
)

func init() {
	cmd := &cobra.Command{
		Use:   "grep FILE PATTERN",
		Short: "List the byte offsets where PATTERN occurs in the raw blob",
		Args:  cliutilExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, closeFn, err := loadBlob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			offsets, err := diskio.FindAll(bytes.NewReader(blob), []byte(args[1]))
			if err != nil {
				return err
			}
			for _, off := range offsets {
				fmt.Printf("%#x\n", off)
			}
			return nil
		},
	}
	subcommands = append(subcommands, cmd)
}
