// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reserve FILE",
		Short: "List the memory-reservation map",
		Args:  cliutilExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, closeFn, err := loadBlob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := blob.NumMemRsv()
			if err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				addr, size, err := blob.GetMemRsv(i)
				if err != nil {
					return err
				}
				fmt.Printf("reserve %#016x %#016x\n", addr, size)
			}
			return nil
		},
	}
	subcommands = append(subcommands, cmd)
}
