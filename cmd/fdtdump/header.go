// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"encoding/json"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"go.fdtgo.dev/fdt/pkg/fdt"
)

func init() {
	var debug bool
	cmd := &cobra.Command{
		Use:   "header FILE",
		Short: "Print a blob's fixed header fields",
		Args:  cliutilExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, closeFn, err := loadBlob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			hdr, err := blob.Header()
			if err != nil {
				return err
			}

			if debug {
				cfg := spew.NewDefaultConfig()
				cfg.DisablePointerAddresses = true
				cfg.Dump(hdr)
				return nil
			}
			return printHeader(hdr)
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "dump every field with go-spew instead of the chosen --format")
	subcommands = append(subcommands, cmd)
}

func printHeader(hdr fdt.HeaderFields) error {
	switch format {
	case "json":
		bs, err := json.MarshalIndent(hdr, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(bs))
	case "yaml":
		bs, err := yaml.Marshal(hdr)
		if err != nil {
			return err
		}
		fmt.Print(string(bs))
	default:
		fmt.Printf("magic:             %#08x\n", hdr.Magic)
		fmt.Printf("totalsize:         %d\n", hdr.TotalSize)
		fmt.Printf("off_dt_struct:     %d\n", hdr.OffDtStruct)
		fmt.Printf("off_dt_strings:    %d\n", hdr.OffDtStrings)
		fmt.Printf("off_mem_rsvmap:    %d\n", hdr.OffMemRsvmap)
		fmt.Printf("version:           %d\n", hdr.Version)
		fmt.Printf("last_comp_version: %d\n", hdr.LastCompVersion)
		fmt.Printf("boot_cpuid_phys:   %d\n", hdr.BootCpuidPhys)
		fmt.Printf("size_dt_strings:   %d\n", hdr.SizeDtStrings)
		fmt.Printf("size_dt_struct:    %d\n", hdr.SizeDtStruct)
	}
	return nil
}
