// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bufio"
	"io"

	"git.lukeshu.com/go/lowmemjson"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/spf13/cobra"
)

// cliutilExactArgs wraps cobra.ExactArgs the same way every btrfs-*
// subcommand in this tree's ancestry wraps its own Args validators, so
// a plain positional-argument mistake gets cliutil's consistent usage
// message instead of cobra's default one.
func cliutilExactArgs(n int) cobra.PositionalArgs {
	return cliutil.WrapPositionalArgs(cobra.ExactArgs(n))
}

// writeJSONFile encodes obj to w with lowmemjson through a buffered
// writer, flushing it before returning.
func writeJSONFile(w io.Writer, obj any, cfg lowmemjson.ReEncoder) (err error) {
	buffer := bufio.NewWriter(w)
	defer func() {
		if _err := buffer.Flush(); err == nil && _err != nil {
			err = _err
		}
	}()
	cfg.Out = buffer
	return lowmemjson.Encode(&cfg, obj)
}
