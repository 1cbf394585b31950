// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type logLevelFlag struct {
	logrus.Level
}

func (lvl *logLevelFlag) Type() string { return "loglevel" }
func (lvl *logLevelFlag) Set(str string) error {
	var err error
	lvl.Level, err = logrus.ParseLevel(str)
	return err
}

var _ pflag.Value = (*logLevelFlag)(nil)

// outputFormat is the shared --format flag across every subcommand
// that prints structured data.
type outputFormat string

func (f *outputFormat) Type() string   { return "format" }
func (f *outputFormat) String() string { return string(*f) }
func (f *outputFormat) Set(str string) error {
	switch str {
	case "text", "json", "yaml":
		*f = outputFormat(str)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (want text, json, or yaml)", str)
	}
}

var _ pflag.Value = (*outputFormat)(nil)

var format outputFormat = "text"

func main() {
	logLevel := logLevelFlag{Level: logrus.InfoLevel}

	argparser := &cobra.Command{
		Use:   "fdtdump {[flags]|SUBCOMMAND}",
		Short: "Inspect Flattened Device Tree (DTB) blobs",

		Args: cliutil.WrapPositionalArgs(cliutil.OnlySubcommands),
		RunE: cliutil.RunSubcommands,

		SilenceErrors: true,
		SilenceUsage:  true,

		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	argparser.SetFlagErrorFunc(cliutil.FlagErrorFunc)
	argparser.SetHelpTemplate(cliutil.HelpTemplate)
	argparser.PersistentFlags().Var(&logLevel, "verbosity", "set the verbosity")
	argparser.PersistentFlags().Var(&format, "format", "output format: text, json, or yaml")

	for _, cmd := range subcommands {
		cmd := cmd
		orig := cmd.RunE
		cmd.RunE = func(c *cobra.Command, args []string) error {
			logger := logrus.New()
			logger.SetLevel(logLevel.Level)
			ctx := dlog.WithLogger(c.Context(), dlog.WrapLogrus(logger))

			grp := dgroup.NewGroup(ctx, dgroup.GroupConfig{
				EnableSignalHandling: true,
			})
			grp.Go(c.Name(), func(ctx context.Context) error {
				c.SetContext(ctx)
				return orig(c, args)
			})
			return grp.Wait()
		}
		argparser.AddCommand(cmd)
	}

	if err := argparser.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v: error: %v\n", argparser.CommandPath(), err)
		os.Exit(1)
	}
}

// subcommands is populated by each subcommand file's init().
var subcommands []*cobra.Command
