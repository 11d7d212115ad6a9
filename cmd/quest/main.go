// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	quest "github.com/questlang/quest"
	"github.com/questlang/quest/log"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	maxDepth  int
	dumpCode  bool
	dumpToks  bool
	exprInput string
)

const version = "0.1.0"

func openScript(args []string) (*quest.Quest, error) {
	opts := &quest.Options{MaxCallDepth: maxDepth}
	if verbose {
		opts.Logger = log.NewStdLogger(os.Stderr)
	}
	if exprInput != "" {
		return quest.NewBytes([]byte(exprInput), opts)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no script given; pass a file or use -e")
	}
	return quest.New(args[0], opts)
}

func runScript(cmd *cobra.Command, args []string) {
	q, err := openScript(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "quest: %v\n", err)
		os.Exit(1)
	}
	defer q.Close()

	if _, err := q.Run(); err != nil {
		quest.ReportError(os.Stderr, err)
		os.Exit(1)
	}
}

func dumpScript(cmd *cobra.Command, args []string) {
	q, err := openScript(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "quest: %v\n", err)
		os.Exit(1)
	}
	defer q.Close()

	if dumpToks {
		tokens, err := q.Tokens()
		if err != nil {
			quest.ReportError(os.Stderr, err)
			os.Exit(1)
		}
		for _, tok := range tokens {
			fmt.Printf("%s\t%s\n", tok.Span.Start, tok)
		}
		return
	}

	if err := q.Parse(); err != nil {
		quest.ReportError(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(q.Block.Inspect())
}

func main() {

	rootCmd := &cobra.Command{
		Use:   "quest",
		Short: "quest is an interpreter for the Quest language",
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log interpreter internals to stderr")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0,
		"Maximum call depth (0 uses the default)")
	rootCmd.PersistentFlags().StringVarP(&exprInput, "expr", "e", "",
		"Run the given expression instead of a file")

	runCmd := &cobra.Command{
		Use:   "run [script]",
		Short: "Run a Quest script",
		Run:   runScript,
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [script]",
		Short: "Dump the rewritten token stream or the compiled block",
		Run:   dumpScript,
	}
	dumpCmd.Flags().BoolVar(&dumpToks, "tokens", false, "Dump tokens after macro expansion")
	dumpCmd.Flags().BoolVar(&dumpCode, "code", false, "Dump the compiled block")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
