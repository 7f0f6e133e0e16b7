package main

import (
	"github.com/spf13/cobra"
)

var envName string

var rootCmd = &cobra.Command{
	Use:   "circulars",
	Short: "Question answering over regulatory circulars",
	Long: `circulars chunks and indexes a corpus of regulatory circulars and answers
questions about it with cited excerpts.

Typical flow:
  circulars chunk     # split data/texts/*.txt into chunk files
  circulars index     # embed chunks and write the vector index
  circulars ask "What is the free look period for health policies?"`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "config environment (default $ENV or local)")
}
