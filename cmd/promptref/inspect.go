package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gubarz/promptref/internal/codec/markdown"
	"github.com/gubarz/promptref/internal/codec/simple"
	"github.com/gubarz/promptref/internal/codec/token"
	"github.com/gubarz/promptref/internal/prompt"
	"github.com/gubarz/promptref/internal/ui"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Print the decoded token stream of a file",
	Long: `Prints one line per token with its kind, range and text.

Markdown links are recognized unless --raw is given, in which case the
plain tokenizer output is shown.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

var linksCmd = &cobra.Command{
	Use:   "links <file>",
	Short: "Print the file references found in a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinks,
}

func init() {
	tokensCmd.Flags().Bool("raw", false, "Skip the markdown link decoder")
	tokensCmd.Flags().Bool("stats", false, "Print decoder counters to stderr")
}

func runTokens(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	raw, _ := cmd.Flags().GetBool("raw")
	showStats, _ := cmd.Flags().GetBool("stats")

	var tokens []token.Token
	if raw {
		tokens, err = simple.ConsumeAll(simple.NewDecoder(f))
	} else {
		dec := markdown.NewDecoder(simple.NewDecoder(f))
		tokens, err = simple.ConsumeAll(dec)
		if showStats {
			s := dec.Stats()
			fmt.Fprintf(os.Stderr, "tokens in: %d, tokens out: %d, links: %d, flushed candidates: %d\n",
				s.TokensIn, s.TokensOut, s.Links, s.FlushedCandidates)
		}
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	ui.RefreshStyles()
	return ui.WriteTokens(cmd.OutOrStdout(), tokens)
}

func runLinks(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	links, _, err := prompt.ScanLinks(simple.NewDecoder(f))
	if err != nil {
		return fmt.Errorf("scan %s: %w", args[0], err)
	}

	ui.RefreshStyles()
	return ui.WriteLinks(cmd.OutOrStdout(), links)
}
