package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "llmstxt",
		Short: "Generate llms.txt and llms-full.txt for a website",
		Long: `llmstxt crawls a website, summarizes each page and writes the two
documents described at https://llmstxt.org:

  {domain}-llms.txt       one linked line per page with a short description
  {domain}-llms-full.txt  the cleaned content of every page

Usage:
  llmstxt generate <url> [flags]`,
		SilenceUsage: true,
	}
	root.AddCommand(newGenerateCmd())
	return root
}
