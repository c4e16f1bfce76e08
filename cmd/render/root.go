package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackmichael/discuit-rss/internal/version"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "render",
		Short:         "Render a Discuit feed as RSS",
		Long:          "render logs in to Discuit, fetches one feed (all posts, a community, or @user) and prints it as an RSS 2.0 document.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newFeedCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Version)
			return err
		},
	}
}
