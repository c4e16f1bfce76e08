package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blackmichael/discuit-rss/internal/config"
	"github.com/blackmichael/discuit-rss/internal/discuit"
	"github.com/blackmichael/discuit-rss/internal/domain"
	"github.com/blackmichael/discuit-rss/internal/logger"
	"github.com/blackmichael/discuit-rss/internal/rss"
)

type feedOptions struct {
	sort   string
	limit  int
	output string
}

func newFeedCmd() *cobra.Command {
	var opts feedOptions
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "feed [community | @user]",
		Short: "Print the RSS feed for all posts, a community, or a user",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			segment := ""
			if len(args) == 1 {
				segment = args[0]
			}
			return runFeed(cmd, v, segment, opts)
		},
	}

	cmd.Flags().StringVar(&opts.sort, "sort", string(domain.SortHot), "hot, activity, new, day, week, month or year")
	cmd.Flags().IntVar(&opts.limit, "limit", domain.DefaultLimit, fmt.Sprintf("number of posts (max %d)", domain.MaxLimit))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the feed to a file instead of stdout")
	cmd.Flags().String("base-url", "", "Discuit API base URL (env DISCUIT_BASE_URL)")
	cmd.Flags().String("site-url", "", "site URL used in feed links (env DISCUIT_SITE_URL)")
	cmd.Flags().String("log-level", "", "log level (env LOG_LEVEL)")

	_ = v.BindPFlag(config.KeyBaseURL, cmd.Flags().Lookup("base-url"))
	_ = v.BindPFlag(config.KeySiteURL, cmd.Flags().Lookup("site-url"))
	_ = v.BindPFlag(config.KeyLogLevel, cmd.Flags().Lookup("log-level"))

	return cmd
}

func runFeed(cmd *cobra.Command, v *viper.Viper, segment string, opts feedOptions) error {
	cfg, err := config.LoadWith(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logger.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer closeLog.Close()

	scope, err := domain.ParseScope(segment)
	if err != nil {
		return err
	}
	sort, err := domain.ParseSort(opts.sort)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client := discuit.NewClient(cfg.DiscuitBaseURL,
		discuit.WithTimeout(cfg.UpstreamTimeout),
		discuit.WithUserAgent(cfg.UserAgent),
	)
	if err := client.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize discuit session: %w", err)
	}

	posts, err := domain.NewFeedService(client, log).Feed(ctx, domain.FeedRequest{
		Scope: scope,
		Sort:  sort,
		Limit: domain.ClampLimit(opts.limit),
	})
	if err != nil {
		return err
	}

	translator := rss.NewTranslator(cfg.SiteURL)
	if opts.output == "" {
		return translator.Write(cmd.OutOrStdout(), posts, scope.Name())
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := translator.Write(f, posts, scope.Name()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
