package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/dormscore/internal/adapters/noticefeed"
	"github.com/okian/dormscore/internal/adapters/repository"
	"github.com/okian/dormscore/internal/config"
	"github.com/okian/dormscore/internal/domain/model"
	"github.com/okian/dormscore/pkg/logger"
	"github.com/okian/dormscore/pkg/metrics"
	"github.com/spf13/cobra"
)

// errNoStore is returned by crawl --store when no Postgres DSN is configured.
var errNoStore = errors.New("postgres_dsn is not configured")

// noticeStore persists crawled notices.
type noticeStore interface {
	InsertNotices(ctx context.Context, notices []model.Notice) (int, error)
}

// openNoticeStore connects to the configured catalog database. It returns the
// store and a function releasing it.
var openNoticeStore = func(ctx context.Context, cfg *config.Config) (noticeStore, func() error, error) {
	if cfg.PostgresDSN == "" {
		return nil, nil, errNoStore
	}
	db, err := repository.OpenPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewPostgresProvider(db, repository.WithSemester(cfg.Semester)), db.Close, nil
}

type crawlSummary struct {
	Crawled  int  `json:"crawled"`
	Inserted int  `json:"inserted"`
	Purged   bool `json:"cache_purged"`
}

func newNoticesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notices",
		Short: "Dormitory notice board tooling",
	}
	cmd.AddCommand(newCrawlCmd())
	return cmd
}

func newCrawlCmd() *cobra.Command {
	var (
		boardURL string
		store    bool
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Fetch and classify the notice board",
		Long:  "Fetches the notice board, classifies every post and prints the result. With --store the notices are inserted into the catalog database and the notices cache tag is purged.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := logger.Get().Named("crawl")

			notices, err := noticefeed.NewClient().Fetch(ctx, boardURL)
			if err != nil {
				return err
			}
			metrics.RecordNoticesCrawled(len(notices))
			log.Info(ctx, "notice board fetched", logger.String("url", boardURL), logger.Int("notices", len(notices)))

			if !store {
				return printJSON(cmd.OutOrStdout(), notices)
			}

			summary, err := storeNotices(ctx, log, notices)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVar(&boardURL, "url", noticefeed.DefaultBoardURL, "Notice board URL")
	cmd.Flags().BoolVar(&store, "store", false, "Insert notices into the configured Postgres database")
	return cmd
}

func storeNotices(ctx context.Context, log logger.Logger, notices []model.Notice) (crawlSummary, error) {
	summary := crawlSummary{Crawled: len(notices)}

	cfg, err := config.Load(ctx)
	if err != nil {
		return summary, err
	}
	st, closeStore, err := openNoticeStore(ctx, cfg)
	if err != nil {
		return summary, fmt.Errorf("open notice store: %w", err)
	}
	defer func() { _ = closeStore() }()

	summary.Inserted, err = st.InsertNotices(ctx, notices)
	if err != nil {
		return summary, err
	}
	log.Info(ctx, "notices stored", logger.Int("inserted", summary.Inserted))

	if summary.Inserted > 0 && cfg.RedisAddr != "" {
		client := repository.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()

		cached := repository.NewCachedProvider(repository.NewStaticProvider(), client)
		if err := cached.Invalidate(ctx, repository.ResourceNotices); err != nil {
			log.Warn(ctx, "notices cache purge failed", logger.Error(err))
		} else {
			summary.Purged = true
		}
	}
	return summary, nil
}
