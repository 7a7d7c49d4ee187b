package verify

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/dormscore/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Run checks service health, then replays every built-in scenario with at
// most cfg.Workers in flight. Wrong answers are collected in the report; the
// returned error is reserved for an unreachable service or cancellation.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	cfg.normalize()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	log := logger.Get().Named("verify")

	log.Info(ctx, "starting dormscore verification",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	client := NewHTTPClient(cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Replay scenarios concurrently
	scenarios := Scenarios(cfg.Engine)
	report := &Report{Total: len(scenarios), StartTime: time.Now()}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(cfg.Workers)

	for _, sc := range scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := sc.Check(ctx, client, cfg.BaseURL)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				report.Mismatches = append(report.Mismatches, Mismatch{Scenario: sc.Name, Detail: err.Error()})
				log.Warn(ctx, "scenario failed", logger.String("scenario", sc.Name), logger.Error(err))
				return nil
			}
			report.Passed++
			if cfg.Verbose {
				log.Info(ctx, "scenario passed", logger.String("scenario", sc.Name))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("verification interrupted: %w", err)
	}

	sort.Slice(report.Mismatches, func(i, j int) bool {
		return report.Mismatches[i].Scenario < report.Mismatches[j].Scenario
	})

	// Final statistics
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	displayFinalStats(ctx, log, report)

	return report, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, r *Report) {
	log.Info(ctx, "final statistics",
		logger.Int("total", r.Total),
		logger.Int("passed", r.Passed),
		logger.Int("failed", r.Failed),
		logger.String("duration", r.Duration.String()))
}
