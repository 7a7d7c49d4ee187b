package main

import (
	"errors"
	"fmt"

	"github.com/okian/dormscore/internal/domain/scoring"
	"github.com/okian/dormscore/internal/verify"
	"github.com/spf13/cobra"
)

// errVerificationFailed makes the process exit non-zero on mismatches.
var errVerificationFailed = errors.New("verification failed")

func newVerifyCmd() *cobra.Command {
	var (
		cfg        verify.Config
		policyFile string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay known cases against a running server",
		Long:  "Checks /healthz, then replays built-in score and eligibility cases concurrently and reports every answer that differs from the local engine.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if policyFile != "" {
				engine, err := scoring.LoadEngine(policyFile)
				if err != nil {
					return err
				}
				cfg.Engine = engine
			}

			report, err := verify.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.OK() {
				return fmt.Errorf("%w: %d of %d scenarios", errVerificationFailed, report.Failed, report.Total)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.BaseURL, "url", "u", verify.DefaultBaseURL, "Base URL of the service")
	f.IntVarP(&cfg.Workers, "workers", "w", verify.DefaultWorkers, "Number of concurrent scenarios")
	f.DurationVar(&cfg.Timeout, "timeout", verify.DefaultTimeout, "HTTP request timeout")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every passing scenario")
	f.StringVar(&policyFile, "policy", "", "Region policy the server is expected to run")
	return cmd
}
