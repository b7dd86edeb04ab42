package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/samvad-hq/samvad-health-news/internal/config"
	"github.com/samvad-hq/samvad-health-news/internal/logger"
	"github.com/samvad-hq/samvad-health-news/internal/verify"
	"github.com/samvad-hq/samvad-health-news/pkg/sources"
)

// VerifierRuntime probes every configured feed URL and writes a report.
type VerifierRuntime struct {
	registry *sources.Registry
	verifier *verify.Verifier
	out      io.Writer
	log      logger.Logger
}

// NewVerifierRuntime builds a verifier over the configured sources. A nil
// out writes to stdout.
func NewVerifierRuntime(cfg *config.Config, out io.Writer, log logger.Logger) (*VerifierRuntime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if out == nil {
		out = os.Stdout
	}
	log = logger.OrNop(log)

	registry, err := loadSources(cfg.SourcesFile)
	if err != nil {
		return nil, err
	}

	return &VerifierRuntime{
		registry: registry,
		verifier: verify.New(nil, verify.Options{
			Timeout:       cfg.VerifyTimeout,
			Concurrency:   cfg.VerifyConcurrency,
			RatePerSecond: cfg.VerifyRatePerSecond,
			Logger:        log,
		}),
		out: out,
		log: log,
	}, nil
}

// Run verifies all sources, enabled or not, and returns the results.
func (v *VerifierRuntime) Run(ctx context.Context) ([]verify.Result, error) {
	if v == nil || v.verifier == nil {
		return nil, fmt.Errorf("verifier is not initialized")
	}

	all := v.registry.All()
	v.log.InfoObj("feed verification starting", "verify_meta", map[string]any{
		"sources_count": len(all),
	})

	results := v.verifier.VerifyAll(ctx, all)
	success, failed, invalid := verify.Tally(results)
	v.log.InfoObj("feed verification completed", "verify_meta", map[string]any{
		"checked": len(results),
		"success": success,
		"failed":  failed,
		"invalid": invalid,
	})

	if _, err := io.WriteString(v.out, verify.Report(results)); err != nil {
		return results, fmt.Errorf("write report: %w", err)
	}
	return results, ctx.Err()
}
