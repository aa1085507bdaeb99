// Package vendordep exposes the resolve-and-fetch service: vendor manifests
// in, a populated dependency store plus per-artifact outcomes out.
package vendordep

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/frctools/vendordep/module/vendordep/engine"
	"github.com/frctools/vendordep/module/vendordep/fetch"
	"github.com/frctools/vendordep/module/vendordep/locator"
	"github.com/frctools/vendordep/module/vendordep/manifest"
	"github.com/frctools/vendordep/module/vendordep/stage"
	"github.com/frctools/vendordep/module/vendordep/store"
	"github.com/frctools/vendordep/module/vendordep/types"
)

// Config carries the service-level knobs. Zero values fall back to
// defaults.
type Config struct {
	StoreRoot   string
	Concurrency int
	ExtraRepos  []string
}

type Service struct {
	cfg       Config
	source    manifest.Source
	transport fetch.Transport
	store     *store.Store
}

// Report is the outcome of one resolution pass.
type Report struct {
	Manifests []*types.VendorManifest
	// ResolutionErrors holds per-manifest parse failures and per-artifact
	// locator failures. They never abort sibling manifests or artifacts.
	ResolutionErrors []error
	Results          []types.FetchResult
	Libraries        *store.LibraryReport
}

// Summary aggregates fetch outcomes.
func (r *Report) Summary() fetch.Summary {
	return fetch.Summarize(r.Results)
}

func NewService(cfg Config, src manifest.Source, transport fetch.Transport) (*Service, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = engine.DefaultConcurrency
	}
	st, err := store.New(cfg.StoreRoot)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:       cfg,
		source:    src,
		transport: transport,
		store:     st,
	}, nil
}

// Store exposes the underlying dependency store.
func (s *Service) Store() *store.Store { return s.store }

// Run resolves and fetches every named manifest for the given platform.
// Parse and locate failures are recorded per manifest/artifact and do not
// stop siblings; cross-manifest conflicts abort the whole batch before any
// network access.
func (s *Service) Run(ctx context.Context, refs []string, platform types.Platform) (*Report, error) {
	report := &Report{}

	for _, ref := range refs {
		raw, err := s.source.Fetch(ctx, ref)
		if err != nil {
			report.ResolutionErrors = append(report.ResolutionErrors,
				fmt.Errorf("manifest %s: %w", ref, err))
			continue
		}
		m, err := manifest.Parse(raw)
		if err != nil {
			report.ResolutionErrors = append(report.ResolutionErrors,
				fmt.Errorf("manifest %s: %w", ref, err))
			continue
		}
		report.Manifests = append(report.Manifests, m)
	}

	if err := manifest.ValidateConflicts(report.Manifests); err != nil {
		return report, err
	}

	var descriptors []types.DownloadDescriptor
	for _, m := range report.Manifests {
		descs, failures := locator.Resolve(m, platform, locator.Options{ExtraRepos: s.cfg.ExtraRepos})
		report.ResolutionErrors = append(report.ResolutionErrors, failures...)
		descriptors = append(descriptors, descs...)
		log.Info().
			Str("manifest", m.Key()).
			Int("descriptors", len(descs)).
			Int("unresolved", len(failures)).
			Msg("Resolved manifest")
	}

	stager, err := stage.NewStager(s.cfg.StoreRoot)
	if err != nil {
		return report, err
	}
	defer func() {
		if err := stager.Cleanup(); err != nil {
			log.Warn().Err(err).Msg("Failed to clean staging directory")
		}
	}()

	orch := fetch.NewOrchestrator(s.transport, s.store, stager, s.cfg.Concurrency)
	report.Results = orch.Fetch(ctx, descriptors)

	report.Libraries = &store.LibraryReport{}
	for _, m := range report.Manifests {
		lr, err := s.store.Scan(m.Name, m.Version)
		if err != nil {
			log.Warn().Err(err).Str("manifest", m.Key()).Msg("Library scan failed")
			continue
		}
		report.Libraries.Merge(lr)
	}

	return report, ctx.Err()
}
