// Package fetch drives concurrent downloads of resolved descriptors through
// the stage-verify-extract pipeline. Each worker owns one descriptor at a
// time and writes into its own result slot, so the returned slice is in
// original descriptor order no matter how completion interleaves.
package fetch

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/frctools/vendordep/module/vendordep/engine"
	"github.com/frctools/vendordep/module/vendordep/extract"
	"github.com/frctools/vendordep/module/vendordep/httpclient"
	"github.com/frctools/vendordep/module/vendordep/stage"
	"github.com/frctools/vendordep/module/vendordep/store"
	"github.com/frctools/vendordep/module/vendordep/types"
)

// Transport is the network capability the orchestrator needs. The production
// implementation is httpclient.Client; tests substitute their own.
type Transport interface {
	Get(ctx context.Context, url string) (*httpclient.Response, error)
}

type Orchestrator struct {
	transport   Transport
	store       *store.Store
	stager      *stage.Stager
	concurrency int
}

func NewOrchestrator(t Transport, st *store.Store, sg *stage.Stager, concurrency int) *Orchestrator {
	return &Orchestrator{
		transport:   t,
		store:       st,
		stager:      sg,
		concurrency: concurrency,
	}
}

// Fetch processes every descriptor and returns one result per descriptor in
// input order. A terminal failure on one descriptor never cancels siblings;
// cancelling ctx stops dispatch and marks undispatched descriptors failed.
func (o *Orchestrator) Fetch(ctx context.Context, descriptors []types.DownloadDescriptor) []types.FetchResult {
	results := make([]types.FetchResult, len(descriptors))
	jobs := make([]engine.Job, len(descriptors))
	for i, d := range descriptors {
		jobs[i] = &artifactJob{
			orch: o,
			desc: d,
			slot: &results[i],
			logger: log.With().
				Str("manifest", d.Manifest).
				Str("artifact", d.ArtifactID).
				Str("classifier", d.Classifier).
				Logger(),
		}
	}

	// Per-descriptor outcomes live in the slots; the engine error only
	// aggregates what is already recorded there.
	_ = engine.NewEngine(o.concurrency, jobs).Execute(ctx)

	for i := range results {
		if results[i].Status == "" {
			results[i] = types.FetchResult{
				Descriptor: descriptors[i],
				Status:     types.StatusFail,
				Err:        ctx.Err(),
			}
		}
	}
	return results
}

// artifactJob runs the full pipeline for one descriptor: freshness check,
// candidate URLs in order, stream to temp, verify, extract or promote,
// marker write.
type artifactJob struct {
	orch   *Orchestrator
	desc   types.DownloadDescriptor
	slot   *types.FetchResult
	logger zerolog.Logger
}

func (j *artifactJob) Info() string { return j.desc.ID() }

func (j *artifactJob) Run(ctx context.Context) error {
	finalPath := j.orch.store.FinalPath(j.desc)

	// Warm store: skip before any network access.
	if j.orch.store.IsFresh(j.desc) {
		j.logger.Debug().Str("path", finalPath).Msg("Artifact already present, skipping")
		*j.slot = types.FetchResult{
			Descriptor: j.desc,
			Status:     types.StatusSkip,
			FinalPath:  finalPath,
		}
		return nil
	}

	var lastErr error
	for _, url := range j.desc.URLs {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		staged, err := j.download(ctx, url)
		if err != nil {
			lastErr = err
			var fe *types.FetchError
			if errors.As(err, &fe) && fe.NotFound() {
				// Fall through to the next declared repository.
				j.logger.Debug().Str("url", url).Msg("Not found, trying next repository")
				continue
			}
			break
		}

		if err := j.orch.stager.Verify(staged); err != nil {
			lastErr = err
			break
		}
		if _, err := extract.Materialize(j.orch.stager, staged, finalPath); err != nil {
			j.orch.stager.Discard(staged)
			lastErr = err
			break
		}
		j.orch.stager.Discard(staged)

		if err := j.orch.store.WriteMarker(j.desc, staged.SHA256, staged.Size, url); err != nil {
			j.logger.Warn().Err(err).Msg("Failed to write completion marker")
		}

		*j.slot = types.FetchResult{
			Descriptor: j.desc,
			Status:     types.StatusSuccess,
			FinalPath:  finalPath,
			Size:       staged.Size,
			SourceURL:  url,
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("no candidate URLs")
	}
	*j.slot = types.FetchResult{
		Descriptor: j.desc,
		Status:     types.StatusFail,
		Err:        lastErr,
	}
	return lastErr
}

func (j *artifactJob) download(ctx context.Context, url string) (*types.StagedArtifact, error) {
	resp, err := j.orch.transport.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return j.orch.stager.WriteTemp(j.desc, resp.Body, resp.ContentLength, url)
}
