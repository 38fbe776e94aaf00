package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/internal/portal"
	"github.com/growthlab/marshalgo/schema"
)

// FetchAllLightcurves downloads the lightcurve of every saved source across
// the session's worker pool. Individual failures never abort the batch; the
// returned tally carries a per-source outcome for each of them. When a fetch
// log is configured, the run and every outcome are recorded there.
func (pl *ProgramList) FetchAllLightcurves(ctx context.Context) (*schema.BatchResult, error) {
	sources, err := pl.loadSources(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		if name := src.String("name"); name != "" {
			names = append(names, name)
		}
	}

	// --- 0. Begin fetch tracking (if configured) ---
	var runID int64
	fetchStore := pl.mgr.GetFetchStore()
	if fetchStore != nil {
		configParams := map[string]any{
			"program": pl.program.Name,
			"workers": pl.cfg.Workers,
			"sources": len(names),
		}
		runID, err = fetchStore.BeginFetch(time.Now(), configParams)
		if err != nil {
			contract.LogWarn("Fetch tracking initialization failed", err)
			runID = 0
		}
	}

	// --- 1. Fan the fetches out across the worker pool ---
	nameCh := make(chan string, len(names))
	outcomeCh := make(chan schema.FetchOutcome, len(names))
	var wg sync.WaitGroup

	for range pl.cfg.Workers {
		wg.Go(func() {
			for name := range nameCh {
				outcomeCh <- pl.fetchOneLightcurve(ctx, name)
			}
		})
	}

	for _, name := range names {
		nameCh <- name
	}
	close(nameCh)

	wg.Wait()
	close(outcomeCh)

	// --- 2. Tally and record outcomes ---
	result := &schema.BatchResult{}
	for outcome := range outcomeCh {
		if outcome.OK {
			result.Succeeded++
		} else {
			result.Failed++
		}
		result.Outcomes = append(result.Outcomes, outcome)

		if fetchStore != nil && runID > 0 {
			if err := fetchStore.RecordSourceFetch(runID, outcome); err != nil {
				contract.LogWarn("Fetch tracking failed for "+outcome.Name, err)
			}
		}
	}
	sortOutcomes(result.Outcomes)

	// --- 3. End fetch tracking ---
	if fetchStore != nil && runID > 0 {
		if err := fetchStore.EndFetch(runID, time.Now(), result.Succeeded, result.Failed); err != nil {
			contract.LogWarn("Failed to finalize fetch tracking", err)
		}
	}

	return result, nil
}

// fetchOneLightcurve wraps one lightcurve download into a batch outcome.
func (pl *ProgramList) fetchOneLightcurve(ctx context.Context, name string) schema.FetchOutcome {
	start := time.Now()
	lc, err := pl.GetLightcurve(ctx, name)
	outcome := schema.FetchOutcome{Name: name, Duration: time.Since(start)}
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	outcome.OK = true
	outcome.Rows = len(lc.Rows)
	for _, row := range lc.Rows {
		if row.IsDetection() {
			outcome.Detections++
		}
	}
	return outcome
}

// DownloadAllSpecs saves the spectra tarball of every saved source into dir,
// one <name>.tar.gz per source. Sources without spectra count as failures in
// the tally but leave no file behind, and the batch always runs to the end.
func (pl *ProgramList) DownloadAllSpecs(ctx context.Context, dir string) (*schema.BatchResult, error) {
	sources, err := pl.loadSources(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	result := &schema.BatchResult{}
	for _, src := range sources {
		name := src.String("name")
		if name == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		start := time.Now()
		err := pl.DownloadSpec(ctx, name, filepath.Join(dir, name+".tar.gz"))
		outcome := schema.FetchOutcome{Name: name, Duration: time.Since(start)}
		if err != nil {
			outcome.Error = err.Error()
			result.Failed++
			if !errors.Is(err, portal.ErrNoSpectrum) {
				contract.LogWarn("failed to download spectra for "+name, err)
			}
		} else {
			outcome.OK = true
			result.Succeeded++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return result, nil
}

// IngestAvroIDs requests ingestion of alert-archive detections into the
// program's science program. With verify the scanning page of the configured
// window is re-queried afterwards and ingestions that never surfaced there
// are flipped to failures.
func (pl *ProgramList) IngestAvroIDs(ctx context.Context, avroIDs []string, verify bool) (*schema.BatchResult, error) {
	result := &schema.BatchResult{}
	for _, avroID := range avroIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		start := time.Now()
		err := pl.client.IngestAvro(ctx, avroID, pl.program.ProgramID)
		outcome := schema.FetchOutcome{Name: avroID, Duration: time.Since(start)}
		if err != nil {
			outcome.Error = err.Error()
			result.Failed++
			contract.LogWarn("failed to ingest avro id "+avroID, err)
		} else {
			outcome.OK = true
			result.Succeeded++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if verify && result.Succeeded > 0 {
		if err := pl.verifyIngested(ctx, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

// verifyIngested checks the scanning page for each ingested detection and
// demotes the ones that did not appear.
func (pl *ProgramList) verifyIngested(ctx context.Context, result *schema.BatchResult) error {
	candidates, err := pl.queryCandidates(ctx, schema.ShowSavedAll)
	if err != nil {
		return fmt.Errorf("ingestion verification failed: %w", err)
	}

	ingested := make(map[string]struct{}, len(candidates))
	for _, cand := range candidates {
		if id := cand.ID(); id != "" {
			ingested[id] = struct{}{}
		}
	}

	for i, outcome := range result.Outcomes {
		if !outcome.OK {
			continue
		}
		if _, ok := ingested[outcome.Name]; !ok {
			result.Outcomes[i].OK = false
			result.Outcomes[i].Error = "not found on the scanning page after ingestion"
			result.Succeeded--
			result.Failed++
		}
	}
	return nil
}

// SaveSources saves scanning-page candidates into the program. Candidates
// without a candid field fail individually; the batch continues.
func (pl *ProgramList) SaveSources(ctx context.Context, candidates []schema.Record) (*schema.BatchResult, error) {
	result := &schema.BatchResult{}
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome := schema.FetchOutcome{Name: cand.ID()}
		candID, ok := cand.Int64("candid")
		if !ok {
			outcome.Error = "candidate has no candid field"
			result.Failed++
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		start := time.Now()
		err := pl.client.SaveCandidate(ctx, candID, pl.program.ProgramID)
		outcome.Duration = time.Since(start)
		if err != nil {
			outcome.Error = err.Error()
			result.Failed++
			contract.LogWarn("failed to save candidate "+outcome.Name, err)
		} else {
			outcome.OK = true
			result.Succeeded++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return result, nil
}

// sortOutcomes orders a tally by source name so concurrent batches report
// deterministically.
func sortOutcomes(outcomes []schema.FetchOutcome) {
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Name < outcomes[j].Name
	})
}
