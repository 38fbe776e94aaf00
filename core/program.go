package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
)

// ErrSourceNotFound is returned when a source name matches nothing in the
// program, neither saved sources nor (when asked) scanning-page candidates.
var ErrSourceNotFound = errors.New("source not found")

// Cache entry versions. Bumping one invalidates every cached entry of that
// kind; version 0 marks a single entry stale after a mutation.
const (
	lightcurveCacheVersion = 1
	summaryCacheVersion    = 1
)

// cacheMaxAge is the staleness window for cached portal responses.
const cacheMaxAge = 24 * time.Hour

// ProgramList is a session against one science program. It resolves the
// program index once at construction and memoizes saved sources, deduplicated
// lightcurves and source summaries for its lifetime. All state lives on the
// session; there is no package-level mutable state.
type ProgramList struct {
	cfg    *contract.Config
	client contract.PortalClient
	mgr    contract.CacheManager

	program schema.Program

	mu          sync.Mutex
	sources     []schema.Record
	lightcurves map[string]*schema.Lightcurve
	summaries   map[string]schema.Record
}

// NewProgramList resolves cfg.Program against the programs the user belongs
// to and returns a session bound to it. An unknown program name is an error
// listing the available memberships.
func NewProgramList(ctx context.Context, cfg *contract.Config, client contract.PortalClient, mgr contract.CacheManager) (*ProgramList, error) {
	programs, err := client.ListPrograms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}

	for _, p := range programs {
		if p.Name == cfg.Program {
			return &ProgramList{
				cfg:         cfg,
				client:      client,
				mgr:         mgr,
				program:     p,
				lightcurves: make(map[string]*schema.Lightcurve),
				summaries:   make(map[string]schema.Record),
			}, nil
		}
	}

	names := make([]string, 0, len(programs))
	for _, p := range programs {
		names = append(names, p.Name)
	}
	return nil, fmt.Errorf("could not find program %q. You are a member of: %s",
		cfg.Program, strings.Join(names, ", "))
}

// Program returns the resolved program of this session.
func (pl *ProgramList) Program() schema.Program {
	return pl.program
}

// loadSources fetches the saved sources of the program once and memoizes them.
func (pl *ProgramList) loadSources(ctx context.Context) ([]schema.Record, error) {
	pl.mu.Lock()
	if pl.sources != nil {
		sources := pl.sources
		pl.mu.Unlock()
		return sources, nil
	}
	pl.mu.Unlock()

	sources, err := pl.client.ListProgramSources(ctx, pl.program.ProgramIdx)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved sources for %s: %w", pl.program.Name, err)
	}

	pl.mu.Lock()
	pl.sources = sources
	pl.mu.Unlock()
	return sources, nil
}

// GetSavedSources returns the saved sources of the program. A non-nil trange
// keeps only sources whose creation date falls inside the window; sources
// without a parseable creation date are dropped from a filtered listing.
func (pl *ProgramList) GetSavedSources(ctx context.Context, trange *TimeRange) ([]schema.Record, error) {
	sources, err := pl.loadSources(ctx)
	if err != nil {
		return nil, err
	}
	if trange == nil {
		return sources, nil
	}

	filtered := make([]schema.Record, 0, len(sources))
	skipped := 0
	for _, src := range sources {
		created, ok := parseRecordTime(src.String("creationdate"))
		if !ok {
			skipped++
			continue
		}
		if created.Before(trange.Start) || !created.Before(trange.End) {
			continue
		}
		filtered = append(filtered, src)
	}
	if skipped > 0 {
		contract.LogWarn("filtering saved sources",
			fmt.Errorf("%d sources have no parseable creation date and were dropped", skipped))
	}
	return filtered, nil
}

// GetCandidates pages through the scanning page for the configured time
// window. The window is cut into slices so every query stays under the
// portal's result cap, the slices run concurrently, and failed slices are
// retried per the configured round budget.
func (pl *ProgramList) GetCandidates(ctx context.Context) ([]schema.Record, error) {
	return pl.queryCandidates(ctx, pl.cfg.ShowSaved)
}

// queryCandidates is the orchestrator path shared by GetCandidates and the
// post-ingestion verification pass.
func (pl *ProgramList) queryCandidates(ctx context.Context, showSaved schema.ShowSaved) ([]schema.Record, error) {
	slices, err := PlanSlices(TimeRange{Start: pl.cfg.StartTime, End: pl.cfg.EndTime}, pl.cfg.SliceStep)
	if err != nil {
		return nil, err
	}

	query := func(ctx context.Context, slice TimeRange) ([]schema.Record, error) {
		return pl.client.QueryCandidates(ctx, pl.program.ProgramIdx, slice.Start, slice.End, showSaved)
	}
	return RetryingRun(ctx, slices, query, pl.cfg.Workers, pl.cfg.MaxAttempts, pl.cfg.RaiseOnFail)
}

// GetLightcurve returns the deduplicated lightcurve of a source. Results are
// memoized on the session and backed by the response cache, so repeated calls
// within the staleness window never touch the portal.
func (pl *ProgramList) GetLightcurve(ctx context.Context, name string) (*schema.Lightcurve, error) {
	pl.mu.Lock()
	if lc, ok := pl.lightcurves[name]; ok {
		pl.mu.Unlock()
		return lc, nil
	}
	pl.mu.Unlock()

	if lc := pl.cachedLightcurve(name); lc != nil {
		pl.memoizeLightcurve(name, lc)
		return lc, nil
	}

	lc, err := pl.client.FetchLightcurve(ctx, name)
	if err != nil {
		return nil, err
	}
	pl.annotateLightcurve(lc)
	lc = DedupeLightcurve(lc)

	pl.storeCachedLightcurve(name, lc)
	pl.memoizeLightcurve(name, lc)
	return lc, nil
}

func (pl *ProgramList) memoizeLightcurve(name string, lc *schema.Lightcurve) {
	pl.mu.Lock()
	pl.lightcurves[name] = lc
	pl.mu.Unlock()
}

// annotateLightcurve copies coordinates, redshift and classification from the
// saved-source record onto the lightcurve. Best effort: it only consults
// sources already in memory and never triggers a portal call.
func (pl *ProgramList) annotateLightcurve(lc *schema.Lightcurve) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	for _, src := range pl.sources {
		if src.String("name") != lc.Name {
			continue
		}
		if ra, ok := src.Float("ra"); ok {
			lc.RA = ra
		}
		if dec, ok := src.Float("dec"); ok {
			lc.Dec = dec
		}
		if z, ok := src.Float("redshift"); ok {
			lc.Redshift = &z
		}
		if cl := src.String("classification"); cl != "" {
			lc.Classification = cl
		}
		return
	}
}

// cachedLightcurve loads a fresh cached copy, or nil on any miss.
func (pl *ProgramList) cachedLightcurve(name string) *schema.Lightcurve {
	data, ok := pl.cachedValue(lightcurveCacheKey(name), lightcurveCacheVersion)
	if !ok {
		return nil
	}
	var lc schema.Lightcurve
	if err := json.Unmarshal(data, &lc); err != nil {
		contract.LogWarn("discarding corrupt cached lightcurve for "+name, err)
		return nil
	}
	return &lc
}

func (pl *ProgramList) storeCachedLightcurve(name string, lc *schema.Lightcurve) {
	data, err := json.Marshal(lc)
	if err != nil {
		contract.LogWarn("failed to serialize lightcurve for caching", err)
		return
	}
	pl.storeCachedValue(lightcurveCacheKey(name), data, lightcurveCacheVersion)
}

// FitTable converts the deduplicated lightcurve of a source into a
// photometric-fitting table.
func (pl *ProgramList) FitTable(ctx context.Context, name string) (*schema.FitTable, error) {
	lc, err := pl.GetLightcurve(ctx, name)
	if err != nil {
		return nil, err
	}
	return BuildFitTable(lc), nil
}

// getSummary returns the nested summary tree of a saved source, memoized on
// the session and backed by the response cache.
func (pl *ProgramList) getSummary(ctx context.Context, name string) (schema.Record, error) {
	pl.mu.Lock()
	if summary, ok := pl.summaries[name]; ok {
		pl.mu.Unlock()
		return summary, nil
	}
	pl.mu.Unlock()

	src, err := pl.FindSource(ctx, name, false)
	if err != nil {
		return nil, err
	}
	sourceID := src.String("id")
	if sourceID == "" {
		return nil, fmt.Errorf("source %s has no id field", name)
	}

	if data, ok := pl.cachedValue(summaryCacheKey(name), summaryCacheVersion); ok {
		var summary schema.Record
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&summary); err == nil {
			pl.memoizeSummary(name, summary)
			return summary, nil
		}
		contract.LogWarn("discarding corrupt cached summary for "+name, err)
	}

	summary, err := pl.client.SourceSummary(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(summary); err == nil {
		pl.storeCachedValue(summaryCacheKey(name), data, summaryCacheVersion)
	}
	pl.memoizeSummary(name, summary)
	return summary, nil
}

func (pl *ProgramList) memoizeSummary(name string, summary schema.Record) {
	pl.mu.Lock()
	pl.summaries[name] = summary
	pl.mu.Unlock()
}

// invalidateSummary drops the memoized summary of a source and stamps the
// cached copy stale, so the next read refetches after a comment mutation.
func (pl *ProgramList) invalidateSummary(name string) {
	pl.mu.Lock()
	delete(pl.summaries, name)
	pl.mu.Unlock()
	pl.storeCachedValue(summaryCacheKey(name), []byte("{}"), 0)
}

// RetrieveFromSource navigates the source record, merged with its lazily
// fetched summary, using dotted-path keys. Missing keys resolve to def and
// are reported on the warning channel, never as an error.
func (pl *ProgramList) RetrieveFromSource(ctx context.Context, name string, keys []string, def any) (map[string]any, error) {
	src, err := pl.FindSource(ctx, name, false)
	if err != nil {
		return nil, err
	}
	summary, err := pl.getSummary(ctx, name)
	if err != nil {
		return nil, err
	}

	// Summary fields win over the listing fields they duplicate.
	merged := make(schema.Record, len(src)+len(summary))
	for k, v := range src {
		merged[k] = v
	}
	for k, v := range summary {
		merged[k] = v
	}

	out, missing := schema.RetrieveAll(merged, keys, def)
	for _, k := range missing {
		contract.LogWarn("retrieving from "+name,
			fmt.Errorf("key %q not found, substituting the default", k))
	}
	return out, nil
}

// ReadComments returns the annotations of a source from its summary tree.
func (pl *ProgramList) ReadComments(ctx context.Context, name string) ([]schema.Comment, error) {
	summary, err := pl.getSummary(ctx, name)
	if err != nil {
		return nil, err
	}

	raw, ok := summary["comments"].([]any)
	if !ok {
		return nil, nil
	}
	comments := make([]schema.Comment, 0, len(raw))
	for _, el := range raw {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		entry := schema.Record(m)
		id, _ := entry.Int64("id")
		comments = append(comments, schema.Comment{
			ID:     id,
			Type:   entry.String("type"),
			Text:   entry.String("comment"),
			Author: entry.String("name"),
			Date:   entry.String("date_added"),
		})
	}
	return comments, nil
}

// Comment posts an annotation, with duplicate handling selected by dup:
// "add" posts unconditionally, "no" skips when an identical comment of the
// same type already exists, "edit" replaces the first existing comment of the
// same type instead of adding another.
func (pl *ProgramList) Comment(ctx context.Context, name, text string, kind schema.CommentType, dup schema.DuplicateMode) error {
	if _, ok := schema.ValidDuplicateModes[dup]; !ok {
		return fmt.Errorf("invalid duplicate mode %q. must be no, add, edit", dup)
	}

	if dup == schema.DuplicateAdd {
		return pl.postComment(ctx, name, text, kind)
	}

	comments, err := pl.ReadComments(ctx, name)
	if err != nil {
		return fmt.Errorf("cannot check existing comments for %s: %w", name, err)
	}
	for _, c := range comments {
		if c.Type == string(kind) && c.Text == text {
			contract.LogWarn("skipping comment on "+name,
				fmt.Errorf("an identical %s annotation already exists", kind))
			return nil
		}
	}
	if dup == schema.DuplicateEdit {
		for _, c := range comments {
			if c.Type == string(kind) {
				if err := pl.client.EditComment(ctx, name, c.ID, text, kind); err != nil {
					return err
				}
				pl.invalidateSummary(name)
				return nil
			}
		}
	}
	return pl.postComment(ctx, name, text, kind)
}

func (pl *ProgramList) postComment(ctx context.Context, name, text string, kind schema.CommentType) error {
	if err := pl.client.PostComment(ctx, name, text, kind); err != nil {
		return err
	}
	pl.invalidateSummary(name)
	return nil
}

// DeleteComment removes one annotation by its id.
func (pl *ProgramList) DeleteComment(ctx context.Context, name string, commentID int64) error {
	if err := pl.client.DeleteComment(ctx, name, commentID); err != nil {
		return err
	}
	pl.invalidateSummary(name)
	return nil
}

// DeleteMatchingComments removes every annotation of a source with the given
// text and type, returning how many were deleted.
func (pl *ProgramList) DeleteMatchingComments(ctx context.Context, name, text string, kind schema.CommentType) (int, error) {
	comments, err := pl.ReadComments(ctx, name)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, c := range comments {
		if c.Type != string(kind) || c.Text != text {
			continue
		}
		if err := pl.client.DeleteComment(ctx, name, c.ID); err != nil {
			pl.invalidateSummary(name)
			return deleted, err
		}
		deleted++
	}
	if deleted > 0 {
		pl.invalidateSummary(name)
	}
	return deleted, nil
}

// FindSource returns the record of a source by name. With includeCandidates
// the scanning page of the configured window is searched as well.
func (pl *ProgramList) FindSource(ctx context.Context, name string, includeCandidates bool) (schema.Record, error) {
	sources, err := pl.loadSources(ctx)
	if err != nil {
		return nil, err
	}
	for _, src := range sources {
		if src.String("name") == name {
			return src, nil
		}
	}

	if includeCandidates {
		candidates, err := pl.GetCandidates(ctx)
		if err != nil {
			return nil, err
		}
		for _, cand := range candidates {
			if cand.String("name") == name || cand.ID() == name {
				return cand, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s in program %s", ErrSourceNotFound, name, pl.program.Name)
}

// CheckSpec reports whether the portal has at least one spectrum for the source.
func (pl *ProgramList) CheckSpec(ctx context.Context, name string) (bool, error) {
	return pl.client.CheckSpectra(ctx, name)
}

// DownloadSpec saves the spectra tarball of a source to filename. The name
// must belong to the program's saved sources; unknown names are rejected
// before the portal is contacted. No file is left behind when the portal has
// no spectra for the source.
func (pl *ProgramList) DownloadSpec(ctx context.Context, name, filename string) error {
	if _, err := pl.FindSource(ctx, name, false); err != nil {
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}

	if err := pl.client.DownloadSpectra(ctx, name, f); err != nil {
		_ = f.Close()
		_ = os.Remove(filename)
		return err
	}
	return f.Close()
}

// Table returns a name/RA/Dec listing of the saved sources.
func (pl *ProgramList) Table(ctx context.Context) ([][]string, error) {
	sources, err := pl.loadSources(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sources))
	for _, src := range sources {
		ra, _ := src.Float("ra")
		dec, _ := src.Float("dec")
		rows = append(rows, []string{src.String("name"), schema.FormatCoord(ra), schema.FormatCoord(dec)})
	}
	return rows, nil
}

// cachedValue reads one fresh entry from the response cache. Misses, stale
// entries and version mismatches all report !ok.
func (pl *ProgramList) cachedValue(key string, version int) ([]byte, bool) {
	store := pl.mgr.GetCacheStore()
	if store == nil {
		return nil, false
	}
	data, gotVersion, timestamp, err := store.Get(key)
	if err != nil || gotVersion != version {
		return nil, false
	}
	if time.Since(time.Unix(timestamp, 0)) > cacheMaxAge {
		return nil, false
	}
	return data, true
}

// storeCachedValue writes one entry to the response cache, best effort.
func (pl *ProgramList) storeCachedValue(key string, data []byte, version int) {
	store := pl.mgr.GetCacheStore()
	if store == nil {
		return
	}
	if err := store.Set(key, data, version, time.Now().Unix()); err != nil {
		contract.LogWarn("failed to cache portal response", err)
	}
}

func lightcurveCacheKey(name string) string {
	return "lightcurve:" + name
}

func summaryCacheKey(name string) string {
	return "summary:" + name
}

// parseRecordTime parses the date strings the Marshal puts into record
// fields, with or without a time of day.
func parseRecordTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(contract.DateTimeFormat, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
