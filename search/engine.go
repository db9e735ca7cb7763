package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ailsahq/grantseek/ai"
	"github.com/ailsahq/grantseek/core"
	"github.com/ailsahq/grantseek/storage"
	"github.com/panjf2000/ants/v2"
)

// Engine decides which grants to surface for a query, in what order, and
// whether to retrieve at all. It combines vector similarity over document
// chunks with structured eligibility signals, enforces result diversity, and
// keeps bounded per-session state of what has been discussed.
type Engine struct {
	grants   storage.GrantRepository
	chunks   storage.ChunkRepository
	sessions storage.SessionRepository
	embedder ai.Embedder
	config   *Config
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithConfig replaces the default tuning. The config is validated.
func WithConfig(cfg *Config) Option {
	return func(e *Engine) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.config = cfg
		return nil
	}
}

// NewEngine creates a new ranking engine.
func NewEngine(
	grantRepository storage.GrantRepository,
	chunkRepository storage.ChunkRepository,
	sessionRepository storage.SessionRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Engine, error) {
	if grantRepository == nil {
		return nil, ErrGrantRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if sessionRepository == nil {
		return nil, ErrSessionRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		grants:   grantRepository,
		chunks:   chunkRepository,
		sessions: sessionRepository,
		embedder: provider.Embedder(),
		config:   DefaultConfig(),
		logger:   slog.Default().With("component", "search-engine"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(e.config.FragmentWorkers)
	if err != nil {
		return nil, err
	}
	e.pool = pool

	return e, nil
}

// Close releases the engine's worker pool.
func (e *Engine) Close() error {
	e.pool.Release()
	return nil
}

// Request is one search invocation. History is the caller's view of the
// conversation; the engine never stores it.
type Request struct {
	SessionID string
	Query     string
	History   []core.Turn
	// ActiveOnly restricts results to grants still accepting applications.
	ActiveOnly bool
	// MaxResults overrides the configured cap when positive.
	MaxResults int
}

// Response is the ranked result set plus the provenance a downstream answer
// generator needs to phrase its confidence honestly.
type Response struct {
	Results []*core.RankedResult
	Intent  Intent
	// NoRetrieval is set when the engine decided not to search at all
	// (definition queries).
	NoRetrieval bool
	// EffectiveThreshold is the score threshold in force when the results
	// were filtered; Relaxed reports whether it was lowered from the
	// configured minimum.
	EffectiveThreshold float64
	Relaxed            bool
	// LowConfidence marks a result set that only exists because the
	// threshold was relaxed.
	LowConfidence bool
	// NoCandidates is set when nothing scored above the floor. The request
	// still succeeded; there is just nothing worth surfacing.
	NoCandidates bool
	// MetadataMissing lists grant ids seen in the vector index whose
	// metadata could not be fetched this request.
	MetadataMissing []core.GrantID
}

// Search runs the full pipeline for one query.
func (e *Engine) Search(ctx context.Context, req *Request) (*Response, error) {
	return e.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor runs the full pipeline with per-stage observation.
func (e *Engine) SearchWithMonitor(ctx context.Context, req *Request, monitor SearchMonitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if req == nil || strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}

	if e.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.RequestTimeout)
		defer cancel()
	}

	monitor.Start(req.Query)

	discussed := e.sessionRefs(ctx, req.SessionID)
	intent := ClassifyIntent(req.Query, discussed)
	monitor.IntentClassified(intent)

	maxResults := e.config.MaxResults
	if req.MaxResults > 0 {
		maxResults = req.MaxResults
	}

	var (
		resp *Response
		err  error
	)

	switch intent {
	case IntentDefinition:
		resp = &Response{Intent: intent, NoRetrieval: true}

	case IntentComparative:
		fragments := splitComparativeFragments(req.Query)
		if len(fragments) >= 2 {
			resp, err = e.runComparative(ctx, req, fragments, maxResults, monitor)
			break
		}
		// A purely pronominal comparison ("how do they compare") has
		// nothing to segment; treat it as a follow-up on the discussion
		// when possible, otherwise as discovery.
		if len(discussed) > 0 {
			intent = IntentFollowUp
			resp, err = e.runFollowUp(ctx, req, discussed, maxResults, monitor)
		} else {
			intent = IntentDiscovery
			resp, err = e.runDiscovery(ctx, req, maxResults, monitor)
		}
		if resp != nil {
			resp.Intent = intent
		}

	case IntentFollowUp:
		resp, err = e.runFollowUp(ctx, req, discussed, maxResults, monitor)

	default:
		resp, err = e.runDiscovery(ctx, req, maxResults, monitor)
	}

	if err != nil {
		e.logger.Error("search failed",
			"session", req.SessionID, "query", req.Query, "intent", intent, "err", err)
		return nil, err
	}

	if resp.Intent == 0 {
		resp.Intent = intent
	}

	e.recordSurfaced(ctx, req.SessionID, resp)
	monitor.Finish(resp)
	return resp, nil
}

// runDiscovery is the standard retrieval path: embed the query, over-fetch
// chunk matches, group per grant, fetch metadata, fuse, threshold, select.
func (e *Engine) runDiscovery(ctx context.Context, req *Request, maxResults int, monitor SearchMonitor) (*Response, error) {
	vector, err := e.embedQuery(ctx, req, req.Query)
	if err != nil {
		return nil, err
	}

	matches, err := e.vectorSearch(ctx, req, vector, maxResults*e.config.OverFetchFactor)
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(matches)

	hits := groupMatchesByGrant(matches)
	candidates, missing, err := e.assembleCandidates(ctx, req, hits)
	if err != nil {
		return nil, err
	}
	monitor.AfterCandidateAssembly(candidates)

	resp := e.rank(candidates, maxResults, monitor)
	resp.Intent = IntentDiscovery
	resp.MetadataMissing = missing
	return resp, nil
}

// runComparative retrieves each compared fragment concurrently, merges the
// chunk matches, and ranks the union. Fragments that name a grant the vector
// index missed are resolved against grant titles so the comparison still
// covers them.
func (e *Engine) runComparative(ctx context.Context, req *Request, fragments []string, maxResults int, monitor SearchMonitor) (*Response, error) {
	matches, err := e.fragmentMatches(ctx, req, fragments)
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(matches)

	hits := groupMatchesByGrant(matches)
	candidates, missing, err := e.assembleCandidates(ctx, req, hits)
	if err != nil {
		return nil, err
	}

	named := e.resolveNamedGrants(ctx, req, fragments, candidates)
	for i, c := range named {
		c.SemanticRank = len(candidates) + i
	}
	candidates = append(candidates, named...)
	monitor.AfterCandidateAssembly(candidates)

	resp := e.rank(candidates, maxResults, monitor)
	resp.Intent = IntentComparative
	resp.MetadataMissing = missing
	return resp, nil
}

// runFollowUp tries discovery first; if the vector index yields nothing worth
// surfacing, it resolves grant references from the conversation instead and
// fetches those grants directly, bypassing vector search.
func (e *Engine) runFollowUp(ctx context.Context, req *Request, discussed []core.GrantID, maxResults int, monitor SearchMonitor) (*Response, error) {
	resp, err := e.runDiscovery(ctx, req, maxResults, monitor)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) > 0 {
		resp.Intent = IntentFollowUp
		return resp, nil
	}

	refs := ExtractGrantRefs(req.History, e.config.HistoryRefBound)
	if len(refs) == 0 {
		refs = discussed
	}
	if len(refs) == 0 {
		resp.Intent = IntentFollowUp
		return resp, nil
	}

	candidates, missing, err := e.fetchDirect(ctx, req, refs)
	if err != nil {
		return nil, err
	}
	monitor.AfterCandidateAssembly(candidates)

	resp = e.rank(candidates, maxResults, monitor)
	resp.Intent = IntentFollowUp
	resp.MetadataMissing = missing
	return resp, nil
}

// rank runs fusion, threshold relaxation, and diversity selection over an
// assembled candidate batch.
func (e *Engine) rank(candidates []*core.Candidate, maxResults int, monitor SearchMonitor) *Response {
	fused := fuseCandidates(candidates, e.config)
	monitor.AfterFusion(fused)

	kept, effective, relaxed := applyThreshold(fused, e.config)
	if relaxed {
		monitor.ThresholdRelaxed(e.config.MinThreshold, effective)
	}

	resp := &Response{
		EffectiveThreshold: effective,
		Relaxed:            relaxed,
		LowConfidence:      relaxed,
	}

	if len(kept) == 0 {
		resp.NoCandidates = true
		resp.Results = []*core.RankedResult{}
		return resp
	}

	cfg := *e.config
	cfg.MaxResults = maxResults
	resp.Results = selectDiverse(kept, &cfg)
	monitor.AfterSelection(resp.Results)
	return resp
}

// embedQuery embeds text with retries. Persistent failure is fatal to the
// request: without a query vector there is nothing to rank against.
func (e *Engine) embedQuery(ctx context.Context, req *Request, text string) ([]float32, error) {
	var vector []float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vector, embedErr = e.embedder.EmbedText(ctx, text)
		return embedErr
	}, e.config.RetryAttempts, e.config.RetryBaseDelay)
	if err != nil {
		e.logger.Error("embedding failed after retries",
			"session", req.SessionID, "query", req.Query, "stage", "embed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
	}
	return vector, nil
}

// vectorSearch queries the chunk index with retries.
func (e *Engine) vectorSearch(ctx context.Context, req *Request, vector []float32, limit int) ([]*core.ChunkMatch, error) {
	var matches []*core.ChunkMatch
	err := RetryWithBackoff(ctx, func() error {
		var searchErr error
		matches, searchErr = e.chunks.FindSimilar(ctx, vector, 0, limit)
		return searchErr
	}, e.config.RetryAttempts, e.config.RetryBaseDelay)
	if err != nil {
		e.logger.Error("vector search failed after retries",
			"session", req.SessionID, "query", req.Query, "stage", "vector-search", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrVectorIndexUnavailable, err)
	}
	return matches, nil
}

// fragmentMatches runs per-fragment embedding and vector lookups concurrently
// on the worker pool, then merges the chunk matches.
func (e *Engine) fragmentMatches(ctx context.Context, req *Request, fragments []string) ([]*core.ChunkMatch, error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		merged   []*core.ChunkMatch
		firstErr error
	)

	record := func(matches []*core.ChunkMatch, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		merged = append(merged, matches...)
	}

	for _, fragment := range fragments {
		fragment := fragment
		wg.Add(1)
		submitErr := e.pool.Submit(func() {
			defer wg.Done()
			vector, err := e.embedQuery(ctx, req, fragment)
			if err != nil {
				record(nil, err)
				return
			}
			matches, err := e.vectorSearch(ctx, req, vector, e.config.FragmentTopK)
			record(matches, err)
		})
		if submitErr != nil {
			wg.Done()
			record(nil, submitErr)
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	// Merged fragments lose the per-lookup ordering; restore score order so
	// grouping assigns stable semantic ranks.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged, nil
}

// grantHit is a grant-level aggregation of chunk matches: the best chunk
// score wins, and the grant's rank is its first appearance in score order.
type grantHit struct {
	id    core.GrantID
	score float64
}

// groupMatchesByGrant collapses chunk matches to one hit per grant, keeping
// the maximum chunk score. Input order (score descending) determines rank.
func groupMatchesByGrant(matches []*core.ChunkMatch) []grantHit {
	index := make(map[core.GrantID]int)
	hits := make([]grantHit, 0, len(matches))

	for _, match := range matches {
		if pos, ok := index[match.GrantId]; ok {
			if float64(match.Score) > hits[pos].score {
				hits[pos].score = float64(match.Score)
			}
			continue
		}
		index[match.GrantId] = len(hits)
		hits = append(hits, grantHit{id: match.GrantId, score: float64(match.Score)})
	}

	return hits
}

// assembleCandidates bulk-fetches grant metadata for the hits and builds the
// candidate batch. Grants missing from the store are dropped and reported;
// a dead metadata store after retries is fatal.
func (e *Engine) assembleCandidates(ctx context.Context, req *Request, hits []grantHit) ([]*core.Candidate, []core.GrantID, error) {
	if len(hits) == 0 {
		return nil, nil, nil
	}

	ids := make([]core.GrantID, len(hits))
	for i, hit := range hits {
		ids[i] = hit.id
	}

	grants, err := e.fetchGrants(ctx, req, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[core.GrantID]*core.Grant, len(grants))
	for _, grant := range grants {
		byID[grant.Id] = grant
	}

	now := time.Now().UTC()
	candidates := make([]*core.Candidate, 0, len(hits))
	var missing []core.GrantID

	for _, hit := range hits {
		grant, ok := byID[hit.id]
		if !ok {
			missing = append(missing, hit.id)
			continue
		}
		if req.ActiveOnly && !grant.Open(now) {
			continue
		}
		candidates = append(candidates, &core.Candidate{
			GrantId:          grant.Id,
			Title:            grant.Title,
			Source:           grant.Source,
			Status:           grant.Status,
			TotalFundGBP:     grant.TotalFundGBP,
			ClosesAt:         grant.ClosesAt,
			Semantic:         clamp01(hit.score),
			Eligibility:      grant.EligibilitySignal,
			EligibilityKnown: grant.HasEligibilitySignal,
		})
	}

	pullUpNameMatches(candidates, req.Query)

	for i, c := range candidates {
		c.SemanticRank = i
	}

	if len(missing) > 0 {
		e.logger.Warn("grant metadata missing for indexed chunks",
			"session", req.SessionID, "query", req.Query, "stage", "metadata", "missing", len(missing))
	}

	return candidates, missing, nil
}

// fetchDirect builds candidates from explicit grant ids, bypassing vector
// search. These get a neutral semantic score and are exempt from diversity
// penalties.
func (e *Engine) fetchDirect(ctx context.Context, req *Request, ids []core.GrantID) ([]*core.Candidate, []core.GrantID, error) {
	grants, err := e.fetchGrants(ctx, req, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[core.GrantID]*core.Grant, len(grants))
	for _, grant := range grants {
		byID[grant.Id] = grant
	}

	now := time.Now().UTC()
	candidates := make([]*core.Candidate, 0, len(ids))
	var missing []core.GrantID

	for rank, id := range ids {
		grant, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if req.ActiveOnly && !grant.Open(now) {
			continue
		}
		candidates = append(candidates, &core.Candidate{
			GrantId:          grant.Id,
			Title:            grant.Title,
			Source:           grant.Source,
			Status:           grant.Status,
			TotalFundGBP:     grant.TotalFundGBP,
			ClosesAt:         grant.ClosesAt,
			Semantic:         e.config.NeutralSemantic,
			SemanticRank:     rank,
			Eligibility:      grant.EligibilitySignal,
			EligibilityKnown: grant.HasEligibilitySignal,
			DirectlyFetched:  true,
		})
	}

	return candidates, missing, nil
}

// resolveNamedGrants looks up compared fragments against grant titles and
// returns candidates for grants the vector path did not already surface.
// Resolved grants are admitted like direct fetches: neutral semantic score,
// exempt from diversity penalties. Lookup failure degrades to an empty
// resolution; the vector-path candidates are still valid.
func (e *Engine) resolveNamedGrants(ctx context.Context, req *Request, fragments []string, have []*core.Candidate) []*core.Candidate {
	seen := make(map[core.GrantID]bool, len(have))
	for _, c := range have {
		seen[c.GrantId] = true
	}

	now := time.Now().UTC()
	var named []*core.Candidate
	for _, fragment := range fragments {
		var grants []*core.Grant
		err := RetryWithBackoff(ctx, func() error {
			var findErr error
			grants, findErr = e.grants.FindGrantsByTitle(ctx, fragment, e.config.FragmentTopK)
			return findErr
		}, e.config.RetryAttempts, e.config.RetryBaseDelay)
		if err != nil {
			e.logger.Warn("title lookup failed",
				"session", req.SessionID, "query", req.Query, "stage", "title-lookup", "err", err)
			continue
		}

		for _, grant := range grants {
			if seen[grant.Id] {
				continue
			}
			seen[grant.Id] = true
			if req.ActiveOnly && !grant.Open(now) {
				continue
			}
			named = append(named, &core.Candidate{
				GrantId:          grant.Id,
				Title:            grant.Title,
				Source:           grant.Source,
				Status:           grant.Status,
				TotalFundGBP:     grant.TotalFundGBP,
				ClosesAt:         grant.ClosesAt,
				Semantic:         e.config.NeutralSemantic,
				Eligibility:      grant.EligibilitySignal,
				EligibilityKnown: grant.HasEligibilitySignal,
				DirectlyFetched:  true,
			})
		}
	}
	return named
}

// fetchGrants bulk-fetches metadata with retries.
func (e *Engine) fetchGrants(ctx context.Context, req *Request, ids []core.GrantID) ([]*core.Grant, error) {
	var grants []*core.Grant
	err := RetryWithBackoff(ctx, func() error {
		var fetchErr error
		grants, fetchErr = e.grants.GetGrants(ctx, ids...)
		return fetchErr
	}, e.config.RetryAttempts, e.config.RetryBaseDelay)
	if err != nil {
		e.logger.Error("metadata fetch failed after retries",
			"session", req.SessionID, "query", req.Query, "stage", "metadata", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrMetadataUnavailable, err)
	}
	return grants, nil
}

// pullUpNameMatches moves candidates the query names to the front and lifts
// their semantic score, so asking for a grant by name surfaces it even when
// its chunks embed poorly against the full query. A candidate is named when
// the query covers at least half its title tokens, or when every query word
// appears in the title (a short query that is the grant's name).
func pullUpNameMatches(candidates []*core.Candidate, query string) {
	queryTokens := tokenSet(query)
	if len(queryTokens) == 0 {
		return
	}

	matched := make([]*core.Candidate, 0, len(candidates))
	rest := make([]*core.Candidate, 0, len(candidates))
	for _, c := range candidates {
		titleTokens := tokenSet(c.Title)
		if len(titleTokens) == 0 {
			rest = append(rest, c)
			continue
		}
		shared := 0
		for token := range titleTokens {
			if queryTokens[token] {
				shared++
			}
		}
		named := float64(shared)/float64(len(titleTokens)) >= 0.5 ||
			containsAllQueryWords(c.Title, query)
		if named {
			if c.Semantic < 0.9 {
				c.Semantic = 0.9
			}
			matched = append(matched, c)
		} else {
			rest = append(rest, c)
		}
	}
	if len(matched) == 0 {
		return
	}

	copy(candidates, matched)
	copy(candidates[len(matched):], rest)
}

// sessionRefs reads the session's discussed grants. Failures degrade to an
// empty context rather than failing the request.
func (e *Engine) sessionRefs(ctx context.Context, sessionID string) []core.GrantID {
	if sessionID == "" {
		return nil
	}
	refs, err := e.sessions.GrantRefs(ctx, sessionID)
	if err != nil {
		e.logger.Warn("failed to read session refs",
			"session", sessionID, "stage", "session-read", "err", err)
		return nil
	}
	return refs
}

// recordSurfaced appends the surfaced grant ids to the session's discussed
// list. Failures are logged, not returned: the results are already valid.
func (e *Engine) recordSurfaced(ctx context.Context, sessionID string, resp *Response) {
	if sessionID == "" || len(resp.Results) == 0 {
		return
	}
	ids := make([]core.GrantID, len(resp.Results))
	for i, r := range resp.Results {
		ids[i] = r.GrantId
	}
	if err := e.sessions.AppendGrantRefs(ctx, sessionID, ids...); err != nil {
		e.logger.Warn("failed to record surfaced grants",
			"session", sessionID, "stage", "session-write", "err", err)
	}
}
