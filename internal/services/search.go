package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yungbote/opsdesk-backend/internal/data/dberr"
	"github.com/yungbote/opsdesk-backend/internal/data/repos"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/observability"
	"github.com/yungbote/opsdesk-backend/internal/platform/apierr"
	"github.com/yungbote/opsdesk-backend/internal/platform/ctxutil"
	"github.com/yungbote/opsdesk-backend/internal/platform/dbctx"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

const (
	highlightWindow = 150
	defaultAIResult = 10
)

type SearchOptions struct {
	Query     string   `json:"query"`
	Tables    []string `json:"tables,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Offset    int      `json:"offset,omitempty"`
	SortBy    string   `json:"sort_by,omitempty"`    // relevance|date|title
	SortOrder string   `json:"sort_order,omitempty"` // asc|desc
}

type SearchResult struct {
	ID             string    `json:"id"`
	TableName      string    `json:"table_name"`
	RecordID       string    `json:"record_id"`
	Title          string    `json:"title"`
	Subtitle       string    `json:"subtitle,omitempty"`
	Content        string    `json:"content,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	RelevanceScore float64   `json:"relevance_score"`
	Highlight      string    `json:"highlight,omitempty"`
}

type SearchStats struct {
	TotalResults     int64    `json:"total_results"`
	SearchTimeMS     int64    `json:"search_time_ms"`
	TablesSearched   []string `json:"tables_searched"`
	QuerySuggestions []string `json:"query_suggestions"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Stats   SearchStats    `json:"stats"`
}

type AISearchRequest struct {
	Query      string `json:"query"`
	Summarize  bool   `json:"summarize"`
	MaxResults int    `json:"max_results"`
}

type AISearchResponse struct {
	Results  []SearchResult `json:"results"`
	Summary  string         `json:"summary,omitempty"`
	Insights []string       `json:"insights"`
}

type SearchService interface {
	FullTextSearch(ctx context.Context, opts SearchOptions) (*SearchResponse, error)
	AISearch(ctx context.Context, req AISearchRequest) (*AISearchResponse, error)
	SimilarSearch(ctx context.Context, table, recordID string, limit int) ([]SearchResult, error)
	Suggestions(ctx context.Context, prefix string) ([]string, error)
	Index(ctx context.Context, docs []*types.SearchDocument) error
	Remove(ctx context.Context, table, recordID string) error
}

type searchService struct {
	log     *logger.Logger
	docs    repos.SearchDocumentRepo
	history repos.SearchHistoryRepo
	now     func() time.Time
}

func NewSearchService(log *logger.Logger, docs repos.SearchDocumentRepo, history repos.SearchHistoryRepo) SearchService {
	return &searchService{
		log:     log.With("service", "SearchService"),
		docs:    docs,
		history: history,
		now:     time.Now,
	}
}

func (s *searchService) FullTextSearch(ctx context.Context, opts SearchOptions) (*SearchResponse, error) {
	start := s.now()
	terms := SanitizeTerms(opts.Query)

	sortBy := opts.SortBy
	if sortBy == "date" {
		sortBy = "created_at"
	}
	hits, total, err := s.docs.Search(dbctx.Context{Ctx: ctx}, repos.SearchQuery{
		Terms:     terms,
		Tables:    opts.Tables,
		Limit:     opts.Limit,
		Offset:    opts.Offset,
		SortBy:    sortBy,
		SortOrder: opts.SortOrder,
	})
	if err != nil {
		observability.Current().IncSearch("fulltext", "error")
		return nil, dberr.Map("search", err)
	}
	observability.Current().IncSearch("fulltext", "ok")

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		r := toResult(h.Document, h.Rank)
		text := r.Content
		if text == "" {
			text = r.Title
		}
		r.Highlight = Highlight(text, opts.Query)
		results = append(results, r)
	}

	s.saveHistory(ctx, opts.Query, len(results))

	tables := opts.Tables
	if len(tables) == 0 {
		tables = []string{"all"}
	}
	return &SearchResponse{
		Results: results,
		Stats: SearchStats{
			TotalResults:     total,
			SearchTimeMS:     s.now().Sub(start).Milliseconds(),
			TablesSearched:   tables,
			QuerySuggestions: QuerySuggestions(opts.Query),
		},
	}, nil
}

func (s *searchService) AISearch(ctx context.Context, req AISearchRequest) (*AISearchResponse, error) {
	limit := req.MaxResults
	if limit <= 0 {
		limit = defaultAIResult
	}
	res, err := s.FullTextSearch(ctx, SearchOptions{Query: req.Query, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := &AISearchResponse{Results: res.Results, Insights: []string{}}
	if req.Summarize && len(res.Results) > 0 {
		out.Summary = SummarizeResults(req.Query, res.Results)
		out.Insights = Insights(res.Results, s.now())
	}
	observability.Current().IncSearch("ai", "ok")
	return out, nil
}

// SimilarSearch ranks the other documents of table by word overlap with the
// reference record. A missing reference yields no results.
func (s *searchService) SimilarSearch(ctx context.Context, table, recordID string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	dbc := dbctx.Context{Ctx: ctx}
	ref, err := s.docs.Get(dbc, table, recordID)
	if err != nil {
		return nil, dberr.Map("search_similar", err)
	}
	if ref == nil {
		return []SearchResult{}, nil
	}
	rows, err := s.docs.ListByTable(dbc, table, recordID, limit)
	if err != nil {
		return nil, dberr.Map("search_similar", err)
	}
	refWords := wordSet(ref.Title + " " + ref.Subtitle + " " + ref.Content)
	out := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, toResult(*row, overlap(refWords, wordSet(row.Title+" "+row.Subtitle+" "+row.Content))))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RelevanceScore > out[j].RelevanceScore })
	observability.Current().IncSearch("similar", "ok")
	return out, nil
}

func (s *searchService) Suggestions(ctx context.Context, prefix string) ([]string, error) {
	out, err := s.history.SuggestQueries(dbctx.Context{Ctx: ctx}, prefix, 5)
	if err != nil {
		return nil, dberr.Map("search_suggestions", err)
	}
	return out, nil
}

func (s *searchService) Index(ctx context.Context, docs []*types.SearchDocument) error {
	for _, d := range docs {
		if d == nil || strings.TrimSpace(d.SourceTable) == "" || strings.TrimSpace(d.RecordID) == "" {
			return apierr.BadRequest("search_document_invalid", fmt.Errorf("table_name and record_id required"))
		}
	}
	if err := s.docs.Upsert(dbctx.Context{Ctx: ctx}, docs); err != nil {
		return dberr.Map("search_index", err)
	}
	return nil
}

func (s *searchService) Remove(ctx context.Context, table, recordID string) error {
	if err := s.docs.Delete(dbctx.Context{Ctx: ctx}, table, recordID); err != nil {
		return dberr.Map("search_remove", err)
	}
	return nil
}

func (s *searchService) saveHistory(ctx context.Context, query string, count int) {
	if strings.TrimSpace(query) == "" {
		return
	}
	row := &types.SearchHistory{UserID: ctxutil.UserID(ctx), Query: query, ResultsCount: count}
	if err := s.history.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		s.log.Warn("Failed to save search history", "error", err)
	}
}

func toResult(d types.SearchDocument, score float64) SearchResult {
	return SearchResult{
		ID:             d.ID.String(),
		TableName:      d.SourceTable,
		RecordID:       d.RecordID,
		Title:          d.Title,
		Subtitle:       d.Subtitle,
		Content:        d.Content,
		Status:         d.Status,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		RelevanceScore: score,
	}
}

var unsafeTermChars = regexp.MustCompile(`[^\w\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FAF}]`)

// SanitizeTerms splits query on whitespace and strips everything but ASCII
// word characters, kana and kanji from each term. Empty terms are dropped.
func SanitizeTerms(query string) []string {
	out := []string{}
	for _, f := range strings.Fields(query) {
		if t := unsafeTermChars.ReplaceAllString(f, ""); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Highlight wraps each query term longer than one character in <mark>
// tags, then trims long text to a window starting shortly before the first
// mark.
func Highlight(text, query string) string {
	if text == "" || query == "" {
		return text
	}
	out := text
	for _, term := range strings.Fields(query) {
		if utf8.RuneCountInString(term) <= 1 {
			continue
		}
		re := regexp.MustCompile(`(?i)(` + regexp.QuoteMeta(term) + `)`)
		out = re.ReplaceAllString(out, "<mark>$1</mark>")
	}
	runes := []rune(out)
	if len(runes) <= highlightWindow {
		return out
	}
	markIndex := -1
	if i := strings.Index(out, "<mark>"); i >= 0 {
		markIndex = utf8.RuneCountInString(out[:i])
	}
	start := markIndex - 50
	if start < 0 {
		start = 0
	}
	end := start + highlightWindow
	if end > len(runes) {
		end = len(runes)
	}
	return "..." + string(runes[start:end]) + "..."
}

func QuerySuggestions(query string) []string {
	return []string{query + " 詳細", query + " 履歴", query + " 関連"}
}

// SummarizeResults is the deterministic stand-in for an AI summary.
func SummarizeResults(query string, results []SearchResult) string {
	tables := []string{}
	seen := map[string]bool{}
	done := 0
	for _, r := range results {
		if !seen[r.TableName] {
			seen[r.TableName] = true
			tables = append(tables, r.TableName)
		}
		if r.Status == "active" || r.Status == "done" {
			done++
		}
	}
	first := ""
	if len(results) > 0 {
		first = results[0].Title
	}
	return fmt.Sprintf("「%s」に関する検索結果：%d件のデータが見つかりました。主に%sから検索されています。最新の情報では、%sなどが関連性が高く、全体的に%d件が完了・有効状態です。",
		query, len(results), strings.Join(tables, "、"), first, done)
}

// Insights reports the most common status, the count created within a week
// of now, and the most represented module. Ties go to the value seen first.
func Insights(results []SearchResult, now time.Time) []string {
	out := []string{}
	if status, n := mostCommon(results, func(r SearchResult) string { return r.Status }); n > 0 {
		out = append(out, fmt.Sprintf("最も多いステータス: %s (%d件)", status, n))
	}
	weekAgo := now.AddDate(0, 0, -7)
	recent := 0
	for _, r := range results {
		if r.CreatedAt.After(weekAgo) {
			recent++
		}
	}
	if recent > 0 {
		out = append(out, fmt.Sprintf("過去1週間で%d件の新しいデータがあります", recent))
	}
	if table, n := mostCommon(results, func(r SearchResult) string { return r.TableName }); n > 0 {
		out = append(out, fmt.Sprintf("最も関連性の高いモジュール: %s (%d件)", table, n))
	}
	return out
}

func mostCommon(results []SearchResult, key func(SearchResult) string) (string, int) {
	counts := map[string]int{}
	order := []string{}
	for _, r := range results {
		k := key(r)
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}
	best, bestN := "", 0
	for _, k := range order {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best, bestN
}

func wordSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range SanitizeTerms(strings.ToLower(s)) {
		out[w] = struct{}{}
	}
	return out
}

// overlap is the Jaccard index of two word sets.
func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for w := range a {
		if _, ok := b[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}
