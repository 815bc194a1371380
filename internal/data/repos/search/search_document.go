package search

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/opsdesk-backend/internal/data/db"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/platform/dbctx"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

const documentVector = `to_tsvector('simple', coalesce(title,'') || ' ' || coalesce(subtitle,'') || ' ' || coalesce(content,''))`

// Query is a sanitized full-text query. Terms are ANDed.
type Query struct {
	Terms     []string
	Tables    []string
	Limit     int
	Offset    int
	SortBy    string // relevance|created_at|updated_at|title
	SortOrder string // asc|desc
}

// Hit is a matching document with its database-assigned rank. Rank is 0
// when the dialect has no native ranking.
type Hit struct {
	Document types.SearchDocument
	Rank     float64
}

type SearchDocumentRepo interface {
	Upsert(dbc dbctx.Context, docs []*types.SearchDocument) error
	Delete(dbc dbctx.Context, table, recordID string) error
	Search(dbc dbctx.Context, q Query) ([]Hit, int64, error)
	Get(dbc dbctx.Context, table, recordID string) (*types.SearchDocument, error)
	ListByTable(dbc dbctx.Context, table, excludeRecordID string, limit int) ([]*types.SearchDocument, error)
}

type searchDocumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSearchDocumentRepo(gdb *gorm.DB, baseLog *logger.Logger) SearchDocumentRepo {
	return &searchDocumentRepo{
		db:  gdb,
		log: baseLog.With("repo", "SearchDocumentRepo"),
	}
}

func (r *searchDocumentRepo) Upsert(dbc dbctx.Context, docs []*types.SearchDocument) error {
	if len(docs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, d := range docs {
		d.UpdatedAt = now
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_table"}, {Name: "record_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "subtitle", "content", "status", "updated_at"}),
		}).
		Create(&docs).Error
}

func (r *searchDocumentRepo) Delete(dbc dbctx.Context, table, recordID string) error {
	return dbc.DB(r.db).
		Where("source_table = ? AND record_id = ?", table, recordID).
		Delete(&types.SearchDocument{}).Error
}

// Get returns nil, nil when the record has no document.
func (r *searchDocumentRepo) Get(dbc dbctx.Context, table, recordID string) (*types.SearchDocument, error) {
	var row types.SearchDocument
	err := dbc.DB(r.db).
		Where("source_table = ? AND record_id = ?", table, recordID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.RecordID == "" {
		return nil, nil
	}
	return &row, nil
}

// ListByTable returns the newest documents of table other than
// excludeRecordID.
func (r *searchDocumentRepo) ListByTable(dbc dbctx.Context, table, excludeRecordID string, limit int) ([]*types.SearchDocument, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	q := dbc.DB(r.db).Where("source_table = ?", table)
	if excludeRecordID != "" {
		q = q.Where("record_id <> ?", excludeRecordID)
	}
	out := []*types.SearchDocument{}
	if err := q.Order("updated_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type rankedRow struct {
	types.SearchDocument
	Rank float64 `gorm:"column:rank"`
}

// Search with no terms lists the most recently updated documents.
func (r *searchDocumentRepo) Search(dbc dbctx.Context, q Query) ([]Hit, int64, error) {
	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	base := dbc.DB(r.db).Table("search_documents")
	if len(q.Tables) > 0 {
		base = base.Where("source_table IN ?", q.Tables)
	}

	ranked := db.IsPostgres(r.db) && len(q.Terms) > 0
	tsQuery := strings.Join(q.Terms, " & ")
	if ranked {
		base = base.Where(documentVector+" @@ to_tsquery('simple', ?)", tsQuery)
	} else {
		for _, term := range q.Terms {
			like := "%" + strings.ToLower(term) + "%"
			base = base.Where("(LOWER(title) LIKE ? OR LOWER(subtitle) LIKE ? OR LOWER(content) LIKE ?)", like, like, like)
		}
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sel := base.Session(&gorm.Session{})
	if ranked {
		sel = sel.Select("search_documents.*, ts_rank("+documentVector+", to_tsquery('simple', ?)) AS rank", tsQuery)
	} else {
		sel = sel.Select("search_documents.*, 0 AS rank")
	}

	var rows []rankedRow
	if err := sel.Order(orderClause(q.SortBy, q.SortOrder, ranked)).
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]Hit, 0, len(rows))
	for _, row := range rows {
		out = append(out, Hit{Document: row.SearchDocument, Rank: row.Rank})
	}
	return out, total, nil
}

func orderClause(sortBy, sortOrder string, ranked bool) string {
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	switch sortBy {
	case "created_at", "updated_at", "title":
		return sortBy + " " + dir
	default:
		if ranked {
			return "rank " + dir + ", updated_at DESC"
		}
		return "updated_at DESC"
	}
}
