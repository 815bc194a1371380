package search

import (
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/platform/dbctx"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type SearchHistoryRepo interface {
	Create(dbc dbctx.Context, row *types.SearchHistory) error
	SuggestQueries(dbc dbctx.Context, prefix string, limit int) ([]string, error)
}

type searchHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSearchHistoryRepo(db *gorm.DB, baseLog *logger.Logger) SearchHistoryRepo {
	return &searchHistoryRepo{
		db:  db,
		log: baseLog.With("repo", "SearchHistoryRepo"),
	}
}

func (r *searchHistoryRepo) Create(dbc dbctx.Context, row *types.SearchHistory) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Create(row).Error
}

// SuggestQueries returns distinct past queries starting with prefix, most
// recently used first. Matching ignores case.
func (r *searchHistoryRepo) SuggestQueries(dbc dbctx.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = 5
	}
	like := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix) + "%"
	out := []string{}
	err := dbc.DB(r.db).
		Model(&types.SearchHistory{}).
		Select("query").
		Where("LOWER(query) LIKE LOWER(?) ESCAPE '\\'", like).
		Group("query").
		Order("MAX(created_at) DESC").
		Limit(limit).
		Pluck("query", &out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
