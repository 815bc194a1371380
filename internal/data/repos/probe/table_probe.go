package probe

import (
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/yungbote/opsdesk-backend/internal/platform/dbctx"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// TableProbe checks that business tables provisioned outside this service
// are present and readable.
type TableProbe interface {
	Count(dbc dbctx.Context, table string) (int64, error)
	// CountWhere counts rows whose column is one of values, or is not null
	// when no values are given.
	CountWhere(dbc dbctx.Context, table, column string, values ...any) (int64, error)
}

type tableProbe struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTableProbe(db *gorm.DB, baseLog *logger.Logger) TableProbe {
	return &tableProbe{
		db:  db,
		log: baseLog.With("repo", "TableProbe"),
	}
}

func (p *tableProbe) Count(dbc dbctx.Context, table string) (int64, error) {
	tx, err := p.table(dbc, table)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (p *tableProbe) CountWhere(dbc dbctx.Context, table, column string, values ...any) (int64, error) {
	if !tableNamePattern.MatchString(column) {
		return 0, fmt.Errorf("invalid column name %q", column)
	}
	tx, err := p.table(dbc, table)
	if err != nil {
		return 0, err
	}
	if !tx.Migrator().HasColumn(table, column) {
		return 0, fmt.Errorf("column %s.%s does not exist", table, column)
	}
	if len(values) == 0 {
		tx = tx.Where(column + " IS NOT NULL")
	} else {
		tx = tx.Where(column+" IN ?", values)
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (p *tableProbe) table(dbc dbctx.Context, table string) (*gorm.DB, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	tx := dbc.DB(p.db)
	if !tx.Migrator().HasTable(table) {
		return nil, fmt.Errorf("table %s does not exist", table)
	}
	return tx.Table(table), nil
}
