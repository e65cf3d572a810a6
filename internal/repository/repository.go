package repository

import (
	"errors"
	"picture-wall/pkg/db"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page 分页参数，Page 从 1 开始
type Page struct {
	Page  int
	Limit int
}

func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	return p
}

func (p Page) scope(q *gorm.DB) *gorm.DB {
	p = p.Normalize()
	return q.Offset((p.Page - 1) * p.Limit).Limit(p.Limit)
}

// Transaction 在同一个事务中执行 fn，fn 内应使用各仓库的 WithTx
func Transaction(fn func(tx *gorm.DB) error) error {
	return db.DB.Transaction(fn)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
