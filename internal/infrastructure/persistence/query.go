package persistence

import (
	"fmt"

	"github.com/arcollect/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applySort orders the query by the filter's sort column, restricted to the
// given whitelist so caller-supplied column names never reach the SQL.
func applySort(query *gorm.DB, filter shared.Filter, allowed map[string]bool) *gorm.DB {
	column := filter.OrderBy
	if column == "" || !allowed[column] {
		column = "created_at"
	}
	direction := "DESC"
	if filter.OrderDir == "asc" {
		direction = "ASC"
	}
	return query.Order(fmt.Sprintf("%s %s", column, direction))
}

// applyPagination applies page-based offset/limit from the filter
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
