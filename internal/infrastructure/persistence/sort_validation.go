package persistence

import (
	"strings"

	"github.com/scholarly/backcontent/internal/domain/shared"
	"gorm.io/gorm"
)

// Default and maximum page sizes for list queries
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ArticleSortFields contains allowed sort fields for articles
var ArticleSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"number":         true,
	"title":          true,
	"stage":          true,
	"date_published": true,
	"date_accepted":  true,
}

// AccountSortFields contains allowed sort fields for accounts
var AccountSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"email":       true,
	"first_name":  true,
	"last_name":   true,
	"institution": true,
}

// applyPaging adds a whitelisted ORDER BY plus LIMIT/OFFSET to query.
// The id column breaks ties so pages are stable.
func applyPaging(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(field + " " + dir)
	if field != "id" {
		query = query.Order("id " + dir)
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	filter.PageSize = pageSize
	return query.Limit(pageSize).Offset(filter.Offset())
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
