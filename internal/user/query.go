package user

import (
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

var ErrInvalidSortField = errors.New("invalid sort field")

// sortColumns is the allow-list of sortable columns. Keys are the accepted
// sort_by values, values are the column names used in ORDER BY. User input
// reaches SQL text only through this map.
var sortColumns = map[string]string{
	"username":     "username",
	"email":        "email",
	"is_active":    "is_active",
	"is_superuser": "is_superuser",
	"is_verified":  "is_verified",
}

// ListFilter describes the optional filter and sort criteria for listing
// users. The zero value selects all rows in store-default order.
type ListFilter struct {
	// Username filters on case-insensitive username equality when non-empty.
	Username string
	// Active filters on is_active when non-nil.
	Active *bool
	// SortBy orders the result by one of the allow-listed columns when
	// non-empty.
	SortBy string
}

// Validate checks the sort field against the allow-list.
func (f ListFilter) Validate() error {
	if f.SortBy == "" {
		return nil
	}
	if _, ok := sortColumns[f.SortBy]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidSortField, f.SortBy)
	}
	return nil
}

// Apply adds the filter's WHERE and ORDER BY clauses to a select query.
// Filters and sorting are independent: every combination composes, and all
// filter values are bound as parameters.
func (f ListFilter) Apply(q *bun.SelectQuery) (*bun.SelectQuery, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	if f.Username != "" {
		q = q.Where("LOWER(username) = LOWER(?)", f.Username)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.SortBy != "" {
		q = q.Order(sortColumns[f.SortBy])
	}

	return q, nil
}
