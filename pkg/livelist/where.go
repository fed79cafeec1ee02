package livelist

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Where is a conjunction of column equality conditions used to narrow a
// table down to one logical list.
type Where map[string]string

// ParseWhere collects conditions from query parameters of the form
// where[column]=value. For repeated parameters the first value wins.
func ParseWhere(query url.Values) Where {
	where := Where{}
	for key, values := range query {
		if !strings.HasPrefix(key, "where[") || !strings.HasSuffix(key, "]") {
			continue
		}
		if len(values) == 0 {
			continue
		}
		column := key[len("where[") : len(key)-1]
		where[column] = values[0]
	}
	return where
}

// Columns returns the condition columns in deterministic order.
func (where Where) Columns() []string {
	columns := slices.Collect(maps.Keys(where))
	slices.Sort(columns)
	return columns
}

// Values returns the condition values in the same order as Columns.
func (where Where) Values() []any {
	values := make([]any, 0, len(where))
	for _, column := range where.Columns() {
		values = append(values, where[column])
	}
	return values
}

// String renders a WHERE clause with sanitized column identifiers
// qualified by tableAlias. Parameter placeholders are numbered starting
// at firstParamIndex. An empty Where renders an empty string.
func (where Where) String(tableAlias string, firstParamIndex int) string {
	if len(where) == 0 {
		return ""
	}
	var builder strings.Builder
	builder.WriteString("WHERE ")
	for index, column := range where.Columns() {
		if index > 0 {
			builder.WriteString(" AND ")
		}
		fmt.Fprintf(
			&builder,
			"%s.%s = $%d",
			pgx.Identifier{tableAlias}.Sanitize(),
			pgx.Identifier{column}.Sanitize(),
			firstParamIndex+index,
		)
	}
	return builder.String()
}

// AddDetails records one where[column] entry per condition in details.
func (where Where) AddDetails(details map[string]string) {
	for column, value := range where {
		details["where["+column+"]"] = value
	}
}
