package dataverse

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Record is a single entity record as exchanged with the Web API.
type Record map[string]any

// Response is the raw HTTP exchange attached to a failed operation.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// QueryOptions holds the OData system query options for a collection read.
type QueryOptions struct {
	Filter  string
	Select  []string
	OrderBy string
	Top     int
	Expand  string
}

// NewQueryOptions creates empty query options.
func NewQueryOptions() *QueryOptions {
	return &QueryOptions{}
}

// WithFilter sets the $filter expression.
func (q *QueryOptions) WithFilter(filter string) *QueryOptions {
	q.Filter = filter

	return q
}

// WithSelect sets the $select field list.
func (q *QueryOptions) WithSelect(fields ...string) *QueryOptions {
	q.Select = fields

	return q
}

// WithOrderBy sets the $orderby expression.
func (q *QueryOptions) WithOrderBy(orderBy string) *QueryOptions {
	q.OrderBy = orderBy

	return q
}

// WithTop sets $top.
func (q *QueryOptions) WithTop(top int) *QueryOptions {
	q.Top = top

	return q
}

// WithExpand sets the $expand expression.
func (q *QueryOptions) WithExpand(expand string) *QueryOptions {
	q.Expand = expand

	return q
}

// Encode renders the options as a query string. Parameters are emitted in a
// fixed order ($filter, $select, $orderby, $top, $expand) and empty options
// are omitted. Spaces are encoded as %20, which OData services expect.
func (q *QueryOptions) Encode() string {
	if q == nil {
		return ""
	}

	var parts []string

	add := func(key, value string) {
		escaped := strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
		parts = append(parts, key+"="+escaped)
	}

	if q.Filter != "" {
		add("$filter", q.Filter)
	}

	if len(q.Select) > 0 {
		add("$select", strings.Join(q.Select, ","))
	}

	if q.OrderBy != "" {
		add("$orderby", q.OrderBy)
	}

	if q.Top > 0 {
		add("$top", strconv.Itoa(q.Top))
	}

	if q.Expand != "" {
		add("$expand", q.Expand)
	}

	return strings.Join(parts, "&")
}
