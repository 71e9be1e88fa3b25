package model

// Page is one page of query results together with its bookkeeping.
type Page[T any] struct {
	Current  int64 `json:"current"`
	PageSize int64 `json:"size"`
	Total    int64 `json:"total"`
	Records  []T   `json:"records"`
}

// MapPage converts the records of p with fn. Current, PageSize and Total
// are copied unchanged; only the record type differs.
func MapPage[S, T any](p *Page[S], fn func(S) T) *Page[T] {
	out := &Page[T]{
		Current:  p.Current,
		PageSize: p.PageSize,
		Total:    p.Total,
		Records:  make([]T, 0, len(p.Records)),
	}
	for _, r := range p.Records {
		out.Records = append(out.Records, fn(r))
	}
	return out
}
