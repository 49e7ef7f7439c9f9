package dto

// ListQuery is the pagination/search surface shared by the admin listings.
type ListQuery struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Search string `json:"search"`
	// Group filters privileges by privilege group; ignored elsewhere.
	Group string `json:"group"`
}

func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 10
	}
	return q
}

func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

type Paginated[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
