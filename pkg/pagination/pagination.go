package pagination

import "github.com/d60-Lab/socialnet/pkg/apperr"

// Cursor points at an adjacent page with the same limit.
type Cursor struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Window is a 1-based page resolved against a total row count.
// Next is present iff rows exist past EndIndex, Previous iff StartIndex > 0.
type Window struct {
	StartIndex int     `json:"startIndex"`
	EndIndex   int     `json:"endIndex"`
	Next       *Cursor `json:"next,omitempty"`
	Previous   *Cursor `json:"previous,omitempty"`
}

// Page computes the window for page/limit over total rows.
func Page(page, limit int, total int64) (Window, error) {
	if page <= 0 || limit <= 0 {
		return Window{}, apperr.ErrInvalidPagination
	}
	w := Window{
		StartIndex: (page - 1) * limit,
		EndIndex:   page * limit,
	}
	if int64(w.EndIndex) < total {
		w.Next = &Cursor{Page: page + 1, Limit: limit}
	}
	if w.StartIndex > 0 {
		w.Previous = &Cursor{Page: page - 1, Limit: limit}
	}
	return w, nil
}
