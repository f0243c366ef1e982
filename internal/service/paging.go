package service

import "math"

// MaxLimit is the largest page size the transports accept.
const MaxLimit int32 = 100

// Paging turns a 1-based page request into store offsets and page counts.
// Page and Limit are expected to be at least 1.
type Paging struct {
	Page  int32
	Limit int32
}

// NewPaging builds the paging policy for a request.
func NewPaging(p PaginationDto) Paging {
	return Paging{Page: p.Page, Limit: p.Limit}
}

// Offset is the number of rows preceding the requested page, saturated at math.MaxInt32.
func (p Paging) Offset() int32 {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	offset := int64(p.Page-1) * int64(p.Limit)
	if offset > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(offset)
}

// LastPage returns ceil(total/limit). It is 0 for an empty result set.
func (p Paging) LastPage(total int64) int64 {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	limit := int64(p.Limit)
	return (total + limit - 1) / limit
}
