package types

const (
	FILTER_DEFAULT_LIMIT = 50
	FILTER_MAX_LIMIT     = 100
)

// ListFilter is the pagination accepted by list endpoints
type ListFilter struct {
	Limit  int `form:"limit,default=50" json:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `form:"offset,default=0" json:"offset" validate:"omitempty,min=0"`
}

func NewDefaultListFilter() ListFilter {
	return ListFilter{Limit: FILTER_DEFAULT_LIMIT}
}

func (f ListFilter) GetLimit() int {
	if f.Limit <= 0 {
		return FILTER_DEFAULT_LIMIT
	}
	if f.Limit > FILTER_MAX_LIMIT {
		return FILTER_MAX_LIMIT
	}
	return f.Limit
}

func (f ListFilter) GetOffset() int {
	if f.Offset < 0 {
		return 0
	}
	return f.Offset
}
