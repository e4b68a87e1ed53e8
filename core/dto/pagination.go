package dto

// Pagination is the paged payload carried inside the response envelope.
// The items/totalRecords/totalPages shape is what the admissions front-end
// consumes; keep the field names stable.
type Pagination[T any] struct {
	Items        []T `json:"items"`
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
	PageNumber   int `json:"pageNumber"`
	PageSize     int `json:"pageSize"`
}

func NewPagination[T any](items []T, totalRecords, pageNumber, pageSize int) *Pagination[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalRecords + pageSize - 1) / pageSize
	}
	return &Pagination[T]{
		Items:        items,
		TotalRecords: totalRecords,
		TotalPages:   totalPages,
		PageNumber:   pageNumber,
		PageSize:     pageSize,
	}
}
