package models

type ProductSearchResult struct {
	Items      []*Product `json:"items"`
	TotalCount int32      `json:"total_count"`
	PageInfo   *PageInfo  `json:"page_info"`
}

type PageInfo struct {
	PageSize    int32 `json:"page_size"`
	CurrentPage int32 `json:"current_page"`
	TotalPages  int32 `json:"total_pages"`
}

// NewPageInfo computes the page count for total items.
func NewPageInfo(total int64, currentPage, pageSize int) *PageInfo {
	pages := int32(0)
	if pageSize > 0 {
		pages = int32((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &PageInfo{PageSize: int32(pageSize), CurrentPage: int32(currentPage), TotalPages: pages}
}
