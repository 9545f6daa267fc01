package resolvers

const (
	defaultPageSizeValue = 20
	maxPageSize          = 100
)

func defaultPageSize(p int32) int {
	switch {
	case p <= 0:
		return defaultPageSizeValue
	case p > maxPageSize:
		return maxPageSize
	}
	return int(p)
}

func defaultCurrentPage(p int32) int {
	if p > 0 {
		return int(p)
	}
	return 1
}

func defaultLimit(p int32, def int) int {
	if p > 0 {
		return int(p)
	}
	return def
}
