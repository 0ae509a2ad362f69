package payload

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// 分页请求统一接口
type (
	// ListReqQuery 分页请求参数（从 query 中获取）
	// 如果需要包含其他参数，不能通过组合的方式，需要直接定义在结构体中（否则无法通过 Gin 校验）
	// 示例 API 见 get /admin/client-requests
	ListReqQuery struct {
		PageIndex *int `form:"page_index" binding:"omitempty,min=0"`
		PageSize  *int `form:"page_size" binding:"omitempty,min=1"`
	}
	ListResp[T any] struct {
		Rows  []T   `json:"rows"`
		Count int64 `json:"count"`
	}
)

// Bounds converts page parameters to offset and limit, defaulting to the first page.
func Bounds(pageIndex, pageSize *int) (offset, limit int) {
	limit = DefaultPageSize
	if pageSize != nil && *pageSize > 0 {
		limit = min(*pageSize, MaxPageSize)
	}
	if pageIndex != nil && *pageIndex > 0 {
		offset = *pageIndex * limit
	}
	return offset, limit
}

func (q ListReqQuery) Bounds() (offset, limit int) {
	return Bounds(q.PageIndex, q.PageSize)
}
