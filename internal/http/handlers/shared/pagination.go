package shared

import "github.com/gin-gonic/gin"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageFromQuery 读取 page/page_size 查询参数并收敛到合法区间
func PageFromQuery(c *gin.Context) (int, int) {
	page := QueryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := QueryInt(c, "page_size", defaultPageSize)
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return page, pageSize
}
