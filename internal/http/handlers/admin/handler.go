package admin

import "github.com/slotmail/internal/provider"

// Handler 后台接口处理器入口
// 说明：该处理器仅用于管理端 API，路由层保证只有管理员可达。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
