package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/slotmail/internal/config"
	"github.com/slotmail/internal/http/handlers/public"

	"github.com/gin-gonic/gin"
)

var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	defaultCORSHeaders = []string{"Content-Type", "Authorization", "X-Requested-With", requestIDHeader}
	// 前端需要读取的响应头：请求 ID 便于报障，Retry-After 用于限流提示
	exposedCORSHeaders = []string{requestIDHeader, "Retry-After"}
)

// corsPolicy 预先计算好的跨域策略
type corsPolicy struct {
	wildcard         bool
	origins          map[string]struct{}
	allowCredentials bool
	methods          string
	headers          string
	exposed          string
	maxAge           string
}

func newCORSPolicy(cfg config.CORSConfig) *corsPolicy {
	policy := &corsPolicy{
		origins:          make(map[string]struct{}),
		allowCredentials: cfg.AllowCredentials,
		methods:          strings.Join(fallbackList(cfg.AllowedMethods, defaultCORSMethods), ", "),
		headers:          strings.Join(fallbackList(cfg.AllowedHeaders, defaultCORSHeaders), ", "),
		exposed:          strings.Join(exposedCORSHeaders, ", "),
	}
	for _, origin := range fallbackList(cfg.AllowedOrigins, []string{"*"}) {
		if origin == "*" {
			policy.wildcard = true
			continue
		}
		policy.origins[strings.ToLower(origin)] = struct{}{}
	}
	if cfg.MaxAge > 0 {
		policy.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	return policy
}

// allowOrigin 返回应写入 Access-Control-Allow-Origin 的值，空串表示不放行
func (p *corsPolicy) allowOrigin(origin string) string {
	if p.wildcard {
		if p.allowCredentials && origin != "" {
			return origin
		}
		return "*"
	}
	if origin == "" {
		return ""
	}
	if _, ok := p.origins[strings.ToLower(origin)]; ok {
		return origin
	}
	return ""
}

// CORSMiddleware 跨域中间件；支付回调由网关服务端调用，不参与跨域
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	policy := newCORSPolicy(cfg)
	return func(c *gin.Context) {
		if c.GetHeader(public.PaymentSignatureHeader) != "" {
			c.Next()
			return
		}
		header := c.Writer.Header()
		if allowed := policy.allowOrigin(c.GetHeader("Origin")); allowed != "" {
			header.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				header.Add("Vary", "Origin")
			}
		}
		if policy.allowCredentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}
		header.Set("Access-Control-Allow-Methods", policy.methods)
		header.Set("Access-Control-Allow-Headers", policy.headers)
		header.Set("Access-Control-Expose-Headers", policy.exposed)
		if policy.maxAge != "" {
			header.Set("Access-Control-Max-Age", policy.maxAge)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func fallbackList(values, fallback []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
