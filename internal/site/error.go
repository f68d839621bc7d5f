package site

import (
	"fmt"
	"strings"
)

const (
	StageFetch = "fetch"
	StageParse = "parse"
)

// Error 是单个 scope 抓取/解析阶段的可追溯错误。
// 上层据 Stage 归类为 fetch_failed / parse_failed。
type Error struct {
	Site  string
	Scope string
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("site=%s scope=%s stage=%s: %v", e.Site, e.Scope, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// BlockedError 表示请求被站点的防护层拦截（验证码/挑战页）。不尝试绕过。
type BlockedError struct {
	URL    string
	Reason string
}

func (e *BlockedError) Error() string {
	if e == nil || strings.TrimSpace(e.Reason) == "" {
		return "blocked"
	}
	return "blocked: " + strings.TrimSpace(e.Reason)
}
