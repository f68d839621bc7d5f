package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Scope 是一次批处理的工作单元：一个年份，或 Year==0 表示“当前榜单”（无年份）。
type Scope struct {
	Year int
}

// Current 是无年份站点使用的唯一 Scope。
var Current = Scope{}

// Dated 报告 Scope 是否绑定到某一年。
func (s Scope) Dated() bool { return s.Year != 0 }

// Label 用于 report、日志与缓存文件名：年份或 "current"。
func (s Scope) Label() string {
	if !s.Dated() {
		return "current"
	}
	return strconv.Itoa(s.Year)
}

func (s Scope) String() string { return s.Label() }

// ParseYear 校验年份字符串（四位数字）。
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0, fmt.Errorf("年份必须是四位数字，实际是 %q", s)
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1000 {
		return 0, fmt.Errorf("年份必须是四位数字，实际是 %q", s)
	}
	return y, nil
}
