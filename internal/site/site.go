// Package site 定义榜单来源（站点）的统一接口与抓取/解析流程。
//
// 站点之间的差异被限制在 URL、规则表与文件命名上；抓取、解析、抽取对所有站点一致。
package site

import (
	"time"

	"github.com/John-Robertt/toplist/internal/domain"
	"github.com/John-Robertt/toplist/internal/extract"
)

// Site 描述一个榜单来源。
//
// 约束：
// - 所有方法都是纯函数，不做 IO
// - Dated()=false 的站点只会收到 domain.Current
// - Table 返回的规则表必须能通过 Validate
type Site interface {
	Name() string
	Title() string
	Dated() bool
	URL(scope domain.Scope) string
	Table(scope domain.Scope) extract.Table
	FileBase(scope domain.Scope) string
	DefaultFormat() string
}

// YearRanger 是有年份站点的可选接口：未指定 from/to 时的默认年份区间。
type YearRanger interface {
	DefaultYears(now time.Time) (from, to int)
}
