// Package imdb 实现 IMDb 高级搜索结果页（按上映年份）的两个站点：
// feature（电影，JSON）与 tv（高分剧集，文本）。
package imdb

import (
	"fmt"

	"github.com/John-Robertt/toplist/internal/extract"
)

const searchURL = "https://www.imdb.com/search/title/"

// FirstYear 是 IMDb 收录的最早年份查询起点。
const FirstYear = 1898

// 行选择器与标题在新旧版搜索页之间保持一致。
const (
	rowsSelector  = "li.ipc-metadata-list-summary-item"
	titleSelector = "h3.ipc-title__text"
)

// releaseRange 是 release_date 参数：整年闭区间。
func releaseRange(year int) string {
	return fmt.Sprintf("%d-01-01,%d-12-31", year, year)
}

func titleRule() extract.FieldRule {
	return extract.FieldRule{
		Name:       "name",
		Normalize:  extract.NormalizeTitle,
		Candidates: []extract.Strategy{{Find: titleSelector}, {Find: "a.ipc-title-link-wrapper"}},
	}
}

func ratingRule() extract.FieldRule {
	return extract.FieldRule{
		Name:      "rating",
		Normalize: extract.NormalizeRating,
		Candidates: []extract.Strategy{
			{Find: "span.ipc-rating-star--rating"},
			{Find: "span.ipc-rating-star"},
		},
	}
}

// metadataRule 取标题下方元数据行（年份 · 时长 · 分级）中的第 index 项。
// 旧版页面用哈希类名容器，新版用 dli-title-metadata。
func metadataRule(name string, index int) extract.FieldRule {
	return extract.FieldRule{
		Name: name,
		Candidates: []extract.Strategy{
			{Find: "div.sc-b189961a-7", Children: "span", Index: index},
			{Find: "div.dli-title-metadata", Children: "span", Index: index},
			{Find: "span.dli-title-metadata-item", Index: index},
		},
	}
}
