// Package rottentomatoes 实现 Rotten Tomatoes “热门剧集”浏览页。该榜单没有年份维度。
package rottentomatoes

import (
	"fmt"

	"github.com/John-Robertt/toplist/internal/domain"
	"github.com/John-Robertt/toplist/internal/extract"
)

const browseURL = "https://www.rottentomatoes.com/browse/tv_series_browse/sort:popular"

// Popular 是当月热门剧集及其影评人/观众评分。
type Popular struct{}

func (Popular) Name() string                  { return "rt" }
func (Popular) Title() string                 { return "Rotten Tomatoes popular TV series" }
func (Popular) Dated() bool                   { return false }
func (Popular) DefaultFormat() string         { return "text" }
func (Popular) URL(domain.Scope) string       { return browseURL }
func (Popular) FileBase(domain.Scope) string  { return "BestRottenThisMonth" }
func (Popular) Header(domain.Scope) string    { return "" }
func (Popular) EmptyNote(domain.Scope) string { return "No shows found or layout changed." }

func (Popular) Line(_ int, r domain.Record) string {
	return fmt.Sprintf("%s - Critic Score: %s - Audience Score: %s",
		r.Get("name"), r.Get("critic_score"), r.Get("audience_score"))
}

// Table 的第二候选对应分数只出现在 score-pairs 属性上的页面版本。
func (Popular) Table(domain.Scope) extract.Table {
	return extract.Table{
		Rows: "div.flex-container",
		Fields: []extract.FieldRule{
			{Name: "name", Candidates: []extract.Strategy{
				{Find: "span.p--small"},
				{Find: `span[data-qa="discovery-media-list-item-title"]`},
			}},
			{Name: "critic_score", Candidates: []extract.Strategy{
				{Find: "rt-text.criticsScore"},
				{Find: "score-pairs-deprecated", Attr: "criticsscore"},
			}},
			{Name: "audience_score", Candidates: []extract.Strategy{
				{Find: "rt-text.audienceScore"},
				{Find: "score-pairs-deprecated", Attr: "audiencescore"},
			}},
		},
	}
}
