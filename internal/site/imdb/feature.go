package imdb

import (
	"strconv"
	"time"

	"github.com/John-Robertt/toplist/internal/domain"
	"github.com/John-Robertt/toplist/internal/extract"
)

// Feature 是按年份的 IMDb 电影榜（title_type=feature）。
type Feature struct{}

func (Feature) Name() string          { return "feature" }
func (Feature) Title() string         { return "IMDb feature films by release year" }
func (Feature) Dated() bool           { return true }
func (Feature) DefaultFormat() string { return "json" }

func (Feature) URL(scope domain.Scope) string {
	return searchURL + "?release_date=" + releaseRange(scope.Year) + "&title_type=feature"
}

func (Feature) FileBase(scope domain.Scope) string {
	return "IMDB_Top_50_" + scope.Label()
}

func (Feature) DefaultYears(now time.Time) (int, int) {
	return FirstYear, now.Year()
}

func (Feature) Table(scope domain.Scope) extract.Table {
	return extract.Table{
		Rows: rowsSelector,
		Fields: []extract.FieldRule{
			titleRule(),
			{Name: "year", Candidates: []extract.Strategy{{Literal: strconv.Itoa(scope.Year)}}},
			metadataRule("runtime", 1),
			metadataRule("certificate", 2),
			ratingRule(),
		},
	}
}
