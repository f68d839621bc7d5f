package imdb

import (
	"fmt"
	"strings"
	"time"

	"github.com/John-Robertt/toplist/internal/domain"
	"github.com/John-Robertt/toplist/internal/extract"
)

// TV 是按年份的 IMDb 高分剧集榜（title_type=tv_series，评分 8–10）。
type TV struct{}

func (TV) Name() string          { return "tv" }
func (TV) Title() string         { return "IMDb TV series rated 8+ by release year" }
func (TV) Dated() bool           { return true }
func (TV) DefaultFormat() string { return "text" }

func (TV) URL(scope domain.Scope) string {
	return searchURL + "?title_type=tv_series&release_date=" + releaseRange(scope.Year) + "&user_rating=8,10"
}

func (TV) FileBase(scope domain.Scope) string {
	return "IMDB_Top_" + scope.Label()
}

// DefaultYears 默认只跑当年。
func (TV) DefaultYears(now time.Time) (int, int) {
	return now.Year(), now.Year()
}

func (TV) Table(domain.Scope) extract.Table {
	return extract.Table{
		Rows:   rowsSelector,
		Fields: []extract.FieldRule{titleRule(), ratingRule()},
	}
}

func (TV) Header(scope domain.Scope) string {
	return fmt.Sprintf("Top Movies for %s:\n%s", scope.Label(), strings.Repeat("-", 20))
}

func (TV) Line(index int, r domain.Record) string {
	return fmt.Sprintf("%d. Series: %s (%s)", index, r.Get("name"), r.Get("rating"))
}

func (TV) EmptyNote(domain.Scope) string {
	return "No movies found or layout changed."
}
