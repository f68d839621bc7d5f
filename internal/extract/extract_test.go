package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/John-Robertt/toplist/internal/domain"
)

func movieTable() Table {
	return Table{
		Rows: "li.row",
		Fields: []FieldRule{
			{Name: "name", Normalize: NormalizeTitle, Candidates: []Strategy{{Find: "h3.title"}}},
			{Name: "runtime", Candidates: []Strategy{
				{Find: "div.meta", Children: "span", Index: 1},
				{Find: "span.runtime"},
			}},
			{Name: "rating", Normalize: NormalizeRating, Candidates: []Strategy{
				{Find: "span.star"},
				{Find: "span.star-alt"},
			}},
		},
	}
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("解析 HTML 失败：%v", err)
	}
	return doc
}

func firstRow(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	return mustDoc(t, "<ul>"+html+"</ul>").Find("li.row").First()
}

func TestExtract_ScenarioTitleRatingMissingRuntime(t *testing.T) {
	frag := firstRow(t, `<li class="row">
		<h3 class="title">1. The Movie</h3>
		<span class="star"> 8.2 (12,345 votes) </span>
	</li>`)

	got := Extract(frag, movieTable()).Map()
	want := map[string]string{"name": "The Movie", "runtime": domain.Sentinel, "rating": "8.2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record 不符合预期 (-want +got):\n%s", diff)
	}
}

func TestExtract_NoMatchingTags_AllSentinel(t *testing.T) {
	frag := firstRow(t, `<li class="row"><p>nothing here</p></li>`)

	r := Extract(frag, movieTable())
	for _, f := range []string{"name", "runtime", "rating"} {
		if !r.Has(f) || r.Get(f) != domain.Sentinel {
			t.Fatalf("字段 %q 应为 %q：%+v", f, domain.Sentinel, r.Map())
		}
	}
}

func TestExtract_NilAndEmptyFragment(t *testing.T) {
	tbl := movieTable().WithLiteral("runtime", "2019")
	for _, frag := range []*goquery.Selection{nil, {}} {
		r := Extract(frag, tbl)
		if r.Missing() != 3 {
			t.Fatalf("畸形片段应得到全 Sentinel（含 literal 字段）：%+v", r.Map())
		}
	}
}

func TestExtract_LiteralAppliesToRowWithoutTags(t *testing.T) {
	frag := firstRow(t, `<li class="row"><p>nothing here</p></li>`)

	r := Extract(frag, movieTable().WithLiteral("runtime", "2019"))
	want := map[string]string{"name": domain.Sentinel, "runtime": "2019", "rating": domain.Sentinel}
	if diff := cmp.Diff(want, r.Map()); diff != "" {
		t.Fatalf("record 不符合预期 (-want +got):\n%s", diff)
	}
}

func TestExtract_FallbackShortCircuit(t *testing.T) {
	// 第一候选命中：第二候选的值不应参与（短路，不合并）。
	frag := firstRow(t, `<li class="row">
		<div class="meta"><span>2019</span><span>2h 10m</span><span>PG-13</span></div>
		<span class="runtime">should not win</span>
		<span class="star-alt">7.0</span>
	</li>`)

	r := Extract(frag, movieTable())
	if r.Get("runtime") != "2h 10m" {
		t.Fatalf("期望命中首个候选，实际 runtime=%q", r.Get("runtime"))
	}
	if r.Get("rating") != "7.0" {
		t.Fatalf("首个候选未命中时应回退，实际 rating=%q", r.Get("rating"))
	}
}

func TestExtract_EmptyNodeFallsThrough(t *testing.T) {
	frag := firstRow(t, `<li class="row">
		<span class="star">   </span>
		<span class="star-alt">6.5</span>
	</li>`)

	if got := Extract(frag, movieTable()).Get("rating"); got != "6.5" {
		t.Fatalf("空文本节点应视为未命中并回退，实际 %q", got)
	}
}

func TestExtract_ChildrenAreDirectOnly(t *testing.T) {
	frag := firstRow(t, `<li class="row">
		<div class="meta"><span>2019</span><b><span>nested</span></b></div>
	</li>`)

	if got := Extract(frag, movieTable()).Get("runtime"); got != domain.Sentinel {
		t.Fatalf("children 只看直接子节点，期望 %q，实际 %q", domain.Sentinel, got)
	}
}

func TestExtract_AttrAndLiteral(t *testing.T) {
	tbl := Table{
		Rows: "li.row",
		Fields: []FieldRule{
			{Name: "link", Candidates: []Strategy{{Find: "a", Attr: "href"}}},
			{Name: "missing_attr", Candidates: []Strategy{{Find: "a", Attr: "data-x"}}},
			{Name: "year", Candidates: []Strategy{{Literal: "2019"}}},
		},
	}
	frag := firstRow(t, `<li class="row"><a href=" /title/tt1/ ">x</a></li>`)

	want := map[string]string{"link": "/title/tt1/", "missing_attr": domain.Sentinel, "year": "2019"}
	if diff := cmp.Diff(want, Extract(frag, tbl).Map()); diff != "" {
		t.Fatalf("record 不符合预期 (-want +got):\n%s", diff)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	frag := firstRow(t, `<li class="row"><h3 class="title">12. Heat</h3><span class="star">8.3</span></li>`)

	a := Extract(frag, movieTable())
	b := Extract(frag, movieTable())
	if diff := cmp.Diff(a.Map(), b.Map()); diff != "" {
		t.Fatalf("两次抽取结果不一致：\n%s", diff)
	}
	if diff := cmp.Diff(a.Fields(), b.Fields()); diff != "" {
		t.Fatalf("字段顺序不一致：\n%s", diff)
	}
}

func TestExtractAll_OrderPreserved(t *testing.T) {
	var b strings.Builder
	b.WriteString("<ul>")
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&b, `<li class="row"><h3 class="title">%d. Movie %02d</h3></li>`, i, i)
	}
	b.WriteString("</ul>")
	doc := mustDoc(t, b.String())

	tbl := movieTable()
	recs := ExtractAll(Rows(doc, tbl), tbl)
	if len(recs) != 12 {
		t.Fatalf("期望 12 条记录，实际 %d", len(recs))
	}
	for i, r := range recs {
		want := fmt.Sprintf("Movie %02d", i+1)
		if r.Get("name") != want {
			t.Fatalf("第 %d 条顺序错误：got=%q want=%q", i+1, r.Get("name"), want)
		}
	}
}

func TestExtractAll_EmptyCollection(t *testing.T) {
	doc := mustDoc(t, `<ul></ul>`)
	tbl := movieTable()

	recs := ExtractAll(Rows(doc, tbl), tbl)
	if recs == nil || len(recs) != 0 {
		t.Fatalf("空集合应返回长度为 0 的非 nil 切片：%#v", recs)
	}
	if got := ExtractAll(nil, tbl); got == nil || len(got) != 0 {
		t.Fatalf("nil 输入应返回长度为 0 的非 nil 切片：%#v", got)
	}
}

func TestNormalizeTitleText(t *testing.T) {
	cases := map[string]string{
		"1. The Movie":          "The Movie",
		"  250. Heat ":          "Heat",
		"The Movie":             "The Movie",
		"2001. A Space Odyssey": "A Space Odyssey",
		"1.The Movie":           "1.The Movie",
		"Mr. Smith":             "Mr. Smith",
		"9 to 5":                "9 to 5",
	}
	for in, want := range cases {
		if got := NormalizeTitleText(in); got != want {
			t.Fatalf("NormalizeTitleText(%q)=%q，期望 %q", in, got, want)
		}
	}
}

func TestNormalizeRatingText(t *testing.T) {
	cases := map[string]string{
		"8.2 (12,345 votes)": "8.2",
		"8.2(12K)":           "8.2",
		" 7.9 ":              "7.9",
		"(123)":              "",
		"6.1 (a) (b)":        "6.1",
	}
	for in, want := range cases {
		if got := NormalizeRatingText(in); got != want {
			t.Fatalf("NormalizeRatingText(%q)=%q，期望 %q", in, got, want)
		}
	}
}

func TestExtract_RatingOnlyParenthetical_IsSentinel(t *testing.T) {
	frag := firstRow(t, `<li class="row"><span class="star">(12,345)</span><span class="star-alt">9.9</span></li>`)

	if got := Extract(frag, movieTable()).Get("rating"); got != domain.Sentinel {
		t.Fatalf("清洗后为空应落为 Sentinel，实际 %q", got)
	}
}
