// Package extract 把一行 HTML 片段按规则表映射为扁平 Record。
//
// 约束：
//   - 纯函数：无 IO、无全局状态；同一片段 + 同一规则表 => 同一 Record
//   - 字段级失败一律落为 domain.Sentinel，绝不返回错误，也不影响其他字段/片段
//   - 每个字段的候选策略按顺序短路求值：首个命中非空文本的策略决定取值
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/toplist/internal/domain"
)

// Extract 对单个片段执行规则表。frag 为 nil 或空时返回全 Sentinel 的 Record（literal 字段也不例外）。
// 片段存在但没有任何标签命中时，literal 字段仍然取常量值。
func Extract(frag *goquery.Selection, t Table) domain.Record {
	if frag == nil || frag.Length() == 0 {
		return domain.NewRecord(t.FieldNames(), nil)
	}
	values := make(map[string]string, len(t.Fields))
	for _, rule := range t.Fields {
		values[rule.Name] = evalRule(frag, rule)
	}
	return domain.NewRecord(t.FieldNames(), values)
}

// ExtractAll 按输入顺序对每个行片段调用 Extract。rows 为空时返回长度为 0 的切片（非 nil）。
func ExtractAll(rows *goquery.Selection, t Table) []domain.Record {
	if rows == nil {
		return []domain.Record{}
	}
	out := make([]domain.Record, 0, rows.Length())
	rows.Each(func(_ int, s *goquery.Selection) {
		out = append(out, Extract(s, t))
	})
	return out
}

// Rows 在文档中定位行片段。
func Rows(doc *goquery.Document, t Table) *goquery.Selection {
	if doc == nil {
		return &goquery.Selection{}
	}
	return doc.Find(t.Rows)
}

func evalRule(frag *goquery.Selection, rule FieldRule) string {
	for _, s := range rule.Candidates {
		raw, ok := s.locate(frag)
		if !ok {
			continue
		}
		if v := rule.Normalize.Apply(raw); v != "" {
			return v
		}
		// 命中但清洗后为空（例如 "(123)"）：视为缺失，不继续回退。
		return domain.Sentinel
	}
	return domain.Sentinel
}

// locate 返回策略命中节点的 trim 后文本；未命中或文本为空时 ok=false。
func (s Strategy) locate(frag *goquery.Selection) (string, bool) {
	if s.Literal != "" {
		v := strings.TrimSpace(s.Literal)
		return v, v != ""
	}
	if frag == nil || frag.Length() == 0 || s.Find == "" {
		return "", false
	}

	nodes := frag.Find(s.Find)
	if s.Children != "" {
		nodes = nodes.First().ChildrenFiltered(s.Children)
	}
	if s.Index >= nodes.Length() {
		return "", false
	}
	node := nodes.Eq(s.Index)

	var text string
	if s.Attr != "" {
		v, ok := node.Attr(s.Attr)
		if !ok {
			return "", false
		}
		text = v
	} else {
		text = node.Text()
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

// Apply 对已命中的文本做字段类型相关的清洗。
func (n Normalizer) Apply(s string) string {
	switch n {
	case NormalizeTitle:
		return NormalizeTitleText(s)
	case NormalizeRating:
		return NormalizeRatingText(s)
	default:
		return strings.TrimSpace(s)
	}
}

var ordinalPrefixRE = regexp.MustCompile(`^[0-9]+\. `)

// NormalizeTitleText 去掉站点在标题前加的排名前缀（"1. The Movie" -> "The Movie"）。
func NormalizeTitleText(s string) string {
	s = strings.TrimSpace(s)
	s = ordinalPrefixRE.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// NormalizeRatingText 截掉评分后附带的票数括注（"8.2 (12,345 votes)" -> "8.2"）。
func NormalizeRatingText(s string) string {
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
