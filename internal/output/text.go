package output

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/toplist/internal/domain"
)

// Text 是逐行文本输出。空 Dataset 写表头 + EmptyNote，而不是空文件。
type Text struct {
	Layout TextLayout
}

func (Text) Ext() string { return ".txt" }

func (t Text) Encode(ds domain.Dataset) ([]byte, error) {
	layout := t.Layout
	if layout == nil {
		layout = GenericLayout{}
	}

	var b strings.Builder
	if h := layout.Header(ds.Scope); h != "" {
		b.WriteString(strings.TrimRight(h, "\n"))
		b.WriteByte('\n')
	}
	if ds.Empty() {
		b.WriteString(layout.EmptyNote(ds.Scope))
		b.WriteByte('\n')
		return []byte(b.String()), nil
	}
	for i, r := range ds.Records {
		b.WriteString(layout.Line(i+1, r))
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

// GenericLayout 用于没有自定义版式的站点："1. name=... | rating=..."。
type GenericLayout struct{}

func (GenericLayout) Header(scope domain.Scope) string {
	title := fmt.Sprintf("Results for %s:", scope.Label())
	return title + "\n" + strings.Repeat("-", 20)
}

func (GenericLayout) Line(index int, r domain.Record) string {
	parts := make([]string, 0, len(r.Fields()))
	for _, f := range r.Fields() {
		parts = append(parts, f+"="+r.Get(f))
	}
	return fmt.Sprintf("%d. %s", index, strings.Join(parts, " | "))
}

func (GenericLayout) EmptyNote(domain.Scope) string {
	return "No data found or layout changed."
}
