package site

import (
	"testing"

	"github.com/John-Robertt/toplist/internal/domain"
	"github.com/John-Robertt/toplist/internal/extract"
)

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	if _, err := NewRegistry(stubSite{name: "a"}, stubSite{name: " A "}); err == nil {
		t.Fatalf("期望重复 site 报错")
	}
	if _, err := NewRegistry(stubSite{name: ""}); err == nil {
		t.Fatalf("期望空名报错")
	}
}

func TestRegistry_GetAndNames(t *testing.T) {
	reg, err := NewRegistry(stubSite{name: "tv"}, stubSite{name: "feature"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, ok := reg.Get(" TV "); !ok {
		t.Fatalf("Get 应忽略大小写与空白")
	}
	if _, ok := (Registry{}).Get("tv"); ok {
		t.Fatalf("零值注册表不应命中")
	}
	if got := reg.Names(); len(got) != 2 || got[0] != "feature" || got[1] != "tv" {
		t.Fatalf("Names 应按字典序：%v", got)
	}
}

func TestRegistry_WithTables_KeepsLiteralYear(t *testing.T) {
	base := stubSite{name: "stub", dated: true}
	reg, _ := NewRegistry(base)

	override := extract.Table{
		Rows: "div.item",
		Fields: []extract.FieldRule{
			{Name: "name", Candidates: []extract.Strategy{{Find: "span.t"}}},
			{Name: "year", Candidates: []extract.Strategy{{Find: "span.y"}}},
		},
	}
	reg2, err := reg.WithTables(map[string]extract.Table{"stub": override})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	s, _ := reg2.Get("stub")
	tbl := s.Table(domain.Scope{Year: 2001})
	if tbl.Rows != "div.item" {
		t.Fatalf("应使用覆盖后的规则表：%+v", tbl)
	}
	if c := tbl.Fields[1].Candidates; len(c) != 1 || c[0].Literal != "2001" {
		t.Fatalf("year 常量应按 scope 重新套用：%+v", c)
	}
	if _, ok := Underlying(s).(stubSite); !ok {
		t.Fatalf("Underlying 应返回原始站点，实际 %T", Underlying(s))
	}

	orig, _ := reg.Get("stub")
	if orig.Table(domain.Scope{Year: 2001}).Rows != "li.row" {
		t.Fatalf("原注册表不应被修改")
	}
}

func TestRegistry_WithTables_Rejects(t *testing.T) {
	reg, _ := NewRegistry(stubSite{name: "stub"})
	if _, err := reg.WithTables(map[string]extract.Table{"nope": {Rows: "li"}}); err == nil {
		t.Fatalf("未注册 site 应报错")
	}
	if _, err := reg.WithTables(map[string]extract.Table{"stub": {Rows: "li"}}); err == nil {
		t.Fatalf("无效规则表应报错")
	}
}
