package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/John-Robertt/toplist/internal/domain"
)

var movieFields = []string{"name", "year", "rating"}

func movie(name, rating string) domain.Record {
	return domain.NewRecord(movieFields, map[string]string{"name": name, "year": "2019", "rating": rating})
}

func dataset(recs ...domain.Record) domain.Dataset {
	if recs == nil {
		recs = []domain.Record{}
	}
	return domain.Dataset{Scope: domain.Scope{Year: 2019}, Fields: movieFields, Records: recs}
}

func TestJSON_ExactShape(t *testing.T) {
	b, err := JSON{}.Encode(dataset(movie("Joker", "8.3"), movie("Tom & Jerry <3>", "")))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := `{
    "1": {
        "name": "Joker",
        "year": "2019",
        "rating": "8.3"
    },
    "2": {
        "name": "Tom & Jerry <3>",
        "year": "2019",
        "rating": "N/A"
    }
}
`
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Fatalf("JSON 输出不符合预期 (-want +got):\n%s", diff)
	}
	if !json.Valid(b) {
		t.Fatalf("输出不是合法 JSON")
	}
}

func TestJSON_IndexOrderBeyondNine(t *testing.T) {
	var recs []domain.Record
	for i := 1; i <= 12; i++ {
		recs = append(recs, movie(fmt.Sprintf("M%d", i), "7.0"))
	}
	b, err := JSON{}.Encode(dataset(recs...))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	last := -1
	for i := 1; i <= 12; i++ {
		pos := bytes.Index(b, []byte(fmt.Sprintf("\n    \"%d\": {", i)))
		if pos < 0 || pos < last {
			t.Fatalf("键 %d 的位置不符合插入顺序：pos=%d last=%d", i, pos, last)
		}
		last = pos
	}

	var decoded map[string]map[string]string
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("反序列化失败：%v", err)
	}
	if decoded["10"]["name"] != "M10" {
		t.Fatalf("序号 10 应对应第 10 条记录：%v", decoded["10"])
	}
}

func TestJSON_Empty(t *testing.T) {
	b, err := JSON{}.Encode(dataset())
	if err != nil || string(b) != "{}\n" {
		t.Fatalf("空数据集应输出 {}：%q err=%v", b, err)
	}
}

type tvLayout struct{}

func (tvLayout) Header(s domain.Scope) string { return "Top Movies for " + s.Label() + ":\n" + strings.Repeat("-", 20) }
func (tvLayout) Line(i int, r domain.Record) string {
	return fmt.Sprintf("%d. Series: %s (%s)", i, r.Get("name"), r.Get("rating"))
}
func (tvLayout) EmptyNote(domain.Scope) string { return "No movies found or layout changed." }

func TestText_Layout(t *testing.T) {
	b, err := Text{Layout: tvLayout{}}.Encode(dataset(movie("Chernobyl", "9.3"), movie("The Boys", "8.7")))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := "Top Movies for 2019:\n--------------------\n1. Series: Chernobyl (9.3)\n2. Series: The Boys (8.7)\n"
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Fatalf("text 输出不符合预期 (-want +got):\n%s", diff)
	}
}

func TestText_EmptyWritesNote(t *testing.T) {
	b, err := Text{Layout: tvLayout{}}.Encode(dataset())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := "Top Movies for 2019:\n--------------------\nNo movies found or layout changed.\n"
	if string(b) != want {
		t.Fatalf("空数据集应写明说明：%q", string(b))
	}
}

func TestText_GenericLayout(t *testing.T) {
	enc, err := New("text", nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, _ := enc.Encode(dataset(movie("Joker", "8.3")))
	want := "Results for 2019:\n--------------------\n1. name=Joker | year=2019 | rating=8.3\n"
	if string(b) != want {
		t.Fatalf("通用版式不符合预期：%q", string(b))
	}
	if enc.Ext() != ".txt" {
		t.Fatalf("扩展名不符合预期：%q", enc.Ext())
	}
}

func TestXLSX_RoundTrip(t *testing.T) {
	b, err := XLSX{}.Encode(dataset(movie("Joker", "8.3"), movie("Parasite", "")))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("打开 xlsx 失败：%v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("2019")
	if err != nil {
		t.Fatalf("读取工作表失败：%v", err)
	}
	want := [][]string{
		{"#", "name", "year", "rating"},
		{"1", "Joker", "2019", "8.3"},
		{"2", "Parasite", "2019", "N/A"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("xlsx 内容不符合预期 (-want +got):\n%s", diff)
	}
}

func TestXLSX_EmptyHasHeaderOnly(t *testing.T) {
	b, err := XLSX{}.Encode(dataset())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("打开 xlsx 失败：%v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows("2019")
	if len(rows) != 1 || rows[0][0] != "#" {
		t.Fatalf("空数据集应只有表头：%v", rows)
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New("csv", nil); err == nil {
		t.Fatalf("未知格式应报错")
	}
	for format, ext := range map[string]string{"json": ".json", "XLSX": ".xlsx"} {
		enc, err := New(format, nil)
		if err != nil || enc.Ext() != ext {
			t.Fatalf("New(%q) 不符合预期：%v %v", format, enc, err)
		}
	}
}

func TestWriteString_AppendsLiteralOnly(t *testing.T) {
	var b bytes.Buffer
	b.WriteString(`{"k": `)
	if err := writeString(&b, `Tom & Jerry <"2019">`); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got, want := b.String(), `{"k": "Tom & Jerry <\"2019\">"`; got != want {
		t.Fatalf("writeString=%q，期望 %q", got, want)
	}
}

func TestNewWorkbook_InvalidSheetName(t *testing.T) {
	f, err := newWorkbook("bad:name")
	if err == nil {
		_ = f.Close()
		t.Fatalf("非法工作表名应报错")
	}
	if !strings.Contains(err.Error(), "bad:name") {
		t.Fatalf("错误应包含工作表名：%v", err)
	}

	f, err = newWorkbook("current")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 1 || got[0] != "current" {
		t.Fatalf("工作表列表不正确：%v", got)
	}
}
