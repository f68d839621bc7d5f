package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/John-Robertt/toplist/internal/domain"
)

const jsonIndent = "    "

// JSON 输出以 1 起序号为键的对象：{"1": {...}, "2": {...}}，4 空格缩进。
//
// 键顺序等于记录顺序（"2" 在 "10" 之前），字段顺序等于规则表声明顺序。
// encoding/json 对 map 键做字典序排序，所以外层结构手工拼装。
type JSON struct{}

func (JSON) Ext() string { return ".json" }

func (JSON) Encode(ds domain.Dataset) ([]byte, error) {
	if ds.Empty() {
		return []byte("{}\n"), nil
	}

	var b bytes.Buffer
	b.WriteString("{\n")
	for i, r := range ds.Records {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString(jsonIndent)
		if err := writeString(&b, strconv.Itoa(i+1)); err != nil {
			return nil, err
		}
		b.WriteString(": {\n")

		for j, f := range r.Fields() {
			if j > 0 {
				b.WriteString(",\n")
			}
			b.WriteString(strings.Repeat(jsonIndent, 2))
			if err := writeString(&b, f); err != nil {
				return nil, err
			}
			b.WriteString(": ")
			if err := writeString(&b, r.Get(f)); err != nil {
				return nil, err
			}
		}
		b.WriteString("\n" + jsonIndent + "}")
	}
	b.WriteString("\n}\n")
	return b.Bytes(), nil
}

// writeString 写出 JSON 字符串字面量；不转义 <>&（标题里常见）。
func writeString(b *bytes.Buffer, s string) error {
	var lit bytes.Buffer
	enc := json.NewEncoder(&lit)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("编码字符串 %q 失败：%w", s, err)
	}
	// Encode 总会追加换行。
	b.Write(bytes.TrimSuffix(lit.Bytes(), []byte("\n")))
	return nil
}
