// Package output 把一个 scope 的 Dataset 编码为文件内容。
//
// 编码器只产出字节，不碰文件系统；落盘由调用方通过 fsx 原子写完成，
// 因此失败的 scope 不会留下半截文件。
package output

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/toplist/internal/domain"
)

// Encoder 把 Dataset 编码为某种文件格式。
type Encoder interface {
	Encode(ds domain.Dataset) ([]byte, error)
	// Ext 是带点的文件扩展名，例如 ".json"。
	Ext() string
}

// TextLayout 决定 text 格式的逐行渲染。站点可实现它以复刻自己的文本版式。
type TextLayout interface {
	// Header 可为多行（\n 分隔），为空则不输出表头。
	Header(scope domain.Scope) string
	// Line 渲染第 index（1 起）条记录，不含换行。
	Line(index int, r domain.Record) string
	// EmptyNote 是没有任何记录时写入的说明。
	EmptyNote(scope domain.Scope) string
}

// New 按格式名构造编码器。layout 仅用于 text，为 nil 时使用 GenericLayout。
func New(format string, layout TextLayout) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return JSON{}, nil
	case "text":
		if layout == nil {
			layout = GenericLayout{}
		}
		return Text{Layout: layout}, nil
	case "xlsx":
		return XLSX{}, nil
	default:
		return nil, fmt.Errorf("未知输出格式：%q", format)
	}
}
