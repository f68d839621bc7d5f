package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/John-Robertt/toplist/internal/domain"
)

// XLSX 输出单工作表：首行表头（# + 字段名，加粗并冻结），之后每条记录一行。
// 工作表名为 scope 标签（"2019" / "current"）。空 Dataset 只有表头。
type XLSX struct{}

func (XLSX) Ext() string { return ".xlsx" }

func (XLSX) Encode(ds domain.Dataset) ([]byte, error) {
	sheet := ds.Scope.Label()
	f, err := newWorkbook(sheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := append([]string{"#"}, ds.Fields...)
	for i, h := range header {
		if err := setCell(f, sheet, i+1, 1, h); err != nil {
			return nil, err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return nil, err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}

	for i, r := range ds.Records {
		row := i + 2
		if err := setCell(f, sheet, 1, row, i+1); err != nil {
			return nil, err
		}
		for j, field := range ds.Fields {
			if err := setCell(f, sheet, j+2, row, r.Get(field)); err != nil {
				return nil, err
			}
		}
	}
	if len(ds.Fields) > 0 {
		lastCol, err := excelize.ColumnNumberToName(len(header))
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "B", lastCol, 18); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("生成 xlsx 失败：%w", err)
	}
	return buf.Bytes(), nil
}

// newWorkbook 返回只有一个名为 sheet 的工作表的新文件。
func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("重命名工作表 %q 失败：%w", sheet, err)
	}
	return f, nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, v)
}
