// Package report 把余额预测和年度预算导出为 Excel 工作簿
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"budget/ledger"
	"budget/models"
)

const (
	ForecastSheet = "余额预测"
	BudgetSheet   = "年度预算"
)

var months = []string{"1月", "2月", "3月", "4月", "5月", "6月", "7月", "8月", "9月", "10月", "11月", "12月"}

// Workbook 预测表 + 预算表。cats 为 nil 时只生成预测表
func Workbook(fc *ledger.Forecast, cats []models.Category, budgets []models.Budget) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", ForecastSheet)

	styles, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := writeForecast(f, styles, fc); err != nil {
		f.Close()
		return nil, err
	}
	if cats != nil {
		if _, err := f.NewSheet(BudgetSheet); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeBudgets(f, styles, fc.Year, cats, budgets); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Write 生成工作簿并写入 w
func Write(w io.Writer, fc *ledger.Forecast, cats []models.Category, budgets []models.Budget) error {
	f, err := Workbook(fc, cats, budgets)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

type styles struct {
	header, data, money int
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	var (
		s   styles
		err error
	)
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return s, err
	}
	s.data, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return s, err
	}
	fmtCode := "#,##0.00"
	s.money, err = f.NewStyle(&excelize.Style{
		Alignment:    &excelize.Alignment{Horizontal: "right", Vertical: "center"},
		Border:       border,
		CustomNumFmt: &fmtCode,
	})
	return s, err
}

func writeForecast(f *excelize.File, s styles, fc *ledger.Forecast) error {
	sheet := ForecastSheet
	headers := []string{"月份", "实际", "计划", "预测"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A1", "D1", s.header)
	f.SetColWidth(sheet, "A", "A", 10)
	f.SetColWidth(sheet, "B", "D", 16)

	for i, p := range fc.Points {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.Label)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), s.data)
		for col, v := range []*decimal.Decimal{p.Actual, p.Plan, p.Forecast} {
			cell, _ := excelize.CoordinatesToCellName(col+2, row)
			if v != nil {
				f.SetCellFloat(sheet, cell, v.InexactFloat64(), 2, 64)
			}
			f.SetCellStyle(sheet, cell, cell, s.money)
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// writeBudgets 子类别 × 月份的预算表，类别组行显示子类别合计
func writeBudgets(f *excelize.File, s styles, year int, cats []models.Category, budgets []models.Budget) error {
	sheet := BudgetSheet
	f.SetCellValue(sheet, "A1", "类别")
	for i, m := range months {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		f.SetCellValue(sheet, cell, m)
	}
	f.SetCellValue(sheet, "N1", "全年")
	f.SetCellStyle(sheet, "A1", "N1", s.header)
	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "N", 12)

	idx := ledger.IndexBudgets(ledger.BudgetsInYear(budgets, year))
	tree := ledger.NewTree(cats)
	row := 2
	for _, c := range tree.Ordered() {
		name := c.Name
		if !c.IsGroup() {
			name = "  " + name
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), name)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), s.data)

		total := decimal.Zero
		for i := range months {
			m := models.NewMonth(year, monthOf(i))
			v := idx.Amount(c.ID, m)
			if c.IsGroup() {
				v = decimal.Zero
				for _, child := range tree.Children(c.ID) {
					v = v.Add(idx.Amount(child.ID, m))
				}
			}
			total = total.Add(v)
			cell, _ := excelize.CoordinatesToCellName(i+2, row)
			if !v.IsZero() {
				f.SetCellFloat(sheet, cell, v.InexactFloat64(), 2, 64)
			}
		}
		f.SetCellFloat(sheet, fmt.Sprintf("N%d", row), total.InexactFloat64(), 2, 64)
		f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("N%d", row), s.money)
		row++
	}
	return nil
}

func monthOf(i int) time.Month {
	return time.Month(i + 1)
}
