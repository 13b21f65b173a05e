package exporter

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/wtpceo/dashbord-wiple/internal/history"
	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/store"
)

// 工作表名（沿用看板界面的韩文标签）
const (
	SheetComparison = "월별 비교"
	SheetAE         = "AE 실적"
	SheetSales      = "영업 실적"
	SheetChannel    = "채널 성장"
)

// HistoryData 导出所需的历史序列
type HistoryData struct {
	Comparisons []model.MonthlyComparison
	AE          []model.AEMonthlyPerformance
	Sales       []model.SalesMonthlyPerformance
	Channels    []model.ChannelGrowth
}

// FromSnapshots 由快照列表推导全部历史序列（月份升序）
func FromSnapshots(snaps []model.Snapshot) HistoryData {
	rows := history.BuildComparisonSeries(snaps)
	history.SortComparisons(rows, store.Ascending)
	return HistoryData{
		Comparisons: rows,
		AE:          history.AEPerformanceSeries(snaps),
		Sales:       history.SalesPerformanceSeries(snaps),
		Channels:    history.ChannelGrowthSeries(snaps),
	}
}

type sheetWriter struct {
	f      *excelize.File
	sheet  string
	row    int
	header int // 表头样式
}

func (w *sheetWriter) writeRow(values ...interface{}) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(w.sheet, cell, &values)
}

func (w *sheetWriter) writeHeader(widths []float64, titles ...interface{}) error {
	if err := w.writeRow(titles...); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(titles), w.row)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(w.sheet, "A1", last, w.header); err != nil {
		return err
	}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(w.sheet, col, col, width); err != nil {
			return err
		}
	}
	return w.f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// ExportHistory 生成历史报表工作簿：月度对比、AE、销售、渠道四个工作表
// 百分比保留一位小数
func ExportHistory(data HistoryData, progress func(ProgressEvent)) (*excelize.File, error) {
	f := excelize.NewFile()
	reportProgress(progress, 0, "준비")

	if err := f.SetSheetName("Sheet1", SheetComparison); err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, name := range []string{SheetAE, SheetSales, SheetChannel} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("创建工作表 %s 失败: %w", name, err)
		}
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	steps := []struct {
		stage string
		fill  func(*sheetWriter) error
		sheet string
	}{
		{"월별 비교", func(w *sheetWriter) error { return fillComparisons(w, data.Comparisons) }, SheetComparison},
		{"AE 실적", func(w *sheetWriter) error { return fillAE(w, data.AE) }, SheetAE},
		{"영업 실적", func(w *sheetWriter) error { return fillSales(w, data.Sales) }, SheetSales},
		{"채널 성장", func(w *sheetWriter) error { return fillChannels(w, data.Channels) }, SheetChannel},
	}
	for i, step := range steps {
		w := &sheetWriter{f: f, sheet: step.sheet, header: header}
		if err := step.fill(w); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("写入工作表 %s 失败: %w", step.sheet, err)
		}
		reportProgress(progress, (i+1)*100/(len(steps)+1), step.stage)
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, "완료")
	return f, nil
}

func fillComparisons(w *sheetWriter, rows []model.MonthlyComparison) error {
	if err := w.writeHeader([]float64{10, 16, 16, 10, 16, 16, 10, 10, 10, 10},
		"월", "목표 매출", "실제 매출", "달성률(%)", "신규 매출", "연장 매출",
		"총 광고주", "신규 광고주", "연장 광고주", "연장률(%)"); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.writeRow(r.Month, r.TargetRevenue, r.ActualRevenue, roundHalfUp(r.AchievementRate, 1),
			r.NewRevenue, r.RenewalRevenue, r.TotalClients, r.NewClients, r.RenewedClients,
			roundHalfUp(r.RenewalRate, 1)); err != nil {
			return err
		}
	}
	return nil
}

func fillAE(w *sheetWriter, series []model.AEMonthlyPerformance) error {
	if err := w.writeHeader([]float64{12, 10, 10, 16, 10}, "AE", "월", "담당 광고주", "연장 매출", "연장률(%)"); err != nil {
		return err
	}
	for _, s := range series {
		for _, p := range s.Points {
			if err := w.writeRow(s.Name, p.Month, p.ClientCount, p.RenewalRevenue, roundHalfUp(p.RenewalRate, 1)); err != nil {
				return err
			}
		}
	}
	return nil
}

func fillSales(w *sheetWriter, series []model.SalesMonthlyPerformance) error {
	if err := w.writeHeader([]float64{12, 10, 10, 16}, "영업", "월", "신규 광고주", "신규 매출"); err != nil {
		return err
	}
	for _, s := range series {
		for _, p := range s.Points {
			if err := w.writeRow(s.Name, p.Month, p.NewClients, p.NewRevenue); err != nil {
				return err
			}
		}
	}
	return nil
}

func fillChannels(w *sheetWriter, series []model.ChannelGrowth) error {
	if err := w.writeHeader([]float64{14, 10, 16, 10, 10}, "채널", "월", "매출", "광고주", "성장률(%)"); err != nil {
		return err
	}
	for _, s := range series {
		for _, p := range s.Points {
			if err := w.writeRow(string(s.Channel), p.Month, p.Revenue, p.Clients, roundHalfUp(p.GrowthRate, 1)); err != nil {
				return err
			}
		}
	}
	return nil
}

func roundHalfUp(v float64, digits int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	pow := math.Pow(10, float64(digits))
	if v >= 0 {
		return math.Floor(v*pow+0.5) / pow
	}
	return math.Ceil(v*pow-0.5) / pow
}
