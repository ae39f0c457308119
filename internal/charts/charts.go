package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/model"
)

// ChartGenerator строит графики по сохраненным записям пользователей.
type ChartGenerator struct{}

// NewChartGenerator создает новый генератор графиков.
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

// GenerateExpensesChart рисует столбчатую диаграмму расходов пользователя
// по трем категориям и возвращает PNG. Если расходов нет, возвращает nil.
func (g *ChartGenerator) GenerateExpensesChart(record *model.UserRecord) ([]byte, error) {
	if record == nil || !record.HasExpenses() {
		return nil, nil
	}

	bars := []chart.Value{
		{Value: record.Expenses1, Label: record.Category1},
		{Value: record.Expenses2, Label: record.Category2},
		{Value: record.Expenses3, Label: record.Category3},
	}

	total := 0.0
	for _, bar := range bars {
		total += bar.Value
	}
	if total == 0 {
		// go-chart не умеет рисовать полностью нулевой ряд
		return nil, nil
	}

	graph := chart.BarChart{
		Title:    "Расходы по категориям",
		Width:    800,
		Height:   500,
		BarWidth: 120,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   30,
				Right:  30,
				Bottom: 30,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f₽", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render expenses chart: %w", err)
	}
	return buf.Bytes(), nil
}
