package cli

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/platewise/internal/analyzer"
	"github.com/Veraticus/platewise/internal/images"
	"github.com/Veraticus/platewise/internal/model"
)

const timeLayout = "2006-01-02 15:04"

func formatGrams(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "g"
}

func formatCalories(v float64) string {
	return fmt.Sprintf("%.0f kcal", math.Round(v))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// RenderTotals renders the nutrient totals of one image.
func RenderTotals(t model.TotalNutrition) string {
	lines := []string{
		fmt.Sprintf("Calories: %s", CalorieStyle.Render(formatCalories(t.Calories))),
		fmt.Sprintf("Protein: %s  Fat: %s  Carbs: %s",
			formatGrams(t.Protein), formatGrams(t.Fat), formatGrams(t.Carbs)),
		fmt.Sprintf("Fiber: %s  Sugar: %s  Weight: %s",
			formatGrams(t.Fiber), formatGrams(t.Sugar), formatGrams(t.Weight)),
		SubtleStyle.Render(fmt.Sprintf("%d food item(s)", t.FoodCount)),
	}
	return strings.Join(lines, "\n")
}

// RenderFoods renders one row per food with its nutrition.
func RenderFoods(foods []model.EnrichedFood) string {
	if len(foods) == 0 {
		return SubtleStyle.Render("No foods detected.")
	}

	t := newTable("Food", "Weight", "Calories", "Protein", "Fat", "Carbs", "Source")
	for _, f := range foods {
		n := f.Nutrition
		t.Row(
			f.EnglishName,
			formatGrams(f.EstimatedWeightGrams),
			formatCalories(n.Calories),
			formatGrams(n.Protein),
			formatGrams(n.Fat),
			formatGrams(n.Carbs),
			string(n.Source),
		)
	}
	return t.String()
}

// RenderResult renders the card for the index-th analyzed image (0-based).
func RenderResult(index int, r model.AnalysisResult) string {
	header := fmt.Sprintf("%s %s", ImageIcon, r.Image.Name)
	meta := []string{images.FormatFileSize(r.Image.Size)}
	if dims := images.Dimensions(r.Image); dims != "" {
		meta = append(meta, dims)
	}

	parts := []string{SubtleStyle.Render(strings.Join(meta, " · "))}
	if r.EnrichedResult == nil {
		parts = append(parts,
			FormatWarning("No structured food data; raw analysis follows."),
			r.RawResult,
		)
	} else {
		parts = append(parts, RenderTotals(r.Totals()), RenderFoods(r.Foods()))
	}

	return RenderBox(fmt.Sprintf("Image %d: %s", index+1, header), strings.Join(parts, "\n\n"))
}

// RenderResults renders every result card followed by a grand total.
func RenderResults(results []model.AnalysisResult) string {
	cards := make([]string, 0, len(results)+1)
	var calories float64
	for i, r := range results {
		cards = append(cards, RenderResult(i, r))
		calories += r.Totals().Calories
	}
	if len(results) > 1 {
		cards = append(cards, fmt.Sprintf("%s Total across %d images: %s",
			ChartIcon, len(results), CalorieStyle.Render(formatCalories(calories))))
	}
	return strings.Join(cards, "\n")
}

func entryTime(e model.DisplayEntry) string {
	if e.Time.IsZero() {
		return e.Timestamp
	}
	return e.Time.Local().Format(timeLayout)
}

// RenderHistory renders history entries as a table.
func RenderHistory(entries []model.DisplayEntry) string {
	if len(entries) == 0 {
		return FormatInfo("No saved analyses yet.")
	}

	t := newTable("ID", "Saved", "Images", "Foods", "Calories")
	for _, e := range entries {
		t.Row(
			e.ID.String(),
			entryTime(e),
			strconv.Itoa(e.ImageCount),
			strconv.Itoa(e.FoodCount),
			formatCalories(e.TotalCalories),
		)
	}
	return t.String()
}

// RenderRecord renders a saved session in full.
func RenderRecord(r model.HistoryRecord, e model.DisplayEntry) string {
	header := fmt.Sprintf("%s Session %s, saved %s: %d image(s), %d food(s), %s",
		HistoryIcon, r.ID, entryTime(e), e.ImageCount, e.FoodCount,
		CalorieStyle.Render(formatCalories(e.TotalCalories)))
	return header + "\n" + RenderResults(r.Results)
}

// RenderHealth renders a service health report.
func RenderHealth(baseURL string, status *analyzer.HealthStatus) string {
	lines := []string{
		fmt.Sprintf("Service: %s", baseURL),
		fmt.Sprintf("Status: %s", SuccessStyle.Render(status.Status)),
	}

	names := make([]string, 0, len(status.Services))
	for name := range status.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  • %s: %s", name, status.Services[name]))
	}
	return RenderBox("Analysis Service", strings.Join(lines, "\n"))
}
