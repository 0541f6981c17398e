package services

import (
	"io"
	"sort"
	"strings"

	"yad2-pets-scraper/models"

	"github.com/jedib0t/go-pretty/v6/table"
)

type LocationCount struct {
	Location string
	Count    int
}

type Report struct {
	TotalRows        int
	MissingLocation  int
	MissingPrice     int
	EmptyDescription int
	// DuplicateRows counts rows whose description, location and price
	// already appeared in an earlier row.
	DuplicateRows int
	ByLocation    []LocationCount
}

// GenerateReport summarises the stored rows.
func GenerateReport(pets []models.Pet) Report {
	report := Report{TotalRows: len(pets)}

	seen := make(map[models.Pet]bool, len(pets))
	locations := make(map[string]int)

	for _, p := range pets {
		if p.Location == models.NoLocation {
			report.MissingLocation++
		}
		if p.Price == models.NoPrice {
			report.MissingPrice++
		}
		if strings.TrimSpace(p.Description) == "" {
			report.EmptyDescription++
		}

		key := models.Pet{Description: p.Description, Location: p.Location, Price: p.Price}
		if seen[key] {
			report.DuplicateRows++
		}
		seen[key] = true

		locations[normalizeLocation(p.Location)]++
	}

	for loc, n := range locations {
		report.ByLocation = append(report.ByLocation, LocationCount{Location: loc, Count: n})
	}
	sort.Slice(report.ByLocation, func(i, j int) bool {
		if report.ByLocation[i].Count == report.ByLocation[j].Count {
			return report.ByLocation[i].Location < report.ByLocation[j].Location
		}
		return report.ByLocation[i].Count > report.ByLocation[j].Count
	})

	return report
}

// PrintReport renders the report as tables on w. top limits the location
// table; zero prints every location.
func PrintReport(w io.Writer, report Report, top int) {
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetTitle("Pet Listings")
	summary.AppendHeader(table.Row{"Metric", "Value"})
	summary.AppendRows([]table.Row{
		{"Total rows", report.TotalRows},
		{"Without location", report.MissingLocation},
		{"Without price", report.MissingPrice},
		{"Empty description", report.EmptyDescription},
		{"Duplicate rows", report.DuplicateRows},
	})
	summary.SetStyle(table.StyleRounded)
	summary.Render()

	locations := report.ByLocation
	if top > 0 && len(locations) > top {
		locations = locations[:top]
	}

	byLocation := table.NewWriter()
	byLocation.SetOutputMirror(w)
	byLocation.AppendHeader(table.Row{"#", "Location", "Rows"})
	for i, lc := range locations {
		byLocation.AppendRow(table.Row{i + 1, truncateText(lc.Location, 44), lc.Count})
	}
	byLocation.SetStyle(table.StyleRounded)
	byLocation.Render()
}

func normalizeLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" || location == models.NoLocation {
		return "Unknown"
	}
	return location
}

func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
