package services

import (
	"bytes"
	"testing"

	"yad2-pets-scraper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReport(t *testing.T) {
	pets := []models.Pet{
		{ID: 1, Description: "Dog", Location: "Haifa", Price: "100"},
		{ID: 2, Description: "Cat", Location: models.NoLocation, Price: models.NoPrice},
		{ID: 3, Description: "Dog", Location: "Haifa", Price: "100"},
		{ID: 4, Description: "", Location: "Eilat", Price: "5"},
		{ID: 5, Description: "Fish", Location: "Haifa", Price: models.NoPrice},
	}

	report := GenerateReport(pets)

	assert.Equal(t, 5, report.TotalRows)
	assert.Equal(t, 1, report.MissingLocation)
	assert.Equal(t, 2, report.MissingPrice)
	assert.Equal(t, 1, report.EmptyDescription)
	assert.Equal(t, 1, report.DuplicateRows)

	require.Len(t, report.ByLocation, 3)
	assert.Equal(t, LocationCount{Location: "Haifa", Count: 3}, report.ByLocation[0])
	assert.Equal(t, LocationCount{Location: "Eilat", Count: 1}, report.ByLocation[1])
	assert.Equal(t, LocationCount{Location: "Unknown", Count: 1}, report.ByLocation[2])
}

func TestGenerateReport_Empty(t *testing.T) {
	report := GenerateReport(nil)

	assert.Zero(t, report.TotalRows)
	assert.Empty(t, report.ByLocation)
}

func TestPrintReport(t *testing.T) {
	report := GenerateReport([]models.Pet{
		{Description: "Dog", Location: "Haifa", Price: "100"},
		{Description: "Cat", Location: "Ramat Gan", Price: "50"},
	})

	var buf bytes.Buffer
	PrintReport(&buf, report, 1)

	out := buf.String()
	assert.Contains(t, out, "Total rows")
	assert.Contains(t, out, "Haifa")
	assert.NotContains(t, out, "Ramat Gan", "location table is limited to the top entries")
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "abcdefg...", truncateText("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncateText("abcdef", 2))
}
