package yad2

import (
	"context"
	"errors"
	"strings"
	"testing"

	"yad2-pets-scraper/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://www.yad2.co.il/pets/all"

func TestParseItem(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    models.Pet
		wantErr bool
	}{
		{
			name: "all fields",
			html: listingPage(item{str("  Labrador puppies \n"), str(" Haifa "), str("₪ 2,000 ")}),
			want: models.Pet{Description: "Labrador puppies", Location: "Haifa", Price: "₪ 2,000"},
		},
		{
			name: "no location",
			html: listingPage(item{description: str("Kitten"), price: str("100")}),
			want: models.Pet{Description: "Kitten", Location: models.NoLocation, Price: "100"},
		},
		{
			name: "no price",
			html: listingPage(item{description: str("Kitten"), location: str("Holon")}),
			want: models.Pet{Description: "Kitten", Location: "Holon", Price: models.NoPrice},
		},
		{
			name: "empty description is kept",
			html: listingPage(item{description: str("   "), location: str("Holon"), price: str("1")}),
			want: models.Pet{Description: "", Location: "Holon", Price: "1"},
		},
		{
			name:    "missing description",
			html:    listingPage(item{location: str("Holon"), price: str("1")}),
			wantErr: true,
		},
	}

	e := NewExtractor(nil, testConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			require.NoError(t, err)

			pet, err := e.ParseItem(doc.Find(".feeditem.table").First())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, pet)
		})
	}
}

func TestExtract_SkipsItemWithoutDescription(t *testing.T) {
	logs := captureLogs(t)
	browser := newFakeBrowser(map[string]string{
		pageURL: listingPage(
			item{str("Dog"), str("Tel Aviv"), str("500")},
			item{location: str("Jerusalem"), price: str("50")},
			item{str("Cat"), nil, nil},
		),
	})
	require.NoError(t, browser.Navigate(context.Background(), pageURL))

	pets, itemErrs, err := NewExtractor(browser, testConfig()).Extract(context.Background(), pageURL)

	require.NoError(t, err)
	require.Len(t, pets, 2)
	assert.Equal(t, "Dog", pets[0].Description)
	assert.Equal(t, models.Pet{Description: "Cat", Location: models.NoLocation, Price: models.NoPrice}, pets[1])

	require.Len(t, itemErrs, 1)
	assert.Equal(t, 1, itemErrs[0].Index)
	assert.Equal(t, 1, strings.Count(logs.String(), "Error extracting data for one pet"))
}

func TestExtract_ContainerTimeout(t *testing.T) {
	captureLogs(t)
	browser := newFakeBrowser(map[string]string{pageURL: `<html><body><p>maintenance</p></body></html>`})
	require.NoError(t, browser.Navigate(context.Background(), pageURL))

	pets, itemErrs, err := NewExtractor(browser, testConfig()).Extract(context.Background(), pageURL)

	assert.True(t, errors.Is(err, ErrContainerTimeout))
	assert.Empty(t, pets)
	assert.Empty(t, itemErrs)
}

func TestExtract_BrowserFailureIsNotTimeout(t *testing.T) {
	captureLogs(t)
	browser := newFakeBrowser(map[string]string{pageURL: listingPage(item{description: str("Dog")})})
	require.NoError(t, browser.Navigate(context.Background(), pageURL))
	lost := errors.New("websocket: close 1006")
	browser.waitErr = lost

	_, _, err := NewExtractor(browser, testConfig()).Extract(context.Background(), pageURL)

	assert.ErrorIs(t, err, lost)
	assert.False(t, errors.Is(err, ErrContainerTimeout))
}

func TestExtract_CancelledContext(t *testing.T) {
	captureLogs(t)
	browser := newFakeBrowser(map[string]string{pageURL: `<html></html>`})
	require.NoError(t, browser.Navigate(context.Background(), pageURL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewExtractor(browser, testConfig()).Extract(ctx, pageURL)

	assert.ErrorIs(t, err, context.Canceled)
}
