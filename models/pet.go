package models

// Placeholders stored when an optional field is missing from a listing.
const (
	NoLocation = "No location available"
	NoPrice    = "No price available"
)

// Pet is one row of the pets table.
type Pet struct {
	ID          int64
	Description string
	Location    string
	Price       string
}

type ScrapeJob struct {
	URL        string
	PageNumber int
}

// ScrapeResult is what a single page produced.
type ScrapeResult struct {
	PageNumber int
	URL        string
	Pets       []Pet
	ItemErrors int
	Error      error
}
