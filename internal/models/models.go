package models

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for insertedAt and updatedAt
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Book represents a book on the shelf
type Book struct {
	ID         string
	Name       string
	Year       int
	Author     string
	Summary    string
	Publisher  string
	PageCount  int
	ReadPage   int
	Finished   bool
	Reading    bool
	InsertedAt time.Time
	UpdatedAt  time.Time
}

type bookJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Year       int    `json:"year"`
	Author     string `json:"author"`
	Summary    string `json:"summary"`
	Publisher  string `json:"publisher"`
	PageCount  int    `json:"pageCount"`
	ReadPage   int    `json:"readPage"`
	Finished   bool   `json:"finished"`
	Reading    bool   `json:"reading"`
	InsertedAt string `json:"insertedAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// MarshalJSON renders timestamps in UTC with millisecond precision
func (b Book) MarshalJSON() ([]byte, error) {
	return json.Marshal(bookJSON{
		ID:         b.ID,
		Name:       b.Name,
		Year:       b.Year,
		Author:     b.Author,
		Summary:    b.Summary,
		Publisher:  b.Publisher,
		PageCount:  b.PageCount,
		ReadPage:   b.ReadPage,
		Finished:   b.Finished,
		Reading:    b.Reading,
		InsertedAt: b.InsertedAt.UTC().Format(TimestampLayout),
		UpdatedAt:  b.UpdatedAt.UTC().Format(TimestampLayout),
	})
}

// ToSummary returns the reduced view used by listings
func (b Book) ToSummary() BookSummary {
	return BookSummary{ID: b.ID, Name: b.Name, Publisher: b.Publisher}
}

// BookInput holds the caller-supplied fields of a create or update request.
// A nil Name means the field was not supplied.
type BookInput struct {
	Name      *string `json:"name"`
	Year      int     `json:"year"`
	Author    string  `json:"author"`
	Summary   string  `json:"summary"`
	Publisher string  `json:"publisher"`
	PageCount int     `json:"pageCount"`
	ReadPage  int     `json:"readPage"`
	Reading   bool    `json:"reading"`
}

// BookSummary is the listing projection of a book
type BookSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
}

// FilterFlag is a tri-state query filter. FilterAny means the parameter was
// given with an unrecognized value: it still takes precedence but matches everything.
type FilterFlag int

const (
	FilterUnset FilterFlag = iota
	FilterTrue
	FilterFalse
	FilterAny
)

// ParseFilterFlag maps a query parameter to a FilterFlag
func ParseFilterFlag(value string, present bool) FilterFlag {
	if !present {
		return FilterUnset
	}
	switch value {
	case "1":
		return FilterTrue
	case "0":
		return FilterFalse
	default:
		return FilterAny
	}
}

// Match reports whether v passes the filter
func (f FilterFlag) Match(v bool) bool {
	switch f {
	case FilterTrue:
		return v
	case FilterFalse:
		return !v
	default:
		return true
	}
}

// ListFilter selects books for a listing. Only the first set filter is
// applied, in the order NameContains, Reading, Finished.
type ListFilter struct {
	NameContains *string
	Reading      FilterFlag
	Finished     FilterFlag
}
