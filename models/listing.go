package models

import (
	"errors"
	"fmt"
)

var ErrUnknownColumn = errors.New("unknown column")

// Record is anything the record store can persist: values are looked up by
// column name.
type Record interface {
	Column(name string) (any, error)
}

// Location keeps city and province together so that they are found or
// missing as a unit.
type Location struct {
	City     string `json:"city"`
	Province string `json:"province"`
}

// Listing is one real estate ad extracted from a search result page.
type Listing struct {
	Title              string          `json:"title"`
	Status             string          `json:"status"`
	MQ                 Field[string]   `json:"mq"`
	Rooms              Field[string]   `json:"n_rooms"`
	Bathrooms          Field[string]   `json:"n_bathrooms"`
	Floor              Field[string]   `json:"floor"`
	Price              Field[int]      `json:"price"`
	Link               string          `json:"link"`
	Sold               bool            `json:"sold"`
	Location           Field[Location] `json:"-"`
	IsRealEstateAgency bool            `json:"is_real_estate_agency"`
	Source             string          `json:"source"`
}

func NewListing(status, source string) Listing {
	return Listing{Status: status, Source: source}
}

func (l *Listing) City() string {
	if !l.Location.OK {
		return NotFound
	}
	return l.Location.Value.City
}

func (l *Listing) Province() string {
	if !l.Location.OK {
		return NotFound
	}
	return l.Location.Value.Province
}

// Column implements Record. "content" is the listing title.
func (l *Listing) Column(name string) (any, error) {
	switch name {
	case "content", "title":
		return l.Title, nil
	case "status":
		return l.Status, nil
	case "price":
		return l.Price.Any(), nil
	case "link":
		return l.Link, nil
	case "sold":
		return l.Sold, nil
	case "city":
		return l.City(), nil
	case "province":
		return l.Province(), nil
	case "is_real_estate_agency":
		return l.IsRealEstateAgency, nil
	case "mq":
		return l.MQ.Any(), nil
	case "n_rooms":
		return l.Rooms.Any(), nil
	case "n_bathrooms":
		return l.Bathrooms.Any(), nil
	case "floor":
		return l.Floor.Any(), nil
	case "source":
		return l.Source, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
}

// Records adapts a listing slice for the record store.
func Records(listings []Listing) []Record {
	records := make([]Record, len(listings))
	for i := range listings {
		records[i] = &listings[i]
	}
	return records
}
