package mls

import "time"

// User is the account attached to a session.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Coordinate is a single point of a map polygon.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Listing is one MLS record as the app consumes it.
type Listing struct {
	ID         string  `json:"id"`
	MLSNumber  string  `json:"mls_number"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	Zip        string  `json:"zip"`
	Price      int64   `json:"price"`
	Beds       int     `json:"beds"`
	Baths      float64 `json:"baths"`
	SquareFeet int     `json:"square_feet"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Status     string  `json:"status"`
	PhotoURL   string  `json:"photo_url"`
}

// SearchFilters narrows a listing search. Zero values mean "no filter".
type SearchFilters struct {
	Polygon       []Coordinate
	Beds          []int
	MinPrice      int64
	MaxPrice      int64
	PropertyTypes []string
	Keyword       string
	Page          int
	PerPage       int
}

// SavedSearch is a stored filter set a user gets alerts for.
type SavedSearch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Appointment is a showing request for a listing.
type Appointment struct {
	ID            string    `json:"id"`
	ListingID     string    `json:"listing_id"`
	RequestedTime time.Time `json:"requested_time"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes"`
}

// OpenHouse is a scheduled open-house event.
type OpenHouse struct {
	ListingID string    `json:"listing_id"`
	Address   string    `json:"address"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
}
