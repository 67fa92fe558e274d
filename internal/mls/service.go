// Package mls is the typed surface the app calls: login and session
// lifecycle, listing search, favorites, saved searches, appointments and
// open houses, all expressed as endpoint descriptors executed by the API
// client.
package mls

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/stevenovak55/bmnboston-sub021/internal/api"
	"github.com/stevenovak55/bmnboston-sub021/internal/credentials"
)

// Client executes endpoint descriptors. Satisfied by *api.Client.
type Client interface {
	Do(ctx context.Context, ep api.Endpoint, out any) error
}

// Service wraps the API client with the app's typed operations.
type Service struct {
	client Client
	store  credentials.Store
	logger zerolog.Logger
}

// NewService creates the MLS service over the given client and credential
// store.
func NewService(client Client, store credentials.Store, logger zerolog.Logger) *Service {
	return &Service{client: client, store: store, logger: logger}
}

// session is the payload of a successful login.
type session struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	User             User   `json:"user"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

// Login authenticates with email and password and persists the returned
// token set.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	var sess session
	err := s.client.Do(ctx, api.Endpoint{
		Path:       "/auth/login",
		Method:     http.MethodPost,
		Parameters: map[string]any{"email": email, "password": password},
	}, &sess)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	accessTTL := api.DefaultAccessTTL
	if sess.ExpiresIn > 0 {
		accessTTL = time.Duration(sess.ExpiresIn) * time.Second
	}
	refreshTTL := api.DefaultRefreshTTL
	if sess.RefreshExpiresIn > 0 {
		refreshTTL = time.Duration(sess.RefreshExpiresIn) * time.Second
	}
	s.store.Save(sess.AccessToken, sess.RefreshToken, accessTTL, refreshTTL)
	s.logger.Info().Str("email", email).Msg("logged in")
	return &sess.User, nil
}

// Logout clears local credentials. The server is told as well, but a
// failure there must not keep the device signed in.
func (s *Service) Logout(ctx context.Context) {
	err := s.client.Do(ctx, api.Endpoint{
		Path:         "/auth/logout",
		Method:       http.MethodPost,
		RequiresAuth: true,
	}, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("server-side logout failed, clearing local credentials anyway")
	}
	s.store.Clear()
}

// IsAuthenticated reports whether a usable or recoverable session exists.
func (s *Service) IsAuthenticated() bool {
	return s.store.IsAuthenticated()
}

// SearchListings runs a filtered listing search against the MLS data API.
func (s *Service) SearchListings(ctx context.Context, filters SearchFilters) ([]Listing, error) {
	params := map[string]any{}
	if len(filters.Polygon) > 0 {
		polygon := make([]any, len(filters.Polygon))
		for i, c := range filters.Polygon {
			polygon[i] = map[string]any{"lat": c.Lat, "lng": c.Lng}
		}
		params["polygon"] = polygon
	}
	if len(filters.Beds) > 0 {
		params["beds"] = filters.Beds
	}
	if filters.MinPrice > 0 || filters.MaxPrice > 0 {
		price := map[string]any{}
		if filters.MinPrice > 0 {
			price["min"] = filters.MinPrice
		}
		if filters.MaxPrice > 0 {
			price["max"] = filters.MaxPrice
		}
		params["price"] = price
	}
	if len(filters.PropertyTypes) > 0 {
		params["property_types"] = filters.PropertyTypes
	}
	if filters.Keyword != "" {
		params["keyword"] = filters.Keyword
	}
	if filters.Page > 0 {
		params["page"] = filters.Page
	}
	if filters.PerPage > 0 {
		params["per_page"] = filters.PerPage
	}

	var listings []Listing
	err := s.client.Do(ctx, api.Endpoint{
		Path:       "/listings/search",
		Method:     http.MethodGet,
		Parameters: params,
		Namespace:  api.NamespaceMLD,
	}, &listings)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	return listings, nil
}

// Listing fetches one listing by id.
func (s *Service) Listing(ctx context.Context, id string) (*Listing, error) {
	var listing Listing
	err := s.client.Do(ctx, api.Endpoint{
		Path:      "/listings/" + url.PathEscape(id),
		Method:    http.MethodGet,
		Namespace: api.NamespaceMLD,
	}, &listing)
	if err != nil {
		return nil, fmt.Errorf("fetch listing %s: %w", id, err)
	}
	return &listing, nil
}

// Favorites returns the user's favorited listings.
func (s *Service) Favorites(ctx context.Context) ([]Listing, error) {
	var listings []Listing
	err := s.client.Do(ctx, api.Endpoint{
		Path:         "/favorites",
		Method:       http.MethodGet,
		RequiresAuth: true,
	}, &listings)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return listings, nil
}

// AddFavorite favorites a listing.
func (s *Service) AddFavorite(ctx context.Context, listingID string) error {
	err := s.client.Do(ctx, api.Endpoint{
		Path:         "/favorites",
		Method:       http.MethodPost,
		Parameters:   map[string]any{"listing_id": listingID},
		RequiresAuth: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("add favorite %s: %w", listingID, err)
	}
	return nil
}

// RemoveFavorite removes a listing from favorites.
func (s *Service) RemoveFavorite(ctx context.Context, listingID string) error {
	err := s.client.Do(ctx, api.Endpoint{
		Path:         "/favorites/" + url.PathEscape(listingID),
		Method:       http.MethodDelete,
		RequiresAuth: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("remove favorite %s: %w", listingID, err)
	}
	return nil
}

// SavedSearches returns the user's saved searches.
func (s *Service) SavedSearches(ctx context.Context) ([]SavedSearch, error) {
	var searches []SavedSearch
	err := s.client.Do(ctx, api.Endpoint{
		Path:         "/saved-searches",
		Method:       http.MethodGet,
		RequiresAuth: true,
	}, &searches)
	if err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}
	return searches, nil
}

// CreateSavedSearch stores a named filter set for alerting.
func (s *Service) CreateSavedSearch(ctx context.Context, name string, filters SearchFilters) (*SavedSearch, error) {
	criteria := map[string]any{}
	if len(filters.Beds) > 0 {
		criteria["beds"] = filters.Beds
	}
	if filters.MinPrice > 0 {
		criteria["min_price"] = filters.MinPrice
	}
	if filters.MaxPrice > 0 {
		criteria["max_price"] = filters.MaxPrice
	}
	if len(filters.PropertyTypes) > 0 {
		criteria["property_types"] = filters.PropertyTypes
	}
	if filters.Keyword != "" {
		criteria["keyword"] = filters.Keyword
	}

	var search SavedSearch
	err := s.client.Do(ctx, api.Endpoint{
		Path:         "/saved-searches",
		Method:       http.MethodPost,
		Parameters:   map[string]any{"name": name, "criteria": criteria},
		RequiresAuth: true,
	}, &search)
	if err != nil {
		return nil, fmt.Errorf("create saved search: %w", err)
	}
	return &search, nil
}

// DeleteSavedSearch removes a saved search.
func (s *Service) DeleteSavedSearch(ctx context.Context, id string) error {
	err := s.client.Do(ctx, api.Endpoint{
		Path:         "/saved-searches/" + url.PathEscape(id),
		Method:       http.MethodDelete,
		RequiresAuth: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("delete saved search %s: %w", id, err)
	}
	return nil
}

// Appointments returns the user's showing requests.
func (s *Service) Appointments(ctx context.Context) ([]Appointment, error) {
	var appointments []Appointment
	err := s.client.Do(ctx, api.Endpoint{
		Path:         "/appointments",
		Method:       http.MethodGet,
		RequiresAuth: true,
	}, &appointments)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}

// RequestAppointment asks for a showing at the given time.
func (s *Service) RequestAppointment(ctx context.Context, listingID string, at time.Time, notes string) (*Appointment, error) {
	var appointment Appointment
	err := s.client.Do(ctx, api.Endpoint{
		Path:   "/appointments",
		Method: http.MethodPost,
		Parameters: map[string]any{
			"listing_id":     listingID,
			"requested_time": at.Format(time.RFC3339),
			"notes":          notes,
		},
		RequiresAuth: true,
	}, &appointment)
	if err != nil {
		return nil, fmt.Errorf("request appointment for %s: %w", listingID, err)
	}
	return &appointment, nil
}

// UpcomingOpenHouses returns open houses within the next days days.
func (s *Service) UpcomingOpenHouses(ctx context.Context, days int) ([]OpenHouse, error) {
	var openHouses []OpenHouse
	err := s.client.Do(ctx, api.Endpoint{
		Path:       "/open-houses/upcoming",
		Method:     http.MethodGet,
		Parameters: map[string]any{"days": days},
		Namespace:  api.NamespaceMLD,
	}, &openHouses)
	if err != nil {
		return nil, fmt.Errorf("list open houses: %w", err)
	}
	return openHouses, nil
}
