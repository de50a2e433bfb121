package swudb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RawCard is a card record exactly as the swu-db API returns it.
type RawCard struct {
	Set         string     `json:"Set"`
	Number      string     `json:"Number"`
	Name        string     `json:"Name"`
	Subtitle    string     `json:"Subtitle,omitempty"`
	Type        string     `json:"Type,omitempty"`
	VariantType string     `json:"VariantType,omitempty"`
	Aspects     []string   `json:"Aspects,omitempty"`
	Arenas      []string   `json:"Arenas,omitempty"`
	Traits      []string   `json:"Traits,omitempty"`
	Keywords    []string   `json:"Keywords,omitempty"`
	Cost        FlexString `json:"Cost,omitempty"`
	Power       FlexString `json:"Power,omitempty"`
	HP          FlexString `json:"HP,omitempty"`
	FrontText   string     `json:"FrontText,omitempty"`
	BackText    string     `json:"BackText,omitempty"`
	EpicAction  string     `json:"EpicAction,omitempty"`
	Rarity      string     `json:"Rarity,omitempty"`
	Unique      bool       `json:"Unique,omitempty"`
	DoubleSided bool       `json:"DoubleSided,omitempty"`
	Artist      string     `json:"Artist,omitempty"`
	MarketPrice FlexString `json:"MarketPrice,omitempty"`

	// Artwork. Older payloads use ArtUri/BackArtUri, newer ones FrontArt/BackArt.
	ArtURI     string `json:"ArtUri,omitempty"`
	BackArtURI string `json:"BackArtUri,omitempty"`
	FrontArt   string `json:"FrontArt,omitempty"`
	BackArt    string `json:"BackArt,omitempty"`
}

// FrontArtURI returns the front artwork URI, whichever field carries it.
func (r RawCard) FrontArtURI() string {
	if r.ArtURI != "" {
		return r.ArtURI
	}
	return r.FrontArt
}

// BackArtworkURI returns the back artwork URI, whichever field carries it.
func (r RawCard) BackArtworkURI() string {
	if r.BackArtURI != "" {
		return r.BackArtURI
	}
	return r.BackArt
}

// FlexString accepts a JSON string, number or null.
// The API is inconsistent about quoting numeric stats.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*f = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the value as a plain string.
func (f FlexString) String() string {
	return string(f)
}

// partitionResponse is the envelope of GET /cards/{set}.
type partitionResponse struct {
	Data json.RawMessage `json:"data"`
}

// FetchError is returned once every retry attempt for a partition has failed.
type FetchError struct {
	Partition string
	Attempts  int
	Err       error
}

// Error implements the error interface for FetchError.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch partition %q after %d attempts: %v", e.Partition, e.Attempts, e.Err)
}

// Unwrap returns the last underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// MalformedResponseError indicates a decodable body without the expected shape.
type MalformedResponseError struct {
	Partition string
	Reason    string
}

// Error implements the error interface for MalformedResponseError.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response for partition %q: %s", e.Partition, e.Reason)
}

// StatusError represents a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

// Error implements the error interface for StatusError.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API request to %s failed with status %d", e.URL, e.StatusCode)
}
