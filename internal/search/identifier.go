package search

import (
	"fmt"
	"strings"
)

// Identifier prefixes accepted by Parse
const (
	schemePrefix = "spotify:"
	webPrefix    = "https://open.spotify.com/"
)

// Category is one of the four resource kinds the catalog exposes
type Category int

const (
	CategoryNone Category = iota
	CategoryTrack
	CategoryArtist
	CategoryAlbum
	CategoryPlaylist
)

// Categories lists the categories in view order
var Categories = []Category{CategoryAlbum, CategoryArtist, CategoryPlaylist, CategoryTrack}

// String returns the token used in identifiers, e.g. "album"
func (c Category) String() string {
	switch c {
	case CategoryTrack:
		return "track"
	case CategoryArtist:
		return "artist"
	case CategoryAlbum:
		return "album"
	case CategoryPlaylist:
		return "playlist"
	default:
		return ""
	}
}

// URI returns the scheme form identifier spotify:<category>:<id>
func (c Category) URI(id string) string {
	return schemePrefix + c.String() + ":" + id
}

// MarshalText encodes the category as its token
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category token. The empty token is CategoryNone.
func (c *Category) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = CategoryNone
		return nil
	}
	category, ok := ParseCategory(string(text))
	if !ok {
		return fmt.Errorf("unknown category %q", text)
	}
	*c = category
	return nil
}

// ParseCategory maps an identifier token to a Category
func ParseCategory(token string) (Category, bool) {
	switch token {
	case "track":
		return CategoryTrack, true
	case "artist":
		return CategoryArtist, true
	case "album":
		return CategoryAlbum, true
	case "playlist":
		return CategoryPlaylist, true
	default:
		return CategoryNone, false
	}
}

// TrackURI returns the playback URI of a track
func TrackURI(id string) string {
	return CategoryTrack.URI(id)
}

// ParsedIdentifier is either free text or a reference to a single resource.
// Category is CategoryNone for free text.
type ParsedIdentifier struct {
	Text     string
	Category Category
	ID       string
}

// FreeText creates a free text identifier
func FreeText(text string) ParsedIdentifier {
	return ParsedIdentifier{Text: text}
}

// Resource creates a resource identifier
func Resource(category Category, id string) ParsedIdentifier {
	return ParsedIdentifier{Category: category, ID: id}
}

// IsResource reports whether the identifier names a single resource
func (p ParsedIdentifier) IsResource() bool {
	return p.Category != CategoryNone
}

// Parse classifies raw input as a resource identifier or free text.
// Anything that is not a well formed identifier falls back to free text unchanged.
func Parse(raw string) ParsedIdentifier {
	var segments []string
	web := false

	switch {
	case strings.HasPrefix(raw, schemePrefix):
		segments = strings.Split(raw, ":")
	case strings.HasPrefix(raw, webPrefix):
		// drop "https://" so the host becomes segment 0
		segments = strings.Split(raw[len("https://"):], "/")
		web = true
	default:
		return FreeText(raw)
	}

	if len(segments) < 3 {
		return FreeText(raw)
	}

	category, ok := ParseCategory(segments[1])
	if !ok {
		return FreeText(raw)
	}

	id := segments[2]
	if web {
		// share links carry ?si=<tracking id>
		if i := strings.IndexAny(id, "?#"); i >= 0 {
			id = id[:i]
		}
	}
	if id == "" {
		return FreeText(raw)
	}

	return Resource(category, id)
}
