// Package domain contains the core data model for the AniLog personalization engine.
package domain

// Genre is a catalog genre tag. Titles carry a set of genres unique by ID.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Studio is a production studio credited on a title.
type Studio struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Images holds the artwork URLs for a title.
type Images struct {
	ImageURL      string `json:"image_url"`
	SmallImageURL string `json:"small_image_url,omitempty"`
	LargeImageURL string `json:"large_image_url,omitempty"`
}

// Title is a catalog entry. It is immutable once fetched and treated as a
// value: copied across components, never shared as a mutable instance.
// Identity is the catalog ID.
type Title struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Images  Images   `json:"images"`
	Score   float64  `json:"score"`
	Genres  []Genre  `json:"genres"`
	Year    int      `json:"year,omitempty"`
	Season  string   `json:"season,omitempty"`
	Studios []Studio `json:"studios,omitempty"`
}

// HasGenre reports whether the title carries the given genre ID.
func (t Title) HasGenre(genreID int) bool {
	for _, g := range t.Genres {
		if g.ID == genreID {
			return true
		}
	}
	return false
}

// AiredWindow is the airing window of a title.
type AiredWindow struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// VoicePerson identifies a voice actor or the character they voice.
type VoicePerson struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// VoiceActor pairs a voice actor with the character they play.
type VoiceActor struct {
	Person    VoicePerson `json:"person"`
	Character VoicePerson `json:"character"`
}

// DetailedTitle extends Title with the fields only present on a detail fetch.
type DetailedTitle struct {
	Title
	Synopsis    string       `json:"synopsis"`
	ContentNote string       `json:"content_note,omitempty"`
	Status      string       `json:"status,omitempty"`
	Episodes    int          `json:"episodes"`
	Duration    string       `json:"duration,omitempty"`
	Aired       AiredWindow  `json:"aired"`
	VoiceActors []VoiceActor `json:"voice_actors,omitempty"`
}

// TitleIDs extracts the identity set of a title list, preserving order.
func TitleIDs(titles []Title) []int {
	ids := make([]int, len(titles))
	for i, t := range titles {
		ids[i] = t.ID
	}
	return ids
}
