package catalog

import (
	"time"

	"github.com/anilogapp/anilog-server/internal/domain"
)

// Sort selects the ordering of catalog listings.
type Sort string

// Supported listing sort modes.
const (
	SortPopularity Sort = "popularity"
	SortRating     Sort = "rating"
	SortAiring     Sort = "airing"
	SortNewest     Sort = "newest"
)

// ParseSort maps a string to a Sort, defaulting to popularity.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortRating, SortAiring, SortNewest:
		return Sort(s)
	default:
		return SortPopularity
	}
}

// Raw API response types (internal).

type rawListResponse struct {
	Data []rawAnime `json:"data"`
}

type rawDetailResponse struct {
	Data rawAnime `json:"data"`
}

type rawCharactersResponse struct {
	Data []rawCharacterEntry `json:"data"`
}

type rawAnime struct {
	MalID         int        `json:"mal_id"`
	Title         string     `json:"title"`
	TitleJapanese string     `json:"title_japanese"`
	Images        rawImages  `json:"images"`
	Score         float64    `json:"score"`
	Genres        []rawNamed `json:"genres"`
	Year          int        `json:"year"`
	Season        string     `json:"season"`
	Studios       []rawNamed `json:"studios"`
	Synopsis      string     `json:"synopsis"`
	Background    string     `json:"background"`
	Rating        string     `json:"rating"`
	Status        string     `json:"status"`
	Episodes      int        `json:"episodes"`
	Duration      string     `json:"duration"`
	Aired         rawAired   `json:"aired"`
}

type rawImages struct {
	JPG struct {
		ImageURL      string `json:"image_url"`
		SmallImageURL string `json:"small_image_url"`
		LargeImageURL string `json:"large_image_url"`
	} `json:"jpg"`
}

type rawNamed struct {
	MalID int    `json:"mal_id"`
	Name  string `json:"name"`
}

type rawAired struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type rawCharacterEntry struct {
	Character   rawPerson        `json:"character"`
	VoiceActors []rawVoiceCredit `json:"voice_actors"`
}

type rawVoiceCredit struct {
	Person   rawPerson `json:"person"`
	Language string    `json:"language"`
}

type rawPerson struct {
	MalID  int       `json:"mal_id"`
	Name   string    `json:"name"`
	Images rawImages `json:"images"`
}

// toTitle maps a raw catalog record to the domain Title value.
// The Japanese title wins when present, matching the catalog's primary market.
func (a rawAnime) toTitle() domain.Title {
	name := a.TitleJapanese
	if name == "" {
		name = a.Title
	}

	genres := make([]domain.Genre, 0, len(a.Genres))
	for _, g := range a.Genres {
		genres = append(genres, domain.Genre{ID: g.MalID, Name: g.Name})
	}

	studios := make([]domain.Studio, 0, len(a.Studios))
	for _, s := range a.Studios {
		studios = append(studios, domain.Studio{ID: s.MalID, Name: s.Name})
	}

	year := a.Year
	if year == 0 && a.Aired.From != "" {
		if t, err := time.Parse(time.RFC3339, a.Aired.From); err == nil {
			year = t.Year()
		}
	}

	return domain.Title{
		ID:    a.MalID,
		Title: name,
		Images: domain.Images{
			ImageURL:      a.Images.JPG.ImageURL,
			SmallImageURL: a.Images.JPG.SmallImageURL,
			LargeImageURL: a.Images.JPG.LargeImageURL,
		},
		Score:   a.Score,
		Genres:  genres,
		Year:    year,
		Season:  a.Season,
		Studios: studios,
	}
}

// maxVoiceActors caps the voice cast returned on detail fetches.
const maxVoiceActors = 6

// toVoiceActors extracts the Japanese voice cast from a characters response.
func toVoiceActors(entries []rawCharacterEntry) []domain.VoiceActor {
	var cast []domain.VoiceActor
	for _, entry := range entries {
		for _, credit := range entry.VoiceActors {
			if credit.Language != "Japanese" {
				continue
			}
			cast = append(cast, domain.VoiceActor{
				Person: domain.VoicePerson{
					ID:       credit.Person.MalID,
					Name:     credit.Person.Name,
					ImageURL: credit.Person.Images.JPG.ImageURL,
				},
				Character: domain.VoicePerson{
					ID:       entry.Character.MalID,
					Name:     entry.Character.Name,
					ImageURL: entry.Character.Images.JPG.ImageURL,
				},
			})
			break
		}
		if len(cast) == maxVoiceActors {
			break
		}
	}
	return cast
}
