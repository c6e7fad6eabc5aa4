package domain

import "time"

// CriterionCategory groups rating criteria for display.
type CriterionCategory string

// Criterion categories.
const (
	CategoryStory     CriterionCategory = "story"
	CategoryVisual    CriterionCategory = "visual"
	CategoryAudio     CriterionCategory = "audio"
	CategoryCharacter CriterionCategory = "character"
)

// Criterion is one of the 12 fixed rating criteria.
type Criterion struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    CriterionCategory `json:"category"`
}

// Criteria is the fixed set of rating criteria. Every rating scores each
// criterion on a 0-10 scale.
var Criteria = []Criterion{
	{ID: "story", Name: "Story", Description: "Narrative quality, pacing, coherence, and payoff", Category: CategoryStory},
	{ID: "character", Name: "Characters", Description: "Cast appeal and the chemistry between characters", Category: CategoryCharacter},
	{ID: "animation", Name: "Animation", Description: "Visual beauty, fluidity of motion, attention to detail", Category: CategoryVisual},
	{ID: "music", Name: "Music", Description: "Score, themes, and sound effects fitting each scene", Category: CategoryAudio},
	{ID: "voiceActing", Name: "Voice Acting", Description: "Casting fit, performance, and ensemble balance", Category: CategoryAudio},
	{ID: "worldBuilding", Name: "World & Setting", Description: "Depth and consistency of the world, harmony with the story", Category: CategoryStory},
	{ID: "theme", Name: "Themes", Description: "Depth and universality of the work's message", Category: CategoryStory},
	{ID: "originality", Name: "Originality", Description: "Differentiation from existing works, fresh ideas", Category: CategoryStory},
	{ID: "reality", Name: "Plausibility", Description: "Believability of character behavior and setting consistency", Category: CategoryCharacter},
	{ID: "genreAccuracy", Name: "Genre Fit", Description: "How well the work delivers on its genre", Category: CategoryStory},
	{ID: "universality", Name: "Timelessness", Description: "Appeal across eras and cultures; rewatch value in ten years", Category: CategoryStory},
	{ID: "overall", Name: "Overall", Description: "Overall impression, satisfaction, and emotional impact", Category: CategoryStory},
}

// CriterionIDs returns the fixed criterion ids in display order.
func CriterionIDs() []string {
	ids := make([]string, len(Criteria))
	for i, c := range Criteria {
		ids[i] = c.ID
	}
	return ids
}

// MaxTotalScore is the maximum possible rating total (12 criteria x 10).
const MaxTotalScore = 120

// Rating is a user's multi-criteria rating of a title. At most one rating
// exists per (user, title); a later submission replaces the prior one.
type Rating struct {
	TitleID   int            `json:"title_id"`
	Scores    map[string]int `json:"scores"`
	Comment   string         `json:"comment,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// TotalScore sums the criterion scores. Range [0, 120].
func (r Rating) TotalScore() int {
	total := 0
	for _, s := range r.Scores {
		total += s
	}
	return total
}

// Tier describes the ordinal band a total score falls into.
type Tier struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// tierBands maps total-score thresholds to tiers, highest first.
var tierBands = []struct {
	min  int
	tier Tier
}{
	{108, Tier{Label: "All-Time Great", Color: "#FACC15"}},
	{96, Tier{Label: "Masterpiece", Color: "#C084FC"}},
	{84, Tier{Label: "Excellent", Color: "#60A5FA"}},
	{72, Tier{Label: "Good", Color: "#4ADE80"}},
	{60, Tier{Label: "Decent", Color: "#22D3EE"}},
	{48, Tier{Label: "Average", Color: "#9CA3AF"}},
	{36, Tier{Label: "Poor", Color: "#F87171"}},
	{0, Tier{Label: "Baffling", Color: "#DC2626"}},
}

// TierForScore maps a total score to its band.
// Thresholds: 108 / 96 / 84 / 72 / 60 / 48 / 36 / 0.
func TierForScore(total int) Tier {
	for _, b := range tierBands {
		if total >= b.min {
			return b.tier
		}
	}
	return tierBands[len(tierBands)-1].tier
}

// Tier returns the band for this rating's total score.
func (r Rating) Tier() Tier {
	return TierForScore(r.TotalScore())
}

// TierBand pairs a tier with the lowest total score that reaches it.
type TierBand struct {
	MinScore int
	Tier     Tier
}

// TierBands returns the score bands, highest first.
func TierBands() []TierBand {
	bands := make([]TierBand, len(tierBands))
	for i, b := range tierBands {
		bands[i] = TierBand{MinScore: b.min, Tier: b.tier}
	}
	return bands
}
