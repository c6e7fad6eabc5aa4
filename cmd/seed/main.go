// Package main seeds the user-state database with demo data.
//
// It writes a watchlist, a watched list, and ratings for one user so the
// recommendation and sync endpoints have something to work with locally.
//
// Usage:
//
//	DB_PATH=./data/userstate go run ./cmd/seed
//	DB_PATH=./data/userstate go run ./cmd/seed -user demo-user
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/anilogapp/anilog-server/internal/domain"
	"github.com/anilogapp/anilog-server/internal/remote"
)

var userID = flag.String("user", "demo-user", "User ID to seed state for")

var (
	genreAction    = domain.Genre{ID: 1, Name: "Action"}
	genreAdventure = domain.Genre{ID: 2, Name: "Adventure"}
	genreComedy    = domain.Genre{ID: 4, Name: "Comedy"}
	genreDrama     = domain.Genre{ID: 8, Name: "Drama"}
	genreMystery   = domain.Genre{ID: 7, Name: "Mystery"}
	genreSciFi     = domain.Genre{ID: 24, Name: "Sci-Fi"}
)

var watched = []domain.Title{
	{ID: 1, Title: "Cowboy Bebop", Score: 8.75, Year: 1998, Genres: []domain.Genre{genreAction, genreSciFi}},
	{ID: 19, Title: "Monster", Score: 8.88, Year: 2004, Genres: []domain.Genre{genreDrama, genreMystery}},
	{ID: 30, Title: "Neon Genesis Evangelion", Score: 8.36, Year: 1995, Genres: []domain.Genre{genreAction, genreDrama, genreSciFi}},
	{ID: 44, Title: "Rurouni Kenshin", Score: 8.29, Year: 1996, Genres: []domain.Genre{genreAction, genreAdventure}},
	{ID: 387, Title: "Haibane Renmei", Score: 7.96, Year: 2002, Genres: []domain.Genre{genreDrama, genreMystery}},
}

var watchlist = []domain.Title{
	{ID: 5114, Title: "Fullmetal Alchemist: Brotherhood", Score: 9.09, Year: 2009, Genres: []domain.Genre{genreAction, genreAdventure, genreDrama}},
	{ID: 9253, Title: "Steins;Gate", Score: 9.07, Year: 2011, Genres: []domain.Genre{genreDrama, genreSciFi}},
	{ID: 820, Title: "Ginga Eiyuu Densetsu", Score: 9.01, Year: 1988, Genres: []domain.Genre{genreDrama, genreSciFi}},
	{ID: 21, Title: "One Piece", Score: 8.73, Year: 1999, Genres: []domain.Genre{genreAction, genreAdventure, genreComedy}},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/userstate"
	}

	fmt.Printf("Opening user-state store at: %s\n", dbPath)

	store, err := remote.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	ratings := make([]domain.Rating, 0, len(watched))
	for i, title := range watched {
		scores := make(map[string]int, len(domain.Criteria))
		base := 6 + rng.Intn(3)
		for _, c := range domain.Criteria {
			score := base + rng.Intn(3) - 1
			if score > 10 {
				score = 10
			}
			scores[c.ID] = score
		}
		ratings = append(ratings, domain.Rating{
			TitleID:   title.ID,
			Scores:    scores,
			Comment:   fmt.Sprintf("Seeded rating for %s", title.Title),
			CreatedAt: time.Now().Add(-time.Duration(len(watched)-i) * 24 * time.Hour),
		})
	}

	err = store.WritePartial(context.Background(), *userID, remote.Partial{
		Watchlist:   &watchlist,
		WatchedList: &watched,
		Ratings:     &ratings,
	})
	if err != nil {
		log.Fatalf("Failed to write document: %v", err)
	}

	fmt.Printf("\nSeeded user %q:\n", *userID)
	fmt.Printf("  Watchlist: %d titles\n", len(watchlist))
	fmt.Printf("  Watched:   %d titles\n", len(watched))
	fmt.Printf("  Ratings:   %d", len(ratings))
	fmt.Println()
	for _, r := range ratings {
		fmt.Printf("    title %d: total %d (%s)\n", r.TitleID, r.TotalScore(), domain.TierForScore(r.TotalScore()).Label)
	}
}
