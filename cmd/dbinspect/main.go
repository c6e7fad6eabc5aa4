// Package main inspects a user-state database and prints a per-user summary.
//
// Usage:
//
//	DB_PATH=./data/userstate go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/anilogapp/anilog-server/internal/domain"
)

const keyPrefix = "userstate:"

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/userstate"
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== User-State Inspection ===")
	fmt.Println()

	userCount := 0
	totalWatchlist := 0
	totalWatched := 0
	totalRatings := 0

	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek([]byte(keyPrefix)); it.ValidForPrefix([]byte(keyPrefix)); it.Next() {
			item := it.Item()
			userID := string(item.Key())[len(keyPrefix):]

			err := item.Value(func(val []byte) error {
				var state domain.UserState
				if err := json.Unmarshal(val, &state); err != nil {
					return err
				}

				userCount++
				totalWatchlist += len(state.Watchlist)
				totalWatched += len(state.WatchedList)
				totalRatings += len(state.Ratings)

				fmt.Printf("User: %s\n", userID)
				fmt.Printf("  Watchlist: %d\n", len(state.Watchlist))
				fmt.Printf("  Watched:   %d\n", len(state.WatchedList))
				fmt.Printf("  Ratings:   %d\n", len(state.Ratings))
				if state.LastUpdated != nil {
					fmt.Printf("  Updated:   %s\n", state.LastUpdated.Format("2006-01-02 15:04:05 MST"))
				}
				for i, r := range state.Ratings {
					if i >= 5 {
						fmt.Printf("    ... and %d more ratings\n", len(state.Ratings)-5)
						break
					}
					fmt.Printf("    [%d] total %d (%s)\n", r.TitleID, r.TotalScore(), domain.TierForScore(r.TotalScore()).Label)
				}
				fmt.Println()
				return nil
			})
			if err != nil {
				log.Printf("Error reading document %s: %v", item.Key(), err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total users: %d\n", userCount)
	fmt.Printf("Total watchlist entries: %d\n", totalWatchlist)
	fmt.Printf("Total watched entries: %d\n", totalWatched)
	fmt.Printf("Total ratings: %d\n", totalRatings)
	if userCount > 0 {
		fmt.Printf("Average ratings per user: %.1f\n", float64(totalRatings)/float64(userCount))
	}
}
