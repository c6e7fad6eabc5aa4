package domain

import "time"

// UserState is the per-user document synchronized with the remote store.
// Watchlist and WatchedList are sets unique by title ID, and a title is
// never in both at once: marking a title watched removes it from the
// watchlist in the same update.
type UserState struct {
	Watchlist   []Title    `json:"watchlist"`
	WatchedList []Title    `json:"watched_list"`
	Ratings     []Rating   `json:"ratings"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// Clone returns a deep-enough copy: the slices are copied so the caller can
// mutate them without aliasing; Title and Rating values are value types.
func (s UserState) Clone() UserState {
	out := UserState{LastUpdated: s.LastUpdated}
	if s.Watchlist != nil {
		out.Watchlist = append([]Title(nil), s.Watchlist...)
	}
	if s.WatchedList != nil {
		out.WatchedList = append([]Title(nil), s.WatchedList...)
	}
	if s.Ratings != nil {
		out.Ratings = append([]Rating(nil), s.Ratings...)
	}
	return out
}

// InWatchlist reports whether the title ID is in the watchlist.
func (s UserState) InWatchlist(titleID int) bool {
	return containsTitle(s.Watchlist, titleID)
}

// InWatchedList reports whether the title ID is in the watched list.
func (s UserState) InWatchedList(titleID int) bool {
	return containsTitle(s.WatchedList, titleID)
}

// RatingFor returns the rating for a title, if one exists.
func (s UserState) RatingFor(titleID int) (Rating, bool) {
	for _, r := range s.Ratings {
		if r.TitleID == titleID {
			return r, true
		}
	}
	return Rating{}, false
}

func containsTitle(titles []Title, id int) bool {
	for _, t := range titles {
		if t.ID == id {
			return true
		}
	}
	return false
}

// RemoveTitle returns titles with the given ID filtered out.
func RemoveTitle(titles []Title, id int) []Title {
	out := titles[:0:0]
	for _, t := range titles {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
