package recommend

import (
	"hash/fnv"
	"sort"
	"strconv"

	"github.com/anilogapp/anilog-server/internal/domain"
)

// fingerprint digests a collection by its identity set only. Ids are
// deduplicated and sorted before hashing, so reordering a collection never
// changes its fingerprint while any membership change does.
type fingerprint uint64

func fingerprintIDs(ids []int) fingerprint {
	unique := make(map[int]bool, len(ids))
	for _, id := range ids {
		unique[id] = true
	}
	sorted := make([]int, 0, len(unique))
	for id := range unique {
		sorted = append(sorted, id)
	}
	sort.Ints(sorted)

	h := fnv.New64a()
	for _, id := range sorted {
		h.Write([]byte(strconv.Itoa(id)))
		h.Write([]byte{','})
	}
	return fingerprint(h.Sum64())
}

func fingerprintTitles(titles []domain.Title) fingerprint {
	return fingerprintIDs(domain.TitleIDs(titles))
}

func fingerprintRatings(ratings []domain.Rating) fingerprint {
	ids := make([]int, len(ratings))
	for i, r := range ratings {
		ids[i] = r.TitleID
	}
	return fingerprintIDs(ids)
}

// inputFingerprint is the three-part cache key over the collections that
// influence recommendation output.
type inputFingerprint struct {
	watchlist fingerprint
	watched   fingerprint
	ratings   fingerprint
}

func fingerprintInputs(watchlist, watched []domain.Title, ratings []domain.Rating) inputFingerprint {
	return inputFingerprint{
		watchlist: fingerprintTitles(watchlist),
		watched:   fingerprintTitles(watched),
		ratings:   fingerprintRatings(ratings),
	}
}
