package geo

import (
	"math"
	"sort"
	"strings"

	"github.com/mangaswap/mangaswap-backend/internal/model"
)

// earthRadiusKm is the Earth's mean radius.
const earthRadiusKm = 6371.0088

// Distance returns the great-circle distance in kilometers between two
// coordinates given in decimal degrees, computed with the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Asin(math.Min(1, math.Sqrt(a)))
	return earthRadiusKm * c
}

type RankedListing struct {
	Listing    model.Listing
	DistanceKm float64
}

// Rank orders listings by ascending distance from the viewer coordinate.
// Equal distances keep the input order. The input slice is not modified.
func Rank(viewerLat, viewerLon float64, listings []model.Listing) []RankedListing {
	ranked := make([]RankedListing, 0, len(listings))
	for _, l := range listings {
		ranked = append(ranked, RankedListing{
			Listing:    l,
			DistanceKm: Distance(viewerLat, viewerLon, l.Latitude, l.Longitude),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return ranked
}

// FilterByTitle returns the listings whose title contains query,
// case-insensitively. A blank query returns the input unchanged.
func FilterByTitle(listings []model.Listing, query string) []model.Listing {
	query = strings.TrimSpace(query)
	if query == "" {
		return listings
	}
	q := strings.ToLower(query)
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if strings.Contains(strings.ToLower(l.Title), q) {
			out = append(out, l)
		}
	}
	return out
}
