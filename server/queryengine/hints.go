package queryengine

import (
	"sort"
	"strings"

	"github.com/stayscout/stayscout/store"
)

// SortIntent is the requested result ordering.
type SortIntent string

const (
	SortRelevance SortIntent = "relevance"
	SortPriceAsc  SortIntent = "price_asc"
	SortPriceDesc SortIntent = "price_desc"
)

// SearchHints is the structured interpretation of one query. It is built
// once per query (or per merged follow-up) and passed by value through the
// pipeline; stages that change a field work on their own copy.
type SearchHints struct {
	Location   string // empty when unknown
	MinPrice   *float64
	MaxPrice   *float64
	ExactPrice *float64
	Tier       *store.Tier
	Keywords   []string
	Amenities  []string
	SortIntent SortIntent
}

// amenityDictionary maps lowercase keywords to canonical amenity tags.
// Many-to-many: a keyword can expand to several tags. Vietnamese keywords
// map to the same canonical tags as their English counterparts.
var amenityDictionary = map[string][]string{
	"pool":       {"pool"},
	"swimming":   {"pool"},
	"swim":       {"pool"},
	"hồ bơi":     {"pool"},
	"bể bơi":     {"pool"},
	"gym":        {"gym"},
	"fitness":    {"gym"},
	"phòng gym":  {"gym"},
	"spa":        {"spa"},
	"massage":    {"spa"},
	"sauna":      {"spa"},
	"wifi":       {"wifi"},
	"internet":   {"wifi"},
	"parking":    {"parking"},
	"garage":     {"parking"},
	"đỗ xe":      {"parking"},
	"bãi xe":     {"parking"},
	"breakfast":  {"breakfast"},
	"buffet":     {"breakfast"},
	"ăn sáng":    {"breakfast"},
	"bar":        {"bar"},
	"cocktail":   {"bar"},
	"restaurant": {"restaurant"},
	"dining":     {"restaurant"},
	"nhà hàng":   {"restaurant"},
	"beach":      {"beach"},
	"beachfront": {"beach"},
	"ocean":      {"beach"},
	"biển":       {"beach"},
	"bãi biển":   {"beach"},
	"pets":       {"pets"},
	"pet":        {"pets"},
	"dog":        {"pets"},
	"thú cưng":   {"pets"},
	"family":     {"family", "kids club"},
	"kids":       {"family", "kids club"},
	"children":   {"family", "kids club"},
	"gia đình":   {"family", "kids club"},
	"trẻ em":     {"family", "kids club"},
	"business":   {"business center", "meeting rooms"},
	"conference": {"business center", "meeting rooms"},
	"meeting":    {"meeting rooms"},
	"công tác":   {"business center"},
}

// amenityEntries fixes the iteration order over amenityDictionary so the
// same keywords always expand to the same tag sequence.
var amenityEntries = sortedAmenityEntries()

func sortedAmenityEntries() []string {
	entries := make([]string, 0, len(amenityDictionary))
	for entry := range amenityDictionary {
		entries = append(entries, entry)
	}
	sort.Strings(entries)
	return entries
}

// tierKeywordGroups are checked in priority order; the first group with a
// substring match wins.
var tierKeywordGroups = []struct {
	tier     store.Tier
	keywords []string
}{
	{store.TierBudget, []string{"budget", "cheap", "affordable", "giá rẻ", "bình dân"}},
	{store.TierLuxury, []string{"luxury", "premium", "exclusive", "sang trọng", "cao cấp"}},
	{store.TierMid, []string{"mid", "moderate", "tầm trung"}},
}

// normalizeKeywords lowercases and trims keywords, collapsing duplicates
// while preserving order.
func normalizeKeywords(keywords []string) []string {
	seen := map[string]bool{}
	result := []string{}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		result = append(result, kw)
	}
	return result
}

// amenitiesFromKeywords expands keywords into canonical amenity tags.
// A keyword matches a dictionary entry by substring in either direction,
// so "swimming pool" still maps to the pool tag.
func amenitiesFromKeywords(keywords []string) []string {
	seen := map[string]bool{}
	result := []string{}
	for _, kw := range keywords {
		for _, entry := range amenityEntries {
			if !strings.Contains(kw, entry) && !strings.Contains(entry, kw) {
				continue
			}
			for _, tag := range amenityDictionary[entry] {
				if !seen[tag] {
					seen[tag] = true
					result = append(result, tag)
				}
			}
		}
	}
	return result
}

// inferTierFromKeywords infers a tier from keyword substrings when the
// upstream parse left the tier null.
func inferTierFromKeywords(keywords []string) *store.Tier {
	for _, group := range tierKeywordGroups {
		for _, kw := range keywords {
			for _, marker := range group.keywords {
				if strings.Contains(kw, marker) {
					tier := group.tier
					return &tier
				}
			}
		}
	}
	return nil
}

// sanitizeTier coerces an upstream tier string to a known tier, or nil.
func sanitizeTier(raw string) *store.Tier {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, t := range store.Tiers() {
		if strings.EqualFold(raw, string(t)) {
			tier := t
			return &tier
		}
	}
	// Common aliases from the structured parse.
	switch strings.ToLower(raw) {
	case "mid", "midtier", "mid tier", "midrange", "mid-range":
		tier := store.TierMid
		return &tier
	}
	return nil
}

// sanitizeLocation coerces an upstream location string to a catalog city, or "".
func sanitizeLocation(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, city := range store.Cities() {
		if strings.EqualFold(raw, city) {
			return city
		}
	}
	return ""
}
