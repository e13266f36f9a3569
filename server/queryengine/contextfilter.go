package queryengine

import (
	"log/slog"
	"strings"

	"github.com/stayscout/stayscout/store"
)

// IntentTag is a coarse classification used only for contradiction
// filtering. It is independent of, and coarser than, the price-intent
// detector; the two answer different questions and deliberately stay
// separate.
type IntentTag string

const (
	TagQuietPeaceful  IntentTag = "quiet_peaceful"
	TagPartyNightlife IntentTag = "party_nightlife"
	TagFamilyFriendly IntentTag = "family_friendly"
	TagBusiness       IntentTag = "business"
	TagLuxury         IntentTag = "luxury"
	TagBudget         IntentTag = "budget"
	TagBeach          IntentTag = "beach"
	TagRomantic       IntentTag = "romantic"
)

// tagOrder fixes the order tags are detected in, so removal records always
// attribute a candidate to the same tag when several tags would remove it.
var tagOrder = []IntentTag{
	TagQuietPeaceful,
	TagPartyNightlife,
	TagFamilyFriendly,
	TagBusiness,
	TagLuxury,
	TagBudget,
	TagBeach,
	TagRomantic,
}

// tagVocabulary maps tags to the query substrings that activate them.
var tagVocabulary = map[IntentTag][]string{
	TagQuietPeaceful:  {"quiet", "peaceful", "tranquil", "calm", "relaxing", "yên tĩnh", "thanh bình"},
	TagPartyNightlife: {"party", "nightlife", "club", "bar hopping", "tiệc tùng", "sôi động"},
	TagFamilyFriendly: {"family", "kids", "children", "gia đình", "trẻ em"},
	TagBusiness:       {"business", "work trip", "conference", "công tác"},
	TagLuxury:         {"luxury", "luxurious", "premium", "five star", "5 star", "sang trọng", "cao cấp"},
	TagBudget:         {"budget", "cheap", "affordable", "giá rẻ", "bình dân"},
	TagBeach:          {"beach", "seaside", "ocean", "biển"},
	TagRomantic:       {"romantic", "honeymoon", "couple", "lãng mạn", "trăng mật"},
}

// contradictionRule removes candidates that semantically contradict a tag.
// Rules are hand-authored denylists layered on top of the statistical
// ranking: a "lively nightclub hotel" can still score well against "quiet"
// when other text overlaps, so scores alone cannot be trusted here.
type contradictionRule struct {
	// terms removed when found in the candidate's lowercase name+description
	terms []string
	// tier removed outright
	tier *store.Tier
	// candidates priced above this are removed (0 = no price rule)
	maxPrice float64
}

var contradictionRules = map[IntentTag]contradictionRule{
	TagQuietPeaceful:  {terms: []string{"party", "nightclub", "dj", "loud", "noisy"}},
	TagPartyNightlife: {terms: []string{"tranquil", "secluded", "silent retreat"}},
	TagFamilyFriendly: {terms: []string{"adults only", "adults-only", "casino"}},
	TagBusiness:       {terms: []string{"hostel", "backpacker", "dorm"}},
	TagLuxury:         {terms: []string{"hostel", "backpacker"}, tier: tierPtr(store.TierBudget)},
	TagBudget:         {tier: tierPtr(store.TierLuxury), maxPrice: 300},
	TagBeach:          {terms: []string{"no beach access"}},
	TagRomantic:       {terms: []string{"hostel", "dormitory", "bunk"}},
}

func tierPtr(t store.Tier) *store.Tier {
	return &t
}

// Removal records one filtered-out candidate and why.
type Removal struct {
	Candidate Candidate
	Tag       IntentTag
	Reason    string
}

// ContextFilter removes candidates whose content contradicts the detected
// query intent.
type ContextFilter struct{}

// NewContextFilter creates a new ContextFilter.
func NewContextFilter() *ContextFilter {
	return &ContextFilter{}
}

// DetectTags classifies the query into zero or more coarse tags.
func (f *ContextFilter) DetectTags(query string) []IntentTag {
	q := strings.ToLower(query)
	tags := []IntentTag{}
	for _, tag := range tagOrder {
		for _, term := range tagVocabulary[tag] {
			if strings.Contains(q, term) {
				tags = append(tags, tag)
				break
			}
		}
	}
	return tags
}

// Apply filters candidates that contradict the query's tags. Safety rule:
// if the rules would empty the list, the filter becomes a no-op and the
// original list is returned. This heuristic must never be the sole reason
// for a zero-result answer.
func (f *ContextFilter) Apply(query string, candidates []Candidate) ([]Candidate, []Removal) {
	tags := f.DetectTags(query)
	if len(tags) == 0 || len(candidates) == 0 {
		return candidates, nil
	}

	kept := []Candidate{}
	removed := []Removal{}
	for _, c := range candidates {
		if tag, reason, contradicts := f.contradicts(c, tags); contradicts {
			removed = append(removed, Removal{Candidate: c, Tag: tag, Reason: reason})
			continue
		}
		kept = append(kept, c)
	}

	if len(kept) == 0 {
		slog.Debug("context filter would remove every candidate, skipping",
			"query", query, "tags", tags)
		return candidates, nil
	}

	for _, r := range removed {
		slog.Debug("context filter removed candidate",
			"hotel", r.Candidate.Hotel.Name, "tag", r.Tag, "reason", r.Reason)
	}
	return kept, removed
}

func (f *ContextFilter) contradicts(c Candidate, tags []IntentTag) (IntentTag, string, bool) {
	text := strings.ToLower(c.Hotel.Name + " " + c.Hotel.Description)
	for _, tag := range tags {
		rule, ok := contradictionRules[tag]
		if !ok {
			continue
		}
		for _, term := range rule.terms {
			if strings.Contains(text, term) {
				return tag, "contains " + term, true
			}
		}
		if rule.tier != nil && c.Hotel.Tier != nil && *c.Hotel.Tier == *rule.tier {
			return tag, "tier " + string(*rule.tier), true
		}
		if rule.maxPrice > 0 && c.Hotel.Price > rule.maxPrice {
			return tag, "price above tag ceiling", true
		}
	}
	return "", "", false
}
