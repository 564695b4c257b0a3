package catalog

import "strings"

// FilterCandidates narrows a KOL pool to the campaign's follower tier,
// niche and age bracket. This runs before scoring; the recommendation
// engine never re-checks these fields.
func FilterCandidates(kols []KOL, tier KOLType, niche, ageRange string) []KOL {
	niche = strings.ToLower(strings.TrimSpace(niche))
	ageRange = strings.TrimSpace(ageRange)

	var out []KOL
	for _, k := range kols {
		if k.Followers < tier.MinFollowers {
			continue
		}
		if tier.MaxFollowers > 0 && k.Followers > tier.MaxFollowers {
			continue
		}
		if niche != "" && strings.ToLower(k.Niche) != niche {
			continue
		}
		if ageRange != "" && k.AgeRange != ageRange {
			continue
		}
		out = append(out, k)
	}
	return out
}
