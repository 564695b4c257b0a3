package catalog

// Gender selects which audience split a campaign targets.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// KOL is a key opinion leader profile, an immutable snapshot at scoring time.
type KOL struct {
	ID             int64   `json:"id" db:"id"`
	Name           string  `json:"name" db:"name"`
	Niche          string  `json:"niche" db:"niche"`
	AgeRange       string  `json:"age_range" db:"age_range"`
	EngagementRate float64 `json:"engagement_rate" db:"engagement_rate"`
	Reach          float64 `json:"reach" db:"reach"`
	AudienceMale   float64 `json:"audience_male" db:"audience_male"`
	AudienceFemale float64 `json:"audience_female" db:"audience_female"`
	RateCard       float64 `json:"rate_card" db:"rate_card"`
	Followers      int64   `json:"followers" db:"followers"`
}

// AudiencePct returns the audience percentage for the given gender.
func (k KOL) AudiencePct(g Gender) float64 {
	if g == GenderMale {
		return k.AudienceMale
	}
	return k.AudienceFemale
}

// KOLType groups KOLs by follower-count tier (nano, micro, macro, ...).
type KOLType struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	MinFollowers int64  `json:"min_followers" db:"min_followers"`
	MaxFollowers int64  `json:"max_followers" db:"max_followers"`
}

// Campaign holds a campaign's target profile. The niche, gender and
// age-range fields drive candidate pre-filtering; the numeric targets feed
// the recommendation engine.
type Campaign struct {
	ID               int64   `json:"id" db:"id"`
	Name             string  `json:"name" db:"name"`
	KOLTypeID        int64   `json:"kol_type_id" db:"kol_type_id"`
	Budget           float64 `json:"budget" db:"budget"`
	TargetNiche      string  `json:"target_niche" db:"target_niche"`
	TargetEngagement float64 `json:"target_engagement" db:"target_engagement"`
	TargetReach      float64 `json:"target_reach" db:"target_reach"`
	TargetGender     Gender  `json:"target_gender" db:"target_gender"`
	TargetGenderMin  float64 `json:"target_gender_min" db:"target_gender_min"`
	TargetAgeRange   string  `json:"target_age_range" db:"target_age_range"`
}
