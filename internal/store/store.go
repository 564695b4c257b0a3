package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/rizkypratama/kolradar/pkg/catalog"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Report is one (campaign, KOL) performance report. The engagement, er and
// cpe fields derive from the raw counts and are computed here at write
// time; the ranking fields (s_i, final_score, ranking) are owned by the
// performance ranker and overwritten as a whole on every recomputation.
type Report struct {
	ID         string    `db:"id" json:"id"`
	CampaignID int64     `db:"campaign_id" json:"campaign_id"`
	KOLID      int64     `db:"kol_id" json:"kol_id"`
	Likes      int64     `db:"likes" json:"likes"`
	Comments   int64     `db:"comments" json:"comments"`
	Shares     int64     `db:"shares" json:"shares"`
	Saves      int64     `db:"saves" json:"saves"`
	Reach      int64     `db:"reach" json:"reach"`
	Cost       float64   `db:"cost" json:"cost"`
	Engagement int64     `db:"engagement" json:"engagement"`
	ER         float64   `db:"er" json:"er"`
	CPE        float64   `db:"cpe" json:"cpe"`
	SI         float64   `db:"s_i" json:"s_i"`
	FinalScore float64   `db:"final_score" json:"final_score"`
	Ranking    int       `db:"ranking" json:"ranking"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ComputeDerived fills engagement, er (%) and cpe from the raw counts.
func (r *Report) ComputeDerived() {
	r.Engagement = r.Likes + r.Comments + r.Shares + r.Saves
	if r.Reach > 0 {
		r.ER = float64(r.Engagement) / float64(r.Reach) * 100
	} else {
		r.ER = 0
	}
	if r.Engagement > 0 {
		r.CPE = r.Cost / float64(r.Engagement)
	} else {
		r.CPE = 0
	}
}

// KOLListOpts controls KOL listing.
type KOLListOpts struct {
	Niche    string
	AgeRange string
	Limit    int
}

// Store is the persistence interface.
type Store interface {
	UpsertKOLType(ctx context.Context, t *catalog.KOLType) error
	GetKOLType(ctx context.Context, id int64) (*catalog.KOLType, error)

	UpsertKOL(ctx context.Context, k *catalog.KOL) error
	GetKOL(ctx context.Context, id int64) (*catalog.KOL, error)
	ListKOLs(ctx context.Context, opts KOLListOpts) ([]catalog.KOL, error)

	CreateCampaign(ctx context.Context, c *catalog.Campaign) error
	GetCampaign(ctx context.Context, id int64) (*catalog.Campaign, error)
	ListCampaigns(ctx context.Context) ([]catalog.Campaign, error)

	CreateReport(ctx context.Context, r *Report) error
	UpdateReport(ctx context.Context, r *Report) error
	DeleteReport(ctx context.Context, id string) (campaignID int64, err error)
	GetReport(ctx context.Context, id string) (*Report, error)
	ListReportsByCampaign(ctx context.Context, campaignID int64) ([]Report, error)
	ListRankedCampaignIDs(ctx context.Context) ([]int64, error)

	ReplaceRankings(ctx context.Context, campaignID int64, reports []Report) error

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertKOLType(ctx context.Context, t *catalog.KOLType) error {
	if t.ID > 0 {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO kol_types (id, name, min_followers, max_followers)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				min_followers = excluded.min_followers,
				max_followers = excluded.max_followers
		`, t.ID, t.Name, t.MinFollowers, t.MaxFollowers)
		if err != nil {
			return fmt.Errorf("upsert kol type %d: %w", t.ID, err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO kol_types (name, min_followers, max_followers) VALUES (?, ?, ?)
	`, t.Name, t.MinFollowers, t.MaxFollowers)
	if err != nil {
		return fmt.Errorf("insert kol type: %w", err)
	}
	t.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) GetKOLType(ctx context.Context, id int64) (*catalog.KOLType, error) {
	var t catalog.KOLType
	err := s.db.GetContext(ctx, &t, "SELECT * FROM kol_types WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get kol type %d: %w", id, err)
	}
	return &t, nil
}

func (s *SQLiteStore) UpsertKOL(ctx context.Context, k *catalog.KOL) error {
	if k.ID > 0 {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO kols (id, name, niche, age_range, engagement_rate, reach, audience_male, audience_female, rate_card, followers)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				niche = excluded.niche,
				age_range = excluded.age_range,
				engagement_rate = excluded.engagement_rate,
				reach = excluded.reach,
				audience_male = excluded.audience_male,
				audience_female = excluded.audience_female,
				rate_card = excluded.rate_card,
				followers = excluded.followers
		`, k.ID, k.Name, k.Niche, k.AgeRange, k.EngagementRate, k.Reach,
			k.AudienceMale, k.AudienceFemale, k.RateCard, k.Followers)
		if err != nil {
			return fmt.Errorf("upsert kol %d: %w", k.ID, err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO kols (name, niche, age_range, engagement_rate, reach, audience_male, audience_female, rate_card, followers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, k.Name, k.Niche, k.AgeRange, k.EngagementRate, k.Reach,
		k.AudienceMale, k.AudienceFemale, k.RateCard, k.Followers)
	if err != nil {
		return fmt.Errorf("insert kol: %w", err)
	}
	k.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) GetKOL(ctx context.Context, id int64) (*catalog.KOL, error) {
	var k catalog.KOL
	err := s.db.GetContext(ctx, &k, "SELECT * FROM kols WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get kol %d: %w", id, err)
	}
	return &k, nil
}

func (s *SQLiteStore) ListKOLs(ctx context.Context, opts KOLListOpts) ([]catalog.KOL, error) {
	query := "SELECT * FROM kols WHERE 1=1"
	var args []any

	if opts.Niche != "" {
		query += " AND LOWER(niche) = LOWER(?)"
		args = append(args, opts.Niche)
	}
	if opts.AgeRange != "" {
		query += " AND age_range = ?"
		args = append(args, opts.AgeRange)
	}

	query += " ORDER BY id"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var kols []catalog.KOL
	if err := s.db.SelectContext(ctx, &kols, query, args...); err != nil {
		return nil, fmt.Errorf("list kols: %w", err)
	}
	return kols, nil
}

func (s *SQLiteStore) CreateCampaign(ctx context.Context, c *catalog.Campaign) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO campaigns (name, kol_type_id, budget, target_niche, target_engagement, target_reach, target_gender, target_gender_min, target_age_range)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.Name, c.KOLTypeID, c.Budget, c.TargetNiche, c.TargetEngagement,
		c.TargetReach, c.TargetGender, c.TargetGenderMin, c.TargetAgeRange)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	c.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) GetCampaign(ctx context.Context, id int64) (*catalog.Campaign, error) {
	var c catalog.Campaign
	err := s.db.GetContext(ctx, &c, "SELECT * FROM campaigns WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign %d: %w", id, err)
	}
	return &c, nil
}

func (s *SQLiteStore) ListCampaigns(ctx context.Context) ([]catalog.Campaign, error) {
	var cs []catalog.Campaign
	if err := s.db.SelectContext(ctx, &cs, "SELECT * FROM campaigns ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return cs, nil
}

func (s *SQLiteStore) CreateReport(ctx context.Context, r *Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.ComputeDerived()
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO performance_reports (id, campaign_id, kol_id, likes, comments, shares, saves, reach, cost, engagement, er, cpe, s_i, final_score, ranking, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, 0, ?, ?)
	`, r.ID, r.CampaignID, r.KOLID, r.Likes, r.Comments, r.Shares, r.Saves,
		r.Reach, r.Cost, r.Engagement, r.ER, r.CPE, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert report %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteStore) UpdateReport(ctx context.Context, r *Report) error {
	r.ComputeDerived()
	r.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE performance_reports
		SET likes = ?, comments = ?, shares = ?, saves = ?, reach = ?, cost = ?,
		    engagement = ?, er = ?, cpe = ?, updated_at = ?
		WHERE id = ?
	`, r.Likes, r.Comments, r.Shares, r.Saves, r.Reach, r.Cost,
		r.Engagement, r.ER, r.CPE, r.UpdatedAt, r.ID)
	if err != nil {
		return fmt.Errorf("update report %s: %w", r.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteReport(ctx context.Context, id string) (int64, error) {
	var campaignID int64
	err := s.db.GetContext(ctx, &campaignID,
		"SELECT campaign_id FROM performance_reports WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get report %s: %w", id, err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM performance_reports WHERE id = ?", id); err != nil {
		return 0, fmt.Errorf("delete report %s: %w", id, err)
	}
	return campaignID, nil
}

func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*Report, error) {
	var r Report
	err := s.db.GetContext(ctx, &r, "SELECT * FROM performance_reports WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	return &r, nil
}

func (s *SQLiteStore) ListReportsByCampaign(ctx context.Context, campaignID int64) ([]Report, error) {
	var reports []Report
	err := s.db.SelectContext(ctx, &reports,
		"SELECT * FROM performance_reports WHERE campaign_id = ? ORDER BY kol_id", campaignID)
	if err != nil {
		return nil, fmt.Errorf("list reports for campaign %d: %w", campaignID, err)
	}
	return reports, nil
}

func (s *SQLiteStore) ListRankedCampaignIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids,
		"SELECT DISTINCT campaign_id FROM performance_reports ORDER BY campaign_id")
	if err != nil {
		return nil, fmt.Errorf("list ranked campaign ids: %w", err)
	}
	return ids, nil
}

// ReplaceRankings overwrites s_i, final_score and ranking for every report
// in one transaction. The write is all-or-nothing: a partial ranking set is
// never visible to readers.
func (s *SQLiteStore) ReplaceRankings(ctx context.Context, campaignID int64, reports []Report) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rankings tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range reports {
		r := &reports[i]
		res, err := tx.ExecContext(ctx, `
			UPDATE performance_reports
			SET s_i = ?, final_score = ?, ranking = ?, updated_at = ?
			WHERE id = ? AND campaign_id = ?
		`, r.SI, r.FinalScore, r.Ranking, now, r.ID, campaignID)
		if err != nil {
			return fmt.Errorf("write ranking for report %s: %w", r.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("write ranking for report %s: %w", r.ID, ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rankings tx: %w", err)
	}
	return nil
}
