package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rizkypratama/kolradar/internal/store"
	"github.com/rizkypratama/kolradar/pkg/catalog"
	"github.com/rizkypratama/kolradar/pkg/ranking"
	"github.com/rizkypratama/kolradar/pkg/recommend"
	"github.com/rizkypratama/kolradar/pkg/scoring"
)

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	db, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	engine := recommend.NewEngine(scoring.DefaultBounds())
	ranker := ranking.NewRecomputer(db)
	return New(db, engine, ranker, 0), db
}

func doJSON(t *testing.T, h http.Handler, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCreateReportTriggersRecompute(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()

	for i := 1; i <= 3; i++ {
		body := map[string]any{
			"campaign_id": 1,
			"kol_id":      i,
			"likes":       i * 100,
			"comments":    i * 20,
			"shares":      i * 5,
			"saves":       i * 3,
			"reach":       i * 10000,
			"cost":        i * 500000,
		}
		rec := doJSON(t, h, http.MethodPost, "/api/v1/reports", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create report %d: status %d: %s", i, rec.Code, rec.Body.String())
		}
	}

	reports, err := db.ListReportsByCampaign(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListReportsByCampaign: %v", err)
	}
	sum := 0.0
	seen := make(map[int]bool)
	for _, r := range reports {
		seen[r.Ranking] = true
		sum += r.FinalScore
	}
	for want := 1; want <= 3; want++ {
		if !seen[want] {
			t.Errorf("ranking %d missing after creates", want)
		}
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("sum(final_score) = %v, want 1.0", sum)
	}
}

func TestDeleteLastReport(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()

	r := store.Report{CampaignID: 2, KOLID: 1, Likes: 10, Comments: 2, Shares: 1, Saves: 1, Reach: 1000}
	if err := db.CreateReport(context.Background(), &r); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	rec := doJSON(t, h, http.MethodDelete, "/api/v1/reports?id="+r.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/reports?id="+r.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double delete: status %d, want 404", rec.Code)
	}
}

func TestUpdateReportReranks(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()
	ctx := context.Background()

	weak := store.Report{CampaignID: 3, KOLID: 1, Likes: 10, Comments: 2, Shares: 1, Saves: 1, Reach: 1000}
	strong := store.Report{CampaignID: 3, KOLID: 2, Likes: 500, Comments: 80, Shares: 30, Saves: 20, Reach: 5000}
	for _, r := range []*store.Report{&weak, &strong} {
		if err := db.CreateReport(ctx, r); err != nil {
			t.Fatalf("CreateReport: %v", err)
		}
	}
	ranker := ranking.NewRecomputer(db)
	if _, err := ranker.Recompute(ctx, 3); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	// Boost the weak report far past the strong one.
	body := map[string]any{
		"likes": 100000, "comments": 20000, "shares": 5000, "saves": 3000,
		"reach": 200000, "cost": 1000000,
	}
	rec := doJSON(t, h, http.MethodPut, "/api/v1/reports?id="+weak.ID, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d: %s", rec.Code, rec.Body.String())
	}

	got, err := db.GetReport(ctx, weak.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.Ranking != 1 {
		t.Errorf("boosted report ranking = %d, want 1", got.Ranking)
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()
	ctx := context.Background()

	tier := catalog.KOLType{Name: "micro", MinFollowers: 10000, MaxFollowers: 100000}
	if err := db.UpsertKOLType(ctx, &tier); err != nil {
		t.Fatalf("UpsertKOLType: %v", err)
	}
	c := catalog.Campaign{
		Name: "Launch", KOLTypeID: tier.ID, Budget: 1000000,
		TargetNiche: "beauty", TargetEngagement: 5, TargetReach: 50000,
		TargetGender: catalog.GenderFemale, TargetGenderMin: 60, TargetAgeRange: "18-24",
	}
	if err := db.CreateCampaign(ctx, &c); err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	for i := 1; i <= 3; i++ {
		k := catalog.KOL{
			Name: fmt.Sprintf("kol-%d", i), Niche: "beauty", AgeRange: "18-24",
			EngagementRate: 5, Reach: 50000, AudienceFemale: 60,
			RateCard: float64(i) * 500000, Followers: 50000,
		}
		if err := db.UpsertKOL(ctx, &k); err != nil {
			t.Fatalf("UpsertKOL: %v", err)
		}
	}

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/v1/recommendations?campaign_id=%d", c.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data  []recommend.Recommendation `json:"data"`
		Count int                        `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 3 {
		t.Fatalf("count = %d, want 3", resp.Count)
	}
	// The cheapest candidate ranks first: rate card is a core metric.
	if resp.Data[0].Name != "kol-1" {
		t.Errorf("top recommendation = %s, want kol-1", resp.Data[0].Name)
	}
	for i := 1; i < len(resp.Data); i++ {
		if resp.Data[i].Score > resp.Data[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/recommendations?campaign_id=999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing campaign: status %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/recommendations", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing campaign_id: status %d, want 400", rec.Code)
	}
}

func TestRankingsEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		r := store.Report{
			CampaignID: 4, KOLID: int64(i),
			Likes: int64(i * 50), Comments: int64(i * 10), Shares: int64(i * 2),
			Saves: int64(i), Reach: int64(i * 5000),
		}
		if err := db.CreateReport(ctx, &r); err != nil {
			t.Fatalf("CreateReport: %v", err)
		}
	}
	if _, err := ranking.NewRecomputer(db).Recompute(ctx, 4); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	rec := doJSON(t, h, http.MethodGet, "/api/v1/rankings?campaign_id=4", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data []store.Report `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for i, r := range resp.Data {
		if r.Ranking != i+1 {
			t.Errorf("data[%d].ranking = %d, want %d", i, r.Ranking, i+1)
		}
	}
}
