package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/rizkypratama/kolradar/internal/config"
	"github.com/rizkypratama/kolradar/internal/scheduler"
	"github.com/rizkypratama/kolradar/internal/store"
	"github.com/rizkypratama/kolradar/pkg/alert"
	"github.com/rizkypratama/kolradar/pkg/catalog"
	"github.com/rizkypratama/kolradar/pkg/ranking"
	"github.com/rizkypratama/kolradar/pkg/recommend"
	"github.com/rizkypratama/kolradar/pkg/server"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func runRecommend(campaignID int64, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	campaign, err := db.GetCampaign(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("get campaign %d: %w", campaignID, err)
	}
	tier, err := db.GetKOLType(ctx, campaign.KOLTypeID)
	if err != nil {
		return fmt.Errorf("get kol type %d: %w", campaign.KOLTypeID, err)
	}
	kols, err := db.ListKOLs(ctx, store.KOLListOpts{})
	if err != nil {
		return fmt.Errorf("list kols: %w", err)
	}

	pool := catalog.FilterCandidates(kols, *tier, campaign.TargetNiche, campaign.TargetAgeRange)
	fmt.Fprintf(os.Stderr, "%d of %d kols match the campaign filters\n", len(pool), len(kols))

	engine := recommend.NewEngine(cfg.Scoring.Bounds())
	recs, err := engine.Recommend(*campaign, pool)
	if err != nil {
		return fmt.Errorf("recommend for campaign %d: %w", campaignID, err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	if len(recs) == 0 {
		fmt.Println("no candidates matched the campaign filters")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tID\tNAME\tER\tREACH\tRATE CARD\tFOLLOWERS")
	for _, rec := range recs {
		fmt.Fprintf(w, "%.2f\t%d\t%s\t%.2f\t%.0f\t%.0f\t%d\n",
			rec.Score, rec.ID, rec.Name, rec.EngagementRate, rec.Reach, rec.RateCard, rec.Followers)
	}
	return w.Flush()
}

func runRank(campaignID int64, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ranker := ranking.NewRecomputer(db)
	ranked, err := ranker.Recompute(context.Background(), campaignID)
	if err != nil {
		return fmt.Errorf("rank campaign %d: %w", campaignID, err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tKOL\tFINAL SCORE\tS_I\tENGAGEMENT\tER\tCPE")
	for _, r := range ranked {
		fmt.Fprintf(w, "%d\t%d\t%.6f\t%.6f\t%d\t%.2f\t%.2f\n",
			r.Ranking, r.KOLID, r.FinalScore, r.SI, r.Engagement, r.ER, r.CPE)
	}
	return w.Flush()
}

func runImport(typesPath, kolsPath, campaignsPath, reportsPath string) error {
	if typesPath == "" && kolsPath == "" && campaignsPath == "" && reportsPath == "" {
		return errors.New("nothing to import: pass at least one of --kol-types, --kols, --campaigns, --reports")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if typesPath != "" {
		n, err := importKOLTypes(ctx, db, typesPath)
		if err != nil {
			return fmt.Errorf("import kol types: %w", err)
		}
		fmt.Fprintf(os.Stderr, "imported %d kol types\n", n)
	}
	if kolsPath != "" {
		n, err := importKOLs(ctx, db, kolsPath)
		if err != nil {
			return fmt.Errorf("import kols: %w", err)
		}
		fmt.Fprintf(os.Stderr, "imported %d kols\n", n)
	}
	if campaignsPath != "" {
		n, err := importCampaigns(ctx, db, campaignsPath)
		if err != nil {
			return fmt.Errorf("import campaigns: %w", err)
		}
		fmt.Fprintf(os.Stderr, "imported %d campaigns\n", n)
	}
	if reportsPath != "" {
		n, touched, err := importReports(ctx, db, reportsPath)
		if err != nil {
			return fmt.Errorf("import reports: %w", err)
		}
		fmt.Fprintf(os.Stderr, "imported %d reports\n", n)

		// Imported reports invalidate the affected campaigns' rankings.
		ranker := ranking.NewRecomputer(db)
		for _, id := range touched {
			if _, err := ranker.Recompute(ctx, id); err != nil {
				fmt.Fprintf(os.Stderr, "  campaign %d recompute error: %v\n", id, err)
				continue
			}
			fmt.Fprintf(os.Stderr, "  campaign %d re-ranked\n", id)
		}
	}

	return nil
}

// readCSV returns the records of a headered CSV file, header dropped.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	var rows [][]string
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func importKOLTypes(ctx context.Context, db store.Store, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	for i, row := range rows {
		if len(row) < 4 {
			return i, fmt.Errorf("row %d: want 4 columns, got %d", i+2, len(row))
		}
		t := catalog.KOLType{
			ID:           parseInt(row[0]),
			Name:         row[1],
			MinFollowers: parseInt(row[2]),
			MaxFollowers: parseInt(row[3]),
		}
		if err := db.UpsertKOLType(ctx, &t); err != nil {
			return i, err
		}
	}
	return len(rows), nil
}

func importKOLs(ctx context.Context, db store.Store, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	for i, row := range rows {
		if len(row) < 10 {
			return i, fmt.Errorf("row %d: want 10 columns, got %d", i+2, len(row))
		}
		k := catalog.KOL{
			ID:             parseInt(row[0]),
			Name:           row[1],
			Niche:          row[2],
			AgeRange:       row[3],
			EngagementRate: parseFloat(row[4]),
			Reach:          parseFloat(row[5]),
			AudienceMale:   parseFloat(row[6]),
			AudienceFemale: parseFloat(row[7]),
			RateCard:       parseFloat(row[8]),
			Followers:      parseInt(row[9]),
		}
		if err := db.UpsertKOL(ctx, &k); err != nil {
			return i, err
		}
	}
	return len(rows), nil
}

func importCampaigns(ctx context.Context, db store.Store, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	for i, row := range rows {
		if len(row) < 9 {
			return i, fmt.Errorf("row %d: want 9 columns, got %d", i+2, len(row))
		}
		c := catalog.Campaign{
			Name:             row[0],
			KOLTypeID:        parseInt(row[1]),
			Budget:           parseFloat(row[2]),
			TargetNiche:      row[3],
			TargetEngagement: parseFloat(row[4]),
			TargetReach:      parseFloat(row[5]),
			TargetGender:     catalog.Gender(row[6]),
			TargetGenderMin:  parseFloat(row[7]),
			TargetAgeRange:   row[8],
		}
		if err := db.CreateCampaign(ctx, &c); err != nil {
			return i, err
		}
	}
	return len(rows), nil
}

func importReports(ctx context.Context, db store.Store, path string) (int, []int64, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, nil, err
	}

	seen := make(map[int64]bool)
	var touched []int64

	for i, row := range rows {
		if len(row) < 8 {
			return i, touched, fmt.Errorf("row %d: want 8 columns, got %d", i+2, len(row))
		}
		r := store.Report{
			CampaignID: parseInt(row[0]),
			KOLID:      parseInt(row[1]),
			Likes:      parseInt(row[2]),
			Comments:   parseInt(row[3]),
			Shares:     parseInt(row[4]),
			Saves:      parseInt(row[5]),
			Reach:      parseInt(row[6]),
			Cost:       parseFloat(row[7]),
		}
		if err := db.CreateReport(ctx, &r); err != nil {
			return i, touched, err
		}
		if !seen[r.CampaignID] {
			seen[r.CampaignID] = true
			touched = append(touched, r.CampaignID)
		}
	}
	return len(rows), touched, nil
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	engine := recommend.NewEngine(cfg.Scoring.Bounds())
	ranker := ranking.NewRecomputer(db)

	srv := server.New(db, engine, ranker, port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	engine := recommend.NewEngine(cfg.Scoring.Bounds())
	ranker := ranking.NewRecomputer(db)
	alertMgr := buildAlertManager(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(db, ranker, alertMgr, cfg.Schedule.ParseSweepInterval())

	// Start scheduler in background.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	srv := server.New(db, engine, ranker, port)
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	return srv.ListenAndServe()
}
