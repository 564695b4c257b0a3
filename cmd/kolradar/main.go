package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kolradar",
		Short: "Score KOL candidates against campaign targets and rank campaign performance",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(recommendCmd())
	root.AddCommand(rankCmd())
	root.AddCommand(importCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func recommendCmd() *cobra.Command {
	var (
		campaignID int64
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend the best-matching KOLs for a campaign",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(campaignID, jsonOutput)
		},
	}

	cmd.Flags().Int64Var(&campaignID, "campaign", 0, "campaign id (required)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON with full scoring breakdown")
	cmd.MarkFlagRequired("campaign")
	return cmd
}

func rankCmd() *cobra.Command {
	var (
		campaignID int64
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Recompute and show a campaign's performance ranking",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(campaignID, jsonOutput)
		},
	}

	cmd.Flags().Int64Var(&campaignID, "campaign", 0, "campaign id (required)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.MarkFlagRequired("campaign")
	return cmd
}

func importCmd() *cobra.Command {
	var (
		typesPath     string
		kolsPath      string
		campaignsPath string
		reportsPath   string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import KOL types, KOLs, campaigns and reports from CSV files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(typesPath, kolsPath, campaignsPath, reportsPath)
		},
	}

	cmd.Flags().StringVar(&typesPath, "kol-types", "", "kol types CSV (id,name,min_followers,max_followers)")
	cmd.Flags().StringVar(&kolsPath, "kols", "", "kols CSV (id,name,niche,age_range,er,reach,audience_male,audience_female,rate_card,followers)")
	cmd.Flags().StringVar(&campaignsPath, "campaigns", "", "campaigns CSV (name,kol_type_id,budget,niche,target_er,target_reach,gender,gender_min,age_range)")
	cmd.Flags().StringVar(&reportsPath, "reports", "", "reports CSV (campaign_id,kol_id,likes,comments,shares,saves,reach,cost)")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with ranking sweep scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
