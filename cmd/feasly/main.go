package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"feasly/backend/internal/analyzers"
	"feasly/backend/internal/config"
	"feasly/backend/internal/db"
	"feasly/backend/internal/docload"
	"feasly/backend/internal/feasibility"
	"feasly/backend/internal/providers"
	"feasly/backend/internal/report"
)

var (
	projectName string
	depthFlag   string
	policyFile  string
	jsonOutput  bool
	saveReport  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "feasly",
		Short: "Feasly - multi-agent project feasibility analysis",
		Long: `Feasly analyzes a project description across technology, cost, ethics,
and market dimensions and produces a feasibility verdict with risks,
opportunities, and next steps.`,
		SilenceUsage: true,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [file|description]",
		Short: "Run a feasibility analysis",
		Long: `Analyze a project description and print the feasibility report.
The argument is either a path to a description file (txt, md, json, pdf)
or the description text itself.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}
	analyzeCmd.Flags().StringVarP(&projectName, "name", "n", "", "Project name for the report")
	analyzeCmd.Flags().StringVarP(&depthFlag, "depth", "d", "standard", "Analysis depth (quick, standard, comprehensive, deep)")
	analyzeCmd.Flags().StringVarP(&policyFile, "policy", "p", "", "Optional policy file with weights and iteration overrides")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the decision as JSON instead of a console report")
	analyzeCmd.Flags().BoolVar(&saveReport, "save", false, "Persist the report to the configured database")
	rootCmd.AddCommand(analyzeCmd)

	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "List saved feasibility reports",
		Args:  cobra.NoArgs,
		RunE:  runReports,
	}
	rootCmd.AddCommand(reportsCmd)

	reportCmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Show one saved feasibility report",
		Args:  cobra.ExactArgs(1),
		RunE:  runReport,
	}
	reportCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the decision as JSON instead of a console report")
	rootCmd.AddCommand(reportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if policyFile != "" {
		policy, err := config.LoadPolicy(policyFile)
		if err != nil {
			return err
		}
		cfg = cfg.Apply(policy)
	}

	description, err := loadDescription(args[0])
	if err != nil {
		return err
	}
	depth, err := feasibility.ParseDepth(depthFlag)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(projectName)
	if name == "" {
		name = "Untitled Project"
	}
	request := feasibility.ProjectRequest{
		ProjectName: name,
		Description: description,
		Depth:       depth,
	}

	reasoner, searcher := providers.FromConfig(cfg)
	orch, err := feasibility.NewOrchestrator(reasoner, searcher, analyzers.Reasoned(reasoner), feasibility.Options{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		MaxIterations:       cfg.MaxIterations,
		ResearchFanOut:      cfg.ResearchFanOut,
		ResultsPerQuery:     cfg.ResultsPerQuery,
		Weights:             feasibility.WeightsFor(cfg.Weights),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AnalysisTimeout)
	defer cancel()

	decision, err := orch.Analyze(ctx, request)
	if err != nil {
		return err
	}

	if saveReport {
		saved, err := persist(ctx, cfg, request, decision)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved report %s\n", saved.ID)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), decision)
	}
	report.Print(cmd.OutOrStdout(), request.ProjectName, decision)
	return nil
}

func runReports(cmd *cobra.Command, _ []string) error {
	store, closeDB, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	summaries, err := store.List(cmd.Context(), 50)
	if err != nil {
		return err
	}
	report.PrintSummaries(cmd.OutOrStdout(), summaries)
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	store, closeDB, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	loaded, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), loaded)
	}
	report.Print(cmd.OutOrStdout(), loaded.ProjectName, loaded.Decision)
	return nil
}

// loadDescription treats an existing file path as a document to extract and
// anything else as the description text itself.
func loadDescription(arg string) (string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return docload.Read(arg)
	}
	description := strings.TrimSpace(arg)
	if description == "" {
		return "", fmt.Errorf("project description is empty")
	}
	return description, nil
}

func persist(ctx context.Context, cfg config.Config, request feasibility.ProjectRequest, decision feasibility.Decision) (report.Report, error) {
	database, err := db.Open(cfg)
	if err != nil {
		return report.Report{}, fmt.Errorf("open db: %w", err)
	}
	defer database.Close()
	if err := db.Migrate(ctx, database); err != nil {
		return report.Report{}, fmt.Errorf("migrate db: %w", err)
	}
	return report.NewStore(database).Save(ctx, request, decision)
}

func openStore(ctx context.Context) (report.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return report.Store{}, nil, fmt.Errorf("load config: %w", err)
	}
	database, err := db.Open(cfg)
	if err != nil {
		return report.Store{}, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Migrate(ctx, database); err != nil {
		database.Close()
		return report.Store{}, nil, fmt.Errorf("migrate db: %w", err)
	}
	return report.NewStore(database), func() { database.Close() }, nil
}

func printJSON(w io.Writer, payload any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
