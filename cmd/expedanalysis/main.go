package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/expedanalysis/internal/analytics"
	"github.com/TobiSchelling/expedanalysis/internal/auth"
	"github.com/TobiSchelling/expedanalysis/internal/config"
	"github.com/TobiSchelling/expedanalysis/internal/database"
	"github.com/TobiSchelling/expedanalysis/internal/export"
	"github.com/TobiSchelling/expedanalysis/internal/logging"
	"github.com/TobiSchelling/expedanalysis/internal/pipeline"
	"github.com/TobiSchelling/expedanalysis/internal/preprocess"
	"github.com/TobiSchelling/expedanalysis/internal/reviews"
	"github.com/TobiSchelling/expedanalysis/internal/server"
	"github.com/TobiSchelling/expedanalysis/internal/topicmodel"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	envFile    string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "expedanalysis",
	Short:   "Customer review analytics for logistics companies",
	Long:    "ExpedAnalysis explores labelled delivery reviews by province: topic distribution, word cloud, n-grams and ranked insights, plus topic inference for new reviews.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(nil, "INFO", verbose)

		if err := config.LoadEnv(envFile); err != nil {
			return err
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logging.Setup(nil, cfg.Logging.Level, verbose)
		log.Debug().Str("config", path).Msg("config loaded")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (default ./.env if present)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("expedanalysis", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/expedanalysis/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to point at your review file and topic model, then run 'expedanalysis import'.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and model status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Database: %s\n\n", db.Path())
		fmt.Println("Review store:")
		fmt.Printf("  Backend: %s\n", cfg.Store.Backend)
		fmt.Printf("  Reviews (imported): %d\n", stats.Reviews)
		fmt.Printf("  Companies: %d\n", stats.Companies)
		fmt.Printf("  Provinces: %d\n", stats.Provinces)
		fmt.Printf("  Topics: %d\n", stats.Topics)
		fmt.Println("\nAccounts:")
		fmt.Printf("  Users: %d\n", stats.Users)
		fmt.Printf("  Active sessions: %d\n", stats.ActiveSessions)
		fmt.Println("\nTopic model:")
		modelPath := cfg.ModelPath()
		if m, err := topicmodel.Load(modelPath); err != nil {
			fmt.Printf("  %s: not loadable (%v)\n", modelPath, err)
		} else {
			fmt.Printf("  %s: %d topics\n", modelPath, m.NumTopics())
		}
		fmt.Printf("  Inferences logged: %d\n", stats.Inferences)
		return nil
	},
}

// --- import command ---

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the review store with a CSV or XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := reviews.LoadFile(args[0])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ReplaceReviews(rows)
		if err != nil {
			return fmt.Errorf("importing reviews: %w", err)
		}
		fmt.Printf("Imported %d reviews from %s\n", n, args[0])
		if cfg.Store.Backend != config.BackendSQLite {
			fmt.Println("Note: store.backend is not 'sqlite'; the dashboard reads the file directly.")
		}
		return nil
	},
}

// --- users command ---

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage dashboard accounts",
}

var userPassword string

var usersAddCmd = &cobra.Command{
	Use:   "add [email] [company]",
	Short: "Add an account for a company",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		password := userPassword
		if password == "" {
			fmt.Print("Password: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("reading password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		id, err := db.CreateUser(args[0], hash, args[1])
		if err != nil {
			return err
		}
		if id == 0 {
			return fmt.Errorf("user %s already exists", args[0])
		}
		fmt.Printf("Added user [%d]: %s (%s)\n", id, args[0], args[1])
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		users, err := db.ListUsers()
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No users. Add one with: expedanalysis users add")
			return nil
		}
		for _, u := range users {
			fmt.Printf("  [%d] %s  %s\n", u.ID, u.Email, u.Company)
		}
		return nil
	},
}

var usersRemoveCmd = &cobra.Command{
	Use:   "remove [email]",
	Short: "Remove an account and its sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		removed, err := db.DeleteUser(args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("user %s not found", args[0])
		}
		fmt.Printf("Removed user: %s\n", args[0])
		return nil
	},
}

func init() {
	usersAddCmd.Flags().StringVar(&userPassword, "password", "", "Password (prompted when omitted)")
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersRemoveCmd)
}

// --- train command ---

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the topic model on the review store and save the artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		rows, err := reviewSource(db).Reviews()
		if err != nil {
			return err
		}
		var docs []string
		for _, r := range rows {
			if strings.TrimSpace(r.ProcessedReviews) != "" {
				docs = append(docs, r.ProcessedReviews)
			}
		}

		fmt.Printf("Training %d topics on %d reviews...\n", len(cfg.Model.Labels), len(docs))
		artifact, err := topicmodel.Train(docs, cfg.Model.Labels, topicmodel.TrainOptions{
			Iterations:           cfg.Model.Iterations,
			TransformationPasses: cfg.Model.TransformationPasses,
			Stopwords:            cfg.Preprocess.ExtraStopwords,
		})
		if err != nil {
			return err
		}

		out := cfg.ModelPath()
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("creating model directory: %w", err)
		}
		if err := artifact.Save(out); err != nil {
			return err
		}
		fmt.Printf("Saved model (%d words) to %s\n", len(artifact.Vocabulary), out)
		return nil
	},
}

// --- report command ---

var (
	reportCompany  string
	reportProvince string
	reportXLSX     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the analysis for a company and province",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe, err := buildPipeline(db)
		if err != nil {
			return err
		}

		report, err := pipe.Run(analytics.Criteria{Company: reportCompany, Province: reportProvince})
		if err != nil {
			return err
		}

		for i, step := range report.Steps {
			fmt.Printf("Step %d/%d: %s\n", i+1, len(report.Steps), step.Name)
			fmt.Printf("  %s\n", step.Summary)
		}
		printReport(report)

		if reportXLSX != "" {
			f, err := os.Create(reportXLSX)
			if err != nil {
				return fmt.Errorf("creating %s: %w", reportXLSX, err)
			}
			defer f.Close()
			if err := export.WriteReport(f, report, cfg.Language()); err != nil {
				return fmt.Errorf("writing workbook: %w", err)
			}
			fmt.Printf("\nWorkbook written to %s\n", reportXLSX)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportCompany, "company", "", "Company (tenant) to analyse")
	reportCmd.Flags().StringVar(&reportProvince, "province", analytics.AllProvinces, "Province, or 'All'")
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "Also write the report to this .xlsx file")
	reportCmd.MarkFlagRequired("company")
}

func printReport(r *pipeline.Report) {
	fmt.Printf("\nFiltered Data: %d reviews\n", r.Count)
	if r.Empty {
		fmt.Println("No reviews found.")
		return
	}

	fmt.Println("\nTopics:")
	for _, tc := range r.Distribution {
		fmt.Printf("  %-32s %5d  %5.1f%%\n", tc.Topic, tc.Count, r.Distribution.Percent(tc.Topic))
	}
	if len(r.Insights) > 0 {
		fmt.Println()
		for _, in := range r.Insights {
			fmt.Println(in.Narrative)
		}
	}
	if r.Diagnosis != "" {
		fmt.Printf("\n%s\n", r.Diagnosis)
	}

	fmt.Println("\nTop Bigrams:")
	for _, ng := range r.Bigrams {
		fmt.Printf("  %-40s %d\n", ng.String(), ng.Count)
	}
	fmt.Println("\nTop Trigrams:")
	for _, ng := range r.Trigrams {
		fmt.Printf("  %-40s %d\n", ng.String(), ng.Count)
	}
	for _, block := range r.Advice {
		fmt.Printf("\n%s\n", block)
	}
}

// --- infer command ---

var inferCompany string

var inferCmd = &cobra.Command{
	Use:   "infer [text]",
	Short: "Score review text against the topic model",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe, err := buildPipeline(db)
		if err != nil {
			return err
		}

		inf, err := pipe.Infer(inferCompany, strings.Join(args, " "))
		var pe *pipeline.PreprocessError
		switch {
		case errors.Is(err, pipeline.ErrEmptyInput):
			return err
		case errors.As(err, &pe):
			return fmt.Errorf("could not process text: %s", pe.Error())
		case err != nil:
			return err
		}

		fmt.Printf("Processed: %s\n\n", inf.Processed)
		for _, t := range inf.Topics {
			fmt.Printf("  %-32s %.4f\n", t.Label, t.Probability)
		}
		fmt.Printf("\nMost likely: %s\n", inf.Top().Label)
		return nil
	},
}

func init() {
	inferCmd.Flags().StringVar(&inferCompany, "company", "", "Company to log the inference under")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe, err := buildPipeline(db)
		if err != nil {
			return err
		}

		ttl, err := cfg.SessionTTL()
		if err != nil {
			return err
		}
		if n, err := db.PurgeExpiredSessions(time.Now()); err != nil {
			log.Warn().Err(err).Msg("purging expired sessions")
		} else if n > 0 {
			log.Info().Int64("sessions", n).Msg("purged expired sessions")
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(server.Options{
			Pipeline: pipe,
			Auth:     auth.NewManager(db, ttl, cfg.Server.CookieSecure),
			Limiter:  auth.NewLimiter(cfg.Server.LoginPerMin),
			History:  db,
		}, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on (overrides config)")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "expedanalysis.db")
	return database.Open(dbPath)
}

// reviewSource picks the review store for the configured backend.
func reviewSource(db *database.DB) reviews.Source {
	if cfg.Store.Backend == config.BackendFile {
		return reviews.FileSource{Path: cfg.StorePath()}
	}
	return db
}

// buildPipeline loads the topic model and assembles the analytics context.
func buildPipeline(db *database.DB) (*pipeline.Pipeline, error) {
	model, err := topicmodel.Load(cfg.ModelPath())
	if err != nil {
		return nil, fmt.Errorf("loading topic model (run 'expedanalysis train' first?): %w", err)
	}
	if got, want := model.Labels(), cfg.Model.Labels; strings.Join(got, "\x00") != strings.Join(want, "\x00") {
		log.Warn().Strs("model", got).Strs("config", want).Msg("model labels differ from config; using the model's")
	}

	cats, err := cfg.CategoryMap()
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Options{
		Source:       reviewSource(db),
		Preprocessor: preprocess.New(cfg.Preprocess.ExtraStopwords, cfg.Preprocess.MaxInputBytes),
		Model:        model,
		Categories:   cats,
		Variant: pipeline.Variant{
			Language: cfg.Language(),
			Chart:    pipeline.Chart(cfg.Presentation.Chart),
			Advisory: cfg.Presentation.Advisory,
		},
		Recorder: db,
	})
}
