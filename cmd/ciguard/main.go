package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/PASTER-G/CI-guard/internal/api"
	"github.com/PASTER-G/CI-guard/internal/ir"
	"github.com/PASTER-G/CI-guard/internal/loader"
	"github.com/PASTER-G/CI-guard/internal/reporting"
	"github.com/PASTER-G/CI-guard/internal/risk"
	"github.com/PASTER-G/CI-guard/internal/rules"
	"github.com/PASTER-G/CI-guard/internal/rulesdsl"
	"github.com/PASTER-G/CI-guard/internal/security"
	"github.com/PASTER-G/CI-guard/internal/shared"
	"github.com/PASTER-G/CI-guard/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "scan":
		scanCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "diff":
		diffCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	case "user":
		userCmd(os.Args[2:])
	case "version":
		fmt.Println("ciguard IR:", ir.Version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `ciguard – shift-left security scanner for infrastructure descriptions

Usage:
  ciguard scan   --path <records-or-plan> [--out <reports-dir>] [--db ./ciguard.db] [--severity LOW] [--rules pack.yaml] [--config ./configs/ciguard.yaml]
  ciguard report --in <scan.json> --out <reports-dir>
  ciguard diff   --base <scan.json> --head <scan.json> --out <reports-dir>
  ciguard serve  [--addr :8080] [--db ./ciguard.db] [--config ./configs/ciguard.yaml]
  ciguard user   add --username <name> [--role admin] [--db ./ciguard.db]
  ciguard version

Exit codes for scan: 0 clean, 1 violations found, 2 fatal load error.
`)
}

func scanCmd(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	inPath := fs.String("path", "", "Path to resource records or plan JSON (file or directory)")
	outDir := fs.String("out", "", "Output directory for report artifacts (optional)")
	dbPath := fs.String("db", "", "SQLite database path (waivers)")
	severity := fs.String("severity", "", "Minimum severity to report (LOW|MEDIUM|HIGH)")
	rulesPack := fs.String("rules", "", "Path to YAML rule pack (optional)")
	noWaivers := fs.Bool("no-waivers", false, "Do not apply stored waivers")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	// precedence: flags > config > defaults
	if *inPath == "" && len(cfg.Scan.Sources) > 0 {
		*inPath = cfg.Scan.Sources[0]
	}
	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *severity == "" {
		*severity = cfg.Scan.SeverityThreshold
	}
	if *rulesPack == "" {
		*rulesPack = cfg.Scan.RulesPack
	}
	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "scan: --path (or scan.sources in config) is required")
		os.Exit(2)
	}

	cat, err := buildCatalog(*severity, cfg.Scan.DisabledRules, *rulesPack)
	if err != nil {
		slog.Error("rule pack error", "err", err)
		os.Exit(2)
	}

	// Load
	scan, diags, err := loader.Load(*inPath)
	if err != nil {
		slog.Error("load error", "path", *inPath, "err", err)
		os.Exit(2)
	}
	for _, w := range diags.Warnings {
		slog.Warn("validation", "warning", w)
	}
	scan.ID = fmt.Sprintf("scan-%d", time.Now().Unix())
	scan.StartedAt = time.Now().UTC()
	scan.Context.SeverityThreshold = *severity
	scan.Context.DisabledRules = cfg.Scan.DisabledRules

	// Evaluate
	violations := rules.Evaluate(scan.Resources, cat)

	// Waivers (best effort: a broken waiver DB must not kill a CI scan)
	if !*noWaivers {
		if ws, ok := loadActiveWaivers(*dbPath); ok {
			var waived int
			violations, waived = rules.ApplyWaivers(violations, ws)
			scan.Context.WaiversApplied = waived
		}
	}

	scan.Violations = violations
	scan.Risk = risk.Summarize(violations)

	// Artifacts
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			slog.Error("cannot create out dir", "err", err)
		} else {
			jsonPath, _ := reporting.WriteJSON(scan.ID, *outDir, &scan)
			htmlPath, _ := reporting.WriteHTML(scan.ID, *outDir, &scan)
			slog.Info("scan artifacts written", "scan", scan.ID, "json", jsonPath, "html", htmlPath)
		}
	}

	// Report to stdout; the boolean drives the exit code
	text, hasViolations := reporting.RenderAlerts(violations)
	fmt.Print(text)
	fmt.Print(reporting.RenderSummary(&scan))
	if hasViolations {
		os.Exit(1)
	}
}

// loadActiveWaivers fetches the active waivers, warning and carrying on at
// every failure point so a broken waiver store never kills a CI scan.
func loadActiveWaivers(dbPath string) ([]storage.Waiver, bool) {
	db, err := storage.OpenSQLite(dbPath)
	if err != nil {
		slog.Warn("waiver db unavailable", "db", dbPath, "err", err)
		return nil, false
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Warn("waiver db schema error", "db", dbPath, "err", err)
		return nil, false
	}
	ws, err := db.ListWaivers(true)
	if err != nil {
		slog.Warn("waiver lookup failed", "db", dbPath, "err", err)
		return nil, false
	}
	return ws, true
}

func buildCatalog(severity string, disabled []string, pack string) (*rules.Catalog, error) {
	dm := map[string]bool{}
	for _, id := range disabled {
		dm[id] = true
	}
	rs := rules.Builtins()
	if pack != "" {
		custom, err := rulesdsl.Load(pack)
		if err != nil {
			return nil, err
		}
		rs = append(rs, custom...)
	}
	return rules.NewCatalog(rules.Options{
		SeverityThreshold: severity,
		Disabled:          dm,
	}, rs...), nil
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	inPath := fs.String("in", "", "Path to a scan JSON artifact")
	outDir := fs.String("out", "", "Output directory")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "report: --in is required")
		os.Exit(2)
	}

	scan, err := reporting.LoadScan(*inPath)
	if err != nil {
		slog.Error("load scan error", "err", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		slog.Error("cannot create out dir", "err", err)
		os.Exit(1)
	}
	htmlPath, err := reporting.WriteHTML(scan.ID, *outDir, &scan)
	if err != nil {
		slog.Error("write html error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Report OK\n  Scan: %s\n  HTML: %s\n", scan.ID, htmlPath)
}

func diffCmd(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	base := fs.String("base", "", "Base scan JSON artifact")
	head := fs.String("head", "", "Head scan JSON artifact")
	outDir := fs.String("out", "", "Output directory")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *base == "" || *head == "" {
		fmt.Fprintln(os.Stderr, "diff: --base and --head are required")
		os.Exit(2)
	}

	br, err := reporting.LoadScan(*base)
	if err != nil {
		slog.Error("load base scan error", "err", err)
		os.Exit(1)
	}
	hr, err := reporting.LoadScan(*head)
	if err != nil {
		slog.Error("load head scan error", "err", err)
		os.Exit(1)
	}
	path, err := reporting.WriteDiffJSON(*outDir, &br, &hr)
	if err != nil {
		slog.Error("write diff error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Diff OK\n  %s\n", path)
}

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	addr := fs.String("addr", "", "Listen address")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	logger := shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if *addr == "" {
		*addr = cfg.API.Addr
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}

	cat, err := buildCatalog(cfg.Scan.SeverityThreshold, cfg.Scan.DisabledRules, cfg.Scan.RulesPack)
	if err != nil {
		slog.Error("rule pack error", "err", err)
		os.Exit(1)
	}

	srv := &api.Server{
		Store:           db,
		UserStore:       db,
		Catalog:         cat,
		Logger:          logger,
		SessionDuration: time.Duration(cfg.API.SessionTTLMinutes) * time.Minute,
	}
	slog.Info("api listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, srv.Routes()); err != nil {
		slog.Error("serve error", "err", err)
		os.Exit(1)
	}
}

func userCmd(args []string) {
	if len(args) < 1 || args[0] != "add" {
		fmt.Fprintln(os.Stderr, "user: only 'add' is supported")
		os.Exit(2)
	}
	fs := flag.NewFlagSet("user add", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	username := fs.String("username", "", "Username")
	role := fs.String("role", "viewer", "Role (viewer|admin)")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args[1:])

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *username == "" {
		fmt.Fprintln(os.Stderr, "user add: --username is required")
		os.Exit(2)
	}
	password := os.Getenv("CIGUARD_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "user add: set CIGUARD_PASSWORD")
		os.Exit(2)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		slog.Error("hash error", "err", err)
		os.Exit(1)
	}
	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}
	id, err := db.CreateUser(*username, hash, *role)
	if err != nil {
		slog.Error("create user error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("User OK\n  ID: %d\n  Username: %s\n  Role: %s\n", id, *username, *role)
}
