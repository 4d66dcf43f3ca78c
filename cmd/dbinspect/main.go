// Package main inspects a ModelShare store: document counts and the
// consistency of the user/model rights mirror.
//
// Usage:
//
//	STORE_DRIVER=badger STORE_PATH=~/ModelShare/data/badger go run ./cmd/dbinspect
//	go run ./cmd/dbinspect --repair   # also restore the mirror
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/modelshare/modelshare-server/internal/config"
	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/service"
	"github.com/modelshare/modelshare-server/internal/store"
	"github.com/modelshare/modelshare-server/internal/store/sqlite"
)

var (
	repair  = flag.Bool("repair", false, "Repair the rights mirror after auditing")
	verbose = flag.Bool("v", false, "List every discrepancy")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	fmt.Println("=== Store Inspection ===")
	fmt.Printf("Driver: %s\nPath:   %s\n\n", cfg.Store.Driver, cfg.Store.Path)

	comments, err := st.ListComments(ctx, store.Query[domain.Comment]{})
	if err != nil {
		log.Fatalf("Failed to list comments: %v", err)
	}
	files, err := st.ListFiles(ctx, store.Query[domain.File]{})
	if err != nil {
		log.Fatalf("Failed to list files: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	rights := service.NewRightsService(st, service.NoopEmitter{}, logger)

	report, err := rights.Audit(ctx)
	if err != nil {
		log.Fatalf("Audit failed: %v", err)
	}

	fmt.Printf("Users:    %d\n", report.UsersChecked)
	fmt.Printf("Models:   %d\n", report.ModelsChecked)
	fmt.Printf("Comments: %d\n", len(comments))
	fmt.Printf("Files:    %d\n", len(files))
	fmt.Println()

	printReport(report)

	if !*repair || report.Consistent() {
		return
	}

	result, err := rights.Repair(ctx)
	if err != nil {
		log.Fatalf("Repair failed: %v", err)
	}
	fmt.Printf("\nRepaired %d entries\n", result.Fixed)
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.Store.Driver == config.DriverSQLite {
		return sqlite.Open(cfg.Store.Path, nil)
	}
	return store.New(cfg.Store.Path, nil)
}

func printReport(report *service.AuditReport) {
	if report.Consistent() {
		fmt.Println("Rights mirror is consistent")
		return
	}

	byKind := make(map[service.DiscrepancyKind]int)
	for _, d := range report.Discrepancies {
		byKind[d.Kind]++
	}

	fmt.Printf("Rights mirror has %d discrepancies:\n", len(report.Discrepancies))
	for kind, n := range byKind {
		fmt.Printf("  %-20s %d\n", kind, n)
	}

	if !*verbose {
		return
	}
	fmt.Println()
	for _, d := range report.Discrepancies {
		fmt.Printf("  %s: user=%s model=%s right=%s side=%s\n", d.Kind, d.UserID, d.ModelID, d.Right, d.Side)
	}
}
