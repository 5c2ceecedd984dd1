package main

import (
	"context"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"github.com/granada/granada-os/internal/config"
	"github.com/granada/granada-os/internal/db"
	"github.com/granada/granada-os/internal/match"
)

// catalog_report prints a per-source and per-sector breakdown of the
// opportunity catalog plus notification delivery totals.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, `
		SELECT source_name, COUNT(*),
			COUNT(*) FILTER (WHERE is_verified),
			COALESCE(SUM(amount_max), 0)
		FROM opportunities
		GROUP BY source_name
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		log.Fatal(err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Opportunity Catalog by Source")
	t.AppendHeader(table.Row{"Source", "Opportunities", "Verified", "Total Ceiling"})

	for rows.Next() {
		var source string
		var count, verified int
		var totalMax float64
		if err := rows.Scan(&source, &count, &verified, &totalMax); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}
		t.AppendRow(table.Row{source, count, verified, match.FormatAmount(totalMax)})
	}
	rows.Close()
	t.Render()

	rows, err = pool.Query(ctx, `
		SELECT sector, COUNT(*)
		FROM opportunities
		GROUP BY sector
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		log.Fatal(err)
	}

	st := table.NewWriter()
	st.SetOutputMirror(os.Stdout)
	st.SetTitle("Opportunities by Sector")
	st.AppendHeader(table.Row{"Sector", "Count"})

	for rows.Next() {
		var sector string
		var count int
		if err := rows.Scan(&sector, &count); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}
		st.AppendRow(table.Row{sector, count})
	}
	rows.Close()
	st.Render()

	var total, unread, clicked int
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE NOT is_read),
			COUNT(*) FILTER (WHERE is_clicked)
		FROM notifications`).Scan(&total, &unread, &clicked)
	if err != nil {
		log.Fatal(err)
	}

	nt := table.NewWriter()
	nt.SetOutputMirror(os.Stdout)
	nt.SetTitle("Notifications")
	nt.AppendHeader(table.Row{"Total", "Unread", "Clicked"})
	nt.AppendRow(table.Row{total, unread, clicked})
	nt.Render()
}
