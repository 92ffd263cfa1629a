package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/scenepin/scenepin/internal/repository"
)

// Imports the seed film list CSV into Postgres, upserting on the wikidata
// identifier so re-imports refresh catalog metadata in place.
//
// Expected columns:
//
//	title,wikipedia_title,wikidata_id,segment,goat_score,pageviews_12m,search_score
func main() {
	var (
		csvPath = flag.String("csv", "data/seed/output/seed_500.csv", "path to seed CSV")
		dryRun  = flag.Bool("dry-run", false, "parse and count rows without writing")
	)
	flag.Parse()

	_ = godotenv.Load()

	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("DB_URL is required")
	}

	file, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("open seed csv: %v", err)
	}
	defer file.Close()

	rows, err := parseSeedCSV(file)
	if err != nil {
		log.Fatalf("parse seed csv: %v", err)
	}

	if *dryRun {
		log.Printf("parsed %d seed rows", len(rows))
		return
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer conn.Close(ctx)

	repo := repository.NewWithQuerier(conn)
	for _, row := range rows {
		if _, err := repo.Films.UpsertSeed(ctx, row); err != nil {
			log.Fatalf("import %q: %v", row.Title, err)
		}
	}

	log.Printf("imported %d seed rows", len(rows))
}

func parseSeedCSV(r io.Reader) ([]repository.FilmCreateParams, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var rows []repository.FilmCreateParams
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		title := field(record, "title")
		if title == "" {
			continue
		}
		rows = append(rows, repository.FilmCreateParams{
			Title:          title,
			WikipediaTitle: optionalString(field(record, "wikipedia_title")),
			WikidataID:     optionalString(field(record, "wikidata_id")),
			SeedSegment:    optionalString(field(record, "segment")),
			GoatScore:      optionalInt(field(record, "goat_score")),
			Pageviews12m:   optionalInt64(field(record, "pageviews_12m")),
			SearchScore:    optionalFloat(field(record, "search_score")),
		})
	}
	return rows, nil
}

func optionalString(val string) *string {
	if val == "" {
		return nil
	}
	return &val
}

func optionalInt(val string) *int {
	if val == "" {
		return nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return nil
	}
	return &parsed
}

func optionalInt64(val string) *int64 {
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func optionalFloat(val string) *float64 {
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
