package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/korimako/wildlife/pkg/store"
)

type importerConfig struct {
	csvPath     string
	driver      string
	sqlitePath  string
	postgresURL string
	logLevel    string
}

func parseFlags() importerConfig {
	var cfg importerConfig

	flag.StringVar(&cfg.csvPath, "csv", "", "Path to the species CSV file (required)")
	flag.StringVar(&cfg.driver, "driver", "sqlite", "Storage driver (sqlite, postgres)")
	flag.StringVar(&cfg.sqlitePath, "sqlite-path", "wildlife.db", "SQLite database file")
	flag.StringVar(&cfg.postgresURL, "postgres-url", "", "PostgreSQL connection URL")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	flag.Parse()
	return cfg
}

func setupLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func main() {
	cfg := parseFlags()
	logger := setupLogger(cfg.logLevel)

	if cfg.csvPath == "" {
		logger.Fatal("missing required -csv flag")
	}

	storeCfg := store.DefaultConfig()
	storeCfg.Driver = cfg.driver
	storeCfg.SQLitePath = cfg.sqlitePath
	storeCfg.PostgresURL = cfg.postgresURL

	st, err := store.Open(storeCfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to open store")
	}
	defer st.Close()

	file, err := os.Open(cfg.csvPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to open CSV file")
	}
	defer file.Close()

	imported, skipped, err := importCSV(context.Background(), st, file, logger)
	if err != nil {
		logger.WithError(err).Fatal("import failed")
	}

	logger.WithFields(logrus.Fields{
		"imported": imported,
		"skipped":  skipped,
	}).Info("import complete")
}

// importCSV loads species records from a CSV stream. The first row must be a
// header naming the columns; unknown columns are ignored and rows without a
// species name are skipped.
func importCSV(ctx context.Context, st store.Store, r io.Reader, logger *logrus.Logger) (imported, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["species_name"]; !ok {
		return 0, 0, fmt.Errorf("CSV header missing species_name column")
	}

	field := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		sp := store.Species{
			SpeciesName:    field(row, "species_name"),
			ScientificName: field(row, "scientific_name"),
			SpeciesType:    field(row, "species_type"),
			OriginStatus:   field(row, "origin_status"),
			Predator:       field(row, "predator"),
			Prey:           field(row, "prey"),
			Status:         field(row, "status"),
			Family:         field(row, "family"),
			Numbers:        field(row, "numbers"),
			ImageURL:       field(row, "image_url"),
		}
		if sp.SpeciesName == "" {
			logger.WithField("line", line).Warn("skipping row without species name")
			skipped++
			continue
		}

		if _, err := st.InsertSpecies(ctx, &sp); err != nil {
			return imported, skipped, fmt.Errorf("failed to insert %q (line %d): %w", sp.SpeciesName, line, err)
		}
		imported++
		logger.WithField("species", sp.SpeciesName).Debug("imported record")
	}

	return imported, skipped, nil
}
