// Command genmock reads raw DONKI JSON dumps and generates fixture files for
// test suites. It runs the actual domain engine so enriched fixtures always
// match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -raw-dir data/mock/raw \
//	  -out data/mock/snapshot.json
//
// The raw directory is expected to contain cme.json, flr.json, and ips.json,
// each holding the corresponding DONKI feed response for one window.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/TNRProtography/solar-dashboard/internal/domain"
	"github.com/TNRProtography/solar-dashboard/internal/pipeline"
)

var fixedRefreshTime = time.Date(2024, time.March, 4, 6, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rawDir := flag.String("raw-dir", "", "directory containing raw DONKI feed JSON files")
	out := flag.String("out", "", "output path for the snapshot fixture")
	flag.Parse()

	if *rawDir == "" || *out == "" {
		flag.Usage()
		return errors.New("missing required flags: -raw-dir, -out")
	}

	cmes, err := readCMEs(filepath.Join(*rawDir, "cme.json"))
	if err != nil {
		return err
	}
	flares, err := readFlares(filepath.Join(*rawDir, "flr.json"))
	if err != nil {
		return err
	}
	shocks, err := readShocks(filepath.Join(*rawDir, "ips.json"))
	if err != nil {
		return err
	}

	log.Printf("cme: %d, flr: %d, ips: %d records", len(cmes), len(flares), len(shocks))

	window := pipeline.Window{
		Start: fixedRefreshTime.AddDate(0, 0, -3),
		End:   fixedRefreshTime,
	}
	snap := pipeline.BuildSnapshot(cmes, flares, shocks, window, fixedRefreshTime)

	if err := writeJSON(*out, snap); err != nil {
		return fmt.Errorf("writing snapshot fixture: %w", err)
	}
	log.Printf("wrote snapshot fixture: %s", *out)

	printStats(snap)
	return nil
}

func readCMEs(path string) ([]domain.CME, error) {
	var raw []domain.RawCME
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	cmes := make([]domain.CME, len(raw))
	for i, r := range raw {
		cmes[i] = domain.ParseCME(r)
	}
	return cmes, nil
}

func readFlares(path string) ([]domain.Flare, error) {
	var raw []domain.RawFlare
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	flares := make([]domain.Flare, len(raw))
	for i, r := range raw {
		flares[i] = domain.ParseFlare(r)
	}
	return flares, nil
}

func readShocks(path string) ([]domain.Shock, error) {
	var raw []domain.RawShock
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	shocks := make([]domain.Shock, len(raw))
	for i, r := range raw {
		shocks[i] = domain.ParseShock(r)
	}
	return shocks, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printStats(snap pipeline.Snapshot) {
	byScore := map[domain.ImpactScore]int{}
	for _, cme := range snap.EarthDirected {
		byScore[cme.ImpactScore]++
	}
	log.Printf("earth-directed: %d (score 1: %d, score 2: %d, score 3: %d), other: %d",
		len(snap.EarthDirected),
		byScore[domain.ScoreArrivalPredicted],
		byScore[domain.ScoreEarthDirected],
		byScore[domain.ScoreEarthMention],
		len(snap.Other))
	log.Printf("flares: %d, shocks: %d", len(snap.Flares), len(snap.Shocks))
}
