package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/kass/go-geo-bearing/pkg/logger"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/postgis"
	"github.com/kass/go-geo-bearing/pkg/rtree"
	"github.com/kass/go-geo-bearing/pkg/validate"
	"go.uber.org/zap"
)

func main() {
	var (
		inputFile  = flag.String("i", "", "CSV file with id,name,lat,lng rows (header optional)")
		outputFile = flag.String("o", "data/gazetteer.gob", "Output gazetteer file")
		postgisDSN = flag.String("postgis", "", "Also import into this PostGIS database")
		logLevel   = flag.String("log-level", "info", "Log level")
		// Synthetic places for benchmarking when no CSV is given
		numRandom = flag.Int("random", 0, "Generate this many synthetic places instead of reading CSV")
		workers   = flag.Int("w", runtime.NumCPU(), "Number of worker goroutines for -random")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "Random seed for -random")
	)
	flag.Parse()

	log, err := logger.New(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	var places []*models.Place
	switch {
	case *inputFile != "":
		f, err := os.Open(*inputFile)
		if err != nil {
			log.Fatal("Failed to open input", zap.Error(err))
		}
		places, err = readPlaces(f, log)
		f.Close()
		if err != nil {
			log.Fatal("Failed to read places", zap.Error(err))
		}
	case *numRandom > 0:
		rand.Seed(*seed)
		places = generateRandomPlaces(*numRandom, *workers)
	default:
		log.Fatal("Nothing to load: pass -i places.csv or -random N")
	}
	log.Info("Places read", zap.Int("count", len(places)))

	startTime := time.Now()
	index := rtree.NewPlaceIndex()
	if err := index.IndexPlaces(places); err != nil {
		log.Fatal("Failed to index places", zap.Error(err))
	}
	log.Info("Gazetteer built",
		zap.Int64("indexed", index.Count()),
		zap.Duration("elapsed", time.Since(startTime)))

	if err := os.MkdirAll(filepath.Dir(*outputFile), 0o755); err != nil {
		log.Fatal("Failed to create output directory", zap.Error(err))
	}
	if err := index.SaveToFile(*outputFile); err != nil {
		log.Fatal("Failed to save gazetteer", zap.Error(err))
	}
	if info, err := os.Stat(*outputFile); err == nil {
		log.Info("Gazetteer saved",
			zap.String("file", *outputFile),
			zap.String("size", fmt.Sprintf("%.2f MB", float64(info.Size())/(1024*1024))))
	}

	if *postgisDSN != "" {
		if err := importPostGIS(*postgisDSN, places, log); err != nil {
			log.Fatal("PostGIS import failed", zap.Error(err))
		}
	}

	fmt.Printf("Loaded %d places into %s\n", index.Count(), *outputFile)
}

// readPlaces parses id,name,lat,lng rows. A first row whose latitude does
// not parse is treated as a header; other bad rows are skipped with a warning.
func readPlaces(r io.Reader, log *zap.Logger) ([]*models.Place, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true

	var places []*models.Place
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		place, err := parseRecord(record)
		if err != nil {
			if line == 1 {
				continue
			}
			log.Warn("Skipping row", zap.Int("line", line), zap.Error(err))
			continue
		}
		places = append(places, place)
	}
	return places, nil
}

func parseRecord(record []string) (*models.Place, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return nil, fmt.Errorf("bad latitude %q", record[2])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil {
		return nil, fmt.Errorf("bad longitude %q", record[3])
	}
	loc := models.GeoPoint{Lat: lat, Lng: lng}
	if err := validate.Point(loc); err != nil {
		return nil, err
	}
	return &models.Place{
		ID:       strings.TrimSpace(record[0]),
		Name:     strings.TrimSpace(record[1]),
		Location: &loc,
	}, nil
}

func importPostGIS(dsn string, places []*models.Place, log *zap.Logger) error {
	store, err := postgis.NewPlaceStore(dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.InitSchema(ctx); err != nil {
		return err
	}

	start := time.Now()
	n, err := store.BulkInsertPlaces(ctx, places)
	if err != nil {
		return err
	}
	if err := store.CreateIndexes(ctx); err != nil {
		return err
	}
	log.Info("PostGIS import done", zap.Int("inserted", n), zap.Duration("elapsed", time.Since(start)))

	if stats, err := store.Stats(ctx); err == nil {
		log.Info("PostGIS stats", zap.Any("stats", stats))
	}
	return nil
}

func generateRandomPlaces(n, workers int) []*models.Place {
	if workers < 1 {
		workers = 1
	}
	places := make([]*models.Place, n)

	type workRange struct {
		start, end int
	}
	work := make(chan workRange, workers)
	done := make(chan bool, workers)

	for w := 0; w < workers; w++ {
		go func() {
			// per-worker generator to avoid lock contention
			r := rand.New(rand.NewSource(rand.Int63()))
			for wr := range work {
				for i := wr.start; i < wr.end; i++ {
					places[i] = &models.Place{
						ID:   fmt.Sprintf("place_%d", i),
						Name: fmt.Sprintf("Place %d", i),
						Location: &models.GeoPoint{
							Lat: r.Float64()*170 - 85,
							Lng: r.Float64()*360 - 180,
						},
					}
				}
			}
			done <- true
		}()
	}

	perWorker, remainder := n/workers, n%workers
	start := 0
	for w := 0; w < workers; w++ {
		size := perWorker
		if w < remainder {
			size++
		}
		work <- workRange{start: start, end: start + size}
		start += size
	}
	close(work)

	for w := 0; w < workers; w++ {
		<-done
	}
	return places
}
