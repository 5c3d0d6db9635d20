package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kass/go-geo-bearing/pkg/geo"
	"github.com/kass/go-geo-bearing/pkg/logger"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/planner"
	"github.com/kass/go-geo-bearing/pkg/rtree"
	"go.uber.org/zap"
)

type BenchmarkResult struct {
	QueryType     string
	TotalQueries  int
	TotalDuration time.Duration
	AvgDuration   time.Duration
	QueriesPerSec float64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	TotalResults  int64
	AvgResults    float64
}

// operation runs one query and reports how many results it produced
type operation func(r *rand.Rand) int

func main() {
	var (
		queryType  = flag.String("t", "mixed", "Operation: great-circle, rhumb, destination, view, nearest, mixed")
		numQueries = flag.Int("n", 100000, "Number of operations to run")
		workers    = flag.Int("w", runtime.NumCPU(), "Number of concurrent workers")
		indexFile  = flag.String("i", "", "Gazetteer file (required for nearest)")
		k          = flag.Int("k", 10, "Number of nearest places")
		logLevel   = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	log, err := logger.New(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	ops := map[string]operation{
		"great-circle": func(r *rand.Rand) int {
			_ = geo.InitialBearing(randomPoint(r), randomPoint(r))
			return 1
		},
		"rhumb": func(r *rand.Rand) int {
			_ = geo.RhumbBearing(randomPoint(r), randomPoint(r))
			return 1
		},
		"destination": func(r *rand.Rand) int {
			_ = geo.DestinationPoint(randomPoint(r), r.Float64()*360, r.Float64()*20_000_000)
			return 1
		},
	}

	p := planner.New(planner.DefaultOptions(), nil, nil, zap.NewNop())
	ops["view"] = func(r *rand.Rand) int {
		view, err := p.FromPoint(randomPoint(r), "", models.GreatCircle)
		if err != nil {
			return 0
		}
		return len(view.Circle)
	}

	if *indexFile != "" {
		index := rtree.NewPlaceIndex()
		if err := index.LoadFromFile(*indexFile); err != nil {
			log.Fatal("Failed to load gazetteer", zap.Error(err))
		}
		log.Info("Gazetteer loaded", zap.Int64("places", index.Count()))
		ops["nearest"] = func(r *rand.Rand) int {
			return len(index.NearestPlaces(randomPoint(r), *k))
		}
	}

	ops["mixed"] = mixed(ops)

	op, ok := ops[*queryType]
	if !ok {
		log.Fatal("Unknown or unavailable operation", zap.String("type", *queryType))
	}

	log.Info("Running benchmark",
		zap.String("type", *queryType),
		zap.Int("operations", *numQueries),
		zap.Int("workers", *workers))

	result := runBenchmark(*queryType, *numQueries, *workers, op)

	fmt.Println("\n=== Benchmark Results ===")
	fmt.Printf("Query Type: %s\n", result.QueryType)
	fmt.Printf("Total Queries: %d\n", result.TotalQueries)
	fmt.Printf("Total Duration: %v\n", result.TotalDuration)
	fmt.Printf("Average Duration: %v\n", result.AvgDuration)
	fmt.Printf("Queries/Second: %.2f\n", result.QueriesPerSec)
	fmt.Printf("Min Duration: %v\n", result.MinDuration)
	fmt.Printf("Max Duration: %v\n", result.MaxDuration)
	fmt.Printf("Total Results: %d\n", result.TotalResults)
	fmt.Printf("Avg Results/Query: %.2f\n", result.AvgResults)
	fmt.Printf("Workers Used: %d\n", *workers)
	fmt.Printf("CPU Cores: %d\n", runtime.NumCPU())
}

func randomPoint(r *rand.Rand) models.GeoPoint {
	return models.GeoPoint{
		Lat: r.Float64()*180 - 90,
		Lng: r.Float64()*360 - 180,
	}
}

// mixed picks one of the registered operations at random per query
func mixed(ops map[string]operation) operation {
	list := make([]operation, 0, len(ops))
	for _, op := range ops {
		list = append(list, op)
	}
	return func(r *rand.Rand) int {
		return list[r.Intn(len(list))](r)
	}
}

func runBenchmark(name string, numQueries, workers int, op operation) BenchmarkResult {
	if workers < 1 {
		workers = 1
	}

	var (
		totalResults int64
		completed    int64
		minDuration  = time.Hour
		maxDuration  time.Duration
		totalDur     time.Duration
		mu           sync.Mutex
	)

	startTime := time.Now()

	queryCh := make(chan int, workers*4)
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			r := rand.New(rand.NewSource(rand.Int63()))

			var localMin, localMax, localTotal time.Duration
			localMin = time.Hour
			for range queryCh {
				queryStart := time.Now()
				n := op(r)
				d := time.Since(queryStart)

				atomic.AddInt64(&totalResults, int64(n))
				atomic.AddInt64(&completed, 1)
				localTotal += d
				if d < localMin {
					localMin = d
				}
				if d > localMax {
					localMax = d
				}
			}

			mu.Lock()
			totalDur += localTotal
			if localMin < minDuration {
				minDuration = localMin
			}
			if localMax > maxDuration {
				maxDuration = localMax
			}
			mu.Unlock()
		}()
	}

	for i := 0; i < numQueries; i++ {
		queryCh <- i
	}
	close(queryCh)

	wg.Wait()
	totalDuration := time.Since(startTime)

	result := BenchmarkResult{
		QueryType:     name,
		TotalQueries:  int(completed),
		TotalDuration: totalDuration,
		MinDuration:   minDuration,
		MaxDuration:   maxDuration,
		TotalResults:  totalResults,
	}
	if completed > 0 {
		result.AvgDuration = totalDur / time.Duration(completed)
		result.QueriesPerSec = float64(completed) / totalDuration.Seconds()
		result.AvgResults = float64(totalResults) / float64(completed)
	}
	return result
}
