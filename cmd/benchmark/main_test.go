package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunBenchmark(t *testing.T) {
	result := runBenchmark("count", 1000, 4, func(r *rand.Rand) int { return 2 })

	assert.Equal(t, "count", result.QueryType)
	assert.Equal(t, 1000, result.TotalQueries)
	assert.Equal(t, int64(2000), result.TotalResults)
	assert.Equal(t, 2.0, result.AvgResults)
	assert.LessOrEqual(t, result.MinDuration, result.MaxDuration)
	assert.Greater(t, result.QueriesPerSec, 0.0)
}

func TestRunBenchmarkNoQueries(t *testing.T) {
	result := runBenchmark("empty", 0, 0, func(r *rand.Rand) int { return 1 })
	assert.Equal(t, 0, result.TotalQueries)
	assert.Zero(t, result.AvgDuration)
}

func TestMixedUsesEveryOperation(t *testing.T) {
	seen := map[string]bool{}
	ops := map[string]operation{
		"a": func(*rand.Rand) int { seen["a"] = true; return 0 },
		"b": func(*rand.Rand) int { seen["b"] = true; return 0 },
	}
	op := mixed(ops)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		op(r)
	}
	assert.True(t, seen["a"])
	assert.True(t, seen["b"])
}

func TestRandomPointInRange(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		p := randomPoint(r)
		assert.True(t, p.Lat >= -90 && p.Lat <= 90)
		assert.True(t, p.Lng >= -180 && p.Lng <= 180)
	}
}
