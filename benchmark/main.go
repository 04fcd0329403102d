// Package main provides a performance benchmarking tool for the DevPulse CLI.
// It measures report times across repositories and time ranges, running each
// report several times without a cache and with a SQLite cache. The first
// cached run is the cold run and the rest are averaged as warm runs.
//
// Prerequisites:
// - devpulse binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// BenchmarkResult holds the timings of one repository and time range.
type BenchmarkResult struct {
	Repository  string
	TimeRange   string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase    string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	TestRepos   []string
	TimeRanges  []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:    os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		TestRepos:   []string{"csv-parser", "fd", "git", "kubernetes"},
		TimeRanges:  []string{"daily", "weekly", "monthly"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	if output, err := exec.Command("devpulse", "cache", "clear").CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}

	results := runBenchmarks(config)
	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
}

// checkPrerequisites verifies that the devpulse binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("devpulse"); err != nil {
		return fmt.Errorf("devpulse binary not found in PATH")
	}
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// runBenchmarks executes every time range against every repository
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	fmt.Printf("Starting benchmark: %d repos, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.TestRepos), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	var results []BenchmarkResult
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, tr := range config.TimeRanges {
			fmt.Printf("Benchmarking %s report on %s\n", tr, repo)

			_, noCacheAvg := runPhase(config, repoPath, tr, "none", config.NoCacheRuns)
			cold, warmAvg := runPhase(config, repoPath, tr, "sqlite", config.CacheRuns)

			coldStr := "TIMEOUT"
			if cold > 0 {
				coldStr = fmt.Sprintf("%.3fs", cold)
			}
			fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldStr, warmAvg)

			results = append(results, BenchmarkResult{
				Repository:  repo,
				TimeRange:   tr,
				NoCacheTime: noCacheAvg,
				ColdTime:    coldStr,
				WarmTime:    warmAvg,
			})
		}
	}
	return results
}

// runPhase runs the report numRuns times and returns the first time and the average of the rest
func runPhase(config BenchmarkConfig, repoPath, timeRange, cacheBackend string, numRuns int) (coldTime float64, avgTime string) {
	var times []float64
	for range numRuns {
		if elapsed, ok := runReport(config.Timeout, repoPath, timeRange, cacheBackend); ok {
			times = append(times, elapsed)
		}
	}
	if len(times) == 0 {
		return 0, "TIMEOUT"
	}

	coldTime = times[0]
	rest := times[1:]
	if cacheBackend == "none" {
		rest = times
	}
	if len(rest) == 0 {
		return coldTime, "N/A"
	}
	var sum float64
	for _, t := range rest {
		sum += t
	}
	return coldTime, fmt.Sprintf("%.3fs", sum/float64(len(rest)))
}

// runReport executes one offline report and reports whether it completed in time
func runReport(timeout time.Duration, repoPath, timeRange, cacheBackend string) (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, "devpulse", "report", timeRange,
		"--cache-backend", cacheBackend,
		"--report-backend", "none",
		"--provider", "offline",
		"--repo-path", repoPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil || !strings.Contains(string(output), "Report completed in") {
		return 0, false
	}
	return time.Since(start).Seconds(), true
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	filename := fmt.Sprintf("/tmp/devpulse_benchmark_%s.csv", time.Now().Format("20060102_150405"))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"repo", "time_range", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{r.Repository, r.TimeRange, r.NoCacheTime, r.ColdTime, r.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results as a table
func printSummary(results []BenchmarkResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Repo", "Range", "No-cache", "Cold", "Warm"})
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Repository, r.TimeRange, r.NoCacheTime, r.ColdTime, r.WarmTime})
	}
	if err := table.Bulk(rows); err != nil {
		fmt.Printf("Failed to build summary: %v\n", err)
		return
	}
	if err := table.Render(); err != nil {
		fmt.Printf("Failed to render summary: %v\n", err)
	}
}
