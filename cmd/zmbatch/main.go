// Command zmbatch runs every story file in a directory for a bounded
// number of steps and reports a JSON summary. Unlike the teacher's
// cmd/gametest, it has no panics to recover from - the core returns
// errors instead - so a failing story just produces a failed TestResult.
//
// Grounded on cmd/gametest/main.go
// (_examples/DaveTCode-zmachine-golang/cmd/gametest/main.go).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zm3core/zm3/interp"
	"github.com/zm3core/zm3/story"
)

// TestResult captures the outcome of running a single story file.
type TestResult struct {
	Filename     string   `json:"filename"`
	Version      uint8    `json:"version"`
	Success      bool     `json:"success"`
	Steps        int      `json:"steps"`
	FirstScreen  []string `json:"first_screen,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

func main() {
	storiesDir := flag.String("stories", "stories", "directory containing story files")
	outputDir := flag.String("output", "testdata", "directory to write results to")
	singleGame := flag.String("game", "", "test a single story file instead of all games")
	steps := flag.Int("steps", 2000, "maximum instructions to execute per story before stopping")
	flag.Parse()

	if *singleGame != "" {
		result := runStoryTest(*singleGame, *steps)
		printResult(result)
		return
	}

	runAllStories(*storiesDir, *outputDir, *steps)
}

func runAllStories(storiesDir, outputDir string, maxSteps int) {
	entries, err := os.ReadDir(storiesDir)
	if err != nil {
		fmt.Printf("failed to read stories directory: %v\n", err)
		os.Exit(1)
	}

	var games []string
	for _, entry := range entries {
		name := entry.Name()
		if hasZCodeSuffix(name) {
			games = append(games, filepath.Join(storiesDir, name))
		}
	}
	if len(games) == 0 {
		fmt.Printf("no story files found in %s\n", storiesDir)
		os.Exit(1)
	}

	fmt.Printf("found %d stories to test\n", len(games))

	var results []TestResult
	for i, path := range games {
		result := runStoryTest(path, maxSteps)
		results = append(results, result)

		status := "ok"
		if !result.Success {
			status = "FAIL"
		}
		fmt.Printf("[%d/%d] %s %s\n", i+1, len(games), status, result.Filename)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Printf("failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	resultsPath := filepath.Join(outputDir, "test_results.json")
	resultsJSON, _ := json.MarshalIndent(results, "", "  ")
	if err := os.WriteFile(resultsPath, resultsJSON, 0644); err != nil {
		fmt.Printf("failed to write results: %v\n", err)
	} else {
		fmt.Printf("results written to %s\n", resultsPath)
	}

	passed, failed := 0, 0
	for _, r := range results {
		if r.Success {
			passed++
		} else {
			failed++
		}
	}
	fmt.Printf("\n=== SUMMARY ===\npassed: %d\nfailed: %d\ntotal: %d\n", passed, failed, len(results))
}

func hasZCodeSuffix(name string) bool {
	for v := '1'; v <= '8'; v++ {
		if strings.HasSuffix(name, ".z"+string(v)) {
			return true
		}
	}
	return false
}

func printResult(r TestResult) {
	fmt.Printf("story: %s\n", r.Filename)
	fmt.Printf("version: %d\n", r.Version)
	fmt.Printf("success: %v\n", r.Success)
	fmt.Printf("steps executed: %d\n", r.Steps)
	if r.ErrorMessage != "" {
		fmt.Printf("error: %s\n", r.ErrorMessage)
	}
	fmt.Printf("first screen:\n%s\n", strings.Join(r.FirstScreen, "\n"))
}

func runStoryTest(path string, maxSteps int) TestResult {
	filename := filepath.Base(path)
	result := TestResult{Filename: filename}

	raw, err := os.ReadFile(path)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("reading file: %v", err)
		return result
	}
	if len(raw) > 0 {
		result.Version = raw[0]
	}

	st, err := story.Load(raw)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("loading story: %v", err)
		return result
	}

	ip := interp.New(st)
	var output string
	stepped := 0
	for stepped < maxSteps && ip.State == interp.Running {
		next, err := ip.Step()
		if err != nil {
			result.ErrorMessage = fmt.Sprintf("step %d: %v", stepped, err)
			result.Steps = stepped
			return result
		}
		output = next.Output
		ip = next
		stepped++
	}

	result.Success = true
	result.Steps = stepped
	result.FirstScreen = strings.Split(output, "\n")
	return result
}
