package automatic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	histogramBins  = 10
	histogramWidth = 30
)

// AnalyzeLogFile summarizes a results CSV written by SolveDeals.
func AnalyzeLogFile(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	// Record looks like:
	// dealID,seed,outcome,steps,nodes,memo,elapsedMs

	var steps, nodes, elapsed []float64
	outcomes := map[string]int{}
	dealsPlayed := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if len(record) < len(CSVHeader) {
			line, _ := r.FieldPos(0)
			return "", fmt.Errorf("line %d: expected %d fields, got %d",
				line, len(CSVHeader), len(record))
		}
		if record[0] == CSVHeader[0] {
			continue
		}
		outcome := record[2]
		outcomes[outcome]++
		dealsPlayed++
		n, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return "", err
		}
		nodes = append(nodes, n)
		ms, err := strconv.ParseFloat(record[6], 64)
		if err != nil {
			return "", err
		}
		elapsed = append(elapsed, ms)
		if outcome != OutcomeSolved {
			continue
		}
		s, err := strconv.Atoi(record[3])
		if err != nil {
			return "", err
		}
		steps = append(steps, float64(s))
	}
	if dealsPlayed == 0 {
		return "No deals.\n", nil
	}

	pct := func(n int) float64 { return 100.0 * float64(n) / float64(dealsPlayed) }
	stats := fmt.Sprintf("Deals played: %d\n", dealsPlayed)
	for _, o := range []string{OutcomeSolved, OutcomeUnsolvable, OutcomeBudget} {
		stats += fmt.Sprintf("%v: %d (%.3f%%)\n", o, outcomes[o], pct(outcomes[o]))
	}
	if len(steps) > 0 {
		mean, std := stat.MeanStdDev(steps, nil)
		shortest, longest := floats.Min(steps), floats.Max(steps)
		stats += fmt.Sprintf("Solution length Mean: %.3f  Stdev: %.3f  Min: %.0f  Max: %.0f\n",
			mean, std, shortest, longest)
		if longest > shortest {
			var hs strings.Builder
			if err := histogram.Fprint(&hs, histogram.Hist(histogramBins, steps),
				histogram.Linear(histogramWidth)); err != nil {
				return "", err
			}
			stats += "Solution length histogram:\n" + hs.String()
		}
	}
	mean, std := stat.MeanStdDev(nodes, nil)
	stats += fmt.Sprintf("Nodes Mean: %.1f  Stdev: %.1f\n", mean, std)
	mean, std = stat.MeanStdDev(elapsed, nil)
	stats += fmt.Sprintf("Time (ms) Mean: %.1f  Stdev: %.1f\n", mean, std)
	return stats, nil
}
