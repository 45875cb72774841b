// Command loadtest posts synthetic metric samples to a running server and
// reports latency percentiles and how many samples screening flagged.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/stat"
)

var (
	requestCount  int64
	successCount  int64
	failCount     int64
	flaggedCount  int64
	latencies     []float64 // seconds
	latenciesLock sync.Mutex
)

// spikeRate is the share of samples pushed far off the user's baseline.
const spikeRate = 0.02

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run tools/loadtest.go <base-url> [users] [workers] [duration]")
		fmt.Println("Example: go run tools/loadtest.go http://localhost:8080 50 20 30s")
		os.Exit(1)
	}

	baseURL := os.Args[1]
	users := 50
	workers := 20
	duration := 30 * time.Second

	if len(os.Args) > 2 {
		fmt.Sscanf(os.Args[2], "%d", &users)
	}
	if len(os.Args) > 3 {
		fmt.Sscanf(os.Args[3], "%d", &workers)
	}
	if len(os.Args) > 4 {
		if d, err := time.ParseDuration(os.Args[4]); err == nil {
			duration = d
		}
	}
	if users < 1 {
		users = 1
	}
	if workers < 1 {
		workers = 1
	}

	fmt.Printf("Load Test Configuration:\n")
	fmt.Printf("  URL: %s/samples\n", baseURL)
	fmt.Printf("  Users: %d\n", users)
	fmt.Printf("  Workers: %d\n", workers)
	fmt.Printf("  Duration: %v\n\n", duration)

	latencies = make([]float64, 0, 10000)
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	start := time.Now()
	end := start.Add(duration)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			worker(client, baseURL+"/samples", newSampleSource(uint64(w), users), end)
		}(w)
	}
	wg.Wait()

	printResults(time.Since(start))
}

// sampleSource walks each user's weight and steps the recorded date back one
// day per request so every post lands on a new day.
type sampleSource struct {
	rng       *rand.Rand
	users     int
	baselines []float64
	day       []int
}

func newSampleSource(seed uint64, users int) *sampleSource {
	src := &sampleSource{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		users:     users,
		baselines: make([]float64, users),
		day:       make([]int, users),
	}
	for i := range src.baselines {
		src.baselines[i] = 55 + src.rng.Float64()*40
	}
	return src
}

func (s *sampleSource) next(worker int) map[string]any {
	u := s.rng.IntN(s.users)
	s.baselines[u] += s.rng.NormFloat64() * 0.2
	value := s.baselines[u]
	if s.rng.Float64() < spikeRate {
		value += 15 + s.rng.Float64()*20
	}
	s.day[u]++
	date := time.Now().UTC().AddDate(0, 0, -s.day[u])

	return map[string]any{
		"user_id":       fmt.Sprintf("load-%d-%d", worker, u),
		"metric_type":   "weight",
		"value":         float64(int(value*10)) / 10,
		"recorded_date": date.Format("2006-01-02"),
	}
}

func worker(client *http.Client, url string, src *sampleSource, end time.Time) {
	id := int(src.rng.Uint32())
	for time.Now().Before(end) {
		sendSample(client, url, src.next(id))
	}
}

func sendSample(client *http.Client, url string, sample map[string]any) {
	body, _ := json.Marshal(sample)
	req, _ := http.NewRequest("POST", url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)

	atomic.AddInt64(&requestCount, 1)
	if err != nil {
		atomic.AddInt64(&failCount, 1)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		atomic.AddInt64(&failCount, 1)
		return
	}

	var out struct {
		Screening struct {
			Flagged bool `json:"flagged"`
		} `json:"screening"`
	}
	if json.NewDecoder(resp.Body).Decode(&out) == nil && out.Screening.Flagged {
		atomic.AddInt64(&flaggedCount, 1)
	}
	atomic.AddInt64(&successCount, 1)

	latenciesLock.Lock()
	latencies = append(latencies, latency.Seconds())
	latenciesLock.Unlock()
}

func printResults(duration time.Duration) {
	total := atomic.LoadInt64(&requestCount)
	success := atomic.LoadInt64(&successCount)
	failed := atomic.LoadInt64(&failCount)
	flagged := atomic.LoadInt64(&flaggedCount)

	latenciesLock.Lock()
	sorted := append([]float64(nil), latencies...)
	latenciesLock.Unlock()
	sort.Float64s(sorted)

	fmt.Printf("Results:\n")
	fmt.Printf("  Duration: %v\n", duration.Round(time.Millisecond))
	fmt.Printf("  Requests: %d (%.1f/s)\n", total, float64(total)/duration.Seconds())
	fmt.Printf("  Succeeded: %d\n", success)
	fmt.Printf("  Failed: %d\n", failed)
	if success > 0 {
		fmt.Printf("  Flagged by screening: %d (%.2f%%)\n", flagged, 100*float64(flagged)/float64(success))
	}
	if len(sorted) == 0 {
		return
	}

	dur := func(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
	fmt.Printf("\nLatency:\n")
	fmt.Printf("  Mean: %v\n", dur(stat.Mean(sorted, nil)))
	fmt.Printf("  Min:  %v\n", dur(sorted[0]))
	fmt.Printf("  P50:  %v\n", dur(stat.Quantile(0.50, stat.Empirical, sorted, nil)))
	fmt.Printf("  P95:  %v\n", dur(stat.Quantile(0.95, stat.Empirical, sorted, nil)))
	fmt.Printf("  P99:  %v\n", dur(stat.Quantile(0.99, stat.Empirical, sorted, nil)))
	fmt.Printf("  Max:  %v\n", dur(sorted[len(sorted)-1]))
}
