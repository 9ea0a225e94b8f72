// Command gosession-loadtest measures engine hot-path throughput against an
// in-process API stub: concurrent permission resolution and on-demand
// credential renewal.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/avrik7/goSession"
)

type stubAPI struct {
	counter atomic.Int64
}

func (s *stubAPI) Login(ctx context.Context, username, password string) (string, *goSession.UserProfile, error) {
	return s.token(), profileFor(username), nil
}

func (s *stubAPI) Refresh(context.Context) (string, error) {
	return s.token(), nil
}

func (s *stubAPI) Profile(context.Context) (*goSession.UserProfile, error) {
	return profileFor("load-user"), nil
}

func (s *stubAPI) Logout(context.Context) error { return nil }

func (s *stubAPI) token() string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload, _ := json.Marshal(map[string]any{
		"sub":         "load-user",
		"gen":         s.counter.Add(1),
		"permissions": []string{"reports.view"},
	})
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + "."
}

func profileFor(username string) *goSession.UserProfile {
	return &goSession.UserProfile{
		ID:          "load-user",
		Username:    username,
		Roles:       []goSession.Role{{Name: "member", DisplayName: "Member"}},
		Permissions: []string{"reports.view", "reports.export"},
	}
}

var permissionNames = []string{
	"reports.view",
	"reports.export",
	"admin.panel",
	"inventory.edit",
}

func main() {
	var (
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		resolveOps  = flag.Int("resolve-ops", 200000, "permission resolution operations")
		refreshOps  = flag.Int("refresh-ops", 5000, "on-demand renewal operations")
	)
	flag.Parse()

	if *concurrency <= 0 || *resolveOps <= 0 || *refreshOps <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency, resolve-ops, and refresh-ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	engine, err := goSession.New().WithAPIClient(&stubAPI{}).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	if err := engine.Login(ctx, "load-user", "load-pass"); err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}

	resolveStats := runResolvePhase(engine, *resolveOps, *concurrency)
	refreshStats := runRefreshPhase(ctx, engine, *refreshOps, *concurrency)

	fmt.Println("---- results ----")
	printStats("resolve", resolveStats)
	printStats("refresh", refreshStats)
}

func runResolvePhase(engine *goSession.Engine, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				name := permissionNames[r.Intn(len(permissionNames))]
				t0 := time.Now()
				granted := engine.HasPermission(name)
				d := time.Since(t0)
				// Granted set is known; a surprise answer counts as failure.
				want := name == "reports.view" || name == "reports.export"
				if granted != want {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runRefreshPhase(ctx context.Context, engine *goSession.Engine, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := engine.RefreshNow(ctx)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
