package kv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/zKV/cmd/util"
	"github.com/ValentinKolb/zKV/lib/store"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for zKV servers",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfConf = perfConfig{
		KeyPrefix:        "__perf",
		LargeValueSizeKB: 100,
		Threads:          10,
		Keys:             100,
		Ops:              10_000,
	}
)

// perfConfig controls a perf run
type perfConfig struct {
	KeyPrefix        string
	LargeValueSizeKB int
	Threads          int
	Keys             int
	Ops              int
	Skip             []string
}

// perfResult holds the outcome of one perf test. Latencies are taken from a go-metrics timer.
type perfResult struct {
	Name      string
	Skipped   bool
	Ops       int64
	Errors    int64
	Elapsed   time.Duration
	OpsPerSec float64
	Mean      time.Duration
	P50       time.Duration
	P90       time.Duration
	P99       time.Duration
	Max       time.Duration
}

// perfTest is a single perf test. setup and cleanup may be nil.
type perfTest struct {
	name    string
	setup   func(keys []string) error
	op      func(keys []string, i int) error
	cleanup func(keys []string) error
}

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Tests to skip (comma separated - e.g. put,zrange)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent workers"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the put-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys (and sorted set members) to use for the tests"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 10_000, util.WrapString("Number of operations per test"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfConf.LargeValueSizeKB = viper.GetInt("large-value-size")
	perfConf.Keys = viper.GetInt("keys")
	perfConf.Threads = viper.GetInt("threads")
	perfConf.Ops = viper.GetInt("ops")
	perfConf.Skip = strings.Split(viper.GetString("skip"), ",")

	if perfConf.Keys <= 0 || perfConf.Threads <= 0 || perfConf.Ops <= 0 {
		return fmt.Errorf("keys, threads and ops must be positive")
	}
	return nil
}

func runPerf(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	clientConfig := util.GetClientConfig()

	fmt.Fprintln(out, "Performance testing tool for zKV servers")
	fmt.Fprintln(out, clientConfig.String())
	fmt.Fprintf(out, "Threads: %d, Ops per test: %d, Keys: %d\n\n", perfConf.Threads, perfConf.Ops, perfConf.Keys)

	results := runPerfTests(out, rpcStore, perfConf, gometrics.NewRegistry())

	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Fprintf(out, "\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, perfConf); err != nil {
			return fmt.Errorf("failed to export results to CSV: %w", err)
		}
		fmt.Fprintln(out, "Export complete")
	}

	return nil
}

// runPerfTests runs all perf tests against s and prints one line per test to out
func runPerfTests(out io.Writer, s store.IStore, conf perfConfig, registry gometrics.Registry) []perfResult {
	results := make([]perfResult, 0)
	for _, test := range perfTests(s, conf) {
		var result perfResult
		if shouldSkip(conf, test.name) {
			result = perfResult{Name: test.name, Skipped: true}
		} else {
			result = runPerfTest(s, conf, test, registry)
		}
		results = append(results, result)
		printResult(out, result)
	}
	return results
}

// perfTests returns the perf tests in the order they are run
func perfTests(s store.IStore, conf perfConfig) []perfTest {
	putAll := func(keys []string) error {
		for _, k := range keys {
			if err := s.Put(k, "test"); err != nil {
				return err
			}
		}
		return nil
	}
	deleteAll := func(keys []string) error {
		for _, k := range keys {
			if err := s.Delete(k); err != nil {
				return err
			}
		}
		return nil
	}
	zsetKey := conf.KeyPrefix + "-zset"
	fillZSet := func(keys []string) error {
		for i, k := range keys {
			if err := s.ZAdd(zsetKey, k, float64(i)); err != nil {
				return err
			}
		}
		return nil
	}
	deleteZSet := func([]string) error { return s.Delete(zsetKey) }
	largeValue := strings.Repeat("x", conf.LargeValueSizeKB*1024)

	return []perfTest{
		{
			name:    "put",
			op:      func(keys []string, i int) error { return s.Put(keys[i%len(keys)], "test") },
			cleanup: deleteAll,
		},
		{
			name:    "put-large",
			op:      func(keys []string, i int) error { return s.Put(keys[i%len(keys)], largeValue) },
			cleanup: deleteAll,
		},
		{
			name:  "get",
			setup: putAll,
			op: func(keys []string, i int) error {
				_, _, err := s.Get(keys[i%len(keys)])
				return err
			},
			cleanup: deleteAll,
		},
		{
			name:    "delete",
			setup:   putAll,
			op:      func(keys []string, i int) error { return s.Delete(keys[i%len(keys)]) },
			cleanup: deleteAll,
		},
		{
			name:    "zadd",
			op:      func(keys []string, i int) error { return s.ZAdd(zsetKey, keys[i%len(keys)], float64(i)) },
			cleanup: deleteZSet,
		},
		{
			name:  "zrange",
			setup: fillZSet,
			op: func(keys []string, i int) error {
				min := float64(i % len(keys))
				_, err := s.ZRange(zsetKey, min, min+10)
				return err
			},
			cleanup: deleteZSet,
		},
		{
			name:  "mixed",
			setup: putAll,
			op: func(keys []string, i int) error {
				key := keys[i%len(keys)]
				var err error
				switch i % 5 {
				case 0:
					err = s.Put(key, "test")
				case 1:
					_, _, err = s.Get(key)
				case 2:
					err = s.ZAdd(zsetKey, key, float64(i))
				case 3:
					_, err = s.ZRange(zsetKey, 0, float64(i))
				case 4:
					err = s.Delete(key)
				}
				return err
			},
			cleanup: func(keys []string) error {
				if err := deleteAll(keys); err != nil {
					return err
				}
				return deleteZSet(keys)
			},
		},
	}
}

// runPerfTest runs conf.Ops operations of test on conf.Threads workers
func runPerfTest(s store.IStore, conf perfConfig, test perfTest, registry gometrics.Registry) perfResult {
	keys := make([]string, conf.Keys)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%s-%d", conf.KeyPrefix, test.name, i)
	}

	if test.setup != nil {
		if err := test.setup(keys); err != nil {
			log.Printf("(%s) - setup failed: %v\n", test.name, err)
		}
	}
	if test.cleanup != nil {
		defer func() {
			if err := test.cleanup(keys); err != nil {
				log.Printf("(%s) - cleanup failed: %v\n", test.name, err)
			}
		}()
	}

	timer := gometrics.GetOrRegisterTimer("perf."+test.name+".latency", registry)
	errs := gometrics.GetOrRegisterCounter("perf."+test.name+".errors", registry)

	var next atomic.Int64
	var wg sync.WaitGroup
	start := time.Now()
	for w := 0; w < conf.Threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := next.Add(1) - 1
				if i >= int64(conf.Ops) {
					return
				}
				opStart := time.Now()
				err := test.op(keys, int(i))
				timer.UpdateSince(opStart)
				if err != nil {
					errs.Inc(1)
				}
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	snap := timer.Snapshot()
	ps := snap.Percentiles([]float64{0.5, 0.9, 0.99})
	return perfResult{
		Name:      test.name,
		Ops:       snap.Count(),
		Errors:    errs.Count(),
		Elapsed:   elapsed,
		OpsPerSec: float64(snap.Count()) / max(elapsed.Seconds(), 1e-9),
		Mean:      time.Duration(snap.Mean()),
		P50:       time.Duration(ps[0]),
		P90:       time.Duration(ps[1]),
		P99:       time.Duration(ps[2]),
		Max:       time.Duration(snap.Max()),
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(conf perfConfig, test string) bool {
	for _, skip := range conf.Skip {
		if strings.TrimSpace(skip) == test {
			return true
		}
	}
	return false
}

// printResult prints the result of a perf test in a formatted way
func printResult(out io.Writer, r perfResult) {
	if r.Skipped {
		fmt.Fprintf(out, "%-12sskipped\n", r.Name)
		return
	}
	fmt.Fprintf(out, "%-12s%8.0f ops/sec\tmean %s\tp50 %s\tp90 %s\tp99 %s\tmax %s\terrors %d\n",
		r.Name, r.OpsPerSec, r.Mean, r.P50, r.P90, r.P99, r.Max, r.Errors)
}

// writeResultsToCSV writes perf results to a CSV file
func writeResultsToCSV(csvPath string, results []perfResult, conf perfConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"Test", "Skipped", "Ops", "Errors", "OpsPerSec",
		"MeanNs", "P50Ns", "P90Ns", "P99Ns", "MaxNs",
		"Threads", "LargeValueSizeKB", "Keys",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range results {
		row := []string{
			r.Name,
			strconv.FormatBool(r.Skipped),
			strconv.FormatInt(r.Ops, 10),
			strconv.FormatInt(r.Errors, 10),
			fmt.Sprintf("%.0f", r.OpsPerSec),
			strconv.FormatInt(r.Mean.Nanoseconds(), 10),
			strconv.FormatInt(r.P50.Nanoseconds(), 10),
			strconv.FormatInt(r.P90.Nanoseconds(), 10),
			strconv.FormatInt(r.P99.Nanoseconds(), 10),
			strconv.FormatInt(r.Max.Nanoseconds(), 10),
			strconv.Itoa(conf.Threads),
			strconv.Itoa(conf.LargeValueSizeKB),
			strconv.Itoa(conf.Keys),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %w", r.Name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
