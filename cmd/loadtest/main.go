package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Значения по умолчанию совпадают с dev-фикстурами сервиса: запустите его
// с SHOPCORE_DEV_SEED=1 (memory-драйвер), либо укажите через флаги
// -customer/-address/-product записи, существующие в целевом хранилище.
const (
	defaultUnitPrice = int64(1000)
	defaultQty       = int32(1)
)

type loadMode string

const (
	// modeCreate создаёт заказ и останавливается.
	modeCreate loadMode = "create"
	// modeCreateDeliver доводит заказ до delivered через processing и shipped.
	modeCreateDeliver loadMode = "create-deliver"
	// modeCreateReturn доставляет заказ и оформляет возврат одной позиции.
	modeCreateReturn loadMode = "create-return"
)

type config struct {
	baseURL     string
	total       int
	totalSet    bool
	duration    time.Duration
	concurrency int
	timeout     time.Duration
	mode        loadMode
	customerID  string
	addressID   string
	productID   string
	priceMinor  int64
	qty         int32
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type callReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Statuses  map[string]int64 `json:"statuses"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type report struct {
	StartedAt         time.Time             `json:"started_at"`
	DurationSeconds   float64               `json:"duration_seconds"`
	TotalScenarios    int64                 `json:"total_scenarios"`
	SuccessScenarios  int64                 `json:"success_scenarios"`
	FailedScenarios   int64                 `json:"failed_scenarios"`
	ErrorRate         float64               `json:"error_rate"`
	RPS               float64               `json:"rps"`
	ScenarioLatencyMs latencySummary        `json:"scenario_latency_ms"`
	Calls             map[string]callReport `json:"calls"`
}

type callStats struct {
	calls     int64
	success   int64
	failed    int64
	statuses  map[string]int64
	latencies []float64
}

// collector агрегирует латентности и коды ответов по вызовам API.
type collector struct {
	mu    sync.Mutex
	calls map[string]*callStats
}

func newCollector() *collector {
	return &collector{calls: make(map[string]*callStats)}
}

func (c *collector) record(name string, latency time.Duration, status int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, found := c.calls[name]
	if !found {
		stats = &callStats{statuses: make(map[string]int64)}
		c.calls[name] = stats
	}

	stats.calls++
	if ok {
		stats.success++
	} else {
		stats.failed++
	}
	stats.statuses[statusLabel(status)]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func statusLabel(status int) string {
	if status <= 0 {
		return "transport_error"
	}
	return fmt.Sprintf("%d", status)
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Calls:           make(map[string]callReport, len(c.calls)),
	}

	if scenario := c.calls["scenario"]; scenario != nil {
		result.TotalScenarios = scenario.calls
		result.SuccessScenarios = scenario.success
		result.FailedScenarios = scenario.failed
		result.ErrorRate = ratio(scenario.failed, scenario.calls)
		result.ScenarioLatencyMs = buildLatencySummary(scenario.latencies)
	}
	if duration > 0 {
		result.RPS = float64(result.TotalScenarios) / duration.Seconds()
	}

	for name, stats := range c.calls {
		statusesCopy := make(map[string]int64, len(stats.statuses))
		for status, count := range stats.statuses {
			statusesCopy[status] = count
		}
		result.Calls[name] = callReport{
			Calls:     stats.calls,
			Success:   stats.success,
			Failed:    stats.failed,
			ErrorRate: ratio(stats.failed, stats.calls),
			Statuses:  statusesCopy,
			LatencyMs: buildLatencySummary(stats.latencies),
		}
	}

	return result
}

func parseConfig() (config, error) {
	var cfg config
	var modeValue string
	var durationValue string

	flag.StringVar(&cfg.baseURL, "url", "http://localhost:8080", "base URL of the shopcore HTTP API")
	flag.IntVar(&cfg.total, "total", 400, "total scenarios to execute in count mode; in duration mode acts as an upper bound")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.IntVar(&cfg.concurrency, "concurrency", 8, "number of concurrent workers")
	flag.StringVar(&modeValue, "mode", string(modeCreate), "scenario mode: create|create-deliver|create-return")
	flag.StringVar(&durationValue, "duration", "", "run for a fixed duration instead of a fixed count (e.g. 30s)")
	flag.StringVar(&cfg.customerID, "customer", "load-customer", "customer id used for generated orders")
	flag.StringVar(&cfg.addressID, "address", "load-address", "address id used for generated orders")
	flag.StringVar(&cfg.productID, "product", "load-product", "product id used for generated orders")
	flag.Int64Var(&cfg.priceMinor, "price", defaultUnitPrice, "unit price in minor units")
	flag.StringVar(&cfg.outputPath, "output", "", "write JSON report to this file")
	flag.Parse()

	cfg.qty = defaultQty
	cfg.totalSet = flagWasSet("total")

	switch loadMode(modeValue) {
	case modeCreate, modeCreateDeliver, modeCreateReturn:
		cfg.mode = loadMode(modeValue)
	default:
		return cfg, fmt.Errorf("unsupported mode: %s", modeValue)
	}

	if durationValue != "" {
		parsed, err := time.ParseDuration(durationValue)
		if err != nil || parsed <= 0 {
			return cfg, fmt.Errorf("invalid duration: %s", durationValue)
		}
		cfg.duration = parsed
	}

	if cfg.total <= 0 && cfg.duration <= 0 {
		return cfg, errors.New("either -total or -duration must be positive")
	}
	if cfg.concurrency <= 0 {
		return cfg, errors.New("-concurrency must be positive")
	}

	return cfg, nil
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	client := &http.Client{Timeout: cfg.timeout}
	col := newCollector()

	ctx := context.Background()
	var cancel context.CancelFunc
	if cfg.duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.duration)
		defer cancel()
	}

	startedAt := time.Now()
	var scenarioIndex atomic.Int64

	var wg sync.WaitGroup
	for worker := 0; worker < cfg.concurrency; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				index := scenarioIndex.Add(1)
				if cfg.duration <= 0 || cfg.totalSet {
					if index > int64(cfg.total) {
						return
					}
				}
				runScenario(ctx, client, cfg, col, index)
			}
		}()
	}
	wg.Wait()

	result := col.buildReport(startedAt, time.Since(startedAt))
	printReport(result, cfg)

	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			fmt.Fprintf(os.Stderr, "write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedScenarios > 0 {
		os.Exit(1)
	}
}

func runScenario(ctx context.Context, client *http.Client, cfg config, col *collector, index int64) {
	start := time.Now()
	err := executeScenario(ctx, client, cfg, col, index)
	ok := err == nil
	col.record("scenario", time.Since(start), scenarioStatus(ok), ok)
}

func scenarioStatus(ok bool) int {
	if ok {
		return http.StatusOK
	}
	return 0
}

func executeScenario(ctx context.Context, client *http.Client, cfg config, col *collector, index int64) error {
	orderID, err := callCreateOrder(ctx, client, cfg, col, index)
	if err != nil {
		return err
	}
	if cfg.mode == modeCreate {
		return nil
	}

	for _, status := range []string{"processing", "shipped", "delivered"} {
		if err := callUpdateStatus(ctx, client, cfg, col, orderID, status); err != nil {
			return err
		}
	}
	if cfg.mode == modeCreateDeliver {
		return nil
	}

	return callCreateReturn(ctx, client, cfg, col, orderID)
}

func callCreateOrder(ctx context.Context, client *http.Client, cfg config, col *collector, index int64) (string, error) {
	body := map[string]any{
		"customer_id":         cfg.customerID,
		"shipping_address_id": cfg.addressID,
		"billing_address_id":  cfg.addressID,
		"shipping_method":     "standard",
		"payment_method":      fmt.Sprintf("load-%d", index),
		"items": []map[string]any{
			{
				"product_id":       cfg.productID,
				"qty":              cfg.qty,
				"unit_price_minor": cfg.priceMinor,
			},
		},
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := postJSON(ctx, client, cfg.baseURL+"/v1/orders", body, &created, col, "CreateOrder"); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", errors.New("create order: empty order id in response")
	}
	return created.ID, nil
}

func callUpdateStatus(ctx context.Context, client *http.Client, cfg config, col *collector, orderID, status string) error {
	body := map[string]any{"status": status}
	url := fmt.Sprintf("%s/v1/orders/%s/status", cfg.baseURL, orderID)
	return postJSON(ctx, client, url, body, nil, col, "UpdateOrderStatus")
}

func callCreateReturn(ctx context.Context, client *http.Client, cfg config, col *collector, orderID string) error {
	body := map[string]any{
		"order_id":   orderID,
		"product_id": cfg.productID,
		"qty":        cfg.qty,
		"reason":     "load-return",
	}
	return postJSON(ctx, client, cfg.baseURL+"/v1/returns", body, nil, col, "CreateReturn")
}

func postJSON(ctx context.Context, client *http.Client, url string, body any, out any, col *collector, callName string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		col.record(callName, latency, 0, false)
		return err
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	col.record(callName, latency, resp.StatusCode, ok)
	if !ok {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%s: unexpected status %d: %s", callName, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", callName, err)
		}
	}
	return nil
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path must be inside current directory: %s", path)
	}

	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(result report, cfg config) {
	fmt.Println("Load test summary")
	fmt.Printf("mode=%s total=%d success=%d failed=%d error_rate=%.4f\n",
		cfg.mode,
		result.TotalScenarios,
		result.SuccessScenarios,
		result.FailedScenarios,
		result.ErrorRate,
	)
	fmt.Printf("duration=%.2fs rps=%.2f\n", result.DurationSeconds, result.RPS)
	fmt.Printf("scenario latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.ScenarioLatencyMs.Min,
		result.ScenarioLatencyMs.Avg,
		result.ScenarioLatencyMs.P50,
		result.ScenarioLatencyMs.P95,
		result.ScenarioLatencyMs.P99,
		result.ScenarioLatencyMs.Max,
	)

	callNames := make([]string, 0, len(result.Calls))
	for name := range result.Calls {
		if name == "scenario" {
			continue
		}
		callNames = append(callNames, name)
	}
	sort.Strings(callNames)
	for _, name := range callNames {
		stats := result.Calls[name]
		fmt.Printf("%s: calls=%d success=%d failed=%d error_rate=%.4f p95=%.2fms\n",
			name,
			stats.Calls,
			stats.Success,
			stats.Failed,
			stats.ErrorRate,
			stats.LatencyMs.P95,
		)
	}
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
