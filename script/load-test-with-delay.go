package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var balancePattern = regexp.MustCompile(`data-balance="([^"]*)"`)

// Outcome of a single balance update
const (
	outcomeAccepted = "accepted"
	outcomeRejected = "insufficient funds"
	outcomeInvalid  = "invalid amount"
	outcomeFailed   = "failed"
)

// TestResult contains metrics for a single request
type TestResult struct {
	User         int
	Amount       decimal.Decimal
	Outcome      string
	ResponseTime time.Duration
	StatusCode   int
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalRequests     int
	Outcomes          map[string]int
	TotalTime         time.Duration
	MinResponseTime   time.Duration
	MaxResponseTime   time.Duration
	TotalResponseTime time.Duration
	ResponseTimes     []time.Duration
	ErrorCounts       map[string]int
	ScenarioStats     map[string]int
	Accepted          map[int]decimal.Decimal // Sum of accepted amounts per user
	Lock              sync.Mutex
}

// TransactionScenario defines a balance update scenario
type TransactionScenario struct {
	Name   string // For stats tracking
	Amount string
}

// loadUser is one registered account and the browser session that owns it
type loadUser struct {
	index   int
	email   string
	client  *http.Client
	initial decimal.Decimal
}

func main() {
	// Define command line flags
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 100, "Total number of balance updates to post")
	userCount := flag.Int("users", 3, "Number of accounts to spread the load across")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the application")
	password := flag.String("password", "load-test-password", "Password for the generated accounts")
	delayMs := flag.Int("delay", 100, "Delay between requests in milliseconds")
	flag.Parse()

	if *userCount < 1 || *totalRequests < 1 || *concurrency < 1 {
		fmt.Fprintln(os.Stderr, "-users, -n and -c must be positive")
		os.Exit(2)
	}

	// Define transaction scenarios
	scenarios := []TransactionScenario{
		{"Deposit Small", "10.00"},
		{"Deposit Medium", "20.50"},
		{"Deposit Large", "30.00"},
		{"Withdraw Small", "-15.00"},
		{"Withdraw Medium", "-40.25"},
		{"Withdraw Large", "-60.00"},
	}

	fmt.Printf("Load testing %s across %d accounts\n", *baseURL, *userCount)
	fmt.Printf("Transaction scenarios: %d different amounts\n", len(scenarios))
	fmt.Printf("Concurrency: %d goroutines\n", *concurrency)
	fmt.Printf("Total requests: %d\n", *totalRequests)
	fmt.Printf("Delay between requests: %d ms\n", *delayMs)

	users := make([]*loadUser, 0, *userCount)
	runID := time.Now().UnixNano()
	for i := 0; i < *userCount; i++ {
		user, err := signUp(*baseURL, i, fmt.Sprintf("load-%d-%d@example.com", runID, i), *password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to prepare account %d: %v\n", i, err)
			os.Exit(1)
		}
		users = append(users, user)
	}

	// Initialize test statistics
	stats := &TestStats{
		TotalRequests:   *totalRequests,
		Outcomes:        make(map[string]int),
		MinResponseTime: time.Hour, // Start with a high value that will be replaced
		ErrorCounts:     make(map[string]int),
		ResponseTimes:   make([]time.Duration, 0, *totalRequests),
		ScenarioStats:   make(map[string]int),
		Accepted:        make(map[int]decimal.Decimal),
	}

	results := make(chan TestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)

	// Start worker goroutines
	var wg sync.WaitGroup
	fmt.Println("Starting worker goroutines...")
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(*baseURL, *delayMs, users, scenarios, jobs, results, stats)
		}()
	}

	// Fill the jobs channel
	for i := 0; i < *totalRequests; i++ {
		jobs <- i
	}
	close(jobs)

	// Collect results
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for result := range results {
			record(stats, result)
		}
	}()

	startTime := time.Now()
	fmt.Println("Test running...")

	// Print progress periodically
	ticker := time.NewTicker(1 * time.Second)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				stats.Lock.Lock()
				completed := len(stats.ResponseTimes)
				stats.Lock.Unlock()
				fmt.Printf("Progress: %d/%d requests completed (%.1f%%)\n",
					completed, stats.TotalRequests, float64(completed)/float64(stats.TotalRequests)*100)
			}
		}
	}()

	wg.Wait()
	close(results)
	<-collected
	ticker.Stop()
	close(done)

	stats.TotalTime = time.Since(startTime)

	printResults(stats)

	if !verifyBalances(*baseURL, users, stats) {
		os.Exit(1)
	}
}

// signUp registers an account and keeps its session cookie
func signUp(baseURL string, index int, email, password string) (*loadUser, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.PostForm(baseURL+"/register", url.Values{
		"FirstName":       {"Load"},
		"LastName":        {fmt.Sprintf("Tester%d", index)},
		"Email":           {email},
		"Password":        {password},
		"ConfirmPassword": {password},
	})
	if err != nil {
		return nil, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		return nil, fmt.Errorf("register %s: HTTP status code %d", email, resp.StatusCode)
	}

	user := &loadUser{index: index, email: email, client: client}
	if user.initial, err = readBalance(baseURL, client); err != nil {
		return nil, err
	}
	return user, nil
}

func worker(baseURL string, delayMs int, users []*loadUser, scenarios []TransactionScenario,
	jobs <-chan int, results chan<- TestResult, stats *TestStats) {

	for range jobs {
		// Optional delay between requests to prevent rate limiting
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		user := users[rand.IntN(len(users))]
		scenario := scenarios[rand.IntN(len(scenarios))]

		stats.Lock.Lock()
		stats.ScenarioStats[scenario.Name]++
		stats.Lock.Unlock()

		results <- postAmount(baseURL, user, scenario.Amount)
	}
}

func postAmount(baseURL string, user *loadUser, amount string) TestResult {
	result := TestResult{User: user.index, Amount: decimal.RequireFromString(amount)}

	startTime := time.Now()
	resp, err := user.client.PostForm(baseURL+"/account", url.Values{"Amount": {amount}})
	result.ResponseTime = time.Since(startTime)
	if err != nil {
		result.Outcome = outcomeFailed
		result.Error = err
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusFound && resp.Header.Get("Location") == "/account":
		result.Outcome = outcomeAccepted
	case resp.StatusCode == http.StatusOK && strings.Contains(string(body), "Insufficient funds"):
		result.Outcome = outcomeRejected
	case resp.StatusCode == http.StatusOK && strings.Contains(string(body), "valid amount"):
		result.Outcome = outcomeInvalid
	default:
		result.Outcome = outcomeFailed
		result.Error = fmt.Errorf("HTTP status code %d", resp.StatusCode)
	}
	return result
}

func record(stats *TestStats, result TestResult) {
	stats.Lock.Lock()
	defer stats.Lock.Unlock()

	stats.Outcomes[result.Outcome]++
	if result.Outcome == outcomeAccepted {
		stats.Accepted[result.User] = stats.Accepted[result.User].Add(result.Amount)
	}
	if result.Error != nil {
		stats.ErrorCounts[result.Error.Error()]++
	}

	stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
	stats.TotalResponseTime += result.ResponseTime
	if result.ResponseTime < stats.MinResponseTime {
		stats.MinResponseTime = result.ResponseTime
	}
	if result.ResponseTime > stats.MaxResponseTime {
		stats.MaxResponseTime = result.ResponseTime
	}
}

func readBalance(baseURL string, client *http.Client) (decimal.Decimal, error) {
	resp, err := client.Get(baseURL + "/account")
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("account page: HTTP status code %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, err
	}

	match := balancePattern.FindSubmatch(body)
	if match == nil {
		return decimal.Zero, errors.New("account page does not show a balance")
	}
	return decimal.NewFromString(string(match[1]))
}

// verifyBalances checks every account shows its opening balance plus the accepted amounts
func verifyBalances(baseURL string, users []*loadUser, stats *TestStats) bool {
	fmt.Println("\n----------------- BALANCE CHECK -----------------")
	ok := true
	for _, user := range users {
		expected := user.initial.Add(stats.Accepted[user.index])
		actual, err := readBalance(baseURL, user.client)
		switch {
		case err != nil:
			fmt.Printf("❌ %s: %v\n", user.email, err)
			ok = false
		case !actual.Equal(expected):
			fmt.Printf("❌ %s: balance %s, expected %s\n", user.email, actual.StringFixed(2), expected.StringFixed(2))
			ok = false
		default:
			fmt.Printf("✅ %s: balance %s\n", user.email, actual.StringFixed(2))
		}
	}
	return ok
}

func printResults(stats *TestStats) {
	completed := len(stats.ResponseTimes)
	tps := float64(completed) / stats.TotalTime.Seconds()

	var avgResponseTime time.Duration
	var p50, p90, p95, p99 time.Duration
	if completed > 0 {
		avgResponseTime = stats.TotalResponseTime / time.Duration(completed)

		sortedTimes := make([]time.Duration, completed)
		copy(sortedTimes, stats.ResponseTimes)
		sort.Slice(sortedTimes, func(i, j int) bool { return sortedTimes[i] < sortedTimes[j] })

		p50 = sortedTimes[completed*50/100]
		p90 = sortedTimes[completed*90/100]
		p95 = sortedTimes[completed*95/100]
		p99 = sortedTimes[completed*99/100]
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:      %d\n", stats.TotalRequests)
	for _, outcome := range []string{outcomeAccepted, outcomeRejected, outcomeInvalid, outcomeFailed} {
		count := stats.Outcomes[outcome]
		fmt.Printf("%-20s %d (%.1f%%)\n", strings.ToUpper(outcome[:1])+outcome[1:]+":", count,
			float64(count)/float64(stats.TotalRequests)*100)
	}
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())
	fmt.Printf("Throughput:          %.2f requests/second\n", tps)

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avgResponseTime)
	fmt.Printf("Minimum Response:    %v\n", stats.MinResponseTime)
	fmt.Printf("Maximum Response:    %v\n", stats.MaxResponseTime)
	fmt.Printf("P50 Response:        %v\n", p50)
	fmt.Printf("P90 Response:        %v\n", p90)
	fmt.Printf("P95 Response:        %v\n", p95)
	fmt.Printf("P99 Response:        %v\n", p99)

	fmt.Println("\n----------------- SCENARIO DISTRIBUTION -----------------")
	for scenario, count := range stats.ScenarioStats {
		fmt.Printf("%-16s: %d requests (%.1f%%)\n", scenario, count,
			float64(count)/float64(stats.TotalRequests)*100)
	}

	if len(stats.ErrorCounts) > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d (%.1f%%)\n", errMsg, count,
				float64(count)/float64(stats.TotalRequests)*100)
		}
	}
}
