package routes_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/usecase/account"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/usecase/session"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/model"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/security"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const cookieName = "session_token"

var (
	balancePattern     = regexp.MustCompile(`data-balance="([^"]*)"`)
	transactionPattern = regexp.MustCompile(`data-transaction-id="\d+" data-amount="([^"]*)"`)
)

type testApp struct {
	server *httptest.Server
	db     *database.TestDBManager
}

type appOptions struct {
	uniformLoginErrors bool
}

func newTestApp(t *testing.T, opts appOptions) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := database.NewTestDBManager(t)
	userRepo := db.UserRepository()
	transactionRepo := db.TransactionRepository()

	ledgerService := ledger.NewLedgerService(db.CreateUnitOfWork(), userRepo, transactionRepo, db.TimeProvider, db.Logger, ledger.Config{
		MaxAmountInCents: entity.DefaultMaxAmountInCents,
		QueueSize:        10,
		Retry:            ledger.DefaultRetryConfig(),
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ledgerService.Shutdown(ctx)
	})

	accounts := account.NewAccountUseCase(userRepo, transactionRepo, security.NewBcryptHasher(bcrypt.MinCost), db.TimeProvider, db.Logger)
	sessions := session.NewSessionService(db.SessionRepository(), security.NewUUIDTokenGenerator(), db.TimeProvider, db.Logger, entity.SessionPolicy{
		IdleTimeout:     30 * time.Minute,
		AbsoluteTimeout: 24 * time.Hour,
	})
	cookie := middleware.SessionCookie{Name: cookieName, MaxAge: sessions.Policy().AbsoluteTimeout}

	router := gin.New()
	require.NoError(t, routes.SetupViews(router))
	routes.SetupMiddlewares(router, db.Logger, db.TimeProvider, 5*time.Second)
	routes.SetupRoutes(router, routes.Handlers{
		Auth:    handler.NewAuthHandler(accounts, sessions, cookie, opts.uniformLoginErrors, db.Logger),
		Account: handler.NewAccountHandler(accounts, ledgerService, sessions, cookie, db.Logger),
		Pages:   handler.NewPageHandler(db.Manager, db.TimeProvider, time.Second, db.Logger),
	}, sessions, cookie, db.Logger)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testApp{server: server, db: db}
}

// newClient returns a browser-like client that keeps cookies and does not follow redirects
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type page struct {
	status   int
	location string
	body     string
	header   http.Header
}

func (a *testApp) get(t *testing.T, client *http.Client, path string) page {
	t.Helper()
	resp, err := client.Get(a.server.URL + path)
	require.NoError(t, err)
	return readPage(t, resp)
}

func (a *testApp) post(t *testing.T, client *http.Client, path string, form url.Values) page {
	t.Helper()
	resp, err := client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	return readPage(t, resp)
}

func readPage(t *testing.T, resp *http.Response) page {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return page{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		body:     string(body),
		header:   resp.Header,
	}
}

func registerForm(email string) url.Values {
	return url.Values{
		"FirstName":       {"Ada"},
		"LastName":        {"Lovelace"},
		"Email":           {email},
		"Password":        {"password123"},
		"ConfirmPassword": {"password123"},
	}
}

func (a *testApp) register(t *testing.T, client *http.Client, email string) {
	t.Helper()
	p := a.post(t, client, "/register", registerForm(email))
	require.Equal(t, http.StatusFound, p.status, p.body)
	require.Equal(t, "/account", p.location)
}

func (a *testApp) sessionToken(t *testing.T, client *http.Client) string {
	t.Helper()
	serverURL, err := url.Parse(a.server.URL)
	require.NoError(t, err)
	for _, c := range client.Jar.Cookies(serverURL) {
		if c.Name == cookieName {
			return c.Value
		}
	}
	return ""
}

// accountState reads the balance and the history amounts from the account page
func (a *testApp) accountState(t *testing.T, client *http.Client) (string, []string) {
	t.Helper()
	p := a.get(t, client, "/account")
	require.Equal(t, http.StatusOK, p.status)
	return parseAccount(t, p.body)
}

func parseAccount(t *testing.T, body string) (string, []string) {
	t.Helper()
	match := balancePattern.FindStringSubmatch(body)
	require.Len(t, match, 2, "balance not rendered")

	var amounts []string
	for _, m := range transactionPattern.FindAllStringSubmatch(body, -1) {
		amounts = append(amounts, m[1])
	}
	return match[1], amounts
}

func (a *testApp) countRows(t *testing.T, value any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, a.db.DB().Model(value).Count(&count).Error)
	return count
}

func (a *testApp) userID(t *testing.T, email string) uint64 {
	t.Helper()
	user, err := a.db.UserRepository().GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.ID
}

func TestBalanceScenario(t *testing.T) {
	app := newTestApp(t, appOptions{})
	client := newClient(t)
	email := "ada@example.com"

	app.register(t, client, email)

	balance, history := app.accountState(t, client)
	assert.Equal(t, "0.00", balance, "should start with a zero balance")
	assert.Empty(t, history, "should start without transactions")

	p := app.post(t, client, "/account", url.Values{"Amount": {"100"}})
	require.Equal(t, http.StatusFound, p.status)
	assert.Equal(t, "/account", p.location)

	balance, history = app.accountState(t, client)
	assert.Equal(t, "100.00", balance)
	assert.Equal(t, []string{"100.00"}, history)

	p = app.post(t, client, "/account", url.Values{"Amount": {"-150"}})
	require.Equal(t, http.StatusOK, p.status, "should re-render on insufficient funds")
	assert.Contains(t, p.body, "Insufficient funds for this transaction.")
	balance, history = parseAccount(t, p.body)
	assert.Equal(t, "100.00", balance)
	assert.Len(t, history, 1)

	p = app.post(t, client, "/account", url.Values{"Amount": {"-100"}})
	require.Equal(t, http.StatusFound, p.status)

	balance, history = app.accountState(t, client)
	assert.Equal(t, "0.00", balance)
	assert.Equal(t, []string{"-100.00", "100.00"}, history, "should list newest first")

	totals, err := app.db.TransactionRepository().TotalsByUser(context.Background(), app.userID(t, email))
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Count)
	assert.Equal(t, int64(0), totals.SumInCents, "stored rows should sum to the balance")
}

func TestRegister(t *testing.T) {
	t.Run("should reject a duplicate email without inserting a row", func(t *testing.T) {
		app := newTestApp(t, appOptions{})
		app.register(t, newClient(t), "dup@example.com")

		client := newClient(t)
		p := app.post(t, client, "/register", registerForm("dup@example.com"))

		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "Email already in use!")
		assert.Equal(t, int64(1), app.countRows(t, &model.User{}))
		assert.Empty(t, app.sessionToken(t, client))
	})

	t.Run("should treat emails as case-sensitive", func(t *testing.T) {
		app := newTestApp(t, appOptions{})
		app.register(t, newClient(t), "case@example.com")
		app.register(t, newClient(t), "Case@example.com")

		assert.Equal(t, int64(2), app.countRows(t, &model.User{}))
	})

	t.Run("should re-render per-field validation errors", func(t *testing.T) {
		app := newTestApp(t, appOptions{})
		client := newClient(t)

		p := app.post(t, client, "/register", url.Values{
			"FirstName":       {"A"},
			"LastName":        {"   "},
			"Email":           {"not-an-email"},
			"Password":        {"short"},
			"ConfirmPassword": {"different"},
		})

		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "First Name must be at least 2 characters.")
		assert.Contains(t, p.body, "Last Name is required.")
		assert.Contains(t, p.body, "Please enter a valid email address.")
		assert.Contains(t, p.body, "Password must be at least 8 characters.")
		assert.Contains(t, p.body, "Passwords do not match.")
		assert.NotContains(t, p.body, "short", "should not echo the password")
		assert.Equal(t, int64(0), app.countRows(t, &model.User{}))
		assert.Empty(t, app.sessionToken(t, client))
	})

	t.Run("should re-render values past the column limits", func(t *testing.T) {
		app := newTestApp(t, appOptions{})
		client := newClient(t)

		form := registerForm("long@example.com")
		form.Set("FirstName", strings.Repeat("a", 101))
		form.Set("Password", strings.Repeat("p", 80))
		form.Set("ConfirmPassword", strings.Repeat("p", 80))

		p := app.post(t, client, "/register", form)

		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "First Name must be at most 100 characters.")
		assert.Contains(t, p.body, "Password must be at most 72 characters.")
		assert.NotContains(t, p.body, "Error.")
		assert.Equal(t, int64(0), app.countRows(t, &model.User{}))
		assert.Empty(t, app.sessionToken(t, client))
	})

	t.Run("should reject a password over 72 bytes but within 72 characters", func(t *testing.T) {
		app := newTestApp(t, appOptions{})
		client := newClient(t)

		// 30 three-byte runes
		password := strings.Repeat("€", 30)
		form := registerForm("euro@example.com")
		form.Set("Password", password)
		form.Set("ConfirmPassword", password)

		p := app.post(t, client, "/register", form)

		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "Password must be at most 72 bytes.")
		assert.Contains(t, p.body, `value="euro@example.com"`)
		assert.Equal(t, int64(0), app.countRows(t, &model.User{}))
		assert.Empty(t, app.sessionToken(t, client))
	})

	t.Run("should revoke the session held before registering", func(t *testing.T) {
		app := newTestApp(t, appOptions{})
		client := newClient(t)
		app.register(t, client, "first@example.com")
		oldToken := app.sessionToken(t, client)
		require.NotEmpty(t, oldToken)

		app.register(t, client, "second@example.com")
		newToken := app.sessionToken(t, client)
		assert.NotEqual(t, oldToken, newToken)

		_, err := app.db.SessionRepository().GetByToken(context.Background(), oldToken)
		assert.Error(t, err, "old session should be deleted")
		assert.Equal(t, int64(1), app.countRows(t, &model.Session{}))
	})

	t.Run("should set a hardened session cookie", func(t *testing.T) {
		app := newTestApp(t, appOptions{})

		p := app.post(t, newClient(t), "/register", registerForm("cookie@example.com"))
		require.Equal(t, http.StatusFound, p.status)

		setCookie := p.header.Get("Set-Cookie")
		assert.Contains(t, setCookie, cookieName+"=")
		assert.Contains(t, setCookie, "HttpOnly")
		assert.Contains(t, setCookie, "SameSite=Lax")
		assert.Contains(t, setCookie, "Path=/")
		assert.Contains(t, setCookie, "Max-Age=86400")
	})
}

func TestLogin(t *testing.T) {
	t.Run("should log in with the right password", func(t *testing.T) {
		app := newTestApp(t, appOptions{})
		app.register(t, newClient(t), "login@example.com")

		client := newClient(t)
		p := app.post(t, client, "/login", url.Values{
			"LoginEmail":    {"login@example.com"},
			"LoginPassword": {"password123"},
		})

		require.Equal(t, http.StatusFound, p.status)
		assert.Equal(t, "/account", p.location)
		assert.NotEmpty(t, app.sessionToken(t, client))
		assert.Equal(t, http.StatusOK, app.get(t, client, "/success").status)
	})

	t.Run("should reject a wrong password and stay unauthenticated", func(t *testing.T) {
		app := newTestApp(t, appOptions{})
		app.register(t, newClient(t), "login@example.com")

		client := newClient(t)
		p := app.post(t, client, "/login", url.Values{
			"LoginEmail":    {"login@example.com"},
			"LoginPassword": {"wrong-password"},
		})

		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "Password is invalid.")
		assert.Contains(t, p.body, `value="login@example.com"`)
		assert.Empty(t, app.sessionToken(t, client))

		p = app.get(t, client, "/account")
		assert.Equal(t, http.StatusFound, p.status)
		assert.Equal(t, "/", p.location)
	})

	t.Run("should reject an unknown email", func(t *testing.T) {
		app := newTestApp(t, appOptions{})

		p := app.post(t, newClient(t), "/login", url.Values{
			"LoginEmail":    {"nobody@example.com"},
			"LoginPassword": {"password123"},
		})

		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "Invalid Email/Password")
	})

	t.Run("should report every failure alike when uniform errors are enabled", func(t *testing.T) {
		app := newTestApp(t, appOptions{uniformLoginErrors: true})
		app.register(t, newClient(t), "login@example.com")

		p := app.post(t, newClient(t), "/login", url.Values{
			"LoginEmail":    {"login@example.com"},
			"LoginPassword": {"wrong-password"},
		})

		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "Invalid Email/Password")
		assert.NotContains(t, p.body, "Password is invalid.")
	})

	t.Run("should require both fields", func(t *testing.T) {
		app := newTestApp(t, appOptions{})

		p := app.post(t, newClient(t), "/login", url.Values{})

		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "Email is required.")
		assert.Contains(t, p.body, "Password is required.")
	})

	t.Run("should revoke the session the browser already had", func(t *testing.T) {
		app := newTestApp(t, appOptions{})
		client := newClient(t)
		app.register(t, client, "relogin@example.com")
		oldToken := app.sessionToken(t, client)
		require.NotEmpty(t, oldToken)

		p := app.post(t, client, "/login", url.Values{
			"LoginEmail":    {"relogin@example.com"},
			"LoginPassword": {"password123"},
		})
		require.Equal(t, http.StatusFound, p.status)
		newToken := app.sessionToken(t, client)
		assert.NotEqual(t, oldToken, newToken)

		_, err := app.db.SessionRepository().GetByToken(context.Background(), oldToken)
		assert.Error(t, err, "old session should be deleted")
		assert.Equal(t, int64(1), app.countRows(t, &model.Session{}))
	})
}

func TestSessionGate(t *testing.T) {
	app := newTestApp(t, appOptions{})

	t.Run("should redirect anonymous visitors", func(t *testing.T) {
		client := newClient(t)
		for _, path := range []string{"/account", "/success"} {
			p := app.get(t, client, path)
			assert.Equal(t, http.StatusFound, p.status, path)
			assert.Equal(t, "/", p.location, path)
		}

		p := app.post(t, client, "/account", url.Values{"Amount": {"10"}})
		assert.Equal(t, http.StatusFound, p.status)
		assert.Equal(t, "/", p.location)
		assert.Equal(t, int64(0), app.countRows(t, &model.Transaction{}))
	})

	t.Run("should lock the account after logout", func(t *testing.T) {
		client := newClient(t)
		app.register(t, client, "gate@example.com")
		token := app.sessionToken(t, client)

		p := app.get(t, client, "/logout")
		assert.Equal(t, http.StatusFound, p.status)
		assert.Equal(t, "/", p.location)
		assert.Empty(t, app.sessionToken(t, client), "cookie should be expired")

		p = app.get(t, client, "/account")
		assert.Equal(t, http.StatusFound, p.status)
		assert.Equal(t, "/", p.location)

		// a replayed cookie is no better
		req, err := http.NewRequest(http.MethodGet, app.server.URL+"/account", nil)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode)
	})

	t.Run("should allow logout without a session", func(t *testing.T) {
		p := app.get(t, newClient(t), "/logout")
		assert.Equal(t, http.StatusFound, p.status)
		assert.Equal(t, "/", p.location)
	})

	t.Run("should ignore an unknown token", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, app.server.URL+"/", nil)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: "forged"})

		resp, err := newClient(t).Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Set-Cookie"), "Max-Age=0")
	})
}

func TestBalanceUpdateRejections(t *testing.T) {
	app := newTestApp(t, appOptions{})
	client := newClient(t)
	app.register(t, client, "amounts@example.com")

	invalid := []string{"", "   ", "abc", "1.234", "1e3", "10,00", "1000000000.01", "--5"}
	for _, raw := range invalid {
		t.Run(fmt.Sprintf("should reject %q", raw), func(t *testing.T) {
			p := app.post(t, client, "/account", url.Values{"Amount": {raw}})

			assert.Equal(t, http.StatusOK, p.status)
			assert.Contains(t, p.body, "Invalid submission. Please enter a valid amount.")
		})
	}

	t.Run("should name the limit for an over-limit amount", func(t *testing.T) {
		p := app.post(t, client, "/account", url.Values{"Amount": {"-1000000000.01"}})

		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "Amounts are limited to 1000000000.00.")
		assert.Contains(t, p.body, `value="-1000000000.01"`)
	})

	t.Run("should reject a missing field", func(t *testing.T) {
		p := app.post(t, client, "/account", url.Values{})
		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "Invalid submission. Please enter a valid amount.")
	})

	assert.Equal(t, int64(0), app.countRows(t, &model.Transaction{}))

	t.Run("should accept zero as a transaction", func(t *testing.T) {
		p := app.post(t, client, "/account", url.Values{"Amount": {"0"}})
		require.Equal(t, http.StatusFound, p.status)

		balance, history := app.accountState(t, client)
		assert.Equal(t, "0.00", balance)
		assert.Equal(t, []string{"0.00"}, history)
	})

	t.Run("should accept the maximum amount", func(t *testing.T) {
		p := app.post(t, client, "/account", url.Values{"Amount": {"1000000000.00"}})
		require.Equal(t, http.StatusFound, p.status)

		balance, _ := app.accountState(t, client)
		assert.Equal(t, "1000000000.00", balance)
	})
}

func TestConcurrentDeposits(t *testing.T) {
	app := newTestApp(t, appOptions{})
	client := newClient(t)
	app.register(t, client, "busy@example.com")

	const workers = 20
	var wg sync.WaitGroup
	statuses := make(chan int, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.PostForm(app.server.URL+"/account", url.Values{"Amount": {"1.25"}})
			if err != nil {
				statuses <- 0
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		assert.Equal(t, http.StatusFound, status)
	}

	balance, history := app.accountState(t, client)
	assert.Equal(t, "25.00", balance)
	assert.Len(t, history, workers)
}

func TestPages(t *testing.T) {
	app := newTestApp(t, appOptions{})
	client := newClient(t)

	t.Run("should render the entry page", func(t *testing.T) {
		p := app.get(t, client, "/")
		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, `action="/register"`)
		assert.Contains(t, p.body, `action="/login"`)
	})

	t.Run("should render the privacy page", func(t *testing.T) {
		p := app.get(t, client, "/privacy")
		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "Privacy Policy")
	})

	t.Run("should report database health", func(t *testing.T) {
		p := app.get(t, client, "/healthz")
		require.Equal(t, http.StatusOK, p.status)

		var health dto.HealthResponse
		require.NoError(t, json.Unmarshal([]byte(p.body), &health))
		assert.Equal(t, dto.StatusOK, health.Status)
		assert.Equal(t, dto.StatusOK, health.Database)
	})

	t.Run("should echo the request id", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, app.server.URL+"/", nil)
		require.NoError(t, err)
		req.Header.Set(middleware.RequestIDHeader, "req-123")

		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, "req-123", resp.Header.Get(middleware.RequestIDHeader))
	})

	t.Run("should generate a request id", func(t *testing.T) {
		p := app.get(t, client, "/")
		assert.NotEmpty(t, strings.TrimSpace(p.header.Get(middleware.RequestIDHeader)))
	})
}
