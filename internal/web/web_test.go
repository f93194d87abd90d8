package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/plans/internal/factory"
	"github.com/mcoot/plans/internal/middleware"
	"github.com/mcoot/plans/internal/testutil"
	"github.com/mcoot/plans/internal/web"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()
	return newWebTestServerWithConfig(t, factory.Config{})
}

func newWebTestServerWithConfig(t *testing.T, cfg factory.Config) *webTestServer {
	t.Helper()

	app := factory.NewTestApp(cfg)
	return &webTestServer{
		t:       t,
		handler: newRouter(app),
		app:     app,
		cookies: newCookieJar(),
	}
}

func newRouter(app *factory.TestApp) http.Handler {
	return web.NewRouter(web.RouterConfig{
		Logger:         testutil.NopLogger(),
		AuthService:    app.AuthService,
		Bridge:         app.Bridge,
		StateSigner:    app.StateSigner,
		SessionManager: app.SessionManager,
		PlansService:   app.PlansService,
		Random:         app.Random,
		Metrics:        middleware.NewMetrics(),
		StaticDir:      "", // No static files in tests
	})
}

// as returns a second browser sharing the same server
func (ts *webTestServer) as() *webTestServer {
	return &webTestServer{t: ts.t, handler: ts.handler, app: ts.app, cookies: newCookieJar()}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// hasSession returns true if the session cookie is set
func (j *cookieJar) hasSession() bool {
	_, ok := j.cookies["session"]
	return ok
}

// Helper functions for common test operations

// register registers through the form and leaves the browser signed in
func (ts *webTestServer) register(username, password string) {
	ts.t.Helper()
	rr := ts.post("/register", url.Values{"username": {username}, "password": {password}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after registration")
	require.Equal(ts.t, "/plans", rr.Header().Get("Location"))
	require.True(ts.t, ts.cookies.hasSession(), "Expected session cookie to be set")
}

// addPlan submits a plan through the form
func (ts *webTestServer) addPlan(plan string) {
	ts.t.Helper()
	rr := ts.post("/submit", url.Values{"newPlan": {plan}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after submit")
	require.Equal(ts.t, "/plans", rr.Header().Get("Location"))
}

// plans loads /plans and returns the rendered entries in order
func (ts *webTestServer) plans() []string {
	ts.t.Helper()
	rr := ts.get("/plans")
	require.Equal(ts.t, http.StatusOK, rr.Code)

	var entries []string
	parseHTML(rr.Body).Find("#plans li.plan span.entry").Each(func(_ int, s *goquery.Selection) {
		entries = append(entries, s.Text())
	})
	return entries
}

// accountID looks up the id of a registered username
func (ts *webTestServer) accountID(username string) string {
	ts.t.Helper()
	account, err := ts.app.Storage.GetAccountByUsername(ts.t.Context(), username)
	require.NoError(ts.t, err)
	return string(account.ID)
}

// followRedirect follows a redirect and returns the response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected Location header for redirect")
	return ts.get(location)
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}
