package routes

import (
	"context"
	"encoding/json"
	"errors"
	"go-reviewlens/handlers"
	"go-reviewlens/nlp"
	"go-reviewlens/sentiment"
	"go-reviewlens/session"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/language/apiv2/languagepb"
	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/googleapis/gax-go/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	calls   int
	content string
	err     error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	content := f.content
	if content == "" {
		content = "Overall positive narrative."
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}, nil
}

type fakeEntityClient struct{ calls int }

func (f *fakeEntityClient) AnalyzeEntities(_ context.Context, req *languagepb.AnalyzeEntitiesRequest, _ ...gax.CallOption) (*languagepb.AnalyzeEntitiesResponse, error) {
	f.calls++
	text := req.GetDocument().GetContent()
	resp := &languagepb.AnalyzeEntitiesResponse{}
	if i := strings.Index(text, "Paris"); i >= 0 {
		resp.Entities = append(resp.Entities, &languagepb.Entity{
			Type: languagepb.Entity_LOCATION,
			Mentions: []*languagepb.EntityMention{{
				Text: &languagepb.TextSpan{Content: "Paris", BeginOffset: int32(i)},
				Type: languagepb.EntityMention_PROPER,
			}},
		})
	}
	return resp, nil
}

type testServer struct {
	router    *gin.Engine
	completer *fakeCompleter
	entities  *fakeEntityClient
	cookie    *http.Cookie
}

func newTestServer(t *testing.T, withKey bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{completer: &fakeCompleter{}, entities: &fakeEntityClient{}}

	var analyzer *sentiment.Analyzer
	var warnings []string
	if withKey {
		analyzer = sentiment.NewAnalyzer(ts.completer, "")
	} else {
		analyzer = sentiment.NewAnalyzer(nil, "")
		warnings = []string{"OPENAI_API_KEY is not set: sentiment analysis is unavailable."}
	}
	extractor := nlp.NewExtractor(ts.entities, nlp.Options{CacheSize: 8})

	store, err := session.NewStore(16, time.Hour)
	require.NoError(t, err)

	ts.router = SetupRouter(handlers.NewEnv(store, analyzer, extractor, warnings))
	return ts
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if ts.cookie != nil {
		req.AddCookie(ts.cookie)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "reviewlens_session" {
			ts.cookie = c
		}
	}
	return w
}

func (ts *testServer) page(t *testing.T) string {
	t.Helper()
	w := ts.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func (ts *testServer) submit(t *testing.T, review, category, action string) {
	t.Helper()
	form := url.Values{"review": {review}, "category": {category}, "action": {action}}
	req := httptest.NewRequest(http.MethodPost, "/review", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := ts.do(t, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestIdlePagePromptsForReview(t *testing.T) {
	ts := newTestServer(t, true)

	body := ts.page(t)
	assert.Contains(t, body, "Please enter a review to analyze.")
	assert.Contains(t, body, `value="sentiment" disabled`)
	assert.Contains(t, body, `value="entities" disabled`)
	for _, c := range []string{"Food", "Product", "Place", "Other"} {
		assert.Contains(t, body, `<option value="`+c+`"`)
	}
	require.NotNil(t, ts.cookie)
}

func TestEmptyReviewRunsNothing(t *testing.T) {
	ts := newTestServer(t, true)
	ts.page(t)

	ts.submit(t, "", "Food", "sentiment")
	ts.submit(t, "  ", "Food", "entities")

	assert.Contains(t, ts.page(t), "Please enter a review to analyze.")
	assert.Zero(t, ts.completer.calls)
	assert.Zero(t, ts.entities.calls)
}

func TestActionsRenderIndependently(t *testing.T) {
	ts := newTestServer(t, true)
	ts.page(t)
	review := "I visited Paris and loved the Eiffel Tower."

	ts.submit(t, review, "Place", "entities")
	body := ts.page(t)
	assert.Contains(t, body, "Named Entities in the Review")
	assert.Contains(t, body, "Paris <code>LOCATION</code>")
	assert.NotContains(t, body, "Overall positive narrative.")

	ts.submit(t, review, "Place", "sentiment")
	body = ts.page(t)
	assert.Contains(t, body, "Overall positive narrative.")
	assert.Contains(t, body, "Paris <code>LOCATION</code>")
	assert.Contains(t, body, `<option value="Place" selected>`)

	ts.submit(t, "A different review", "Place", "update")
	body = ts.page(t)
	assert.NotContains(t, body, "Overall positive narrative.")
	assert.NotContains(t, body, "Named Entities in the Review")
}

func TestResubmittedTextareaKeepsOutputs(t *testing.T) {
	ts := newTestServer(t, true)
	ts.page(t)
	review := "\nI visited Paris and loved the Eiffel Tower."

	ts.submit(t, review, "Place", "entities")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(ts.page(t)))
	require.NoError(t, err)
	resubmitted := doc.Find("textarea#review").Text()
	require.Equal(t, review, resubmitted)

	ts.submit(t, resubmitted, "Place", "sentiment")
	body := ts.page(t)
	assert.Contains(t, body, "Paris <code>LOCATION</code>")
	assert.Contains(t, body, "Overall positive narrative.")
}

func TestSentimentRendersMarkdown(t *testing.T) {
	ts := newTestServer(t, true)
	ts.completer.content = "Mixed overall.\n\n- cold: -40%\n- great: +60%"
	ts.page(t)

	ts.submit(t, "The soup was cold but the service was great.", "Food", "sentiment")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(ts.page(t)))
	require.NoError(t, err)
	items := doc.Find("#sentiment .narrative li")
	require.Equal(t, 2, items.Length())
	assert.Equal(t, "cold: -40%", items.First().Text())

	code, out := postJSON(t, ts, "/api/reviews/sentiment", map[string]string{"review": "ok", "category": "Food"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Mixed overall.\n\n- cold: -40%\n- great: +60%", out["sentiment"])
}

func TestSentimentFailureKeepsPage(t *testing.T) {
	ts := newTestServer(t, true)
	ts.page(t)
	review := "The soup was cold but the service was great."

	ts.submit(t, review, "Food", "sentiment")
	ts.completer.err = &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "quota"}
	ts.submit(t, review, "Food", "sentiment")

	body := ts.page(t)
	assert.Contains(t, body, "Overall positive narrative.")
	assert.Contains(t, body, "quota or rate limit")
}

func TestMissingKeyDisablesSentimentOnly(t *testing.T) {
	ts := newTestServer(t, false)
	ts.page(t)

	ts.submit(t, "I visited Paris", "Place", "sentiment")
	ts.submit(t, "I visited Paris", "Place", "entities")

	body := ts.page(t)
	assert.Contains(t, body, "OPENAI_API_KEY is not set")
	assert.Contains(t, body, `value="sentiment" disabled`)
	assert.Contains(t, body, "OpenAI API key is not configured")
	assert.Contains(t, body, "Paris <code>LOCATION</code>")
	assert.Zero(t, ts.completer.calls)
}

func TestSubmitRejectsUnknownInput(t *testing.T) {
	ts := newTestServer(t, true)

	for _, form := range []url.Values{
		{"review": {"ok"}, "category": {"Movie"}},
		{"review": {"ok"}, "category": {"Food"}, "action": {"delete"}},
	} {
		req := httptest.NewRequest(http.MethodPost, "/review", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := ts.do(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func postJSON(t *testing.T, ts *testServer, path string, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	w := ts.do(t, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w.Code, out
}

func TestSentimentAPI(t *testing.T) {
	ts := newTestServer(t, true)

	code, out := postJSON(t, ts, "/api/reviews/sentiment", map[string]string{"review": "Great phone", "category": "Product"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Overall positive narrative.", out["sentiment"])
	assert.Equal(t, "Product", out["category"])

	code, out = postJSON(t, ts, "/api/reviews/sentiment", map[string]string{"review": "", "category": "Food"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid", out["kind"])

	code, _ = postJSON(t, ts, "/api/reviews/sentiment", map[string]string{"review": "ok", "category": "Movie"})
	assert.Equal(t, http.StatusBadRequest, code)

	ts.completer.err = errors.New("connection reset")
	code, out = postJSON(t, ts, "/api/reviews/sentiment", map[string]string{"review": "ok", "category": "Food"})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "transport", out["kind"])
}

func TestSentimentAPIWithoutKey(t *testing.T) {
	ts := newTestServer(t, false)

	code, out := postJSON(t, ts, "/api/reviews/sentiment", map[string]string{"review": "Great phone", "category": "Product"})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "config", out["kind"])
	assert.Zero(t, ts.completer.calls)
}

func TestEntitiesAPI(t *testing.T) {
	ts := newTestServer(t, true)

	code, out := postJSON(t, ts, "/api/reviews/entities", map[string]string{"review": "I visited Paris."})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{map[string]any{"text": "Paris", "label": "LOCATION"}}, out["entities"])

	code, out = postJSON(t, ts, "/api/reviews/entities", map[string]string{"review": ""})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, out["entities"])
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, false, out["sentiment_enabled"])
	assert.Equal(t, true, out["entities_enabled"])
	assert.Equal(t, float64(0), out["sessions"])
}
