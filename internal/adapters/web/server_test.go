package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mikey/sentence-assistant/internal/config"
	"github.com/mikey/sentence-assistant/internal/core"
	"github.com/mikey/sentence-assistant/internal/sharelink"
	"github.com/mikey/sentence-assistant/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeAssistant struct {
	mu         sync.Mutex
	analyzed   []string
	analyzeErr error
	start, end *time.Time
	historyErr error
	deleted    []string
	quizzes    []*core.QuizSubmission
}

func (f *fakeAssistant) AnalyzeSentence(_ context.Context, sentence string) (*core.SentenceAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	if strings.TrimSpace(sentence) == "" {
		return nil, core.ErrEmptySentence
	}
	f.analyzed = append(f.analyzed, sentence)
	return &core.SentenceAnalysis{Sentence: sentence, Translation: "notes", Words: []core.WordEntry{}}, nil
}

func (f *fakeAssistant) GetHistory(_ context.Context, start, end *time.Time) (*core.HistoryReport, error) {
	f.start, f.end = start, end
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return &core.HistoryReport{Entries: []core.HistoryEntry{}, Words: []core.WordCount{}}, nil
}

func (f *fakeAssistant) CheckHistory(context.Context) (*core.HistoryStatus, error) {
	return &core.HistoryStatus{Status: "empty"}, nil
}

func (f *fakeAssistant) DeleteWord(_ context.Context, word string, dryRun bool) (*core.DeleteWordResult, error) {
	f.deleted = append(f.deleted, word)
	status := core.DeleteStatusDeleted
	if dryRun {
		status = core.DeleteStatusDryRun
	}
	return &core.DeleteWordResult{Status: status, Word: word, DryRun: dryRun, Affected: 1}, nil
}

func (f *fakeAssistant) SubmitQuizResult(_ context.Context, s *core.QuizSubmission) (*core.QuizResult, error) {
	f.quizzes = append(f.quizzes, s)
	return &core.QuizResult{ID: "q", Total: len(s.Answers), Missed: []string{}}, nil
}

func newTestServer(t *testing.T) (*Server, *fakeAssistant) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	repairer, err := utils.NewRepairer(utils.DefaultRepairOptions(), logger)
	require.NoError(t, err)

	assistant := &fakeAssistant{}
	srv := NewServer(
		assistant,
		sharelink.New(sharelink.DefaultCapacity, logger),
		repairer,
		utils.NewTextProcessor(logger),
		config.ServerConfig{
			ListenAddress:     "127.0.0.1:0",
			ReadHeaderTimeout: time.Second,
			ShutdownTimeout:   time.Second,
			AllowedOrigins:    []string{"*"},
		},
		config.TLSConfig{},
		config.ShareConfig{Capacity: sharelink.DefaultCapacity, IDSentinel: "0"},
		logger,
	)
	return srv, assistant
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func shareID(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	id := u.Query().Get("auto_sentence_id")
	require.NotEmpty(t, id)
	return id
}

func TestShareThenResolve(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "http://example.com/open/api/share", jsonBody(t, map[string]string{"sentence": "笔记\n"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	link := rec.Body.String()
	assert.True(t, strings.HasPrefix(link, "http://example.com?auto_sentence_id="), link)
	id := shareID(t, link)
	assert.Len(t, id, 18)

	page := do(t, srv, http.MethodGet, "/?auto_sentence_id="+id, "")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), ">笔记</textarea>")
}

func TestShareRepairsMojibake(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/open/api/share", jsonBody(t, map[string]string{"sentence": "ç¬”è®°"}))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "笔记", srv.shares.Resolve(shareID(t, rec.Body.String())))
}

func TestShareCleansLiteralEscapes(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/open/api/share", `{"sentence":"笔记\\n"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "笔记", srv.shares.Resolve(shareID(t, rec.Body.String())))
}

func TestShareRejectsMissingSentence(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, body := range []string{"", "{}", `{"sentence":""}`, `{"sentence":"  \n"}`, `{"sentence":42}`, "not json"} {
		t.Run(body, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/open/api/share", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, msgNoSentence, errorOf(t, rec))
		})
	}
	assert.Zero(t, srv.shares.Len())
}

func TestShareUsesPublicHost(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.share.PublicHost = "share.example.org"

	rec := do(t, srv, http.MethodPost, "http://internal:5010/open/api/share", `{"sentence":"你好"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "http://share.example.org?auto_sentence_id="))
}

func TestIndexFallsBackToAutoSentence(t *testing.T) {
	srv, _ := newTestServer(t)
	id, err := srv.shares.Store("笔记")
	require.NoError(t, err)

	tests := []struct {
		name   string
		query  string
		expect string
	}{
		{"resolved", "?auto_sentence_id=" + id + "&auto_sentence=other", ">笔记</textarea>"},
		{"sentinel", "?auto_sentence_id=0&auto_sentence=hello", ">hello</textarea>"},
		{"unknown id", "?auto_sentence_id=20240101000000" + "0000&auto_sentence=hello", ">hello</textarea>"},
		{"none", "", "></textarea>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, "/"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, rec.Body.String(), tt.expect)
		})
	}
}

func TestOpenAnalyzeRendersSentence(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/open/api/analyz", `{"sentence":"今天天气很好"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ">今天天气很好</textarea>")

	rec = do(t, srv, http.MethodPost, "/open/api/analyz", "{broken")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "></textarea>")
}

func TestAnalyze(t *testing.T) {
	srv, assistant := newTestServer(t)

	for _, body := range []string{"", "{}", `{"sentence":""}`, `{"sentence":"   "}`} {
		rec := do(t, srv, http.MethodPost, "/api/analyze", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, msgNoSentence, errorOf(t, rec), body)
	}

	rec := do(t, srv, http.MethodPost, "/api/analyze", `{"sentence":"笔记"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var analysis core.SentenceAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, "notes", analysis.Translation)
	assert.Equal(t, []string{"笔记"}, assistant.analyzed)

	assistant.analyzeErr = fmt.Errorf("%w: timeout", core.ErrAssistantUnavailable)
	rec = do(t, srv, http.MethodPost, "/api/analyze", `{"sentence":"笔记"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSubmitQuiz(t *testing.T) {
	srv, assistant := newTestServer(t)

	for _, body := range []string{"", "{}", "null", "[]"} {
		rec := do(t, srv, http.MethodPost, "/api/submit_quiz", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, msgNoData, errorOf(t, rec), body)
	}

	rec := do(t, srv, http.MethodPost, "/api/submit_quiz", `{"answers":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorOf(t, rec), "answers")

	rec = do(t, srv, http.MethodPost, "/api/submit_quiz", `{"answers":[{"correct":true}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorOf(t, rec), "word")

	rec = do(t, srv, http.MethodPost, "/api/submit_quiz", `{"quiz_id":"daily","answers":[{"word":"笔记","correct":true}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, assistant.quizzes, 1)
	assert.Equal(t, "daily", assistant.quizzes[0].QuizID)
}

func TestGetHistory(t *testing.T) {
	srv, assistant := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/history?start_date=2024-03-01&end_date=2024-03-09", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, assistant.start)
	require.NotNil(t, assistant.end)
	assert.Equal(t, "2024-03-01", assistant.start.Format(core.DateLayout))
	assert.Equal(t, "2024-03-09", assistant.end.Format(core.DateLayout))

	rec = do(t, srv, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, assistant.start)
	assert.Nil(t, assistant.end)

	rec = do(t, srv, http.MethodGet, "/api/history?start_date=03/01/2024", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorOf(t, rec), "start_date")

	assistant.historyErr = core.ErrInvalidRange
	rec = do(t, srv, http.MethodGet, "/api/history?start_date=2024-03-09&end_date=2024-03-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryCheckAndDeleteWord(t *testing.T) {
	srv, assistant := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/history/check", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"empty"`)

	rec = do(t, srv, http.MethodPost, "/api/history/delete_word", "{}")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "word is a required field", errorOf(t, rec))

	rec = do(t, srv, http.MethodPost, "/api/history/delete_word", `{"word":"笔记","dry_run":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var result core.DeleteWordResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, core.DeleteStatusDryRun, result.Status)
	assert.Equal(t, []string{"笔记"}, assistant.deleted)
}

func TestPages(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/history")

	rec = do(t, srv, http.MethodGet, "/api/analyze", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestOpenAPICORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/open/api/share", nil)
	req.Header.Set("Origin", "https://reader.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverJSON(t *testing.T) {
	h := recoverJSON(zaptest.NewLogger(t))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body panicWire
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, body.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{core.ErrEmptySentence, http.StatusBadRequest},
		{core.ErrEmptyWord, http.StatusBadRequest},
		{core.ErrInvalidRange, http.StatusBadRequest},
		{sharelink.ErrIDSpaceExhausted, http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", core.ErrAssistantUnavailable), http.StatusBadGateway},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}

func TestStartStop(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.tls = config.TLSConfig{
		Enabled:       true,
		ListenAddress: "127.0.0.1:0",
		CertFile:      "testdata/missing-cert.pem",
		KeyFile:       "testdata/missing-key.pem",
	}

	require.NoError(t, srv.Start())
	assert.Empty(t, srv.TLSAddr())

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + srv.Addr() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	client.CloseIdleConnections()

	require.NoError(t, srv.Stop())
}
