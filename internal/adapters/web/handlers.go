package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mikey/sentence-assistant/internal/core"
	"github.com/mikey/sentence-assistant/internal/sharelink"
	"github.com/mikey/sentence-assistant/internal/utils"
	"go.uber.org/zap"
)

type analyzeRequest struct {
	Sentence string `json:"sentence" validate:"required"`
}

type deleteWordRequest struct {
	Word   string `json:"word" validate:"required"`
	DryRun bool   `json:"dry_run"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	text := ""
	if id := q.Get("auto_sentence_id"); id != "" && id != s.share.IDSentinel {
		text = s.shares.Resolve(id)
	}
	if text == "" {
		text = q.Get("auto_sentence")
	}

	s.render(w, "index.html", indexData{AutoSentence: text})
}

func (s *Server) handleHistoryPage(w http.ResponseWriter, _ *http.Request) {
	s.render(w, "history.html", nil)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r, "start_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDate(r, "end_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.assistant.GetHistory(r.Context(), start, end)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCheckHistory(w http.ResponseWriter, r *http.Request) {
	status, err := s.assistant.CheckHistory(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleDeleteWord(w http.ResponseWriter, r *http.Request) {
	var req deleteWordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := s.assistant.DeleteWord(r.Context(), req.Word, req.DryRun)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if errors.Is(err, errEmptyBody) || isValidationError(err) {
			writeError(w, http.StatusBadRequest, msgNoSentence)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.assistant.AnalyzeSentence(r.Context(), req.Sentence)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		if errors.Is(err, errEmptyBody) {
			writeError(w, http.StatusBadRequest, msgNoData)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if isEmptyJSON(probe) {
		writeError(w, http.StatusBadRequest, msgNoData)
		return
	}

	var submission core.QuizSubmission
	if err := decodeBytes(body, &submission); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := s.assistant.SubmitQuizResult(r.Context(), &submission)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleOpenAnalyze renders the index page prefilled with the posted sentence.
// Unparseable bodies render an empty page.
func (s *Server) handleOpenAnalyze(w http.ResponseWriter, r *http.Request) {
	data := decodeLenient(w, r)
	s.render(w, "index.html", indexData{AutoSentence: utils.StringOrEmpty(data["sentence"])})
}

// handleShare repairs the posted sentence, stores it and answers with a link to it
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	data := decodeLenient(w, r)
	text := s.repairer.Repair(s.textProcessor.CleanSentence(utils.StringOrEmpty(data["sentence"])))
	if text == "" {
		writeError(w, http.StatusBadRequest, msgNoSentence)
		return
	}

	id, err := s.shares.Store(text)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	host := s.share.PublicHost
	if host == "" {
		host = r.Host
	}
	s.logger.Debug("stored shared sentence", zap.String("id", id))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sharelink.BuildURL(host, id)))
}

// parseDate reads an optional YYYY-MM-DD query parameter
func parseDate(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(core.DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", name, raw)
	}
	return &t, nil
}

func isEmptyJSON(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	}
	return false
}
