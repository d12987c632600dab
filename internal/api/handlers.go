package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/smartquiz/internal/ingest"
	"github.com/abhisek/smartquiz/internal/questiongen"
	"github.com/abhisek/smartquiz/internal/quiz"
	"github.com/abhisek/smartquiz/internal/store"
)

// maxQuestionCount caps a single generation request.
const maxQuestionCount = 50

type generateRequest struct {
	Content string   `json:"content"`
	URL     string   `json:"url"`
	Count   int      `json:"count"`
	Types   []string `json:"types"`
}

type generateResponse struct {
	Hash      string          `json:"hash"`
	Source    string          `json:"source"`
	Questions []quiz.Question `json:"questions"`
}

type createSessionRequest struct {
	UserID            string          `json:"user_id"`
	Questions         []quiz.Question `json:"questions"`
	Hash              string          `json:"hash"`
	InitialDifficulty string          `json:"initial_difficulty"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// questionView is a question as shown to the learner: no answer, choices
// already shuffled.
type questionView struct {
	Number     int       `json:"number"`
	Total      int       `json:"total"`
	Question   string    `json:"question"`
	Type       quiz.Type `json:"type"`
	Difficulty quiz.Tier `json:"difficulty"`
	Topic      string    `json:"topic"`
	Options    []string  `json:"options,omitempty"`
}

type sessionResponse struct {
	SessionID string        `json:"session_id"`
	UserID    string        `json:"user_id"`
	State     string        `json:"state"`
	Tier      quiz.Tier     `json:"tier"`
	Answered  int           `json:"answered"`
	Correct   int           `json:"correct"`
	Question  *questionView `json:"question,omitempty"`
}

type answerResponse struct {
	Record quiz.AnswerRecord `json:"record"`
	sessionResponse
}

type resultsResponse struct {
	SessionID       string                `json:"session_id"`
	State           string                `json:"state"`
	Results         quiz.Results          `json:"results"`
	Recommendations []quiz.Recommendation `json:"recommendations"`
	Answers         []quiz.AnswerRecord   `json:"answers"`
	HistoryID       string                `json:"history_id,omitempty"`
}

type statsResponse struct {
	UserID string                    `json:"user_id"`
	Stats  quiz.UserStats            `json:"stats"`
	Topics map[string]quiz.TopicStat `json:"topics"`
	Trend  float64                   `json:"trend"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"backend":  s.deps.BackendName,
		"sessions": s.sessions.len(),
	})
}

// generateQuestions turns content or a URL into questions. Results are
// cached by a hash of the cleaned content and the request shape.
func (s *Server) generateQuestions(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if s.deps.Generator == nil {
		writeError(w, http.StatusServiceUnavailable, "question generation is not configured")
		return
	}

	content := req.Content
	switch {
	case strings.TrimSpace(content) != "":
	case req.URL != "":
		if s.deps.Fetcher == nil {
			writeError(w, http.StatusServiceUnavailable, "url fetching is not configured")
			return
		}
		text, err := s.deps.Fetcher.Fetch(r.Context(), req.URL)
		if err != nil {
			var ferr *ingest.FetchError
			if errors.As(err, &ferr) {
				writeError(w, http.StatusBadGateway, ferr.Message())
				return
			}
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		content = text
	default:
		writeError(w, http.StatusBadRequest, "content or url is required")
		return
	}

	content = ingest.CleanText(content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "content is empty")
		return
	}

	types, err := parseTypes(req.Types)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count := req.Count
	if count <= 0 {
		count = questiongen.DefaultCount
	}
	if count > maxQuestionCount {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("count must be at most %d", maxQuestionCount))
		return
	}

	input := questiongen.GenerateInput{Content: content, Count: count, Types: types}
	hash := input.CacheKey()
	if s.deps.Questions != nil {
		cached, err := s.deps.Questions.QuestionsByHash(r.Context(), hash)
		if err != nil {
			s.logger.Warn("question cache lookup failed", "hash", hash, "error", err)
		} else if len(cached) > 0 {
			writeJSON(w, http.StatusOK, generateResponse{Hash: hash, Source: "cache", Questions: cached})
			return
		}
	}

	res, err := s.deps.Generator.Run(r.Context(), input)
	if err != nil {
		s.logger.Error("question generation failed", "error", err)
		writeError(w, http.StatusBadGateway, "question generation failed")
		return
	}

	if s.deps.Questions != nil {
		if err := s.deps.Questions.SaveQuestions(r.Context(), hash, res.Questions); err != nil {
			s.logger.Warn("question cache save failed", "hash", hash, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, generateResponse{Hash: hash, Source: res.Source, Questions: res.Questions})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	questions := req.Questions
	if len(questions) == 0 && req.Hash != "" && s.deps.Questions != nil {
		cached, err := s.deps.Questions.QuestionsByHash(r.Context(), req.Hash)
		if err != nil {
			s.logger.Error("load question set failed", "hash", req.Hash, "error", err)
			writeError(w, http.StatusInternalServerError, "could not load question set")
			return
		}
		questions = cached
	}
	if len(questions) == 0 {
		writeError(w, http.StatusBadRequest, "questions or a known hash is required")
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = s.deps.DefaultUser
	}

	opts := []quiz.Option{quiz.WithClock(s.now), quiz.WithLogger(s.logger)}
	if req.InitialDifficulty != "" {
		opts = append(opts, quiz.WithInitialTier(quiz.ParseTier(req.InitialDifficulty)))
	}
	ls := &liveSession{session: quiz.NewSession(opts...), userID: userID}
	if err := ls.session.Start(questions); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ls.present()
	s.sessions.add(ls)

	writeJSON(w, http.StatusCreated, ls.view())
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lookup(w, r)
	if !ok {
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	writeJSON(w, http.StatusOK, ls.view())
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.remove(chi.URLParam(r, "sessionID")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) submitAnswer(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	rec, err := ls.session.SubmitAnswer(req.Answer)
	if errors.Is(err, quiz.ErrInvalidState) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ls.present()

	writeJSON(w, http.StatusOK, answerResponse{Record: rec, sessionResponse: ls.view()})
}

// sessionResults reports results so far. The first read after the session
// completes saves the attempt to the user's history.
func (s *Server) sessionResults(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lookup(w, r)
	if !ok {
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	answers := ls.session.Answers()
	res := quiz.ComputeResults(answers)
	resp := resultsResponse{
		SessionID:       ls.session.ID(),
		State:           ls.session.State().String(),
		Results:         res,
		Recommendations: ls.session.GenerateRecommendations(answers),
		Answers:         answers,
	}

	if ls.session.State() == quiz.StateCompleted && ls.saved == nil && s.deps.History != nil {
		entry, err := s.deps.History.SaveAttempt(r.Context(), ls.userID, res, answers)
		if err != nil {
			s.logger.Error("save attempt failed", "session_id", ls.session.ID(), "user", ls.userID, "error", err)
			writeError(w, http.StatusInternalServerError, "could not save attempt")
			return
		}
		ls.saved = entry
		s.logger.Info("attempt saved", "session_id", ls.session.ID(), "user", ls.userID, "accuracy", res.AccuracyPercent)
	}
	if ls.saved != nil {
		resp.HistoryID = ls.saved.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) userHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := s.deps.History.History(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		s.logger.Error("load history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	if entries == nil {
		entries = []quiz.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}
	userID := chi.URLParam(r, "userID")
	n, err := s.deps.History.ClearHistory(r.Context(), userID)
	if err != nil {
		s.logger.Error("clear history failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not clear history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (s *Server) userStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}
	userID := chi.URLParam(r, "userID")
	entries, err := s.deps.History.History(r.Context(), userID, store.DefaultHistoryLimit)
	if err != nil {
		s.logger.Error("load history failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}

	// History is newest first; the trend runs oldest to newest.
	chrono := make([]quiz.HistoryEntry, len(entries))
	for i, e := range entries {
		chrono[len(entries)-1-i] = e
	}
	writeJSON(w, http.StatusOK, statsResponse{
		UserID: userID,
		Stats:  quiz.SummarizeHistory(entries),
		Topics: quiz.TopicPerformance(entries),
		Trend:  quiz.AccuracyTrend(chrono),
	})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*liveSession, bool) {
	ls, ok := s.sessions.get(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
	}
	return ls, ok
}

func (s *Server) requireHistory(w http.ResponseWriter) bool {
	if s.deps.History == nil {
		writeError(w, http.StatusServiceUnavailable, "history storage is not configured")
		return false
	}
	return true
}

// view snapshots the session. Callers hold ls.mu.
func (ls *liveSession) view() sessionResponse {
	resp := sessionResponse{
		SessionID: ls.session.ID(),
		UserID:    ls.userID,
		State:     ls.session.State().String(),
		Tier:      ls.session.Tier(),
		Answered:  len(ls.session.Answers()),
		Correct:   ls.session.CorrectCount(),
	}
	if q, ok := ls.session.Current(); ok {
		pos, total := ls.session.Position()
		resp.Question = &questionView{
			Number:     pos + 1,
			Total:      total,
			Question:   q.Text,
			Type:       q.Type,
			Difficulty: q.Difficulty,
			Topic:      q.Topic,
			Options:    ls.options,
		}
	}
	return resp
}

func parseTypes(labels []string) ([]quiz.Type, error) {
	var types []quiz.Type
	for _, l := range labels {
		t, ok := quiz.ParseType(l)
		if !ok {
			return nil, fmt.Errorf("unknown question type %q", l)
		}
		types = append(types, t)
	}
	return types, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
