// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the study pipeline over HTTP. A document is
// uploaded once into a session; summaries, flashcards, quizzes, answers,
// and discovery all run against the stored session text.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pdiddy/study-engine/internal/discover"
	"github.com/pdiddy/study-engine/internal/session"
	"github.com/pdiddy/study-engine/internal/study"
	"github.com/pdiddy/study-engine/pkg/types"
)

// Version is the API version reported on the root endpoint.
const Version = "0.1.0"

const noDocumentMsg = "No document found. Please upload a PDF first."

// Processor extracts text from an uploaded file.
type Processor interface {
	Process(ctx context.Context, path string) (types.Extraction, error)
}

// KeywordExtractor derives a keyword profile from document text.
type KeywordExtractor interface {
	Extract(ctx context.Context, text string) types.KeywordProfile
}

// StudyGenerator produces study material from document text.
type StudyGenerator interface {
	Summary(ctx context.Context, text string) (string, error)
	Flashcards(ctx context.Context, text string, n int) ([]types.Flashcard, error)
	Quiz(ctx context.Context, text string, n int) ([]types.QuizQuestion, error)
	Answer(ctx context.Context, text, question string) (string, error)
}

// DiscoverFunc runs discovery for a profile and collection.
type DiscoverFunc func(ctx context.Context, profile types.KeywordProfile, collection types.CollectionType, maxResults int) discover.Output

// Server wires the pipeline stages behind the HTTP API.
type Server struct {
	Log      *slog.Logger
	Sessions *session.Store
	Proc     Processor
	Keywords KeywordExtractor
	Study    StudyGenerator
	Discover DiscoverFunc
	Cfg      types.PipelineConfig
}

// LiveDiscover returns a DiscoverFunc backed by the real source adapters.
func LiveDiscover(client *http.Client, cfg types.DiscoveryConfig) DiscoverFunc {
	return func(ctx context.Context, profile types.KeywordProfile, collection types.CollectionType, maxResults int) discover.Output {
		adapters := discover.AdaptersFor(collection, client, cfg)
		return discover.Discover(ctx, profile, collection, adapters, cfg, maxResults, io.Discard)
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/session-info", s.handleSessionInfo)
	r.Delete("/clear-session", s.handleClearSession)
	r.Post("/upload-pdf", s.handleUpload)
	r.Post("/generate-summary", s.handleSummary)
	r.Post("/generate-flashcards", s.handleFlashcards)
	r.Post("/generate-quiz", s.handleQuiz)
	r.Post("/ask-question", s.handleQuestion)
	r.Post("/discover-research", s.handleDiscover(types.CollectionPaper))
	r.Post("/discover-videos", s.handleDiscover(types.CollectionVideo))
	r.Post("/discover-resources", s.handleDiscover(types.CollectionResource))
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "study-engine",
		"version": Version,
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type uploadResponse struct {
	Status      string   `json:"status"`
	Message     string   `json:"message"`
	WordCount   int      `json:"word_count"`
	PageCount   int      `json:"page_count"`
	MethodsUsed []string `json:"methods_used"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file upload"})
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "only PDF files are supported"})
		return
	}

	path, err := s.storeUpload(name, file)
	if err != nil {
		s.Log.Error("store upload", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not store upload"})
		return
	}

	ext, err := s.Proc.Process(r.Context(), path)
	if err != nil {
		s.Log.Error("process document", slog.String("file", name), slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	profile := s.Keywords.Extract(r.Context(), ext.Text)

	sess := session.Session{
		ID:         requestSession(r),
		FileName:   name,
		FilePath:   path,
		Extraction: ext,
		Profile:    profile,
	}
	if err := s.Sessions.Save(r.Context(), sess); err != nil {
		s.Log.Error("save session", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not save session"})
		return
	}

	s.Log.Info("document uploaded",
		slog.String("file", name),
		slog.Int("words", ext.WordCount),
		slog.String("status", string(ext.Status)))

	message := ext.Message
	if message == "" {
		message = fmt.Sprintf("Processed %s: %d words from %d pages", name, ext.WordCount, ext.PageCount)
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Status:      string(ext.Status),
		Message:     message,
		WordCount:   ext.WordCount,
		PageCount:   ext.PageCount,
		MethodsUsed: ext.MethodsUsed,
	})
}

func (s *Server) storeUpload(name string, src io.Reader) (string, error) {
	dir := s.Cfg.Document.UploadsDir
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); err == nil {
		dest = filepath.Join(dir, uuid.NewString()+".pdf")
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dest)
		return "", err
	}
	return dest, out.Close()
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	summary, err := s.Study.Summary(r.Context(), sess.Extraction.Text)
	if err != nil {
		s.writeStudyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	n := clampInt(r.URL.Query().Get("num_cards"), 10, 25)
	cards, err := s.Study.Flashcards(r.Context(), sess.Extraction.Text, n)
	if err != nil {
		s.writeStudyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"flashcards": cards,
		"count":      len(cards),
	})
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	n := clampInt(r.URL.Query().Get("num_questions"), 8, 20)
	questions, err := s.Study.Quiz(r.Context(), sess.Extraction.Text, n)
	if err != nil {
		s.writeStudyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": questions,
		"count":     len(questions),
	})
}

type questionRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question cannot be empty"})
		return
	}

	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	answer, err := s.Study.Answer(r.Context(), sess.Extraction.Text, req.Question)
	if err != nil {
		s.writeStudyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"question": req.Question,
		"answer":   answer,
	})
}

// discoverLimits maps each collection to its query parameter and bounds.
var discoverLimits = map[types.CollectionType]struct {
	param    string
	fallback int
	max      int
}{
	types.CollectionPaper:    {"max_papers", 10, 50},
	types.CollectionVideo:    {"max_videos", 10, 50},
	types.CollectionResource: {"max_resources", 12, 50},
}

func (s *Server) handleDiscover(collection types.CollectionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.loadSession(w, r)
		if !ok {
			return
		}

		limits := discoverLimits[collection]
		maxResults := clampInt(r.URL.Query().Get(limits.param), limits.fallback, limits.max)

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		out := s.Discover(ctx, sess.Profile, collection, maxResults)
		writeJSON(w, http.StatusOK, map[string]any{
			"topic":              sess.Profile.Topic,
			"results":            out.Records,
			"count":              len(out.Records),
			"duplicates_removed": out.DupsRemoved,
			"warnings":           out.AdapterErrors,
		})
	}
}

// requestSession resolves the session ID from the request, defaulting to
// the shared single-document session.
func requestSession(r *http.Request) string {
	if id := r.URL.Query().Get("session"); id != "" {
		return id
	}
	return session.DefaultID
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session":      sess.ID,
		"file_name":    sess.FileName,
		"word_count":   sess.Extraction.WordCount,
		"page_count":   sess.Extraction.PageCount,
		"status":       sess.Extraction.Status,
		"methods_used": sess.Extraction.MethodsUsed,
		"topic":        sess.Profile.Topic,
		"updated_at":   sess.UpdatedAt,
	})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	id := requestSession(r)
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.Log.Error("clear session", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not clear session"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "session": id})
}

// loadSession fetches the request's session, answering 404 when no
// document has been uploaded yet.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, err := s.Sessions.Get(r.Context(), requestSession(r))
	if errors.Is(err, session.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: noDocumentMsg})
		return session.Session{}, false
	}
	if err != nil {
		s.Log.Error("load session", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not load session"})
		return session.Session{}, false
	}
	return sess, true
}

// writeStudyError maps generation failures: unusable document text is the
// caller's problem, anything else is ours.
func (s *Server) writeStudyError(w http.ResponseWriter, err error) {
	if errors.Is(err, study.ErrNoContent) || errors.Is(err, study.ErrTooShort) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.Log.Error("study generation", slog.Any("err", err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
