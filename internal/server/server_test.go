// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/study-engine/internal/discover"
	"github.com/pdiddy/study-engine/internal/session"
	"github.com/pdiddy/study-engine/internal/study"
	"github.com/pdiddy/study-engine/pkg/types"
)

type mockProcessor struct {
	ext types.Extraction
	err error
}

func (m mockProcessor) Process(_ context.Context, _ string) (types.Extraction, error) {
	return m.ext, m.err
}

type mockKeywords struct {
	profile types.KeywordProfile
}

func (m mockKeywords) Extract(_ context.Context, _ string) types.KeywordProfile {
	return m.profile
}

type mockStudy struct {
	summary string
	cards   []types.Flashcard
	quiz    []types.QuizQuestion
	answer  string
	err     error

	gotText     string
	gotQuestion string
	gotCount    int
}

func (m *mockStudy) Summary(_ context.Context, text string) (string, error) {
	m.gotText = text
	return m.summary, m.err
}

func (m *mockStudy) Flashcards(_ context.Context, text string, n int) ([]types.Flashcard, error) {
	m.gotText, m.gotCount = text, n
	return m.cards, m.err
}

func (m *mockStudy) Quiz(_ context.Context, text string, n int) ([]types.QuizQuestion, error) {
	m.gotText, m.gotCount = text, n
	return m.quiz, m.err
}

func (m *mockStudy) Answer(_ context.Context, text, question string) (string, error) {
	m.gotText, m.gotQuestion = text, question
	return m.answer, m.err
}

func testServer(t *testing.T, study *mockStudy, disc DiscoverFunc) (*Server, *session.Store) {
	t.Helper()
	store, err := session.NewStore(types.SessionConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	if study == nil {
		study = &mockStudy{}
	}
	if disc == nil {
		disc = func(_ context.Context, _ types.KeywordProfile, _ types.CollectionType, _ int) discover.Output {
			return discover.Output{}
		}
	}

	srv := &Server{
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sessions: store,
		Proc: mockProcessor{ext: types.Extraction{
			Text:        "Photosynthesis converts light energy into chemical energy in chloroplasts.",
			PageCount:   3,
			WordCount:   9,
			MethodsUsed: []string{"llm_parse"},
			Status:      types.ExtractionOK,
		}},
		Keywords: mockKeywords{profile: types.KeywordProfile{
			Topic:            "Photosynthesis",
			ResearchKeywords: []string{"photosynthesis"},
			AllKeywords:      []string{"photosynthesis"},
		}},
		Study:    study,
		Discover: disc,
		Cfg: types.PipelineConfig{
			Document: types.DocumentConfig{UploadsDir: t.TempDir()},
		},
	}
	return srv, store
}

func seedSession(t *testing.T, store *session.Store) {
	t.Helper()
	err := store.Save(context.Background(), session.Session{
		ID:       session.DefaultID,
		FileName: "doc.pdf",
		Extraction: types.Extraction{
			Text:   "stored document text",
			Status: types.ExtractionOK,
		},
		Profile: types.KeywordProfile{Topic: "Photosynthesis", AllKeywords: []string{"photosynthesis"}},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func doRequest(t *testing.T, srv *Server, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func pdfUpload(t *testing.T, name string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(part, "%PDF-1.4 fake document")
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestRootAndHealth(t *testing.T) {
	srv, _ := testServer(t, nil, nil)

	rec := doRequest(t, srv, http.MethodGet, "/", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", rec.Code)
	}
	payload := decodeBody(t, rec)
	if payload["status"] != "running" || payload["name"] != "study-engine" {
		t.Errorf("root payload = %v", payload)
	}

	rec = doRequest(t, srv, http.MethodGet, "/health", nil, "")
	if rec.Code != http.StatusOK || decodeBody(t, rec)["status"] != "ok" {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestUploadPDF(t *testing.T) {
	srv, store := testServer(t, nil, nil)

	body, contentType := pdfUpload(t, "notes.pdf")
	rec := doRequest(t, srv, http.MethodPost, "/upload-pdf", body, contentType)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	payload := decodeBody(t, rec)
	if payload["status"] != "ok" || payload["word_count"] != float64(9) {
		t.Errorf("payload = %v", payload)
	}

	sess, err := store.Get(context.Background(), session.DefaultID)
	if err != nil {
		t.Fatalf("session not saved: %v", err)
	}
	if sess.FileName != "notes.pdf" || sess.Profile.Topic != "Photosynthesis" {
		t.Errorf("session = %+v", sess)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	srv, _ := testServer(t, nil, nil)

	body, contentType := pdfUpload(t, "notes.docx")
	rec := doRequest(t, srv, http.MethodPost, "/upload-pdf", body, contentType)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadMissingFile(t *testing.T) {
	srv, _ := testServer(t, nil, nil)

	rec := doRequest(t, srv, http.MethodPost, "/upload-pdf", strings.NewReader(""), "multipart/form-data; boundary=x")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestEndpointsRequireSession(t *testing.T) {
	srv, _ := testServer(t, nil, nil)

	targets := []struct {
		target string
		body   string
	}{
		{"/generate-summary", ""},
		{"/generate-flashcards", ""},
		{"/generate-quiz", ""},
		{"/discover-research", ""},
		{"/discover-videos", ""},
		{"/discover-resources", ""},
		{"/ask-question", `{"question": "what?"}`},
	}
	for _, tt := range targets {
		rec := doRequest(t, srv, http.MethodPost, tt.target, strings.NewReader(tt.body), "application/json")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", tt.target, rec.Code)
			continue
		}
		if got := decodeBody(t, rec)["error"]; got != noDocumentMsg {
			t.Errorf("%s error = %q", tt.target, got)
		}
	}
}

func TestSessionInfoAndClear(t *testing.T) {
	srv, store := testServer(t, nil, nil)

	rec := doRequest(t, srv, http.MethodGet, "/session-info", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("info without upload status = %d, want 404", rec.Code)
	}

	seedSession(t, store)

	rec = doRequest(t, srv, http.MethodGet, "/session-info", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	payload := decodeBody(t, rec)
	if payload["file_name"] != "doc.pdf" || payload["topic"] != "Photosynthesis" {
		t.Errorf("payload = %v", payload)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/clear-session", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/session-info", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("info after clear status = %d, want 404", rec.Code)
	}
}

func TestUploadNamedSession(t *testing.T) {
	srv, store := testServer(t, nil, nil)

	body, contentType := pdfUpload(t, "notes.pdf")
	rec := doRequest(t, srv, http.MethodPost, "/upload-pdf?session=bio101", body, contentType)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := store.Get(context.Background(), "bio101"); err != nil {
		t.Errorf("named session not saved: %v", err)
	}
	if _, err := store.Get(context.Background(), session.DefaultID); err == nil {
		t.Error("default session should not exist after named upload")
	}

	// Study endpoints see the named session too.
	rec = doRequest(t, srv, http.MethodPost, "/generate-summary?session=bio101", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("summary on named session status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodPost, "/generate-summary", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("summary on default session status = %d, want 404", rec.Code)
	}
}

func TestGenerateSummary(t *testing.T) {
	mock := &mockStudy{summary: "MAIN TOPIC: Photosynthesis"}
	srv, store := testServer(t, mock, nil)
	seedSession(t, store)

	rec := doRequest(t, srv, http.MethodPost, "/generate-summary", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["summary"] != "MAIN TOPIC: Photosynthesis" {
		t.Errorf("body = %s", rec.Body.String())
	}
	if mock.gotText != "stored document text" {
		t.Errorf("generator got %q, want session text", mock.gotText)
	}
}

func TestGenerateSummaryShortDocument(t *testing.T) {
	mock := &mockStudy{err: fmt.Errorf("%w: need at least 10 words", study.ErrTooShort)}
	srv, store := testServer(t, mock, nil)
	seedSession(t, store)

	rec := doRequest(t, srv, http.MethodPost, "/generate-summary", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for short document", rec.Code)
	}
}

func TestGenerateFlashcardsCount(t *testing.T) {
	mock := &mockStudy{cards: []types.Flashcard{{Question: "q", Answer: "a", Difficulty: "Basic"}}}
	srv, store := testServer(t, mock, nil)
	seedSession(t, store)

	rec := doRequest(t, srv, http.MethodPost, "/generate-flashcards?num_cards=5", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if mock.gotCount != 5 {
		t.Errorf("count = %d, want 5", mock.gotCount)
	}
	if decodeBody(t, rec)["count"] != float64(1) {
		t.Errorf("body = %s", rec.Body.String())
	}

	// Default and ceiling.
	doRequest(t, srv, http.MethodPost, "/generate-flashcards", nil, "")
	if mock.gotCount != 10 {
		t.Errorf("default count = %d, want 10", mock.gotCount)
	}
	doRequest(t, srv, http.MethodPost, "/generate-flashcards?num_cards=9999", nil, "")
	if mock.gotCount != 25 {
		t.Errorf("clamped count = %d, want 25", mock.gotCount)
	}
}

func TestGenerateQuizDefaults(t *testing.T) {
	mock := &mockStudy{quiz: []types.QuizQuestion{{Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "A"}}}
	srv, store := testServer(t, mock, nil)
	seedSession(t, store)

	rec := doRequest(t, srv, http.MethodPost, "/generate-quiz", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if mock.gotCount != 8 {
		t.Errorf("default count = %d, want 8", mock.gotCount)
	}
}

func TestAskQuestion(t *testing.T) {
	mock := &mockStudy{answer: "In the chloroplast."}
	srv, store := testServer(t, mock, nil)
	seedSession(t, store)

	body := strings.NewReader(`{"question": "Where does it happen?"}`)
	rec := doRequest(t, srv, http.MethodPost, "/ask-question", body, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	if payload["answer"] != "In the chloroplast." || payload["question"] != "Where does it happen?" {
		t.Errorf("payload = %v", payload)
	}
	if mock.gotQuestion != "Where does it happen?" {
		t.Errorf("generator got question %q", mock.gotQuestion)
	}
}

func TestAskQuestionValidation(t *testing.T) {
	srv, store := testServer(t, nil, nil)
	seedSession(t, store)

	rec := doRequest(t, srv, http.MethodPost, "/ask-question", strings.NewReader(`{"question": "  "}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty question status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/ask-question", strings.NewReader("not json"), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON status = %d, want 400", rec.Code)
	}
}

func TestDiscoverEndpoints(t *testing.T) {
	var gotCollection types.CollectionType
	var gotMax int
	disc := func(_ context.Context, profile types.KeywordProfile, collection types.CollectionType, maxResults int) discover.Output {
		gotCollection, gotMax = collection, maxResults
		return discover.Output{
			Records: []types.CandidateRecord{{
				Title:      "Photosynthesis Basics",
				SourceName: "arxiv",
				URL:        "https://arxiv.org/abs/1",
				Collection: collection,
			}},
			DupsRemoved:   2,
			AdapterErrors: []string{"warning: adapter pubmed failed on specific strategy"},
		}
	}

	srv, store := testServer(t, nil, disc)
	seedSession(t, store)

	tests := []struct {
		target         string
		wantCollection types.CollectionType
		wantMax        int
	}{
		{"/discover-research", types.CollectionPaper, 10},
		{"/discover-research?max_papers=3", types.CollectionPaper, 3},
		{"/discover-videos", types.CollectionVideo, 10},
		{"/discover-resources", types.CollectionResource, 12},
		{"/discover-resources?max_resources=100", types.CollectionResource, 50},
	}
	for _, tt := range tests {
		rec := doRequest(t, srv, http.MethodPost, tt.target, nil, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", tt.target, rec.Code)
			continue
		}
		if gotCollection != tt.wantCollection || gotMax != tt.wantMax {
			t.Errorf("%s dispatched (%s, %d), want (%s, %d)",
				tt.target, gotCollection, gotMax, tt.wantCollection, tt.wantMax)
		}
		payload := decodeBody(t, rec)
		if payload["count"] != float64(1) || payload["duplicates_removed"] != float64(2) {
			t.Errorf("%s payload = %v", tt.target, payload)
		}
		if payload["topic"] != "Photosynthesis" {
			t.Errorf("%s topic = %v", tt.target, payload["topic"])
		}
	}
}
