package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appingest "github.com/GCHAHA92/Geumcheon/internal/application/ingest"
	appreports "github.com/GCHAHA92/Geumcheon/internal/application/reports"
	domai "github.com/GCHAHA92/Geumcheon/internal/domain/ai"
	domain "github.com/GCHAHA92/Geumcheon/internal/domain/reports"
	"github.com/GCHAHA92/Geumcheon/internal/middleware"
)

type Router struct {
	ingestSvc  *appingest.Service
	reportsSvc *appreports.Service
}

// NewRouter mounts every report route. The health handler is built in main
// where the backend handles live.
func NewRouter(ingestSvc *appingest.Service, reportsSvc *appreports.Service, health http.HandlerFunc) http.Handler {
	r := &Router{ingestSvc: ingestSvc, reportsSvc: reportsSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	if health == nil {
		health = func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}
	}
	mux.Get("/health", health)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/reports/extract", r.wrap(r.handleExtract))
		rt.Post("/reports/drafts/{id}/structure", r.wrap(r.handleStructure))
		rt.Post("/reports/drafts/{id}/save", r.wrap(r.handleSave))
		rt.Get("/reports/search", r.wrap(r.handleSearch))
		rt.Get("/reports/latest", r.wrap(r.handleLatest))
		rt.Get("/reports/{id}", r.wrap(r.handleGet))
		rt.Get("/reports", r.wrap(r.handleList))
		rt.Get("/summary", r.wrap(r.handleSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks a caller error so wrap can answer 400 instead of 500.
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }
func (b badRequest) Unwrap() error { return b.err }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var br badRequest
		if errors.As(err, &br) {
			http.Error(w, br.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, appingest.ErrDraftNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if errors.Is(err, appingest.ErrNotStructured) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if errors.Is(err, domai.ErrQuotaExceeded) {
			http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			return
		}
		if errors.Is(err, domai.ErrContentFiltered) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		var exErr *domai.ExtractionError
		if errors.As(err, &exErr) {
			// terminal chain failure: ship the raw model text for diagnosis
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]any{
				"error": exErr.Error(),
				"stage": exErr.Stage,
				"raw":   exErr.Raw,
			})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// POST /v1/{tenant}/reports/extract, multipart PDF upload
func (r *Router) handleExtract(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequest{err}
	}

	req.Body = http.MaxBytesReader(w, req.Body, middleware.MaxUploadBytes)
	file, header, err := req.FormFile("file")
	if err != nil {
		return badRequest{fmt.Errorf("multipart field 'file' is required: %w", err)}
	}
	defer file.Close()

	if err := middleware.ValidateUploadFilename(header.Filename); err != nil {
		return badRequest{err}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	draft, err := r.ingestSvc.BeginDraft(req.Context(), tenant, header.Filename, data)
	if err != nil {
		if errors.Is(err, appingest.ErrEmptyPDF) {
			return badRequest{err}
		}
		return err
	}
	middleware.IncrementUploads()

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"draft_id":      draft.ID,
		"file_name":     draft.FileName,
		"chars":         len([]rune(draft.RawText)),
		"cleaned_chars": len([]rune(draft.CleanText)),
		"preview":       preview(draft.RawText, 2000),
	})
}

// POST /v1/{tenant}/reports/drafts/{id}/structure
func (r *Router) handleStructure(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	middleware.IncrementExtractions()
	draft, err := r.ingestSvc.Structure(req.Context(), tenant, id)
	if err != nil {
		middleware.IncrementExtractionsFailed()
		return err
	}
	if draft.Result.Stage == domai.StageRepaired {
		middleware.IncrementRepairs()
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"draft_id":      draft.ID,
		"stage":         draft.Result.Stage,
		"chunked":       draft.Result.Chunked,
		"failed_chunks": draft.Result.FailedChunks,
		"extraction":    draft.Result.Extraction,
	})
}

// POST /v1/{tenant}/reports/drafts/{id}/save
func (r *Router) handleSave(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	rep, draft, err := r.ingestSvc.StructuredReport(tenant, id)
	if err != nil {
		return err
	}

	res, err := r.reportsSvc.Save(req.Context(), rep, draft.PDF)
	if err != nil {
		return err
	}
	middleware.IncrementReportsSaved()

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(res)
}

// GET /v1/{tenant}/reports/search?q=keyword
func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	keyword := req.URL.Query().Get("q")

	if err := middleware.ValidateKeyword(keyword); err != nil {
		return badRequest{err}
	}
	middleware.IncrementSearches()

	results, err := r.reportsSvc.Search(req.Context(), tenant, keyword)
	if err != nil {
		return err
	}
	if results == nil {
		results = []*domain.SearchResult{}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"keyword": keyword,
		"total":   len(results),
		"results": results,
	})
}

// GET /v1/{tenant}/reports/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit, 20, 100)

	list, err := r.reportsSvc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/reports/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	rep, err := r.reportsSvc.Get(req.Context(), tenant, domain.ReportID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rep)
}

// GET /v1/{tenant}/reports?page=&page_size=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	res, err := r.reportsSvc.Paginate(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(res)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.reportsSvc.Summary(req.Context(), tenant, days)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
