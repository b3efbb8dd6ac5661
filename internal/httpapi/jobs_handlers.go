package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"greenremote-engine/internal/domain"
	"greenremote-engine/internal/events"
	"greenremote-engine/internal/store"
)

type JobsHandler struct {
	DB        *sql.DB
	Hub       *events.Hub
	DeleteJob func(ctx context.Context, db *sql.DB, id int64) error
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	jobs, err := store.ListJobs(r.Context(), h.DB, store.ListJobsOpts{
		Search:     q.Get("search"),
		Location:   q.Get("location"),
		Category:   q.Get("category"),
		Experience: q.Get("experience"),
		RemoteOnly: q.Get("remote") == "1" || q.Get("remote") == "true",
		Sort:       q.Get("sort"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	writeJSON(w, jobs)
}

func (h JobsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	if err := h.DeleteJob(r.Context(), h.DB, id); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, "job_deleted", 1, map[string]any{"id": id}))
	writeJSON(w, map[string]any{"ok": true, "id": id})
}

type addJobReq struct {
	Title           string `json:"title"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	PublicationDate string `json:"publication_date"`
	ApplyURL        string `json:"apply_url"`
	ExperienceLevel string `json:"experience_level"`
}

// Add inserts one manually submitted posting. Duplicate apply URLs are a
// conflict, not a silent no-op, so the caller knows the row was dropped.
func (h JobsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addJobReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Title) == "" ||
		strings.TrimSpace(req.Company) == "" ||
		strings.TrimSpace(req.ApplyURL) == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_fields", "title, company and apply_url are required")
		return
	}

	j := domain.Job{
		Title:           req.Title,
		Company:         req.Company,
		Location:        req.Location,
		Category:        req.Category,
		Description:     req.Description,
		ApplyURL:        strings.TrimSpace(req.ApplyURL),
		ExperienceLevel: req.ExperienceLevel,
		Source:          "manual",
	}
	if s := strings.TrimSpace(req.PublicationDate); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_date", "publication_date must be RFC 3339")
			return
		}
		j.PublishedAt = &t
	}

	added, err := store.InsertJobIgnore(r.Context(), h.DB, j)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	if !added {
		WriteError(w, r, http.StatusConflict, "duplicate_apply_url", "a job with this apply_url already exists")
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, "job_created", 1, map[string]any{"apply_url": j.ApplyURL}))
	WriteJSON(w, http.StatusCreated, map[string]any{"ok": true})
}
