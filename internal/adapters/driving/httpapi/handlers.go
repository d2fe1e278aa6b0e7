package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
	"github.com/custodia-labs/documentviewer/internal/logger"
)

// defaultSearchLimit is the number of hits returned when no limit is given.
const defaultSearchLimit = 10

type handler struct {
	documents  driving.DocumentService
	dispatcher driving.Dispatcher
	maxUpload  int64
}

// DocumentDTO is a document without its content.
type DocumentDTO struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	MIMEType   string    `json:"mimeType,omitempty"`
	FileType   string    `json:"fileType"`
	Size       int       `json:"size,omitempty"`
	Layout     string    `json:"layout"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// StatusDTO is the conversion view of a document.
type StatusDTO struct {
	Document         DocumentDTO `json:"document"`
	State            string      `json:"state"`
	Fingerprint      string      `json:"fingerprint,omitempty"`
	Converted        bool        `json:"converted"`
	NumPages         int         `json:"numPages"`
	ConvertedAt      *time.Time  `json:"convertedAt,omitempty"`
	LastError        string      `json:"lastError,omitempty"`
	Indexed          bool        `json:"indexed"`
	StorageType      string      `json:"storageType,omitempty"`
	StoragePath      string      `json:"storagePath,omitempty"`
	EnableIndexation *bool       `json:"enableIndexation,omitempty"`
	SettingsError    string      `json:"settingsError,omitempty"`
}

// SearchDTO is the ranked page list of a search.
type SearchDTO struct {
	Query string           `json:"query"`
	Hits  []domain.PageHit `json:"hits"`
}

func toDocumentDTO(doc *domain.Document) DocumentDTO {
	return DocumentDTO{
		ID:         doc.ID,
		Filename:   doc.Filename,
		MIMEType:   doc.MIMEType,
		FileType:   doc.FileType().String(),
		Size:       len(doc.Content),
		Layout:     doc.Layout,
		CreatedAt:  doc.CreatedAt,
		ModifiedAt: doc.ModifiedAt,
	}
}

// list handles GET /documents.
func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]DocumentDTO, len(docs))
	for i := range docs {
		out[i] = toDocumentDTO(&docs[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// upload handles POST /documents with a multipart "file" field.
func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required", err.Error())
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "could not read upload", err.Error())
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "application/octet-stream" {
		mimeType = ""
	}
	doc, err := h.documents.Upload(r.Context(), header.Filename, mimeType, content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Location", "/documents/"+doc.ID)
	writeJSON(w, http.StatusCreated, toDocumentDTO(doc))
}

// get handles GET /documents/{id}.
func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentDTO(doc))
}

// update handles PUT /documents/{id}; the body is the new content.
func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	content, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "could not read body", err.Error())
		return
	}
	doc, err := h.documents.Update(r.Context(), chi.URLParam(r, "id"), content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentDTO(doc))
}

// delete handles DELETE /documents/{id}.
func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.documents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// status handles GET /documents/{id}/status.
func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	st, err := h.documents.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := StatusDTO{
		Document:         toDocumentDTO(&st.Document),
		State:            string(st.State),
		Indexed:          st.Indexed,
		EnableIndexation: st.LocalOverride.EnableIndexation,
		SettingsError:    st.SettingsError,
	}
	if st.Status != nil {
		out.Fingerprint = st.Status.Fingerprint
		out.Converted = st.Status.SuccessfullyConverted
		out.NumPages = st.Status.NumPages
		out.LastError = st.Status.LastError
		if !st.Status.ConvertedAt.IsZero() {
			at := st.Status.ConvertedAt
			out.ConvertedAt = &at
		}
	}
	if !st.Storage.IsZero() {
		out.StorageType = st.Storage.Type.String()
		out.StoragePath = st.Storage.Path
	}
	writeJSON(w, http.StatusOK, out)
}

// convert handles POST /documents/{id}/convert[?force=true].
func (h *handler) convert(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	id := chi.URLParam(r, "id")
	if err := h.dispatcher.RequestConversion(r.Context(), id, force); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"documentId": id, "queued": true, "force": force})
}

// search handles GET /documents/{id}/search?q=&limit=.
func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required", "")
		return
	}
	limit := defaultSearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", "")
			return
		}
		limit = n
	}

	hits, err := h.documents.Search(r.Context(), chi.URLParam(r, "id"), query, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if hits == nil {
		hits = []domain.PageHit{}
	}
	writeJSON(w, http.StatusOK, SearchDTO{Query: query, Hits: hits})
}

// pages handles GET /documents/{id}/pages/{kind}.
func (h *handler) pages(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(w, r)
	if !ok {
		return
	}
	names, err := h.documents.Pages(r.Context(), chi.URLParam(r, "id"), kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// page handles GET /documents/{id}/pages/{kind}/{page}.
func (h *handler) page(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "page must be a positive integer", "")
		return
	}

	data, err := h.documents.Page(r.Context(), chi.URLParam(r, "id"), kind, n)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	contentType := "text/plain; charset=utf-8"
	if kind.IsImage() {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Debug("http: write page: %v", err)
	}
}

func parseKind(w http.ResponseWriter, r *http.Request) (domain.ArtifactKind, bool) {
	kind := domain.ArtifactKind(chi.URLParam(r, "kind"))
	if !kind.IsValid() {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown artifact kind %q", kind), "")
		return "", false
	}
	return kind, true
}

// writeServiceError maps core errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedType):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrConfiguration):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrQueueClosed):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		logger.Error("http: %v", err)
	}
	writeError(w, status, http.StatusText(status), err.Error())
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{
		"error": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("http: encode response: %v", err)
	}
}
