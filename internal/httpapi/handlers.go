package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mehdihou95/middleware-mapper/internal/engine"
	"github.com/mehdihou95/middleware-mapper/internal/ingest"
	"github.com/mehdihou95/middleware-mapper/internal/logger"
	"github.com/mehdihou95/middleware-mapper/internal/mapping"
	"github.com/mehdihou95/middleware-mapper/internal/result"
	"github.com/mehdihou95/middleware-mapper/internal/version"
)

// maxBodyBytes bounds an uploaded document body
const maxBodyBytes = 32 << 20

// Handler handles HTTP requests
type Handler struct {
	results        *result.Store
	processor      *engine.Processor
	allowedBaseDir string
	log            *logger.Logger
}

// NewHandler creates a new handler
func NewHandler(results *result.Store, processor *engine.Processor, allowedBaseDir string, log *logger.Logger) *Handler {
	absDir, err := filepath.Abs(allowedBaseDir)
	if err != nil {
		log.Fatalf("Invalid allowed base directory: %v", err)
	}

	return &Handler{
		results:        results,
		processor:      processor,
		allowedBaseDir: absDir,
		log:            log,
	}
}

// ProcessDocument handles POST /documents. The body is either raw XML or a
// JSON reference to a file inside the allowed drop directory. Processing is
// queued by default; sync=true processes inline and returns the terminal
// result.
func (h *Handler) ProcessDocument(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	iface := mapping.Interface{
		ID:      q.Get("interface"),
		DocType: strings.ToUpper(q.Get("docType")),
	}
	clientID := q.Get("client")

	if iface.ID == "" {
		http.Error(w, "interface is required", http.StatusBadRequest)
		return
	}
	if iface.DocType == "" {
		http.Error(w, "docType is required", http.StatusBadRequest)
		return
	}
	if clientID == "" {
		http.Error(w, "client is required", http.StatusBadRequest)
		return
	}

	payload, fileName, err := h.readDocument(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if name := q.Get("file"); name != "" {
		fileName = name
	}

	if q.Get("sync") == "true" {
		doc, err := ingest.Parse(payload, fileName, q.Get("encoding"))
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid document: %v", err), http.StatusBadRequest)
			return
		}
		res := h.processor.ProcessDocument(r.Context(), doc, iface, clientID)
		writeJSON(w, http.StatusOK, res)
		return
	}

	res := result.New(fileName, clientID, iface)
	if err := h.results.Submit(res, payload, q.Get("encoding")); err != nil {
		http.Error(w, "Queue is full", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"resultId": res.ID})
}

// readDocument extracts the raw document bytes from the request: the body
// itself for XML uploads, or the referenced drop-dir file for JSON bodies
func (h *Handler) readDocument(r *http.Request) ([]byte, string, error) {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			InputPath string `json:"inputPath"`
		}
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return nil, "", fmt.Errorf("invalid JSON: %v", err)
		}
		if req.InputPath == "" {
			return nil, "", fmt.Errorf("inputPath is required")
		}

		resolved, err := ingest.ResolveWithin(req.InputPath, h.allowedBaseDir)
		if err != nil {
			return nil, "", fmt.Errorf("invalid input path: %v", err)
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", fmt.Errorf("read input file: %v", err)
		}
		return data, filepath.Base(resolved), nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %v", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty document body")
	}
	return data, "upload.xml", nil
}

// GetResult handles GET /results/{id}
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/results/")
	if id == "" {
		http.Error(w, "result id is required", http.StatusBadRequest)
		return
	}

	res, err := h.results.Get(id)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListResults handles GET /results
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.results.List())
}

// GetVersion handles GET /version
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Info())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
