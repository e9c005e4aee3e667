package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mehdihou95/middleware-mapper/internal/engine"
	"github.com/mehdihou95/middleware-mapper/internal/logger"
	"github.com/mehdihou95/middleware-mapper/internal/mapping"
	"github.com/mehdihou95/middleware-mapper/internal/record"
	"github.com/mehdihou95/middleware-mapper/internal/result"
	"github.com/mehdihou95/middleware-mapper/internal/store"
)

const orderDoc = `<?xml version="1.0"?>
<Order>
  <Header>
    <OrderNumber>ORD-100</OrderNumber>
  </Header>
</Order>`

func testRules(ctx context.Context, interfaceID, tableName string) ([]mapping.Rule, error) {
	if tableName != record.TableOrderHeader {
		return nil, nil
	}
	return []mapping.Rule{
		{
			SourcePath:  "//*[local-name()='OrderNumber']",
			TargetField: "order_number",
			TableName:   record.TableOrderHeader,
			IsActive:    true,
			Required:    true,
		},
	}, nil
}

func newTestHandler(t *testing.T, queueSize int) (*Handler, *result.Store, string) {
	t.Helper()
	dropDir := t.TempDir()
	results := result.NewStore(queueSize)
	proc := engine.NewProcessor(store.NewMemoryStore(), engine.RuleSourceFunc(testRules),
		results, engine.DefaultRegistry(), logger.New())
	return NewHandler(results, proc, dropDir, logger.New()), results, dropDir
}

func postDocument(router http.Handler, query, body, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/documents?"+query, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestProcessDocumentSync(t *testing.T) {
	h, _, _ := newTestHandler(t, 10)
	router := SetupRouter(h)

	w := postDocument(router, "interface=acme-order&docType=order&client=client-1&sync=true", orderDoc, "application/xml")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res result.ProcessingResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Status != result.StatusSuccess {
		t.Errorf("status = %s, trail = %s", res.Status, res.ErrorTrail)
	}
	if res.DocType != "ORDER" {
		t.Errorf("docType = %q, query value not uppercased", res.DocType)
	}
	if res.HeaderID == "" {
		t.Error("no header ID in response")
	}
}

func TestProcessDocumentAsync(t *testing.T) {
	h, results, _ := newTestHandler(t, 10)
	router := SetupRouter(h)

	w := postDocument(router, "interface=acme-order&docType=ORDER&client=client-1&file=batch-7.xml", orderDoc, "application/xml")
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	id := resp["resultId"]
	if id == "" {
		t.Fatal("no resultId in response")
	}

	res, err := results.Get(id)
	if err != nil {
		t.Fatalf("result not stored: %v", err)
	}
	if res.Status != result.StatusProcessing {
		t.Errorf("status = %s, want PROCESSING before the worker runs", res.Status)
	}
	if res.FileName != "batch-7.xml" {
		t.Errorf("fileName = %q", res.FileName)
	}

	task, err := results.NextTask(context.Background())
	if err != nil {
		t.Fatalf("NextTask: %v", err)
	}
	if task.ResultID != id {
		t.Errorf("queued task result = %q, want %q", task.ResultID, id)
	}
	if string(task.Payload) != orderDoc {
		t.Error("queued payload does not match uploaded body")
	}
}

func TestProcessDocumentValidation(t *testing.T) {
	h, _, _ := newTestHandler(t, 10)
	router := SetupRouter(h)

	tests := []struct {
		name  string
		query string
		body  string
	}{
		{"missing interface", "docType=ORDER&client=client-1", orderDoc},
		{"missing docType", "interface=acme-order&client=client-1", orderDoc},
		{"missing client", "interface=acme-order&docType=ORDER", orderDoc},
		{"empty body", "interface=acme-order&docType=ORDER&client=client-1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postDocument(router, tt.query, tt.body, "application/xml")
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestProcessDocumentSyncInvalidXML(t *testing.T) {
	h, _, _ := newTestHandler(t, 10)
	router := SetupRouter(h)

	w := postDocument(router, "interface=acme-order&docType=ORDER&client=client-1&sync=true", "<Order><Unclosed>", "application/xml")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestProcessDocumentFromDropDir(t *testing.T) {
	h, _, dropDir := newTestHandler(t, 10)
	router := SetupRouter(h)

	path := filepath.Join(dropDir, "order.xml")
	if err := os.WriteFile(path, []byte(orderDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	body := fmt.Sprintf(`{"inputPath": %q}`, path)
	w := postDocument(router, "interface=acme-order&docType=ORDER&client=client-1&sync=true", body, "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res result.ProcessingResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.FileName != "order.xml" {
		t.Errorf("fileName = %q, want the drop-dir file name", res.FileName)
	}
}

func TestProcessDocumentRejectsPathOutsideDropDir(t *testing.T) {
	h, _, _ := newTestHandler(t, 10)
	router := SetupRouter(h)

	outside := filepath.Join(t.TempDir(), "escape.xml")
	if err := os.WriteFile(outside, []byte(orderDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	body := fmt.Sprintf(`{"inputPath": %q}`, outside)
	w := postDocument(router, "interface=acme-order&docType=ORDER&client=client-1", body, "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for path outside drop dir", w.Code)
	}
}

func TestProcessDocumentQueueFull(t *testing.T) {
	h, _, _ := newTestHandler(t, 1)
	router := SetupRouter(h)

	query := "interface=acme-order&docType=ORDER&client=client-1"
	if w := postDocument(router, query, orderDoc, "application/xml"); w.Code != http.StatusAccepted {
		t.Fatalf("first submit: status = %d", w.Code)
	}
	if w := postDocument(router, query, orderDoc, "application/xml"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("second submit: status = %d, want 503", w.Code)
	}
}

func TestGetResult(t *testing.T) {
	h, results, _ := newTestHandler(t, 10)
	router := SetupRouter(h)

	r := result.New("doc.xml", "client-1", mapping.Interface{ID: "acme-order", DocType: "ORDER"})
	id := results.Create(r)

	req := httptest.NewRequest(http.MethodGet, "/results/"+id, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var got result.ProcessingResult
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != id {
		t.Errorf("id = %q, want %q", got.ID, id)
	}
}

func TestGetResultNotFound(t *testing.T) {
	h, _, _ := newTestHandler(t, 10)
	router := SetupRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/results/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _, _ := newTestHandler(t, 10)
	router := SetupRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("MAPPER_API_KEY", "secret")

	h, _, _ := newTestHandler(t, 10)
	router := SetupRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without key = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/version", nil)
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status with key = %d, want 200", w.Code)
	}
}
