package store

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mehdihou95/middleware-mapper/internal/logger"
	"github.com/mehdihou95/middleware-mapper/internal/record"
)

func deliveryConfig(endpoint string) DeliveryConfig {
	return DeliveryConfig{
		Endpoint:   endpoint,
		MaxRetries: 2,
		BackoffMs:  1,
	}
}

func testHeader() *record.ASNHeader {
	h := record.NewASNHeader("client-1")
	h.ASNNumber = "ASN-001"
	return h
}

func TestDeliveryPersistHeader(t *testing.T) {
	var gotPath, gotTable, gotCount string
	var envelope struct {
		Table  string                 `json:"table"`
		Record map[string]interface{} `json:"record"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTable = r.Header.Get("X-Mapper-Table")
		gotCount = r.Header.Get("X-Mapper-RecordCount")
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewDeliveryStore(deliveryConfig(srv.URL), logger.New())
	id, err := s.PersistHeader(context.Background(), testHeader())
	if err != nil {
		t.Fatalf("PersistHeader: %v", err)
	}
	if id == "" {
		t.Fatal("no identity assigned")
	}

	if gotPath != "/headers" {
		t.Errorf("path = %q", gotPath)
	}
	if gotTable != record.TableASNHeader || gotCount != "1" {
		t.Errorf("table = %q, count = %q", gotTable, gotCount)
	}
	if envelope.Table != record.TableASNHeader {
		t.Errorf("envelope table = %q", envelope.Table)
	}
	if envelope.Record["asn_number"] != "ASN-001" {
		t.Errorf("record asn_number = %v", envelope.Record["asn_number"])
	}
	if envelope.Record["id"] != id {
		t.Errorf("posted identity %v does not match returned %q", envelope.Record["id"], id)
	}
}

func TestDeliveryPersistLinesBatch(t *testing.T) {
	var gotCount string
	var envelope struct {
		Table   string                   `json:"table"`
		Records []map[string]interface{} `json:"records"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCount = r.Header.Get("X-Mapper-RecordCount")
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	l1 := record.NewASNLine()
	l1.ItemCode = "A1"
	l2 := record.NewASNLine()
	l2.ItemCode = "A2"

	s := NewDeliveryStore(deliveryConfig(srv.URL), logger.New())
	if err := s.PersistLines(context.Background(), []record.Line{l1, l2}); err != nil {
		t.Fatalf("PersistLines: %v", err)
	}

	if gotCount != "2" {
		t.Errorf("record count header = %q, want 2", gotCount)
	}
	if envelope.Table != record.TableASNLine || len(envelope.Records) != 2 {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestDeliveryBasicAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := deliveryConfig(srv.URL)
	cfg.User = "mapper"
	cfg.Pass = "s3cret"

	s := NewDeliveryStore(cfg, logger.New())
	if _, err := s.PersistHeader(context.Background(), testHeader()); err != nil {
		t.Fatalf("PersistHeader: %v", err)
	}

	// mapper:s3cret
	if gotAuth != "Basic bWFwcGVyOnMzY3JldA==" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestDeliveryGzip(t *testing.T) {
	var gotEncoding string
	var envelope map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEncoding = r.Header.Get("Content-Encoding")
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			t.Errorf("gzip reader: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(gz)
		if err := json.Unmarshal(data, &envelope); err != nil {
			t.Errorf("unmarshal: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := deliveryConfig(srv.URL)
	cfg.Gzip = true

	s := NewDeliveryStore(cfg, logger.New())
	if _, err := s.PersistHeader(context.Background(), testHeader()); err != nil {
		t.Fatalf("PersistHeader: %v", err)
	}

	if gotEncoding != "gzip" {
		t.Errorf("Content-Encoding = %q", gotEncoding)
	}
	if envelope["table"] != record.TableASNHeader {
		t.Errorf("decompressed envelope = %+v", envelope)
	}
}

func TestDeliveryRetriesServerError(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewDeliveryStore(deliveryConfig(srv.URL), logger.New())
	if _, err := s.PersistHeader(context.Background(), testHeader()); err != nil {
		t.Fatalf("PersistHeader: %v", err)
	}
	if n := atomic.LoadInt32(&attempts); n != 2 {
		t.Errorf("attempts = %d, want 2", n)
	}
}

func TestDeliveryClientErrorNotRetried(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, "bad envelope", http.StatusBadRequest)
	}))
	defer srv.Close()

	s := NewDeliveryStore(deliveryConfig(srv.URL), logger.New())
	_, err := s.PersistHeader(context.Background(), testHeader())
	if err == nil {
		t.Fatal("expected error for 400 response")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
		t.Errorf("err = %v", err)
	}
	if n := atomic.LoadInt32(&attempts); n != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on client error)", n)
	}
}

func TestDeliveryConflictIsDelivered(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	s := NewDeliveryStore(deliveryConfig(srv.URL), logger.New())
	if _, err := s.PersistHeader(context.Background(), testHeader()); err != nil {
		t.Fatalf("409 must count as delivered, got %v", err)
	}
	if n := atomic.LoadInt32(&attempts); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestDeliveryMaxRetriesExceeded(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := deliveryConfig(srv.URL)
	cfg.MaxRetries = 1

	s := NewDeliveryStore(cfg, logger.New())
	_, err := s.PersistHeader(context.Background(), testHeader())
	if err == nil || !strings.Contains(err.Error(), "max retries exceeded") {
		t.Fatalf("err = %v", err)
	}
	if n := atomic.LoadInt32(&attempts); n != 2 {
		t.Errorf("attempts = %d, want 2 (initial + one retry)", n)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d := parseRetryAfter("3"); d.Seconds() != 3 {
		t.Errorf("parseRetryAfter(3) = %v", d)
	}
	if d := parseRetryAfter(""); d != 0 {
		t.Errorf("parseRetryAfter(empty) = %v", d)
	}
	if d := parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"); d != 0 {
		t.Errorf("parseRetryAfter(date) = %v", d)
	}
}
