package result

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mehdihou95/middleware-mapper/internal/mapping"
)

func testResult(fileName string) *ProcessingResult {
	return New(fileName, "client-1", mapping.Interface{ID: "acme-asn", DocType: "ASN"})
}

func TestNewStartsProcessing(t *testing.T) {
	r := testResult("doc.xml")
	if r.Status != StatusProcessing {
		t.Fatalf("status = %s, want PROCESSING", r.Status)
	}
	if r.Terminal() {
		t.Error("fresh result reports terminal")
	}
	if r.FinishedAt != nil {
		t.Error("FinishedAt set before terminal state")
	}
}

func TestTerminalTransitionHappensOnce(t *testing.T) {
	r := testResult("doc.xml")
	r.MarkError()
	if r.Status != StatusError {
		t.Fatalf("status = %s, want ERROR", r.Status)
	}
	first := r.FinishedAt

	r.MarkSuccess()
	if r.Status != StatusError {
		t.Errorf("terminal status overwritten to %s", r.Status)
	}
	if r.FinishedAt != first {
		t.Error("FinishedAt changed after terminal state")
	}
}

func TestAppendErrorJoinsMessages(t *testing.T) {
	r := testResult("doc.xml")
	r.AppendError("first")
	r.AppendError("")
	r.AppendError("second")
	if r.ErrorTrail != "first; second" {
		t.Errorf("trail = %q", r.ErrorTrail)
	}
}

func TestAppendErrorTruncates(t *testing.T) {
	r := testResult("doc.xml")
	chunk := strings.Repeat("x", 120)
	for i := 0; i < 20; i++ {
		r.AppendError(chunk)
	}
	if len(r.ErrorTrail) > maxTrailLen {
		t.Errorf("trail length %d exceeds bound %d", len(r.ErrorTrail), maxTrailLen)
	}
	if !strings.HasSuffix(r.ErrorTrail, "...") {
		t.Error("truncated trail missing marker")
	}

	before := r.ErrorTrail
	r.AppendError("late message")
	if r.ErrorTrail != before {
		t.Error("append after truncation changed the trail")
	}
}

func TestCreateAndGet(t *testing.T) {
	s := NewStore(10)
	r := testResult("doc.xml")

	id := s.Create(r)
	if id == "" {
		t.Fatal("no ID assigned")
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != r {
		t.Error("Get returned a different result")
	}

	if _, err := s.Get("missing"); err == nil {
		t.Error("Get on unknown ID did not fail")
	}
}

func TestRecordUpserts(t *testing.T) {
	s := NewStore(10)
	r := testResult("doc.xml")

	if err := s.Record(context.Background(), r); err != nil {
		t.Fatalf("Record: %v", err)
	}
	r.MarkSuccess()
	if err := s.Record(context.Background(), r); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := s.Get(r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusSuccess {
		t.Errorf("status = %s after re-record", got.Status)
	}
	if len(s.List()) != 1 {
		t.Errorf("re-record duplicated the result, %d stored", len(s.List()))
	}
}

func TestSubmitQueuesTask(t *testing.T) {
	s := NewStore(2)
	r := testResult("doc.xml")
	payload := []byte("<ASN/>")

	if err := s.Submit(r, payload, "windows-1251"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := s.Get(r.ID); err != nil {
		t.Fatalf("submitted result not stored: %v", err)
	}

	task, err := s.NextTask(context.Background())
	if err != nil {
		t.Fatalf("NextTask: %v", err)
	}
	if task.ResultID != r.ID {
		t.Errorf("task result ID = %q, want %q", task.ResultID, r.ID)
	}
	if task.Interface.ID != "acme-asn" || task.Interface.DocType != "ASN" {
		t.Errorf("task interface = %+v", task.Interface)
	}
	if string(task.Payload) != "<ASN/>" {
		t.Errorf("task payload = %q", task.Payload)
	}
	if task.Encoding != "windows-1251" {
		t.Errorf("task encoding = %q", task.Encoding)
	}
}

func TestSubmitQueueFull(t *testing.T) {
	s := NewStore(1)
	if err := s.Submit(testResult("a.xml"), nil, ""); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	overflow := testResult("b.xml")
	err := s.Submit(overflow, nil, "")
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	if _, err := s.Get(overflow.ID); err == nil {
		t.Error("rejected submission was stored")
	}
}

func TestListNewestFirst(t *testing.T) {
	s := NewStore(10)
	older := testResult("old.xml")
	older.CreatedAt = time.Now().UTC().Add(-time.Minute)
	newer := testResult("new.xml")

	s.Create(older)
	s.Create(newer)

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("listed %d results, want 2", len(list))
	}
	if list[0].FileName != "new.xml" || list[1].FileName != "old.xml" {
		t.Errorf("order = [%s, %s], want newest first", list[0].FileName, list[1].FileName)
	}
}

func TestNextTaskHonorsContext(t *testing.T) {
	s := NewStore(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := s.NextTask(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
