package mongolog

import (
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
)

func testRecord(level Level) *Record {
	return &Record{
		Time:       time.Now(),
		Level:      level,
		LoggerName: "testLogger",
		Message:    "test message",
		FileName:   "/src/app/server.go",
		Module:     "server",
		Method:     "app.handleRequest",
		LineNumber: 42,
		Thread:     7,
		ThreadName: "goroutine-7",
	}
}

// TestFormatStandardKeys verifies that a plain record produces exactly the
// fixed standard key set, no more, no less.
func TestFormatStandardKeys(t *testing.T) {
	doc := NewDocumentFormatter().Format(testRecord(LevelInfo))

	want := []string{
		"timestamp", "level", "thread", "threadName", "message",
		"loggerName", "fileName", "module", "method", "lineNumber",
	}
	if len(doc) != len(want) {
		t.Errorf("document has %d keys, want %d: %v", len(doc), len(want), doc)
	}
	for _, key := range want {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing standard key %q", key)
		}
	}
	if _, ok := doc["exception"]; ok {
		t.Error("exception key present without an error on the record")
	}

	if doc["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", doc["level"])
	}
	if doc["message"] != "test message" {
		t.Errorf("message = %v, want %q", doc["message"], "test message")
	}
	if doc["lineNumber"] != 42 {
		t.Errorf("lineNumber = %v, want 42", doc["lineNumber"])
	}
}

// TestFormatTimestampIsFormattingInstant verifies that the timestamp is the
// moment of formatting in UTC, not the record's creation time.
func TestFormatTimestampIsFormattingInstant(t *testing.T) {
	r := testRecord(LevelInfo)
	r.Time = time.Now().Add(-time.Hour)

	before := time.Now().UTC()
	doc := NewDocumentFormatter().Format(r)
	after := time.Now().UTC()

	ts, ok := doc["timestamp"].(time.Time)
	if !ok {
		t.Fatalf("timestamp is %T, want time.Time", doc["timestamp"])
	}
	if ts.Before(before) || ts.After(after) {
		t.Errorf("timestamp %v outside formatting window [%v, %v]", ts, before, after)
	}
	if ts.Location() != time.UTC {
		t.Errorf("timestamp location = %v, want UTC", ts.Location())
	}
}

// TestFormatExtras verifies extras are copied verbatim and never shadow
// standard keys.
func TestFormatExtras(t *testing.T) {
	r := testRecord(LevelInfo)
	r.Extras = map[string]interface{}{
		"requestID": "abc-123",
		"attempt":   3,
		"level":     "SHADOWED",
		"message":   "SHADOWED",
		"exception": "SHADOWED",
	}

	doc := NewDocumentFormatter().Format(r)

	if doc["requestID"] != "abc-123" {
		t.Errorf("requestID = %v, want abc-123", doc["requestID"])
	}
	if doc["attempt"] != 3 {
		t.Errorf("attempt = %v, want 3", doc["attempt"])
	}
	if doc["level"] != "INFO" {
		t.Errorf("standard key level shadowed: %v", doc["level"])
	}
	if doc["message"] != "test message" {
		t.Errorf("standard key message shadowed: %v", doc["message"])
	}
	if _, ok := doc["exception"]; ok {
		t.Error("extra injected a fake exception key")
	}
}

// TestFormatException verifies the exception sub-document shape
func TestFormatException(t *testing.T) {
	r := testRecord(LevelError)
	r.Err = pkgerrors.New("connection refused")

	doc := NewDocumentFormatter().Format(r)

	exc, ok := doc["exception"].(Document)
	if !ok {
		t.Fatalf("exception is %T, want Document", doc["exception"])
	}
	if exc["message"] != "connection refused" {
		t.Errorf("exception message = %v, want %q", exc["message"], "connection refused")
	}
	if exc["code"] != 0 {
		t.Errorf("exception code = %v, want 0", exc["code"])
	}
	trace, _ := exc["stackTrace"].(string)
	if !strings.Contains(trace, "formatter_test.go") {
		t.Errorf("stack trace does not reference the raising site: %q", trace)
	}
}

// TestFormatExceptionPlainError verifies errors without captured stacks
// still render a stack trace string.
func TestFormatExceptionPlainError(t *testing.T) {
	r := testRecord(LevelError)
	r.Err = errPlain("boom")

	doc := NewDocumentFormatter().Format(r)
	exc := doc["exception"].(Document)
	if exc["stackTrace"] != "boom" {
		t.Errorf("stackTrace = %v, want %q", exc["stackTrace"], "boom")
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
