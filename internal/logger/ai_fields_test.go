package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCommonFields(t *testing.T) {
	fields := CommonFields("  gemini  ", "gemini-2.5-pro")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldProvider || fields[0].String != "gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if fields[1].Key != FieldModel || fields[1].String != "gemini-2.5-pro" {
		t.Fatalf("unexpected model field: %+v", fields[1])
	}
}

func TestCommonFieldsDropsBlanks(t *testing.T) {
	fields := CommonFields("gemini", "   ")
	if len(fields) != 1 {
		t.Fatalf("blank values must be dropped, got %d fields", len(fields))
	}

	if len(CommonFields("", "")) != 0 {
		t.Fatalf("expected no fields for blank input")
	}
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	enriched := WithCommonFields(zap.New(core), "gemini", "text-embedding-004")
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" {
		t.Fatalf("expected provider field to be gemini, got %q", ctx[FieldProvider])
	}
	if ctx[FieldModel] != "text-embedding-004" {
		t.Fatalf("expected model field, got %q", ctx[FieldModel])
	}
}

func TestWithCommonFieldsNilLogger(t *testing.T) {
	enriched := WithCommonFields(nil, "gemini", "gemini-2.5-pro")
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestTruncateForLog(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		limit  int
		expect string
	}{
		{name: "short passes through", in: "prompt", limit: 10, expect: "prompt"},
		{name: "long is cut with ellipsis", in: "abcdefghij", limit: 4, expect: "abcd..."},
		{name: "non-positive limit", in: "prompt", limit: 0, expect: ""},
		{name: "whitespace trimmed first", in: "  prompt  ", limit: 10, expect: "prompt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateForLog(tt.in, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
