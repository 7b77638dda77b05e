package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestErrorCreation(t *testing.T) {
	err := E(Op("config.LoadSample"), KindConfig, "missing sample_id")

	if err.Op != "config.LoadSample" {
		t.Errorf("expected Op 'config.LoadSample', got %q", err.Op)
	}
	if err.Kind != KindConfig {
		t.Errorf("expected Kind KindConfig, got %v", err.Kind)
	}
	if err.Msg != "missing sample_id" {
		t.Errorf("expected Msg 'missing sample_id', got %q", err.Msg)
	}
}

func TestErrorWithWrappedError(t *testing.T) {
	underlying := fmt.Errorf("connection refused")
	err := E(Op("api.Authenticate"), KindNetwork, underlying, "login request failed")

	if err.Err != underlying {
		t.Error("expected underlying error to be set")
	}

	errStr := err.Error()
	for _, want := range []string{"api.Authenticate", "login request failed", "connection refused"} {
		if !strings.Contains(errStr, want) {
			t.Errorf("error string should contain %q, got %q", want, errStr)
		}
	}
}

func TestErrorStringFormats(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{"op only", &Error{Op: "parse"}, "parse: "},
		{"msg only", &Error{Msg: "failed"}, "failed"},
		{"err only", &Error{Err: fmt.Errorf("root")}, "root"},
		{"op and msg", &Error{Op: "parse", Msg: "failed"}, "parse: failed"},
		{"all fields", &Error{Op: "parse", Msg: "failed", Err: fmt.Errorf("root")}, "parse: failed: root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindUnknown, "unknown"},
		{KindConfig, "config"},
		{KindValidation, "validation"},
		{KindIO, "io"},
		{KindParse, "parse"},
		{KindNetwork, "network"},
		{KindAuth, "auth"},
		{KindDatabase, "database"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap("test", nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	wrapped := Wrap("parser.ReadNanoStats", fmt.Errorf("short read"))
	appErr, ok := wrapped.(*Error)
	if !ok {
		t.Fatal("Wrap should return *Error")
	}
	if appErr.Op != "parser.ReadNanoStats" {
		t.Errorf("expected Op 'parser.ReadNanoStats', got %q", appErr.Op)
	}
}

func TestIsKindFollowsWrapChain(t *testing.T) {
	inner := E(KindParse, "bad number")
	outer := fmt.Errorf("reading stats: %w", inner)

	if !IsKind(outer, KindParse) {
		t.Error("expected IsKind to find KindParse through fmt.Errorf wrapping")
	}
	if IsKind(outer, KindIO) {
		t.Error("expected IsKind to return false for non-matching kind")
	}
	if IsKind(fmt.Errorf("standard error"), KindParse) {
		t.Error("expected IsKind to return false for non-Error type")
	}
}

func TestGetKind(t *testing.T) {
	if kind := GetKind(E(KindAuth, "test")); kind != KindAuth {
		t.Errorf("expected KindAuth, got %v", kind)
	}
	if kind := GetKind(Wrap("op", E(KindNetwork, "timeout"))); kind != KindNetwork {
		t.Errorf("expected KindNetwork through Wrap, got %v", kind)
	}
	if kind := GetKind(fmt.Errorf("standard error")); kind != KindUnknown {
		t.Errorf("expected KindUnknown for non-Error, got %v", kind)
	}
	if kind := GetKind(nil); kind != KindUnknown {
		t.Errorf("expected KindUnknown for nil, got %v", kind)
	}
}

func TestSkipCounter(t *testing.T) {
	sc := NewSkipCounter("abundance rows")

	sc.Skip(fmt.Errorf("error 1"), "row 2")
	sc.Skip(fmt.Errorf("error 2"), "row 5")

	if sc.Count != 2 {
		t.Errorf("expected count 2, got %d", sc.Count)
	}
	if sc.LastErr == nil || sc.LastErr.Error() != "error 2" {
		t.Errorf("LastErr should be last error, got %v", sc.LastErr)
	}
	if sc.LastDetail != "row 5" {
		t.Errorf("LastDetail should be 'row 5', got %q", sc.LastDetail)
	}

	sc.Report()
}

func TestRowScanner(t *testing.T) {
	rs := NewRowScanner("abundance rows")

	rs.RecordScan()
	rs.RecordScan()
	rs.RecordScan()
	rs.RecordSkip(fmt.Errorf("invalid abundance"), "row 4")

	if rs.ScannedCount() != 3 {
		t.Errorf("expected 3 scanned, got %d", rs.ScannedCount())
	}
	if rs.SkippedCount() != 1 {
		t.Errorf("expected 1 skipped, got %d", rs.SkippedCount())
	}

	rs.Report()
}

func TestLogHelpers(t *testing.T) {
	LogAndContinueWith("test operation", fmt.Errorf("test error"), "sample S1")
	IgnoreError(nil, "test")
	IgnoreError(fmt.Errorf("test"), "test reason")
}
