package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E100",
			wantMsg: "Configuration file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "storage error",
			code:    "E120",
			wantMsg: "Unknown storage backend",
			wantCat: CategoryStorage,
		},
		{
			name:    "i18n error",
			code:    "E141",
			wantMsg: "Unsupported language",
			wantCat: CategoryI18n,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "visitor %q not found", "abc")
	if err.Message != `visitor "abc" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Error() != `visitor "abc" not found` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestError_WrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New("E121").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if got := err.Error(); got != "E121: Storage backend unavailable: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("loading: %w", New("E100"))

	if !HasCode(err, "E100") {
		t.Error("HasCode(E100) = false, want true")
	}
	if HasCode(err, "E101") {
		t.Error("HasCode(E101) = true, want false")
	}
	if HasCode(stderrors.New("plain"), "E100") {
		t.Error("plain errors carry no code")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E101") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("E140")
	if FromError(orig, "E101") != orig {
		t.Error("FromError should return an existing *Error unchanged")
	}

	wrapped := FromError(stderrors.New("boom"), "E101")
	if wrapped.Code != "E101" || wrapped.Wrapped == nil {
		t.Errorf("FromError = %+v", wrapped)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E120").
		WithDetail(`backend "mongo" is not supported`).
		WithSuggestion("Use one of memory, file, redis, sql, s3")

	out := err.Format()
	for _, want := range []string{
		"ERROR E120: Unknown storage backend",
		`backend "mongo" is not supported`,
		"Hint: Use one of memory, file, redis, sql, s3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Fprint plain = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, fmt.Errorf("ctx: %w", New("E180")))
	if !strings.Contains(buf.String(), "E180: Missing visitor") {
		t.Errorf("Fprint coded = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 9)
	for _, l := range lines {
		if len(l) > 9 {
			t.Errorf("line %q longer than 9", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestRegistryCodesHaveCategory(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%s) missing", code)
		}
		if tmpl.Category == "" || tmpl.Message == "" {
			t.Errorf("%s: incomplete template %+v", code, tmpl)
		}
	}
}
