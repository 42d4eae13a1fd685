package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/restkit/errors"
)

type innerConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Accept  string        `mapstructure:"accept" validate:"mediatype"`
}

type sampleConfig struct {
	BaseURL   string      `mapstructure:"base_url" validate:"required,url"`
	Mode      string      `mapstructure:"mode" validate:"omitempty,oneof=json yaml"`
	Transport innerConfig `mapstructure:"transport"`
	NoTag     string      `validate:"required"`
}

func TestValidate_OK(t *testing.T) {
	cfg := sampleConfig{BaseURL: "http://localhost:8080", Mode: "json", NoTag: "x",
		Transport: innerConfig{Accept: "application/json; charset=utf-8"}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := sampleConfig{BaseURL: "::not a url", Mode: "xml",
		Transport: innerConfig{Timeout: -time.Second, Accept: "not/a/type;;"}}
	err := Validate(cfg)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{
		"base_url: must be a valid URL",
		"mode: must be one of: json yaml",
		"transport.timeout: must be greater than or equal to 0",
		"transport.accept: must be a valid media type",
		"no_tag: is required",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}

	re, _ := errors.AsRestError(err)
	fields, ok := re.Details["fields"].([]FieldError)
	if !ok || len(fields) != 5 {
		t.Errorf("expected 5 field errors, got %v", re.Details["fields"])
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{"BaseURL": "base_u_r_l", "Name": "name", "maxConns": "max_conns"}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
