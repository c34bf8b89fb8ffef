package common

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "html"}

	tests := []struct {
		name      string
		format    string
		supported []string
		wantErr   bool
	}{
		{name: "json accepted", format: "json", supported: supported},
		{name: "text accepted", format: "text", supported: supported},
		{name: "html accepted", format: "html", supported: supported},
		{name: "unknown format rejected", format: "yaml", supported: supported, wantErr: true},
		{name: "case sensitive", format: "JSON", supported: supported, wantErr: true},
		{name: "empty format rejected", format: "", supported: supported, wantErr: true},
		{name: "empty allow-list permits anything", format: "yaml", supported: nil},
		{name: "single-entry allow-list accepts", format: "json", supported: []string{"json"}},
		{name: "single-entry allow-list rejects", format: "text", supported: []string{"json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateOutputFormat(%q) = nil, want error", tt.format)
				}
				if !strings.Contains(err.Error(), tt.format) {
					t.Errorf("error %q does not name the rejected format %q", err.Error(), tt.format)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateOutputFormat(%q) = %v, want nil", tt.format, err)
			}
		})
	}
}

func TestGetSupportedFormats(t *testing.T) {
	supported := []string{"json", "text", "html"}
	got := GetSupportedFormats(supported)
	if len(got) != len(supported) {
		t.Fatalf("expected %d formats, got %d", len(supported), len(got))
	}
	for i, want := range supported {
		if got[i] != want {
			t.Errorf("format[%d] = %q, want %q", i, got[i], want)
		}
	}
}
