package util

import (
	"net/http"
	"testing"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "", "localhost,.internal")

	tests := []struct {
		target string
		want   string
	}{
		{"http://dict.example/lookup", "http://proxy.local:3128"},
		{"https://dict.example/lookup", "http://proxy.local:3128"},
		{"http://api.internal/lookup", ""},
		{"http://localhost:8080/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, tt.target, nil)
			if err != nil {
				t.Fatal(err)
			}
			got, err := proxy(req)
			if err != nil {
				t.Fatalf("proxy(%s) error: %v", tt.target, err)
			}
			if tt.want == "" {
				if got != nil {
					t.Errorf("expected direct connection for %s, got %s", tt.target, got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("proxy(%s) = %v, want %s", tt.target, got, tt.want)
			}
		})
	}
}

func TestNewProxyFunc_SeparateHTTPS(t *testing.T) {
	proxy := NewProxyFunc("http://plain.local:3128", "http://secure.local:3129", "")

	req, _ := http.NewRequest(http.MethodGet, "https://dict.example/", nil)
	got, err := proxy(req)
	if err != nil || got == nil || got.Host != "secure.local:3129" {
		t.Errorf("expected HTTPS proxy, got %v (%v)", got, err)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://dict.example/", nil)
	got, err = proxy(req)
	if err != nil || got == nil || got.Host != "plain.local:3128" {
		t.Errorf("expected HTTP proxy, got %v (%v)", got, err)
	}
}

func TestNewTransport(t *testing.T) {
	tr := NewTransport("http://proxy.local:3128", "", "")
	if tr.Proxy == nil {
		t.Fatal("expected proxy function on transport")
	}
}
