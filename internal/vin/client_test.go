package vin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lotbridge/lotbridge-backend/pkg/config"
)

const testVIN = "1HGCM82633A004352"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(config.VINConfig{BaseURL: server.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestDecodeSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, testVIN) {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Results":[{"ErrorCode":"0","ModelYear":"2003","Make":"HONDA","Model":"Accord","Trim":"EX"}]}`))
	})

	decoded, err := client.Decode(context.Background(), testVIN)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Year != 2003 {
		t.Fatalf("expected year 2003, got %d", decoded.Year)
	}
	if decoded.Make != "HONDA" || decoded.Model != "Accord" || decoded.Trim != "EX" {
		t.Fatalf("unexpected decode result %+v", decoded)
	}
}

func TestDecodeLowercasesAndTrims(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, testVIN) {
			t.Fatalf("vin was not uppercased: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"Results":[{"ModelYear":"2003","Make":" HONDA ","Model":"Accord","Trim":""}]}`))
	})

	decoded, err := client.Decode(context.Background(), "  "+strings.ToLower(testVIN)+" ")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Make != "HONDA" {
		t.Fatalf("expected trimmed make, got %q", decoded.Make)
	}
}

func TestDecodeRejectsShortVIN(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("decoder should not be called")
	})

	if _, err := client.Decode(context.Background(), "ABC123"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDecodeUpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := client.Decode(context.Background(), testVIN); err == nil {
		t.Fatal("expected dependency error")
	}
}

func TestDecodeEmptyResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Results":[]}`))
	})

	if _, err := client.Decode(context.Background(), testVIN); err == nil {
		t.Fatal("expected error for empty results")
	}
}
