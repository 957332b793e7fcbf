package openapi_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-dorf/pkg/openapi"
	"github.com/goliatone/go-dorf/pkg/testsupport"
)

func TestImporter_LoadURL(t *testing.T) {
	raw, err := os.ReadFile("testdata/accounts.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.yaml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(raw)
	}))
	defer srv.Close()

	importer := openapi.New(openapi.WithHTTPClient(srv.Client()), openapi.WithHTTPTimeout(time.Second))
	spec, err := importer.LoadURL(testsupport.Context(), srv.URL+"/openapi.yaml")
	if err != nil {
		t.Fatalf("load url: %v", err)
	}
	if spec.Title() != "Accounts API" {
		t.Fatalf("unexpected title %q", spec.Title())
	}

	_, err = importer.LoadURL(testsupport.Context(), srv.URL+"/missing.yaml")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status error, got %v", err)
	}
	if _, err := importer.LoadURL(testsupport.Context(), "ftp://example.com/spec.yaml"); err == nil {
		t.Fatalf("non http url should fail")
	}
}

func TestIsURL(t *testing.T) {
	cases := map[string]bool{
		"https://example.com/openapi.json": true,
		"http://localhost:8080/spec":       true,
		"./openapi.yaml":                   false,
		"":                                 false,
	}
	for input, want := range cases {
		if got := openapi.IsURL(input); got != want {
			t.Fatalf("IsURL(%q) = %v, want %v", input, got, want)
		}
	}
}
