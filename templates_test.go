package dorf

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedTemplatesContainsForm(t *testing.T) {
	data, err := fs.ReadFile(EmbeddedTemplates(), "form.tpl")
	if err != nil {
		t.Fatalf("expected form template to be readable: %v", err)
	}
	if !strings.Contains(string(data), "<form") {
		t.Fatalf("expected form template to render a form element")
	}
}

func TestAssetsFSContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), "dorf.css")
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), ".dorf-form") {
		t.Fatalf("expected stylesheet to style the form class")
	}
}
