package bank

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quiz-report-service/internal/domain"
)

func TestDefaultBankIsValid(t *testing.T) {
	b := Default()
	if err := b.Validate(); err != nil {
		t.Fatalf("default bank invalid: %v", err)
	}
	if b.Len() != 10 {
		t.Fatalf("expected 10 questions, got %d", b.Len())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	doc := `id: go-basics
title: Go basics
questions:
  - text: "Which keyword starts a goroutine?"
    choices: ["go", "async", "spawn"]
    correctIndex: 0
    explanation: "The go statement starts a goroutine."
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write bank: %v", err)
	}

	b, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if b.ID != "go-basics" || b.Len() != 1 || b.Questions[0].Choices[0] != "go" {
		t.Fatalf("unexpected bank %+v", b)
	}
}

func TestParseRejectsInvalidBank(t *testing.T) {
	_, err := Parse([]byte("id: broken\nquestions:\n  - text: q\n    choices: [a, b]\n    correctIndex: 5\n"))
	if !errors.Is(err, domain.ErrInvalidBank) {
		t.Fatalf("expected invalid bank, got %v", err)
	}
}

func TestCatalogIncludesDefault(t *testing.T) {
	catalog := Catalog(domain.Bank{ID: "extra"})
	if _, ok := catalog[DefaultID]; !ok {
		t.Fatalf("expected default bank in catalog")
	}
	if _, ok := catalog["extra"]; !ok {
		t.Fatalf("expected extra bank in catalog")
	}
}
