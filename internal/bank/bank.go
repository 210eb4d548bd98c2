// Package bank ships the built-in question bank and reads bank files.
package bank

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quiz-report-service/internal/domain"
)

// DefaultID identifies the built-in bank.
const DefaultID = "js-basics"

// Default returns the built-in JavaScript basics bank.
func Default() domain.Bank {
	return domain.Bank{
		ID:    DefaultID,
		Title: "JavaScript basics",
		Questions: []domain.Question{
			{
				Text:         "Which is NOT a JavaScript primitive type?",
				Choices:      []string{"string", "number", "object", "boolean"},
				CorrectIndex: 2,
				Explanation:  "Primitives: string, number, boolean, null, undefined, bigint, symbol. 'object' is a reference type.",
			},
			{
				Text:         "What does typeof null return?",
				Choices:      []string{"'null'", "'object'", "'undefined'", "'number'"},
				CorrectIndex: 1,
				Explanation:  "Historical quirk: typeof null === 'object'.",
			},
			{
				Text:         "NaN is of type…",
				Choices:      []string{"'NaN'", "'number'", "'undefined'", "'object'"},
				CorrectIndex: 1,
				Explanation:  "NaN is a special 'number' value meaning Not-a-Number.",
			},
			{
				Text:         "Default value of an uninitialized variable?",
				Choices:      []string{"null", "0", "undefined", "false"},
				CorrectIndex: 2,
				Explanation:  "A declared but unassigned variable is undefined.",
			},
			{
				Text:         "Which one is falsy?",
				Choices:      []string{"0", "'' (empty string)", "null", "All of the above"},
				CorrectIndex: 3,
				Explanation:  "0, '' and null are all falsy values.",
			},
			{
				Text:         "Boolean('') equals…",
				Choices:      []string{"true", "false", "undefined", "throws error"},
				CorrectIndex: 1,
				Explanation:  "Empty string is falsy → Boolean('') is false.",
			},
			{
				Text:         "Boolean(0) equals…",
				Choices:      []string{"true", "false", "undefined", "null"},
				CorrectIndex: 1,
				Explanation:  "0 is falsy → Boolean(0) is false.",
			},
			{
				Text:         "Which creates a number?",
				Choices:      []string{"Number('42')", "parseInt('42')", "+'42'", "All of the above"},
				CorrectIndex: 3,
				Explanation:  "All of them convert '42' into the number 42.",
			},
			{
				Text: "What does '===' do?",
				Choices: []string{
					"Loose equality (type coercion)",
					"Strict equality (no coercion)",
					"Assignment",
					"Inequality",
				},
				CorrectIndex: 1,
				Explanation:  "=== compares both value and type without coercion.",
			},
			{
				Text:         "What is the result of '1' + 2 + 3?",
				Choices:      []string{"6", "'123'", "'15'", "NaN"},
				CorrectIndex: 1,
				Explanation:  "Left to right: '1' + 2 → '12'; '12' + 3 → '123'.",
			},
		},
	}
}

// LoadFile reads a YAML bank file and validates it.
func LoadFile(path string) (domain.Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Bank{}, err
	}
	return Parse(data)
}

// Parse decodes a YAML (or JSON) bank document and validates it.
func Parse(data []byte) (domain.Bank, error) {
	var b domain.Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return domain.Bank{}, fmt.Errorf("decode bank: %w", err)
	}
	if err := b.Validate(); err != nil {
		return domain.Bank{}, err
	}
	return b, nil
}

// Catalog indexes banks by ID, always including the default bank.
func Catalog(extra ...domain.Bank) map[string]domain.Bank {
	out := map[string]domain.Bank{DefaultID: Default()}
	for _, b := range extra {
		out[b.ID] = b
	}
	return out
}
