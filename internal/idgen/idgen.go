// Package idgen generates form instance ids and the DOM ids derived from
// them.
package idgen

import (
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefix starts every form id so that ids are valid HTML identifiers.
const Prefix = "dorf-"

// Alphabet is restricted to lowercase letters and digits.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length is the number of random characters after Prefix.
const Length = 8

// FormID returns a new form id.
func FormID() (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return Prefix + id, nil
}

var keyReplacer = strings.NewReplacer(".", "-", " ", "-", "[", "-", "]", "")

// FieldID derives the DOM id of a field from the form id and the field key.
func FieldID(formID, key string) string {
	key = keyReplacer.Replace(strings.TrimSpace(key))
	if formID == "" {
		return key
	}
	return formID + "-" + key
}
