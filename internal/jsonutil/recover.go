// Package jsonutil provides best-effort recovery of JSON objects embedded in
// LLM response text.
package jsonutil

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoObject indicates no JSON object could be recovered from the text.
var ErrNoObject = errors.New("no JSON object found in text")

// ObjectSpan returns the substring between the first '{' and the last '}' of
// s. This tolerates incidental prose around a JSON body ("Sure! {...} thanks")
// without attempting real repair.
func ObjectSpan(s string) (string, bool) {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last <= first {
		return "", false
	}
	return s[first : last+1], true
}

// DecodeObject parses s as a JSON object, falling back to the ObjectSpan
// recovery when the raw text does not parse. Returns ErrNoObject when
// neither attempt yields an object.
func DecodeObject(s string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err == nil {
		return obj, nil
	}

	span, ok := ObjectSpan(s)
	if !ok {
		return nil, ErrNoObject
	}
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil, ErrNoObject
	}
	return obj, nil
}
