package main

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/flynn/json5"
)

// The archive does not return plain JSON. Every endpoint wraps a JavaScript
// call in an XML document:
//
//	<data>AcademaPUJS.set({points:{...}, params:{...}})</data>
//
// The call argument is a JavaScript object literal (unquoted keys,
// single-quoted strings, trailing commas), not JSON, and carries one known
// malformation: an empty value is omitted entirely ("alt:,"), which no
// parser accepts until the empty string is put back.
const (
	pujsPrefix = "AcademaPUJS.set("
	pujsSuffix = ")"
)

// DecodeError reports an archive payload that could not be decoded. It
// carries the reconstructed object-literal text so the offending response
// is never silently dropped.
type DecodeError struct {
	Text string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("undecodable archive payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// pujsEnvelope captures the text content of the XML root element.
type pujsEnvelope struct {
	Body string `xml:",chardata"`
}

// decodePayload turns a raw archive response body into a generic mapping.
// It never retries and never swallows a malformed payload.
func decodePayload(body []byte) (map[string]any, error) {
	var env pujsEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, &DecodeError{Text: string(body), Err: fmt.Errorf("parsing envelope markup: %w", err)}
	}

	script := strings.TrimSpace(env.Body)
	if !strings.HasPrefix(script, pujsPrefix) || !strings.HasSuffix(script, pujsSuffix) {
		return nil, &DecodeError{Text: script, Err: fmt.Errorf("missing %s%s envelope markers", pujsPrefix, pujsSuffix)}
	}
	literal := script[len(pujsPrefix) : len(script)-len(pujsSuffix)]

	// Omitted empty values break the parser; restore them as empty strings.
	literal = strings.ReplaceAll(literal, ":,", ":'',")

	var decoded map[string]any
	if err := json5.Unmarshal([]byte(literal), &decoded); err != nil {
		return nil, &DecodeError{Text: literal, Err: fmt.Errorf("parsing object literal: %w", err)}
	}
	return decoded, nil
}

// payloadPoints extracts the "points" member of a decoded payload as a
// mapping from raw point key to its member map. Point keys arrive with a
// leading underscore ("_1639").
func payloadPoints(payload map[string]any) (map[string]map[string]any, error) {
	raw, ok := payload["points"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("payload has no points member")
	}
	points := make(map[string]map[string]any, len(raw))
	for key, member := range raw {
		fields, ok := member.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("point %s is not an object", key)
		}
		points[key] = fields
	}
	return points, nil
}
