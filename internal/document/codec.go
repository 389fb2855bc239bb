package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt marks payloads that could not be decoded into an envelope.
var ErrCorrupt = errors.New("corrupt document")

// DeserializationError reports an unparseable saved or pasted payload. It
// carries the raw payload so that it can be shown for debugging.
type DeserializationError struct {
	Source  string
	Payload string
	Err     error
}

func (e *DeserializationError) Error() string {
	source := e.Source
	if source == "" {
		source = "document"
	}
	return fmt.Sprintf("%s might be corrupted: %v\n\n%s", source, e.Err, e.Payload)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

func (e *DeserializationError) Is(target error) bool {
	return target == ErrCorrupt
}

// Encode serializes env. An empty separator produces compact JSON, anything
// else is used as the indent string.
func Encode(env *Envelope, sep string) ([]byte, error) {
	if env.Items == nil {
		env.Items = []Record{}
	}
	if sep == "" {
		return json.Marshal(env)
	}
	return json.MarshalIndent(env, "", sep)
}

// Decode parses an envelope. Empty or null payloads are treated as corrupt.
func Decode(source string, data []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &DeserializationError{Source: source, Payload: string(data), Err: errors.New("document is empty")}
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, &DeserializationError{Source: source, Payload: string(data), Err: err}
	}
	return &env, nil
}
