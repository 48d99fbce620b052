package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// ImageURLKey is the content field holding the uploaded image URL.
const ImageURLKey = "image_url"

type contentShape int

const (
	contentEmpty contentShape = iota
	contentObject
	contentText
)

// parseContent classifies raw content and returns the object it represents.
// Anything that is not a JSON object is wrapped as {"text": raw}.
func parseContent(raw string) (map[string]interface{}, contentShape) {
	if strings.TrimSpace(raw) == "" {
		return map[string]interface{}{}, contentEmpty
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var obj map[string]interface{}
	if err := dec.Decode(&obj); err == nil && obj != nil {
		// a single object and nothing after it
		if _, err := dec.Token(); errors.Is(err, io.EOF) {
			return obj, contentObject
		}
	}
	return map[string]interface{}{"text": raw}, contentText
}

// attachImage folds imageURL into the object parsed from raw and re-serializes it.
func attachImage(raw, imageURL string) (string, contentShape, error) {
	obj, shape := parseContent(raw)
	obj[ImageURLKey] = imageURL

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		return "", shape, err
	}
	return strings.TrimSuffix(buf.String(), "\n"), shape, nil
}
