package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContent(t *testing.T) {
	cases := []struct {
		raw   string
		shape contentShape
	}{
		{"", contentEmpty},
		{"   ", contentEmpty},
		{`{"text":"hi"}`, contentObject},
		{` {"a":1} `, contentObject},
		{"hello", contentText},
		{`[1,2]`, contentText},
		{`"quoted"`, contentText},
		{`null`, contentText},
		{`{"a":1} trailing`, contentText},
		{`{"broken":`, contentText},
		{`{"a":1}}`, contentText},
		{`{"a":1}]`, contentText},
	}

	for _, tc := range cases {
		obj, shape := parseContent(tc.raw)
		assert.Equal(t, tc.shape, shape, tc.raw)
		if shape == contentText {
			assert.Equal(t, map[string]interface{}{"text": tc.raw}, obj, tc.raw)
		}
	}
}

func TestAttachImage(t *testing.T) {
	out, shape, err := attachImage("", "/static/a.png")
	require.NoError(t, err)
	assert.Equal(t, contentEmpty, shape)
	assert.Equal(t, `{"image_url":"/static/a.png"}`, out)

	out, _, err = attachImage(`{"text":"x","image_url":"/static/old.png"}`, "/static/new.png")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"x","image_url":"/static/new.png"}`, out)

	// large numbers survive the round trip
	out, _, err = attachImage(`{"amount":12345678901234567890}`, "u")
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":12345678901234567890,"image_url":"u"}`, out)

	out, shape, err = attachImage("<b>note</b>", "/static/a&b.png")
	require.NoError(t, err)
	assert.Equal(t, contentText, shape)
	assert.JSONEq(t, `{"text":"<b>note</b>","image_url":"/static/a&b.png"}`, out)
	assert.Contains(t, out, "<b>")
}
