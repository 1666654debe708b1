package dbmongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaStorage_DeleteRejectsForeignURLs(t *testing.T) {
	storage := &MediaStorage{}

	tests := []string{
		"",
		"https://bucket.s3.amazonaws.com/stories/abc.jpg",
		"/uploads/1700000000.png",
	}
	for _, url := range tests {
		t.Run(url, func(t *testing.T) {
			err := storage.Delete(context.Background(), url)
			assert.Error(t, err)
		})
	}
}

func TestMediaStorage_InvalidObjectID(t *testing.T) {
	storage := &MediaStorage{}

	err := storage.DeleteFile(context.Background(), "invalid-objectid")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file ID")

	err = storage.Delete(context.Background(), MediaPathPrefix+"invalid-objectid")
	assert.Error(t, err)
}

func TestGetStringFromMap(t *testing.T) {
	testMap := map[string]interface{}{
		"string_key": "string_value",
		"int_key":    123,
		"nil_key":    nil,
	}

	tests := []struct {
		name     string
		input    map[string]interface{}
		key      string
		expected string
	}{
		{"valid_string", testMap, "string_key", "string_value"},
		{"non_string_value", testMap, "int_key", ""},
		{"nil_value", testMap, "nil_key", ""},
		{"missing_key", testMap, "missing", ""},
		{"nil_map", nil, "any_key", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getStringFromMap(tt.input, tt.key))
		})
	}
}
