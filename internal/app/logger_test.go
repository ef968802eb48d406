package app

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerSelectsHandler(t *testing.T) {
	_, isJSON := NewLogger(&Config{LogFormat: "json"}).Handler().(*slog.JSONHandler)
	assert.True(t, isJSON)

	_, isText := NewLogger(&Config{LogFormat: "pretty"}).Handler().(*slog.TextHandler)
	assert.True(t, isText)

	_, isText = NewLogger(nil).Handler().(*slog.TextHandler)
	assert.True(t, isText)
}
