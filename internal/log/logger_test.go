package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentLoader, Handler: slog.NewTextHandler(&buf, nil)})

	l.Info("loaded", FieldRows, 3)

	out := buf.String()
	assert.Contains(t, out, "component=loader")
	assert.Contains(t, out, "rows=3")
	assert.Contains(t, out, "msg=loaded")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Handler: slog.NewTextHandler(&buf, nil)}).WithComponent(ComponentCache)

	l.WarnContext(context.Background(), "purged")

	assert.Contains(t, buf.String(), "component=cache")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf})

	l.Info("hidden")
	l.WarnContext(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestDefaultComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Handler: slog.NewTextHandler(&buf, nil)})
	l.Error("boom")
	assert.Contains(t, buf.String(), "component=app")
}

func TestSetDefault(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	SetDefault(New(Config{Handler: slog.NewTextHandler(&buf, nil)}))
	slog.Info("via default")

	assert.Contains(t, buf.String(), "msg=\"via default\"")
}
