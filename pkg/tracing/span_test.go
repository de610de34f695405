package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanTree(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "search", "req-1")
	_, score := StartChildSpan(ctx, "score")
	score.SetAttr("hits", 3)
	score.End()
	root.End()

	require.Len(t, root.Children(), 1)
	child := root.Children()[0]
	assert.Equal(t, "req-1", child.TraceID)
	assert.Same(t, root, FromContext(ctx))

	var buf bytes.Buffer
	root.Log(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "span=search")
	assert.Contains(t, lines[1], "span=score")
	assert.Contains(t, lines[1], "hits=3")
	assert.Contains(t, lines[1], "depth=1")
}

func TestDetachedChild(t *testing.T) {
	_, span := StartChildSpan(context.Background(), "score")
	span.End()
	assert.Empty(t, span.TraceID)
	assert.Nil(t, FromContext(context.Background()))
}
