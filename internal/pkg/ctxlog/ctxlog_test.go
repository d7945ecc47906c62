package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_Default(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), base.With("request_id", "r1"))
	ctx = With(ctx, "user_id", "u1")

	FromContext(ctx).Info("hello")

	assert.Contains(t, buf.String(), "request_id=r1")
	assert.Contains(t, buf.String(), "user_id=u1")
}
