package contextutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestExtractMetadata(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, "user-1")
	ctx = WithRole(ctx, "MANAGER")

	assert.Equal(t, Metadata{RequestID: "req-1", UserID: "user-1", Role: "MANAGER"}, ExtractMetadata(ctx))
	assert.Equal(t, Metadata{}, ExtractMetadata(context.Background()))
}

func TestGetLogger_Fallbacks(t *testing.T) {
	reqLogger := zap.NewNop().Named("req")
	def := zap.NewNop().Named("default")

	assert.Same(t, reqLogger, GetLogger(WithLogger(context.Background(), reqLogger), def))
	assert.Same(t, def, GetLogger(context.Background(), def))
	assert.NotNil(t, GetLogger(context.Background(), nil))
}
