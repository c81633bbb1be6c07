package telemetry

import (
	"context"
	"testing"
)

func TestInitialize_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := Initialize(context.Background(), Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}

	ctx, span := StartSpan(context.Background(), "test.span")
	defer span.End()
	if ctx == nil {
		t.Fatal("expected a context")
	}
}
