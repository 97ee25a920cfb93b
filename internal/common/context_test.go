package common

import (
	"context"
	"testing"
)

func TestLogFields(t *testing.T) {
	if got := LogFields(context.Background()); len(got) != 0 {
		t.Fatalf("fields = %v, want none", got)
	}
	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-1")
	got := LogFields(ctx)
	want := []any{"request_id", "req-1", "user_id", "user-1"}
	if len(got) != len(want) {
		t.Fatalf("fields = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fields = %v, want %v", got, want)
		}
	}
}
