package lorem

import (
	"context"
	"strings"
	"testing"

	"codechat/internal/service/relay"
)

func TestListModelsVariants(t *testing.T) {
	p := NewProvider()
	infos, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}

	streaming := 0
	for _, info := range infos {
		if info.SupportsStreaming() {
			streaming++
		}
	}
	if streaming != 3 {
		t.Errorf("streaming models = %d, want 3 (embedding variant excluded)", streaming)
	}
}

func TestBrokenModelRefusesToOpen(t *testing.T) {
	p := NewProvider()
	req := &relay.GenerateRequest{Turns: []relay.Turn{{Role: "user", Text: "hi"}}}

	if _, err := p.StreamGenerate(context.Background(), "lorem-broken", req); err == nil {
		t.Fatalf("lorem-broken opened a stream, want open failure")
	}
	if _, err := p.StreamGenerate(context.Background(), "gemini-1.5-pro", req); err == nil {
		t.Fatalf("foreign model accepted, want open failure")
	}
}

func TestFastModelStreamsWords(t *testing.T) {
	p := NewProvider()
	req := &relay.GenerateRequest{Turns: []relay.Turn{{Role: "user", Text: "hi"}}}

	events, err := p.StreamGenerate(context.Background(), "lorem-fast", req)
	if err != nil {
		t.Fatalf("StreamGenerate() error = %v", err)
	}

	var sb strings.Builder
	count := 0
	for ev := range events {
		if ev.Err != nil {
			t.Fatalf("unexpected stream error: %v", ev.Err)
		}
		sb.WriteString(ev.Text)
		count++
	}

	if count < 2 {
		t.Errorf("events = %d, want word-by-word streaming", count)
	}
	if strings.TrimSpace(sb.String()) == "" {
		t.Errorf("assembled text is empty")
	}
}

func TestStreamStopsOnContextCancel(t *testing.T) {
	p := NewProvider()
	req := &relay.GenerateRequest{Turns: []relay.Turn{{Role: "user", Text: "hi"}}}

	ctx, cancel := context.WithCancel(context.Background())
	events, err := p.StreamGenerate(ctx, "lorem-slow", req)
	if err != nil {
		t.Fatalf("StreamGenerate() error = %v", err)
	}

	<-events
	cancel()

	// Channel must close promptly instead of streaming the full paragraph.
	for range events {
	}
}
