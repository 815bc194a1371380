package mock

import (
	"context"
	"strings"
	"testing"

	"github.com/yungbote/opsdesk-backend/internal/inference/engine"
)

func TestProvider_Summary(t *testing.T) {
	p := New()
	out, err := p.Complete(context.Background(), engine.CompletionRequest{
		PromptType: "summary",
		Prompt:     "以下のリード情報を要約してください：\n\n名前: 山田",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.HasPrefix(out, "【要約】\n\n名前: 山田\n\n上記の情報をまとめると") {
		t.Fatalf("unexpected summary %q", out)
	}
}

func TestProvider_FixedResponses(t *testing.T) {
	p := New()
	a, _ := p.Complete(context.Background(), engine.CompletionRequest{PromptType: "analysis", Prompt: "x"})
	s, _ := p.Complete(context.Background(), engine.CompletionRequest{PromptType: "suggestion", Prompt: "x"})
	if !strings.HasPrefix(a, "【分析結果】") || !strings.HasPrefix(s, "【次のアクション提案】") {
		t.Fatalf("unexpected responses %q / %q", a, s)
	}
}

func TestProvider_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Complete(ctx, engine.CompletionRequest{}); err == nil {
		t.Fatalf("expected context error")
	}
}
