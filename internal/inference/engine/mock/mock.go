package mock

import (
	"context"
	"strings"

	"github.com/yungbote/opsdesk-backend/internal/inference/engine"
)

// Provider is the deterministic stand-in used until a real model is wired.
// It echoes the prompt body for summaries and returns fixed guidance for
// the other prompt types.
type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "simulated" }

func (p *Provider) Complete(ctx context.Context, req engine.CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch req.PromptType {
	case "analysis":
		return analysisResponse, nil
	case "suggestion":
		return suggestionResponse, nil
	default:
		body := req.Prompt
		if i := strings.Index(body, "\n"); i >= 0 {
			body = body[i+1:]
		} else {
			body = ""
		}
		return "【要約】\n" + body + "\n\n上記の情報をまとめると、重要なポイントは以下の通りです：\n• 現在の状況と進捗\n• 注意すべき事項\n• 次のアクション", nil
	}
}

const analysisResponse = "【分析結果】\n提供された情報を分析した結果：\n\n✅ 良好な点：\n• 情報が適切に整理されている\n• 必要な項目が記載されている\n\n⚠️ 改善点：\n• より詳細な情報があると良い\n• 期限の明確化が必要\n\n💡 提案：\n• 定期的な進捗確認\n• 関係者との連携強化"

const suggestionResponse = "【次のアクション提案】\n現在の状況に基づく推奨アクション：\n\n🎯 優先度：高\n• 即座に対応が必要な項目\n• 関係者への連絡\n\n📋 優先度：中\n• 計画的に進める項目\n• 資料の準備\n\n📝 優先度：低\n• 長期的な改善項目\n• 効率化の検討"
