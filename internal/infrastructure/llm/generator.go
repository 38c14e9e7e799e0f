package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"neuroedge-api/internal/application/chat"
	"neuroedge-api/internal/config"
	"neuroedge-api/internal/domain/entity"
	"neuroedge-api/pkg/metrics"
)

var tracer = otel.Tracer("infrastructure/llm")

const defaultCallTimeout = 120 * time.Second

// EinoGenerator 基于 Eino ChatModel 的回答生成器
type EinoGenerator struct {
	factory  *EinoFactory
	provider string
	model    string
	timeout  time.Duration
}

// NewEinoGenerator 创建生成器，使用默认提供商配置
func NewEinoGenerator(factory *EinoFactory, cfg *config.LLMConfig) *EinoGenerator {
	g := &EinoGenerator{
		factory:  factory,
		provider: cfg.DefaultProvider,
		timeout:  defaultCallTimeout,
	}

	if providerCfg, ok := cfg.Providers[cfg.DefaultProvider]; ok {
		g.model = providerCfg.Model
		if providerCfg.Timeout > 0 {
			g.timeout = providerCfg.Timeout
		}
	}

	return g
}

// Complete 调用模型生成回答
func (g *EinoGenerator) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	ctx, span := tracer.Start(ctx, "llm.Complete")
	span.SetAttributes(
		attribute.String("llm.provider", g.provider),
		attribute.String("llm.model", g.model),
		attribute.Int("llm.message_count", len(messages)),
	)
	defer span.End()

	chatModel, err := g.factory.Get(ctx, g.provider)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to resolve chat model: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	input := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case entity.RoleSystem:
			input = append(input, schema.SystemMessage(msg.Content))
		case entity.RoleAssistant:
			input = append(input, schema.AssistantMessage(msg.Content, nil))
		default:
			input = append(input, schema.UserMessage(msg.Content))
		}
	}

	start := time.Now()
	output, err := chatModel.Generate(ctx, input)
	metrics.LLMCallDuration.WithLabelValues(g.provider, g.model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		span.RecordError(err)
		return "", fmt.Errorf("chat model call failed: %w", err)
	}

	metrics.LLMCallTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	return output.Content, nil
}
