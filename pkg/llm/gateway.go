package llm

import (
	"context"
	"errors"
	"fmt"
	"mindmirror-go/internal/config"
	"mindmirror-go/pkg/log"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ErrModelNotLoaded 表示在模型就绪之前调用了推理。
var ErrModelNotLoaded = errors.New("model not loaded")

// Gateway 持有唯一的推理句柄及其固定生成参数。
//
// 加载状态只会从未加载变为已加载；加载失败保持未加载，下一次 EnsureReady 会重试。
// 加载过程由互斥锁保护，并发的首次请求只会触发一次探测。
type Gateway struct {
	client  Client
	model   string
	timeout time.Duration
	gen     *GenerationParams

	mu     sync.Mutex
	loaded atomic.Bool
}

// NewGateway 根据配置创建 Gateway，生成参数在此固定下来。
func NewGateway(client Client, cfg config.LLMConfig) *Gateway {
	temperature := cfg.Generation.Temperature
	topP := cfg.Generation.TopP
	maxTokens := cfg.Generation.MaxTokens
	return &Gateway{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		gen: &GenerationParams{
			Temperature: &temperature,
			TopP:        &topP,
			MaxTokens:   &maxTokens,
		},
	}
}

// Loaded 报告模型是否已就绪。
func (g *Gateway) Loaded() bool {
	return g.loaded.Load()
}

// EnsureReady 在模型未就绪时尝试加载，返回此刻是否存在可用的句柄。
func (g *Gateway) EnsureReady(ctx context.Context) bool {
	if g.loaded.Load() {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	// 等锁期间可能已被其他请求加载
	if g.loaded.Load() {
		return true
	}

	log.Infof("Model loading: %s", g.model)
	start := time.Now()
	if err := g.load(ctx); err != nil {
		log.Errorw("Model loading error", "model", g.model, "error", err)
		return false
	}
	g.loaded.Store(true)
	log.Infow("Model loaded successfully", "model", g.model, "elapsed", time.Since(start).String())
	return true
}

// load 确认推理服务已经加载了配置的模型。
func (g *Gateway) load(ctx context.Context) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	ids, err := g.client.ListModels(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return errors.New("inference server reports no loaded models")
	}
	if g.model == "" {
		return nil
	}
	for _, id := range ids {
		if servesModel(id, g.model) {
			return nil
		}
	}
	return fmt.Errorf("model %q not served, available: %v", g.model, ids)
}

// servesModel 判断推理服务返回的 id 是否就是配置的模型，忽略大小写和 ":Q4_K_M" 这类量化后缀。
func servesModel(id, want string) bool {
	if strings.EqualFold(id, want) {
		return true
	}
	if i := strings.LastIndex(id, ":"); i > 0 {
		return strings.EqualFold(id[:i], want)
	}
	return false
}

// Complete 将消息转发给推理服务并返回第一个候选的文本。
func (g *Gateway) Complete(ctx context.Context, messages []Message) (string, error) {
	if !g.loaded.Load() {
		return "", ErrModelNotLoaded
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	reply, err := g.client.ChatMessages(ctx, messages, g.gen)
	if err != nil {
		if errors.Is(err, ErrInference) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrInference, err)
	}
	return reply, nil
}

// Stream 与 Complete 相同，但以流式方式把分块写入 writer。
func (g *Gateway) Stream(ctx context.Context, messages []Message, writer MessageWriter) error {
	if !g.loaded.Load() {
		return ErrModelNotLoaded
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	if err := g.client.StreamChatMessages(ctx, messages, g.gen, writer); err != nil {
		if errors.Is(err, ErrInference) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInference, err)
	}
	return nil
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}
