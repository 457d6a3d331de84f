package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mindmirror-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer 模拟 llama-server 的 OpenAI 兼容接口。
type fakeServer struct {
	modelsCalls atomic.Int32
	modelsFail  atomic.Bool
	lastRequest chatRequest
	mu          sync.Mutex
	reply       string
	chatStatus  int
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		f.modelsCalls.Add(1)
		if f.modelsFail.Load() {
			http.Error(w, "loading model", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"Kush26/Mental_Health_ChatBot:Q4_K_M"}]}`))
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.lastRequest = req
		status := f.chatStatus
		f.mu.Unlock()
		if status != 0 && status != http.StatusOK {
			http.Error(w, "boom", status)
			return
		}
		if req.Stream {
			w.Header().Set("Content-Type", "text/event-stream")
			for _, part := range []string{"Take ", "a breath."} {
				b, _ := json.Marshal(map[string]interface{}{
					"choices": []map[string]interface{}{{"delta": map[string]string{"content": part}}},
				})
				_, _ = w.Write([]byte("data: " + string(b) + "\n\n"))
			}
			_, _ = w.Write([]byte("data: [DONE]\n\n"))
			return
		}
		b, _ := json.Marshal(map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"role": "assistant", "content": f.reply}}},
		})
		_, _ = w.Write(b)
	})
	return mux
}

func newTestGateway(t *testing.T, f *fakeServer) *Gateway {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	cfg := config.LLMConfig{
		BaseURL: srv.URL + "/v1",
		Model:   "Kush26/Mental_Health_ChatBot",
		Timeout: 5 * time.Second,
		Generation: config.LLMGenerationConfig{
			Temperature: 0.7,
			TopP:        0.9,
			MaxTokens:   256,
		},
	}
	return NewGateway(NewClient(cfg), cfg)
}

type chunkRecorder struct {
	chunks []string
}

func (c *chunkRecorder) WriteMessage(_ int, data []byte) error {
	c.chunks = append(c.chunks, string(data))
	return nil
}

func TestGateway_EnsureReadyLoadsOnce(t *testing.T) {
	f := &fakeServer{reply: "ok"}
	g := newTestGateway(t, f)

	assert.False(t, g.Loaded())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, g.EnsureReady(context.Background()))
		}()
	}
	wg.Wait()

	assert.True(t, g.Loaded())
	assert.Equal(t, int32(1), f.modelsCalls.Load())
}

func TestGateway_RetriesAfterFailedLoad(t *testing.T) {
	f := &fakeServer{reply: "ok"}
	f.modelsFail.Store(true)
	g := newTestGateway(t, f)

	assert.False(t, g.EnsureReady(context.Background()))
	assert.False(t, g.Loaded())

	f.modelsFail.Store(false)
	assert.True(t, g.EnsureReady(context.Background()))
	assert.Equal(t, int32(2), f.modelsCalls.Load())
}

func TestGateway_RejectsUnknownModel(t *testing.T) {
	f := &fakeServer{}
	g := newTestGateway(t, f)
	g.model = "some-other-model"

	assert.False(t, g.EnsureReady(context.Background()))
}

func TestGateway_RejectsPartialModelName(t *testing.T) {
	f := &fakeServer{}
	g := newTestGateway(t, f)
	g.model = "chat"

	assert.False(t, g.EnsureReady(context.Background()))
}

func TestServesModel(t *testing.T) {
	tests := []struct {
		id   string
		want string
		ok   bool
	}{
		{"Kush26/Mental_Health_ChatBot", "Kush26/Mental_Health_ChatBot", true},
		{"kush26/mental_health_chatbot", "Kush26/Mental_Health_ChatBot", true},
		{"Kush26/Mental_Health_ChatBot:Q4_K_M", "Kush26/Mental_Health_ChatBot", true},
		{"Kush26/Mental_Health_ChatBot:Q4_K_M", "Kush26/Mental_Health_ChatBot:Q4_K_M", true},
		{"Kush26/Mental_Health_ChatBot", "ChatBot", false},
		{"Kush26/Mental_Health_ChatBot:Q4_K_M", "chat", false},
		{"Kush26/Mental_Health_ChatBot-v2", "Kush26/Mental_Health_ChatBot", false},
		{":Q4_K_M", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.id+"/"+tc.want, func(t *testing.T) {
			assert.Equal(t, tc.ok, servesModel(tc.id, tc.want))
		})
	}
}

func TestGateway_CompleteBeforeReady(t *testing.T) {
	g := newTestGateway(t, &fakeServer{})

	_, err := g.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestGateway_CompleteSendsFixedParameters(t *testing.T) {
	f := &fakeServer{reply: "I'm here for you."}
	g := newTestGateway(t, f)
	require.True(t, g.EnsureReady(context.Background()))

	msgs := []Message{{Role: "system", Content: "sys"}, {Role: "user", Content: "I feel tired"}}
	reply, err := g.Complete(context.Background(), msgs)
	require.NoError(t, err)
	assert.Equal(t, "I'm here for you.", reply)

	f.mu.Lock()
	req := f.lastRequest
	f.mu.Unlock()
	assert.False(t, req.Stream)
	assert.Equal(t, msgs, req.Messages)
	require.NotNil(t, req.MaxTokens)
	assert.Equal(t, 256, *req.MaxTokens)
	assert.InDelta(t, 0.7, *req.Temperature, 1e-9)
	assert.InDelta(t, 0.9, *req.TopP, 1e-9)
}

func TestGateway_CompleteInferenceError(t *testing.T) {
	f := &fakeServer{chatStatus: http.StatusInternalServerError}
	g := newTestGateway(t, f)
	require.True(t, g.EnsureReady(context.Background()))

	_, err := g.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, ErrInference)
}

func TestGateway_Stream(t *testing.T) {
	f := &fakeServer{}
	g := newTestGateway(t, f)
	require.True(t, g.EnsureReady(context.Background()))

	rec := &chunkRecorder{}
	require.NoError(t, g.Stream(context.Background(), []Message{{Role: "user", Content: "hi"}}, rec))
	assert.Equal(t, "Take a breath.", strings.Join(rec.chunks, ""))
}

func TestClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{BaseURL: srv.URL})
	_, err := c.ChatMessages(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	assert.ErrorIs(t, err, ErrInference)
}
