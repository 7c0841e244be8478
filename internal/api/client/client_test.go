package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bz888/koalagpt/internal/api/codec"
	"github.com/bz888/koalagpt/internal/config"
	"github.com/bz888/koalagpt/internal/speech"
	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type koalaStub struct {
	t        *testing.T
	lastBody []byte
	lastAuth string
}

func (s *koalaStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	require.NoError(s.t, err)
	s.lastBody = body
	s.lastAuth = r.Header.Get("Authorization")

	switch r.URL.Path {
	case "/v2/conversations":
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, word := range []string{"Hel", "lo", "!"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q},\"index\":0}]}\n\n", word)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	case "/v2/unity":
		var req ConversationRequest
		if err := codec.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, "Hi there, you said %q", req.Meta[0].Content.Parts[0].Content)
	case "/v2/unity/voice":
		clip := &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
			Data:           make([]int, 800),
			SourceBitDepth: 16,
		}
		data, err := speech.EncodeWAV(clip)
		require.NoError(s.t, err)
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(data)
	default:
		http.NotFound(w, r)
	}
}

func newStubClient(t *testing.T) (*Client, *koalaStub) {
	stub := &koalaStub{t: t}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	c, err := New(config.New("sk-live", ""), WithHTTPClient(srv.Client()), WithBaseURL(srv.URL+"/v2/"))
	require.NoError(t, err)
	return c, stub
}

func TestEndToEndChatStream(t *testing.T) {
	c, stub := newStubClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var text string
	completed := 0
	err := c.CreateChatCompletionStream(ctx, NewChatRequest("gpt4", Part{Role: RoleUser, Content: "Hello!"}),
		func(batch []ChatCompletionResponse) {
			for _, f := range batch {
				text += f.Text()
			}
		},
		func() { completed++ },
	)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", text)
	assert.Equal(t, 1, completed)
	assert.Equal(t, "Bearer sk-live", stub.lastAuth)
}

func TestEndToEndSimplePrompt(t *testing.T) {
	c, stub := newStubClient(t)

	reply, err := c.CreateChatCompletionSimplePrompt(context.Background(), NewPromptRequest("gpt4", "Hello!"), WithInternetAccess(true))
	require.NoError(t, err)
	assert.Equal(t, `Hi there, you said "Hello!"`, reply)
	assert.Contains(t, string(stub.lastBody), `"internet_access":true`)
	assert.Contains(t, string(stub.lastBody), `"action":"_ask"`)
}

func TestEndToEndSpeechPrompt(t *testing.T) {
	c, stub := newStubClient(t)

	clip, err := c.CreateSpeechPrompt(context.Background(), NewPromptRequest("gpt4", "Say hi"), WithVoice("alloy"))
	require.NoError(t, err)
	assert.Equal(t, 8000, clip.Format.SampleRate)
	assert.Len(t, clip.Data, 800)
	assert.Equal(t, 100*time.Millisecond, speech.Duration(clip))
	assert.Contains(t, string(stub.lastBody), `"voice":"alloy"`)
}

func TestEndToEndSimpleStatusError(t *testing.T) {
	c, _ := newStubClient(t)
	c.base.Path = "/missing"

	_, err := c.CreateChatCompletionSimple(context.Background(), NewConversationRequest(NewPromptRequest("gpt4", "hi")))
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}
