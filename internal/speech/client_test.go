package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSpeechAPI captures the request the client sends and serves canned audio.
func fakeSpeechAPI(t *testing.T, captured *speechRequest, status int, audio []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		w.WriteHeader(status)
		w.Write(audio)
	}))
}

func testClient(apiURL string) *Client {
	client := NewClient("test-key", "", "", 0, zap.NewNop())
	client.apiURL = apiURL
	return client
}

func TestSynthesize(t *testing.T) {
	var captured speechRequest
	srv := fakeSpeechAPI(t, &captured, http.StatusOK, []byte("mp3-bytes"))
	defer srv.Close()

	client := testClient(srv.URL)

	audio, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "You have **2 appointments** today."})
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)

	assert.Equal(t, "tts-1", captured.Model)
	assert.Equal(t, "nova", captured.Voice)
	assert.Equal(t, 1.0, captured.Speed)
	assert.Equal(t, "mp3", captured.ResponseFormat)
	assert.Equal(t, "You have 2 appointments today.", captured.Input, "text should be sanitized before synthesis")
}

func TestSynthesizeRequestOverrides(t *testing.T) {
	var captured speechRequest
	srv := fakeSpeechAPI(t, &captured, http.StatusOK, []byte("audio"))
	defer srv.Close()

	client := testClient(srv.URL)

	_, err := client.Synthesize(context.Background(), SynthesisRequest{
		Text:  "Hello",
		Voice: "onyx",
		Speed: 1.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "onyx", captured.Voice)
	assert.Equal(t, 1.5, captured.Speed)
}

func TestSynthesizeClampsSpeed(t *testing.T) {
	var captured speechRequest
	srv := fakeSpeechAPI(t, &captured, http.StatusOK, []byte("audio"))
	defer srv.Close()

	client := testClient(srv.URL)

	_, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "Hello", Speed: 9.0})
	require.NoError(t, err)
	assert.Equal(t, maxSpeed, captured.Speed)

	_, err = client.Synthesize(context.Background(), SynthesisRequest{Text: "Hello", Speed: 0.01})
	require.NoError(t, err)
	assert.Equal(t, minSpeed, captured.Speed)
}

func TestSynthesizeAPIError(t *testing.T) {
	var captured speechRequest
	srv := fakeSpeechAPI(t, &captured, http.StatusTooManyRequests, []byte(`{"error":"rate limited"}`))
	defer srv.Close()

	client := testClient(srv.URL)

	_, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "Hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSynthesizeNothingSpeakable(t *testing.T) {
	client := testClient("http://127.0.0.1:0")

	_, err := client.Synthesize(context.Background(), SynthesisRequest{Text: " \U0001F389 "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no speakable text")
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, NewClient("key", "", "", 0, nil).IsConfigured())
	assert.False(t, NewClient("", "", "", 0, nil).IsConfigured())
}

func TestClampSpeed(t *testing.T) {
	assert.Equal(t, 1.0, clampSpeed(1.0))
	assert.Equal(t, minSpeed, clampSpeed(0.0001))
	assert.Equal(t, maxSpeed, clampSpeed(100))
}
