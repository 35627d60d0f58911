package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "TOKEN", 1000, 2)
	c.backoff = time.Millisecond
	return c
}

type countingObserver struct {
	ok, failed atomic.Int32
}

func (o *countingObserver) ObserveSend(_ string, status string) {
	if status == "ok" {
		o.ok.Add(1)
	} else {
		o.failed.Add(1)
	}
}

func TestClient_SendMessage(t *testing.T) {
	var got SendMessageRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":5}}}`))
	})
	obs := &countingObserver{}
	c.SetObserver(obs)

	err := c.SendMessage(context.Background(), SendMessageRequest{ChatID: 5, Text: "hi"})

	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ChatID)
	assert.Equal(t, "hi", got.Text)
	assert.Equal(t, int32(1), obs.ok.Load())
}

func TestClient_RetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	})

	err := c.AnswerCallbackQuery(context.Background(), AnswerCallbackQueryRequest{CallbackQueryID: "q"})

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_DoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	})

	err := c.SendPhoto(context.Background(), SendPhotoRequest{ChatID: 1, Photo: "x"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
	assert.Equal(t, "sendPhoto", apiErr.Method)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":502,"description":"Bad Gateway"}`))
	})

	err := c.SendMessage(context.Background(), SendMessageRequest{ChatID: 1, Text: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GetUpdates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/getUpdates", r.URL.Path)
		var req getUpdatesRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(10), req.Offset)
		assert.Equal(t, 1, req.Timeout)
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":10,"message":{"message_id":3,"chat":{"id":7},"text":"/start"}},
			{"update_id":11,"callback_query":{"id":"cb1","from":{"id":7},"data":"back"}}
		]}`))
	})

	updates, err := c.GetUpdates(context.Background(), 10, time.Second)

	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "/start", updates[0].Message.Text)
	assert.Equal(t, int64(7), updates[0].Message.Chat.ID)
	assert.Equal(t, "back", updates[1].CallbackQuery.Data)
}

func TestClient_SendGivesUpOnUnresponsiveServer(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-r.Context().Done()
	})
	c.SetSendTimeout(20 * time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- c.SendMessage(context.WithoutCancel(context.Background()), SendMessageRequest{ChatID: 1, Text: "x"})
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Positive(t, calls.Load())
	case <-time.After(5 * time.Second):
		t.Fatal("send did not return against a server that never answers")
	}
}

func TestClient_EditMessageReplyMarkup(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/editMessageReplyMarkup", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	})

	err := c.EditMessageReplyMarkup(context.Background(), EditMessageReplyMarkupRequest{ChatID: 7, MessageID: 42})

	require.NoError(t, err)
	assert.Equal(t, float64(7), raw["chat_id"])
	assert.Equal(t, float64(42), raw["message_id"])
	assert.NotContains(t, raw, "reply_markup")
}
