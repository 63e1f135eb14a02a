package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	APIKey string
	Body   map[string]any
}

func newGatewayServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			APIKey: r.Header.Get("X-Api-Key"),
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		requests = append(requests, rec)
		if handler != nil {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestWahaSendText(t *testing.T) {
	srv, requests := newGatewayServer(t, nil)
	c := NewWahaClient(srv.URL+"/", "default", "secret", time.Second, 0, nil)

	require.NoError(t, c.SendText(context.Background(), "51987654321@c.us", "Hola"))

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/sendText", req.Path)
	assert.Equal(t, "secret", req.APIKey)
	assert.Equal(t, map[string]any{"session": "default", "chatId": "51987654321@c.us", "text": "Hola"}, req.Body)
}

func TestWahaTyping(t *testing.T) {
	srv, requests := newGatewayServer(t, nil)
	c := NewWahaClient(srv.URL, "default", "", time.Second, 0, nil)

	require.NoError(t, c.StartTyping(context.Background(), "51987654321@c.us"))
	require.NoError(t, c.StopTyping(context.Background(), "51987654321@c.us"))

	require.Len(t, *requests, 2)
	assert.Equal(t, "/api/startTyping", (*requests)[0].Path)
	assert.Equal(t, "/api/stopTyping", (*requests)[1].Path)
	assert.NotContains(t, (*requests)[0].Body, "text")
	assert.Empty(t, (*requests)[0].APIKey)
}

func TestWahaGatewayErrorStatus(t *testing.T) {
	srv, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session not started", http.StatusUnprocessableEntity)
	})
	c := NewWahaClient(srv.URL, "default", "", time.Second, 0, nil)

	err := c.SendText(context.Background(), "51987654321@c.us", "Hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "session not started")
}

func TestWahaGetHistory(t *testing.T) {
	srv, requests := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"m2","body":"¿Horario?","fromMe":false,"timestamp":1700000002},
			{"id":"m1","body":null,"fromMe":true,"timestamp":1700000001,"hasMedia":true}
		]`))
	})
	c := NewWahaClient(srv.URL, "default", "", time.Second, 0, nil)

	messages, err := c.GetHistory(context.Background(), "51987654321@c.us", 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.NotNil(t, messages[0].Body)
	assert.Equal(t, "¿Horario?", *messages[0].Body)
	assert.Nil(t, messages[1].Body)
	assert.True(t, messages[1].FromMe)
	assert.Equal(t, int64(1700000001), messages[1].Timestamp)

	req := (*requests)[0]
	assert.Equal(t, "/api/default/chats/51987654321@c.us/messages", req.Path)
	assert.Equal(t, "downloadMedia=false&limit=10", req.Query)
}

func TestWahaSessionStatus(t *testing.T) {
	srv, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"default","status":"WORKING"}`))
	})
	c := NewWahaClient(srv.URL, "default", "", time.Second, 0, nil)

	status, err := c.SessionStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Connected())

	assert.False(t, (&SessionStatus{Status: "SCAN_QR_CODE"}).Connected())
}

func TestWahaTimeout(t *testing.T) {
	srv, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	c := NewWahaClient(srv.URL, "default", "", 20*time.Millisecond, 0, nil)

	err := c.StartTyping(context.Background(), "51987654321@c.us")
	assert.Error(t, err)
}

func TestWahaSendPacing(t *testing.T) {
	srv, requests := newGatewayServer(t, nil)
	c := NewWahaClient(srv.URL, "default", "", time.Second, 50*time.Millisecond, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.SendText(context.Background(), "51987654321@c.us", "x"))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Len(t, *requests, 3)
}

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"987654321", "51987654321@c.us"},
		{"+51 987 654 321", "51987654321@c.us"},
		{"5491122334455", "5491122334455@c.us"},
		{"51987654321@c.us", "51987654321@c.us"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhoneNumber(tt.in))
		})
	}
}
