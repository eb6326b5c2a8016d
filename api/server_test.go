package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/finance/quote"
	"github.com/rustyeddy/finance/service"
	"github.com/rustyeddy/finance/store"
)

type reply struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "AAPL" {
			fmt.Fprint(w, `{"c": 110, "pc": 100}`)
			return
		}
		fmt.Fprint(w, "nope")
	}))
	t.Cleanup(provider.Close)

	svc := service.NewWith(
		store.NewOpener(filepath.Join(t.TempDir(), "app")),
		quote.NewClient("k", quote.WithBaseURL(provider.URL), quote.WithRateLimit(0)),
		nil,
	)
	srv := httptest.NewServer(NewServer(svc, nil))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, command, body string) (int, reply) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/invoke/"+command, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var r reply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	return resp.StatusCode, r
}

func TestAlive(t *testing.T) {
	srv := newTestAPI(t)

	resp, err := http.Get(srv.URL + "/alive")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCommands(t *testing.T) {
	srv := newTestAPI(t)

	resp, err := http.Get(srv.URL + "/commands")
	require.NoError(t, err)
	defer resp.Body.Close()

	var r struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	assert.Equal(t, service.Commands(), r.Data)
}

func TestInvokeRoundTrip(t *testing.T) {
	srv := newTestAPI(t)

	status, r := post(t, srv, "add_stock", `{"symbol":"aapl"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, r.OK)

	status, r = post(t, srv, "add_stock", `{"symbol":"AAPL"}`)
	assert.Equal(t, http.StatusOK, status)

	status, r = post(t, srv, "get_stocks", ``)
	require.Equal(t, http.StatusOK, status)
	var stocks []struct {
		ID     int64  `json:"id"`
		Symbol string `json:"symbol"`
	}
	require.NoError(t, json.Unmarshal(r.Data, &stocks))
	require.Len(t, stocks, 1)
	assert.Equal(t, "AAPL", stocks[0].Symbol)

	status, r = post(t, srv, "fetch_stock_data", `{"symbols":["AAPL"]}`)
	require.Equal(t, http.StatusOK, status)
	var quotes []quote.StockQuote
	require.NoError(t, json.Unmarshal(r.Data, &quotes))
	require.Len(t, quotes, 1)
	assert.InDelta(t, 10.0, quotes[0].Change, 1e-9)
}

func TestInvokeEmptyListIsArray(t *testing.T) {
	srv := newTestAPI(t)

	_, r := post(t, srv, "get_transactions", `{}`)
	assert.True(t, r.OK)
	assert.JSONEq(t, `[]`, string(r.Data))
}

func TestInvokeFailureIsAString(t *testing.T) {
	srv := newTestAPI(t)

	status, r := post(t, srv, "fetch_stock_data", `{"symbols":["AAPL","ZZZ"]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, r.OK)
	assert.Contains(t, r.Error, "ZZZ")
	assert.Empty(t, r.Data)
}

func TestInvokeUnknownCommand(t *testing.T) {
	srv := newTestAPI(t)

	status, r := post(t, srv, "drop_everything", `{}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, r.Error, "unknown command")
}

func TestInvokeRequiresPost(t *testing.T) {
	srv := newTestAPI(t)

	resp, err := http.Get(srv.URL + "/invoke/get_stocks")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

type panicky struct{}

func (panicky) Invoke(context.Context, string, json.RawMessage) (any, error) {
	panic(errors.New("boom"))
}

func TestRecoversFromPanics(t *testing.T) {
	srv := httptest.NewServer(NewServer(panicky{}, nil))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/invoke/get_stocks", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestNewHTTPServer(t *testing.T) {
	hs := NewHTTPServer("127.0.0.1:0", NewServer(panicky{}, nil))
	assert.Equal(t, "127.0.0.1:0", hs.Addr)
	assert.NotZero(t, hs.ReadTimeout)
}
