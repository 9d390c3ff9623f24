package api_functions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HannahMarsh/onionnet/internal/api/structs"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOnion(t *testing.T) {
	blob := []byte{0, 1, 2, 3, 250}
	received := make(chan structs.OnionApi, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/message", r.URL.Path)
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))
		HandleReceiveOnion(w, r, func(o structs.OnionApi) error {
			received <- o
			return nil
		})
	}))
	defer server.Close()

	require.NoError(t, SendOnion(context.Background(), server.URL, blob))
	assert.Equal(t, blob, (<-received).Message)
}

func TestSendOnionReportsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTeapot)
	}))
	defer server.Close()

	err := SendOnion(context.Background(), server.URL, []byte{1})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTeapot, statusErr.StatusCode)
	assert.Equal(t, "nope", statusErr.Body)
}

func TestHandleReceiveOnionPlainJSON(t *testing.T) {
	body, err := json.Marshal(structs.OnionApi{Message: []byte("abc")})
	require.NoError(t, err)

	var got []byte
	rec := httptest.NewRecorder()
	HandleReceiveOnion(rec, httptest.NewRequest(http.MethodPost, "/message", bytes.NewReader(body)), func(o structs.OnionApi) error {
		got = o.Message
		return nil
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("abc"), got)
}

func TestHandleReceiveOnionBadInput(t *testing.T) {
	called := false
	receive := func(structs.OnionApi) error {
		called = true
		return nil
	}
	for name, body := range map[string]string{
		"not json": "{",
		"empty":    `{"message":""}`,
		"bad gzip": "plain",
	} {
		req := httptest.NewRequest(http.MethodPost, "/message", strings.NewReader(body))
		if name == "bad gzip" {
			req.Header.Set("Content-Encoding", "gzip")
		}
		rec := httptest.NewRecorder()
		HandleReceiveOnion(rec, req, receive)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
	assert.False(t, called)
}

func TestDirectoryClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/registerNode":
			var node structs.PublicNodeApi
			require.NoError(t, ReadJSON(r, &node))
			if node.ID == 2 {
				http.Error(w, "conflict", http.StatusConflict)
				return
			}
			w.WriteHeader(http.StatusCreated)
		case "/getNodeRegistry":
			WriteJSON(w, http.StatusOK, structs.NodeRegistryApi{Nodes: []structs.PublicNodeApi{
				{ID: 1, PublicKey: []byte("k1"), Address: "http://r1", Scheme: "rsa-oaep"},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewDirectoryClient(server.URL)
	ctx := context.Background()

	require.NoError(t, client.RegisterNode(ctx, structs.PublicNodeApi{ID: 1, PublicKey: []byte("k1")}))

	err := client.RegisterNode(ctx, structs.PublicNodeApi{ID: 2, PublicKey: []byte("k2")})
	assert.True(t, errors.Is(err, ErrRegistrationConflict))

	nodes, err := client.GetNodeRegistry(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, 1, nodes[0].ID)
	assert.Equal(t, []byte("k1"), nodes[0].PublicKey)
	assert.Equal(t, "http://r1", nodes[0].Address)
}

func TestWriteResult(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteResult[*string](rec, nil)
	assert.JSONEq(t, `{"result":null}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteResult(rec, []int{1, 2})
	assert.JSONEq(t, `{"result":[1,2]}`, rec.Body.String())
}

func TestHandleStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, "live", rec.Body.String())
}
