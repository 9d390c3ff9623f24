package user

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HannahMarsh/onionnet/internal/api/structs"
	"github.com/HannahMarsh/onionnet/internal/circuit"
	"github.com/HannahMarsh/onionnet/internal/domain/models"
	"github.com/HannahMarsh/onionnet/internal/onion"
	"github.com/HannahMarsh/onionnet/internal/onion/keys"
	"github.com/HannahMarsh/onionnet/internal/repositories"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	nodes []models.NodeIdentity
	err   error
}

func (s stubDirectory) GetNodeRegistry(context.Context) ([]models.NodeIdentity, error) {
	return s.nodes, s.err
}

type sent struct {
	address string
	blob    []byte
}

type recordingTransport struct {
	sent []sent
	err  error
}

func (t *recordingTransport) SendOnion(_ context.Context, address string, blob []byte) error {
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, sent{address: address, blob: blob})
	return nil
}

func relays(t *testing.T, n int) ([]models.NodeIdentity, map[int][]byte) {
	t.Helper()
	nodes := make([]models.NodeIdentity, 0, n)
	privs := make(map[int][]byte, n)
	for i := 0; i < n; i++ {
		pub, priv, err := keys.X25519.GenerateKeyPair()
		require.NoError(t, err)
		nodes = append(nodes, models.NodeIdentity{ID: i, PublicKey: pub, Scheme: "x25519", Address: fmt.Sprintf("http://relay-%d", i)})
		privs[i] = priv
	}
	return nodes, privs
}

func TestSendMessage(t *testing.T) {
	nodes, privs := relays(t, 5)
	transport := &recordingTransport{}
	u := NewUser(0, "http://user-0", 3, stubDirectory{nodes: nodes}, transport, repositories.NewMessageRepository())

	ids, err := u.SendMessage(context.Background(), "hello", 1)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	require.Len(t, transport.sent, 1)
	assert.Equal(t, fmt.Sprintf("http://relay-%d", ids[0]), transport.sent[0].address)

	blob := transport.sent[0].blob
	for i, id := range ids {
		ri, err := onion.PeelOnion(blob, privs[id], keys.X25519)
		require.NoError(t, err)
		if i < len(ids)-1 {
			assert.Equal(t, ids[i+1], ri.NextHop)
			blob = ri.InnerCiphertext
			continue
		}
		assert.Equal(t, 1, ri.DestinationUser)
		assert.Equal(t, []byte("hello"), ri.Plaintext)
	}

	assert.Equal(t, "hello", *u.status.GetLastSentMessage())
	assert.Equal(t, ids, u.status.GetLastCircuit())
}

func TestSendMessageInsufficientRelays(t *testing.T) {
	nodes, _ := relays(t, 2)
	transport := &recordingTransport{}
	u := NewUser(0, "", 3, stubDirectory{nodes: nodes}, transport, repositories.NewMessageRepository())

	_, err := u.SendMessage(context.Background(), "hello", 1)
	assert.True(t, errors.Is(err, circuit.ErrInsufficientRelays))
	assert.Empty(t, transport.sent)
	assert.Nil(t, u.status.GetLastSentMessage())
}

func TestSendMessageTransportFailure(t *testing.T) {
	nodes, _ := relays(t, 3)
	u := NewUser(0, "", 3, stubDirectory{nodes: nodes}, &recordingTransport{err: errors.New("down")}, repositories.NewMessageRepository())

	_, err := u.SendMessage(context.Background(), "hello", 1)
	assert.Error(t, err)
	assert.Nil(t, u.status.GetLastSentMessage())
}

func TestDeliver(t *testing.T) {
	ctx := context.Background()
	u := NewUser(4, "", 0, stubDirectory{}, &recordingTransport{}, repositories.NewMessageRepository())
	require.NoError(t, u.Deliver(ctx, "one"))
	require.NoError(t, u.Deliver(ctx, "two"))

	msgs, err := u.Messages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Body)
	assert.Equal(t, 4, msgs[1].UserID)
	assert.Equal(t, "two", *u.status.GetLastReceivedMessage())

	last, err := u.LastMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two", *last)
}

func TestLastReceivedMessageReadsMailbox(t *testing.T) {
	ctx := context.Background()
	mailbox := repositories.NewMessageRepository()
	before := NewUser(5, "", 0, stubDirectory{}, &recordingTransport{}, mailbox)
	require.NoError(t, before.Deliver(ctx, "kept"))

	// a restarted user over the same mailbox has an empty status but not an empty mailbox
	after := NewUser(5, "", 0, stubDirectory{}, &recordingTransport{}, mailbox)
	assert.Nil(t, after.status.GetLastReceivedMessage())
	server := serve(t, after)
	assert.Equal(t, "kept", *getResult[*string](t, server.URL+"/getLastReceivedMessage"))

	other := NewUser(6, "", 0, stubDirectory{}, &recordingTransport{}, mailbox)
	last, err := other.LastMessage(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func serve(t *testing.T, u *User) *httptest.Server {
	t.Helper()
	router := mux.NewRouter()
	u.Routes(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func getResult[T any](t *testing.T, url string) T {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result structs.ResultApi[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result.Result
}

func TestUserHandler(t *testing.T) {
	nodes, _ := relays(t, 3)
	transport := &recordingTransport{}
	u := NewUser(1, "", 3, stubDirectory{nodes: nodes}, transport, repositories.NewMessageRepository())
	server := serve(t, u)

	assert.Nil(t, getResult[*string](t, server.URL+"/getLastReceivedMessage"))
	assert.Nil(t, getResult[*string](t, server.URL+"/getLastSentMessage"))

	resp := postJSON(t, server.URL+"/message", structs.MessageApi{Message: "hi there"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hi there", *getResult[*string](t, server.URL+"/getLastReceivedMessage"))

	resp = postJSON(t, server.URL+"/sendMessage", structs.SendMessageApi{Message: "out", DestinationUserID: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sendResult structs.SendResultApi
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sendResult))
	assert.Len(t, sendResult.Circuit, 3)
	assert.Equal(t, sendResult.Circuit, getResult[[]int](t, server.URL+"/getLastCircuit"))
	assert.Equal(t, "out", *getResult[*string](t, server.URL+"/getLastSentMessage"))

	msgs := getResult[[]models.DeliveredMessage](t, server.URL+"/getMessages")
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi there", msgs[0].Body)
}

func TestUserHandlerSendWithoutRelays(t *testing.T) {
	u := NewUser(1, "", 3, stubDirectory{}, &recordingTransport{}, repositories.NewMessageRepository())
	server := serve(t, u)

	resp := postJSON(t, server.URL+"/sendMessage", structs.SendMessageApi{Message: "out", DestinationUserID: 2})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
