package api_functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/HannahMarsh/onionnet/internal/api/structs"
	"github.com/HannahMarsh/onionnet/pkg/utils"
	"github.com/pkg/errors"
)

// RequestTimeout bounds every call between nodes.
const RequestTimeout = 30 * time.Second

const maxBodySize = 16 << 20

var httpClient = &http.Client{Timeout: RequestTimeout}

// StatusError is returned when a peer answers with an unexpected status code.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}

// PostJSON gzips payload as JSON and POSTs it to url. Any status other than
// 200 or 201 is reported as a *StatusError. If out is non-nil the response
// body is decoded into it.
func PostJSON(ctx context.Context, url string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal request to %s", url)
	}
	compressed, err := utils.Compress(data)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(compressed))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")

	return do(req, out)
}

// GetJSON fetches url and decodes the JSON response into out.
func GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	return do(req, out)
}

func do(req *http.Request, out any) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to send %s request to %s", req.Method, req.URL)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			slog.Error("error closing response body", "err", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode response from %s", req.URL)
	}
	return nil
}

// SendOnion posts a ciphertext blob to a relay's /message endpoint.
func SendOnion(ctx context.Context, to string, blob []byte) error {
	slog.Debug("sending onion...", "to", to, "size", len(blob))
	if err := PostJSON(ctx, to+"/message", structs.OnionApi{Message: blob}, nil); err != nil {
		return errors.Wrapf(err, "failed to send onion to %s", to)
	}
	return nil
}

// DeliverMessage posts a plaintext to a user's /message endpoint.
func DeliverMessage(ctx context.Context, to string, message []byte) error {
	if err := PostJSON(ctx, to+"/message", structs.MessageApi{Message: string(message)}, nil); err != nil {
		return errors.Wrapf(err, "failed to deliver message to %s", to)
	}
	return nil
}

// ReadJSON decodes a request body, inflating it first if it is gzipped.
func ReadJSON(r *http.Request, v any) error {
	var body []byte
	var err error
	if r.Header.Get("Content-Encoding") == "gzip" {
		body, err = utils.Decompress(r.Body)
	} else {
		body, err = io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	}
	if err != nil {
		return errors.Wrap(err, "failed to read request body")
	}
	if err = json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, "failed to decode request body")
	}
	return nil
}

// HandleReceiveOnion decodes an OnionApi and hands it to receiveFunction.
func HandleReceiveOnion(w http.ResponseWriter, r *http.Request, receiveFunction func(api structs.OnionApi) error) {
	var o structs.OnionApi
	if err := ReadJSON(r, &o); err != nil {
		slog.Error("error decoding onion", "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(o.Message) == 0 {
		http.Error(w, "empty message", http.StatusBadRequest)
		return
	}
	if err := receiveFunction(o); err != nil {
		slog.Error("error receiving onion", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("error writing response", "err", err)
	}
}

// WriteResult answers a debug getter with {"result": v}.
func WriteResult[T any](w http.ResponseWriter, v T) {
	WriteJSON(w, http.StatusOK, structs.ResultApi[T]{Result: v})
}

func HandleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("live")); err != nil {
		slog.Error("error writing status", "err", err)
	}
}
