package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"txsitter/message"
)

// bridgeHost is never resolved; the RoundTripper answers every request.
const bridgeHost = "txsitter.invalid"

// EthClient returns a go-ethereum client for relayerID whose HTTP transport
// is the rpc function.
func (c *Client) EthClient(ctx context.Context, relayerID string) (*ethclient.Client, error) {
	rc, err := c.Provider(relayerID).DialRPC(ctx)
	if err != nil {
		return nil, err
	}
	return ethclient.NewClient(rc), nil
}

// DialRPC returns a go-ethereum rpc.Client over the bridge.
func (c *RPCClient) DialRPC(ctx context.Context) (*rpc.Client, error) {
	endpoint := url.URL{Scheme: "http", Host: bridgeHost, Path: "/" + url.PathEscape(c.relayerID)}
	httpClient := &http.Client{Transport: c.RoundTripper()}
	return rpc.DialOptions(ctx, endpoint.String(), rpc.WithHTTPClient(httpClient))
}

// RoundTripper serves JSON-RPC over HTTP requests by invoking the rpc function
// once per call. Batches are answered element by element in order;
// notifications are invoked but not answered.
func (c *RPCClient) RoundTripper() http.RoundTripper {
	return &roundTripper{rpc: c}
}

type roundTripper struct {
	rpc *RPCClient
}

// wireMessage is a JSON-RPC request or response as it travels over HTTP.
type wireMessage struct {
	Version string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id,omitempty"`
	Method  string            `json:"method,omitempty"`
	Params  json.RawMessage   `json:"params,omitempty"`
	Result  json.RawMessage   `json:"result,omitempty"`
	Error   *message.RPCError `json:"error,omitempty"`
}

func (t *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body == nil {
		return nil, errors.New("txsitter: empty JSON-RPC request body")
	}
	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, err
	}

	var out []byte
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var batch []wireMessage
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("txsitter: decode JSON-RPC batch: %w", err)
		}
		replies := make([]wireMessage, 0, len(batch))
		for _, msg := range batch {
			reply, err := t.serve(req.Context(), msg)
			if err != nil {
				return nil, err
			}
			if !msg.isNotification() {
				replies = append(replies, reply)
			}
		}
		if len(replies) > 0 {
			out, err = json.Marshal(replies)
		}
	} else {
		var msg wireMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return nil, fmt.Errorf("txsitter: decode JSON-RPC request: %w", err)
		}
		var reply wireMessage
		if reply, err = t.serve(req.Context(), msg); err != nil {
			return nil, err
		}
		if !msg.isNotification() {
			out, err = json.Marshal(reply)
		}
	}
	if err != nil {
		return nil, err
	}

	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(bytes.NewReader(out)),
		ContentLength: int64(len(out)),
		Request:       req,
	}, nil
}

// isNotification reports a call without id, which gets no reply.
func (m wireMessage) isNotification() bool {
	return len(m.ID) == 0
}

// serve answers one call under the caller's own id. Unlike Request, a lone
// "result": null is passed through: go-ethereum maps it to ethereum.NotFound.
func (t *roundTripper) serve(ctx context.Context, msg wireMessage) (wireMessage, error) {
	reply := wireMessage{Version: "2.0", ID: msg.ID}

	resp, err := t.rpc.exchange(ctx, msg.Method, msg.Params)
	if err != nil {
		return wireMessage{}, err
	}
	if resp.Error == nil && resp.NullResult() {
		reply.Result = resp.Result
		return reply, nil
	}

	raw, err := checkResponse(rpcOp(msg.Method), resp)
	if rpcErr, ok := IsRPCError(err); ok {
		reply.Error = rpcErr
		return reply, nil
	}
	if err != nil {
		return wireMessage{}, err
	}
	reply.Result = raw
	return reply, nil
}
