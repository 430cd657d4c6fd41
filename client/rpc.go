package client

import (
	"context"
	"encoding/json"

	"txsitter/message"
)

const errInvalidRPCResponse = "invalid response from the RPC"

// RPCClient tunnels JSON-RPC calls for one relayer through the rpc function.
// It shares the channel and middleware chain of the Client it came from.
type RPCClient struct {
	relayerID string
	client    *Client
}

func (c *RPCClient) RelayerID() string {
	return c.relayerID
}

// Request performs method with params and decodes the result into result,
// which must be a pointer or nil. A reply whose only content is
// "result": null is rejected like one with neither result nor error.
func (c *RPCClient) Request(ctx context.Context, method string, params any, result any) error {
	resp, err := c.exchange(ctx, method, params)
	if err != nil {
		return err
	}
	raw, err := checkResponse(rpcOp(method), resp)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := c.client.envelope.Codec().Decode(raw, result); err != nil {
		return serializationError(rpcOp(method), err)
	}
	return nil
}

// CallContext mirrors the go-ethereum rpc.Client signature: args become the
// positional params.
func (c *RPCClient) CallContext(ctx context.Context, result any, method string, args ...any) error {
	if args == nil {
		args = []any{}
	}
	return c.Request(ctx, method, args, result)
}

// Call performs method and decodes the result as R.
func Call[R any](ctx context.Context, c *RPCClient, method string, params any) (R, error) {
	var out R
	err := c.Request(ctx, method, params, &out)
	return out, err
}

// exchange performs one invocation and decodes the reply without judging it.
func (c *RPCClient) exchange(ctx context.Context, method string, params any) (*message.Response, error) {
	op := rpcOp(method)
	env := c.client.envelope

	payload, err := env.EncodeRPC(c.relayerID, method, params)
	if err != nil {
		return nil, serializationError(op, err)
	}

	reply, err := c.client.call(ctx, op, message.RoleRPC, c.client.config.RPCFunction, payload)
	if err != nil {
		return nil, err
	}

	resp, err := env.DecodeRPC(reply)
	if err != nil {
		return nil, serializationError(op, err)
	}
	return resp, nil
}

// checkResponse enforces result/error exclusivity and returns the raw result.
func checkResponse(op string, resp *message.Response) (json.RawMessage, error) {
	if err := resp.Validate(); err != nil {
		return nil, &Error{Kind: KindOther, Op: op, Msg: errInvalidRPCResponse, Err: err}
	}
	if resp.Error != nil {
		return nil, &Error{Kind: KindRPC, Op: op, RPC: resp.Error}
	}
	return resp.Result, nil
}

func rpcOp(method string) string {
	return "rpc " + method
}
