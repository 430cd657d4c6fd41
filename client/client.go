// Package client talks to a tx-sitter deployment through an invocation
// channel.
//
// Client covers the transaction lifecycle (relay, lookup by id, lookup by
// relayer and status) with the sitter's own envelopes. RPCClient, obtained
// from Client.Provider, tunnels plain JSON-RPC calls for one relayer. The two
// speak different protocols over the same channel and are kept apart.
package client

import (
	"context"
	"errors"
	"fmt"

	"txsitter/codec"
	"txsitter/config"
	"txsitter/invoke"
	"txsitter/log"
	"txsitter/message"
	"txsitter/middleware"
)

// Client is safe for concurrent use. It holds no mutable state: the
// configuration, codec and invocation chain are fixed by NewClient.
type Client struct {
	config   config.ClientConfig
	envelope *codec.Envelope
	invoke   middleware.InvokeFunc
	logger   log.Logger
}

type options struct {
	logger      log.Logger
	codec       codec.Codec
	middlewares []middleware.Middleware
}

type Option func(*options)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMiddleware appends invocation middlewares; the first one added is the
// outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(o *options) { o.middlewares = append(o.middlewares, mws...) }
}

func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// NewClient binds invoker to the functions named by cfg.
func NewClient(invoker invoke.Invoker, cfg config.ClientConfig, opts ...Option) (*Client, error) {
	if invoker == nil {
		return nil, errors.New("txsitter: nil invoker")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: log.NewNoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNoopLogger()
	}

	call := func(ctx context.Context, inv *message.Invocation) ([]byte, error) {
		return invoker.Invoke(ctx, inv.Function, inv.Payload)
	}

	return &Client{
		config:   cfg,
		envelope: codec.NewEnvelope(o.codec),
		invoke:   middleware.Chain(o.middlewares...)(call),
		logger:   o.logger.WithName("txsitter"),
	}, nil
}

// New builds a Client over AWS Lambda using the default AWS configuration.
func New(ctx context.Context, cfg config.ClientConfig, opts ...Option) (*Client, error) {
	invoker, err := invoke.LoadLambdaInvoker(ctx)
	if err != nil {
		return nil, err
	}
	return NewClient(invoker, cfg, opts...)
}

// Config returns a copy of the function identifiers.
func (c *Client) Config() config.ClientConfig {
	return c.config
}

// Relay submits a transaction and returns the id the sitter assigned to it.
func (c *Client) Relay(ctx context.Context, input message.TransactionInput) (string, error) {
	const op = "relay"

	c.loggerFor(ctx).Info("relaying transaction",
		"relayerId", input.RelayerID,
		"to", input.To,
		"value", input.Value,
		"gasLimit", input.GasLimit)

	payload, err := c.envelope.EncodeSend(input)
	if err != nil {
		return "", serializationError(op, err)
	}

	reply, err := c.call(ctx, op, message.RoleSend, c.config.SendFunction, payload)
	if err != nil {
		return "", err
	}

	id, err := c.envelope.DecodeSend(reply)
	if err != nil {
		return "", malformedError(op, fmt.Errorf("invalid transaction response: %w", err))
	}
	return id, nil
}

// GetByRelayerAndStatus lists the transactions of relayerID currently in
// status. The list view carries no tx hash.
func (c *Client) GetByRelayerAndStatus(ctx context.Context, relayerID string, status message.TransactionStatus) ([]message.TransactionInput, error) {
	const op = "get transactions by relayer"

	payload, err := c.envelope.EncodeQuery(message.ByRelayerAndStatus{RelayerID: relayerID, Status: status})
	if err != nil {
		return nil, serializationError(op, err)
	}

	reply, err := c.call(ctx, op, message.RoleTransactions, c.config.TransactionsFunction, payload)
	if err != nil {
		return nil, err
	}

	txs, err := c.envelope.DecodeTransactionList(reply)
	if err != nil {
		return nil, malformedError(op, fmt.Errorf("invalid transaction payload: %w", err))
	}
	return txs, nil
}

// GetByID returns the full record of one transaction, including its hash.
func (c *Client) GetByID(ctx context.Context, transactionID string) (message.Transaction, error) {
	const op = "get transaction"

	payload, err := c.envelope.EncodeQuery(message.ByTransactionID{TransactionID: transactionID})
	if err != nil {
		return message.Transaction{}, serializationError(op, err)
	}

	reply, err := c.call(ctx, op, message.RoleTransactions, c.config.TransactionsFunction, payload)
	if err != nil {
		return message.Transaction{}, err
	}

	tx, err := c.envelope.DecodeTransactionByID(reply)
	switch {
	case errors.Is(err, codec.ErrNoTransactions):
		return message.Transaction{}, &Error{
			Kind: KindNotFound,
			Op:   op,
			Msg:  fmt.Sprintf("transaction %s not found or invalid format", transactionID),
			Err:  err,
		}
	case err != nil:
		return message.Transaction{}, malformedError(op, fmt.Errorf("invalid transaction payload: %w", err))
	}
	return tx, nil
}

// loggerFor prefers a logger carried by ctx over the client's own.
func (c *Client) loggerFor(ctx context.Context) log.Logger {
	return log.FromContextOr(ctx, c.logger)
}

// Provider returns a JSON-RPC client scoped to relayerID.
func (c *Client) Provider(relayerID string) *RPCClient {
	return &RPCClient{relayerID: relayerID, client: c}
}

// call performs the single invocation of an operation and rejects empty
// replies.
func (c *Client) call(ctx context.Context, op string, role message.Role, function string, payload []byte) ([]byte, error) {
	reply, err := c.invoke(ctx, &message.Invocation{
		Role:     role,
		Function: function,
		Payload:  payload,
	})
	if err != nil {
		return nil, transportError(op, err)
	}
	if len(reply) == 0 {
		c.loggerFor(ctx).Warn("empty reply", "op", op, "function", function)
		return nil, missingPayloadError(op)
	}
	return reply, nil
}
