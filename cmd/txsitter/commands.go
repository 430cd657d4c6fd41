package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"txsitter/log"
	"txsitter/message"
)

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "txsitter",
		Short: "Client for a tx-sitter deployment",
		Long: `Relays transactions through a tx-sitter deployment, looks them up, and
tunnels JSON-RPC calls to the chain on behalf of a relayer.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.writeMetrics()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (yaml, toml, json or env); the environment is used when empty")
	flags.StringVar(&a.envFile, "env-file", "", "Env file loaded before the config (default .env when present)")
	flags.StringVar(&a.stage, "stage", "", "Resolve function identifiers from etcd under this stage")
	flags.StringSliceVar(&a.etcdEndpoints, "etcd-endpoints", nil, "etcd endpoints")
	flags.StringVar(&a.logFormat, "log-format", "console", "Log format: console, json or logfmt")
	flags.StringVar(&a.logLevel, "log-level", "info", "Log level")
	flags.Float64Var(&a.rate, "rate", 0, "Maximum invocations per second (0 disables)")
	flags.IntVar(&a.burst, "burst", 1, "Invocation burst size")
	flags.DurationVar(&a.timeout, "timeout", 30*time.Second, "Command timeout")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "Write invocation metrics to this file in Prometheus text format")

	rootCmd.AddCommand(
		newRelayCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newRPCCmd(a),
		newEthTxCmd(a),
		newPublishConfigCmd(a),
	)
	return rootCmd
}

type relayFlags struct {
	to            string
	value         string
	unit          string
	gasLimit      string
	relayerID     string
	data          string
	transactionID string
	generateID    bool
	priority      string
	txType        string
}

func newRelayCmd(a *app) *cobra.Command {
	var f relayFlags
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Relay a transaction and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := f.input()
			if err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()
			c, err := a.client(ctx)
			if err != nil {
				return err
			}
			id, err := c.Relay(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.to, "to", "", "Recipient address")
	cmd.Flags().StringVar(&f.value, "value", "0", "Amount to send")
	cmd.Flags().StringVar(&f.unit, "unit", "wei", "Unit of --value: wei, gwei or ether")
	cmd.Flags().StringVar(&f.gasLimit, "gas-limit", "", "Gas limit")
	cmd.Flags().StringVar(&f.relayerID, "relayer", "", "Relayer id")
	cmd.Flags().StringVar(&f.data, "data", "", "Hex calldata")
	cmd.Flags().StringVar(&f.transactionID, "transaction-id", "", "Idempotency key")
	cmd.Flags().BoolVar(&f.generateID, "generate-id", false, "Generate a random idempotency key")
	cmd.Flags().StringVar(&f.priority, "priority", "", "slowest, slow, regular, fast or fastest")
	cmd.Flags().StringVar(&f.txType, "type", "", "Transaction type, e.g. transfer")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("gas-limit")
	_ = cmd.MarkFlagRequired("relayer")
	cmd.MarkFlagsMutuallyExclusive("transaction-id", "generate-id")
	return cmd
}

// input checks the flags and builds the TransactionInput to relay.
func (f relayFlags) input() (message.TransactionInput, error) {
	if !common.IsHexAddress(f.to) {
		return message.TransactionInput{}, fmt.Errorf("invalid --to address %q", f.to)
	}
	value, err := toWei(f.value, f.unit)
	if err != nil {
		return message.TransactionInput{}, fmt.Errorf("invalid --value: %w", err)
	}
	gasLimit, err := parseGasLimit(f.gasLimit)
	if err != nil {
		return message.TransactionInput{}, fmt.Errorf("invalid --gas-limit: %w", err)
	}
	if err := checkCalldata(f.data); err != nil {
		return message.TransactionInput{}, fmt.Errorf("invalid --data: %w", err)
	}

	input := message.TransactionInput{
		To:        common.HexToAddress(f.to).Hex(),
		Data:      f.data,
		Value:     value,
		GasLimit:  gasLimit,
		RelayerID: f.relayerID,
	}

	switch {
	case f.transactionID != "":
		id := f.transactionID
		input.TransactionID = &id
	case f.generateID:
		id := uuid.NewString()
		input.TransactionID = &id
	}
	if f.priority != "" {
		p, err := message.ParseTransactionPriority(f.priority)
		if err != nil {
			return message.TransactionInput{}, err
		}
		input.Priority = &p
	}
	if f.txType != "" {
		t, err := message.ParseTransactionType(f.txType)
		if err != nil {
			return message.TransactionInput{}, err
		}
		input.TransactionType = &t
	}
	return input, nil
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <transaction-id>",
		Short: "Print a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			c, err := a.client(ctx)
			if err != nil {
				return err
			}
			tx, err := c.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tx)
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <relayer-id> <status>",
		Short: "Print the transactions of a relayer in a status",
		Long:  "Status is one of queued, pending, mined, finalized or dropped.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := message.ParseTransactionStatus(args[1])
			if err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()
			c, err := a.client(ctx)
			if err != nil {
				return err
			}
			txs, err := c.GetByRelayerAndStatus(ctx, args[0], status)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), txs)
		},
	}
}

func newRPCCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rpc <relayer-id> <method> [params-json]",
		Short: "Call a JSON-RPC method through a relayer and print the raw result",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params json.RawMessage
			if len(args) == 3 {
				params = json.RawMessage(args[2])
				if !json.Valid(params) {
					return fmt.Errorf("params are not valid JSON")
				}
			}

			ctx, cancel := a.context(cmd)
			defer cancel()
			c, err := a.client(ctx)
			if err != nil {
				return err
			}
			var result json.RawMessage
			if err := c.Provider(args[0]).Request(ctx, args[1], params, &result); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(result))
			return nil
		},
	}
}

func newEthTxCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "eth-tx <relayer-id> <hash>",
		Short: "Fetch an on-chain transaction through a relayer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := parseHash(args[1])
			if err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()
			c, err := a.client(ctx)
			if err != nil {
				return err
			}
			ec, err := c.EthClient(ctx, args[0])
			if err != nil {
				return err
			}
			defer ec.Close()

			tx, pending, err := ec.TransactionByHash(ctx, hash)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), struct {
				Pending     bool `json:"pending"`
				Transaction any  `json:"transaction"`
			}{pending, tx})
		},
	}
}

func newPublishConfigCmd(a *app) *cobra.Command {
	var ttl int64
	cmd := &cobra.Command{
		Use:   "publish-config <stage>",
		Short: "Publish the loaded function identifiers to etcd",
		Long: `Publishes the loaded function identifiers under <stage>. Without --ttl the
entry stays until replaced. With --ttl the entry is bound to a lease that is
kept alive while the command runs; the command waits for an interrupt, then
withdraws the entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.cfg.Etcd.Endpoints) == 0 {
				return fmt.Errorf("no etcd endpoints configured")
			}
			reg, err := a.openRegistry(a.cfg.Etcd.Endpoints)
			if err != nil {
				return fmt.Errorf("connect etcd: %w", err)
			}
			defer reg.Close()

			stage := args[0]
			ctx, cancel := a.context(cmd)
			defer cancel()
			if err := reg.Publish(ctx, stage, a.cfg.Client, ttl); err != nil {
				return err
			}
			logger := log.FromContext(ctx)
			logger.Info("published client config", "stage", stage, "ttl", ttl)
			if ttl <= 0 {
				return nil
			}

			wait, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-wait.Done()

			withdrawCtx, cancelWithdraw := context.WithTimeout(context.WithoutCancel(cmd.Context()), 5*time.Second)
			defer cancelWithdraw()
			if err := reg.Withdraw(withdrawCtx, stage); err != nil {
				return err
			}
			logger.Info("withdrew client config", "stage", stage)
			return nil
		},
	}
	cmd.Flags().Int64Var(&ttl, "ttl", 0, "Lease TTL in seconds; the command then stays up to keep the lease alive (0 publishes without lease and exits)")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
