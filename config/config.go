// Package config holds the function identifiers of a tx-sitter deployment and
// the settings of the processes that talk to it.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"

	"txsitter/log"
)

// ClientConfig names the three functions of one deployment. For Lambda the
// identifiers are function names or ARNs. Never mutated after construction.
type ClientConfig struct {
	SendFunction         string `json:"sendFunction" yaml:"send_function" toml:"send_function" env:"TX_SITTER_SEND_FUNCTION" validate:"required"`
	RPCFunction          string `json:"rpcFunction" yaml:"rpc_function" toml:"rpc_function" env:"TX_SITTER_RPC_FUNCTION" validate:"required"`
	TransactionsFunction string `json:"transactionsFunction" yaml:"transactions_function" toml:"transactions_function" env:"TX_SITTER_TRANSACTIONS_FUNCTION" validate:"required"`
}

// Validate reports every missing identifier at once.
func (c ClientConfig) Validate() error {
	return validate(c)
}

// RateLimit paces outgoing invocations. A zero rate disables it.
type RateLimit struct {
	Rate  float64 `yaml:"rate" toml:"rate" env:"TX_SITTER_RATE" validate:"gte=0"`
	Burst int     `yaml:"burst" toml:"burst" env:"TX_SITTER_BURST" env-default:"1" validate:"gte=1"`
}

func (r RateLimit) Enabled() bool {
	return r.Rate > 0
}

// Etcd locates a shared ClientConfig published under Stage.
type Etcd struct {
	Endpoints []string `yaml:"endpoints" toml:"endpoints" env:"TX_SITTER_ETCD_ENDPOINTS" env-separator:","`
	Stage     string   `yaml:"stage" toml:"stage" env:"TX_SITTER_STAGE"`
}

func (e Etcd) Enabled() bool {
	return len(e.Endpoints) > 0 && e.Stage != ""
}

// Config is the process configuration of the CLI.
type Config struct {
	Client    ClientConfig `yaml:"client" toml:"client"`
	Log       log.Config   `yaml:"log" toml:"log"`
	RateLimit RateLimit    `yaml:"rate_limit" toml:"rate_limit"`
	Etcd      Etcd         `yaml:"etcd" toml:"etcd"`
}

// Load reads path (yaml, toml, json or env file, chosen by extension) or,
// when path is empty, the environment. Client identifiers are not validated
// here because they may still come from etcd; call Client.Validate once the
// source is settled.
func Load(path string) (Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := validate(cfg.Log); err != nil {
		return Config{}, err
	}
	if err := validate(cfg.RateLimit); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validatorInstance = validator.New(validator.WithRequiredStructEnabled())

func validate(v any) error {
	err := validatorInstance.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
