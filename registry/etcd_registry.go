// Package registry keeps tx-sitter function identifiers in etcd so that every
// client of a stage resolves the same deployment.
//
//	Key:   /tx-sitter/{stage}/config
//	Value: JSON-encoded config.ClientConfig
//
// Entries published with a TTL are bound to a lease that the publisher keeps
// alive; they disappear when it stops.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"txsitter/config"
)

const keyPrefix = "/tx-sitter/"

// EtcdRegistry implements Registry on etcd v3.
type EtcdRegistry struct {
	client *clientv3.Client // shared, safe for concurrent use
}

func NewEtcdRegistry(endpoints []string) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistry{client: c}, nil
}

func configKey(stage string) string {
	return keyPrefix + stage + "/config"
}

// Publish validates cfg and stores it. The lease ID stays local so one
// registry can publish several stages concurrently.
func (r *EtcdRegistry) Publish(ctx context.Context, stage string, cfg config.ClientConfig, ttl int64) error {
	if stage == "" {
		return errors.New("registry: empty stage")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	val, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		_, err = r.client.Put(ctx, configKey(stage), string(val))
		return err
	}

	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return err
	}
	if _, err := r.client.Put(ctx, configKey(stage), string(val), clientv3.WithLease(lease.ID)); err != nil {
		return err
	}

	// Renewal runs until the client is closed, not until ctx ends.
	ch, err := r.client.KeepAlive(context.WithoutCancel(ctx), lease.ID)
	if err != nil {
		return err
	}
	go func() {
		for range ch {
		}
	}()
	return nil
}

func (r *EtcdRegistry) Withdraw(ctx context.Context, stage string) error {
	_, err := r.client.Delete(ctx, configKey(stage))
	return err
}

func (r *EtcdRegistry) Lookup(ctx context.Context, stage string) (config.ClientConfig, error) {
	resp, err := r.client.Get(ctx, configKey(stage))
	if err != nil {
		return config.ClientConfig{}, err
	}
	if len(resp.Kvs) == 0 {
		return config.ClientConfig{}, fmt.Errorf("%w %q", ErrNotPublished, stage)
	}
	return decodeConfig(resp.Kvs[0].Value)
}

// Watch uses etcd's server-push watch. Deletions and undecodable values are
// skipped; the channel closes when ctx ends.
func (r *EtcdRegistry) Watch(ctx context.Context, stage string) <-chan config.ClientConfig {
	ch := make(chan config.ClientConfig, 1)

	go func() {
		defer close(ch)
		for resp := range r.client.Watch(ctx, configKey(stage)) {
			for _, ev := range resp.Events {
				if ev.Type != clientv3.EventTypePut {
					continue
				}
				cfg, err := decodeConfig(ev.Kv.Value)
				if err != nil {
					continue
				}
				select {
				case ch <- cfg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch
}

func (r *EtcdRegistry) Close() error {
	return r.client.Close()
}

func decodeConfig(val []byte) (config.ClientConfig, error) {
	var cfg config.ClientConfig
	if err := json.Unmarshal(val, &cfg); err != nil {
		return config.ClientConfig{}, fmt.Errorf("registry: decode client config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.ClientConfig{}, err
	}
	return cfg, nil
}
