package store

import (
	"context"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// Etcd is a KV backed by an etcd cluster. TTLs map onto etcd leases:
// each Set attaches the key to a fresh lease, and Expire re-attaches
// the current value to a new lease.
type Etcd struct {
	client *clientv3.Client
}

// NewEtcd creates a KV over an existing etcd client. The caller owns
// the client lifecycle.
func NewEtcd(client *clientv3.Client) *Etcd {
	return &Etcd{client: client}
}

// DialEtcd connects to an etcd cluster and wraps it as a KV.
func DialEtcd(endpoints []string, dialTimeout time.Duration) (*Etcd, error) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("etcd dial: %w", err)
	}
	return &Etcd{client: client}, nil
}

// Close releases the underlying client when this KV owns it.
func (e *Etcd) Close() error {
	return e.client.Close()
}

// Get implements KV. Expired leases remove their keys server-side, so
// a plain point read suffices.
func (e *Etcd) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp, err := e.client.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("etcd get %q: %w", key, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, false, nil
	}
	return resp.Kvs[0].Value, true, nil
}

// Set implements KV.
func (e *Etcd) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var opts []clientv3.OpOption
	if ttl > 0 {
		lease, err := e.client.Grant(ctx, int64(ttl.Seconds()))
		if err != nil {
			return fmt.Errorf("etcd lease grant: %w", err)
		}
		opts = append(opts, clientv3.WithLease(lease.ID))
	}
	if _, err := e.client.Put(ctx, key, string(value), opts...); err != nil {
		return fmt.Errorf("etcd put %q: %w", key, err)
	}
	return nil
}

// Del implements KV.
func (e *Etcd) Del(ctx context.Context, key string) (bool, error) {
	resp, err := e.client.Delete(ctx, key)
	if err != nil {
		return false, fmt.Errorf("etcd delete %q: %w", key, err)
	}
	return resp.Deleted > 0, nil
}

// Expire implements KV. etcd leases cannot be re-timed in place, so
// the value is re-put under a fresh lease.
func (e *Etcd) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	value, ok, err := e.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := e.Set(ctx, key, value, ttl); err != nil {
		return false, err
	}
	return true, nil
}
