package connector

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type standardConnector struct {
	provider Provider
	config   Config
}

var globalManager = &Manager{
	providers: make(map[string]Provider),
}

type Manager struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

// Register makes a provider available under name. Providers call it from init.
func Register(name string, provider Provider) {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.providers[name] = provider
}

// Providers lists the registered provider names.
func Providers() []string {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	names := make([]string, 0, len(globalManager.providers))
	for name := range globalManager.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func New(name string, config Config) (Connector, error) {
	globalManager.mu.RLock()
	provider, ok := globalManager.providers[name]
	globalManager.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider %s not registered", name)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", name, err)
	}
	return &standardConnector{provider: provider, config: config}, nil
}

// Connect opens the connection, retrying when the config asks for it.
func (c *standardConnector) Connect(ctx context.Context) (Connection, error) {
	if c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	if c.config.Retry != nil {
		conn, err := retryConnect(ctx, *c.config.Retry, c.connect)
		if err != nil {
			return nil, fmt.Errorf("failed to connect after %d retries: %w", c.config.Retry.MaxRetries, err)
		}
		return conn, nil
	}
	return c.connect(ctx)
}

func (c *standardConnector) ConnectWithRetry(ctx context.Context, opts RetryConfig) (Connection, error) {
	return retryConnect(ctx, opts, c.connect)
}

func (c *standardConnector) Config() Config {
	return c.config
}

func (c *standardConnector) connect(ctx context.Context) (Connection, error) {
	return c.provider.Connect(ctx, c.config)
}
