package cart

import (
	"context"
	"strconv"
	"sync"
	"time"

	pkgredis "github.com/capitlshop/storefront-backend/pkg/redis"
)

// RedisPersistence stores a shopper's cart as a redis hash of product id to
// quantity, so a cart survives restarts within its TTL.
type RedisPersistence struct {
	client *pkgredis.Client
	key    string
	ttl    time.Duration
}

// NewRedisPersistence builds the persistence for one shopper's cart.
func NewRedisPersistence(client *pkgredis.Client, shopperID string, ttl time.Duration) *RedisPersistence {
	return &RedisPersistence{
		client: client,
		key:    client.CartKey(shopperID),
		ttl:    ttl,
	}
}

func (p *RedisPersistence) Load(ctx context.Context) (map[string]int, error) {
	raw, err := p.client.HGetAll(ctx, p.key)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(raw))
	for productID, value := range raw {
		qty, err := strconv.Atoi(value)
		if err != nil || qty < 1 {
			// A corrupt field is dropped rather than poisoning the cart.
			continue
		}
		out[productID] = qty
	}
	return out, nil
}

func (p *RedisPersistence) SetQuantity(ctx context.Context, productID string, qty int) error {
	if err := p.client.HSet(ctx, p.key, productID, strconv.Itoa(qty)); err != nil {
		return err
	}
	if p.ttl > 0 {
		return p.client.Expire(ctx, p.key, p.ttl)
	}
	return nil
}

func (p *RedisPersistence) DeleteLine(ctx context.Context, productID string) error {
	return p.client.HDel(ctx, p.key, productID)
}

func (p *RedisPersistence) Clear(ctx context.Context) error {
	return p.client.Del(ctx, p.key)
}

// MemoryPersistence is an in-process Persistence used in tests and when no
// redis is configured.
type MemoryPersistence struct {
	mu    sync.Mutex
	items map[string]int
}

func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{items: map[string]int{}}
}

func (p *MemoryPersistence) Load(ctx context.Context) (map[string]int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]int, len(p.items))
	for k, v := range p.items {
		out[k] = v
	}
	return out, nil
}

func (p *MemoryPersistence) SetQuantity(ctx context.Context, productID string, qty int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items[productID] = qty
	return nil
}

func (p *MemoryPersistence) DeleteLine(ctx context.Context, productID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.items, productID)
	return nil
}

func (p *MemoryPersistence) Clear(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = map[string]int{}
	return nil
}
