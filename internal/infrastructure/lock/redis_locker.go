// Package lock implementa el bloqueo distribuido de envíos de ajustes sobre Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	appinventory "github.com/jhoicas/facturati-api/internal/application/inventory"
	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/pkg/config"
	"github.com/jhoicas/facturati-api/pkg/logger"
)

var _ appinventory.ProductLocker = (*RedisLocker)(nil)

// NewClient conecta a Redis y verifica la conexión con PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// RedisLocker serializa ajustes del mismo producto entre instancias de la API.
// No reintenta: si otro envío tiene el bloqueo se responde ErrAdjustmentInProgress.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisLocker construye el locker. ttl acota cuánto puede quedar tomado un bloqueo huérfano.
func NewRedisLocker(rdb redislock.RedisClient, ttl time.Duration, log *logger.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		log:    log.Component("lock"),
	}
}

// Lock obtiene el bloqueo de key. La función devuelta lo libera.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lk, err := l.client.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrAdjustmentInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("obtener bloqueo %s: %w", key, err)
	}
	return func() {
		// contexto propio: la petición pudo cancelarse antes de liberar
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lk.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el bloqueo")
		}
	}, nil
}
