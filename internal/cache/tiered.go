package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/classpad/answerboard/pkg/logger"
	"github.com/classpad/answerboard/pkg/metrics"
)

// Layer names a cache partition with its own TTL and key prefix.
type Layer string

// The four cache layers. Fast backs latency-critical polling paths with
// aggressive expiry, extended backs read-heavy admin views, and secure is
// short-lived because it serves security-checked reads.
const (
	LayerFast     Layer = "fast"
	LayerStandard Layer = "standard"
	LayerExtended Layer = "extended"
	LayerSecure   Layer = "secure"
)

type layerSpec struct {
	ttl    time.Duration
	prefix string
}

var layerSpecs = map[Layer]layerSpec{
	LayerFast:     {ttl: 60 * time.Second, prefix: "user_fast_"},
	LayerStandard: {ttl: 180 * time.Second, prefix: "user_std_"},
	LayerExtended: {ttl: 300 * time.Second, prefix: "user_ext_"},
	LayerSecure:   {ttl: 120 * time.Second, prefix: "user_sec_"},
}

// Layers lists every configured layer in a stable order.
var Layers = []Layer{LayerFast, LayerStandard, LayerExtended, LayerSecure}

// Normalize maps unknown layer names to the standard layer.
func Normalize(layer Layer) Layer {
	if _, ok := layerSpecs[layer]; ok {
		return layer
	}
	return LayerStandard
}

// TTL reports the layer's time-to-live.
func TTL(layer Layer) time.Duration {
	return layerSpecs[Normalize(layer)].ttl
}

// Prefix reports the layer's physical key prefix.
func Prefix(layer Layer) string {
	return layerSpecs[Normalize(layer)].prefix
}

// Tiered partitions a flat Store into the named TTL layers. A logical key may
// hold independent entries in several layers at once, each with its own
// freshness. Store failures never escape: reads degrade to misses and writes
// are logged and dropped, so cache unavailability slows requests down instead
// of failing them.
type Tiered struct {
	store Store
	log   *zap.Logger
}

// NewTiered wraps the supplied store.
func NewTiered(store Store) (*Tiered, error) {
	if store == nil {
		return nil, errors.New("tiered cache: store is required")
	}
	return &Tiered{
		store: store,
		log:   logger.WithModule("cache"),
	}, nil
}

// Get returns the cached value for the logical key within a layer, or false on
// miss. Store errors are reported as misses.
func (t *Tiered) Get(ctx context.Context, layer Layer, key string) ([]byte, bool) {
	layer = Normalize(layer)
	if key == "" {
		return nil, false
	}

	value, found, err := t.store.Get(ctx, Prefix(layer)+key)
	if err != nil {
		t.log.Warn("cache read degraded to miss",
			zap.String("layer", string(layer)),
			zap.Error(err),
		)
		metrics.CacheMisses.WithLabelValues(string(layer)).Inc()
		return nil, false
	}
	if !found {
		metrics.CacheMisses.WithLabelValues(string(layer)).Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues(string(layer)).Inc()
	return value, true
}

// Set writes the value under the logical key with the layer's TTL. Write
// failures are logged, never propagated: a failed population just means the
// next read is also a miss.
func (t *Tiered) Set(ctx context.Context, layer Layer, key string, value []byte) {
	layer = Normalize(layer)
	if key == "" {
		return
	}

	if err := t.store.Set(ctx, Prefix(layer)+key, value, TTL(layer)); err != nil {
		t.log.Warn("cache population failed",
			zap.String("layer", string(layer)),
			zap.Error(err),
		)
		metrics.CacheSetFailures.WithLabelValues(string(layer)).Inc()
	}
}

// Invalidate removes the physical entries for the primary and secondary
// logical keys across every layer. Empty keys are skipped, so the fan-out
// issues up to len(Layers)*2 physical deletes. Returns the number of delete
// calls issued.
func (t *Tiered) Invalidate(ctx context.Context, id, secondaryKey string) int {
	keys := make([]string, 0, 2)
	if id != "" {
		keys = append(keys, id)
	}
	if secondaryKey != "" && secondaryKey != id {
		keys = append(keys, secondaryKey)
	}

	deletes := 0
	for _, layer := range Layers {
		for _, key := range keys {
			deletes++
			metrics.CacheInvalidations.Inc()
			if err := t.store.Delete(ctx, Prefix(layer)+key); err != nil {
				t.log.Warn("cache invalidation failed",
					zap.String("layer", string(layer)),
					zap.Error(err),
				)
			}
		}
	}
	return deletes
}
