package cache

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RedisConfig captures the connection parameters for the lightweight Redis client.
type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
	TLS      bool
	Timeout  time.Duration
}

const defaultRedisTimeout = 5 * time.Second
const redisKeyPrefix = "answerboard:"

// RedisStore implements the small subset of the Redis protocol the tiered
// cache and rate limiter need: AUTH, SELECT, GET, SET (PX), DEL, INCR,
// PEXPIRE and PTTL. It keeps one connection guarded by a mutex; lost
// connections are re-established on the next command.
type RedisStore struct {
	cfg    RedisConfig
	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// NewRedisStore dials the configured Redis server eagerly so that
// misconfiguration surfaces during application startup.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	cfg.Address = strings.TrimSpace(cfg.Address)
	if cfg.Address == "" {
		return nil, errors.New("redis: address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRedisTimeout
	}

	store := &RedisStore{cfg: cfg}

	store.mu.Lock()
	err := store.connectLocked(context.Background())
	store.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Close closes the underlying network connection.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.reader = nil
	return err
}

// Get retrieves the value associated with a key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	reply, err := s.command(ctx, "GET", s.prefixed(key))
	if err != nil {
		return nil, false, err
	}

	switch v := reply.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return v, true, nil
	default:
		return nil, false, fmt.Errorf("redis: unexpected GET reply %T", v)
	}
}

// Set stores a value with PX expiry semantics.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := []string{"SET", s.prefixed(key), string(value)}
	if ttl > 0 {
		args = append(args, "PX", millis(ttl))
	}
	reply, err := s.command(ctx, args...)
	if err != nil {
		return err
	}
	if status, ok := reply.(string); !ok || !strings.EqualFold(status, "OK") {
		return fmt.Errorf("redis: unexpected SET reply %v", reply)
	}
	return nil
}

// Delete removes one or more keys, ignoring missing keys.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]string, 0, len(keys)+1)
	args = append(args, "DEL")
	for _, key := range keys {
		args = append(args, s.prefixed(key))
	}
	_, err := s.command(ctx, args...)
	return err
}

// IncrementWithTTL increments the key and pins its TTL to the window on first
// increment. It returns the current count and the remaining time-to-live.
func (s *RedisStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	prefixedKey := s.prefixed(key)

	count, err := s.commandInt(ctx, "INCR", prefixedKey)
	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		if _, err := s.commandInt(ctx, "PEXPIRE", prefixedKey, millis(window)); err != nil {
			return 0, 0, err
		}
	}

	ttlMillis, err := s.commandInt(ctx, "PTTL", prefixedKey)
	if err != nil || ttlMillis < 0 {
		return count, window, nil
	}
	return count, time.Duration(ttlMillis) * time.Millisecond, nil
}

func (s *RedisStore) prefixed(key string) string {
	if strings.HasPrefix(key, redisKeyPrefix) {
		return key
	}
	return redisKeyPrefix + key
}

func (s *RedisStore) commandInt(ctx context.Context, args ...string) (int64, error) {
	reply, err := s.command(ctx, args...)
	if err != nil {
		return 0, err
	}
	switch v := reply.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("redis: unexpected integer reply %T", v)
	}
}

func (s *RedisStore) command(ctx context.Context, args ...string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		if err := s.connectLocked(ctx); err != nil {
			return nil, err
		}
	}

	deadline := commandDeadline(ctx, s.cfg.Timeout)
	if err := s.conn.SetDeadline(deadline); err != nil {
		s.dropLocked()
		return nil, err
	}

	if err := encodeCommand(s.conn, args); err != nil {
		s.dropLocked()
		return nil, err
	}

	reply, err := decodeReply(s.reader)
	if err != nil {
		s.dropLocked()
		return nil, err
	}
	return reply, nil
}

func (s *RedisStore) connectLocked(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.TLS {
		dialer := &tls.Dialer{NetDialer: &net.Dialer{}}
		conn, err = dialer.DialContext(dialCtx, "tcp", s.cfg.Address)
	} else {
		dialer := &net.Dialer{}
		conn, err = dialer.DialContext(dialCtx, "tcp", s.cfg.Address)
	}
	if err != nil {
		return err
	}

	reader := bufio.NewReader(conn)
	if err := conn.SetDeadline(commandDeadline(dialCtx, s.cfg.Timeout)); err != nil {
		conn.Close()
		return err
	}

	if s.cfg.Password != "" || s.cfg.Username != "" {
		authArgs := []string{"AUTH"}
		if s.cfg.Username != "" {
			authArgs = append(authArgs, s.cfg.Username, s.cfg.Password)
		} else {
			authArgs = append(authArgs, s.cfg.Password)
		}
		if err := expectOK(conn, reader, authArgs); err != nil {
			conn.Close()
			return fmt.Errorf("redis: AUTH failed: %w", err)
		}
	}

	if s.cfg.DB > 0 {
		if err := expectOK(conn, reader, []string{"SELECT", strconv.Itoa(s.cfg.DB)}); err != nil {
			conn.Close()
			return fmt.Errorf("redis: SELECT failed: %w", err)
		}
	}

	// Clear the handshake deadline; commands set per-call deadlines
	if err := conn.SetDeadline(time.Time{}); err != nil {
		conn.Close()
		return err
	}

	s.conn = conn
	s.reader = reader
	return nil
}

func (s *RedisStore) dropLocked() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn = nil
	s.reader = nil
}

func expectOK(conn net.Conn, reader *bufio.Reader, args []string) error {
	if err := encodeCommand(conn, args); err != nil {
		return err
	}
	reply, err := decodeReply(reader)
	if err != nil {
		return err
	}
	if status, ok := reply.(string); !ok || !strings.EqualFold(status, "OK") {
		return fmt.Errorf("unexpected reply %v", reply)
	}
	return nil
}

func commandDeadline(ctx context.Context, fallback time.Duration) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Now().Add(fallback)
}

func millis(duration time.Duration) string {
	if duration <= 0 {
		return "0"
	}
	return strconv.FormatInt(duration.Milliseconds(), 10)
}
