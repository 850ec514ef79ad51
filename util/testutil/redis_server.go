package testutil

import (
	"time"

	"github.com/alicebob/miniredis/v2"
)

// RedisServer is an in-process Redis for tests of the outcome journal.
type RedisServer struct {
	server *miniredis.Miniredis
}

func NewRedisServer() *RedisServer {
	server, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	return &RedisServer{
		server: server,
	}
}

func (s *RedisServer) Addr() string {
	return s.server.Addr()
}

// Keys returns all keys currently stored.
func (s *RedisServer) Keys() []string {
	return s.server.Keys()
}

// Expire moves the server's clock forward by d, expiring keys whose
// TTL runs out.
func (s *RedisServer) Expire(d time.Duration) {
	s.server.FastForward(d)
}

func (s *RedisServer) Close() {
	s.server.Close()
}
