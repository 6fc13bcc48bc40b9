package backend

import (
	"time"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/alerts"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/auth"
)

type StorageDriver string

const (
	StoragePostgres StorageDriver = "postgres"
	StorageMemory   StorageDriver = "memory"
)

type IdempotencyDriver string

const (
	IdempotencyMemory IdempotencyDriver = "memory"
	IdempotencyRedis  IdempotencyDriver = "redis"
	IdempotencyNone   IdempotencyDriver = "none"
)

// Configuration of aquafarmd.
//
// To get a `BackendConfig` instance, use `Unmarshal` or `LoadBackendConfig`.
type BackendConfig struct {
	port        int32
	loglevel    string
	storage     *StorageConfig
	auth        *AuthConfig
	rateLimit   *RateLimitConfig
	idempotency *IdempotencyConfig
	influx      *InfluxConfig
	alerts      alerts.Thresholds
}

func (c *BackendConfig) Port() int32 {
	return c.port
}

// Loglevel of the server: debug, info, warn, error or off.
func (c *BackendConfig) Loglevel() string {
	return c.loglevel
}

func (c *BackendConfig) Storage() *StorageConfig {
	return c.storage
}

func (c *BackendConfig) Auth() *AuthConfig {
	return c.auth
}

func (c *BackendConfig) RateLimit() *RateLimitConfig {
	return c.rateLimit
}

func (c *BackendConfig) Idempotency() *IdempotencyConfig {
	return c.idempotency
}

// Influx returns nil when mirroring is disabled.
func (c *BackendConfig) Influx() *InfluxConfig {
	return c.influx
}

func (c *BackendConfig) Alerts() alerts.Thresholds {
	return c.alerts
}

type StorageConfig struct {
	driver   StorageDriver
	url      string
	role     string
	maxConns int32
}

func (s *StorageConfig) Driver() StorageDriver {
	return s.driver
}

// Connection string for postgres. Empty for the memory driver.
func (s *StorageConfig) URL() string {
	return s.url
}

// Role which connections switch to. Row level security applies to this role.
func (s *StorageConfig) Role() string {
	return s.role
}

func (s *StorageConfig) MaxConns() int32 {
	return s.maxConns
}

type AuthConfig struct {
	required bool
	keys     map[string]auth.Key
}

// Required tells whether requests without bearer token are refused.
func (a *AuthConfig) Required() bool {
	return a.required
}

func (a *AuthConfig) Keyring() *auth.Keyring {
	return auth.NewKeyring(a.keys)
}

type RateLimitConfig struct {
	rps   float64
	burst int
}

// RPS is requests per second per tenant. 0 disables the limit.
func (r *RateLimitConfig) RPS() float64 {
	return r.rps
}

func (r *RateLimitConfig) Burst() int {
	return r.burst
}

type IdempotencyConfig struct {
	driver IdempotencyDriver
	ttl    time.Duration
	redis  *RedisConfig
}

func (i *IdempotencyConfig) Driver() IdempotencyDriver {
	return i.driver
}

func (i *IdempotencyConfig) TTL() time.Duration {
	return i.ttl
}

// Redis is nil unless the driver is redis.
func (i *IdempotencyConfig) Redis() *RedisConfig {
	return i.redis
}

type RedisConfig struct {
	addr     string
	password string
	db       int
}

func (r *RedisConfig) Addr() string {
	return r.addr
}

func (r *RedisConfig) Password() string {
	return r.password
}

func (r *RedisConfig) DB() int {
	return r.db
}

type InfluxConfig struct {
	url    string
	token  string
	org    string
	bucket string
}

func (i *InfluxConfig) URL() string {
	return i.url
}

func (i *InfluxConfig) Token() string {
	return i.token
}

func (i *InfluxConfig) Org() string {
	return i.org
}

func (i *InfluxConfig) Bucket() string {
	return i.bucket
}
