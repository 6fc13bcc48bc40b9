package backend

import (
	"fmt"
	"time"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/alerts"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/auth"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/backend.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

// Configuration of aquafarmd, as written in yaml.
//
// This type is marshalling value and mutable.
// Consider to use immutable version, `BackendConfig`.
type BackendConfigMarshall struct {
	Port        int32                      `yaml:"port"`
	Loglevel    string                     `yaml:"loglevel,omitempty"`
	Storage     *StorageConfigMarshall     `yaml:"storage"`
	Auth        *AuthConfigMarshall        `yaml:"auth"`
	RateLimit   *RateLimitConfigMarshall   `yaml:"rateLimit,omitempty"`
	Idempotency *IdempotencyConfigMarshall `yaml:"idempotency,omitempty"`
	Influx      *InfluxConfigMarshall      `yaml:"influx,omitempty"`
	Alerts      *ThresholdsConfigMarshall  `yaml:"alerts,omitempty"`
}

var _ Marshalled[*BackendConfig] = &BackendConfigMarshall{}

func (b *BackendConfigMarshall) trySeal(path string) *BackendConfig {
	loglevel := b.Loglevel
	if loglevel == "" {
		loglevel = "info"
	}

	rl := b.RateLimit
	if rl == nil {
		rl = &RateLimitConfigMarshall{}
	}
	idem := b.Idempotency
	if idem == nil {
		idem = &IdempotencyConfigMarshall{}
	}
	th := b.Alerts
	if th == nil {
		th = &ThresholdsConfigMarshall{}
	}

	var influx *InfluxConfig
	if b.Influx != nil {
		influx = b.Influx.trySeal(path + ".influx")
	}

	return &BackendConfig{
		port:        required(b.Port, path+".port"),
		loglevel:    loglevel,
		storage:     nonnil(b.Storage, path+".storage").trySeal(path + ".storage"),
		auth:        nonnil(b.Auth, path+".auth").trySeal(path + ".auth"),
		rateLimit:   rl.trySeal(path + ".rateLimit"),
		idempotency: idem.trySeal(path + ".idempotency"),
		influx:      influx,
		alerts:      th.trySeal(path + ".alerts"),
	}
}

type StorageConfigMarshall struct {
	Driver   string `yaml:"driver"`
	URL      string `yaml:"url,omitempty"`
	Role     string `yaml:"role,omitempty"`
	MaxConns int32  `yaml:"maxConns,omitempty"`
}

func (s *StorageConfigMarshall) trySeal(path string) *StorageConfig {
	switch d := StorageDriver(s.Driver); d {
	case StorageMemory:
		return &StorageConfig{driver: d}
	case StoragePostgres, "":
		role := s.Role
		if role == "" {
			role = "aquafarm_app"
		}
		maxConns := s.MaxConns
		if maxConns <= 0 {
			maxConns = 10
		}
		return &StorageConfig{
			driver:   StoragePostgres,
			url:      required(s.URL, path+".url"),
			role:     role,
			maxConns: maxConns,
		}
	default:
		panic(fmt.Errorf("%s.driver should be one of postgres or memory: %q", path, s.Driver))
	}
}

type AuthConfigMarshall struct {
	Required bool                 `yaml:"required"`
	Keys     []*KeyConfigMarshall `yaml:"keys"`
}

func (a *AuthConfigMarshall) trySeal(path string) *AuthConfig {
	keys := map[string]auth.Key{}
	for i, k := range a.Keys {
		p := fmt.Sprintf("%s.keys[%d]", path, i)
		kid, key := nonnil(k, p).trySeal(p)
		if _, ok := keys[kid]; ok {
			panic(fmt.Errorf("%s.kid is duplicated: %s", p, kid))
		}
		keys[kid] = key
	}
	if a.Required && len(keys) == 0 {
		panic(path + ".keys is required when " + path + ".required is true")
	}
	return &AuthConfig{required: a.Required, keys: keys}
}

type KeyConfigMarshall struct {
	Kid    string `yaml:"kid"`
	Secret string `yaml:"secret"`

	// RFC3339 timestamp. Optional.
	NotAfter string `yaml:"notAfter,omitempty"`
}

func (k *KeyConfigMarshall) trySeal(path string) (string, auth.Key) {
	key := auth.Key{Secret: []byte(required(k.Secret, path+".secret"))}
	if k.NotAfter != "" {
		na, err := time.Parse(time.RFC3339, k.NotAfter)
		if err != nil {
			panic(fmt.Errorf("%s.notAfter can not be parsed: %w", path, err))
		}
		key.NotAfter = na
	}
	return required(k.Kid, path+".kid"), key
}

type RateLimitConfigMarshall struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst,omitempty"`
}

func (r *RateLimitConfigMarshall) trySeal(path string) *RateLimitConfig {
	if r.RPS < 0 {
		panic(path + ".rps should not be negative")
	}
	burst := r.Burst
	if burst <= 0 {
		burst = int(r.RPS) * 2
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitConfig{rps: r.RPS, burst: burst}
}

type IdempotencyConfigMarshall struct {
	Driver string               `yaml:"driver,omitempty"`
	TTL    string               `yaml:"ttl,omitempty"`
	Redis  *RedisConfigMarshall `yaml:"redis,omitempty"`
}

func (i *IdempotencyConfigMarshall) trySeal(path string) *IdempotencyConfig {
	ttl := 24 * time.Hour
	if i.TTL != "" {
		d, err := time.ParseDuration(i.TTL)
		if err != nil {
			panic(fmt.Errorf("%s.ttl can not be parsed: %w", path, err))
		}
		ttl = d
	}

	switch d := IdempotencyDriver(i.Driver); d {
	case IdempotencyMemory, "":
		return &IdempotencyConfig{driver: IdempotencyMemory, ttl: ttl}
	case IdempotencyNone:
		return &IdempotencyConfig{driver: d, ttl: ttl}
	case IdempotencyRedis:
		return &IdempotencyConfig{
			driver: d,
			ttl:    ttl,
			redis:  nonnil(i.Redis, path+".redis").trySeal(path + ".redis"),
		}
	default:
		panic(fmt.Errorf("%s.driver should be one of memory, redis or none: %q", path, i.Driver))
	}
}

type RedisConfigMarshall struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

func (r *RedisConfigMarshall) trySeal(path string) *RedisConfig {
	return &RedisConfig{addr: required(r.Addr, path+".addr"), password: r.Password, db: r.DB}
}

type InfluxConfigMarshall struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

func (i *InfluxConfigMarshall) trySeal(path string) *InfluxConfig {
	return &InfluxConfig{
		url:    required(i.URL, path+".url"),
		token:  required(i.Token, path+".token"),
		org:    required(i.Org, path+".org"),
		bucket: required(i.Bucket, path+".bucket"),
	}
}

type RangeConfigMarshall struct {
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`
}

// ThresholdsConfigMarshall overrides default alert thresholds per parameter.
type ThresholdsConfigMarshall struct {
	PH              *RangeConfigMarshall `yaml:"ph,omitempty"`
	DissolvedOxygen *RangeConfigMarshall `yaml:"dissolvedOxygen,omitempty"`
	Temperature     *RangeConfigMarshall `yaml:"temperature,omitempty"`
}

func (t *ThresholdsConfigMarshall) trySeal(path string) alerts.Thresholds {
	th := alerts.Default()
	override := func(dst *alerts.Range, src *RangeConfigMarshall, p string) {
		if src == nil {
			return
		}
		if src.Min != nil && src.Max != nil && *src.Max < *src.Min {
			panic(p + ".max should not be less than min")
		}
		*dst = alerts.Range{Min: src.Min, Max: src.Max}
	}
	override(&th.PH, t.PH, path+".ph")
	override(&th.DissolvedOxygen, t.DissolvedOxygen, path+".dissolvedOxygen")
	override(&th.Temperature, t.Temperature, path+".temperature")
	return th
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}
