// Package agent holds profiles of the field agent, aquasync.
package agent

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils/safefile"
)

var ErrProfileStoreNotFound = errors.New("profile file is not found")
var ErrProfileNotFound = errors.New("profile is not found")
var ErrProfileInvalid = errors.New("aquasync profile is invalid")

// ProfileStore is a map from profile name to Profile.
type ProfileStore map[string]*Profile

type Cert struct {
	// base64 encoded CA certificate
	CA string `yaml:"ca,omitempty"`
}

type QueueDriver string

const (
	QueueSQLite QueueDriver = "sqlite"
	QueueFile   QueueDriver = "file"
	QueueMemory QueueDriver = "memory"
)

type Queue struct {
	// Driver of the durable queue. Default: sqlite.
	Driver QueueDriver `yaml:"driver,omitempty"`

	// Path of the queue database or file.
	Path string `yaml:"path,omitempty"`
}

type Sync struct {
	// BatchSize caps items sent in a pass. Default: 50.
	BatchSize int `yaml:"batchSize,omitempty"`

	// Interval between polls while the queue is idle. Default: 30s.
	Interval string `yaml:"interval,omitempty"`

	// Timeout of a send of an item. Default: 10s.
	Timeout string `yaml:"timeout,omitempty"`

	// MaxBackoff caps the delay after failed passes. Default: 5m.
	MaxBackoff string `yaml:"maxBackoff,omitempty"`
}

type MQTT struct {
	Broker   string `yaml:"broker"`
	ClientId string `yaml:"clientId,omitempty"`

	// Topic filter. Default: aquafarm/+/ponds/+/water
	Topic    string `yaml:"topic,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Profile is a profile of the agent for one backend and tenant.
type Profile struct {
	// endpoint of aquafarmd
	ApiRoot string `yaml:"apiRoot"`

	TenantId string `yaml:"tenantId"`

	// bearer token sent to aquafarmd. Optional.
	Token string `yaml:"token,omitempty"`

	Cert Cert `yaml:"cert"`

	Queue Queue `yaml:"queue"`

	Sync Sync `yaml:"sync"`

	// MQTT is nil when sensor ingest is disabled.
	MQTT *MQTT `yaml:"mqtt,omitempty"`

	// Metrics is an address to serve metrics on, like ":9464". Empty disables.
	Metrics string `yaml:"metrics,omitempty"`
}

func verifyUrl(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

func verifyPEM(b64cert string) bool {
	bin, err := base64.StdEncoding.DecodeString(b64cert)
	if err != nil {
		return false
	}
	blk, _ := pem.Decode(bin)
	return blk != nil
}

func verifyDuration(name, s string) error {
	if s == "" {
		return nil
	}
	if d, err := time.ParseDuration(s); err != nil || d <= 0 {
		return fmt.Errorf("%w: %s is not a positive duration: %q", ErrProfileInvalid, name, s)
	}
	return nil
}

// Verify Profile
//
// # Return
//
// nil if it is valid. Otherwise, ErrProfileInvalid error.
func (p *Profile) Verify() error {
	if !verifyUrl(p.ApiRoot) {
		return fmt.Errorf("%w: apiRoot is not URL: %s", ErrProfileInvalid, p.ApiRoot)
	}
	if _, err := tenant.Parse(p.TenantId); err != nil {
		return fmt.Errorf("%w: tenantId: %w", ErrProfileInvalid, err)
	}
	if p.Cert.CA != "" && !verifyPEM(p.Cert.CA) {
		return fmt.Errorf("%w: cert.ca is not PEM", ErrProfileInvalid)
	}
	switch p.Queue.Driver {
	case "", QueueSQLite, QueueFile:
		if p.Queue.Path == "" {
			return fmt.Errorf("%w: queue.path is required for %s queue", ErrProfileInvalid, p.QueueDriver())
		}
	case QueueMemory:
	default:
		return fmt.Errorf("%w: queue.driver is unknown: %s", ErrProfileInvalid, p.Queue.Driver)
	}
	if p.Sync.BatchSize < 0 {
		return fmt.Errorf("%w: sync.batchSize should not be negative", ErrProfileInvalid)
	}
	for name, d := range map[string]string{
		"sync.interval": p.Sync.Interval, "sync.timeout": p.Sync.Timeout, "sync.maxBackoff": p.Sync.MaxBackoff,
	} {
		if err := verifyDuration(name, d); err != nil {
			return err
		}
	}
	if p.MQTT != nil && !verifyUrl(p.MQTT.Broker) {
		return fmt.Errorf("%w: mqtt.broker is not URL: %s", ErrProfileInvalid, p.MQTT.Broker)
	}
	return nil
}

func (p *Profile) Tenant() tenant.Id {
	id, _ := tenant.Parse(p.TenantId)
	return id
}

func (p *Profile) QueueDriver() QueueDriver {
	if p.Queue.Driver == "" {
		return QueueSQLite
	}
	return p.Queue.Driver
}

func duration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && 0 < d {
		return d
	}
	return def
}

func (p *Profile) BatchSize() int {
	if p.Sync.BatchSize <= 0 {
		return 50
	}
	return p.Sync.BatchSize
}

func (p *Profile) Interval() time.Duration {
	return duration(p.Sync.Interval, 30*time.Second)
}

func (p *Profile) Timeout() time.Duration {
	return duration(p.Sync.Timeout, 10*time.Second)
}

func (p *Profile) MaxBackoff() time.Duration {
	return duration(p.Sync.MaxBackoff, 5*time.Minute)
}

func (p *Profile) MQTTTopic() string {
	if p.MQTT == nil || p.MQTT.Topic == "" {
		return "aquafarm/+/ponds/+/water"
	}
	return p.MQTT.Topic
}

// CertPool returns a pool with the CA of the profile, or nil when the profile has no CA.
func (p *Profile) CertPool() (*x509.CertPool, error) {
	if p.Cert.CA == "" {
		return nil, nil
	}
	bin, err := base64.StdEncoding.DecodeString(p.Cert.CA)
	if err != nil {
		return nil, fmt.Errorf("%w: cert.ca: %w", ErrProfileInvalid, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(bin) {
		return nil, fmt.Errorf("%w: cert.ca has no certificate", ErrProfileInvalid)
	}
	return pool, nil
}

// LoadProfileStore loads profile store from file.
func LoadProfileStore(filepath string) (ProfileStore, error) {
	buf, err := os.ReadFile(filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrProfileStoreNotFound, filepath)
		}
		return nil, err
	}
	return Unmarshall(buf)
}

// Unmarshall profile store from yaml in byte array.
func Unmarshall(buf []byte) (ProfileStore, error) {
	ret := map[string]*Profile{}
	err := yaml.Unmarshal(buf, &ret)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Get returns a verified profile.
func (ps ProfileStore) Get(name string) (*Profile, error) {
	p, ok := ps[name]
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	if err := p.Verify(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", name, err)
	}
	return p, nil
}

// Save profile store to file, accessible only by the current user.
func (ps ProfileStore) Save(path string) error {
	buf, err := yaml.Marshal(ps)
	if err != nil {
		return err
	}
	return safefile.Replace(path, func(w io.Writer) error {
		_, err := w.Write(buf)
		return err
	})
}
