package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Output key modes. Exactly one is active per deployment.
const (
	KeyModeUnchanged      = "unchanged"
	KeyModeStripExtension = "strip-extension"
	KeyModeStem           = "stem"
)

type Config struct {
	MediaConvert MediaConvertConfig
	Buckets      BucketConfig
	Filter       FilterConfig
	Credentials  CredentialsConfig
	Redis        RedisConfig
	Sentry       SentryConfig
	Server       ServerConfig

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
}

type MediaConvertConfig struct {
	Region      string `env:"MEDIA_CONVERT_EXECUTION_REGION" validate:"required"`
	Endpoint    string `env:"MEDIA_CONVERT_ENDPOINT" validate:"omitempty,url"`
	RoleARN     string `env:"MEDIA_CONVERT_EXECUTION_ROLE_ARN" validate:"required"`
	JobTemplate string `env:"MEDIA_CONVERT_JOB_TEMPLATE_NAME" validate:"required"`
	Queue       string `env:"MEDIA_CONVERT_QUEUE_ARN"`
}

type BucketConfig struct {
	Input         string `env:"INPUT_S3_BUCKET_NAME" validate:"required"`
	Output        string `env:"OUTPUT_S3_BUCKET_NAME" validate:"required"`
	OutputKeyMode string `env:"OUTPUT_KEY_MODE" envDefault:"strip-extension" validate:"oneof=unchanged strip-extension stem"`
}

type FilterConfig struct {
	Enabled      bool     `env:"MEDIA_TYPE_FILTER" envDefault:"true"`
	SniffContent bool     `env:"MEDIA_TYPE_SNIFF" envDefault:"false"`
	AllowList    []string `env:"MEDIA_TYPE_ALLOW_LIST" envSeparator:","` // empty means the default video list
}

// CredentialsConfig holds optional static credentials. When either value is
// missing the SDK default chain (the Lambda execution role) is used.
type CredentialsConfig struct {
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	SessionToken    string `env:"AWS_SESSION_TOKEN"`
}

func (c CredentialsConfig) Static() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

type RedisConfig struct {
	Nodes       []RedisNode   `env:"REDIS_NODES" envSeparator:","`
	Password    string        `env:"REDIS_PASSWORD"`
	DatabaseID  int           `env:"REDIS_DB" envDefault:"0"`
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"2s"`
	DedupeTTL   time.Duration `env:"DEDUPE_TTL" envDefault:"24h"`
	Namespace   string        `env:"DEDUPE_NAMESPACE" envDefault:"video-convert:records"`
}

func (c RedisConfig) Enabled() bool { return len(c.Nodes) > 0 }

// RedisNode is a host:port pair parsed from REDIS_NODES.
type RedisNode struct {
	Host string
	Port int
}

func (n RedisNode) Addr() string { return net.JoinHostPort(n.Host, strconv.Itoa(n.Port)) }

func (n *RedisNode) UnmarshalText(text []byte) error {
	host, port, err := net.SplitHostPort(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("redis node %q: expected host:port: %w", text, err)
	}
	if host == "" {
		return fmt.Errorf("redis node %q: missing host", text)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("redis node %q: invalid port %q", text, port)
	}
	n.Host, n.Port = host, p
	return nil
}

type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Release     string `env:"RELEASE" envDefault:"v1"`
}

// ServerConfig is only read by the local dev server.
type ServerConfig struct {
	Port         int           `env:"DEV_SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"DEV_SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"DEV_SERVER_WRITE_TIMEOUT" envDefault:"30s"`
}
