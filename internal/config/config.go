package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-simpler.org/env"
)

type ServerConfig struct {
	Port string
	// NodeID identifies this gateway instance in the connection registry.
	NodeID string
	// PublicEndpoint is the base URL other instances use to push to sockets owned by this node.
	PublicEndpoint string
}

type LoggingConfig struct {
	Level     string
	Format    string
	Directory string
}

type RedisConfig struct {
	URL            string
	ConnectionsKey string
	// NodesPrefix namespaces the per-node heartbeat keys.
	NodesPrefix string
	NodeTTL     time.Duration
}

type DatabaseConfig struct {
	URL     string
	Migrate bool
}

type KafkaConfig struct {
	Brokers        []string
	GroupID        string
	IncidentsTopic string
}

type SecurityConfig struct {
	JWTSecret    string
	JWTPublicKey string
	StaffRoles   []string
	// InternalToken is the shared secret for the /@connections management API.
	InternalToken string
}

type BroadcastConfig struct {
	// MaxConcurrency bounds the number of in-flight sends per broadcast; zero means unbounded.
	MaxConcurrency int
	SendTimeout    time.Duration
	HTTPTimeout    time.Duration
}

type IncidentsConfig struct {
	StrictTransitions bool
	CreateRatePerSec  float64
	CreateRateBurst   int
}

type MailConfig struct {
	SMTPAddr      string
	SMTPUsername  string
	SMTPPassword  string
	FromEmail     string
	SecurityEmail string
}

type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Kafka     KafkaConfig
	Security  SecurityConfig
	Broadcast BroadcastConfig
	Incidents IncidentsConfig
	Mail      MailConfig
}

type vars struct {
	Port           string `env:"PORT" default:"8080"`
	NodeID         string `env:"NODE_ID"`
	PublicEndpoint string `env:"PUBLIC_ENDPOINT"`

	LogLevel     string `env:"LOG_LEVEL" default:"info"`
	LogFormat    string `env:"LOG_FORMAT" default:"text"`
	LogDirectory string `env:"LOG_DIRECTORY" default:"./logs"`

	RedisURL            string        `env:"REDIS_URL"`
	RedisConnectionsKey string        `env:"REDIS_CONNECTIONS_KEY" default:"ws:connections"`
	RedisNodesPrefix    string        `env:"REDIS_NODES_PREFIX" default:"ws:nodes:"`
	NodeTTL             time.Duration `env:"NODE_TTL" default:"30s"`

	DatabaseURL     string `env:"DATABASE_URL"`
	DatabaseMigrate bool   `env:"DATABASE_MIGRATE" default:"true"`

	KafkaBrokers        string `env:"KAFKA_BROKERS"`
	KafkaBroker         string `env:"KAFKA_BROKER"`
	KafkaGroupID        string `env:"KAFKA_GROUP_ID" default:"alerta-utec"`
	KafkaIncidentsTopic string `env:"KAFKA_INCIDENTS_TOPIC" default:"incidentes.created"`

	JWTSecret        string `env:"JWT_SECRET"`
	JWTPublicKey     string `env:"JWT_PUBLIC_KEY"`
	StaffRoles       string `env:"STAFF_ROLES" default:"admin,staff"`
	InternalAPIToken string `env:"INTERNAL_API_TOKEN"`

	BroadcastMaxConcurrency int           `env:"BROADCAST_MAX_CONCURRENCY" default:"0"`
	BroadcastSendTimeout    time.Duration `env:"BROADCAST_SEND_TIMEOUT" default:"5s"`
	DeliveryHTTPTimeout     time.Duration `env:"DELIVERY_HTTP_TIMEOUT" default:"3s"`

	StrictTransitions   bool    `env:"STRICT_TRANSITIONS" default:"false"`
	CreateRatePerSecond float64 `env:"CREATE_RATE_PER_SECOND" default:"2"`
	CreateRateBurst     int     `env:"CREATE_RATE_BURST" default:"5"`

	SMTPAddr      string `env:"SMTP_ADDR"`
	SMTPUsername  string `env:"SMTP_USERNAME"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
	FromEmail     string `env:"SES_FROM_EMAIL" default:"alertautec@example.com"`
	SecurityEmail string `env:"SECURITY_EMAIL" default:"seguridad@utec.edu.pe"`
}

// Load reads the process environment for the gateway. .env files are handled by the caller.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadNotifier reads the environment for the e-mail worker, which needs Kafka but no Redis.
func LoadNotifier() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if strings.TrimSpace(cfg.Kafka.IncidentsTopic) == "" {
		return nil, errors.New("KAFKA_INCIDENTS_TOPIC must not be empty")
	}
	return cfg, nil
}

func load() (*Config, error) {
	var v vars
	if err := env.Load(&v, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	return fromVars(v), nil
}

func fromVars(v vars) *Config {
	brokers := splitList(v.KafkaBrokers)
	if len(brokers) == 0 {
		brokers = splitList(v.KafkaBroker)
	}
	publicEndpoint := strings.TrimRight(strings.TrimSpace(v.PublicEndpoint), "/")
	if publicEndpoint == "" {
		publicEndpoint = "http://localhost:" + v.Port
	}
	nodeID := strings.TrimSpace(v.NodeID)
	if nodeID == "" {
		nodeID = publicEndpoint
	}
	return &Config{
		Server: ServerConfig{
			Port:           v.Port,
			NodeID:         nodeID,
			PublicEndpoint: publicEndpoint,
		},
		Logging: LoggingConfig{
			Level:     v.LogLevel,
			Format:    v.LogFormat,
			Directory: v.LogDirectory,
		},
		Redis: RedisConfig{
			URL:            strings.TrimSpace(v.RedisURL),
			ConnectionsKey: v.RedisConnectionsKey,
			NodesPrefix:    v.RedisNodesPrefix,
			NodeTTL:        v.NodeTTL,
		},
		Database: DatabaseConfig{
			URL:     strings.TrimSpace(v.DatabaseURL),
			Migrate: v.DatabaseMigrate,
		},
		Kafka: KafkaConfig{
			Brokers:        brokers,
			GroupID:        v.KafkaGroupID,
			IncidentsTopic: v.KafkaIncidentsTopic,
		},
		Security: SecurityConfig{
			JWTSecret:     v.JWTSecret,
			JWTPublicKey:  v.JWTPublicKey,
			StaffRoles:    splitList(v.StaffRoles),
			InternalToken: strings.TrimSpace(v.InternalAPIToken),
		},
		Broadcast: BroadcastConfig{
			MaxConcurrency: v.BroadcastMaxConcurrency,
			SendTimeout:    v.BroadcastSendTimeout,
			HTTPTimeout:    v.DeliveryHTTPTimeout,
		},
		Incidents: IncidentsConfig{
			StrictTransitions: v.StrictTransitions,
			CreateRatePerSec:  v.CreateRatePerSecond,
			CreateRateBurst:   v.CreateRateBurst,
		},
		Mail: MailConfig{
			SMTPAddr:      strings.TrimSpace(v.SMTPAddr),
			SMTPUsername:  v.SMTPUsername,
			SMTPPassword:  v.SMTPPassword,
			FromEmail:     v.FromEmail,
			SecurityEmail: v.SecurityEmail,
		},
	}
}

// Validate checks the settings every binary relies on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("PORT is required")
	}
	if c.Redis.URL == "" {
		return errors.New("REDIS_URL is required")
	}
	if strings.TrimSpace(c.Redis.ConnectionsKey) == "" {
		return errors.New("REDIS_CONNECTIONS_KEY must not be empty")
	}
	if c.Redis.NodeTTL < 3*time.Second {
		return fmt.Errorf("NODE_TTL must be at least 3s, got %s", c.Redis.NodeTTL)
	}
	if c.Broadcast.MaxConcurrency < 0 {
		return fmt.Errorf("BROADCAST_MAX_CONCURRENCY must be >= 0, got %d", c.Broadcast.MaxConcurrency)
	}
	if c.Broadcast.HTTPTimeout <= 0 {
		return errors.New("DELIVERY_HTTP_TIMEOUT must be positive")
	}
	if c.Incidents.CreateRatePerSec <= 0 || c.Incidents.CreateRateBurst <= 0 {
		return errors.New("CREATE_RATE_PER_SECOND and CREATE_RATE_BURST must be positive")
	}
	return nil
}

// AuthEnabled reports whether staff-only endpoints require a token.
func (c *Config) AuthEnabled() bool {
	return strings.TrimSpace(c.Security.JWTSecret) != "" || strings.TrimSpace(c.Security.JWTPublicKey) != ""
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
