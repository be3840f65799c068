package config

import "time"

type AuthConfig struct {
	Secret    string `mapstructure:"secret" validate:"required,min=32"`
	ExpiryMin int    `mapstructure:"expiry_min" validate:"gte=1"`
}

type DBConfig struct {
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int32         `mapstructure:"max_open_conns"`
	MinIdleConns    int32         `mapstructure:"min_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	HealthTimeout   time.Duration `mapstructure:"health_timeout"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"required,email"`
}

// AMQPConfig is optional, an empty URL disables alert event publishing.
type AMQPConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

type WorkerConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval" validate:"gte=1s"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gte=1m"`
	RetentionDays   int           `mapstructure:"retention_days" validate:"gte=1"`
	Cooldown        time.Duration `mapstructure:"cooldown" validate:"gte=0"`
	ProbeTimeout    time.Duration `mapstructure:"probe_timeout" validate:"gte=1s"`
	Concurrency     int           `mapstructure:"concurrency" validate:"gte=1"`
	DBRetryAttempts int           `mapstructure:"db_retry_attempts" validate:"gte=1"`
	DBRetryDelay    time.Duration `mapstructure:"db_retry_delay" validate:"gte=0"`
	DisableCrons    bool          `mapstructure:"disable_crons"`
	ReportDir       string        `mapstructure:"report_dir"`
}

type Config struct {
	Env         string       `mapstructure:"env"`
	ServiceName string       `mapstructure:"service_name"`
	Port        int          `mapstructure:"port" validate:"gte=1024,lte=65535"`
	DB          DBConfig     `mapstructure:"db" validate:"required"`
	Redis       *RedisConfig `mapstructure:"redis"`
	Auth        *AuthConfig  `mapstructure:"auth" validate:"required"`
	SMTP        *SMTPConfig  `mapstructure:"smtp" validate:"required"`
	AMQP        *AMQPConfig  `mapstructure:"amqp"`
	Worker      WorkerConfig `mapstructure:"worker"`
}
