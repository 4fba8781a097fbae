package config

import (
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database     *dbConfig
	Service      *svcConfig
	Orchestrator *orchConfig
	Defaults     *defaultsConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"reelforge"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string `envconfig:"REELFORGE_ADDRESS" default:":3443"`
	MetricsAddress  string `envconfig:"REELFORGE_METRICS_ADDRESS" default:":8080"`
	BaseUrl         string `envconfig:"REELFORGE_BASE_URL" default:"https://localhost:3443"`
	LogLevel        string `envconfig:"REELFORGE_LOG_LEVEL" default:"info"`
	MigrationFolder string `envconfig:"REELFORGE_MIGRATIONS_FOLDER" default:""`
	ArtifactDir     string `envconfig:"REELFORGE_ARTIFACT_DIR" default:"/var/lib/reelforge/artifacts"`
	Kafka           kafkaConfig
}

type kafkaConfig struct {
	Brokers  []string `envconfig:"REELFORGE_KAFKA_BROKERS" default:""`
	Topic    string   `envconfig:"REELFORGE_KAFKA_TOPIC" default:""`
	ClientID string   `envconfig:"REELFORGE_KAFKA_CLIENT_ID" default:""`
}

type orchConfig struct {
	TickInterval       int `envconfig:"REELFORGE_TICK_INTERVAL_SECONDS" default:"5"`
	MaxConcurrentJobs  int `envconfig:"REELFORGE_MAX_CONCURRENT_JOBS" default:"4"`
	StageTimeoutSec    int `envconfig:"REELFORGE_STAGE_TIMEOUT_SECONDS" default:"600"`
	RetryCeiling       int `envconfig:"REELFORGE_RETRY_CEILING" default:"3"`
	LifetimeRetryLimit int `envconfig:"REELFORGE_LIFETIME_RETRY_LIMIT" default:"10"`
}

// defaultsConfig is the lowest-priority layer of configuration resolution:
// the system defaults consulted when neither job, niche nor account supplies
// a value.
type defaultsConfig struct {
	TopicProvider     string  `envconfig:"REELFORGE_DEFAULT_TOPIC_PROVIDER" default:"stub"`
	ScriptProvider    string  `envconfig:"REELFORGE_DEFAULT_SCRIPT_PROVIDER" default:"stub"`
	STTProvider       string  `envconfig:"REELFORGE_DEFAULT_STT_PROVIDER" default:"whisper"`
	LLMModel          string  `envconfig:"REELFORGE_DEFAULT_LLM_MODEL" default:"llama-3.3-70b"`
	LLMTemperature    float64 `envconfig:"REELFORGE_DEFAULT_LLM_TEMPERATURE" default:"0.7"`
	TTSProvider       string  `envconfig:"REELFORGE_DEFAULT_TTS_PROVIDER" default:"elevenlabs"`
	VoiceID           string  `envconfig:"REELFORGE_DEFAULT_VOICE_ID" default:"narrator"`
	WhisperModel      string  `envconfig:"REELFORGE_DEFAULT_WHISPER_MODEL" default:"base"`
	WhisperDevice     string  `envconfig:"REELFORGE_DEFAULT_WHISPER_DEVICE" default:"cpu"`
	VideoProvider     string  `envconfig:"REELFORGE_DEFAULT_VIDEO_PROVIDER" default:"compositor"`
	VideoModel        string  `envconfig:"REELFORGE_DEFAULT_VIDEO_MODEL" default:""`
	AspectRatio       string  `envconfig:"REELFORGE_DEFAULT_ASPECT_RATIO" default:"9:16"`
	TargetDurationSec int     `envconfig:"REELFORGE_DEFAULT_TARGET_DURATION" default:"45"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a fresh config populated from the environment and the
// envconfig defaults, bypassing the singleton. Used by tests, which override
// the database settings to point at sqlite.
func NewDefault() *Config {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		panic(err)
	}
	return cfg
}
