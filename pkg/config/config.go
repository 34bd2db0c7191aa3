package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/artem13815/shortlist/pkg/scoring"
)

type HTTPConfig struct {
	Port           string `env:"PORT"             envDefault:"8080"`
	UploadDir      string `env:"UPLOAD_DIR"       envDefault:"uploads"`
	MaxFileSizeMB  int    `env:"MAX_FILE_SIZE_MB" envDefault:"10"`
	MaxFilesPerJob int    `env:"MAX_FILES_PER_JOB" envDefault:"100"`
}

type DatabaseConfig struct {
	URL string `env:"URL"`
}

type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB"        envDefault:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"24h"`
}

type AMQPConfig struct {
	URL   string `env:"URL"`
	Queue string `env:"QUEUE" envDefault:"shortlist.jobs"`
}

// LLMConfig selects the reasoning service used by the reranker.
type LLMConfig struct {
	Provider    string        `env:"PROVIDER"    envDefault:"openai"`
	APIKey      string        `env:"API_KEY"`
	BaseURL     string        `env:"BASE_URL"    envDefault:"https://api.groq.com/openai/v1"`
	Model       string        `env:"MODEL"       envDefault:"mixtral-8x7b-32768"`
	Temperature float32       `env:"TEMPERATURE" envDefault:"0.1"`
	MaxTokens   int           `env:"MAX_TOKENS"  envDefault:"2000"`
	Timeout     time.Duration `env:"TIMEOUT"     envDefault:"30s"`
}

type EmbeddingConfig struct {
	Provider  string `env:"PROVIDER"  envDefault:"hashing"`
	Dimension int    `env:"DIMENSION" envDefault:"384"`
	APIKey    string `env:"API_KEY"`
	Model     string `env:"MODEL"     envDefault:"text-embedding-004"`
}

// ScoringConfig holds fusion weights, classification thresholds and accounting constants.
type ScoringConfig struct {
	SkillsWeight       float64  `env:"SKILLS_WEIGHT"       envDefault:"0.6"`
	ExperienceWeight   float64  `env:"EXPERIENCE_WEIGHT"   envDefault:"0.3"`
	EducationWeight    float64  `env:"EDUCATION_WEIGHT"    envDefault:"0.1"`
	ShortlistThreshold float64  `env:"SHORTLIST_THRESHOLD" envDefault:"85"`
	RejectThreshold    float64  `env:"REJECT_THRESHOLD"    envDefault:"50"`
	RerankTopK         int      `env:"RERANK_TOP_K"        envDefault:"20"`
	CostPer1KTokens    float64  `env:"COST_PER_1K_TOKENS"  envDefault:"0.002"`
	ProfilePath        string   `env:"PROFILE"`
	ExtraSkills        []string `env:"EXTRA_SKILLS"        envSeparator:","`
}

type WorkerConfig struct {
	Concurrency int    `env:"CONCURRENCY" envDefault:"4"`
	GRPCAddr    string `env:"GRPC_ADDR"   envDefault:":9090"`
}

type JWTConfig struct {
	Secret     string `env:"SECRET"      envDefault:"dev-secret-change"`
	Issuer     string `env:"ISSUER"      envDefault:"shortlist"`
	TTLMinutes int    `env:"TTL_MINUTES" envDefault:"60"`
}

type Config struct {
	HTTP      HTTPConfig
	Database  DatabaseConfig  `envPrefix:"DATABASE_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	AMQP      AMQPConfig      `envPrefix:"AMQP_"`
	LLM       LLMConfig       `envPrefix:"LLM_"`
	Embedding EmbeddingConfig `envPrefix:"EMBEDDING_"`
	Scoring   ScoringConfig   `envPrefix:"SCORING_"`
	Worker    WorkerConfig    `envPrefix:"WORKER_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
}

// Load reads environment variables, optionally from .env files if present.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()

	if cfg.Scoring.ProfilePath != "" {
		p, err := LoadProfile(cfg.Scoring.ProfilePath)
		if err != nil {
			return cfg, err
		}
		p.Apply(&cfg.Scoring)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Sanitize trims string values and replaces out-of-range numbers with defaults.
func (c *Config) Sanitize() {
	c.HTTP.Port = strings.TrimSpace(c.HTTP.Port)
	c.Database.URL = strings.TrimSpace(c.Database.URL)
	c.Redis.Addr = strings.TrimSpace(c.Redis.Addr)
	c.AMQP.URL = strings.TrimSpace(c.AMQP.URL)
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	c.Embedding.Provider = strings.ToLower(strings.TrimSpace(c.Embedding.Provider))
	c.Scoring.ProfilePath = strings.TrimSpace(c.Scoring.ProfilePath)

	if c.HTTP.MaxFileSizeMB <= 0 {
		c.HTTP.MaxFileSizeMB = 10
	}
	if c.HTTP.MaxFilesPerJob <= 0 {
		c.HTTP.MaxFilesPerJob = 100
	}
	if c.Scoring.RerankTopK <= 0 {
		c.Scoring.RerankTopK = 20
	}
	if c.Worker.Concurrency <= 0 {
		c.Worker.Concurrency = 1
	}
	if c.Embedding.Dimension <= 0 {
		c.Embedding.Dimension = 384
	}
	if c.LLM.Timeout <= 0 || c.LLM.Timeout > 30*time.Second {
		c.LLM.Timeout = 30 * time.Second
	}
}

// Validate rejects weight triples that do not sum to 1.0 within 0.01
// and a reject threshold above the shortlist threshold.
func (c Config) Validate() error {
	return c.Scoring.Validate()
}

func (s ScoringConfig) Validate() error {
	if err := s.Weights().Validate(); err != nil {
		return err
	}
	return s.Thresholds().Validate()
}

func (s ScoringConfig) Weights() scoring.Weights {
	return scoring.Weights{Skills: s.SkillsWeight, Experience: s.ExperienceWeight, Education: s.EducationWeight}
}

func (s ScoringConfig) Thresholds() scoring.Thresholds {
	return scoring.Thresholds{Shortlist: s.ShortlistThreshold, Reject: s.RejectThreshold}
}

func (c Config) MaxFileBytes() int64 {
	return int64(c.HTTP.MaxFileSizeMB) << 20
}
