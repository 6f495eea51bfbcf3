package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"subito_scrooper/models"
)

const (
	DefaultBaseURL  = "https://www.subito.it/annunci-sardegna/vendita/appartamenti/nuove-costruzioni"
	DefaultPages    = 5
	DefaultSitePath = "config/sites/subito.yaml"
)

type Config struct {
	Scheduler   SchedulerConfig
	Scraper     ScraperConfig
	Proxy       ProxyConfig
	Generator   GeneratorConfig
	Search      SearchConfig
	S3          S3Config
	DBPath      string
	DatabaseURL string
	LogLevel    string
	LogFile     string
	HTTPAddr    string
	Site        *SiteConfig
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type ScraperConfig struct {
	Fetcher string // "http" or "browser"
	Timeout time.Duration
	Retries int
	DelayMS int
}

type ProxyConfig struct {
	URL string
}

type GeneratorConfig struct {
	Service string
	Model   string
	Token   string
	URL     string
	Timeout time.Duration
	Kwargs  map[string]any
}

type SearchConfig struct {
	MaxRevisions int
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type SiteConfig struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	BaseURL     string        `yaml:"base_url"`
	Pages       int           `yaml:"pages"`
	Table       string        `yaml:"table"`
	CreateTable bool          `yaml:"create_table"`
	UserAgent   string        `yaml:"user_agent"`
	Schema      models.Schema `yaml:"schema"`
}

// URLs lists the search pages to index: the base URL plus one "?o=N"
// page per configured offset.
func (s *SiteConfig) URLs() []string {
	base := strings.TrimSuffix(s.BaseURL, "/")
	urls := make([]string, 0, s.Pages)
	for i := 0; i < s.Pages; i++ {
		urls = append(urls, fmt.Sprintf("%s/?o=%d", base, i))
	}
	return urls
}

func DefaultSite() *SiteConfig {
	return &SiteConfig{
		ID:          "subito",
		Name:        "Subito.it",
		BaseURL:     DefaultBaseURL,
		Pages:       DefaultPages,
		Table:       models.RealEstateTable,
		CreateTable: true,
		Schema:      models.RealEstateSchema,
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Scheduler: SchedulerConfig{
			Cron:     os.Getenv("SCRAPE_CRON"),
			Interval: getEnvDuration("SCRAPE_INTERVAL", 0),
		},
		Scraper: ScraperConfig{
			Fetcher: getEnv("FETCHER", "http"),
			Timeout: getEnvDuration("SCRAPE_TIMEOUT", 30*time.Second),
			Retries: getEnvInt("SCRAPE_RETRIES", 3),
			DelayMS: getEnvInt("SCRAPE_DELAY_MS", 500),
		},
		Proxy: ProxyConfig{
			URL: os.Getenv("PROXY_URL"),
		},
		Generator: GeneratorConfig{
			Service: getEnv("GENERATOR_SERVICE", "ollama"),
			Model:   os.Getenv("GENERATOR_MODEL"),
			Token:   os.Getenv("GENERATOR_TOKEN"),
			URL:     os.Getenv("GENERATOR_URL"),
			Timeout: getEnvDuration("GENERATOR_TIMEOUT", 60*time.Second),
		},
		Search: SearchConfig{
			MaxRevisions: getEnvInt("SQL_MAX_REVISIONS", 0),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		DBPath:      getEnv("DB_PATH", "subito.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", "daemon.log"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8000"),
	}

	if raw := os.Getenv("GENERATION_KWARGS"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.Generator.Kwargs); err != nil {
			return nil, fmt.Errorf("parse GENERATION_KWARGS: %w", err)
		}
	}

	site, err := LoadSite(getEnv("SITE_CONFIG", DefaultSitePath))
	if err != nil {
		return nil, err
	}
	cfg.Site = site

	return cfg, nil
}

// LoadSite reads a site file over DefaultSite: keys the file leaves out
// keep their default. A missing file yields the defaults.
func LoadSite(path string) (*SiteConfig, error) {
	site := DefaultSite()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return site, nil
		}
		return nil, fmt.Errorf("read site config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, site); err != nil {
		return nil, fmt.Errorf("parse site config %s: %w", path, err)
	}
	if site.Pages <= 0 {
		site.Pages = DefaultPages
	}
	if len(site.Schema) == 0 {
		site.Schema = models.RealEstateSchema
	}

	return site, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
