package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Crawl    CrawlConfig    `yaml:"crawl" mapstructure:"crawl"`
	Extract  ExtractConfig  `yaml:"extract" mapstructure:"extract"`
	Validate ValidateConfig `yaml:"validate" mapstructure:"validate"`
	Score    ScoreConfig    `yaml:"score" mapstructure:"score"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SearchConfig holds Google Custom Search credentials and settings.
type SearchConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	EngineID  string  `yaml:"engine_id" mapstructure:"engine_id"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// Configured reports whether both required search credentials are present.
func (s SearchConfig) Configured() bool {
	return s.Key != "" && s.EngineID != ""
}

// CrawlConfig configures the fetcher and crawl scheduler.
type CrawlConfig struct {
	TimeoutSecs   int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	DelayMs       int `yaml:"delay_ms" mapstructure:"delay_ms"`
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxBodyKB     int `yaml:"max_body_kb" mapstructure:"max_body_kb"`
}

// ExtractConfig configures contact extraction.
type ExtractConfig struct {
	EmailBlacklist []string `yaml:"email_blacklist" mapstructure:"email_blacklist"`
	ContactPaths   []string `yaml:"contact_paths" mapstructure:"contact_paths"`
}

// ValidateConfig configures email validation.
type ValidateConfig struct {
	DisposableDomains []string `yaml:"disposable_domains" mapstructure:"disposable_domains"`
}

// ScoreConfig configures lead scoring.
type ScoreConfig struct {
	WebmailDomains []string `yaml:"webmail_domains" mapstructure:"webmail_domains"`
}

// PipelineConfig configures the orchestrator.
type PipelineConfig struct {
	MaxResults       int      `yaml:"max_results" mapstructure:"max_results"`
	ContactPageLimit int      `yaml:"contact_page_limit" mapstructure:"contact_page_limit"`
	DirectoryHosts   []string `yaml:"directory_hosts" mapstructure:"directory_hosts"`
}

// StoreConfig configures the lead sink.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// defaultEmailBlacklist filters placeholder, infrastructure, and role
// addresses that regex extraction picks up but that are never real leads.
var defaultEmailBlacklist = []string{
	"example.com", "example.org", "yourdomain", "yoursite",
	"sentry.io", "wixpress.com", "sentry.wixpress.com", "godaddy.com",
	"schema.org", "w3.org",
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp",
	"noreply", "no-reply", "donotreply", "unsubscribe", "privacy@",
	"abuse@", "postmaster@",
}

// defaultDisposableDomains lists known throwaway inbox providers.
var defaultDisposableDomains = []string{
	"mailinator.com", "guerrillamail.com", "10minutemail.com",
	"tempmail.com", "temp-mail.org", "throwaway.email", "yopmail.com",
	"getnada.com", "maildrop.cc", "sharklasers.com", "trashmail.com",
	"fakeinbox.com", "dispostable.com", "mintemail.com",
}

// defaultDirectoryHosts are listing/aggregator sites that are never a
// business's own website.
var defaultDirectoryHosts = []string{
	"yelp.com", "facebook.com", "linkedin.com", "bbb.org",
	"yellowpages.com", "google.com", "instagram.com", "twitter.com",
	"angi.com", "houzz.com", "thumbtack.com", "tripadvisor.com",
	"mapquest.com", "foursquare.com", "nextdoor.com", "groupon.com",
}

// defaultWebmailDomains are consumer providers that lower lead quality.
var defaultWebmailDomains = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "aol.com",
	"icloud.com", "live.com", "msn.com",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. The credential keys get empty defaults so AutomaticEnv
	// can bind them during Unmarshal.
	v.SetDefault("search.key", "")
	v.SetDefault("search.engine_id", "")
	v.SetDefault("search.base_url", "https://www.googleapis.com")
	v.SetDefault("search.rate_limit", 5)
	v.SetDefault("crawl.timeout_secs", 10)
	v.SetDefault("crawl.delay_ms", 1000)
	v.SetDefault("crawl.max_concurrent", 5)
	v.SetDefault("crawl.max_body_kb", 512)
	v.SetDefault("extract.email_blacklist", defaultEmailBlacklist)
	v.SetDefault("extract.contact_paths", []string{
		"/contact", "/contact-us", "/about", "/about-us", "/team", "/staff",
	})
	v.SetDefault("validate.disposable_domains", defaultDisposableDomains)
	v.SetDefault("score.webmail_domains", defaultWebmailDomains)
	v.SetDefault("pipeline.max_results", 10)
	v.SetDefault("pipeline.contact_page_limit", 2)
	v.SetDefault("pipeline.directory_hosts", defaultDirectoryHosts)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadscout.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
