package config

import "time"

// ServerConfig holds the plain HTTP listener settings
type ServerConfig struct {
	ListenAddress     string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	SlowRequest       time.Duration
	AllowedOrigins    []string
}

// TLSConfig holds the HTTPS listener settings
type TLSConfig struct {
	Enabled       bool
	ListenAddress string
	CertFile      string
	KeyFile       string
}

// ShareConfig configures the share-link sentence cache
type ShareConfig struct {
	Capacity   int
	PublicHost string
	IDSentinel string
}

// RepairConfig holds the mojibake scoring knobs
type RepairConfig struct {
	CJKWeight    int
	MarkerWeight int
	Markers      string
	Encodings    []string
}

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region       string
	ModelID      string
	MaxTokens    int
	Temperature  float32
	TopP         float32
	MaxInputSize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey       string
	ModelName    string
	MaxTokens    int
	Temperature  float32
	TopP         float32
	MaxInputSize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey       string
	ModelName    string
	MaxTokens    int
	Temperature  float32
	TopP         float32
	MaxInputSize int
}

// CacheConfig configures the analysis cache backend
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// HistoryConfig configures the history repository backend
type HistoryConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// MailConfig configures the optional SMTP intake
type MailConfig struct {
	Enabled         bool
	ListenAddress   string
	Domain          string
	AllowedDomains  []string
	MaxMessageBytes int64
	AnalysisTimeout time.Duration
}

// GetServer returns the HTTP listener configuration
func (c *Config) GetServer() (ServerConfig, error) {
	readHeader, err := c.GetDuration("server.read_header_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	shutdown, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	slow, err := c.GetDuration("server.slow_request")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		ListenAddress:     c.GetString("server.listen_address"),
		ReadHeaderTimeout: readHeader,
		ShutdownTimeout:   shutdown,
		SlowRequest:       slow,
		AllowedOrigins:    c.GetStringSlice("server.cors.allowed_origins"),
	}, nil
}

// GetTLS returns the HTTPS listener configuration
func (c *Config) GetTLS() TLSConfig {
	return TLSConfig{
		Enabled:       c.GetBool("tls.enabled"),
		ListenAddress: c.GetString("tls.listen_address"),
		CertFile:      c.GetString("tls.cert_file"),
		KeyFile:       c.GetString("tls.key_file"),
	}
}

// GetShare returns the share-link configuration
func (c *Config) GetShare() ShareConfig {
	return ShareConfig{
		Capacity:   c.GetInt("share.capacity"),
		PublicHost: c.GetString("share.public_host"),
		IDSentinel: c.GetString("share.id_sentinel"),
	}
}

// GetRepair returns the mojibake repair configuration
func (c *Config) GetRepair() RepairConfig {
	return RepairConfig{
		CJKWeight:    c.GetInt("repair.cjk_weight"),
		MarkerWeight: c.GetInt("repair.marker_weight"),
		Markers:      c.GetString("repair.markers"),
		Encodings:    c.GetStringSlice("repair.encodings"),
	}
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:       c.GetString("bedrock.region"),
		ModelID:      c.GetString("bedrock.model_id"),
		MaxTokens:    c.GetInt("bedrock.max_tokens"),
		Temperature:  float32(c.GetFloat64("bedrock.temperature")),
		TopP:         float32(c.GetFloat64("bedrock.top_p")),
		MaxInputSize: c.GetInt("bedrock.max_input_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:       c.GetString("gemini.api_key"),
		ModelName:    c.GetString("gemini.model_name"),
		MaxTokens:    c.GetInt("gemini.max_tokens"),
		Temperature:  float32(c.GetFloat64("gemini.temperature")),
		TopP:         float32(c.GetFloat64("gemini.top_p")),
		MaxInputSize: c.GetInt("gemini.max_input_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:       c.GetString("openai.api_key"),
		ModelName:    c.GetString("openai.model_name"),
		MaxTokens:    c.GetInt("openai.max_tokens"),
		Temperature:  float32(c.GetFloat64("openai.temperature")),
		TopP:         float32(c.GetFloat64("openai.top_p")),
		MaxInputSize: c.GetInt("openai.max_input_size"),
	}
}

// GetCache returns the analysis cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}, nil
}

// GetHistory returns the history repository configuration
func (c *Config) GetHistory() HistoryConfig {
	return HistoryConfig{
		Type:       c.GetString("history.type"),
		SQLitePath: c.GetString("history.sqlite_path"),
		MySQLDSN:   c.GetString("history.mysql_dsn"),
	}
}

// GetMail returns the SMTP intake configuration
func (c *Config) GetMail() (MailConfig, error) {
	timeout, err := c.GetDuration("mail.analysis_timeout")
	if err != nil {
		return MailConfig{}, err
	}
	return MailConfig{
		Enabled:         c.GetBool("mail.enabled"),
		ListenAddress:   c.GetString("mail.listen_address"),
		Domain:          c.GetString("mail.domain"),
		AllowedDomains:  c.GetStringSlice("mail.allowed_domains"),
		MaxMessageBytes: c.GetInt64("mail.max_message_bytes"),
		AnalysisTimeout: timeout,
	}, nil
}
