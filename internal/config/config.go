package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_settings.toml
var sampleSettings string

// DefaultPath is where settings are read from when no path is given.
const DefaultPath = "settings.toml"

const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

const (
	DefaultSegmentSeconds = 300
	DefaultOpenAIModel    = "whisper-1"
	DefaultOpenAIBaseURL  = "https://api.openai.com/v1"
	DefaultAzureVersion   = "2024-06-01"
)

// API selects the transcription backend.
type API struct {
	Type string `toml:"type"`
}

// Backend holds the settings of one provider section. Each credential can be
// given literally or through the name of an environment variable.
type Backend struct {
	ModelName   string `toml:"model_name"`
	APIKey      string `toml:"api_key"`
	APIKeyEnv   string `toml:"api_key_env"`
	Endpoint    string `toml:"endpoint"`
	EndpointEnv string `toml:"endpoint_env"`
	BaseURL     string `toml:"base_url"`
	APIVersion  string `toml:"api_version"`
}

// General contains provider independent settings.
type General struct {
	AudioSegmentTime int `toml:"audio_segment_time"`
	RequestTimeout   int `toml:"request_timeout"`
}

// Settings mirrors the settings file. Sections:
//   - API: provider selection (openai | azure)
//   - OpenAI: model, key and optional base URL for the direct API
//   - Azure: deployment, key, endpoint and api-version for the gateway
//   - General: segment length and request timeout in seconds
type Settings struct {
	API     API     `toml:"API"`
	OpenAI  Backend `toml:"OpenAI"`
	Azure   Backend `toml:"Azure"`
	General General `toml:"General"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		API: API{Type: ProviderOpenAI},
		OpenAI: Backend{
			ModelName: DefaultOpenAIModel,
			APIKeyEnv: "OPENAI_API_KEY",
			BaseURL:   DefaultOpenAIBaseURL,
		},
		Azure: Backend{
			APIKeyEnv:   "AZURE_OPENAI_API_KEY",
			EndpointEnv: "AZURE_OPENAI_ENDPOINT",
			APIVersion:  DefaultAzureVersion,
		},
		General: General{
			AudioSegmentTime: DefaultSegmentSeconds,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error; the
// returned bool reports whether the file existed.
func Load(path string) (*Settings, bool, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &cfg, false, nil
		}
		return nil, false, &ConfigError{Reason: "open settings", Err: err}
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, true, &ConfigError{Reason: fmt.Sprintf("parse %s", path), Err: err}
	}
	cfg.normalize()
	return &cfg, true, nil
}

// LoadRequired is Load for a run: the file must exist, since the provider in
// [API] type has no safe default.
func LoadRequired(path string) (*Settings, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	cfg, exists, err := Load(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &ConfigError{
			Section: "API", Key: "type",
			Reason: fmt.Sprintf("settings file %s not found (create one with \"transcriber config init\")", path),
			Err:    fs.ErrNotExist,
		}
	}
	return cfg, nil
}

func (s *Settings) normalize() {
	s.API.Type = strings.ToLower(strings.TrimSpace(s.API.Type))
	for _, b := range []*Backend{&s.OpenAI, &s.Azure} {
		b.ModelName = strings.TrimSpace(b.ModelName)
		b.APIKey = strings.TrimSpace(b.APIKey)
		b.APIKeyEnv = strings.TrimSpace(b.APIKeyEnv)
		b.Endpoint = strings.TrimSpace(b.Endpoint)
		b.EndpointEnv = strings.TrimSpace(b.EndpointEnv)
		b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
		b.APIVersion = strings.TrimSpace(b.APIVersion)
	}
}

// Section returns the name of the provider section in use, or "" when the
// provider is unknown.
func (s *Settings) Section() string {
	switch strings.ToLower(s.API.Type) {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderAzure:
		return "Azure"
	default:
		return ""
	}
}

func (s *Settings) backend() *Backend {
	if s.Section() == "Azure" {
		return &s.Azure
	}
	return &s.OpenAI
}

// Resolved is the validated, env-expanded view handed to the pipeline. It is
// computed once at startup and never re-read.
type Resolved struct {
	Provider       string
	Section        string
	Model          string
	APIKey         string
	Endpoint       string
	BaseURL        string
	APIVersion     string
	SegmentSeconds int
	RequestTimeout time.Duration
}

// Resolve validates the settings and expands env indirections.
func (s *Settings) Resolve() (Resolved, error) {
	if err := s.Validate(); err != nil {
		return Resolved{}, err
	}
	b := s.backend()
	r := Resolved{
		Provider:       strings.ToLower(s.API.Type),
		Section:        s.Section(),
		Model:          b.ModelName,
		APIKey:         lookup(b.APIKey, b.APIKeyEnv),
		BaseURL:        b.BaseURL,
		APIVersion:     b.APIVersion,
		SegmentSeconds: s.General.AudioSegmentTime,
		RequestTimeout: time.Duration(s.General.RequestTimeout) * time.Second,
	}
	if r.Provider == ProviderAzure {
		r.Endpoint = strings.TrimRight(lookup(b.Endpoint, b.EndpointEnv), "/")
		if r.APIVersion == "" {
			r.APIVersion = DefaultAzureVersion
		}
	} else if r.BaseURL == "" {
		r.BaseURL = DefaultOpenAIBaseURL
	}
	return r, nil
}

// lookup returns the literal value, else the value of the named variable.
func lookup(literal, envName string) string {
	if literal != "" {
		return literal
	}
	if envName == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(envName))
}

// CreateSample writes a commented settings file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleSettings), 0o644); err != nil {
		return fmt.Errorf("write sample settings: %w", err)
	}
	return nil
}
