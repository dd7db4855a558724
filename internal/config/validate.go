package config

import (
	"errors"
	"fmt"
)

// ErrInvalid matches every ConfigError.
var ErrInvalid = errors.New("invalid settings")

// ConfigError names the offending section and key.
type ConfigError struct {
	Section string
	Key     string
	Reason  string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := e.Reason
	switch {
	case e.Section != "" && e.Key != "":
		msg = fmt.Sprintf("[%s] %s: %s", e.Section, e.Key, e.Reason)
	case e.Section != "":
		msg = fmt.Sprintf("[%s] %s", e.Section, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalid }

func (e *ConfigError) Unwrap() error { return e.Err }

// Validate returns every problem joined, or nil.
func (s *Settings) Validate() error {
	return errors.Join(s.Problems()...)
}

// Problems lists every reason the settings cannot be used. Provider specific
// checks are skipped when the provider itself is unknown.
func (s *Settings) Problems() []error {
	var problems []error

	if s.General.AudioSegmentTime <= 0 {
		problems = append(problems, &ConfigError{
			Section: "General", Key: "audio_segment_time",
			Reason: fmt.Sprintf("must be a positive number of seconds, got %d", s.General.AudioSegmentTime),
		})
	}
	if s.General.RequestTimeout < 0 {
		problems = append(problems, &ConfigError{
			Section: "General", Key: "request_timeout",
			Reason: "must not be negative",
		})
	}

	section := s.Section()
	if section == "" {
		return append(problems, &ConfigError{
			Section: "API", Key: "type",
			Reason: fmt.Sprintf("API type %q is not supported (want %s or %s)", s.API.Type, ProviderOpenAI, ProviderAzure),
		})
	}

	b := s.backend()
	if b.ModelName == "" {
		problems = append(problems, &ConfigError{Section: section, Key: "model_name", Reason: "model name is not set"})
	}
	if lookup(b.APIKey, b.APIKeyEnv) == "" {
		problems = append(problems, &ConfigError{Section: section, Key: "api_key", Reason: unresolved(b.APIKeyEnv)})
	}
	if section == "Azure" && lookup(b.Endpoint, b.EndpointEnv) == "" {
		problems = append(problems, &ConfigError{Section: section, Key: "endpoint", Reason: unresolved(b.EndpointEnv)})
	}
	return problems
}

func unresolved(envName string) string {
	if envName == "" {
		return "value is not set"
	}
	return fmt.Sprintf("value is not set and environment variable %s is empty", envName)
}
