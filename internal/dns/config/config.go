package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/miekg/dns"
)

// envPrefix is stripped from environment variable names before they are mapped to keys.
const envPrefix = "NODAR_"

// AppConfig holds configuration values parsed from defaults, an optional
// YAML file and environment variables, in that order of precedence.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls diagnostic log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Zone is the apex of the zone served, without a trailing dot.
	Zone string `koanf:"zone" validate:"required,dns_name"`

	// Alias is the host label under Zone answered with mlab-ns A records.
	Alias string `koanf:"alias" validate:"required,dns_name"`

	// TTL is written on every record.
	TTL uint32 `koanf:"ttl" validate:"required,gte=1"`

	// NSPrefix is prepended to every peer host to form an NS target.
	NSPrefix string `koanf:"ns_prefix" validate:"required"`

	// HostsFile is the newline delimited list of peer hosts.
	HostsFile string `koanf:"hosts_file" validate:"required"`

	// MaxNSHosts caps the number of NS records per answer.
	MaxNSHosts int `koanf:"max_ns_hosts" validate:"required,gte=1,lte=13"`

	// HostsCacheTTL keeps the peer host list in memory for this long.
	// Zero re-reads the file for every NS answer.
	HostsCacheTTL time.Duration `koanf:"hosts_cache_ttl" validate:"gte=0"`

	// MlabnsURL is the mlab-ns lookup endpoint; ip and format are added as query parameters.
	MlabnsURL string `koanf:"mlabns_url" validate:"required,url"`

	// MlabnsTimeout bounds a single mlab-ns request.
	MlabnsTimeout time.Duration `koanf:"mlabns_timeout" validate:"required,gt=0"`

	// UserAgent identifies nodar to mlab-ns. The local hostname is appended at runtime.
	UserAgent string `koanf:"user_agent" validate:"required"`

	// Banner is returned to PowerDNS in the handshake acknowledgement.
	Banner string `koanf:"banner" validate:"required"`
}

// DEFAULT_APP_CONFIG defines the default application configuration. The zone,
// TTL, NS prefix, host file and endpoint match what M-Lab deploys.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:           "prod",
	LogLevel:      "info",
	Zone:          "donar.measurement-lab.org",
	Alias:         "ndt.iupui",
	TTL:           300,
	NSPrefix:      "utility.mlab.",
	HostsFile:     "/etc/donar.txt",
	MaxNSHosts:    6,
	HostsCacheTTL: 0,
	MlabnsURL:     "http://ns.measurementlab.net/ndt",
	MlabnsTimeout: 10 * time.Second,
	UserAgent:     "nodar/1.0",
	Banner:        "M-Lab Backend",
}

// validDNSName reports whether the field holds a syntactically valid domain name.
func validDNSName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	if name == "" {
		return false
	}
	_, ok := dns.IsDomainName(name)
	return ok
}

// envLoader loads environment variables with the prefix "NODAR_",
// lowercasing keys and trimming values. It can be replaced in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), strings.TrimSpace(value)
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG into k.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// fileLoader merges the YAML file at path into k.
var fileLoader = func(k *koanf.Koanf, path string) error {
	return k.Load(file.Provider(path), yaml.Parser())
}

// registerValidation registers the custom "dns_name" tag with v.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("dns_name", validDNSName)
}

// Load builds an AppConfig from defaults, the optional YAML file at path
// (skipped when path is empty) and NODAR_* environment variables, then
// validates it.
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if path != "" {
		if err := fileLoader(k, path); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", path, err)
		}
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
