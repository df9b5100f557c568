// Package config loads Proteus settings through koanf: defaults,
// then an optional YAML file, then PROTEUS_ environment variables,
// then --set overrides from the CLI, each layer winning over the one
// before it.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full Proteus settings tree.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Build     BuildConfig     `koanf:"build"`
	Serve     ServeConfig     `koanf:"serve"`
	Memory    MemoryConfig    `koanf:"memory"`
	MCP       MCPConfig       `koanf:"mcp"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Exporter           string `koanf:"exporter"` // none, stdout, otlp
	OTLPEndpoint       string `koanf:"otlp_endpoint"`
	OTLPInsecure       bool   `koanf:"otlp_insecure"`
	OTLPTimeoutSeconds int    `koanf:"otlp_timeout_seconds"`
}

type BuildConfig struct {
	DefaultTarget string `koanf:"default_target"`
	OutDir        string `koanf:"out_dir"`
}

type ServeConfig struct {
	Transport string `koanf:"transport"` // stdio, http
	Addr      string `koanf:"addr"`
}

type MemoryConfig struct {
	Path string `koanf:"path"`
}

// MCPConfig lists the upstream MCP servers mcp-proxy tools may
// delegate to.
type MCPConfig struct {
	Servers map[string]MCPServerConfig `koanf:"servers"`
}

type MCPServerConfig struct {
	Transport       string   `koanf:"transport"` // stdio (default), http
	Command         string   `koanf:"command"`
	Args            []string `koanf:"args"`
	URL             string   `koanf:"url"`
	ProtocolVersion string   `koanf:"protocol_version"`
	TimeoutSeconds  *int     `koanf:"timeout_seconds"`
}

// Load reads configuration with an optional file path.
func Load(path string) (*Config, error) {
	return load(path, nil)
}

// LoadWithCLI reads configuration from the CLI argument list: any
// number of --config <path> / --set key=value pairs (equals forms
// accepted). The last --config wins; --set entries apply last.
func LoadWithCLI(args []string) (*Config, error) {
	var path string
	var sets []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for --config")
			}
			path = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			path = strings.TrimPrefix(arg, "--config=")
		case arg == "--set":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for --set")
			}
			sets = append(sets, args[i+1])
			i++
		case strings.HasPrefix(arg, "--set="):
			sets = append(sets, strings.TrimPrefix(arg, "--set="))
		}
	}
	return load(path, sets)
}

func load(path string, sets []string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("telemetry.exporter", "none")
	k.Set("build.default_target", "claude")
	k.Set("serve.transport", "stdio")
	k.Set("serve.addr", ":8321")
	k.Set("memory.path", "proteus-memory.db")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (PROTEUS_LOG_LEVEL -> log.level)
	if err := k.Load(env.Provider("PROTEUS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "PROTEUS_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// 3. CLI --set overrides
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, want key=value", set)
		}
		k.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
