// Package config loads node settings from defaults, YAML files and
// NODEGUARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/nodeguard/internal/bootstrap"
	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
)

const (
	// ProjectFile is the project-level config file name.
	ProjectFile = ".nodeguard.yaml"
	// DataDirName is the default per-project data directory.
	DataDirName = ".nodeguard"
)

// Config represents the complete nodeguard configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Node      NodeConfig      `yaml:"node" json:"node"`
	Network   NetworkConfig   `yaml:"network" json:"network"`
	Bootstrap BootstrapConfig `yaml:"bootstrap" json:"bootstrap"`
	Discovery DiscoveryConfig `yaml:"discovery" json:"discovery"`
	Heap      HeapConfig      `yaml:"heap" json:"heap"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// NodeConfig identifies the node and where it keeps state.
type NodeConfig struct {
	Name     string `yaml:"name" json:"name"`
	DataPath string `yaml:"data_path" json:"data_path"`
}

// NetworkConfig configures the addresses the node binds and publishes.
type NetworkConfig struct {
	// BindHosts are the hosts the transport and HTTP listeners bind to.
	BindHosts []string `yaml:"bind_hosts" json:"bind_hosts"`
	// PublishHost is the host advertised to other nodes.
	// Empty means the first bind host.
	PublishHost string `yaml:"publish_host" json:"publish_host"`
	// Port is the transport port. 0 picks a free port.
	Port int `yaml:"port" json:"port"`
	// HTTPPort serves /healthz and /metrics. 0 picks a free port.
	HTTPPort int `yaml:"http_port" json:"http_port"`
}

// BootstrapConfig holds settings read by the bootstrap checks.
type BootstrapConfig struct {
	// MemoryLock requests that process memory be locked in RAM.
	MemoryLock bool `yaml:"memory_lock" json:"memory_lock"`
}

// DiscoveryConfig holds cluster formation settings.
type DiscoveryConfig struct {
	// MinimumMasterNodes is the quorum size. Only its presence is checked
	// at startup; nil means the key is absent.
	MinimumMasterNodes *int `yaml:"minimum_master_nodes,omitempty" json:"minimum_master_nodes,omitempty"`
}

// HeapConfig declares heap sizes as humanized byte strings ("512MB", "1GiB").
type HeapConfig struct {
	InitialSize string `yaml:"initial_size" json:"initial_size"`
	MaxSize     string `yaml:"max_size" json:"max_size"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	// File enables JSON file logging with rotation. Empty logs to stderr only.
	File string `yaml:"file" json:"file"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "node-1"
	}
	return &Config{
		Version: 1,
		Node: NodeConfig{
			Name:     hostname,
			DataPath: filepath.Join(DataDirName, "data"),
		},
		Network: NetworkConfig{
			BindHosts: []string{"127.0.0.1"},
			Port:      9300,
			HTTPPort:  9200,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// GetUserConfigPath returns the user config path:
//   - $XDG_CONFIG_HOME/nodeguard/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/nodeguard/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "nodeguard", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "nodeguard", "config.yaml")
	}
	return filepath.Join(home, ".config", "nodeguard", "config.yaml")
}

// Load loads configuration with precedence (lowest to highest):
//  1. Defaults
//  2. User config (~/.config/nodeguard/config.yaml)
//  3. Project config (.nodeguard.yaml in dir)
//  4. Environment variables (NODEGUARD_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if fileExists(GetUserConfigPath()) {
		if err := cfg.loadYAML(GetUserConfigPath()); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads .nodeguard.yaml or .nodeguard.yml from dir, if present.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ProjectFile)
	if fileExists(yamlPath) {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".nodeguard.yml")
	if fileExists(ymlPath) {
		return c.loadYAML(ymlPath)
	}

	return nil
}

// loadYAML reads a YAML file and merges it over c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Node.Name != "" {
		c.Node.Name = other.Node.Name
	}
	if other.Node.DataPath != "" {
		c.Node.DataPath = other.Node.DataPath
	}

	if len(other.Network.BindHosts) > 0 {
		c.Network.BindHosts = other.Network.BindHosts
	}
	if other.Network.PublishHost != "" {
		c.Network.PublishHost = other.Network.PublishHost
	}
	if other.Network.Port != 0 {
		c.Network.Port = other.Network.Port
	}
	if other.Network.HTTPPort != 0 {
		c.Network.HTTPPort = other.Network.HTTPPort
	}

	// false is indistinguishable from absent after unmarshalling, so a file
	// can only turn memory locking on. NODEGUARD_MEMORY_LOCK can turn it off.
	if other.Bootstrap.MemoryLock {
		c.Bootstrap.MemoryLock = true
	}

	if other.Discovery.MinimumMasterNodes != nil {
		v := *other.Discovery.MinimumMasterNodes
		c.Discovery.MinimumMasterNodes = &v
	}

	if other.Heap.InitialSize != "" {
		c.Heap.InitialSize = other.Heap.InitialSize
	}
	if other.Heap.MaxSize != "" {
		c.Heap.MaxSize = other.Heap.MaxSize
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
}

// applyEnvOverrides applies NODEGUARD_* environment variables.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("NODEGUARD_NODE_NAME"); v != "" {
		c.Node.Name = v
	}
	if v := os.Getenv("NODEGUARD_DATA_PATH"); v != "" {
		c.Node.DataPath = v
	}
	if v := os.Getenv("NODEGUARD_BIND_HOSTS"); v != "" {
		c.Network.BindHosts = splitList(v)
	}
	if v := os.Getenv("NODEGUARD_PUBLISH_HOST"); v != "" {
		c.Network.PublishHost = v
	}
	if v := os.Getenv("NODEGUARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NODEGUARD_PORT: %w", err)
		}
		c.Network.Port = port
	}
	if v := os.Getenv("NODEGUARD_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NODEGUARD_HTTP_PORT: %w", err)
		}
		c.Network.HTTPPort = port
	}
	if v := os.Getenv("NODEGUARD_MEMORY_LOCK"); v != "" {
		lock, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NODEGUARD_MEMORY_LOCK: %w", err)
		}
		c.Bootstrap.MemoryLock = lock
	}
	if v := os.Getenv("NODEGUARD_MINIMUM_MASTER_NODES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NODEGUARD_MINIMUM_MASTER_NODES: %w", err)
		}
		c.Discovery.MinimumMasterNodes = &n
	}
	if v := os.Getenv("NODEGUARD_HEAP_INITIAL_SIZE"); v != "" {
		c.Heap.InitialSize = v
	}
	if v := os.Getenv("NODEGUARD_HEAP_MAX_SIZE"); v != "" {
		c.Heap.MaxSize = v
	}
	if v := os.Getenv("NODEGUARD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NODEGUARD_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Node.Name == "" {
		return invalid("node.name must not be empty")
	}
	if c.Node.DataPath == "" {
		return invalid("node.data_path must not be empty")
	}

	if len(c.Network.BindHosts) == 0 {
		return invalid("network.bind_hosts must list at least one host")
	}
	for _, h := range c.Network.BindHosts {
		if err := validateHost(h); err != nil {
			return invalid("network.bind_hosts: %w", err)
		}
	}
	if c.Network.PublishHost != "" {
		if err := validateHost(c.Network.PublishHost); err != nil {
			return invalid("network.publish_host: %w", err)
		}
	}
	if c.Network.Port < 0 || c.Network.Port > 65535 {
		return invalid("network.port must be between 0 and 65535, got %d", c.Network.Port)
	}
	if c.Network.HTTPPort < 0 || c.Network.HTTPPort > 65535 {
		return invalid("network.http_port must be between 0 and 65535, got %d", c.Network.HTTPPort)
	}
	if c.Network.Port != 0 && c.Network.Port == c.Network.HTTPPort {
		return invalid("network.port and network.http_port must differ, both are %d", c.Network.Port)
	}

	if n := c.Discovery.MinimumMasterNodes; n != nil && *n <= 0 {
		return invalid("discovery.minimum_master_nodes must be positive, got %d", *n)
	}

	if _, err := ParseSize(c.Heap.InitialSize); err != nil {
		return invalid("heap.initial_size: %w", err)
	}
	if _, err := ParseSize(c.Heap.MaxSize); err != nil {
		return invalid("heap.max_size: %w", err)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return invalid("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// invalid builds a validation error. An error wrapped with %w becomes its cause.
func invalid(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	return nerrors.ValidationError("invalid configuration: "+err.Error(), errors.Unwrap(err))
}

// validateHost accepts IP literals and resolvable-looking host names.
func validateHost(h string) error {
	if h == "" {
		return fmt.Errorf("host must not be empty")
	}
	if net.ParseIP(h) != nil {
		return nil
	}
	if strings.ContainsAny(h, " /:") {
		return fmt.Errorf("invalid host %q", h)
	}
	return nil
}

// ParseSize parses a humanized byte size. Empty means unset and returns 0.
func ParseSize(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("size %q is too large", s)
	}
	return int64(n), nil
}

// InitialHeapBytes returns heap.initial_size in bytes, 0 if unset.
// The value is validated by Load.
func (c *Config) InitialHeapBytes() int64 {
	n, _ := ParseSize(c.Heap.InitialSize)
	return n
}

// MaxHeapBytes returns heap.max_size in bytes, 0 if unset.
func (c *Config) MaxHeapBytes() int64 {
	n, _ := ParseSize(c.Heap.MaxSize)
	return n
}

// Settings projects the configuration onto the bootstrap check inputs.
func (c *Config) Settings() bootstrap.Settings {
	return bootstrap.Settings{
		MemoryLock:            c.Bootstrap.MemoryLock,
		MinimumMasterNodesSet: c.Discovery.MinimumMasterNodes != nil,
	}
}

// ResolveDataPath returns the data path, relative paths resolved against root.
func (c *Config) ResolveDataPath(root string) string {
	if filepath.IsAbs(c.Node.DataPath) {
		return c.Node.DataPath
	}
	return filepath.Join(root, c.Node.DataPath)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindProjectRoot walks up from startDir looking for a .git directory or a
// .nodeguard.yaml/.yml file.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, err := os.Stat(absDir); err != nil {
		return "", fmt.Errorf("directory does not exist: %w", err)
	}

	currentDir := absDir
	for {
		if fileExists(filepath.Join(currentDir, ProjectFile)) ||
			fileExists(filepath.Join(currentDir, ".nodeguard.yml")) ||
			dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			return absDir, nil
		}
		currentDir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
