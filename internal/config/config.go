package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/mini/internal/errors"
	"github.com/vango-dev/mini/pkg/fiber"
	"github.com/vango-dev/mini/pkg/idle"
	"github.com/vango-dev/mini/pkg/server"
	"github.com/vango-dev/mini/pkg/snapshot"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "mini.json"

	// DefaultHost is the default server host. Empty means all interfaces.
	DefaultHost = ""

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultMetricsPath is where the server exposes Prometheus metrics.
	DefaultMetricsPath = "/metrics"

	// DefaultSnapshotDir is the default directory for the disk snapshot store.
	DefaultSnapshotDir = ".mini/snapshots"
)

// FileNames lists the configuration files Load looks for, in order.
var FileNames = []string{ConfigFileName, "mini.yaml", "mini.yml"}

// Config represents the complete mini.json / mini.yaml configuration.
type Config struct {
	// Scheduler configures the idle loop and the engine.
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`

	// Server configures the websocket server started by `mini serve`.
	Server ServerConfig `json:"server" yaml:"server"`

	// Snapshot configures where committed-tree snapshots are stored.
	Snapshot SnapshotConfig `json:"snapshot" yaml:"snapshot"`

	// Tracing configures OpenTelemetry spans.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SchedulerConfig contains idle scheduling settings.
type SchedulerConfig struct {
	// FrameInterval is the time between idle periods (e.g., "16ms").
	FrameInterval Duration `json:"frameInterval,omitempty" yaml:"frameInterval,omitempty"`

	// FrameBudget is the length of each idle period.
	FrameBudget Duration `json:"frameBudget,omitempty" yaml:"frameBudget,omitempty"`

	// YieldThreshold is the remaining time below which the work loop yields.
	YieldThreshold Duration `json:"yieldThreshold,omitempty" yaml:"yieldThreshold,omitempty"`

	// QueueSize is the capacity of the loop's task queue.
	QueueSize int `json:"queueSize,omitempty" yaml:"queueSize,omitempty"`

	// DebugHooks enables the hook-order check.
	DebugHooks bool `json:"debugHooks,omitempty" yaml:"debugHooks,omitempty"`
}

// ServerConfig contains websocket server settings.
type ServerConfig struct {
	Host           string   `json:"host,omitempty" yaml:"host,omitempty"`
	Port           int      `json:"port,omitempty" yaml:"port,omitempty"`
	ReadTimeout    Duration `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout   Duration `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	MaxMessageSize int64    `json:"maxMessageSize,omitempty" yaml:"maxMessageSize,omitempty"`
	MetricsPath    string   `json:"metricsPath,omitempty" yaml:"metricsPath,omitempty"`
	Title          string   `json:"title,omitempty" yaml:"title,omitempty"`
}

// SnapshotConfig selects the snapshot store. If S3.Bucket is set snapshots
// go to S3, otherwise to Dir.
type SnapshotConfig struct {
	Dir string   `json:"dir,omitempty" yaml:"dir,omitempty"`
	S3  S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config contains S3 snapshot store settings.
type S3Config struct {
	Bucket       string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix       string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region       string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty" yaml:"usePathStyle,omitempty"`
}

// TracingConfig contains tracing settings. Tracing is off when TracerName
// is empty.
type TracingConfig struct {
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	loop := idle.DefaultLoopConfig()
	sess := server.DefaultSessionConfig()
	return &Config{
		Scheduler: SchedulerConfig{
			FrameInterval:  Duration(loop.FrameInterval),
			FrameBudget:    Duration(loop.Budget),
			YieldThreshold: Duration(fiber.DefaultYieldThreshold),
			QueueSize:      loop.QueueSize,
		},
		Server: ServerConfig{
			Host:           DefaultHost,
			Port:           DefaultPort,
			ReadTimeout:    Duration(sess.ReadTimeout),
			WriteTimeout:   Duration(sess.WriteTimeout),
			MaxMessageSize: sess.MaxMessageSize,
			MetricsPath:    DefaultMetricsPath,
			Title:          "mini",
		},
		Snapshot: SnapshotConfig{
			Dir: DefaultSnapshotDir,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// mini.json, then mini.yaml, then mini.yml.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E121").
		WithDetail("No mini.json or mini.yaml found in " + dir).
		WithSuggestion("Create mini.json or run without a config file to use the defaults")
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file's syntax")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Resolve loads the configuration from dir, falling back to the defaults
// when no file exists, then applies environment overrides and validates.
func Resolve(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if err != nil {
		if !errors.HasCode(err, "E121") {
			return nil, err
		}
		cfg = New()
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML or JSON
// depending on the extension.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()

	// Scheduler
	if c.Scheduler.FrameInterval == 0 {
		c.Scheduler.FrameInterval = d.Scheduler.FrameInterval
	}
	if c.Scheduler.FrameBudget == 0 {
		c.Scheduler.FrameBudget = d.Scheduler.FrameBudget
	}
	if c.Scheduler.YieldThreshold == 0 {
		c.Scheduler.YieldThreshold = d.Scheduler.YieldThreshold
	}
	if c.Scheduler.QueueSize == 0 {
		c.Scheduler.QueueSize = d.Scheduler.QueueSize
	}

	// Server
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = d.Server.MaxMessageSize
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = d.Server.MetricsPath
	}
	if c.Server.Title == "" {
		c.Server.Title = d.Server.Title
	}

	// Snapshot
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = d.Snapshot.Dir
	}
}

// ApplyEnv overrides settings from the environment: MINI_HOST, MINI_PORT
// and MINI_DEBUG_HOOKS. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("MINI_HOST"); ok {
		c.Server.Host = v
	}
	if v, ok := lookup("MINI_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("E120").WithDetailf("MINI_PORT=%q is not a number", v)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("MINI_DEBUG_HOOKS"); ok && v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("E120").WithDetailf("MINI_DEBUG_HOOKS=%q is not a boolean", v)
		}
		c.Scheduler.DebugHooks = on
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E120").
			WithDetail("Port must be between 0 and 65535")
	}
	if c.Scheduler.FrameInterval <= 0 || c.Scheduler.FrameBudget <= 0 {
		return errors.New("E120").
			WithDetail("scheduler.frameInterval and scheduler.frameBudget must be positive")
	}
	if c.Scheduler.FrameBudget > c.Scheduler.FrameInterval {
		return errors.New("E120").
			WithDetailf("scheduler.frameBudget (%s) exceeds scheduler.frameInterval (%s)",
				c.Scheduler.FrameBudget, c.Scheduler.FrameInterval)
	}
	if c.Scheduler.YieldThreshold < 0 {
		return errors.New("E120").WithDetail("scheduler.yieldThreshold must not be negative")
	}
	if c.Server.MetricsPath != "" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return errors.New("E120").
			WithDetailf("server.metricsPath %q must start with /", c.Server.MetricsPath)
	}
	if c.Snapshot.S3.Bucket != "" && c.Snapshot.S3.Region == "" {
		return errors.New("E120").
			WithDetail("snapshot.s3.region is required when snapshot.s3.bucket is set")
	}
	return nil
}

// Address returns the server listen address.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// LoopConfig returns the idle loop settings.
func (c *Config) LoopConfig() idle.LoopConfig {
	return idle.LoopConfig{
		FrameInterval: time.Duration(c.Scheduler.FrameInterval),
		Budget:        time.Duration(c.Scheduler.FrameBudget),
		QueueSize:     c.Scheduler.QueueSize,
	}
}

// EngineOptions returns the engine options the scheduler section implies.
func (c *Config) EngineOptions() []fiber.Option {
	return []fiber.Option{
		fiber.WithDebugHooks(c.Scheduler.DebugHooks),
		fiber.WithYieldThreshold(time.Duration(c.Scheduler.YieldThreshold)),
	}
}

// ServerConfig builds the websocket server configuration.
func (c *Config) ServerConfig() *server.ServerConfig {
	cfg := server.DefaultServerConfig().WithAddress(c.Address())
	cfg.MetricsPath = c.Server.MetricsPath
	cfg.TracerName = c.Tracing.TracerName
	cfg.Title = c.Server.Title

	sess := cfg.SessionConfig
	if rt := time.Duration(c.Server.ReadTimeout); rt > 0 {
		sess.ReadTimeout = rt
		if sess.HeartbeatInterval >= rt {
			sess.HeartbeatInterval = rt / 2
		}
	}
	if wt := time.Duration(c.Server.WriteTimeout); wt > 0 {
		sess.WriteTimeout = wt
	}
	if c.Server.MaxMessageSize > 0 {
		sess.MaxMessageSize = c.Server.MaxMessageSize
	}
	sess.Loop = c.LoopConfig()
	sess.EngineOptions = c.EngineOptions()
	return cfg
}

// SnapshotStore opens the configured snapshot store. Relative directories
// are resolved against the config file's directory.
func (c *Config) SnapshotStore() (snapshot.Store, error) {
	if s3 := c.Snapshot.S3; s3.Bucket != "" {
		client := snapshot.NewS3Client(snapshot.S3Config{
			Region:       s3.Region,
			Endpoint:     s3.Endpoint,
			UsePathStyle: s3.UsePathStyle,
		})
		return snapshot.NewS3Store(client, s3.Bucket, s3.Prefix), nil
	}
	dir := c.Snapshot.Dir
	if dir == "" {
		dir = DefaultSnapshotDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.Dir(), dir)
	}
	return snapshot.NewDiskStore(dir)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E121").
				WithDetail("No mini.json or mini.yaml found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or the nearest parent that has a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
