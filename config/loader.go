package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
)

// FileSystem abstracts the file operations the loader performs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the local disk.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadEnv loads a .env file into the process environment. Variables that
// are already set win over the file.
func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files for an application.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
// Empty fields mean nothing was found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

var configExtensions = []string{"yml", "yaml", "json", "toml"}

// ResolveFiles returns the explicit paths from opts, searching the standard
// locations for whichever was not given.
func (r *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.findConfigFile(name)
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.findEnvFile(name)
	}
	return resolved
}

// findConfigFile searches, in order: ./cmd/<name>, ./config/<name>,
// ./config and the working directory.
func (r *Resolver) findConfigFile(name string) string {
	dirs := []string{
		filepath.Join("cmd", name),
		filepath.Join("config", name),
		"config",
		".",
	}
	for _, dir := range dirs {
		for _, ext := range configExtensions {
			path := filepath.Join(dir, "config."+ext)
			if r.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

// findEnvFile prefers .env.<name> over .env in each search directory.
func (r *Resolver) findEnvFile(name string) string {
	dirs := []string{filepath.Join("cmd", name), "config", "."}
	for _, dir := range dirs {
		for _, file := range []string{".env." + name, ".env"} {
			path := filepath.Join(dir, file)
			if r.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file path (optional)
	EnvFile    string // explicit .env file path (optional)
	EnvPrefix  string // defaults to the upper-cased application name
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path. A missing explicit
// file is an error; a missing discovered file is not.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

type defaulter interface{ ApplyDefaults() }

type validatable interface{ Validate() error }

// Load reads configuration for the named application into cfg, which must
// be a pointer to a struct with mapstructure tags.
//
// Sources, lowest precedence first: the config file, the .env file, the
// process environment. Environment keys are the prefix followed by the
// upper-cased key path joined with underscores, so logging.level for
// "restc" is read from RESTC_LOGGING_LEVEL.
//
// When cfg implements ApplyDefaults or Validate they run after unmarshaling.
func Load(name string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.EnvPrefix == "" {
		lc.EnvPrefix = name
	}

	if lc.ConfigFile != "" && !lc.FileSystem.Exists(lc.ConfigFile) {
		return errors.InvalidConfig(fmt.Sprintf("config file %s not found", lc.ConfigFile), nil)
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(name, lc)

	if err := loadFromResolvedFiles(name, cfg, files, lc); err != nil {
		return err
	}

	if d, ok := cfg.(defaulter); ok {
		d.ApplyDefaults()
	}
	if v, ok := cfg.(validatable); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func loadFromResolvedFiles(name string, cfg any, files ResolvedFiles, lc LoaderConfig) error {
	log := logger.WithComponent("config")
	v := viper.New()

	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.InvalidConfig(fmt.Sprintf("reading %s", files.ConfigFile), err)
		}
		log.Debug("config file loaded", logger.Fields("file", files.ConfigFile))
	}

	// The .env file only fills variables the environment does not set.
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load env file", logger.Fields("file", files.EnvFile, "error", err.Error()))
		}
	}

	v.SetEnvPrefix(lc.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v, cfg)

	if err := v.Unmarshal(cfg); err != nil {
		return errors.InvalidConfig(fmt.Sprintf("decoding config for %s", name), err)
	}
	return nil
}

// bindEnvKeys registers every key the struct declares, plus every key the
// config file holds, so that values present only in the environment still
// reach Unmarshal.
func bindEnvKeys(v *viper.Viper, cfg any) {
	keys := structKeys(reflect.TypeOf(cfg), "")
	keys = append(keys, v.AllKeys()...)
	for _, key := range removeDuplicates(keys) {
		_ = v.BindEnv(key)
	}
}

// structKeys lists the dotted mapstructure paths of the leaf fields of t.
// Squashed embedded structs share their parent's prefix.
func structKeys(t reflect.Type, prefix string) []string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var keys []string
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("mapstructure")
		name, opts, _ := strings.Cut(tag, ",")
		if name == "-" {
			continue
		}

		ft := field.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if strings.Contains(opts, "squash") && ft.Kind() == reflect.Struct {
			keys = append(keys, structKeys(ft, prefix)...)
			continue
		}

		if name == "" {
			name = strings.ToLower(field.Name)
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		switch {
		case ft.Kind() == reflect.Map:
			// Map entries are only known from the config file.
		case ft.Kind() == reflect.Struct && ft.PkgPath() != "time":
			keys = append(keys, structKeys(ft, key)...)
		default:
			keys = append(keys, key)
		}
	}
	return keys
}

func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
