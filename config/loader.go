package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Resolver finds config and env files on a filesystem.
type Resolver struct {
	Fs afero.Fs
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles finds config and env files for a service.
// Returns explicit paths if provided, otherwise searches for them.
func (cr *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}

	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.findConfigFile(serviceName)
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.findEnvFile(serviceName)
	}

	return resolved
}

func (cr *Resolver) exists(path string) bool {
	ok, err := afero.Exists(cr.Fs, path)
	return err == nil && ok
}

// findConfigFile searches for config.yml in standard locations.
func (cr *Resolver) findConfigFile(serviceName string) string {
	searchPaths := []string{
		fmt.Sprintf("./cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../../cmd/%s/config.yml", serviceName),
		fmt.Sprintf("./%s.yml", serviceName),
		"./config/config.yml",
		"./config.yml",
	}

	for _, path := range searchPaths {
		if cr.exists(path) {
			return path
		}
	}
	return ""
}

// findEnvFile searches for .env files in standard locations.
func (cr *Resolver) findEnvFile(serviceName string) string {
	envFiles := []string{
		fmt.Sprintf(".env.%s", serviceName),
		".env",
	}
	searchPaths := []string{
		fmt.Sprintf("./cmd/%s", serviceName),
		"./config",
		".",
	}

	for _, envFile := range envFiles {
		for _, basePath := range searchPaths {
			fullPath := basePath + "/" + envFile
			if cr.exists(fullPath) {
				return fullPath
			}
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	Fs         afero.Fs
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFs sets the filesystem config and env files are read from.
func WithFs(fs afero.Fs) LoaderOption {
	return func(lc *LoaderConfig) { lc.Fs = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for a service into the provided cfg struct.
// It searches for config.yml and .env files in standard locations, binds
// environment variables, and unmarshals the result into cfg. An explicitly
// requested config file that cannot be read is an error; a discovered one
// that cannot be read is skipped.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.Fs == nil {
		lc.Fs = afero.NewOsFs()
	}

	resolver := &Resolver{Fs: lc.Fs}
	files := resolver.ResolveFiles(serviceName, lc)

	v := viper.New()
	v.SetFs(lc.Fs)

	// 1. YAML config is the base layer.
	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			if lc.ConfigFile != "" {
				return fmt.Errorf("failed to load config file %s: %w", files.ConfigFile, err)
			}
			fmt.Fprintf(os.Stderr, "[config] warning: failed to load config file %s: %v\n", files.ConfigFile, err)
		}
	}

	// 2. .env values join the process environment without overriding it.
	if files.EnvFile != "" && resolver.exists(files.EnvFile) {
		if err := loadEnvFile(lc.Fs, files.EnvFile); err != nil {
			fmt.Fprintf(os.Stderr, "[config] warning: failed to load .env file %s: %v\n", files.EnvFile, err)
		}
	}

	// 3. Environment variables override the file.
	v.AutomaticEnv()
	autoBindEnvVars(v)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// loadEnvFile applies a dotenv file to the process environment. Variables
// that are already set win, matching godotenv.Load.
func loadEnvFile(fs afero.Fs, path string) error {
	f, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return err
	}
	for k, val := range vars {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return err
		}
	}
	return nil
}

// autoBindEnvVars automatically binds environment variables to Viper
// by converting UPPER_CASE_WITH_UNDERSCORES to multiple possible nested key formats.
func autoBindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		for _, variant := range generateEnvKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// generateEnvKeyVariants creates all possible key variants for environment variable binding.
// Examples:
//
//	STORAGE_PROVIDER        -> [storage_provider, storage.provider]
//	STORAGE_S3_ACCESS_KEY   -> [storage_s3_access_key, storage.s3.access.key, storage.s3_access_key, storage.s3.access_key, ...]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	// Every split point: nested prefix, underscored suffix.
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		suffix := strings.Join(parts[i:], "_")
		variants = append(variants, prefix+"."+suffix)
	}

	return removeDuplicates(variants)
}

// removeDuplicates removes duplicate strings from a slice.
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
