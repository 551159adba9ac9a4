package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMongoURI        = "mongodb://localhost:27017"
	defaultMongoDatabase   = "storefront"
	defaultRedisAddr       = "localhost:6379"
	defaultJWTSecret       = "change-me-in-production"
	defaultAppPort         = "4000"
	defaultAppEnv          = "local"
	defaultUploadRoot      = "upload"
	defaultCartSlots       = 300
	defaultPopularCategory = "men"
	defaultCacheTTL        = 5 * time.Minute
	defaultRateLimit       = 200
	defaultThumbnailWidth  = 300
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json and .env once. Process environment variables
// always win over both files.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"MONGODB_URI":      defaultMongoURI,
		"MONGODB_DATABASE": defaultMongoDatabase,
		"REDIS_ADDR":       "",
		"REDIS_PASSWORD":   "",
		"JWT_SECRET":       defaultJWTSecret,
		"PORT":             defaultAppPort,
		"APP_ENV":          defaultAppEnv,
		"UPLOAD_ROOT":      defaultUploadRoot,
		"STORAGE_DISK":     "local",
	}
}

func MongoURI() string {
	_ = Load()
	return get("MONGODB_URI", defaultMongoURI)
}

func MongoDatabase() string {
	_ = Load()
	return get("MONGODB_DATABASE", defaultMongoDatabase)
}

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

// AppPort is the HTTP listen port. PORT is the canonical key; APP_PORT is
// accepted for older deployments.
func AppPort() string {
	_ = Load()
	if p := get("PORT", ""); p != "" {
		return p
	}
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

// RedisAddr returns "" when no cache is configured.
func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", "")
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

func CacheTTL() time.Duration {
	_ = Load()
	return getDuration("CACHE_TTL", defaultCacheTTL)
}

// TokenTTL is zero unless TOKEN_TTL is set; zero means tokens never expire.
func TokenTTL() time.Duration {
	_ = Load()
	return getDuration("TOKEN_TTL", 0)
}

func CartSlots() int {
	_ = Load()
	return getInt("CART_SLOTS", defaultCartSlots)
}

func PopularCategory() string {
	_ = Load()
	return get("POPULAR_CATEGORY", defaultPopularCategory)
}

func RateLimit() int {
	_ = Load()
	return getInt("RATE_LIMIT", defaultRateLimit)
}

// TrustedProxies lists the proxy IPs or CIDRs, comma separated in
// TRUSTED_PROXIES, whose X-Forwarded-For header the rate limiter believes.
func TrustedProxies() []string {
	_ = Load()
	var out []string
	for _, p := range strings.Split(get("TRUSTED_PROXIES", ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ThumbnailWidth() int {
	_ = Load()
	return getInt("THUMBNAIL_WIDTH", defaultThumbnailWidth)
}

// LogMongoURI enables the MongoDB log sink when non-empty.
func LogMongoURI() string {
	_ = Load()
	return get("LOG_MONGO_URI", "")
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDisk() string {
	_ = Load()
	return get("STORAGE_DISK", "local")
}

// UploadRoot is the local directory that holds images/ and is served under
// /images.
func UploadRoot() string {
	_ = Load()
	return get("UPLOAD_ROOT", defaultUploadRoot)
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	env, err := godotenv.Read(envPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", envPath, err)
	}
	for k, v := range env {
		if key := strings.ToUpper(strings.TrimSpace(k)); key != "" {
			loaded[key] = strings.TrimSpace(v)
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func get(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}

	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(get(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// getDuration accepts Go duration strings ("90s", "24h") or a bare number
// of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := get(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
