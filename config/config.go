package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/linesmerrill/legal-aid-api/models"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string

	JWTSecret    string
	TokenTTL     time.Duration
	RefundWindow time.Duration

	StorageDriver string
	UploadDir     string

	CloudinaryURL    string
	CloudinaryFolder string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSecure    bool

	SendgridAPIKey    string
	SendgridFromEmail string
	SendgridFromName  string

	RedisURL string

	GeminiAPIKey string
	GeminiModel  string

	RatingSweepSchedule string
}

// New sets up all config related services
func New() *Config {
	// a missing .env is fine, the environment wins either way
	_ = godotenv.Load()

	conf := &Config{
		URL:          os.Getenv("DB_URI"),
		DatabaseName: os.Getenv("DB_NAME"),
		BaseURL:      os.Getenv("BASE_URL"),
		Port:         getEnv("PORT", "5000"),
		Env:          getEnv("APP_ENV", "local"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     time.Duration(getEnvInt("TOKEN_TTL_DAYS", 30)) * 24 * time.Hour,
		RefundWindow: time.Duration(getEnvInt("REFUND_WINDOW_DAYS", 7)) * 24 * time.Hour,

		StorageDriver: getEnv("STORAGE_DRIVER", "local"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),

		CloudinaryURL:    os.Getenv("CLOUDINARY_URL"),
		CloudinaryFolder: getEnv("CLOUDINARY_FOLDER", "legal-aid"),

		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey: os.Getenv("S3_SECRET_ACCESS_KEY"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "case-documents"),
		MinioSecure:    os.Getenv("MINIO_SECURE") == "true",

		SendgridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendgridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "no-reply@legal-aid.app"),
		SendgridFromName:  getEnv("SENDGRID_FROM_NAME", "Legal Aid"),

		RedisURL: os.Getenv("REDIS_URL"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),

		RatingSweepSchedule: getEnv("RATING_SWEEP_SCHEDULE", "0 3 * * *"),
	}

	//setup zap logger and replace default logger
	logger, err := setLogger(conf.Env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return conf
}

// Validate checks that the values required to serve traffic are present
func (c *Config) Validate() error {
	if c.URL == "" || c.DatabaseName == "" {
		return errors.New("config: DB_URI and DB_NAME are required")
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	return nil
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	ErrorKindStatus(message, "", httpStatusCode, w, err)
}

// ErrorKindStatus behaves like ErrorStatus and also reports the failure kind
// in the body
func ErrorKindStatus(message, kind string, httpStatusCode int, w http.ResponseWriter, err error) {
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	zap.S().Errorw(message, "error", errText, "kind", kind, "status", httpStatusCode)

	b, _ := json.Marshal(models.ErrorMessageResponse{
		Response: models.MessageError{Message: message, Error: errText, Kind: kind},
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	w.Write(b)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
