package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Camera backends understood by the device package.
const (
	CameraBackendOpenCV = "opencv"
	CameraBackendV4L2   = "v4l2"
	CameraBackendFile   = "file"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port     int
	Password string // Empty disables the login gate

	DatabaseDriver string
	DatabasePath   string // SQLite file
	DatabaseURL    string // PostgreSQL DSN

	DatasetDirectory string
	ModelsDirectory  string
	LogDirectory     string

	CameraBackend string
	CameraDevice  string
	CameraFile    string // Still image used as a simulated camera
	CameraWidth   int
	CameraHeight  int

	MatchThreshold float64 // Maximum embedding distance for a positive match
	DetectionScale float64 // Frames are shrunk by this factor before detection
	JPEGQuality    int
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not read .env file: %v", err)
	}

	return &Config{
		Port:             getEnvAsInt("PORT", 8080),
		Password:         getEnv("PASSWORD", ""),
		DatabaseDriver:   getEnv("DATABASE_DRIVER", DriverSQLite),
		DatabasePath:     getEnv("DATABASE_PATH", "database.db"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DatasetDirectory: getEnv("DATASET_DIR", "dataset"),
		ModelsDirectory:  getEnv("MODELS_DIR", "models"),
		LogDirectory:     getEnv("LOG_DIR", filepath.Join(".", "logs")),
		CameraBackend:    getEnv("CAMERA_BACKEND", CameraBackendOpenCV),
		CameraDevice:     getEnv("CAMERA_DEVICE", "0"),
		CameraFile:       getEnv("CAMERA_FILE", ""),
		CameraWidth:      getEnvAsInt("CAMERA_WIDTH", 640),
		CameraHeight:     getEnvAsInt("CAMERA_HEIGHT", 480),
		MatchThreshold:   getEnvAsFloat("MATCH_THRESHOLD", 0.6),
		DetectionScale:   getEnvAsFloat("DETECTION_SCALE", 0.25),
		JPEGQuality:      getEnvAsInt("JPEG_QUALITY", 80),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat ignores values that are not positive numbers.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}
