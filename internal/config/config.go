package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	ModelPath       string
	ClassNames      []string
	InputSize       int
	CameraDevice    int
	StaticDirectory string
	LogDirectory    string

	// Detection post-processing
	CandidateCount int
	ScoreThreshold float64
	IoUThreshold   float64
	MaxDetections  int

	// Identity tracking
	QuantizationGrid   float64
	PointsPerObject    int
	TrackerGraceFrames int

	// Game
	EasyTime     time.Duration
	NormalTime   time.Duration
	HardTime     time.Duration
	TargetScores []int

	// Scheduling
	FrameInterval time.Duration // Delay before the next detection cycle is armed
	TimerInterval time.Duration // Period of the game timer trigger

	// Results
	DatabasePath        string
	ResultFlushInterval int // Seconds between result buffer flushes
	ResultBufferLimit   int
}

// Load reads configuration from the environment, after loading a .env file
// if one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                getEnvAsInt("PORT", 8080),
		ModelPath:           getEnv("MODEL_PATH", filepath.Join(".", "model", "recycle.onnx")),
		ClassNames:          getEnvAsList("CLASS_NAMES", []string{"can", "can", "paper", "plastic-bottle"}),
		InputSize:           getEnvAsInt("INPUT_SIZE", 320),
		CameraDevice:        getEnvAsInt("CAMERA_DEVICE", 0),
		StaticDirectory:     getEnv("STATIC_DIR", filepath.Join(".", "static")),
		LogDirectory:        getEnv("LOG_DIR", filepath.Join(".", "logs")),
		CandidateCount:      getEnvAsInt("CANDIDATE_COUNT", 2100),
		ScoreThreshold:      getEnvAsFloat("SCORE_THRESHOLD", 0.5),
		IoUThreshold:        getEnvAsFloat("IOU_THRESHOLD", 0.45),
		MaxDetections:       getEnvAsInt("MAX_DETECTIONS", 100),
		QuantizationGrid:    getEnvAsFloat("QUANTIZATION_GRID", 0.01),
		PointsPerObject:     getEnvAsInt("POINTS_PER_OBJECT", 10),
		TrackerGraceFrames:  getEnvAsInt("TRACKER_GRACE_FRAMES", 0),
		EasyTime:            getEnvAsSeconds("EASY_TIME", 120),
		NormalTime:          getEnvAsSeconds("NORMAL_TIME", 90),
		HardTime:            getEnvAsSeconds("HARD_TIME", 60),
		TargetScores:        getEnvAsIntList("TARGET_SCORES", []int{50, 100, 150, 200}),
		FrameInterval:       getEnvAsMillis("FRAME_INTERVAL_MS", 16),
		TimerInterval:       getEnvAsMillis("TIMER_INTERVAL_MS", 1000),
		DatabasePath:        getEnv("DB_PATH", "file:results?mode=memory&cache=shared"),
		ResultFlushInterval: getEnvAsInt("RESULT_FLUSH_INTERVAL", 30),
		ResultBufferLimit:   getEnvAsInt("RESULT_BUFFER_LIMIT", 50),
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Second
}

func getEnvAsMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Millisecond
}

// getEnvAsList splits a comma separated value, keeping order and duplicates.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func getEnvAsIntList(key string, defaultValue []int) []int {
	var values []int
	for _, item := range getEnvAsList(key, nil) {
		intValue, err := strconv.Atoi(item)
		if err != nil || intValue <= 0 {
			return defaultValue
		}
		values = append(values, intValue)
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
