package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

const (
	defaultSimilarityThreshold  = 0.80
	defaultBatchDelaySeconds    = 1
	defaultCentroidRebuildHours = 24
	defaultCentroidFaceCap      = 2000
)

type Config struct {
	// database path
	DatabasePath string

	// face clustering settings
	SimilarityThreshold float64 // seeds the persisted setting on first boot
	CentroidFaceCap     int     // max faces folded into one centroid
	BatchDelay          time.Duration

	// offline centroid repair schedule; 0 disables the job
	CentroidRebuildInterval time.Duration
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float64) float64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s'. Using default %v. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "gallery.db")

	threshold := getEnvFloatOrDefault("FACE_SIMILARITY_THRESHOLD", defaultSimilarityThreshold)
	if threshold < 0 || threshold > 1 {
		log.Printf("Warning: FACE_SIMILARITY_THRESHOLD %v outside [0,1]. Using default %v", threshold, defaultSimilarityThreshold)
		threshold = defaultSimilarityThreshold
	}

	batchDelaySeconds := getEnvIntOrDefault("CLUSTER_BATCH_DELAY_SECONDS", defaultBatchDelaySeconds)
	rebuildHours := getEnvIntOrDefault("CENTROID_REBUILD_HOURS", defaultCentroidRebuildHours)
	centroidFaceCap := getEnvIntOrDefault("CENTROID_FACE_CAP", defaultCentroidFaceCap)
	if centroidFaceCap <= 0 {
		centroidFaceCap = defaultCentroidFaceCap
	}

	cfg := Config{
		DatabasePath:            dbPath,
		SimilarityThreshold:     threshold,
		CentroidFaceCap:         centroidFaceCap,
		BatchDelay:              time.Duration(batchDelaySeconds) * time.Second,
		CentroidRebuildInterval: time.Duration(rebuildHours) * time.Hour,
	}

	return cfg, nil
}
