package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/postkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays values from environment variables. Variables from a
// dotenv file are loaded first without overriding the real environment:
// the file given with -env, or ./.env when present.
//
// Recognised variables:
//
//	SERVER_ADDRESS, DATABASE_DSN, JWT_SECRET, MAX_UPLOAD_BYTES, ASSET_DIR,
//	STAGING_DIR, ASSET_BACKEND, S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET,
//	S3_REGION, S3_BASE_ENDPOINT, SHUTDOWN_TIMEOUT, LOG_LEVEL
//
// Malformed numeric or duration values panic, like the other loaders.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else {
		// a missing ./.env is fine
		_ = godotenv.Load()
	}

	setString(&config.EndpointAddrHTTP, "SERVER_ADDRESS")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.SecretKey, "JWT_SECRET")
	setString(&config.AssetDir, "ASSET_DIR")
	setString(&config.StagingDir, "STAGING_DIR")
	setString(&config.AssetBackend, "ASSET_BACKEND")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setString(&config.LogLevel, "LOG_LEVEL")

	if v, ok := os.LookupEnv("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		config.MaxUploadBytes = n
	}

	if v, ok := os.LookupEnv("SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.ShutdownTimeout = d
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
