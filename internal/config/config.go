package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string

	DBDriver string // memory|sqlite|postgres
	DBDSN    string

	EnableAuth    bool
	AuthSecret    string
	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string

	AIProxyURL  string
	AIModel     string
	AIMaxTokens int

	MaxUploadBytes int64
	MaxUploadFiles int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:       addr,
		DBDriver:       envOr("DB_DRIVER", "memory"),
		DBDSN:          envOr("DB_DSN", ""),
		EnableAuth:     envBool("ENABLE_AUTH", false),
		AuthSecret:     envOr("AUTH_SECRET", "dev-secret-change-me"),
		AdminUser:      envOr("ADMIN_USER", "admin"),
		AdminPassHash:  envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		AIProxyURL:     envOr("AI_PROXY_URL", ""),
		AIModel:        envOr("AI_MODEL", "claude-sonnet-4-20250514"),
		AIMaxTokens:    envInt("AI_MAX_TOKENS", 8000),
		MaxUploadBytes: int64(envInt("MAX_UPLOAD_MB", 32)) << 20,
		MaxUploadFiles: envInt("MAX_UPLOAD_FILES", 10),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
