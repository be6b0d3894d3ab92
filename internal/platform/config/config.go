package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                 string
	DatabaseURL          string
	JWTSecret            string
	PayslipEncryptionKey string
	Environment          string
	CORSAllowedOrigins   []string
	RunMigrations        bool
	MigrationsDir        string
	SeedAdminEmail       string
	SeedAdminPassword    string
	MaxBodyBytes         int64
	MetricsEnabled       bool
	JobQueueSize         int
	ShutdownTimeout      time.Duration
	WFHWeight            float64
	PermissionWeight     float64
	SalaryFloor          float64
	PayslipDir           string
}

func Load() Config {
	return Config{
		Addr:                 getEnv("APP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		PayslipEncryptionKey: getEnv("PAYSLIP_ENCRYPTION_KEY", ""),
		Environment:          getEnv("APP_ENV", "development"),
		CORSAllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RunMigrations:        getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:        getEnv("MIGRATIONS_DIR", "migrations"),
		SeedAdminEmail:       getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:    getEnv("SEED_ADMIN_PASSWORD", ""),
		MaxBodyBytes:         int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		MetricsEnabled:       getEnvBool("METRICS_ENABLED", true),
		JobQueueSize:         getEnvInt("JOB_QUEUE_SIZE", 128),
		ShutdownTimeout:      getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		WFHWeight:            getEnvFloat("ATTENDANCE_WFH_WEIGHT", 0.9),
		PermissionWeight:     getEnvFloat("ATTENDANCE_PERMISSION_WEIGHT", 0.5),
		SalaryFloor:          getEnvFloat("PAYROLL_SALARY_FLOOR", 0.5),
		PayslipDir:           getEnv("PAYSLIP_DIR", "storage/payslips"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.PayslipEncryptionKey) == "" {
			return fmt.Errorf("PAYSLIP_ENCRYPTION_KEY must be set in production for payslip encryption at rest")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.JobQueueSize <= 0 {
		return fmt.Errorf("JOB_QUEUE_SIZE must be positive")
	}
	if c.WFHWeight < 0 || c.WFHWeight > 1 {
		return fmt.Errorf("ATTENDANCE_WFH_WEIGHT must be between 0 and 1")
	}
	if c.PermissionWeight < 0 || c.PermissionWeight > 1 {
		return fmt.Errorf("ATTENDANCE_PERMISSION_WEIGHT must be between 0 and 1")
	}
	if c.SalaryFloor < 0 || c.SalaryFloor > 1 {
		return fmt.Errorf("PAYROLL_SALARY_FLOOR must be between 0 and 1")
	}
	return nil
}
