package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string `validate:"required"`

	Timezone    string `validate:"required"`
	MaxUploadMB int    `validate:"min=1,max=2048"`
	CSVEncoding string `validate:"oneof=utf-8 windows-1256 iso-8859-6 windows-1252"`

	SplitBrandCells    bool
	ZipReports         bool
	LiveFormulas       bool
	SummarySheetName   string `validate:"required,max=31"`
	PreferredSheetName string

	LogLevel  string `validate:"oneof=debug info warn warning error"`
	LogFormat string `validate:"oneof=text json"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "runs.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		Timezone:    getEnv("REPORT_TIMEZONE", "Africa/Cairo"),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 200),
		CSVEncoding: strings.ToLower(getEnv("CSV_ENCODING", "utf-8")),

		SplitBrandCells:    getEnvBool("SPLIT_BRAND_CELLS", true),
		ZipReports:         getEnvBool("REPORT_ZIP", false),
		LiveFormulas:       getEnvBool("REPORT_LIVE_FORMULAS", false),
		SummarySheetName:   getEnv("REPORT_SUMMARY_SHEET", "Summary"),
		PreferredSheetName: getEnv("INPUT_SHEET", "data"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var fields []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s=%v)", fe.Field(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
	}
	return err
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
