package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Database   DatabaseConfig
	Roster     RosterConfig
	Embedding  EmbeddingConfig
	Match      MatchConfig
	Attendance AttendanceConfig
	Web        WebConfig
}

type DatabaseConfig struct {
	URL                string // PostgreSQL connection URL
	MaxOpenConns       int    // Maximum open connections (default 25)
	MaxIdleConns       int    // Maximum idle connections (default 5)
	HNSWMinEnrollments int    // Roster size from which enrollment look-alike checks use HNSW (0 disables it)
}

type WebConfig struct {
	AllowedOrigins []string // CORS origins of kiosk terminals and the admin console
}

type RosterConfig struct {
	DatabaseURL string // MariaDB DSN of the school management system (e.g., mis:mis@tcp(mariadb:3306)/school)
}

type EmbeddingConfig struct {
	URL          string // defaults to http://localhost:8000
	MaxImageSize int    // frames are downscaled to this size before upload (default 640)
}

// MatchConfig holds the face matching policy.
type MatchConfig struct {
	Threshold    float64 `yaml:"threshold"`   // maximum accepted euclidean distance (inclusive)
	ScoreScale   float64 `yaml:"score_scale"` // normalisation constant for the display score only
	TieEpsilon   float64 `yaml:"tie_epsilon"`
	EmbeddingDim int     `yaml:"embedding_dim"`
}

type AttendanceConfig struct {
	WorkStartTime    string        // "HH:MM" in Timezone
	LateGraceMinutes int           // minutes after WorkStartTime before a check-in is late
	Timezone         string        // IANA zone used for calendar dates and lateness
	ClockTimeout     time.Duration // bound on a single match-and-record operation
}

// Location returns the configured time zone, or UTC if it cannot be loaded.
func (c *AttendanceConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type defaultsFile struct {
	Match      MatchConfig `yaml:"match"`
	Attendance struct {
		WorkStartTime    string `yaml:"work_start_time"`
		LateGraceMinutes int    `yaml:"late_grace_minutes"`
		Timezone         string `yaml:"timezone"`
		ClockTimeout     string `yaml:"clock_timeout"`
	} `yaml:"attendance"`
	Index struct {
		HNSWMinEnrollments int `yaml:"hnsw_min_enrollments"`
	} `yaml:"index"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envNonNegInt is like envInt but accepts zero, which is how optional features are switched off.
func envNonNegInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envDuration reads an environment variable as a Go duration string ("5s", "1500ms").
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

// envList splits a comma-separated environment variable, dropping empty entries.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func loadDefaults() defaultsFile {
	var d defaultsFile
	if err := yaml.Unmarshal(defaultsYAML, &d); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return d
}

func Load() *Config {
	d := loadDefaults()

	clockTimeout, err := time.ParseDuration(d.Attendance.ClockTimeout)
	if err != nil {
		clockTimeout = 5 * time.Second
	}

	return &Config{
		Database: DatabaseConfig{
			URL:                os.Getenv("DATABASE_URL"),
			MaxOpenConns:       envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       envInt("DATABASE_MAX_IDLE_CONNS", 5),
			HNSWMinEnrollments: envNonNegInt("HNSW_MIN_ENROLLMENTS", d.Index.HNSWMinEnrollments),
		},
		Roster: RosterConfig{
			DatabaseURL: os.Getenv("ROSTER_DATABASE_URL"),
		},
		Embedding: EmbeddingConfig{
			URL:          os.Getenv("EMBEDDING_URL"),
			MaxImageSize: envInt("EMBEDDING_MAX_IMAGE_SIZE", 640),
		},
		Match: MatchConfig{
			Threshold:    envFloat("MATCH_THRESHOLD", d.Match.Threshold),
			ScoreScale:   envFloat("MATCH_SCORE_SCALE", d.Match.ScoreScale),
			TieEpsilon:   envFloat("MATCH_TIE_EPSILON", d.Match.TieEpsilon),
			EmbeddingDim: envInt("EMBEDDING_DIM", d.Match.EmbeddingDim),
		},
		Attendance: AttendanceConfig{
			WorkStartTime:    envString("WORK_START_TIME", d.Attendance.WorkStartTime),
			LateGraceMinutes: envNonNegInt("LATE_GRACE_MINUTES", d.Attendance.LateGraceMinutes),
			Timezone:         envString("ATTENDANCE_TIMEZONE", d.Attendance.Timezone),
			ClockTimeout:     envDuration("CLOCK_TIMEOUT", clockTimeout),
		},
		Web: WebConfig{
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
	}
}
