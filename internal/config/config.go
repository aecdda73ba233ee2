package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Guide layout
	GuideDir  string
	StartPage string
	EndPage   string
	TOCPage   string

	// Template conventions
	MainRegion string
	NextRegion string

	// Walker bound
	MaxHops int

	// Output shell
	Stylesheet string
	Title      string
	Version    string
	Logo       string
	CoverNotes string

	// Version consistency checks, relative to RepoRoot
	RepoRoot          string
	ProductName       string
	VersionProperties string
	Install4jProject  string
	VersionedDocs     []string

	// Sync
	DocDir        string
	CommitInquiry string
	CommitMessage string
	Branch        string

	// Preview server
	Port     string
	APIKey   string
	LogLevel slog.Level
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		GuideDir:  envOr("GUIDE_DIR", "docs/userguide/processed"),
		StartPage: envOr("GUIDE_START", "toc.html"),
		EndPage:   envOr("GUIDE_END", "toc.html"),
		TOCPage:   envOr("GUIDE_TOC", "toc.html"),

		MainRegion: envOr("GUIDE_MAIN_REGION", "MainContent"),
		NextRegion: envOr("GUIDE_NEXT_REGION", "GoToNext"),

		MaxHops: envInt("GUIDE_MAX_HOPS", 2000),

		Stylesheet: envOr("GUIDE_STYLESHEET", "mcidasv.css"),
		Title:      envOr("GUIDE_TITLE", "McIDAS-V User's Guide"),
		Version:    os.Getenv("GUIDE_VERSION"),
		Logo:       envOr("GUIDE_LOGO", "images/mcidasv_logo.gif"),
		CoverNotes: os.Getenv("GUIDE_COVER_NOTES"),

		RepoRoot:          envOr("REPO_ROOT", "."),
		ProductName:       envOr("PRODUCT_NAME", "McIDAS-V"),
		VersionProperties: envOr("VERSION_PROPERTIES", "edu/wisc/ssec/mcidasv/resources/version.properties"),
		Install4jProject:  envOr("INSTALL4J_PROJECT", "release/mcidasv.install4j"),
		VersionedDocs: envList("VERSIONED_DOCS", []string{
			"release/README.html",
			"docs/userguide/processed/License.html",
			"docs/userguide/processed/TOC.xml",
			"docs/userguide/processed/toc.html",
		}),

		DocDir:        envOr("SYNC_DOC_DIR", "docs/userguide/processed"),
		CommitInquiry: envOr("SYNC_INQUIRY", "0"),
		CommitMessage: envOr("SYNC_MESSAGE", "Dreamweaver updates synced from web server."),
		Branch:        envOr("SYNC_BRANCH", "master"),

		Port:     envOr("PORT", "8090"),
		APIKey:   os.Getenv("GUIDETOOLS_API_KEY"),
		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.MaxHops <= 0 {
		cfg.MaxHops = 2000
	}

	return cfg
}

func (c Config) Validate() error {
	if c.StartPage == "" {
		return fmt.Errorf("GUIDE_START is required")
	}
	if c.MainRegion == "" || c.NextRegion == "" {
		return fmt.Errorf("GUIDE_MAIN_REGION and GUIDE_NEXT_REGION must be non-empty")
	}
	if c.MainRegion == c.NextRegion {
		return fmt.Errorf("main and next region names must differ (both %q)", c.MainRegion)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envList splits a comma-separated variable, dropping empty items.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			return lvl
		}
	}
	return fallback
}
