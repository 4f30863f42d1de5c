package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	TLS_DOMAINS        = "" // e.g. "studio.example.com,proofs.example.com"
	BIND_ADDRESS       = "0.0.0.0:8080"
	MYSQL_DSN          = "" // MySQL will be used if this is set
	POSTGRES_DSN       = "" // Postgres will be used if MYSQL_DSN is not set and this is
	SQLITE_FILE        = "" // SQLite is the fallback when neither of the above is configured
	TMP_DIR            = "/tmp"
	DEFAULT_BUCKET_DIR = "" // Used for creating initial bucket
	DEBUG_MODE         = true
	PUSH_SERVER        = "" // Push notifications are disabled when empty
	SESSION_STORE_KEY  = "change me - a long random key"
	ADMIN_EMAIL        = "" // first admin account, created on start when there are no users
	ADMIN_PASSWORD     = ""

	// Galleries
	PUBLIC_LINKS_DEFAULT = false               // PublicLinkEnabled for newly created galleries
	PHOTOS_PAGE_SIZE     = 48                  // used when the client does not ask for a page size
	PHOTOS_MAX_PAGE_SIZE = 200                 // page sizes above this are clamped
	BULK_DOWNLOAD_MAX    = 500                 // max number of photo ids per bulk download
	GALLERY_SESSION_IDLE = 30 * 24 * time.Hour // 0 disables idle expiry of gallery sessions
	THUMB_SIZE           = 1280
	THUMB_CACHE_ENTRIES  = 2000

	// Reminders sent to clients before a gallery expires
	EXPIRY_REMINDER_DAYS     = 7
	EXPIRY_REMINDER_SCHEDULE = "@every 1h"
)

func init() {
	// .env is optional, real environment variables always win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Cannot load .env file: %v", err)
	}
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("POSTGRES_DSN", &POSTGRES_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("TMP_DIR", &TMP_DIR)
	readEnvString("DEFAULT_BUCKET_DIR", &DEFAULT_BUCKET_DIR)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("PUSH_SERVER", &PUSH_SERVER)
	readEnvString("SESSION_STORE_KEY", &SESSION_STORE_KEY)
	readEnvString("ADMIN_EMAIL", &ADMIN_EMAIL)
	readEnvString("ADMIN_PASSWORD", &ADMIN_PASSWORD)
	readEnvBool("PUBLIC_LINKS_DEFAULT", &PUBLIC_LINKS_DEFAULT)
	readEnvInt("PHOTOS_PAGE_SIZE", &PHOTOS_PAGE_SIZE)
	readEnvInt("PHOTOS_MAX_PAGE_SIZE", &PHOTOS_MAX_PAGE_SIZE)
	readEnvInt("BULK_DOWNLOAD_MAX", &BULK_DOWNLOAD_MAX)
	readEnvDuration("GALLERY_SESSION_IDLE", &GALLERY_SESSION_IDLE)
	readEnvInt("THUMB_SIZE", &THUMB_SIZE)
	readEnvInt("THUMB_CACHE_ENTRIES", &THUMB_CACHE_ENTRIES)
	readEnvInt("EXPIRY_REMINDER_DAYS", &EXPIRY_REMINDER_DAYS)
	readEnvString("EXPIRY_REMINDER_SCHEDULE", &EXPIRY_REMINDER_SCHEDULE)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = i
}

// readEnvDuration accepts Go durations ("72h") or a plain number of seconds
func readEnvDuration(name string, value *time.Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*value = d
		return
	}
	if s, err := strconv.Atoi(v); err == nil {
		*value = time.Duration(s) * time.Second
	}
}
