package db

import (
	"log"
	"studio/config"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var Instance *gorm.DB

// Init opens the configured database: MySQL, then Postgres, then SQLite
func Init() {
	var dialector gorm.Dialector
	if config.MYSQL_DSN != "" {
		dsn, err := normaliseMySQLDSN(config.MYSQL_DSN)
		if err != nil {
			log.Fatalf("Invalid MYSQL_DSN: %v", err)
		}
		dialector = mysql.Open(dsn)
	} else if config.POSTGRES_DSN != "" {
		dialector = postgres.Open(config.POSTGRES_DSN)
	} else if config.SQLITE_FILE != "" {
		dialector = sqlite.Open(config.SQLITE_FILE)
	} else {
		log.Fatal("No database configured, set MYSQL_DSN, POSTGRES_DSN or SQLITE_FILE")
	}
	db, err := Open(dialector)
	if err != nil {
		panic(err)
	}
	Instance = db
}

// Open is used by Init and by tests (with an in-memory SQLite dialector)
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// normaliseMySQLDSN makes sure time columns are parsed and stored as UTC
func normaliseMySQLDSN(dsn string) (string, error) {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}
	return cfg.FormatDSN(), nil
}
