package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/terraincognita07/gardenweeks/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

type Options struct {
	Driver Driver
	// Path is the SQLite database file. It is ignored by the other drivers.
	Path string
	// DSN is the connection string for postgres and mysql.
	DSN   string
	Debug bool
}

// Open connects to the configured database and brings its schema up to date.
// SQLite runs the embedded SQL migrations; postgres and mysql use AutoMigrate.
func Open(options Options) (*gorm.DB, error) {
	switch options.Driver {
	case DriverSQLite, "":
		return OpenSQLite(options.Path, options.Debug)
	case DriverPostgres:
		return openServer(postgres.Open(options.DSN), options.Debug)
	case DriverMySQL:
		return openServer(mysql.Open(options.DSN), options.Debug)
	default:
		return nil, errors.Errorf("unsupported database driver %q", options.Driver)
	}
}

func OpenSQLite(dbPath string, debug bool) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "create db directory")
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), gormConfig(debug))
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	if err := applyEmbeddedMigrations(database); err != nil {
		return nil, errors.Wrap(err, "apply embedded migrations")
	}
	return database, nil
}

func openServer(dialector gorm.Dialector, debug bool) (*gorm.DB, error) {
	database, err := gorm.Open(dialector, gormConfig(debug))
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", dialector.Name())
	}
	if err := database.AutoMigrate(&models.User{}, &models.Booking{}); err != nil {
		return nil, errors.Wrap(err, "auto migrate")
	}
	return database, nil
}

func gormConfig(debug bool) *gorm.Config {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			log.StandardLogger(),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  level,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}
