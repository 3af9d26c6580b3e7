package data

import (
	"context"
	"fmt"
	"time"

	"topmovies/internal/conf"

	"github.com/glebarez/sqlite"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewMovieRepo,
	NewTMDBClient,
)

// Data encapsulates database and cache connections
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
	log *log.Helper
}

// NewData creates Data instance with database and Redis connections. The
// movie table is created if it does not exist.
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	l := log.NewHelper(logger)

	dialector, err := openDialector(c.Database)
	if err != nil {
		return nil, nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		l.Errorf("failed to connect to database: %v", err)
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.Errorf("failed to get database instance: %v", err)
		return nil, nil, err
	}

	// Configure connection pool
	if c.Database.Driver == "sqlite" {
		// one writer at a time avoids SQLITE_BUSY under concurrent requests
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Movie{}); err != nil {
		l.Errorf("failed to migrate movie table: %v", err)
		_ = sqlDB.Close()
		return nil, nil, err
	}

	l.Infof("database connected successfully (%s)", dialector.Name())

	var rdb *redis.Client
	if c.Redis != nil && c.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:         c.Redis.Addr,
			ReadTimeout:  c.Redis.ReadTimeout.AsDuration(),
			WriteTimeout: c.Redis.WriteTimeout.AsDuration(),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := rdb.Ping(ctx).Err(); err != nil {
			l.Warnf("failed to connect to redis: %v", err)
			// Redis is optional, continue without it
			_ = rdb.Close()
			rdb = nil
		} else {
			l.Info("redis connected successfully")
		}
	}

	data := &Data{
		db:  db,
		rdb: rdb,
		log: l,
	}

	cleanup := func() {
		l.Info("closing data resources")
		if data.rdb != nil {
			if err := data.rdb.Close(); err != nil {
				l.Errorf("failed to close redis: %v", err)
			}
		}
		if err := sqlDB.Close(); err != nil {
			l.Errorf("failed to close database: %v", err)
		}
	}

	return data, cleanup, nil
}

func openDialector(c *conf.Database) (gorm.Dialector, error) {
	if c == nil || c.Source == "" {
		return nil, fmt.Errorf("database source is not configured")
	}
	switch c.Driver {
	case "", "postgres":
		return postgres.Open(c.Source), nil
	case "sqlite":
		return sqlite.Open(c.Source), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}
