package config

import "github.com/ericfitz/personnel/auth/db"

// GormConfig converts the database section for db.NewGormDB
func (c *Config) GormConfig() db.GormConfig {
	return db.GormConfig{
		Type:                 db.DatabaseType(c.Database.Type),
		Host:                 c.Database.Host,
		Port:                 c.Database.Port,
		User:                 c.Database.User,
		Password:             c.Database.Password,
		Database:             c.Database.Name,
		SSLMode:              c.Database.SSLMode,
		OracleConnectString:  c.Database.OracleConnectString,
		OracleWalletLocation: c.Database.OracleWalletLocation,
		SQLitePath:           c.Database.SQLitePath,
		Tracing:              c.Telemetry.TracingEnabled,
	}
}

// RedisConfig converts the redis section for db.NewRedisDB
func (c *Config) RedisConfig() db.RedisConfig {
	return db.RedisConfig{
		Host:     c.Redis.Host,
		Port:     c.Redis.Port,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		Tracing:  c.Telemetry.TracingEnabled,
	}
}
