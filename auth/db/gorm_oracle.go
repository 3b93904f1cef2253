//go:build oracle

package db

import (
	"fmt"

	"github.com/oracle-samples/gorm-oracle/oracle"
	"gorm.io/gorm"
)

// getOracleDialector returns the godror-backed dialector. Passwords with
// special characters are quoted, not URL-encoded.
func getOracleDialector(cfg GormConfig) gorm.Dialector {
	dsn := fmt.Sprintf(`user="%s" password="%s" connectString="%s"`,
		cfg.User, cfg.Password, cfg.OracleConnectString)
	if cfg.OracleWalletLocation != "" {
		dsn += fmt.Sprintf(` configDir="%s"`, cfg.OracleWalletLocation)
	}
	return oracle.Open(dsn)
}
