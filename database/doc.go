// Package database wraps GORM with retrying connection setup, pooled
// SQLite access, structured query logging and transaction helpers.
//
//	db, err := database.Open(ctx, database.Config{DSN: "artifacts.db"}, log)
//	if err != nil { ... }
//	defer db.Close()
//
//	err = db.WithTransaction(ctx, func(tx *gorm.DB) error {
//	    return tx.Create(&row).Error
//	})
//
// Errors from GORM are translated to AppErrors with FromDatabase.
// Versioned schema migrations live in the migration subpackage.
package database
