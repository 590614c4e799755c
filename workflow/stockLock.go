package workflow

import (
	"fmt"

	"gorm.io/gorm"
)

const stocktakeLockName = "stocktake"

// AcquireStocktakeLock serializes destructive stock maintenance across
// instances using a MySQL advisory lock.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB that will run the maintenance transaction.
func AcquireStocktakeLock(tx *gorm.DB) error {
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", stocktakeLockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire stocktake lock")
	}
	return nil
}

func ReleaseStocktakeLock(tx *gorm.DB) {
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", stocktakeLockName).Scan(&_ok).Error
}
