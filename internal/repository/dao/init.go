package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Campaign{},
		&CampaignToken{},
		&Investment{},
		&Dividend{},
		&DividendClaim{},
		&KYCStatusHistory{},
		&KYCFile{},
		&AuditLog{},
	)
}
