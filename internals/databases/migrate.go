package database

import (
	"gorm.io/gorm"

	billModel "kindergarten_backend/internals/features/finance/bills/model"
	messageModel "kindergarten_backend/internals/features/notifications/messages/model"
	notificationModel "kindergarten_backend/internals/features/notifications/notifications/model"
	childModel "kindergarten_backend/internals/features/school/children/model"
	classModel "kindergarten_backend/internals/features/school/classes/model"
	reportModel "kindergarten_backend/internals/features/school/reports/model"
	authModel "kindergarten_backend/internals/features/users/auth/model"
	userModel "kindergarten_backend/internals/features/users/user/model"
)

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&userModel.UserModel{},
		&authModel.TokenBlacklist{},
		&classModel.ClassModel{},
		&childModel.ChildModel{},
		&billModel.BillModel{},
		&reportModel.ReportModel{},
		&notificationModel.NotificationModel{},
		&messageModel.MessageModel{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return err
	}
	return db.AutoMigrate(Models()...)
}
