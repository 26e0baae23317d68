package repository

import (
	activityRepo "vidaview/database/repository/activity"
	bookingRepo "vidaview/database/repository/booking"
	notificationRepo "vidaview/database/repository/notification"
	promotionRepo "vidaview/database/repository/promotion"
	unitRepo "vidaview/database/repository/unit"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Re-export the repository interfaces.
type BookingRepository = bookingRepo.BookingRepository

type PromotionRepository = promotionRepo.PromotionRepository

type UnitRepository = unitRepo.UnitRepository

type NotificationRepository = notificationRepo.NotificationRepository

type ActivityRepository = activityRepo.ActivityRepository

// Set bundles the repositories for one storage backend.
type Set struct {
	Bookings      BookingRepository
	Promotions    PromotionRepository
	Units         UnitRepository
	Notifications NotificationRepository
	Activity      ActivityRepository
}

// NewMongoSet builds every repository on a MongoDB database.
func NewMongoSet(db *mongo.Database) (*Set, error) {
	bookings, err := bookingRepo.NewMongoBookingRepo(db)
	if err != nil {
		return nil, err
	}
	promotions, err := promotionRepo.NewMongoPromotionRepo(db)
	if err != nil {
		return nil, err
	}
	activity, err := activityRepo.NewMongoActivityRepo(db)
	if err != nil {
		return nil, err
	}
	return &Set{
		Bookings:      bookings,
		Promotions:    promotions,
		Units:         unitRepo.NewMongoUnitRepo(db),
		Notifications: notificationRepo.NewMongoNotificationRepo(db),
		Activity:      activity,
	}, nil
}

// NewGormSet builds every repository on a relational database.
func NewGormSet(db *gorm.DB) *Set {
	return &Set{
		Bookings:      bookingRepo.NewGormBookingRepo(db),
		Promotions:    promotionRepo.NewGormPromotionRepo(db),
		Units:         unitRepo.NewGormUnitRepo(db),
		Notifications: notificationRepo.NewGormNotificationRepo(db),
		Activity:      activityRepo.NewGormActivityRepo(db),
	}
}
