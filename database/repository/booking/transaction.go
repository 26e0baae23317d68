package bookingRepo

import (
	"context"
	"fmt"

	"vidaview/database"
	"vidaview/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CreateWithPayment inserts the booking and its initial payment in one
// multi-document transaction.
func (repo *MongoBookingRepo) CreateWithPayment(ctx context.Context, booking *models.Booking, payment *models.Payment) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := repo.bookingColl.InsertOne(sc, booking); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return database.ErrDuplicate
			}
			return fmt.Errorf("insert booking failed: %w", err)
		}
		if _, err := repo.paymentColl.InsertOne(sc, payment); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return database.ErrDuplicate
			}
			return fmt.Errorf("insert payment failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}
