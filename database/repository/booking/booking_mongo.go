package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidaview/database"
	"vidaview/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
	paymentColl *mongo.Collection
}

// NewMongoBookingRepo constructs a MongoBookingRepo on db and ensures its indexes.
func NewMongoBookingRepo(db *mongo.Database) (*MongoBookingRepo, error) {
	repo := &MongoBookingRepo{
		bookingColl: db.Collection("bookings"),
		paymentColl: db.Collection("payments"),
	}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := repo.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

func (repo *MongoBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int64, error) {
	query := bson.M{}
	if filter.TenantID != "" {
		query["tenant_id"] = filter.TenantID
	}
	if filter.UnitID != "" {
		query["unit_id"] = filter.UnitID
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": statusStrings(filter.Statuses)}
	}

	total, err := repo.bookingColl.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting bookings: %w", err)
	}

	page, perPage := normalizePage(filter.Page, filter.PerPage)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))
	bookings, err := repo.findBookings(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (repo *MongoBookingRepo) FindOverlapping(ctx context.Context, unitID string, start, end time.Time, statuses []models.BookingStatus, excludeID string) ([]models.Booking, error) {
	query := bson.M{
		"unit_id":    unitID,
		"status":     bson.M{"$in": statusStrings(statuses)},
		"start_date": bson.M{"$lt": end},
		"end_date":   bson.M{"$gt": start},
	}
	if excludeID != "" {
		query["id"] = bson.M{"$ne": excludeID}
	}
	return repo.findBookings(ctx, query)
}

func (repo *MongoBookingRepo) FindEnded(ctx context.Context, status models.BookingStatus, date time.Time) ([]models.Booking, error) {
	query := bson.M{
		"status":   string(status),
		"end_date": bson.M{"$lte": date},
	}
	return repo.findBookings(ctx, query)
}

func (repo *MongoBookingRepo) findBookings(ctx context.Context, query bson.M, opts ...*options.FindOptions) ([]models.Booking, error) {
	cursor, err := repo.bookingColl.Find(ctx, query, opts...)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

func (repo *MongoBookingRepo) SaveTransition(ctx context.Context, booking *models.Booking, expectedVersion int) error {
	filter := bson.M{"id": booking.ID, "version": expectedVersion}
	update := bson.M{"$set": bson.M{
		"status":           booking.Status,
		"rejection_reason": booking.RejectionReason,
		"version":          booking.Version,
		"updated_at":       booking.UpdatedAt,
		"confirmed_at":     booking.ConfirmedAt,
		"activated_at":     booking.ActivatedAt,
		"completed_at":     booking.CompletedAt,
		"cancelled_at":     booking.CancelledAt,
		"rejected_at":      booking.RejectedAt,
	}}

	res, err := repo.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", booking.ID, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrVersionConflict
	}
	return nil
}

func (repo *MongoBookingRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if _, err := repo.paymentColl.InsertOne(ctx, payment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return database.ErrDuplicate
		}
		return fmt.Errorf("insert payment failed: %w", err)
	}
	return nil
}

func (repo *MongoBookingRepo) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := repo.paymentColl.FindOne(ctx, bson.M{"id": id}).Decode(&payment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching payment %s: %w", id, err)
	}
	return &payment, nil
}

func (repo *MongoBookingRepo) ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "attempt", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := repo.paymentColl.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("error decoding payments: %w", err)
	}
	return payments, nil
}

func (repo *MongoBookingRepo) QueryPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int64, error) {
	query := bson.M{}
	if filter.BookingID != "" {
		query["booking_id"] = filter.BookingID
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": paymentStatusStrings(filter.Statuses)}
	}

	total, err := repo.paymentColl.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting payments: %w", err)
	}

	page, perPage := normalizePage(filter.Page, filter.PerPage)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: 1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))
	cursor, err := repo.paymentColl.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error fetching payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, 0, fmt.Errorf("error decoding payments: %w", err)
	}
	return payments, total, nil
}

func (repo *MongoBookingRepo) SavePaymentTransition(ctx context.Context, payment *models.Payment, expectedVersion int) error {
	filter := bson.M{"id": payment.ID, "version": expectedVersion}
	update := bson.M{"$set": bson.M{
		"method":                payment.Method,
		"status":                payment.Status,
		"transaction_reference": payment.TransactionReference,
		"receipt_attached":      payment.ReceiptAttached,
		"verifier_notes":        payment.VerifierNotes,
		"paid_at":               payment.PaidAt,
		"verified_at":           payment.VerifiedAt,
		"version":               payment.Version,
		"updated_at":            payment.UpdatedAt,
	}}

	res, err := repo.paymentColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", payment.ID, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrVersionConflict
	}
	return nil
}
