package store

import (
	"context"
	"errors"
	"time"

	"appointd/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// liveStatuses are the booking states that occupy a slot.
var liveStatuses = bson.A{models.StatusPending, models.StatusConfirmed}

// InsertBooking persists a new appointment booking.
func (g *Gateway) InsertBooking(ctx context.Context, b *models.Booking) error {
	coll, client, err := g.collection(collBookings)
	if err != nil {
		return err
	}
	opCtx, cancel := g.opCtx(ctx)
	defer cancel()

	_, err = coll.InsertOne(opCtx, b)
	return g.classify(client, "insert booking", err)
}

// FindBookingByID fetches a booking by its public id.
func (g *Gateway) FindBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	coll, client, err := g.collection(collBookings)
	if err != nil {
		return nil, err
	}
	opCtx, cancel := g.opCtx(ctx)
	defer cancel()

	var b models.Booking
	err = coll.FindOne(opCtx, bson.M{"id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, g.classify(client, "find booking", err)
	}
	return &b, nil
}

// LiveBookingAt reports whether a pending or confirmed booking already
// occupies the given date and time.
func (g *Gateway) LiveBookingAt(ctx context.Context, date, timeStr string) (bool, error) {
	coll, client, err := g.collection(collBookings)
	if err != nil {
		return false, err
	}
	opCtx, cancel := g.opCtx(ctx)
	defer cancel()

	filter := bson.M{
		"appointment.date": date,
		"appointment.time": timeStr,
		"status":           bson.M{"$in": liveStatuses},
	}
	err = coll.FindOne(opCtx, filter, options.FindOne().SetProjection(bson.M{"id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, g.classify(client, "check slot", err)
}

// LiveTimesForDate returns the time cells occupied by pending or
// confirmed bookings on the given date.
func (g *Gateway) LiveTimesForDate(ctx context.Context, date string) ([]string, error) {
	coll, client, err := g.collection(collBookings)
	if err != nil {
		return nil, err
	}
	opCtx, cancel := g.opCtx(ctx)
	defer cancel()

	filter := bson.M{
		"appointment.date": date,
		"status":           bson.M{"$in": liveStatuses},
	}
	cursor, err := coll.Find(opCtx, filter, options.Find().SetProjection(bson.M{"appointment.time": 1}))
	if err != nil {
		return nil, g.classify(client, "list booked times", err)
	}
	defer cursor.Close(opCtx)

	var times []string
	for cursor.Next(opCtx) {
		var doc struct {
			Appointment struct {
				Time string `bson:"time"`
			} `bson:"appointment"`
		}
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		if doc.Appointment.Time != "" {
			times = append(times, doc.Appointment.Time)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, g.classify(client, "list booked times", err)
	}
	return times, nil
}

// CancelBooking flips a booking to cancelled. The filter excludes
// terminal states so a concurrent cancel loses cleanly.
func (g *Gateway) CancelBooking(ctx context.Context, id string, at time.Time) error {
	coll, client, err := g.collection(collBookings)
	if err != nil {
		return err
	}
	opCtx, cancel := g.opCtx(ctx)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": bson.M{"$nin": bson.A{models.StatusCancelled, models.StatusCompleted}},
	}
	update := bson.M{"$set": bson.M{
		"status":       models.StatusCancelled,
		"cancelled_at": at,
		"updated_at":   at,
	}}
	res, err := coll.UpdateOne(opCtx, filter, update)
	if err != nil {
		return g.classify(client, "cancel booking", err)
	}
	if res.MatchedCount == 0 {
		// Unmatched means missing or already terminal; look at the
		// record to tell which.
		current, err := g.FindBookingByID(ctx, id)
		if err != nil {
			return err
		}
		return terminalCancelErr(current.Status)
	}
	return nil
}

// terminalCancelErr names why a cancel filter did not match an existing
// booking.
func terminalCancelErr(status string) error {
	if status == models.StatusCompleted {
		return ErrAlreadyCompleted
	}
	return ErrAlreadyCancelled
}

// SetBookingNotified marks the customer notification as delivered.
func (g *Gateway) SetBookingNotified(ctx context.Context, id string) error {
	coll, client, err := g.collection(collBookings)
	if err != nil {
		return err
	}
	opCtx, cancel := g.opCtx(ctx)
	defer cancel()

	res, err := coll.UpdateOne(opCtx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"notified": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return g.classify(client, "mark notified", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBookingsBetween returns bookings whose appointment date falls in
// [from, to], newest first. Empty bounds list everything.
func (g *Gateway) ListBookingsBetween(ctx context.Context, from, to string) ([]models.Booking, error) {
	coll, client, err := g.collection(collBookings)
	if err != nil {
		return nil, err
	}
	opCtx, cancel := g.opCtx(ctx)
	defer cancel()

	filter := bson.M{}
	dateRange := bson.M{}
	if from != "" {
		dateRange["$gte"] = from
	}
	if to != "" {
		dateRange["$lte"] = to
	}
	if len(dateRange) > 0 {
		filter["appointment.date"] = dateRange
	}

	cursor, err := coll.Find(opCtx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, g.classify(client, "list bookings", err)
	}
	defer cursor.Close(opCtx)

	var bookings []models.Booking
	if err := cursor.All(opCtx, &bookings); err != nil {
		return nil, g.classify(client, "list bookings", err)
	}
	return bookings, nil
}
