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

// InsertTravelBooking persists a new tour booking.
func (g *Gateway) InsertTravelBooking(ctx context.Context, tb *models.TravelBooking) error {
	coll, client, err := g.collection(collTravel)
	if err != nil {
		return err
	}
	opCtx, cancel := g.opCtx(ctx)
	defer cancel()

	_, err = coll.InsertOne(opCtx, tb)
	return g.classify(client, "insert travel booking", err)
}

// FindTravelBookingByID fetches a tour booking by its public id.
func (g *Gateway) FindTravelBookingByID(ctx context.Context, id string) (*models.TravelBooking, error) {
	coll, client, err := g.collection(collTravel)
	if err != nil {
		return nil, err
	}
	opCtx, cancel := g.opCtx(ctx)
	defer cancel()

	var tb models.TravelBooking
	err = coll.FindOne(opCtx, bson.M{"id": id}).Decode(&tb)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, g.classify(client, "find travel booking", err)
	}
	return &tb, nil
}

// CancelTravelBooking flips a tour booking to cancelled.
func (g *Gateway) CancelTravelBooking(ctx context.Context, id string, at time.Time) error {
	coll, client, err := g.collection(collTravel)
	if err != nil {
		return err
	}
	opCtx, cancel := g.opCtx(ctx)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": bson.M{"$ne": models.StatusCancelled},
	}
	update := bson.M{"$set": bson.M{
		"status":       models.StatusCancelled,
		"cancelled_at": at,
		"updated_at":   at,
	}}
	res, err := coll.UpdateOne(opCtx, filter, update)
	if err != nil {
		return g.classify(client, "cancel travel booking", err)
	}
	if res.MatchedCount == 0 {
		// Unmatched means missing or already cancelled; look at the
		// record to tell which.
		if _, err := g.FindTravelBookingByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyCancelled
	}
	return nil
}

// SetTravelNotified marks the traveller notification as delivered.
func (g *Gateway) SetTravelNotified(ctx context.Context, id string) error {
	coll, client, err := g.collection(collTravel)
	if err != nil {
		return err
	}
	opCtx, cancel := g.opCtx(ctx)
	defer cancel()

	res, err := coll.UpdateOne(opCtx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"notified": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return g.classify(client, "mark travel notified", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTravelBookings returns tour bookings, newest first.
func (g *Gateway) ListTravelBookings(ctx context.Context) ([]models.TravelBooking, error) {
	coll, client, err := g.collection(collTravel)
	if err != nil {
		return nil, err
	}
	opCtx, cancel := g.opCtx(ctx)
	defer cancel()

	cursor, err := coll.Find(opCtx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, g.classify(client, "list travel bookings", err)
	}
	defer cursor.Close(opCtx)

	var bookings []models.TravelBooking
	if err := cursor.All(opCtx, &bookings); err != nil {
		return nil, g.classify(client, "list travel bookings", err)
	}
	return bookings, nil
}
