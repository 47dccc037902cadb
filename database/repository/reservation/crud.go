package reservationRepo

import (
	"context"
	"errors"
	"time"

	"cafedesk/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Create inserts a committed reservation and returns its ID.
func (r *mongoReservationRepo) Create(ctx context.Context, res models.Reservation) (string, error) {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	res.CreatedAt = time.Now()
	res.UpdatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, res)
	if err != nil {
		return "", err
	}
	return res.ID, nil
}

// GetByID returns a reservation by its ID.
func (r *mongoReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetByCallSID fetches all reservations committed during a specific call.
func (r *mongoReservationRepo) GetByCallSID(ctx context.Context, callSID string) ([]models.Reservation, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"callSid": callSID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reservations []models.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// DeleteByID removes a reservation by ID.
func (r *mongoReservationRepo) DeleteByID(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errors.New("reservation not found")
	}
	return nil
}
