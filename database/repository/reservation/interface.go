package reservationRepo

import (
	"context"

	"cafedesk/database"
	"cafedesk/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationRepository interface {
	Create(ctx context.Context, res models.Reservation) (string, error)
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	GetByCallSID(ctx context.Context, callSID string) ([]models.Reservation, error)
	DeleteByID(ctx context.Context, id string) error
}

type mongoReservationRepo struct {
	coll *mongo.Collection
}

// NewMongoReservationRepo returns a new ReservationRepository instance using MongoDB.
func NewMongoReservationRepo() ReservationRepository {
	db := database.MongoClient.Database("cafedesk")
	return &mongoReservationRepo{
		coll: db.Collection("reservations"),
	}
}
