package book

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID converts an external id into the store's native ObjectID.
// Anything other than 24 hex characters yields ErrInvalidID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
