package validators

import "go.mongodb.org/mongo-driver/bson"

var TransactionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"booking_id", "amount", "type", "payment_method"},
		"properties": bson.M{
			"booking_id": bson.M{"bsonType": "string"},
			"amount":     bson.M{"bsonType": "decimal"},
			"type": bson.M{
				"enum": []string{"payment", "refund"},
			},
			"payment_method": bson.M{
				"enum": []string{"yookassa", "cash"},
			},
			"external_payment_id": bson.M{"bsonType": "string"},
			"created_at":          bson.M{"bsonType": "date"},
		},
	},
}
