package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"business_id", "service_id", "staff_id", "start_at", "end_at", "status", "source", "total_price"},
		"properties": bson.M{
			"business_id": bson.M{"bsonType": "string"},
			"service_id":  bson.M{"bsonType": "string"},
			"staff_id":    bson.M{"bsonType": "string"},
			"client_id":   bson.M{"bsonType": "string"},
			"start_at":    bson.M{"bsonType": "date"},
			"end_at":      bson.M{"bsonType": "date"},
			"status": bson.M{
				"enum": []string{"pending", "confirmed", "paid", "no_show", "completed"},
			},
			"source": bson.M{
				"enum": []string{"telegram", "direct"},
			},
			"notes":       bson.M{"bsonType": "string"},
			"total_price": bson.M{"bsonType": "decimal"},
			"created_at":  bson.M{"bsonType": "date"},
		},
	},
}
