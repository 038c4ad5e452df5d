package validators

import "go.mongodb.org/mongo-driver/bson"

var ScheduleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"staff_id", "type", "day", "start_time", "end_time"},
		"properties": bson.M{
			"staff_id": bson.M{"bsonType": "string"},
			"type": bson.M{
				"enum": []string{"work", "break", "day_off"},
			},
			"day":        bson.M{"bsonType": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"start_time": bson.M{"bsonType": "string", "pattern": `^([01][0-9]|2[0-3]):[0-5][0-9]$`},
			"end_time":   bson.M{"bsonType": "string", "pattern": `^([01][0-9]|2[0-3]):[0-5][0-9]$`},
		},
	},
}
