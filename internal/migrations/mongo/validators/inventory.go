package validators

import "go.mongodb.org/mongo-driver/bson"

var rentalSchema = bson.M{
	"bsonType": "object",
	"required": []string{"id", "item_id", "class", "count", "date", "returned"},
	"properties": bson.M{
		"id":       bson.M{"bsonType": "string"},
		"item_id":  bson.M{"bsonType": "string"},
		"class":    bson.M{"bsonType": "string", "minLength": 1, "maxLength": 50},
		"count":    bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
		"date":     bson.M{"bsonType": "string"},
		"returned": bson.M{"bsonType": "bool"},
	},
}

var repairSchema = bson.M{
	"bsonType": "object",
	"required": []string{"id", "item_id", "count", "status"},
	"properties": bson.M{
		"id":      bson.M{"bsonType": "string"},
		"item_id": bson.M{"bsonType": "string"},
		"count":   bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
		"status": bson.M{
			"bsonType": "string",
			"enum":     []string{"대기", "수리중", "완료"},
		},
	},
}

var InventoryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "name", "location", "quantity"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},
			"location": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},
			"quantity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  100000,
			},
			"rentals": bson.M{
				"bsonType": []string{"array", "null"},
				"items":    rentalSchema,
			},
			"repairs": bson.M{
				"bsonType": []string{"array", "null"},
				"items":    repairSchema,
			},
		},
	},
}
