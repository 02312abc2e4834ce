package validators

import "go.mongodb.org/mongo-driver/bson"

var AdminValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "name", "role", "password_hash"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},
			"role": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "teacher", "manager", "master"},
			},
			"password_hash": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
		},
	},
}

var AdminRequestValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "type", "content", "requester", "status"},
		"additionalProperties": true,

		"properties": bson.M{
			"type": bson.M{
				"bsonType": "string",
				"enum":     []string{"구매", "버그"},
			},
			"content": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 1000,
			},
			"requester": bson.M{
				"bsonType":  "string",
				"maxLength": 50,
			},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"대기", "진행", "완료"},
			},
			"memo": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},
		},
	},
}

var ActivityLogValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"timestamp", "message"},
		"properties": bson.M{
			"timestamp": bson.M{"bsonType": "string"},
			"message":   bson.M{"bsonType": "string", "minLength": 1},
		},
	},
}
