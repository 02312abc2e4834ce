package validators

import "go.mongodb.org/mongo-driver/bson"

var periods = []string{"1교시", "2교시", "3교시", "4교시", "점심시간", "5교시", "6교시"}

var facilities = []string{"체육관", "실내 체육실", "운동장"}

var BaseScheduleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"day", "period", "location", "class"},
		"additionalProperties": true,

		"properties": bson.M{
			"day": bson.M{
				"bsonType": "string",
				"enum":     []string{"월요일", "화요일", "수요일", "목요일", "금요일"},
			},
			"period": bson.M{
				"bsonType": "string",
				"enum":     periods,
			},
			"location": bson.M{
				"bsonType": "string",
				"enum":     facilities,
			},
			"class": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},
		},
	},
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "date", "period", "location", "class", "status"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},
			"period": bson.M{
				"bsonType": "string",
				"enum":     periods,
			},
			"location": bson.M{
				"bsonType": "string",
				"enum":     facilities,
			},
			"class": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"대기", "승인"},
			},
		},
	},
}
