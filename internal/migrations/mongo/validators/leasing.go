package validators

import "go.mongodb.org/mongo-driver/bson"

var LeasingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"plot_id",
			"user_id",
			"owner_id",
			"from",
			"to",
			"status",
			"price_cents",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"plot_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"from": bson.M{
				"bsonType": "date",
			},

			"to": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"OPEN",
					"RESERVED",
					"REJECTED",
					"CANCELLED",
				},
			},

			"payment_session_id": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"price_cents": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"deleted_at": bson.M{
				"bsonType": []string{"date", "null"},
			},
		},
	},
}
