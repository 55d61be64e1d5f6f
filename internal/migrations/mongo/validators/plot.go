package validators

import "go.mongodb.org/mongo-driver/bson"

var PlotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"name",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"size_m2": bson.M{
				"bsonType": "double",
				"minimum":  0,
			},

			"price_per_m2": bson.M{
				"bsonType": "double",
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
