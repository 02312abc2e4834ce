package mongo

import (
	"testing"

	"gymdesk/internal/sheetstore/repository"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEveryCollectionIsMigrated(t *testing.T) {
	names := []string{
		repository.BaseScheduleCollection,
		repository.BookingsCollection,
		repository.InventoryCollection,
		repository.AdminsCollection,
		repository.AdminRequestsCollection,
		repository.LocationsCollection,
		repository.ActivityLogsCollection,
		repository.SettingsCollection,
	}
	assert.Len(t, collections, len(names))
	for _, name := range names {
		assert.Contains(t, collections, name)
	}
}

func TestValidatorsUseJSONSchema(t *testing.T) {
	for name, def := range collections {
		if def.Validator == nil {
			continue
		}
		schema, ok := def.Validator["$jsonSchema"].(bson.M)
		if assert.True(t, ok, name) {
			assert.Equal(t, "object", schema["bsonType"], name)
			assert.NotEmpty(t, schema["required"], name)
		}
	}
}

func TestRentalAndRepairIdsAreIndexed(t *testing.T) {
	var keys []string
	for _, idx := range InventoryIndexes {
		for _, k := range idx.Keys.(bson.D) {
			keys = append(keys, k.Key)
		}
	}
	assert.Contains(t, keys, "rentals.id")
	assert.Contains(t, keys, "repairs.id")
}
