package model

import (
	"sort"

	"gymdesk/pkg/dates"
)

// NoLocation is assigned to items whose storage location was deleted.
const NoLocation = "none"

var DefaultLocations = []string{"체육전담실", "체육관 무대 옆 창고", "체육관 무대 뒤 창고"}

type InventoryItem struct {
	ID       ID       `json:"id" bson:"_id" validate:"required"`
	Name     string   `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Location string   `json:"location" bson:"location" validate:"required,max=100"`
	Quantity int      `json:"quantity" bson:"quantity" validate:"min=0,max=100000"`
	Rentals  []Rental `json:"rentals" bson:"rentals"`
	Repairs  []Repair `json:"repairs" bson:"repairs"`
}

type Rental struct {
	ID       ID         `json:"id" bson:"id" validate:"required"`
	ItemID   ID         `json:"item_id" bson:"item_id" validate:"required"`
	Class    string     `json:"class" bson:"class" validate:"required,min=1,max=50,notdate"`
	Count    int        `json:"count" bson:"count" validate:"min=1"`
	Date     dates.Date `json:"date" bson:"date" validate:"required"`
	Returned bool       `json:"returned" bson:"returned"`
}

type Repair struct {
	ID        ID           `json:"id" bson:"id" validate:"required"`
	ItemID    ID           `json:"item_id" bson:"item_id" validate:"required"`
	Count     int          `json:"count" bson:"count" validate:"min=1"`
	Date      dates.Date   `json:"date" bson:"date"`
	Requester string       `json:"requester" bson:"requester" validate:"required,max=50"`
	Memo      string       `json:"memo" bson:"memo" validate:"max=500"`
	Status    RepairStatus `json:"status" bson:"status" validate:"required,enum"`
	AdminMemo string       `json:"admin_memo" bson:"admin_memo" validate:"max=500"`
}

// RentedCount is the number of units out on active rentals.
func (i *InventoryItem) RentedCount() int {
	total := 0
	for _, r := range i.Rentals {
		if !r.Returned {
			total += r.Count
		}
	}
	return total
}

// RepairingCount is the number of units held by repairs that are not done.
// A pending ticket already removes its units from circulation.
func (i *InventoryItem) RepairingCount() int {
	total := 0
	for _, r := range i.Repairs {
		if r.Status != RepairDone {
			total += r.Count
		}
	}
	return total
}

func (i *InventoryItem) Available() int {
	return i.Quantity - i.RentedCount() - i.RepairingCount()
}

// ActiveRentals returns the indexes of the borrower's unreturned rentals,
// oldest first. Rentals on the same day keep their insertion order.
func (i *InventoryItem) ActiveRentals(borrower string) []int {
	var idx []int
	for n, r := range i.Rentals {
		if !r.Returned && r.Class == borrower {
			idx = append(idx, n)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return i.Rentals[idx[a]].Date.Before(i.Rentals[idx[b]].Date)
	})
	return idx
}

func (i *InventoryItem) FindRental(id ID) int {
	for n := range i.Rentals {
		if i.Rentals[n].ID == id {
			return n
		}
	}
	return -1
}

func (i *InventoryItem) FindRepair(id ID) int {
	for n := range i.Repairs {
		if i.Repairs[n].ID == id {
			return n
		}
	}
	return -1
}
