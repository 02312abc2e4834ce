package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	sheeterrors "gymdesk/internal/sheetstore/errors"
	mongotx "gymdesk/pkg/db/mongo"
	"gymdesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

// fakeRepo keeps the tables in a model.Snapshot.
type fakeRepo struct {
	mu        sync.Mutex
	snap      *model.Snapshot
	hashes    map[string]string
	failWith  error
	readCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{snap: model.NewSnapshot(), hashes: map[string]string{}}
}

func (f *fakeRepo) read() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCalls++
	return f.failWith
}

func (f *fakeRepo) BaseSchedule(ctx context.Context) ([]model.BaseScheduleEntry, error) {
	if err := f.read(); err != nil {
		return nil, err
	}
	return slices.Clone(f.snap.BaseSchedule), nil
}

func (f *fakeRepo) ReplaceBaseSchedule(ctx context.Context, entries []model.BaseScheduleEntry) error {
	f.snap.BaseSchedule = slices.Clone(entries)
	return nil
}

func (f *fakeRepo) Bookings(ctx context.Context) ([]model.BookingRequest, error) {
	if err := f.read(); err != nil {
		return nil, err
	}
	return slices.Clone(f.snap.WeeklySchedule), nil
}

func (f *fakeRepo) InsertBooking(ctx context.Context, booking model.BookingRequest) error {
	if i := f.snap.FindBooking(booking.ID); i >= 0 {
		f.snap.WeeklySchedule[i] = booking
		return nil
	}
	f.snap.WeeklySchedule = append(f.snap.WeeklySchedule, booking)
	return nil
}

func (f *fakeRepo) ApproveBooking(ctx context.Context, id model.ID) error {
	i := f.snap.FindBooking(id)
	if i < 0 {
		return fmt.Errorf("%w: booking %s", sheeterrors.ErrNotFound, id)
	}
	f.snap.WeeklySchedule[i].Status = model.BookingApproved
	return nil
}

func (f *fakeRepo) DeleteBooking(ctx context.Context, id model.ID) error {
	f.snap.WeeklySchedule = slices.DeleteFunc(f.snap.WeeklySchedule, func(b model.BookingRequest) bool { return b.ID == id })
	return nil
}

func (f *fakeRepo) Inventory(ctx context.Context) ([]model.InventoryItem, error) {
	if err := f.read(); err != nil {
		return nil, err
	}
	return f.snap.Clone().Inventory, nil
}

func (f *fakeRepo) InsertItem(ctx context.Context, item model.InventoryItem) error {
	f.snap.Inventory = append(f.snap.Inventory, item)
	return nil
}

func (f *fakeRepo) item(id model.ID) (*model.InventoryItem, error) {
	i := f.snap.FindItem(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: item %s", sheeterrors.ErrNotFound, id)
	}
	return &f.snap.Inventory[i], nil
}

func (f *fakeRepo) UpdateItemQuantity(ctx context.Context, id model.ID, quantity int) error {
	item, err := f.item(id)
	if err != nil {
		return err
	}
	item.Quantity = quantity
	return nil
}

func (f *fakeRepo) DeleteItem(ctx context.Context, id model.ID) error {
	f.snap.Inventory = slices.DeleteFunc(f.snap.Inventory, func(i model.InventoryItem) bool { return i.ID == id })
	return nil
}

func (f *fakeRepo) AddRental(ctx context.Context, rental model.Rental) error {
	item, err := f.item(rental.ItemID)
	if err != nil {
		return err
	}
	if item.FindRental(rental.ID) < 0 {
		item.Rentals = append(item.Rentals, rental)
	}
	return nil
}

func (f *fakeRepo) ReturnRental(ctx context.Context, rentalID model.ID) error {
	i, r := f.snap.FindRental(rentalID)
	if i < 0 {
		return fmt.Errorf("%w: rental %s", sheeterrors.ErrNotFound, rentalID)
	}
	f.snap.Inventory[i].Rentals[r].Returned = true
	return nil
}

func (f *fakeRepo) ApplyPartialReturn(ctx context.Context, p model.PartialReturnPayload) error {
	item, err := f.item(p.ItemID)
	if err != nil {
		return err
	}
	for _, id := range p.Returned {
		if r := item.FindRental(id); r >= 0 {
			item.Rentals[r].Returned = true
		}
	}
	if p.Split != nil {
		r := item.FindRental(p.Split.RentalID)
		if r < 0 {
			return fmt.Errorf("%w: rental %s", sheeterrors.ErrNotFound, p.Split.RentalID)
		}
		item.Rentals[r].Count = p.Split.Remaining
		item.Rentals = append(item.Rentals, p.Split.Returned)
	}
	return nil
}

func (f *fakeRepo) AddRepair(ctx context.Context, repair model.Repair) error {
	item, err := f.item(repair.ItemID)
	if err != nil {
		return err
	}
	item.Repairs = append(item.Repairs, repair)
	return nil
}

func (f *fakeRepo) UpdateRepair(ctx context.Context, id model.ID, status model.RepairStatus, adminMemo string) error {
	i, r := f.snap.FindRepair(id)
	if i < 0 {
		return fmt.Errorf("%w: repair %s", sheeterrors.ErrNotFound, id)
	}
	f.snap.Inventory[i].Repairs[r].Status = status
	f.snap.Inventory[i].Repairs[r].AdminMemo = adminMemo
	return nil
}

func (f *fakeRepo) Locations(ctx context.Context) ([]string, error) {
	if err := f.read(); err != nil {
		return nil, err
	}
	return slices.Clone(f.snap.Locations), nil
}

func (f *fakeRepo) AddLocation(ctx context.Context, name string) error {
	if f.snap.HasLocation(name) {
		return fmt.Errorf("%w: %s", sheeterrors.ErrLocationInUse, name)
	}
	f.snap.Locations = append(f.snap.Locations, name)
	return nil
}

func (f *fakeRepo) DeleteLocation(ctx context.Context, name string) error {
	if !f.snap.HasLocation(name) {
		return fmt.Errorf("%w: location %s", sheeterrors.ErrNotFound, name)
	}
	f.snap.Locations = slices.DeleteFunc(f.snap.Locations, func(l string) bool { return l == name })
	for i := range f.snap.Inventory {
		if f.snap.Inventory[i].Location == name {
			f.snap.Inventory[i].Location = model.NoLocation
		}
	}
	return nil
}

func (f *fakeRepo) MoveItems(ctx context.Context, ids []model.ID, location string) error {
	for i := range f.snap.Inventory {
		if slices.Contains(ids, f.snap.Inventory[i].ID) {
			f.snap.Inventory[i].Location = location
		}
	}
	return nil
}

func (f *fakeRepo) Requests(ctx context.Context) ([]model.AdminRequest, error) {
	if err := f.read(); err != nil {
		return nil, err
	}
	return slices.Clone(f.snap.AdminRequests), nil
}

func (f *fakeRepo) InsertRequest(ctx context.Context, request model.AdminRequest) error {
	f.snap.AdminRequests = append(f.snap.AdminRequests, request)
	return nil
}

func (f *fakeRepo) UpdateRequest(ctx context.Context, id model.ID, status model.RequestStatus, memo string) error {
	i := f.snap.FindRequest(id)
	if i < 0 {
		return fmt.Errorf("%w: request %s", sheeterrors.ErrNotFound, id)
	}
	f.snap.AdminRequests[i].Status = status
	f.snap.AdminRequests[i].Memo = memo
	return nil
}

func (f *fakeRepo) DeleteRequest(ctx context.Context, id model.ID) error {
	f.snap.AdminRequests = slices.DeleteFunc(f.snap.AdminRequests, func(r model.AdminRequest) bool { return r.ID == id })
	return nil
}

func (f *fakeRepo) Admins(ctx context.Context) ([]model.Admin, error) {
	if err := f.read(); err != nil {
		return nil, err
	}
	return slices.Clone(f.snap.Admins), nil
}

func (f *fakeRepo) FindAdmin(ctx context.Context, id string) (*model.Admin, error) {
	i := f.snap.FindAdmin(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: account %s", sheeterrors.ErrNotFound, id)
	}
	admin := f.snap.Admins[i]
	admin.PasswordHash = f.hashes[id]
	return &admin, nil
}

func (f *fakeRepo) InsertAdmin(ctx context.Context, admin model.Admin) error {
	if f.snap.FindAdmin(admin.ID) >= 0 {
		return fmt.Errorf("%w: %s", sheeterrors.ErrDuplicateAccount, admin.ID)
	}
	f.hashes[admin.ID] = admin.PasswordHash
	admin.PasswordHash = ""
	f.snap.Admins = append(f.snap.Admins, admin)
	return nil
}

func (f *fakeRepo) UpdateAdmin(ctx context.Context, id string, fields bson.M) error {
	i := f.snap.FindAdmin(id)
	if i < 0 {
		return fmt.Errorf("%w: account %s", sheeterrors.ErrNotFound, id)
	}
	for k, v := range fields {
		switch k {
		case "name":
			f.snap.Admins[i].Name = v.(string)
		case "role":
			f.snap.Admins[i].Role = v.(model.Role)
		case "password_hash":
			f.hashes[id] = v.(string)
		}
	}
	return nil
}

func (f *fakeRepo) DeleteAdmin(ctx context.Context, id string) error {
	if f.snap.FindAdmin(id) < 0 {
		return fmt.Errorf("%w: account %s", sheeterrors.ErrNotFound, id)
	}
	f.snap.Admins = slices.DeleteFunc(f.snap.Admins, func(a model.Admin) bool { return a.ID == id })
	delete(f.hashes, id)
	return nil
}

func (f *fakeRepo) ActivityLogs(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	if err := f.read(); err != nil {
		return nil, err
	}
	logs := slices.Clone(f.snap.ActivityLogs)
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (f *fakeRepo) AppendActivity(ctx context.Context, entry model.ActivityLog, retention int) error {
	f.snap.PrependActivity(entry, retention)
	return nil
}

func (f *fakeRepo) Greeting(ctx context.Context) (string, error) {
	if err := f.read(); err != nil {
		return "", err
	}
	return f.snap.Greeting, nil
}

func (f *fakeRepo) SetGreeting(ctx context.Context, text string) error {
	f.snap.Greeting = text
	return nil
}

func (f *fakeRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fmt.Errorf("transactions are not available in the fake")
}
