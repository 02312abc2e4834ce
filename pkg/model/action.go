package model

// ActionName tags a POST to the remote store. The payload fields are
// merged into the same JSON object as the "action" key.
type ActionName string

const (
	ActionAddBooking          ActionName = "addBooking"
	ActionApproveBooking      ActionName = "approveBooking"
	ActionDeleteBooking       ActionName = "deleteBooking"
	ActionAddInventoryItem    ActionName = "addInventoryItem"
	ActionUpdateInventoryItem ActionName = "updateInventoryItem"
	ActionDeleteInventoryItem ActionName = "deleteInventoryItem"
	ActionAddRental           ActionName = "addRental"
	ActionReturnItem          ActionName = "returnItem"
	ActionPartialReturn       ActionName = "partialReturn"
	ActionAddLocation         ActionName = "addLocation"
	ActionDeleteLocation      ActionName = "deleteLocation"
	ActionUpdateBulkLocation  ActionName = "updateBulkLocation"
	ActionAddRequest          ActionName = "addRequest"
	ActionUpdateRequest       ActionName = "updateRequest"
	ActionDeleteRequest       ActionName = "deleteRequest"
	ActionAddRepair           ActionName = "addRepair"
	ActionUpdateRepair        ActionName = "updateRepair"
	ActionReplaceBaseSchedule ActionName = "replaceBaseSchedule"
	ActionLogActivity         ActionName = "logActivity"
	ActionLogin               ActionName = "login"
	ActionRegister            ActionName = "register"
	ActionChangePassword      ActionName = "changePassword"
	ActionAdminAction         ActionName = "adminAction"
	ActionUpdateGreeting      ActionName = "updateGreeting"
	ActionUpdateProfile       ActionName = "updateProfile"
)

// Action is one remote mutation in the order it must be applied.
type Action struct {
	Name    ActionName
	Payload any
}

func NewAction(name ActionName, payload any) Action {
	return Action{Name: name, Payload: payload}
}

type BookingPayload struct {
	Data BookingRequest `json:"data"`
}

type IDPayload struct {
	ID ID `json:"id"`
}

type ItemPayload struct {
	Data InventoryItem `json:"data"`
}

type ItemQuantityPayload struct {
	ID       ID  `json:"id"`
	Quantity int `json:"quantity"`
}

type RentalPayload struct {
	Data Rental `json:"data"`
}

type ReturnPayload struct {
	RentalID ID `json:"rentalId"`
}

// PartialReturnPayload carries the outcome computed by the ledger so the
// store reproduces the exact same records, including the id of the split-off
// returned rental.
type PartialReturnPayload struct {
	ItemID   ID           `json:"itemId"`
	Class    string       `json:"class"`
	Count    int          `json:"count"`
	Returned []ID         `json:"returnedIds"`
	Split    *RentalSplit `json:"split,omitempty"`
}

type RentalSplit struct {
	RentalID  ID     `json:"rentalId"`
	Remaining int    `json:"remaining"`
	Returned  Rental `json:"returned"`
}

type LocationPayload struct {
	Location string `json:"location"`
}

type BulkLocationPayload struct {
	IDs         []ID   `json:"ids"`
	NewLocation string `json:"newLocation"`
}

type RequestPayload struct {
	Data AdminRequest `json:"data"`
}

type RequestUpdatePayload struct {
	ID     ID            `json:"id"`
	Status RequestStatus `json:"status"`
	Memo   string        `json:"memo"`
}

type RepairPayload struct {
	Data Repair `json:"data"`
}

type RepairUpdatePayload struct {
	ID        ID           `json:"id"`
	Status    RepairStatus `json:"status"`
	AdminMemo string       `json:"admin_memo"`
}

type BaseSchedulePayload struct {
	Schedule []BaseScheduleEntry `json:"schedule"`
}

type ActivityPayload struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

type LoginPayload struct {
	ID       string `json:"id" validate:"required,max=50"`
	Password string `json:"password" validate:"required,pin4"`
}

type RegisterPayload struct {
	ID       string `json:"id" validate:"required,min=1,max=50"`
	Name     string `json:"name" validate:"required,min=1,max=50"`
	Password string `json:"password" validate:"required,pin4"`
}

type ChangePasswordPayload struct {
	ID          string `json:"id" validate:"required,max=50"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,pin4"`
}

type AdminAct string

const (
	AdminApprove    AdminAct = "approve"
	AdminDelete     AdminAct = "delete"
	AdminUpdateRole AdminAct = "update_role"
)

func (a AdminAct) Valid() bool {
	return a == AdminApprove || a == AdminDelete || a == AdminUpdateRole
}

type AdminActionPayload struct {
	TargetID string   `json:"targetId"`
	Act      AdminAct `json:"act"`
	Role     Role     `json:"role,omitempty"`
}

type GreetingPayload struct {
	Text string `json:"text"`
}

type ProfilePayload struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required,min=1,max=50"`
}

// Ack is the remote store's reply to an action.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type LoginResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Role    Role   `json:"role,omitempty"`
}
