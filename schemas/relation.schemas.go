package schemas

// Friendship status values
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

// FriendshipSchema is one directional relationship row
type FriendshipSchema struct {
	RelationID  string `validate:"required"`
	RequesterID string `validate:"required"`
	AddresseeID string `validate:"required"`
	Status      string `validate:"required,oneof=pending accepted"`
}

// RequestSchema is a pending row addressed to the current user,
// resolved to the requester's display profile
type RequestSchema struct {
	RelationID  string
	RequesterID string
	Nickname    string
}

// OtherID returns the participant that is not userID
func (f FriendshipSchema) OtherID(userID string) string {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}

// FriendshipFromRow maps and validates a friendships row at the store boundary
func FriendshipFromRow(row map[string]interface{}) (FriendshipSchema, error) {
	friendship := FriendshipSchema{
		RelationID:  RowString(row, "relation_id"),
		RequesterID: RowString(row, "requester_id"),
		AddresseeID: RowString(row, "addressee_id"),
		Status:      RowString(row, "status"),
	}
	if err := validate.Struct(friendship); err != nil {
		return FriendshipSchema{}, err
	}
	return friendship, nil
}

// Row converts the friendship back into its store row
func (f FriendshipSchema) Row() map[string]interface{} {
	return map[string]interface{}{
		"relation_id":  f.RelationID,
		"requester_id": f.RequesterID,
		"addressee_id": f.AddresseeID,
		"status":       f.Status,
	}
}
