package models

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

const (
	RoomTypeSingle = "single"
	RoomTypeDouble = "double"
	RoomTypeTriple = "triple"
)

// RoomDetails is the room attribute block that is exchanged on a swap
type RoomDetails struct {
	Hostel     string   `dynamodbav:"hostel" json:"hostel" validate:"required"`
	Block      string   `dynamodbav:"block,omitempty" json:"block,omitempty"`
	RoomNumber string   `dynamodbav:"roomNumber" json:"roomNumber" validate:"required"`
	Floor      int      `dynamodbav:"floor" json:"floor" validate:"gte=0"`
	RoomType   string   `dynamodbav:"roomType" json:"roomType" validate:"required,oneof=single double triple"`
	Amenities  []string `dynamodbav:"amenities,omitempty" json:"amenities,omitempty"`
}

// RoomPreferences describes what kind of room a user is looking for
type RoomPreferences struct {
	Hostels   []string `dynamodbav:"hostels,omitempty" json:"hostels,omitempty"`
	Blocks    []string `dynamodbav:"blocks,omitempty" json:"blocks,omitempty"`
	RoomTypes []string `dynamodbav:"roomTypes,omitempty" json:"roomTypes,omitempty" validate:"dive,oneof=single double triple"`
	MinFloor  *int     `dynamodbav:"minFloor,omitempty" json:"minFloor,omitempty"`
	MaxFloor  *int     `dynamodbav:"maxFloor,omitempty" json:"maxFloor,omitempty"`
	Amenities []string `dynamodbav:"amenities,omitempty" json:"amenities,omitempty"`
}

// User is a hostel resident
type User struct {
	UserID         string           `dynamodbav:"userId" json:"userId"`
	Name           string           `dynamodbav:"name" json:"name"`
	Email          string           `dynamodbav:"email" json:"email"`
	PasswordHash   string           `dynamodbav:"passwordHash" json:"-"`
	Gender         string           `dynamodbav:"gender" json:"gender"`
	Phone          string           `dynamodbav:"phone,omitempty" json:"phone,omitempty"`
	Bio            string           `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	Year           int              `dynamodbav:"year,omitempty" json:"year,omitempty"`
	Hostel         string           `dynamodbav:"hostel,omitempty" json:"hostel,omitempty"`
	CurrentRoom    *RoomDetails     `dynamodbav:"currentRoom,omitempty" json:"currentRoom,omitempty"`
	Preferences    *RoomPreferences `dynamodbav:"preferences,omitempty" json:"preferences,omitempty"`
	ProfilePicture string           `dynamodbav:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	IsActive       bool             `dynamodbav:"isActive" json:"isActive"`
	CreatedAt      string           `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt      string           `dynamodbav:"updatedAt" json:"updatedAt"`
}

// PublicProfile is what other users get to see
type PublicProfile struct {
	UserID         string       `json:"userId"`
	Name           string       `json:"name"`
	Gender         string       `json:"gender"`
	Bio            string       `json:"bio,omitempty"`
	Year           int          `json:"year,omitempty"`
	Hostel         string       `json:"hostel,omitempty"`
	CurrentRoom    *RoomDetails `json:"currentRoom,omitempty"`
	ProfilePicture string       `json:"profilePicture,omitempty"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{
		UserID:         u.UserID,
		Name:           u.Name,
		Gender:         u.Gender,
		Bio:            u.Bio,
		Year:           u.Year,
		Hostel:         u.Hostel,
		CurrentRoom:    u.CurrentRoom,
		ProfilePicture: u.ProfilePicture,
	}
}
