package models

// Event is a hostel activity users can join
type Event struct {
	EventID     string   `dynamodbav:"eventId" json:"eventId"`
	OrganizerID string   `dynamodbav:"organizerId" json:"organizerId"`
	Title       string   `dynamodbav:"title" json:"title"`
	Description string   `dynamodbav:"description,omitempty" json:"description,omitempty"`
	Location    string   `dynamodbav:"location,omitempty" json:"location,omitempty"`
	Hostel      string   `dynamodbav:"hostel,omitempty" json:"hostel,omitempty"`
	StartsAt    string   `dynamodbav:"startsAt" json:"startsAt"`
	EndsAt      string   `dynamodbav:"endsAt" json:"endsAt"`
	Capacity    int      `dynamodbav:"capacity" json:"capacity"`
	Attendees   []string `dynamodbav:"attendees,stringset,omitempty" json:"attendees"`
	CreatedAt   string   `dynamodbav:"createdAt" json:"createdAt"`
}

// Course groups students taking the same class
type Course struct {
	CourseCode string   `dynamodbav:"courseCode" json:"courseCode"`
	Name       string   `dynamodbav:"name" json:"name"`
	Instructor string   `dynamodbav:"instructor,omitempty" json:"instructor,omitempty"`
	CreatedBy  string   `dynamodbav:"createdBy" json:"createdBy"`
	Members    []string `dynamodbav:"members,stringset,omitempty" json:"members"`
	CreatedAt  string   `dynamodbav:"createdAt" json:"createdAt"`
}
