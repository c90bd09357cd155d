package client

// ------------------------------
// Core domain types and payloads
// ------------------------------

// UserProfile is the backend's representation of the signed-in user. The
// session owns it exclusively and always replaces it whole, never merges.
type UserProfile struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Avatar    string `json:"avatar"`
	IsActive  bool   `json:"is_active"`
	IsAdmin   bool   `json:"is_admin"`
	Bio       string `json:"bio,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Credentials are sent form-encoded to POST /token.
type Credentials struct {
	Username string
	Password string
}

// RegisterRequest is the payload for POST /register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

// ProfileUpdate carries the editable profile fields for
// PUT /users/update-profile. The server returns the full replacement profile.
type ProfileUpdate struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Event is a campus event listing entry.
type Event struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Location        string  `json:"location"`
	MaxParticipants int     `json:"max_participants"`
	Price           float64 `json:"price"`
	IsTeamEvent     bool    `json:"is_team_event"`
	CreatedAt       string  `json:"created_at"`
	Participants    []int   `json:"participants"`
	ImageURL        string  `json:"image_url,omitempty"`
}

// Participant is one row of GET /events/{id}/participants.
type Participant struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar,omitempty"`
}

type galleryImage struct {
	ID       int    `json:"id"`
	EventID  int    `json:"event_id"`
	ImageURL string `json:"image_url"`
}

// Dish is a canteen dish.
type Dish struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Composition   string  `json:"composition,omitempty"`
	Proteins      float64 `json:"proteins,omitempty"`
	Fats          float64 `json:"fats,omitempty"`
	Carbohydrates float64 `json:"carbohydrates,omitempty"`
	Kilocalories  float64 `json:"kilocalories,omitempty"`
	Price         float64 `json:"price"`
	Photo         string  `json:"photo,omitempty"`
	CategoryID    int     `json:"category_id"`
	IsAvailable   bool    `json:"is_available,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

// DailyMenu is a dated menu referencing dishes by ID.
type DailyMenu struct {
	ID        int     `json:"id"`
	Date      string  `json:"date"`
	Price     float64 `json:"price"`
	Dishes    []int   `json:"dishes"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// Group identifies a study group in the timetable service.
type Group struct {
	ID     int    `json:"id"`
	Number string `json:"number"`
	Name   string `json:"name,omitempty"`
}

// userGroupResponse is the wire shape of GET /timetable/user/group.
type userGroupResponse struct {
	GroupID     int    `json:"group_id"`
	GroupNumber string `json:"group_number"`
	GroupName   string `json:"group_name"`
}

// NameRef is an {id, name} reference that the backend may also send as a
// bare string; see normalize.go for the decoding rules. ID 0 marks a value
// that arrived as a string and has no matching record.
type NameRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Lesson is a normalized timetable entry. Built fresh on every
// normalization pass and never mutated in place.
type Lesson struct {
	ID        int       `json:"id"`
	Subject   NameRef   `json:"subject"`
	Weekday   int       `json:"weekday"`
	Number    int       `json:"number"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	OddWeek   bool      `json:"odd_week"`
	EvenWeek  bool      `json:"even_week"`
	Teachers  []NameRef `json:"teachers"`
	Places    []NameRef `json:"places"`
}

// AssistantPrompt is the payload for POST /assistant.
type AssistantPrompt struct {
	Prompt  string `json:"prompt"`
	Context string `json:"context"`
}

type assistantAnswer struct {
	Answer string `json:"answer"`
}

type assistantHints struct {
	Hints []string `json:"hints"`
}

// assistantHistory matches GET /assistant: a list of sessions whose messages
// strictly alternate user/assistant turns.
type assistantHistory struct {
	Messages []string `json:"messages"`
}
