package core

import "time"

// ProviderID identifies an integrated third-party provider.
type ProviderID string

const (
	ProviderMusic ProviderID = "music"
	ProviderPhoto ProviderID = "photo"
)

// Profile is a member profile. Personas are server-seeded profiles whose
// messages are generated rather than typed by a person.
type Profile struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	BirthDate   string         `json:"birth_date,omitempty"`
	SunSign     string         `json:"sun_sign,omitempty"`
	Bio         string         `json:"bio,omitempty"`
	IsPersona   bool           `json:"is_persona,omitempty"`
	ExtraData   map[string]any `json:"extra_data,omitempty"`
	AvatarPath  string         `json:"avatar_path,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SwipeDirection is the outcome of a swipe action.
type SwipeDirection string

const (
	SwipeLike SwipeDirection = "like"
	SwipePass SwipeDirection = "pass"
)

// Swipe records one swipe decision.
type Swipe struct {
	SwiperID  string         `json:"swiper_id"`
	TargetID  string         `json:"target_id"`
	Direction SwipeDirection `json:"direction"`
	CreatedAt time.Time      `json:"created_at"`
}

// Conversation links a member with a counterpart. When the counterpart is a
// persona, user messages arm a deferred synthetic reply.
type Conversation struct {
	ID            string    `json:"id"`
	MemberID      string    `json:"member_id"`
	CounterpartID string    `json:"counterpart_id"`
	IsPersona     bool      `json:"is_persona"`
	CreatedAt     time.Time `json:"created_at"`
}

// Message is one message within a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	AuthorID       string    `json:"author_id"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}
