package models

// PublicationType groups publications on the dashboards.
type PublicationType string

const (
	PublicationVK    PublicationType = "VK"
	PublicationOSP   PublicationType = "OSP"
	PublicationNamma PublicationType = "NAMMA"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Publication struct {
	ID       int64           `yaml:"id" json:"id"`
	Name     string          `yaml:"name" json:"name"`
	Code     string          `yaml:"code" json:"code,omitempty"`
	Type     PublicationType `yaml:"type" json:"type"`
	Location string          `yaml:"location" json:"location,omitempty"`
}

type Machine struct {
	ID   int64  `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Code string `yaml:"code" json:"code"`
}

// DowntimeReason is a catalog entry explaining why a press stopped.
type DowntimeReason struct {
	ID       int64  `yaml:"id" json:"id"`
	Reason   string `yaml:"reason" json:"reason"`
	Code     string `yaml:"code" json:"code"`
	Category string `yaml:"category" json:"category"`
}

type NewsprintType struct {
	ID   int64  `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Code string `yaml:"code" json:"code"`
}

// User is an operator or admin. PasswordHash holds a bcrypt hash and is never serialised.
type User struct {
	ID           int64  `yaml:"id" json:"id"`
	Email        string `yaml:"email" json:"email"`
	Name         string `yaml:"name" json:"name"`
	PhoneNumber  string `yaml:"phone_number" json:"phone_number"`
	Location     string `yaml:"location" json:"location"`
	LocationCode string `yaml:"location_code" json:"location_code"`
	Role         string `yaml:"role" json:"role"`
	PasswordHash string `yaml:"password_hash" json:"-"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
