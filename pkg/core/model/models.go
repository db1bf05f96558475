package model

import "time"

// Pool is one of the independent allocation domains
type Pool string

const (
	PoolTrail     Pool = "trail"
	PoolMorning   Pool = "morning"
	PoolAfternoon Pool = "afternoon"
)

func (p Pool) IsValid() bool {
	return p == PoolTrail || p == PoolMorning || p == PoolAfternoon
}

// HasDays reports whether slots in this pool belong to a camp day.
// Trail slots span the whole camp and carry an empty day.
func (p Pool) HasDays() bool {
	return p != PoolTrail
}

// Admits reports whether the person belongs to the pool's eligibility partition:
// leaders take trails and morning activities, everyone else takes afternoon activities.
func (p Pool) Admits(person *Person) bool {
	if person == nil {
		return false
	}
	switch p {
	case PoolTrail, PoolMorning:
		return person.IsLeader
	case PoolAfternoon:
		return !person.IsLeader
	}
	return false
}

// Status of an assignment
type Status string

const (
	StatusAccepted Status = "accepted"
	// StatusSeaside is synthesised on read and never stored
	StatusSeaside Status = "seaside"
)

// Person is a camp participant or leader
type Person struct {
	ID       string
	Email    string
	Name     string
	Surname  string
	Group    string // Empty string if no group
	Age      *int   // nil if unknown
	IsLeader bool
}

// FullName returns "Name Surname", falling back to the email
func (p *Person) FullName() string {
	switch {
	case p.Name != "" && p.Surname != "":
		return p.Name + " " + p.Surname
	case p.Name != "":
		return p.Name
	case p.Surname != "":
		return p.Surname
	}
	return p.Email
}

// Slot is a capacity-limited activity
type Slot struct {
	ID                 int64
	Pool               Pool
	Name               string
	Description        string
	Day                string // Empty for trail slots
	Capacity           int
	Category           *int // nil if the slot has no category
	Priority           int  // -1 never auto-assigned, 0 default, higher preferred
	LanguageRestricted bool
	OlderParticipants  bool
	Theme              string // Morning listing only
}

// NeverAutoAssign is the priority sentinel excluding a slot from batch allocation
const NeverAutoAssign = -1

// Assignment links a person to a slot on a day
type Assignment struct {
	ID        string
	PersonID  string
	Pool      Pool
	Day       string
	SlotID    int64
	Status    Status
	CreatedAt time.Time
}

// SeasideOverride removes every member of Group from normal slot eligibility on Day
type SeasideOverride struct {
	Group string
	Day   string
}
