package model

// Roster is the published view of one pool
type Roster struct {
	Pool Pool
	Days []RosterDay
}

// RosterDay lists the slots of one day. Trail rosters have a single day with an empty label.
type RosterDay struct {
	Day     string
	Entries []RosterEntry
}

// RosterEntry is one slot with its participants
type RosterEntry struct {
	Slot         Slot
	Taken        int
	Participants []Person
}

// Title names the sheet tab for a roster day
func (d RosterDay) Title(pool Pool) string {
	if d.Day == "" {
		return string(pool)
	}
	return string(pool) + " " + d.Day
}
