package allocator

import (
	"math/rand"

	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// DefaultMinorAgeThreshold is the age below which OlderParticipants slots are off limits
const DefaultMinorAgeThreshold = 16

// DefaultMaxPerPerson is the afternoon quota used when the caller doesn't provide one
const DefaultMaxPerPerson = 4

// Chooser is the source of randomness for tie-breaks and backfill shuffles.
// *rand.Rand satisfies it.
type Chooser interface {
	// Intn returns a uniform integer in [0, n)
	Intn(n int) int
	// Shuffle permutes n elements using swap
	Shuffle(n int, swap func(i, j int))
}

// NewChooser returns a Chooser seeded for reproducible runs
func NewChooser(seed int64) Chooser {
	return rand.New(rand.NewSource(seed))
}

// Policy holds the configurable parts of the exclusion rules
type Policy struct {
	// LanguageRestrictedGroups may only take language-flagged slots
	LanguageRestrictedGroups []string

	// MinorAgeThreshold is the age below which OlderParticipants slots are rejected
	MinorAgeThreshold int
}

// DefaultPolicy returns a policy with no restricted groups and the standard minor threshold
func DefaultPolicy() Policy {
	return Policy{MinorAgeThreshold: DefaultMinorAgeThreshold}
}

// State is everything the exclusion rules read
type State struct {
	Registry  *SlotRegistry
	Occupancy *Occupancy
	Policy    Policy

	restricted map[string]bool
}

// NewState builds the rule state for one pool
func NewState(registry *SlotRegistry, occupancy *Occupancy, policy Policy) *State {
	if policy.MinorAgeThreshold == 0 {
		policy.MinorAgeThreshold = DefaultMinorAgeThreshold
	}
	restricted := make(map[string]bool, len(policy.LanguageRestrictedGroups))
	for _, g := range policy.LanguageRestrictedGroups {
		restricted[g] = true
	}
	return &State{
		Registry:   registry,
		Occupancy:  occupancy,
		Policy:     policy,
		restricted: restricted,
	}
}

// IsLanguageRestricted reports whether the group may only take language-flagged slots
func (s *State) IsLanguageRestricted(group string) bool {
	return group != "" && s.restricted[group]
}

// PersonState tracks what a person already holds within one pool
type PersonState struct {
	Person     *model.Person
	Days       map[string]bool
	Categories map[int]bool
	Count      int
}

// NewPersonState derives days, category history and count from the person's assignments.
// Categories come from the registry; assignments to unknown slots count but carry no category.
func NewPersonState(person *model.Person, registry *SlotRegistry, assignments []model.Assignment) *PersonState {
	ps := &PersonState{
		Person:     person,
		Days:       make(map[string]bool),
		Categories: make(map[int]bool),
	}
	for _, a := range assignments {
		if a.PersonID != person.ID {
			continue
		}
		ps.Count++
		ps.Days[a.Day] = true
		if category := registry.Category(a.SlotID); category != nil {
			ps.Categories[*category] = true
		}
	}
	return ps
}

// HasDay reports whether the person already holds an assignment on the day
func (ps *PersonState) HasDay(day string) bool {
	return ps.Days[day]
}

// HasCategory reports whether the category was already consumed
func (ps *PersonState) HasCategory(category int) bool {
	return ps.Categories[category]
}

// Record notes a new assignment
func (ps *PersonState) Record(slot *model.Slot, day string) {
	ps.Count++
	ps.Days[day] = true
	if slot.Category != nil {
		ps.Categories[*slot.Category] = true
	}
}

// SeasideIndex answers "is this group at the seaside on this day"
type SeasideIndex map[string]map[string]bool

// NewSeasideIndex indexes the overrides by group then day
func NewSeasideIndex(overrides []model.SeasideOverride) SeasideIndex {
	idx := make(SeasideIndex)
	for _, o := range overrides {
		if o.Group == "" || o.Day == "" {
			continue
		}
		if idx[o.Group] == nil {
			idx[o.Group] = make(map[string]bool)
		}
		idx[o.Group][o.Day] = true
	}
	return idx
}

// Applies reports whether the person is unavailable on the day. Persons without a group never are.
func (s SeasideIndex) Applies(person *model.Person, day string) bool {
	if person == nil || person.Group == "" {
		return false
	}
	return s[person.Group][day]
}

// groupAssignments buckets assignments by person id
func groupAssignments(assignments []model.Assignment) map[string][]model.Assignment {
	byPerson := make(map[string][]model.Assignment)
	for _, a := range assignments {
		byPerson[a.PersonID] = append(byPerson[a.PersonID], a)
	}
	return byPerson
}
