package world

import "strings"

// Reserved pseudo-target ids. They name an action rather than an entity and
// never go stale.
const (
	TargetHouseSite = "BUILD_HOUSE_SITE"
	TargetCampfire  = "BUILD_CAMPFIRE"
	TargetSpear     = "CRAFT_SPEAR"
	TargetDrink     = "DRINK"
	TargetEatMeat   = "EAT_MEAT"
)

// IsReserved reports whether id is a pseudo-target.
func IsReserved(id string) bool {
	switch id {
	case TargetHouseSite, TargetCampfire, TargetSpear, TargetDrink, TargetEatMeat:
		return true
	}
	return false
}

// TargetExists reports whether a non-reserved target id still refers to a
// live entity: flora with resources left, living fauna, another agent or a
// standing building. The index must be current.
func (s *Snapshot) TargetExists(id string) bool {
	if id == "" {
		return false
	}
	if f := s.FloraByID(id); f != nil {
		return f.Available()
	}
	if f := s.FaunaByID(id); f != nil {
		return f.Alive()
	}
	if a := s.Agent(id); a != nil {
		return true
	}
	if b := s.BuildingByID(id); b != nil {
		return b.Health > 0
	}
	return false
}

// MatchPrefix resolves an abbreviated id against the candidates, returning the
// first id with that prefix. Oracle responses quote truncated ids.
func MatchPrefix(prefix string, ids []string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	for _, id := range ids {
		if id == prefix {
			return id, true
		}
	}
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			return id, true
		}
	}
	return "", false
}
