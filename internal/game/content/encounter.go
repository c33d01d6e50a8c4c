package content

// Source is the subset of dice.Source used for encounter rolls.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Encounter size bounds for random encounters.
const (
	MinEncounterSize = 1
	MaxEncounterSize = 3
)

// RollEncounter decides whether a step on this floor triggers a random
// encounter and, if so, draws its enemies from the floor's enemy table
// (with replacement).
//
// Precondition: src must be non-nil.
// Postcondition: Returns (nil, false) when the floor has no enemies or the
// roll exceeds EncounterRate; otherwise returns between MinEncounterSize and
// MaxEncounterSize enemies and true.
func (f *Floor) RollEncounter(src Source) ([]*Enemy, bool) {
	if len(f.Enemies) == 0 || f.EncounterRate <= 0 {
		return nil, false
	}
	if src.Float64() > f.EncounterRate {
		return nil, false
	}
	count := MinEncounterSize + src.Intn(MaxEncounterSize-MinEncounterSize+1)
	out := make([]*Enemy, count)
	for i := range out {
		out[i] = f.Enemies[src.Intn(len(f.Enemies))]
	}
	return out, true
}
