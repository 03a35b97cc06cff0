package interact

import "math/rand/v2"

// DefaultCreateChance is the percent chance of opening a new discussion
// instead of replying.
const DefaultCreateChance = 20

// Roller reports whether an event with the given percent chance happens.
type Roller func(chance int) bool

// DiceRoll rolls 1..100 and succeeds when the roll is at most chance, so 0
// never succeeds and 100 always does.
func DiceRoll(chance int) bool {
	return rand.IntN(100)+1 <= chance
}
