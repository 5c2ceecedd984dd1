package match

import (
	"math/rand"
	"time"
)

// Source supplies the randomness behind the placeholder metrics (match score,
// accuracy, success rate, eligibility rate, cosmetic counts). These numbers
// stand in for a scoring model that does not exist yet and carry no
// predictive meaning. Injecting a seeded Source makes every engine output
// reproducible in tests.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// NewSource returns a Source seeded with the given value.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

func defaultSource() Source {
	return NewSource(time.Now().UnixNano())
}
