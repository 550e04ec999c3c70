package dice

import (
	"math/rand"
	"sync"
)

// Sides of the single die every roll uses.
const Sides = 6

// Roller produces d6 results. Injected values are consumed before the seeded
// source so tests and replays can script exact outcomes.
type Roller struct {
	mu       sync.Mutex
	seed     int64
	rng      *rand.Rand
	injected []int
	rolled   int
}

// NewRoller creates a roller seeded with seed.
func NewRoller(seed int64) *Roller {
	return &Roller{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed the roller was created with.
func (r *Roller) Seed() int64 {
	return r.seed
}

// Inject queues values to be returned by the next rolls, in order.
func (r *Roller) Inject(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.injected = append(r.injected, values...)
}

// Pending returns the injected values not yet consumed.
func (r *Roller) Pending() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.injected))
	copy(out, r.injected)
	return out
}

// Roll returns the next d6 result.
func (r *Roller) Roll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rolled++
	if len(r.injected) > 0 {
		v := r.injected[0]
		r.injected = r.injected[1:]
		return v
	}
	return r.rng.Intn(Sides) + 1
}

// Rolled counts the rolls made so far.
func (r *Roller) Rolled() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rolled
}

// Tier maps a single-roll total to weak (0), medium (1) or strong (2).
func Tier(total int) int {
	switch {
	case total >= 6:
		return 2
	case total >= 4:
		return 1
	}
	return 0
}

// Clamp keeps a modified roll inside 1..6.
func Clamp(v int) int {
	return max(1, min(Sides, v))
}
