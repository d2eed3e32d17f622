package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownStrategy is returned by Lookup for unregistered names.
var ErrUnknownStrategy = errors.New("unknown scoring strategy")

// DefaultStrategy is used when no strategy is configured.
const DefaultStrategy = "canonical"

// Strategy maps speech rate and pitch variation to 0-100 scores. Results are
// rounded to one decimal and clamped.
type Strategy interface {
	Name() string
	Speech(wpm float64, syllables int) float64
	Pitch(f0Std float64) float64
}

var (
	mu         sync.RWMutex
	strategies = map[string]Strategy{}
)

func init() {
	Register(Canonical{})
	Register(SyllableWeighted{})
}

// Register makes s available to Lookup under s.Name().
func Register(s Strategy) {
	mu.Lock()
	defer mu.Unlock()
	strategies[s.Name()] = s
}

// Lookup returns the strategy registered under name. An empty name selects
// DefaultStrategy.
func Lookup(name string) (Strategy, error) {
	if name == "" {
		name = DefaultStrategy
	}
	mu.RLock()
	defer mu.RUnlock()
	s, ok := strategies[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// Names lists the registered strategies in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(strategies))
	for n := range strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clamp limits x to [0, 100].
func Clamp(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(100, x))
}

// Round1 rounds half away from zero to one decimal.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func finish(x float64) float64 {
	return Round1(Clamp(x))
}
