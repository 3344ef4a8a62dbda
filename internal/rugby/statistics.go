// Package rugby holds the static rugby tables shared by every calculator:
// the tracked statistics, positions, position groups and default weights.
package rugby

import "fmt"

// Statistic identifies one of the tracked per-match actions.
// The zero value is the first statistic; use Statistics() to iterate.
type Statistic int

// The tracked statistics, in canonical order.
const (
	TacklesCompleted Statistic = iota
	TacklesMade
	TacklesMissed
	BallCarries
	OffensiveRucks
	PassesCompleted
	PassesFailed
	TurnoversLost
	TurnoversWon
	ContactWon
	CleanBreaks
	PenaltiesConceded
	KicksInPlay
	GoodAerialReceptions
	BadAerialReceptions
	Tries

	// NumStatistics is the number of tracked statistics.
	NumStatistics = int(iota)
)

// Polarity tells whether an increase of a statistic is desirable.
type Polarity int

const (
	// Positive statistics are good when they go up (also used for neutral ones).
	Positive Polarity = iota
	// Negative statistics are bad when they go up.
	Negative
)

// Tier groups statistics by how much they vary between matches.
type Tier int

const (
	// Consistent statistics move little from match to match.
	Consistent Tier = iota
	// Moderate statistics show some natural variation.
	Moderate
	// Volatile statistics swing heavily (tries, breaks, kicks).
	Volatile
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case Consistent:
		return "consistent"
	case Moderate:
		return "moderate"
	case Volatile:
		return "volatile"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// StatisticInfo describes a statistic.
type StatisticInfo struct {
	Key      string // wire key, weight action name and column name
	Label    string
	Polarity Polarity
	Tier     Tier
}

var statisticTable = [NumStatistics]StatisticInfo{
	TacklesCompleted:     {Key: "tackles_positivos", Label: "Tackles Positivos", Polarity: Positive, Tier: Consistent},
	TacklesMade:          {Key: "tackles", Label: "Tackles Totales", Polarity: Positive, Tier: Consistent},
	TacklesMissed:        {Key: "tackles_errados", Label: "Tackles Errados", Polarity: Negative, Tier: Consistent},
	BallCarries:          {Key: "portador", Label: "Portador", Polarity: Positive, Tier: Moderate},
	OffensiveRucks:       {Key: "ruck_ofensivos", Label: "Ruck Ofensivos", Polarity: Positive, Tier: Consistent},
	PassesCompleted:      {Key: "pases", Label: "Pases", Polarity: Positive, Tier: Consistent},
	PassesFailed:         {Key: "pases_malos", Label: "Pases Malos", Polarity: Negative, Tier: Moderate},
	TurnoversLost:        {Key: "perdidas", Label: "Pérdidas", Polarity: Negative, Tier: Moderate},
	TurnoversWon:         {Key: "recuperaciones", Label: "Recuperaciones", Polarity: Positive, Tier: Moderate},
	ContactWon:           {Key: "gana_contacto", Label: "Gana Contacto", Polarity: Positive, Tier: Moderate},
	CleanBreaks:          {Key: "quiebres", Label: "Quiebres", Polarity: Positive, Tier: Volatile},
	PenaltiesConceded:    {Key: "penales", Label: "Penales", Polarity: Negative, Tier: Volatile},
	KicksInPlay:          {Key: "juego_pie", Label: "Juego Pie", Polarity: Positive, Tier: Volatile},
	GoodAerialReceptions: {Key: "recepcion_aire_buena", Label: "Recep. Aire (B)", Polarity: Positive, Tier: Volatile},
	BadAerialReceptions:  {Key: "recepcion_aire_mala", Label: "Recep. Aire (M)", Polarity: Negative, Tier: Volatile},
	Tries:                {Key: "try", Label: "Tries", Polarity: Positive, Tier: Volatile},
}

var statisticsByKey = func() map[string]Statistic {
	m := make(map[string]Statistic, NumStatistics)
	for i, info := range statisticTable {
		m[info.Key] = Statistic(i)
	}
	return m
}()

// Statistics returns all statistics in canonical order.
func Statistics() []Statistic {
	out := make([]Statistic, NumStatistics)
	for i := range out {
		out[i] = Statistic(i)
	}
	return out
}

// Valid reports whether s is one of the tracked statistics.
func (s Statistic) Valid() bool {
	return s >= 0 && int(s) < NumStatistics
}

// Info returns the descriptor of s. It panics for invalid statistics.
func (s Statistic) Info() StatisticInfo {
	return statisticTable[s]
}

// Key returns the wire key of s.
func (s Statistic) Key() string {
	if !s.Valid() {
		return fmt.Sprintf("statistic(%d)", int(s))
	}
	return statisticTable[s].Key
}

// String implements fmt.Stringer.
func (s Statistic) String() string {
	return s.Key()
}

// Label returns the human readable label of s.
func (s Statistic) Label() string {
	return statisticTable[s].Label
}

// Polarity returns whether an increase of s is desirable.
func (s Statistic) Polarity() Polarity {
	return statisticTable[s].Polarity
}

// Tier returns the volatility tier of s.
func (s Statistic) Tier() Tier {
	return statisticTable[s].Tier
}

// MarshalText encodes s as its wire key so maps keyed by Statistic
// serialize as {"tackles": ...}.
func (s Statistic) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid statistic %d", int(s))
	}
	return []byte(s.Key()), nil
}

// UnmarshalText decodes a wire key.
func (s *Statistic) UnmarshalText(text []byte) error {
	parsed, err := ParseStatistic(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatistic resolves a wire key.
func ParseStatistic(key string) (Statistic, error) {
	s, ok := statisticsByKey[key]
	if !ok {
		return 0, fmt.Errorf("unknown statistic %q", key)
	}
	return s, nil
}

// StatLine holds one count per statistic, indexed by Statistic.
type StatLine [NumStatistics]int

// Get returns the count for s.
func (l StatLine) Get(s Statistic) int {
	return l[s]
}

// Set stores the count for s.
func (l *StatLine) Set(s Statistic, v int) {
	l[s] = v
}

// Map returns the line keyed by wire key.
func (l StatLine) Map() map[string]int {
	m := make(map[string]int, NumStatistics)
	for i, v := range l {
		m[statisticTable[i].Key] = v
	}
	return m
}

// StatLineFromMap builds a line from wire keys. Unknown keys and negative
// counts are rejected; missing keys count as zero.
func StatLineFromMap(m map[string]int) (StatLine, error) {
	var line StatLine
	for key, v := range m {
		s, err := ParseStatistic(key)
		if err != nil {
			return StatLine{}, err
		}
		if v < 0 {
			return StatLine{}, fmt.Errorf("negative count %d for %s", v, key)
		}
		line[s] = v
	}
	return line, nil
}
