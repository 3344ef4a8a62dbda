package rugby

// DefaultConfigurationName is the name of the built-in weight configuration.
const DefaultConfigurationName = "default"

// DefaultConfigurationDescription describes the built-in weight configuration.
const DefaultConfigurationDescription = "Default scoring weights per position (1-15)"

// WeightMatrix holds one weight per statistic and position. Column i is
// position i+1.
type WeightMatrix [NumStatistics][MaxPosition]float64

// At returns the weight for statistic s at position p, or 0 for invalid input.
func (m *WeightMatrix) At(s Statistic, p int) float64 {
	if !s.Valid() || !ValidPosition(p) {
		return 0
	}
	return m[s][p-1]
}

// DefaultWeights is the built-in weight matrix.
// Forwards are rewarded for contact work, backs for distribution and breaks.
var DefaultWeights = WeightMatrix{
	//                     1     2     3     4     5     6     7     8     9     10    11    12    13    14    15
	TacklesCompleted:     {4.5, 4.5, 4.5, 5.0, 5.0, 5.5, 6.5, 5.0, 3.5, 3.0, 2.5, 4.0, 3.5, 2.5, 3.0},
	TacklesMade:          {2.0, 2.0, 2.0, 2.0, 2.0, 2.5, 3.0, 2.5, 1.5, 1.5, 1.0, 2.0, 1.8, 1.0, 1.5},
	TacklesMissed:        {-3.5, -3.5, -3.5, -4.0, -4.0, -4.5, -5.0, -4.0, -3.0, -3.0, -2.5, -3.5, -3.0, -2.5, -3.0},
	BallCarries:          {1.5, 1.5, 1.5, 1.5, 1.5, 2.0, 2.0, 2.5, 1.0, 1.5, 2.0, 2.0, 2.0, 2.0, 1.5},
	OffensiveRucks:       {3.0, 2.5, 3.0, 3.0, 3.0, 2.5, 2.5, 2.5, 0.5, 0.5, 0.5, 1.0, 0.5, 0.5, 0.5},
	PassesCompleted:      {0.3, 0.5, 0.3, 0.3, 0.3, 0.5, 0.5, 0.8, 2.0, 1.8, 1.0, 1.2, 1.2, 1.0, 1.0},
	PassesFailed:         {-1.5, -2.0, -1.5, -1.5, -1.5, -2.0, -2.0, -2.5, -5.0, -4.5, -3.5, -4.0, -4.0, -3.5, -3.5},
	TurnoversLost:        {-3.5, -3.5, -3.5, -4.0, -4.0, -4.0, -4.0, -4.5, -4.5, -5.0, -5.0, -5.0, -5.0, -5.0, -4.5},
	TurnoversWon:         {4.5, 5.0, 4.5, 5.0, 5.0, 5.5, 6.5, 5.5, 4.0, 3.5, 3.5, 4.0, 4.0, 3.5, 4.0},
	ContactWon:           {3.0, 3.0, 3.0, 3.0, 3.0, 3.5, 3.5, 4.0, 3.0, 3.5, 4.0, 4.5, 4.5, 4.0, 3.5},
	CleanBreaks:          {3.0, 3.5, 3.0, 3.5, 3.5, 4.5, 4.5, 5.0, 5.5, 6.0, 7.5, 6.5, 7.0, 7.5, 6.0},
	PenaltiesConceded:    {-5.5, -5.0, -5.5, -5.0, -5.0, -5.0, -6.0, -5.0, -4.0, -4.0, -3.5, -4.0, -4.0, -3.5, -4.0},
	KicksInPlay:          {0.5, 0.5, 0.5, 0.5, 0.5, 0.8, 0.8, 1.5, 2.5, 4.0, 2.0, 2.0, 2.0, 2.0, 3.5},
	GoodAerialReceptions: {2.0, 2.5, 2.0, 4.0, 4.0, 3.0, 3.0, 3.5, 3.0, 4.0, 4.5, 3.5, 3.5, 4.5, 5.5},
	BadAerialReceptions:  {-2.0, -2.5, -2.0, -3.5, -3.5, -3.0, -3.0, -3.0, -3.0, -3.5, -4.0, -3.5, -3.5, -4.0, -5.0},
	Tries:                {8.0, 8.5, 8.0, 9.0, 9.0, 9.5, 10.0, 10.0, 10.0, 10.5, 12.0, 11.0, 11.0, 12.0, 10.5},
}

// WeightEntry is one (statistic, position, weight) triple.
type WeightEntry struct {
	Statistic Statistic
	Position  int
	Weight    float64
}

// Entries flattens the matrix into statistic-major order.
func (m *WeightMatrix) Entries() []WeightEntry {
	out := make([]WeightEntry, 0, NumStatistics*MaxPosition)
	for s := range m {
		for i, w := range m[s] {
			out = append(out, WeightEntry{Statistic: Statistic(s), Position: i + 1, Weight: w})
		}
	}
	return out
}
