package dx7

import "math"

// FeedbackMode selects how operator-0 self-feedback is applied.
type FeedbackMode int

const (
	// FeedbackModeMatrix is the default: operator 0's current
	// already-level-scaled sample is re-passed through sin() with itself
	// as a phase offset.
	FeedbackModeMatrix FeedbackMode = iota
	// FeedbackModeClassic computes sin(2π*p0 + prev*feedback/7*0.1), where
	// p0 is operator 0's current level-scaled sample and prev its previous
	// raw sine sample. It does not offset the oscillator's own phase.
	FeedbackModeClassic
)

// algoEntry is one of the 32 fixed FM topologies: the set of operator
// indices (0-based) summed at output, and a 6x6 modulation matrix where
// matrix[m][c] is the strength (0 or 1) with which operator m modulates
// operator c.
type algoEntry struct {
	carriers []int
	matrix   [6][6]int
}

// link is a shorthand for setting matrix[mod][carrier] = 1.
func link(m *[6][6]int, mod, carrier int) {
	m[mod][carrier] = 1
}

// algorithms is the canonical 32-entry DX7 algorithm table. Operator
// indices here are 0-based (operator 1 == index 0). This table must be
// reproduced verbatim; it is not derived at runtime.
var algorithms = buildAlgorithms()

func buildAlgorithms() [32]algoEntry {
	var a [32]algoEntry

	chain := func(idx int, carriers []int, links [][2]int) {
		var m [6][6]int
		for _, l := range links {
			link(&m, l[0], l[1])
		}
		a[idx-1] = algoEntry{carriers: carriers, matrix: m}
	}

	chain(1, []int{0}, [][2]int{{1, 0}, {2, 1}, {3, 2}, {4, 3}, {5, 4}})
	chain(2, []int{0, 1}, [][2]int{{2, 1}, {3, 2}, {4, 3}})
	chain(3, []int{0, 2}, [][2]int{{1, 0}, {4, 3}, {5, 4}})
	chain(4, []int{0, 3}, [][2]int{{1, 0}, {2, 1}, {5, 4}})
	chain(5, []int{0, 4}, [][2]int{{1, 0}, {2, 1}, {3, 2}})
	chain(6, []int{0, 1, 4}, [][2]int{{2, 1}, {3, 2}})
	chain(7, []int{0, 2, 4}, [][2]int{{1, 0}})
	chain(8, []int{0, 1, 2, 4}, nil)
	chain(9, []int{0, 3, 4}, [][2]int{{1, 0}, {2, 1}})
	chain(10, []int{0, 1, 3, 4}, [][2]int{{2, 1}})
	chain(11, []int{0, 2, 3, 4}, [][2]int{{1, 0}})
	chain(12, []int{0, 1, 2, 3, 4}, nil)
	chain(13, []int{0, 5}, [][2]int{{1, 0}, {2, 1}, {3, 2}, {4, 3}})
	chain(14, []int{0, 1, 5}, [][2]int{{2, 1}, {3, 2}, {4, 3}})
	chain(15, []int{0, 2, 5}, [][2]int{{1, 0}, {4, 3}})
	chain(16, []int{0, 3, 5}, [][2]int{{1, 0}, {2, 1}})
	chain(17, []int{0, 1, 3, 5}, [][2]int{{2, 1}})
	chain(18, []int{0, 2, 3, 5}, [][2]int{{1, 0}})
	chain(19, []int{0, 4, 5}, [][2]int{{1, 0}, {2, 1}, {3, 2}})
	chain(20, []int{0, 1, 4, 5}, [][2]int{{2, 1}, {3, 2}})
	chain(21, []int{0, 2, 4, 5}, [][2]int{{1, 0}})
	chain(22, []int{0, 3, 4, 5}, [][2]int{{1, 0}, {2, 1}})
	chain(23, []int{0, 1, 3, 4, 5}, [][2]int{{2, 1}})
	chain(24, []int{0, 2, 3, 4, 5}, [][2]int{{1, 0}})
	chain(25, []int{0, 1, 2, 3, 4, 5}, nil)
	chain(26, []int{0}, [][2]int{{1, 0}, {2, 1}, {3, 2}, {4, 3}, {5, 3}})
	chain(27, []int{0, 1}, [][2]int{{2, 1}, {3, 2}, {4, 3}, {5, 3}})
	chain(28, []int{0, 2}, [][2]int{{1, 0}, {3, 2}, {4, 2}, {5, 2}})
	chain(29, []int{0, 3}, [][2]int{{1, 0}, {2, 1}, {4, 3}, {5, 3}})
	chain(30, []int{0, 1, 3}, [][2]int{{2, 1}, {4, 3}, {5, 3}})
	chain(31, []int{0, 2, 3}, [][2]int{{1, 0}, {4, 3}, {5, 3}})
	chain(32, []int{0, 1, 2, 3}, [][2]int{{4, 0}, {4, 1}, {4, 2}, {4, 3}, {5, 0}, {5, 1}, {5, 2}, {5, 3}})

	return a
}

// applyFMModulation implements apply_fm_modulation: sin(2*pi*carrierFreq +
// modulatorOutput*modIndex). carrierFreq is always 1.0 here; the call sites
// pass a constant carrier phase of one full cycle, matching the reference
// fixed-point formula exactly.
func applyFMModulation(carrierFreq, modulatorOutput, modIndex float64) float64 {
	return math.Sin(2*math.Pi*carrierFreq + modulatorOutput*modIndex)
}

// processAlgorithm mixes six raw (pre-level) operator samples and their
// current total levels through the given algorithm's topology, returning
// the normalized voice output sample.
//
// feedback is the patch's raw [0,7] feedback parameter; prevOp0Raw is
// operator 0's raw sine sample from the previous render call, used only by
// FeedbackModeClassic.
func processAlgorithm(rawOut, levels [6]float64, algorithm int, feedback int, prevOp0Raw float64, mode FeedbackMode) float64 {
	if algorithm < 1 || algorithm > 32 {
		algorithm = 1
	}
	entry := algorithms[algorithm-1]

	var p [6]float64
	for i := 0; i < 6; i++ {
		p[i] = rawOut[i] * levels[i]
	}

	if feedback > 0 {
		depth := float64(feedback) / 7 * 0.1
		switch mode {
		case FeedbackModeClassic:
			p[0] = math.Sin(2*math.Pi*p[0] + prevOp0Raw*depth)
		default:
			p[0] = math.Sin(2*math.Pi*p[0] + p[0]*depth)
		}
	}

	for m := 0; m < 6; m++ {
		for c := 0; c < 6; c++ {
			if entry.matrix[m][c] == 0 {
				continue
			}
			modDepth := float64(entry.matrix[m][c]) * levels[m] * 2.0
			p[c] = applyFMModulation(1.0, p[m], modDepth)
		}
	}

	var sum float64
	for _, c := range entry.carriers {
		sum += p[c]
	}
	n := float64(len(entry.carriers))
	if n <= 0 {
		return 0
	}
	return sum / math.Sqrt(n)
}

// AlgorithmCarriers returns the 1-based operator numbers that are carriers
// (summed into the output) for the given algorithm, for diagnostics and
// patch-file validation.
func AlgorithmCarriers(algorithm int) []int {
	if algorithm < 1 || algorithm > 32 {
		algorithm = 1
	}
	out := make([]int, len(algorithms[algorithm-1].carriers))
	for i, c := range algorithms[algorithm-1].carriers {
		out[i] = c + 1
	}
	return out
}
