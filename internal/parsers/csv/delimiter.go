package csv

import "strings"

// Delimiter is a CSV field separator.
type Delimiter rune

const (
	DelimiterComma     Delimiter = ','
	DelimiterSemicolon Delimiter = ';'
	DelimiterTab       Delimiter = '\t'
)

// DetectDelimiter picks the most consistent delimiter over the first few
// lines: the candidate whose per-line count is non-zero and varies least.
func DetectDelimiter(content string) Delimiter {
	var sample []string
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			sample = append(sample, trimmed)
			if len(sample) >= 5 {
				break
			}
		}
	}
	if len(sample) == 0 {
		return DelimiterComma
	}

	best := DelimiterComma
	bestScore := -1.0

	for _, delim := range []Delimiter{DelimiterComma, DelimiterSemicolon, DelimiterTab} {
		counts := make([]float64, len(sample))
		sum := 0.0
		for i, line := range sample {
			counts[i] = float64(strings.Count(line, string(delim)))
			sum += counts[i]
		}
		avg := sum / float64(len(sample))
		if avg == 0 {
			continue
		}

		variance := 0.0
		for _, c := range counts {
			variance += (c - avg) * (c - avg)
		}
		variance /= float64(len(sample))

		// Favor high average counts with low variance across lines.
		score := avg / (1 + variance)
		if score > bestScore {
			bestScore = score
			best = delim
		}
	}

	return best
}
