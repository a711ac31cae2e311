package frontend

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/orangepi5/micasr/internal/errors"
)

// CMVN holds per-dimension mean and variance parameters parsed from a
// Kaldi-style am.mvn file.
type CMVN struct {
	Mean     []float64
	Variance []float64
}

// LoadCMVN parses the <AddShift>/<Rescale> blocks of a Kaldi-format CMVN
// file. A missing file is not an error here: callers that don't have one
// simply skip normalization (ApplyCMVN is a no-op on a nil/empty CMVN).
func LoadCMVN(path string) (*CMVN, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.New(err).Component("frontend").Category(errors.CategoryInit).
			Context("path", path).Build()
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New(err).Component("frontend").Category(errors.CategoryInit).Build()
	}

	var mean, variance []float64
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "<AddShift>":
			if i+1 < len(lines) {
				mean = parseLearnRateCoefRow(lines[i+1])
			}
		case "<Rescale>":
			if i+1 < len(lines) {
				variance = parseLearnRateCoefRow(lines[i+1])
			}
		}
	}

	return &CMVN{Mean: mean, Variance: variance}, nil
}

// parseLearnRateCoefRow parses a line like:
// <LearnRateCoef> 0 [ v1 v2 v3 ... ]
// dropping the leading tag/index and trailing bracket.
func parseLearnRateCoefRow(line string) []float64 {
	fields := strings.Fields(line)
	if len(fields) < 4 || fields[0] != "<LearnRateCoef>" {
		return nil
	}
	values := fields[3:]
	if len(values) > 0 && values[len(values)-1] == "]" {
		values = values[:len(values)-1]
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		v = strings.TrimSuffix(v, "]")
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}
