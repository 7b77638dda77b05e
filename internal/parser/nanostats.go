package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/errors"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/models"
)

// number matches a decimal with optional thousands separators.
const number = `([0-9][0-9,]*(?:\.[0-9]*)?)`

// statRule maps a report label to a NanoStats field.
type statRule struct {
	label string
	re    *regexp.Regexp
	set   func(*models.NanoStats, float64)
}

func newStatRule(label string, set func(*models.NanoStats, float64)) statRule {
	return statRule{
		label: label,
		re:    regexp.MustCompile(regexp.QuoteMeta(label) + `:\s+` + number),
		set:   set,
	}
}

// statRules is the label table for the scalar fields. Adding a label
// means adding a row here.
var statRules = []statRule{
	newStatRule("Mean read length", func(s *models.NanoStats, v float64) { s.MeanReadLength = &v }),
	newStatRule("Mean read quality", func(s *models.NanoStats, v float64) { s.MeanReadQuality = &v }),
	newStatRule("Median read length", func(s *models.NanoStats, v float64) { s.MedianReadLength = &v }),
	newStatRule("Median read quality", func(s *models.NanoStats, v float64) { s.MedianReadQuality = &v }),
	newStatRule("Number of reads", func(s *models.NanoStats, v float64) { n := int(v); s.NumberOfReads = &n }),
	newStatRule("Read length N50", func(s *models.NanoStats, v float64) { s.ReadLengthN50 = &v }),
	newStatRule("STDEV read length", func(s *models.NanoStats, v float64) { s.StdevReadLength = &v }),
	newStatRule("Total bases", func(s *models.NanoStats, v float64) { s.TotalBases = &v }),
}

// qualityCutoffRe matches rows like ">Q10:   500 (12.34%) 1.50Mb".
var qualityCutoffRe = regexp.MustCompile(`>Q(\d+):\s+([0-9][0-9,]*)\s+\(([0-9.]+)%\)\s+([0-9.]+)Mb`)

// ParseNanoStats extracts read statistics from the text of a NanoStats
// report. Labels absent from the text leave their field nil.
func ParseNanoStats(text string) (*models.NanoStats, error) {
	const op errors.Op = "parser.ParseNanoStats"

	stats := &models.NanoStats{QualityCutoffs: map[string]models.QualityCutoff{}}

	for _, rule := range statRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := parseNumber(m[1])
		if err != nil {
			return nil, errors.E(op, errors.KindParse, err, fmt.Sprintf("invalid value for %q", rule.label))
		}
		rule.set(stats, v)
	}

	for _, m := range qualityCutoffRe.FindAllStringSubmatch(text, -1) {
		reads, err := parseNumber(m[2])
		if err != nil {
			return nil, errors.E(op, errors.KindParse, err, "invalid read count for >Q"+m[1])
		}
		pct, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return nil, errors.E(op, errors.KindParse, err, "invalid percentage for >Q"+m[1])
		}
		mb, err := strconv.ParseFloat(m[4], 64)
		if err != nil {
			return nil, errors.E(op, errors.KindParse, err, "invalid megabases for >Q"+m[1])
		}
		stats.QualityCutoffs["Q"+m[1]] = models.QualityCutoff{
			Reads:      int(reads),
			Percentage: pct,
			Megabases:  mb,
		}
	}

	return stats, nil
}

// ReadNanoStats parses the NanoStats report at runRoot/directory/filename.
// It returns (nil, nil) when the report does not exist.
func ReadNanoStats(runRoot, directory, filename string) (*models.NanoStats, error) {
	const op errors.Op = "parser.ReadNanoStats"

	if filename == "" {
		return nil, nil
	}

	data, err := readArtifact(op, filepath.Join(runRoot, directory, filename))
	if err != nil || data == nil {
		return nil, err
	}

	stats, err := ParseNanoStats(string(data))
	if err != nil {
		return nil, errors.Wrap(op, err)
	}
	return stats, nil
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}
