// Package obs parses locally stored hourly sea-level observation files and
// compares them against engine output. Files use the fixed-width hourly
// format distributed by Japanese tide-station archives: 24 three-digit
// values in centimeters, then a two-digit year, month, day and station code.
// Only local files are read.
package obs

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// JST is the fixed +09:00 zone hourly records are stamped in.
var JST = time.FixedZone("JST", 9*60*60)

const lineWidth = 80

// DayRecord is one day of hourly observed heights in centimeters.
type DayRecord struct {
	Station string
	Day     time.Time // start of day in JST
	LevelCm [24]float64
	Valid   [24]bool
}

// Sample is a single timestamped observation.
type Sample struct {
	Time    time.Time
	LevelCm float64
}

// ParseLine decodes one fixed-width record line.
func ParseLine(line string) (*DayRecord, error) {
	if len(line) < lineWidth {
		return nil, fmt.Errorf("line too short: %d", len(line))
	}
	var rec DayRecord

	for i := 0; i < 24; i++ {
		chunk := strings.TrimSpace(line[3*i : 3*i+3])
		if chunk == "" || chunk == "999" {
			rec.Valid[i] = false
			continue
		}
		v, err := strconv.Atoi(chunk)
		if err != nil {
			return nil, fmt.Errorf("invalid hourly value %q at hour %d: %w", chunk, i, err)
		}
		rec.LevelCm[i] = float64(v)
		rec.Valid[i] = true
	}

	year, err := strconv.Atoi(strings.TrimSpace(line[72:74]))
	if err != nil {
		return nil, fmt.Errorf("invalid year field: %w", err)
	}
	month, err := strconv.Atoi(strings.TrimSpace(line[74:76]))
	if err != nil {
		return nil, fmt.Errorf("invalid month field: %w", err)
	}
	day, err := strconv.Atoi(strings.TrimSpace(line[76:78]))
	if err != nil {
		return nil, fmt.Errorf("invalid day field: %w", err)
	}

	// Two-digit years: 70 and above are 1900s.
	fullYear := 2000 + year
	if year >= 70 {
		fullYear = 1900 + year
	}

	rec.Station = strings.TrimSpace(line[78:80])
	rec.Day = time.Date(fullYear, time.Month(month), day, 0, 0, 0, 0, JST)
	return &rec, nil
}

// ReadStation scans r for records of one station, skipping unparseable
// lines.
func ReadStation(r io.Reader, station string) ([]DayRecord, error) {
	station = strings.TrimSpace(station)
	scanner := bufio.NewScanner(r)
	records := make([]DayRecord, 0, 366)

	for scanner.Scan() {
		rec, err := ParseLine(scanner.Text())
		if err != nil {
			continue
		}
		if rec.Station == station {
			records = append(records, *rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan observation data: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records for station %s", station)
	}
	return records, nil
}

// ReadStationFile reads a station's records from a local file.
func ReadStationFile(path, station string) ([]DayRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open observation file: %w", err)
	}
	defer f.Close()
	return ReadStation(f, station)
}

// Samples flattens day records into timestamped samples, dropping invalid
// hours.
func Samples(records []DayRecord) []Sample {
	out := make([]Sample, 0, len(records)*24)
	for _, rec := range records {
		for h := 0; h < 24; h++ {
			if !rec.Valid[h] {
				continue
			}
			out = append(out, Sample{
				Time:    rec.Day.Add(time.Duration(h) * time.Hour),
				LevelCm: rec.LevelCm[h],
			})
		}
	}
	return out
}

// Comparison summarizes predicted-versus-observed agreement. Bias is mean
// (predicted - observed); a positive value means the engine runs high.
type Comparison struct {
	Samples int
	BiasCm  float64
	RMSECm  float64
	MaxCm   float64
}

// Compare evaluates a prediction function against observed samples. The mean
// is removed from both series first, so differing vertical datums do not
// dominate the error.
func Compare(samples []Sample, predict func(time.Time) float64) (Comparison, error) {
	if len(samples) == 0 {
		return Comparison{}, fmt.Errorf("no observation samples")
	}

	predicted := make([]float64, len(samples))
	var meanObs, meanPred float64
	for i, s := range samples {
		predicted[i] = predict(s.Time)
		meanObs += s.LevelCm
		meanPred += predicted[i]
	}
	meanObs /= float64(len(samples))
	meanPred /= float64(len(samples))

	var sumDiff, sumSq, maxAbs float64
	for i, s := range samples {
		diff := (predicted[i] - meanPred) - (s.LevelCm - meanObs)
		sumDiff += diff
		sumSq += diff * diff
		if a := math.Abs(diff); a > maxAbs {
			maxAbs = a
		}
	}

	n := float64(len(samples))
	return Comparison{
		Samples: len(samples),
		BiasCm:  sumDiff / n,
		RMSECm:  math.Sqrt(sumSq / n),
		MaxCm:   maxAbs,
	}, nil
}
