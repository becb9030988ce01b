package domain

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LoadRoster reads the city reference list: one CSV line per city in the form
//
//	name,lat,lon,population,tier
//
// where tier is A or B. Blank lines and # comments are skipped. Lines that
// fail to parse (including a column header) are skipped rather than fatal
// since roster files are hand-maintained, but a roster that yields zero
// usable entries is a KindInsufficientRoster error.
func LoadRoster(r io.Reader) ([]CityEntry, error) {
	scanner := bufio.NewScanner(r)
	var roster []CityEntry

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Header lines fail numeric parsing and drop out here too.
		entry, err := parseRosterLine(line)
		if err != nil {
			continue
		}
		roster = append(roster, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, Errorf(KindInsufficientRoster, "read roster: %w", err)
	}
	if len(roster) == 0 {
		return nil, Errorf(KindInsufficientRoster, "roster contains no usable entries")
	}
	return roster, nil
}

func parseRosterLine(line string) (CityEntry, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 5 {
		return CityEntry{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	name := strings.TrimSpace(fields[0])
	if name == "" {
		return CityEntry{}, fmt.Errorf("empty city name")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return CityEntry{}, err
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return CityEntry{}, err
	}
	pop, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return CityEntry{}, err
	}

	entry := CityEntry{Name: name, Lat: lat, Lon: lon, Population: pop}
	switch Tier(strings.ToUpper(strings.TrimSpace(fields[4]))) {
	case TierA:
		entry.Tier = TierA
	case TierB:
		entry.Tier = TierB
	default:
		return CityEntry{}, fmt.Errorf("unknown tier %q", fields[4])
	}
	return entry, nil
}
