// Command genfixtures writes a self-consistent fixture set for local
// development and integration testing: one alert in each wire dialect, a
// catalog origin override, and a small city roster. The alert payloads round-
// trip through the real parser before being written, so a fixture that the
// engine would reject never lands on disk.
//
// Usage:
//
//	go run ./cmd/genfixtures -out testdata/fixtures
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/quakewatch/alert-summary/internal/domain"
)

const alertJSON = `{
  "event_id": "nc73589710",
  "shakealert_event_messages": [
    {
      "version": 0,
      "message_id": "4551",
      "mag": "3.9",
      "mag_uncer": "0.4",
      "depth": "8.0",
      "lat": "34.20",
      "lon": "-118.40",
      "num_stations": 6,
      "origin_time": "2021-05-11T14:02:07.500Z",
      "timestamp": "2021-05-11T14:02:12.100Z"
    },
    {
      "version": 1,
      "message_id": "4553",
      "mag": "4.2",
      "mag_uncer": "0.2",
      "depth": "9.5",
      "lat": "34.05",
      "lon": "-118.25",
      "num_stations": 11,
      "origin_time": "2021-05-11T14:02:07.800Z",
      "timestamp": "2021-05-11T14:02:15.400Z",
      "ground_motion_contours": [
        {"mmi": "5.0", "pga": 3.9, "pgv": 3.2, "polygon": "34.20,-118.25 34.05,-118.10 33.90,-118.25 34.05,-118.40"},
        {"mmi": "4.0", "pga": 1.4, "pgv": 1.1, "polygon": "34.35,-118.25 34.05,-117.95 33.75,-118.25 34.05,-118.55"}
      ]
    }
  ]
}
`

const alertXML = `<?xml version="1.0" encoding="UTF-8"?>
<event_message timestamp="2021-05-11T14:02:15.400Z">
  <core_info id="ew 4553">
    <mag>4.2</mag>
    <mag_uncer>0.2</mag_uncer>
    <lat>34.05</lat>
    <lon>-118.25</lon>
    <depth>9.5</depth>
    <orig_time>2021-05-11T14:02:07.800Z</orig_time>
    <num_stations>11</num_stations>
  </core_info>
  <gm_info>
    <gmcontour_pred>
      <contour>
        <MMI>5.0</MMI>
        <PGA>3.9</PGA>
        <PGV>3.2</PGV>
        <polygon>34.20,-118.25 34.05,-118.10 33.90,-118.25 34.05,-118.40</polygon>
      </contour>
      <contour>
        <MMI>4.0</MMI>
        <PGA>1.4</PGA>
        <PGV>1.1</PGV>
        <polygon>34.35,-118.25 34.05,-117.95 33.75,-118.25 34.05,-118.55</polygon>
      </contour>
    </gmcontour_pred>
  </gm_info>
</event_message>
`

const overrideJSON = `{
  "event_id": "nc73589710",
  "latitude": 34.06,
  "longitude": -118.26,
  "depth": 10.1,
  "magnitude": 4.3,
  "event_time": "2021-05-11T14:02:08Z"
}
`

const rosterCSV = `# city roster: name,lat,lon,population,tier
Los Angeles,34.0522,-118.2437,3900000,A
Long Beach,33.7701,-118.1937,460000,B
Anaheim,33.8366,-117.9143,350000,B
Pasadena,34.1478,-118.1445,140000,B
Riverside,33.9806,-117.3755,330000,B
San Diego,32.7157,-117.1611,1380000,A
Bakersfield,35.3733,-119.0187,400000,B
Fresno,36.7378,-119.7871,540000,B
`

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "testdata/fixtures", "output directory for fixture files")
	flag.Parse()

	if err := verify(); err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	files := map[string]string{
		"alert.json":    alertJSON,
		"alert.xml":     alertXML,
		"override.json": overrideJSON,
		"roster.csv":    rosterCSV,
	}
	for name, content := range files {
		path := filepath.Join(*outDir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		log.Printf("wrote %s (%d bytes)", path, len(content))
	}
	return nil
}

// verify runs every fixture through the real decoders and checks both alerts
// describe the same origin, so the pair stays interchangeable in tests.
func verify() error {
	jsonEvent, _, err := domain.Parse([]byte(alertJSON), domain.FormatJSON)
	if err != nil {
		return fmt.Errorf("json fixture: %w", err)
	}
	xmlEvent, _, err := domain.Parse([]byte(alertXML), domain.FormatXML)
	if err != nil {
		return fmt.Errorf("xml fixture: %w", err)
	}
	if jsonEvent.Lat != xmlEvent.Lat || jsonEvent.Lon != xmlEvent.Lon || jsonEvent.Magnitude != xmlEvent.Magnitude {
		return fmt.Errorf("fixture dialects diverged: json %+v vs xml %+v", jsonEvent, xmlEvent)
	}

	override, err := domain.ParseOverride([]byte(overrideJSON))
	if err != nil {
		return fmt.Errorf("override fixture: %w", err)
	}
	if _, err := domain.Reconcile(jsonEvent, override); err != nil {
		return fmt.Errorf("override fixture does not reconcile: %w", err)
	}
	return nil
}
