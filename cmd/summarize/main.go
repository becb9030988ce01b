// Command summarize runs the summary engine once over a single alert message
// and prints the result, for operators reviewing an event after the fact.
//
// Usage:
//
//	summarize -alert event.json -roster cities.csv [-override origin.json] [-geojson]
//
// Exit codes distinguish the failure taxonomy so wrapping scripts can react
// without parsing stderr:
//
//	2 malformed message
//	3 invalid coordinate
//	4 incompatible override
//	5 insufficient roster
//	6 degenerate contour input
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/quakewatch/alert-summary/internal/config"
	"github.com/quakewatch/alert-summary/internal/domain"
	"github.com/quakewatch/alert-summary/internal/engine"
	"github.com/quakewatch/alert-summary/internal/observability"
	"github.com/quakewatch/alert-summary/internal/render"
)

func main() {
	alertPath := flag.String("alert", "", "path to the alert message (JSON or XML dialect), or - for stdin")
	formatName := flag.String("format", "auto", "wire dialect of the alert: auto, json, or xml")
	overridePath := flag.String("override", "", "path to a catalog origin override record (optional)")
	rosterPath := flag.String("roster", "", "path to the city roster CSV")
	configPath := flag.String("config", "", "path to config file (optional)")
	asGeoJSON := flag.Bool("geojson", false, "emit the GeoJSON document instead of the text summary")
	flag.Parse()

	if *alertPath == "" || *rosterPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	if code := run(*alertPath, *formatName, *overridePath, *rosterPath, *configPath, *asGeoJSON); code != 0 {
		os.Exit(code)
	}
}

func run(alertPath, formatName, overridePath, rosterPath, configPath string, asGeoJSON bool) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "summarize: %v\n", err)
		return 1
	}

	alert, err := readInput(alertPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "summarize: read alert: %v\n", err)
		return 1
	}

	format, err := parseFormat(formatName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "summarize: %v\n", err)
		return 1
	}

	var override *domain.OriginOverride
	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "summarize: read override: %v\n", err)
			return 1
		}
		if override, err = domain.ParseOverride(data); err != nil {
			fmt.Fprintf(os.Stderr, "summarize: %v\n", err)
			return exitCode(err)
		}
	}

	roster, err := loadRoster(rosterPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "summarize: %v\n", err)
		return exitCode(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(roster, cfg.Thresholds.ProximityOptions(), cfg.Thresholds.ContourOptions(),
		logger, observability.NewMetricsForTesting())

	report, err := eng.Summarize(context.Background(), engine.RunInput{
		Alert:    alert,
		Format:   format,
		Override: override,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "summarize: %v\n", err)
		return exitCode(err)
	}

	if asGeoJSON {
		doc, err := render.GeoJSON(report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "summarize: %v\n", err)
			return 1
		}
		os.Stdout.Write(doc)
		fmt.Println()
		return 0
	}

	fmt.Print(render.Text(report))
	return 0
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func parseFormat(name string) (domain.Format, error) {
	switch name {
	case "auto", "":
		return domain.FormatAuto, nil
	case "json":
		return domain.FormatJSON, nil
	case "xml":
		return domain.FormatXML, nil
	default:
		return domain.FormatAuto, fmt.Errorf("unknown format %q (want auto, json, or xml)", name)
	}
}

func loadRoster(path string) ([]domain.CityEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.Errorf(domain.KindInsufficientRoster, "open roster: %w", err)
	}
	defer f.Close()
	return domain.LoadRoster(f)
}

func exitCode(err error) int {
	switch domain.KindOf(err) {
	case domain.KindMalformedMessage:
		return 2
	case domain.KindInvalidCoordinate:
		return 3
	case domain.KindIncompatibleOverride:
		return 4
	case domain.KindInsufficientRoster:
		return 5
	case domain.KindDegenerateContour:
		return 6
	default:
		return 1
	}
}
