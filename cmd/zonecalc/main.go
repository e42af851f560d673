// Command zonecalc computes hazard zones from local fire and wind documents
// without Kafka or the HTTP feeds. It is handy for checking a collector
// snapshot or producing fixtures.
//
// Usage:
//
//	go run ./cmd/zonecalc \
//	  -fire data/fire.json \
//	  -wind data/wind.json \
//	  -format geojson \
//	  -out zones.geojson
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/couchcryptid/smoke-zone-etl/internal/adapter/feed"
	"github.com/couchcryptid/smoke-zone-etl/internal/adapter/geojson"
	"github.com/couchcryptid/smoke-zone-etl/internal/config"
	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
	"github.com/google/uuid"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	firePath string
	windPath string
	outPath  string
	format   string
	bbox     string
	runID    string
	ext      float64
	scale    float64
	indent   bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("zonecalc", flag.ContinueOnError)
	fs.StringVar(&o.firePath, "fire", "", "path to fire.json")
	fs.StringVar(&o.windPath, "wind", "", "path to wind.json (grib2json u/v records)")
	fs.StringVar(&o.outPath, "out", "", "output path (default stdout)")
	fs.StringVar(&o.format, "format", "json", "output format: json or geojson")
	fs.StringVar(&o.bbox, "bbox", "", "optional minLon,minLat,maxLon,maxLat filter")
	fs.StringVar(&o.runID, "run-id", "", "run identifier (default random UUID)")
	fs.Float64Var(&o.ext, "ext", domain.DefaultYellowExtension, "yellow zone extension")
	fs.Float64Var(&o.scale, "scale", domain.DefaultScalingFactor, "wind scaling factor (km per m/s)")
	fs.BoolVar(&o.indent, "indent", true, "indent output")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.firePath == "" || o.windPath == "" {
		fs.Usage()
		return o, errors.New("missing required flags: -fire, -wind")
	}
	if o.format != "json" && o.format != "geojson" {
		return o, fmt.Errorf("unknown -format %q: want json or geojson", o.format)
	}
	if o.ext < 0 {
		return o, errors.New("-ext must be non-negative")
	}
	if o.scale <= 0 {
		return o, errors.New("-scale must be positive")
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	return o, nil
}

func run(args []string, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	fires, err := readFires(o.firePath)
	if err != nil {
		return err
	}
	wind, err := readWind(o.windPath)
	if err != nil {
		return err
	}

	bbox, err := config.ParseBBox(o.bbox)
	if err != nil {
		return err
	}
	fires = feed.FilterRegion(fires, feed.RegionFromBBox(bbox))

	batch, err := domain.BuildZoneBatch(o.runID, domain.Inputs{Fires: fires, Wind: wind},
		domain.DispersionParams{YellowExtension: o.ext, ScalingFactor: o.scale})
	if err != nil {
		return fmt.Errorf("compute zones: %w", err)
	}

	var out any = batch
	if o.format == "geojson" {
		out = geojson.FeatureCollection(batch)
	}

	w := stdout
	if o.outPath != "" {
		f, err := os.Create(o.outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	if o.indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if o.outPath != "" {
		fmt.Fprintf(stdout, "wrote %d zones from %d fires to %s\n", len(batch.Zones), batch.FireCount, o.outPath)
	}
	return nil
}

func readFires(path string) ([]domain.FirePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fire file: %w", err)
	}
	defer f.Close()
	return feed.DecodeFires(f)
}

func readWind(path string) (domain.WindField, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.WindField{}, fmt.Errorf("open wind file: %w", err)
	}
	defer f.Close()
	return feed.DecodeWind(f)
}
