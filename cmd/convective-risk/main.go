package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/api"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/briefing"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/convective"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/ingest"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/models"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/risk"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/sounding"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/store"
)

var defaultStations = []models.Station{
	{StationID: "94866", Name: "Melbourne Airport", Latitude: -37.665, Longitude: 144.832, Elevation: 113, Source: "wyoming", Active: true},
	{StationID: "94610", Name: "Perth Airport", Latitude: -31.927, Longitude: 115.976, Elevation: 15, Source: "wyoming", Active: true},
	{StationID: "94578", Name: "Brisbane Airport", Latitude: -27.392, Longitude: 153.131, Elevation: 5, Source: "wyoming", Active: true},
	{StationID: "94672", Name: "Adelaide Airport", Latitude: -34.952, Longitude: 138.521, Elevation: 2, Source: "wyoming", Active: true},
	{StationID: "94767", Name: "Sydney Airport", Latitude: -33.946, Longitude: 151.173, Elevation: 6, Source: "wyoming", Active: false},
}

// IGRA uses its own station identifiers for the same WMO sites.
var igraStationIDs = map[string]string{
	"94866": "ASM00094866",
	"94610": "ASM00094610",
	"94578": "ASM00094578",
	"94672": "ASM00094672",
	"94767": "ASM00094767",
}

type CLI struct {
	DB string `help:"Path to SQLite database." default:"data/convrisk.db" env:"CONVRISK_DB"`

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Run the ingest scheduler and HTTP server."`
	Fetch   FetchCmd   `cmd:"" help:"Fetch and analyze soundings once, then exit."`
	Analyze AnalyzeCmd `cmd:"" help:"Analyze a sounding from a file or built-in scenario and print JSON."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("convective-risk"),
		kong.Description("Convective risk analyzer for atmospheric soundings."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli))
}

func openStore(path string) (*store.Store, func(), error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	for _, station := range defaultStations {
		if err := st.UpsertStation(station); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("upsert station %s: %w", station.StationID, err)
		}
	}

	return st, func() { db.Close() }, nil
}

func activeStationIDs(st *store.Store) ([]string, error) {
	stations, err := st.GetActiveStations()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(stations))
	for _, s := range stations {
		ids = append(ids, s.StationID)
	}
	return ids, nil
}

type ServeCmd struct {
	Port   string `help:"HTTP server port." default:"8080" env:"CONVRISK_PORT"`
	NoPoll bool   `help:"Disable the ingest scheduler (server only, for local dev)."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	st, closeDB, err := openStore(cli.DB)
	if err != nil {
		return err
	}
	defer closeDB()
	log.Println("database migrated, stations seeded")

	stationIDs, err := activeStationIDs(st)
	if err != nil {
		return err
	}

	var briefer *briefing.Generator
	if gen, err := briefing.NewGenerator(); err != nil {
		log.Printf("briefings disabled: %v", err)
	} else {
		briefer = gen
	}

	scheduler := ingest.NewScheduler(st, ingest.NewWyomingClient(), ingest.NewIGRAClient(), stationIDs)
	server := api.NewServer(st, c.Port, briefer)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !c.NoPoll {
		go scheduler.Run(ctx)
	} else {
		log.Println("polling disabled (--no-poll)")
	}

	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

type FetchCmd struct {
	IGRA  bool `help:"Backfill from the IGRA period-of-record archive instead of the Wyoming archive."`
	Limit int  `help:"Soundings per station for IGRA backfill." default:"30"`
}

func (c *FetchCmd) Run(cli *CLI) error {
	st, closeDB, err := openStore(cli.DB)
	if err != nil {
		return err
	}
	defer closeDB()

	stationIDs, err := activeStationIDs(st)
	if err != nil {
		return err
	}
	scheduler := ingest.NewScheduler(st, ingest.NewWyomingClient(), ingest.NewIGRAClient(), stationIDs)

	if c.IGRA {
		var igraIDs []string
		for _, id := range stationIDs {
			if igraID, ok := igraStationIDs[id]; ok {
				igraIDs = append(igraIDs, igraID)
			}
		}
		log.Printf("backfilling %d stations from IGRA, %d soundings each", len(igraIDs), c.Limit)
		return scheduler.BackfillIGRA(igraIDs, c.Limit)
	}

	log.Println("running single ingestion")
	return scheduler.IngestOnce()
}

type AnalyzeCmd struct {
	File     string `arg:"" optional:"" help:"Sounding file (Wyoming text or CSV). Reads stdin when omitted."`
	Scenario string `help:"Analyze a built-in scenario (low, moderate, high) instead of a file."`
	Virtual  bool   `help:"Use the virtual temperature correction."`
}

func (c *AnalyzeCmd) Run(cli *CLI) error {
	var profile *sounding.Profile
	var err error

	switch {
	case c.Scenario != "":
		profile, err = sounding.Example(c.Scenario)
	case c.File != "":
		var data []byte
		data, err = os.ReadFile(c.File)
		if err == nil {
			profile, err = sounding.Parse(string(data))
		}
	default:
		var data []byte
		data, err = io.ReadAll(os.Stdin)
		if err == nil {
			profile, err = sounding.Parse(string(data))
		}
	}
	if err != nil {
		return err
	}

	engine := convective.Engine{UseVirtualTemperature: c.Virtual}
	indices, err := engine.Compute(profile)
	if err != nil {
		return err
	}

	out := struct {
		Quality    sounding.Quality    `json:"quality"`
		Indices    *convective.Indices `json:"indices"`
		Assessment risk.Assessment     `json:"assessment"`
	}{
		Quality:    sounding.Validate(profile),
		Indices:    indices,
		Assessment: risk.Classify(indices),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
