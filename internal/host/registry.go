// Package host wires the dispatcher, downloader and query engine into a
// single task.Registry and a Wails-backed bus.HostBus, the same role the
// teacher's App/main.go pairing plays for its engine and control server.
package host

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/navigraph/navdata-interface/internal/config"
	"github.com/navigraph/navdata-interface/internal/downloader"
	"github.com/navigraph/navdata-interface/internal/geo"
	"github.com/navigraph/navdata-interface/internal/httpc"
	"github.com/navigraph/navdata-interface/internal/query"
	"github.com/navigraph/navdata-interface/internal/task"
)

// oneShotFn adapts a synchronous call into a task.Function: every query
// engine operation (§4.3) runs to completion against the already-open
// connection in a single Poll, unlike the download task which spans many
// frames.
type oneShotFn struct {
	call func(ctx context.Context) (any, error)
}

func (f oneShotFn) Poll(ctx context.Context) (bool, any, error) {
	result, err := f.call(ctx)
	return true, result, err
}

func oneShot(call func(ctx context.Context) (any, error)) task.Function {
	return oneShotFn{call: call}
}

type identInput struct {
	Ident string `json:"ident"`
}

type airportInput struct {
	AirportIdent string `json:"airport_ident"`
}

type fixInput struct {
	FixIdent    string `json:"fix_ident"`
	FixIcaoCode string `json:"fix_icao_code"`
}

type rangeInput struct {
	Center geo.Coordinates    `json:"center"`
	Range  geo.NauticalMiles  `json:"range"`
}

type sqlInput struct {
	SQL    string   `json:"sql"`
	Params []string `json:"params"`
}

type urlInput struct {
	URL string `json:"url"`
}

type batchSizeInput struct {
	BatchSize int `json:"batch_size"`
}

type integrityInput struct {
	Enabled bool `json:"enabled"`
}

func decode[T any](data json.RawMessage) (T, error) {
	var in T
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("decode function input: %w", err)
	}
	return in, nil
}

// byIdentFactory builds the Factory for the `Get<Entity>{ident}` shape.
func byIdentFactory[T any](get func(ctx context.Context, ident string) (T, error)) task.Factory {
	return func(data json.RawMessage) (task.Function, error) {
		in, err := decode[identInput](data)
		if err != nil {
			return nil, err
		}
		return oneShot(func(ctx context.Context) (any, error) { return get(ctx, in.Ident) }), nil
	}
}

// inRangeFactory builds the Factory for the `Get<Entity>InRange{center,range}` shape.
func inRangeFactory[T any](get func(ctx context.Context, center geo.Coordinates, rangeNM geo.NauticalMiles) ([]T, error)) task.Factory {
	return func(data json.RawMessage) (task.Function, error) {
		in, err := decode[rangeInput](data)
		if err != nil {
			return nil, err
		}
		return oneShot(func(ctx context.Context) (any, error) { return get(ctx, in.Center, in.Range) }), nil
	}
}

// atAirportFactory builds the Factory for the `Get<Entity>AtAirport{airport_ident}` shape.
func atAirportFactory[T any](get func(ctx context.Context, airportIdent string) ([]T, error)) task.Factory {
	return func(data json.RawMessage) (task.Function, error) {
		in, err := decode[airportInput](data)
		if err != nil {
			return nil, err
		}
		return oneShot(func(ctx context.Context) (any, error) { return get(ctx, in.AirportIdent) }), nil
	}
}

func noArgFactory[T any](get func(ctx context.Context) (T, error)) task.Factory {
	return func(data json.RawMessage) (task.Function, error) {
		return oneShot(func(ctx context.Context) (any, error) { return get(ctx) }), nil
	}
}

func airwaysAtFixFactory(e *query.Engine) task.Factory {
	return func(data json.RawMessage) (task.Function, error) {
		in, err := decode[fixInput](data)
		if err != nil {
			return nil, err
		}
		return oneShot(func(ctx context.Context) (any, error) {
			return e.GetAirwaysAtFix(ctx, in.FixIdent, in.FixIcaoCode)
		}), nil
	}
}

func executeSQLQueryFactory(e *query.Engine) task.Factory {
	return func(data json.RawMessage) (task.Function, error) {
		in, err := decode[sqlInput](data)
		if err != nil {
			return nil, err
		}
		return oneShot(func(ctx context.Context) (any, error) {
			return e.ExecuteSQLQuery(ctx, in.SQL, in.Params)
		}), nil
	}
}

func installStatusFactory(bundledDir, workDir string, client httpc.Client, vendorEndpoint string) task.Factory {
	return func(data json.RawMessage) (task.Function, error) {
		return oneShot(func(ctx context.Context) (any, error) {
			return query.GetNavigationDataInstallStatus(ctx, bundledDir, workDir, client, vendorEndpoint)
		}), nil
	}
}

func setDownloadOptionsFactory(dl *downloader.Downloader) task.Factory {
	return func(data json.RawMessage) (task.Function, error) {
		in, err := decode[batchSizeInput](data)
		if err != nil {
			return nil, err
		}
		return oneShot(func(ctx context.Context) (any, error) { return nil, dl.SetDownloadOptions(in.BatchSize) }), nil
	}
}

func setIntegrityCheckFactory(dl *downloader.Downloader, cfg *config.ConfigManager) task.Factory {
	return func(data json.RawMessage) (task.Function, error) {
		in, err := decode[integrityInput](data)
		if err != nil {
			return nil, err
		}
		return oneShot(func(ctx context.Context) (any, error) {
			dl.SetIntegrityCheckEnabled(in.Enabled)
			return nil, cfg.SetEnableIntegrityCheck(in.Enabled)
		}), nil
	}
}

func downloadFactory(dl *downloader.Downloader, e *query.Engine) task.Factory {
	return func(data json.RawMessage) (task.Function, error) {
		in, err := decode[urlInput](data)
		if err != nil {
			return nil, err
		}
		if in.URL == "" {
			return nil, fmt.Errorf("DownloadNavigationData requires a non-empty url")
		}
		return &downloadActivation{
			inner:     dl.NewDownloadTask(in.URL),
			dl:        dl,
			engine:    e,
			activeDir: dl.DestinationPath(),
		}, nil
	}
}

// BuildRegistry wires every function named in the wire contract (SPEC_FULL
// §6) against its engine/downloader implementation. bundledDir is the
// addon's prepackaged database directory; workDir is the writable
// directory the downloader extracts into.
func BuildRegistry(e *query.Engine, dl *downloader.Downloader, cfg *config.ConfigManager, bundledDir, workDir string, client httpc.Client, vendorEndpoint string) task.Registry {
	return task.Registry{
		"DownloadNavigationData":        downloadFactory(dl, e),
		"SetDownloadOptions":            setDownloadOptionsFactory(dl),
		"SetIntegrityCheckEnabled":      setIntegrityCheckFactory(dl, cfg),
		"GetNavigationDataInstallStatus": installStatusFactory(bundledDir, workDir, client, vendorEndpoint),
		"GetDatabaseInfo":                noArgFactory(e.GetDatabaseInfo),
		"ExecuteSQLQuery":                executeSQLQueryFactory(e),

		"GetAirport":          byIdentFactory(e.GetAirport),
		"GetAirportsInRange":  inRangeFactory(e.GetAirportsInRange),
		"GetWaypoints":        byIdentFactory(e.GetWaypoints),
		"GetWaypointsInRange": inRangeFactory(e.GetWaypointsInRange),
		"GetWaypointsAtAirport": atAirportFactory(e.GetWaypointsAtAirport),
		"GetVhfNavaids":        byIdentFactory(e.GetVhfNavaids),
		"GetVhfNavaidsInRange": inRangeFactory(e.GetVhfNavaidsInRange),
		"GetNdbNavaids":        byIdentFactory(e.GetNdbNavaids),
		"GetNdbNavaidsInRange": inRangeFactory(e.GetNdbNavaidsInRange),
		"GetNdbNavaidsAtAirport": atAirportFactory(e.GetNdbNavaidsAtAirport),
		"GetRunwaysAtAirport":  atAirportFactory(e.GetRunwaysAtAirport),
		"GetGatesAtAirport":    atAirportFactory(e.GetGatesAtAirport),
		"GetCommunicationsAtAirport": atAirportFactory(e.GetCommunicationsAtAirport),
		"GetCommunicationsInRange":   inRangeFactory(e.GetCommunicationsInRange),
		"GetGlsNavaidsAtAirport":     atAirportFactory(e.GetGlsNavaidsAtAirport),
		"GetPathPointsAtAirport":     atAirportFactory(e.GetPathPointsAtAirport),

		"GetAirways":          byIdentFactory(e.GetAirways),
		"GetAirwaysInRange":   inRangeFactory(e.GetAirwaysInRange),
		"GetAirwaysAtFix":     airwaysAtFixFactory(e),

		"GetControlledAirspacesInRange":   inRangeFactory(e.GetControlledAirspacesInRange),
		"GetRestrictiveAirspacesInRange":  inRangeFactory(e.GetRestrictiveAirspacesInRange),

		"GetDeparturesAtAirport": atAirportFactory(e.GetDeparturesAtAirport),
		"GetArrivalsAtAirport":   atAirportFactory(e.GetArrivalsAtAirport),
		"GetApproachesAtAirport": atAirportFactory(e.GetApproachesAtAirport),
	}
}
