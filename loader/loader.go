// Package loader fetches the county dataset once, from a local file or an
// http(s) URL, and decodes it into a projected county.Collection.
package loader

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
	"github.com/paulmach/orb/geojson"
	"github.com/rotblauer/densitymap/types/county"
	"github.com/rotblauer/densitymap/types/topo"
	"github.com/tidwall/gjson"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrHTTPStatus        = errors.New("unexpected http status")
)

// Result is the outcome of a load: either a collection or the reason there
// is none.
type Result struct {
	Source     string
	Collection *county.Collection
	Size       int64
	Err        error
}

func Loaded(source string, c *county.Collection, size int64) Result {
	return Result{Source: source, Collection: c, Size: size}
}

func Failed(source string, err error) Result {
	return Result{Source: source, Err: err}
}

func (r Result) OK() bool {
	return r.Err == nil && r.Collection != nil
}

// Load reads source and decodes the named topology object, or a GeoJSON
// feature collection, projecting every feature with proj.
// There are no retries.
func Load(ctx context.Context, source, object string, proj county.Projector) Result {
	start := time.Now()
	data, err := read(ctx, source)
	if err != nil {
		return Failed(source, err)
	}
	c, err := Decode(data, object, proj)
	if err != nil {
		return Failed(source, fmt.Errorf("decode %s: %w", source, err))
	}
	slog.Info("Loaded dataset", "source", source,
		"size", humanize.Bytes(uint64(len(data))),
		"features", humanize.Comma(int64(c.Len())),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return Loaded(source, c, int64(len(data)))
}

// Decode sniffs the document type and decodes it.
func Decode(data []byte, object string, proj county.Projector) (*county.Collection, error) {
	switch typ := gjson.GetBytes(data, "type").String(); {
	case topo.IsTopology(data):
		t, err := topo.Unmarshal(data)
		if err != nil {
			return nil, err
		}
		features, err := t.Features(object)
		if err != nil {
			return nil, err
		}
		return county.FromTopo(features, proj), nil
	case typ == "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		return county.FromGeoJSON(fc, proj)
	default:
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("%w: invalid json", ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("%w: type %q", ErrUnsupportedFormat, typ)
	}
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func read(ctx context.Context, source string) ([]byte, error) {
	var rc io.ReadCloser
	if isRemote(source) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		if res.StatusCode != http.StatusOK {
			res.Body.Close()
			return nil, fmt.Errorf("fetch %s: %w: %s", source, ErrHTTPStatus, res.Status)
		}
		rc = res.Body
	} else {
		path, err := homedir.Expand(source)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		rc = f
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return gunzip(data)
}

// gunzip inflates gzip-compressed data and passes anything else through.
func gunzip(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gzr.Close()
	return io.ReadAll(gzr)
}
