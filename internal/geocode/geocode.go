// Package geocode resolves free-text place names to coordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-explorer/internal/client"
	"github.com/kjstillabower/weather-explorer/internal/models"
	"github.com/kjstillabower/weather-explorer/internal/observability"
)

// Geocoder resolves a place name to a location.
type Geocoder interface {
	Resolve(ctx context.Context, place string) (models.Location, error)
}

// Config configures a NominatimGeocoder.
type Config struct {
	BaseURL   string // e.g. https://nominatim.openstreetmap.org/search
	UserAgent string
	Timeout   time.Duration
}

type NominatimGeocoder struct {
	baseURL string
	timeout time.Duration
	http    *resty.Client
}

func NewNominatimGeocoder(cfg Config) (*NominatimGeocoder, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid geocoder URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "weather-explorer"
	}

	r := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	return &NominatimGeocoder{baseURL: cfg.BaseURL, timeout: cfg.Timeout, http: r}, nil
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve returns the first match for place. When nothing matches it returns the zero
// Location, i.e. the (0,0) sentinel, together with client.ErrLocationNotFound.
func (g *NominatimGeocoder) Resolve(ctx context.Context, placeName string) (models.Location, error) {
	ctx, span := observability.Tracer().Start(ctx, "geocode resolve")
	defer span.End()
	span.SetAttributes(attribute.String("geocode.query", placeName))

	loc, err := g.resolve(ctx, placeName)
	if err != nil {
		category := client.CategorizeError(err)
		observability.RecordUpstreamError(observability.UpstreamGeocode, string(category))
		span.RecordError(err)
		span.SetStatus(codes.Error, string(category))
		observability.LoggerFromContext(ctx).Debug("geocode failed",
			zap.String("place", placeName), zap.String("category", string(category)), zap.Error(err))
		return models.Location{}, err
	}
	return loc, nil
}

func (g *NominatimGeocoder) resolve(ctx context.Context, placeName string) (models.Location, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var places []place
	req := g.http.R().
		SetContext(reqCtx).
		SetQueryParams(map[string]string{
			"q":      placeName,
			"format": "json",
			"limit":  "1",
		}).
		SetResult(&places).
		ForceContentType("application/json")
	if corrID := observability.CorrelationIDFromContext(ctx); corrID != "" {
		req.SetHeader("X-Correlation-ID", corrID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := req.Get(g.baseURL)
	if resp == nil || resp.RawResponse == nil {
		observability.RecordUpstreamCall(observability.UpstreamGeocode, "error", time.Since(start).Seconds())
		if err == nil {
			err = errors.New("no response")
		}
		return models.Location{}, client.ClassifyTransportError(err)
	}
	observability.RecordUpstreamCall(observability.UpstreamGeocode, observability.StatusLabel(resp.StatusCode()), time.Since(start).Seconds())

	if !resp.IsSuccess() {
		return models.Location{}, &client.UpstreamError{Upstream: "geocode", StatusCode: resp.StatusCode()}
	}
	if err != nil {
		// The round trip completed, so a failure here is resty decoding the body.
		return models.Location{}, fmt.Errorf("%w: parse geocode response: %v", client.ErrInvalidResponse, err)
	}
	if len(places) == 0 {
		return models.Location{}, fmt.Errorf("%w: %q", client.ErrLocationNotFound, placeName)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(places[0].Lat), 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("%w: lat %q", client.ErrInvalidResponse, places[0].Lat)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(places[0].Lon), 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("%w: lon %q", client.ErrInvalidResponse, places[0].Lon)
	}

	return models.Location{Lat: lat, Lon: lon, Name: places[0].DisplayName, Resolved: true}, nil
}
