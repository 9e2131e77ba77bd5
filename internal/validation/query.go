package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kjstillabower/weather-explorer/internal/models"
	"github.com/kjstillabower/weather-explorer/internal/units"
)

// DateLayout is the only accepted date format for query and path parameters.
const DateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("units", func(fl validator.FieldLevel) bool {
		_, err := units.Parse(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("location", validLocation)
	return v
}

type currentQuery struct {
	City  string `validate:"required,max=100,location"`
	Units string `validate:"units"`
}

type dayQuery struct {
	City  string `validate:"required,max=100,location"`
	Date  string `validate:"required,datetime=2006-01-02"`
	Units string `validate:"units"`
}

type graphQuery struct {
	Lat   string `validate:"required,latitude"`
	Lon   string `validate:"required,longitude"`
	Units string `validate:"units"`
	Date  string `validate:"required,datetime=2006-01-02"`
}

// CurrentRequest is a validated /results query.
type CurrentRequest struct {
	City  string
	Units units.System
}

// DayRequest is a validated /historical_results or /forecast_results query.
type DayRequest struct {
	City  string
	Date  time.Time
	Units units.System
}

// GraphRequest is a validated /graph path.
type GraphRequest struct {
	Location models.Location
	Units    units.System
	Date     time.Time
}

// ParseCurrent binds city and units from a query string.
func ParseCurrent(q url.Values) (CurrentRequest, error) {
	raw := currentQuery{City: strings.TrimSpace(q.Get("city")), Units: q.Get("units")}
	if err := validate.Struct(raw); err != nil {
		return CurrentRequest{}, describe(err)
	}
	system, _ := units.Parse(raw.Units)
	return CurrentRequest{City: raw.City, Units: system}, nil
}

// ParseDay binds city, date and units from a query string.
func ParseDay(q url.Values) (DayRequest, error) {
	raw := dayQuery{City: strings.TrimSpace(q.Get("city")), Date: strings.TrimSpace(q.Get("date")), Units: q.Get("units")}
	if err := validate.Struct(raw); err != nil {
		return DayRequest{}, describe(err)
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		return DayRequest{}, err
	}
	system, _ := units.Parse(raw.Units)
	return DayRequest{City: raw.City, Date: date, Units: system}, nil
}

// ParseGraph binds the /graph/{lat}/{lon}/{units}/{date} path variables.
func ParseGraph(vars map[string]string) (GraphRequest, error) {
	raw := graphQuery{Lat: vars["lat"], Lon: vars["lon"], Units: vars["units"], Date: vars["date"]}
	if err := validate.Struct(raw); err != nil {
		return GraphRequest{}, describe(err)
	}
	lat, err := ParseCoordinate(raw.Lat, 90)
	if err != nil {
		return GraphRequest{}, err
	}
	lon, err := ParseCoordinate(raw.Lon, 180)
	if err != nil {
		return GraphRequest{}, err
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		return GraphRequest{}, err
	}
	system, _ := units.Parse(raw.Units)
	return GraphRequest{
		Location: models.Location{Lat: lat, Lon: lon, Resolved: true},
		Units:    system,
		Date:     date,
	}, nil
}

// ParseDate parses YYYY-MM-DD as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidRequest, s)
	}
	return t, nil
}

// ParseCoordinate parses a decimal degree and checks it lies within [-limit, limit].
func ParseCoordinate(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < -limit || v > limit {
		return 0, fmt.Errorf("%w: coordinate %q out of range", ErrInvalidRequest, s)
	}
	return v, nil
}

// describe flattens validator errors into one ErrInvalidRequest naming the offending fields.
// A city failure wins and is returned as its sentinel.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	for _, fe := range verrs {
		if sentinel, ok := locationErrors[fe.Tag()]; ok && fe.Field() == "City" {
			return sentinel
		}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "units":
			msgs = append(msgs, fmt.Sprintf("units %q must be imperial, metric or standard", fe.Value()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s %q must be YYYY-MM-DD", field, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s %q is invalid", field, fe.Value()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}
