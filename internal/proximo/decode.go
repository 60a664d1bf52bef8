package proximo

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/neugierig/proximo/internal/models"
)

// envelope is the wrapper every list endpoint returns.
type envelope struct {
	Items *[]json.RawMessage `json:"items"`
}

// Wire records use pointers so a missing field can be told apart from a zero
// value.

type routeRecord struct {
	DisplayName *string `json:"display_name"`
	ID          *string `json:"id"`
}

func (r routeRecord) model() (models.Route, error) {
	if err := requireFields(field{"display_name", r.DisplayName}, field{"id", r.ID}); err != nil {
		return models.Route{}, err
	}
	return models.NewRoute(*r.ID, *r.DisplayName), nil
}

type runRecord struct {
	DisplayName *string `json:"display_name"`
	ID          *string `json:"id"`
	RouteID     *string `json:"route_id"`
	DisplayInUI *bool   `json:"display_in_ui"`
}

func (r runRecord) model() (models.Run, error) {
	err := requireFields(
		field{"display_name", r.DisplayName},
		field{"id", r.ID},
		field{"route_id", r.RouteID},
		field{"display_in_ui", r.DisplayInUI},
	)
	if err != nil {
		return models.Run{}, err
	}
	return models.NewRun(*r.ID, *r.RouteID, *r.DisplayName, *r.DisplayInUI), nil
}

type stopRecord struct {
	DisplayName *string `json:"display_name"`
	ID          *string `json:"id"`
}

func (r stopRecord) model() (models.Stop, error) {
	if err := requireFields(field{"display_name", r.DisplayName}, field{"id", r.ID}); err != nil {
		return models.Stop{}, err
	}
	return models.NewStop(*r.ID, *r.DisplayName), nil
}

type predictionRecord struct {
	RouteID     *string `json:"route_id"`
	RunID       *string `json:"run_id"`
	Minutes     *int    `json:"minutes"`
	IsDeparting *bool   `json:"is_departing"`
}

func (r predictionRecord) model() (models.Prediction, error) {
	err := requireFields(
		field{"route_id", r.RouteID},
		field{"run_id", r.RunID},
		field{"minutes", r.Minutes},
		field{"is_departing", r.IsDeparting},
	)
	if err != nil {
		return models.Prediction{}, err
	}
	if *r.Minutes < 0 {
		return models.Prediction{}, fmt.Errorf("field %q is negative: %d", "minutes", *r.Minutes)
	}
	return models.NewPrediction(*r.RouteID, *r.RunID, *r.Minutes, *r.IsDeparting), nil
}

type field struct {
	name  string
	value any
}

func requireFields(fields ...field) error {
	for _, f := range fields {
		if isNilPointer(f.value) {
			return fmt.Errorf("missing required field %q", f.name)
		}
	}
	return nil
}

func isNilPointer(v any) bool {
	switch p := v.(type) {
	case *string:
		return p == nil
	case *bool:
		return p == nil
	case *int:
		return p == nil
	default:
		return v == nil
	}
}

var errMissingItems = errors.New(`missing "items" array`)

// decodeList parses an {"items": [...]} envelope, converting every record
// with toModel. Any malformed record fails the whole body.
func decodeList[R any, T any](path string, body []byte, toModel func(R) (T, error)) ([]T, error) {
	if !utf8.Valid(body) {
		return nil, &DecodeError{Path: path, Err: errors.New("body is not valid UTF-8")}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if env.Items == nil {
		return nil, &DecodeError{Path: path, Err: errMissingItems}
	}

	items := make([]T, 0, len(*env.Items))
	for i, raw := range *env.Items {
		var record R
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("item %d: %w", i, err)}
		}
		item, err := toModel(record)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("item %d: %w", i, err)}
		}
		items = append(items, item)
	}
	return items, nil
}

// decodeEntry parses a single bare record as returned by the per-entity
// endpoints.
func decodeEntry[R any, T any](path string, body []byte, toModel func(R) (T, error)) (T, error) {
	var zero T
	if !utf8.Valid(body) {
		return zero, &DecodeError{Path: path, Err: errors.New("body is not valid UTF-8")}
	}

	var record R
	if err := json.Unmarshal(body, &record); err != nil {
		return zero, &DecodeError{Path: path, Err: err}
	}
	item, err := toModel(record)
	if err != nil {
		return zero, &DecodeError{Path: path, Err: err}
	}
	return item, nil
}
