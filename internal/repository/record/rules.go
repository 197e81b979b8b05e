package record

import (
	"fmt"
	"time"

	"github.com/craftspace/catalog/internal/model"
)

// ValidatePayload applies the server-side business rules for the entity
// type. A violation is reported as an ErrValidation with a message safe
// to surface verbatim to the user.
func ValidatePayload(entity model.EntityType, p model.Payload) error {
	if !entity.Valid() {
		return fmt.Errorf("%w: unknown entity type %q", ErrValidation, entity)
	}
	if p.Image == "" {
		return fmt.Errorf("%w: image reference is required", ErrValidation)
	}

	switch entity {
	case model.EntityEvent:
		return requireAll(p,
			requireString("title"),
			requireFutureDate("date"),
		)
	case model.EntityWorkshop:
		return requireAll(p,
			requireString("title"),
			requireFutureDate("date"),
			requirePositiveNumber("capacity"),
		)
	case model.EntityProduct:
		return requireAll(p,
			requireString("title"),
			requireString("description"),
			requireNonNegativeNumber("price"),
		)
	case model.EntitySubscriptionBox:
		if err := requireAll(p,
			requireString("title"),
			requireNonNegativeNumber("price"),
		); err != nil {
			return err
		}
		return validStatus(p)
	case model.EntityProfile:
		return requireAll(p, requireString("display_name"))
	}

	return nil
}

type rule func(p model.Payload) error

func requireAll(p model.Payload, rules ...rule) error {
	for _, r := range rules {
		if err := r(p); err != nil {
			return err
		}
	}
	return nil
}

func requireString(field string) rule {
	return func(p model.Payload) error {
		s, ok := p.Fields[field].(string)
		if !ok || s == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, field)
		}
		return nil
	}
}

func requireFutureDate(field string) rule {
	return func(p model.Payload) error {
		s, ok := p.Fields[field].(string)
		if !ok || s == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, field)
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("%w: %s must be an RFC 3339 timestamp", ErrValidation, field)
		}
		if !t.After(time.Now()) {
			return fmt.Errorf("%w: %s must be in the future", ErrValidation, field)
		}
		return nil
	}
}

func requireNonNegativeNumber(field string) rule {
	return func(p model.Payload) error {
		n, ok := numberField(p, field)
		if !ok {
			return fmt.Errorf("%w: %s is required", ErrValidation, field)
		}
		if n < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, field)
		}
		return nil
	}
}

func requirePositiveNumber(field string) rule {
	return func(p model.Payload) error {
		n, ok := numberField(p, field)
		if !ok {
			return fmt.Errorf("%w: %s is required", ErrValidation, field)
		}
		if n <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrValidation, field)
		}
		return nil
	}
}

func validStatus(p model.Payload) error {
	v, ok := p.Fields["status"]
	if !ok {
		return nil
	}
	s, _ := v.(string)
	if !model.SubscriptionStatus(s).Valid() {
		return fmt.Errorf("%w: status must be one of active, paused, cancelled", ErrValidation)
	}
	return nil
}

// numberField reads a numeric field regardless of whether it arrived as
// a parsed form value or a decoded JSON number.
func numberField(p model.Payload, field string) (float64, bool) {
	switch n := p.Fields[field].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
