package model

// EntityType identifies a kind of catalog record.
type EntityType string

const (
	EntityEvent           EntityType = "event"
	EntityWorkshop        EntityType = "workshop"
	EntityProduct         EntityType = "product"
	EntitySubscriptionBox EntityType = "subscription-box"
	EntityProfile         EntityType = "profile"
)

// imageCategories maps each entity type to the storage subdirectory
// its images live under.
var imageCategories = map[EntityType]string{
	EntityEvent:           "events",
	EntityWorkshop:        "workshops",
	EntityProduct:         "products",
	EntitySubscriptionBox: "subscription-boxes",
	EntityProfile:         "profiles",
}

// displayNames maps each entity type to the name shown in user-facing messages.
var displayNames = map[EntityType]string{
	EntityEvent:           "Event",
	EntityWorkshop:        "Workshop",
	EntityProduct:         "Product",
	EntitySubscriptionBox: "Subscription box",
	EntityProfile:         "Profile",
}

// placeholders maps each entity type to its default image reference.
// These are well-known objects that are never deleted.
var placeholders = map[EntityType]string{
	EntityEvent:           "/images/defaults/event.png",
	EntityWorkshop:        "/images/defaults/workshop.png",
	EntityProduct:         "/images/defaults/product.png",
	EntitySubscriptionBox: "/images/defaults/subscription-box.png",
	EntityProfile:         "/images/defaults/profile.png",
}

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	_, ok := imageCategories[t]
	return ok
}

// Category returns the image storage category for the entity type.
func (t EntityType) Category() string {
	return imageCategories[t]
}

// DisplayName returns the user-facing name for the entity type.
func (t EntityType) DisplayName() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return string(t)
}

// Placeholder returns the default image reference for the entity type.
func (t EntityType) Placeholder() string {
	return placeholders[t]
}

// IsPlaceholder reports whether ref is one of the default image references.
// Placeholders are sentinel "no image" values and must never be removed
// from storage.
func IsPlaceholder(ref string) bool {
	for _, p := range placeholders {
		if ref == p {
			return true
		}
	}
	return false
}
