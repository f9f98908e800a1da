package dynamodb

import (
	"triptrek-backend/domain/core/entities"
)

// tripItem represents the DynamoDB item structure for a trip. Attribute
// names match the records written by the legacy per-endpoint functions.
type tripItem struct {
	PK          string       `dynamodbav:"pk"`
	SK          string       `dynamodbav:"sk,omitempty"`
	ID          string       `dynamodbav:"id"`
	OwnerID     string       `dynamodbav:"ownerId,omitempty"`
	Destination string       `dynamodbav:"destination"`
	StartDate   string       `dynamodbav:"startDate"`
	EndDate     string       `dynamodbav:"endDate"`
	Itinerary   []dayItem    `dynamodbav:"itinerary"`
	ImageURL    string       `dynamodbav:"imageUrl,omitempty"`
	MapData     *mapDataItem `dynamodbav:"mapData,omitempty"`
	CreatedAt   string       `dynamodbav:"created_at,omitempty"`
	UpdatedAt   string       `dynamodbav:"updated_at,omitempty"`
}

type dayItem struct {
	Date       string         `dynamodbav:"date"`
	Activities []activityItem `dynamodbav:"activities"`
	PhotoURLs  []string       `dynamodbav:"photoUrls"`
}

type activityItem struct {
	Name string `dynamodbav:"name"`
	Time string `dynamodbav:"time"`
}

type latLngItem struct {
	Lat float64 `dynamodbav:"lat"`
	Lng float64 `dynamodbav:"lng"`
}

type mapDataItem struct {
	Coords latLngItem `dynamodbav:"coords"`
	Bounds struct {
		Northeast latLngItem `dynamodbav:"northeast"`
		Southwest latLngItem `dynamodbav:"southwest"`
	} `dynamodbav:"bounds"`
}

// storedAttributeNames maps entity JSON names to stored attribute names
// where they differ
var storedAttributeNames = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func storedName(name string) string {
	if stored, ok := storedAttributeNames[name]; ok {
		return stored
	}
	return name
}

func entityName(stored string) string {
	for entity, s := range storedAttributeNames {
		if s == stored {
			return entity
		}
	}
	return stored
}

func newTripItem(scheme KeyScheme, trip *entities.Trip) tripItem {
	pk, sk := scheme.keyFields(tripKeyOf(trip))
	return tripItem{
		PK:          pk,
		SK:          sk,
		ID:          trip.ID,
		OwnerID:     trip.OwnerID,
		Destination: trip.Destination,
		StartDate:   trip.StartDate,
		EndDate:     trip.EndDate,
		Itinerary:   toDayItems(trip.Itinerary),
		ImageURL:    trip.ImageURL,
		MapData:     toMapDataItem(trip.MapData),
		CreatedAt:   trip.CreatedAt,
		UpdatedAt:   trip.UpdatedAt,
	}
}

func (i tripItem) toEntity() *entities.Trip {
	id := i.ID
	if id == "" {
		// Records written before ids were stored separately
		id = i.PK
	}
	return &entities.Trip{
		ID:          id,
		OwnerID:     i.OwnerID,
		Destination: i.Destination,
		StartDate:   i.StartDate,
		EndDate:     i.EndDate,
		Itinerary:   fromDayItems(i.Itinerary),
		ImageURL:    i.ImageURL,
		MapData:     fromMapDataItem(i.MapData),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func toDayItems(days []entities.Day) []dayItem {
	items := make([]dayItem, len(days))
	for i, d := range days {
		activities := make([]activityItem, len(d.Activities))
		for j, a := range d.Activities {
			activities[j] = activityItem{Name: a.Name, Time: a.Time}
		}
		photos := d.PhotoURLs
		if photos == nil {
			photos = []string{}
		}
		items[i] = dayItem{Date: d.Date, Activities: activities, PhotoURLs: photos}
	}
	return items
}

func fromDayItems(items []dayItem) []entities.Day {
	days := make([]entities.Day, len(items))
	for i, item := range items {
		activities := make([]entities.Activity, len(item.Activities))
		for j, a := range item.Activities {
			activities[j] = entities.Activity{Name: a.Name, Time: a.Time}
		}
		var photos []string
		if len(item.PhotoURLs) > 0 {
			photos = item.PhotoURLs
		}
		days[i] = entities.Day{Date: item.Date, Activities: activities, PhotoURLs: photos}
	}
	return days
}

func toMapDataItem(m *entities.MapData) *mapDataItem {
	if m == nil {
		return nil
	}
	item := &mapDataItem{Coords: latLngItem{Lat: m.Coords.Lat, Lng: m.Coords.Lng}}
	item.Bounds.Northeast = latLngItem{Lat: m.Bounds.Northeast.Lat, Lng: m.Bounds.Northeast.Lng}
	item.Bounds.Southwest = latLngItem{Lat: m.Bounds.Southwest.Lat, Lng: m.Bounds.Southwest.Lng}
	return item
}

func fromMapDataItem(item *mapDataItem) *entities.MapData {
	if item == nil {
		return nil
	}
	return &entities.MapData{
		Coords: entities.LatLng{Lat: item.Coords.Lat, Lng: item.Coords.Lng},
		Bounds: entities.Viewport{
			Northeast: entities.LatLng{Lat: item.Bounds.Northeast.Lat, Lng: item.Bounds.Northeast.Lng},
			Southwest: entities.LatLng{Lat: item.Bounds.Southwest.Lat, Lng: item.Bounds.Southwest.Lng},
		},
	}
}

// attributeValue converts a value passed to UpdateAttributes into the shape
// stored in the table
func attributeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case []entities.Day:
		return toDayItems(v)
	case *entities.MapData:
		return toMapDataItem(v)
	case entities.MapData:
		return toMapDataItem(&v)
	default:
		return value
	}
}
