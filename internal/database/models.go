package database

import (
	"database/sql"
	"fmt"
	"time"
)

type Shipment struct {
	ID             int       `json:"id"`
	TrackingNumber string    `json:"tracking_number"`
	Carrier        string    `json:"carrier"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	IsDelivered    bool      `json:"is_delivered"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TrackingEvent mirrors one normalized carrier event. EventTime is nil for
// events whose carrier timestamp could not be parsed.
type TrackingEvent struct {
	ID          int        `json:"id"`
	ShipmentID  int        `json:"shipment_id"`
	EventTime   *time.Time `json:"event_time"`
	Status      string     `json:"status"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = sql.ErrNoRows

// ShipmentStore handles database operations for shipments
type ShipmentStore struct {
	db *sql.DB
}

func NewShipmentStore(db *sql.DB) *ShipmentStore {
	return &ShipmentStore{db: db}
}

const shipmentColumns = `id, tracking_number, carrier, description, status,
	is_delivered, created_at, updated_at`

func scanShipment(row interface{ Scan(...any) error }) (Shipment, error) {
	var s Shipment
	err := row.Scan(&s.ID, &s.TrackingNumber, &s.Carrier, &s.Description,
		&s.Status, &s.IsDelivered, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetAll returns all shipments, newest first
func (s *ShipmentStore) GetAll() ([]Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments ORDER BY created_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shipments []Shipment
	for rows.Next() {
		shipment, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, shipment)
	}
	return shipments, rows.Err()
}

// GetByID returns a single shipment by ID
func (s *ShipmentStore) GetByID(id int) (*Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE id = ?`
	shipment, err := scanShipment(s.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// GetByTracking returns the shipment for a carrier/tracking-number pair
func (s *ShipmentStore) GetByTracking(carrier, trackingNumber string) (*Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE carrier = ? AND tracking_number = ?`
	shipment, err := scanShipment(s.db.QueryRow(query, carrier, trackingNumber))
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// Create inserts a new shipment and fills in its generated fields
func (s *ShipmentStore) Create(shipment *Shipment) error {
	if shipment.Status == "" {
		shipment.Status = "unknown"
	}
	query := `INSERT INTO shipments (tracking_number, carrier, description, status, is_delivered)
		VALUES (?, ?, ?, ?, ?)`
	result, err := s.db.Exec(query, shipment.TrackingNumber, shipment.Carrier,
		shipment.Description, shipment.Status, shipment.IsDelivered)
	if err != nil {
		return fmt.Errorf("failed to create shipment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	created, err := s.GetByID(int(id))
	if err != nil {
		return err
	}
	*shipment = *created
	return nil
}

// GetOrCreate returns the existing shipment for the pair or creates one
func (s *ShipmentStore) GetOrCreate(carrier, trackingNumber string) (*Shipment, error) {
	shipment, err := s.GetByTracking(carrier, trackingNumber)
	if err == nil {
		return shipment, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	created := &Shipment{TrackingNumber: trackingNumber, Carrier: carrier}
	if err := s.Create(created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateStatus advances the shipment status after a successful track
func (s *ShipmentStore) UpdateStatus(id int, status string, delivered bool) error {
	query := `UPDATE shipments SET status = ?, is_delivered = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := s.db.Exec(query, status, delivered, id)
	if err != nil {
		return fmt.Errorf("failed to update shipment status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a shipment and, via cascade, its events
func (s *ShipmentStore) Delete(id int) error {
	result, err := s.db.Exec(`DELETE FROM shipments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shipment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TrackingEventStore handles database operations for tracking events
type TrackingEventStore struct {
	db *sql.DB
}

func NewTrackingEventStore(db *sql.DB) *TrackingEventStore {
	return &TrackingEventStore{db: db}
}

// GetByShipmentID returns a shipment's events oldest first, with events
// lacking a timestamp last
func (s *TrackingEventStore) GetByShipmentID(shipmentID int) ([]TrackingEvent, error) {
	query := `SELECT id, shipment_id, event_time, status, location, description, created_at
		FROM tracking_events WHERE shipment_id = ?
		ORDER BY event_time IS NULL, event_time ASC, id ASC`

	rows, err := s.db.Query(query, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []TrackingEvent
	for rows.Next() {
		var e TrackingEvent
		var location sql.NullString
		if err := rows.Scan(&e.ID, &e.ShipmentID, &e.EventTime, &e.Status,
			&location, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Location = location.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// AddEvents inserts events that are not already recorded for the shipment.
// Repeated refreshes of the same page stay idempotent: an event is a
// duplicate when its time and description both match an existing row.
func (s *TrackingEventStore) AddEvents(shipmentID int, events []TrackingEvent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	exists := `SELECT COUNT(*) FROM tracking_events
		WHERE shipment_id = ? AND description = ?
		AND (event_time = ? OR (event_time IS NULL AND ? IS NULL))`
	insert := `INSERT INTO tracking_events (shipment_id, event_time, status, location, description)
		VALUES (?, ?, ?, ?, ?)`

	for _, e := range events {
		var count int
		if err := tx.QueryRow(exists, shipmentID, e.Description, e.EventTime, e.EventTime).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if _, err := tx.Exec(insert, shipmentID, e.EventTime, e.Status, e.Location, e.Description); err != nil {
			return fmt.Errorf("failed to insert tracking event: %w", err)
		}
	}

	return tx.Commit()
}
