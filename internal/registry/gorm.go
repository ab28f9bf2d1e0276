package registry

import (
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
)

// deviceRecord is the ptz_devices table row
type deviceRecord struct {
	ID       string `gorm:"primary_key"`
	Name     string
	Address  int
	RTSP     string `gorm:"column:rtsp"`
	Channels string // comma separated
}

func (deviceRecord) TableName() string {
	return "ptz_devices"
}

func toRecord(d Device) deviceRecord {
	return deviceRecord{
		ID:       d.ID,
		Name:     d.Name,
		Address:  int(d.Address),
		RTSP:     d.RTSP,
		Channels: strings.Join(d.Channels, ","),
	}
}

func (r deviceRecord) device() Device {
	d := Device{
		ID:      r.ID,
		Name:    r.Name,
		Address: uint16(r.Address),
		RTSP:    r.RTSP,
	}
	if r.Channels != "" {
		d.Channels = strings.Split(r.Channels, ",")
	}
	return d
}

// GormStore keeps devices in a postgres table
type GormStore struct {
	db *gorm.DB
}

// OpenGorm connects to postgres and migrates the device table.
// dsn is like "host=localhost port=5432 user=ptz dbname=ptz sslmode=disable".
func OpenGorm(dsn string) (*GormStore, error) {
	db, err := gorm.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err = db.AutoMigrate(&deviceRecord{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate device table: %w", err)
	}
	return NewGormStore(db), nil
}

// NewGormStore wraps an open connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(id string) (Device, error) {
	var r deviceRecord
	if err := s.db.Where("id = ?", id).First(&r).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return Device{}, ErrNotFound
		}
		return Device{}, err
	}
	return r.device(), nil
}

func (s *GormStore) List() ([]Device, error) {
	var records []deviceRecord
	if err := s.db.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	devices := make([]Device, 0, len(records))
	for _, r := range records {
		devices = append(devices, r.device())
	}
	return devices, nil
}

func (s *GormStore) Add(d Device) error {
	if err := d.validate(); err != nil {
		return err
	}
	r := toRecord(d)
	if !s.db.Where("id = ?", d.ID).First(&deviceRecord{}).RecordNotFound() {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, d.ID)
	}
	return s.db.Create(&r).Error
}

// Close closes the database connection
func (s *GormStore) Close() error {
	return s.db.Close()
}
