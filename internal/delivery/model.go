package delivery

import "time"

// Region is a serviced delivery area with its ETA band in minutes.
type Region struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	MinETAMinutes int       `json:"minEtaMinutes"`
	MaxETAMinutes int       `json:"maxEtaMinutes"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CampingLocation is a named delivery point inside a region.
type CampingLocation struct {
	ID        string    `json:"id"`
	RegionID  string    `json:"regionId"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Slot is an admin-managed fixed delivery window ("HH:MM" bounds) attached
// to a region. Distinct from the dynamically generated checkout slots in
// internal/timeslot.
type Slot struct {
	ID        string    `json:"id"`
	RegionID  string    `json:"regionId"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RegionInput struct {
	Name          string `json:"name" validate:"required,max=255"`
	MinETAMinutes int    `json:"minEtaMinutes" validate:"gte=0"`
	MaxETAMinutes int    `json:"maxEtaMinutes" validate:"gte=0"`
	IsActive      *bool  `json:"isActive"`
}

type RegionPatch struct {
	Name          *string `json:"name" validate:"omitempty,max=255"`
	MinETAMinutes *int    `json:"minEtaMinutes" validate:"omitempty,gte=0"`
	MaxETAMinutes *int    `json:"maxEtaMinutes" validate:"omitempty,gte=0"`
	IsActive      *bool   `json:"isActive"`
}

type CampingLocationInput struct {
	RegionID string `json:"regionId" validate:"required"`
	Name     string `json:"name" validate:"required,max=255"`
	Address  string `json:"address"`
	IsActive *bool  `json:"isActive"`
}

type CampingLocationPatch struct {
	RegionID *string `json:"regionId"`
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"isActive"`
}

type SlotInput struct {
	RegionID  string `json:"regionId" validate:"required"`
	StartTime string `json:"startTime" validate:"required,len=5"`
	EndTime   string `json:"endTime" validate:"required,len=5"`
	IsActive  *bool  `json:"isActive"`
}

type SlotPatch struct {
	RegionID  *string `json:"regionId"`
	StartTime *string `json:"startTime" validate:"omitempty,len=5"`
	EndTime   *string `json:"endTime" validate:"omitempty,len=5"`
	IsActive  *bool   `json:"isActive"`
}
