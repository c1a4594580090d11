package dto

import "github.com/yigit/collegeerp/internal/app/models"

// CreateRoomRequest is the payload for a new hostel room.
type CreateRoomRequest struct {
	RoomID       string  `json:"room_id" validate:"required,notblank"`
	Hostel       string  `json:"hostel" validate:"required,notblank"`
	Block        string  `json:"block" validate:"required,notblank"`
	Floor        string  `json:"floor" validate:"required,notblank"`
	RoomNo       string  `json:"room_no" validate:"required,notblank"`
	BedNo        string  `json:"bed_no"`
	Capacity     int     `json:"capacity" validate:"gte=0"`
	Amenities    string  `json:"amenities"`
	RentPerMonth float64 `json:"rent_per_month" validate:"gte=0"`
}

// Room builds the model; new rooms are available with capacity 1 by default.
func (r *CreateRoomRequest) Room() *models.HostelRoom {
	room := &models.HostelRoom{
		RoomID:       r.RoomID,
		Hostel:       r.Hostel,
		Block:        r.Block,
		Floor:        r.Floor,
		RoomNo:       r.RoomNo,
		BedNo:        r.BedNo,
		Capacity:     r.Capacity,
		Amenities:    r.Amenities,
		RentPerMonth: r.RentPerMonth,
		Status:       models.RoomAvailable,
	}
	if room.Capacity == 0 {
		room.Capacity = 1
	}
	return room
}

// UpdateRoomRequest lists the mutable room fields. Occupancy is owned by the
// allocation workflow, so status may only toggle available and maintenance.
type UpdateRoomRequest struct {
	Hostel       *string  `json:"hostel" validate:"omitempty,notblank"`
	Block        *string  `json:"block" validate:"omitempty,notblank"`
	Floor        *string  `json:"floor" validate:"omitempty,notblank"`
	RoomNo       *string  `json:"room_no" validate:"omitempty,notblank"`
	BedNo        *string  `json:"bed_no"`
	Capacity     *int     `json:"capacity" validate:"omitempty,gte=1"`
	Amenities    *string  `json:"amenities"`
	RentPerMonth *float64 `json:"rent_per_month" validate:"omitempty,gte=0"`
	Status       *string  `json:"status" validate:"omitempty,oneof=available maintenance"`
}

// Apply copies the set fields onto room.
func (r *UpdateRoomRequest) Apply(room *models.HostelRoom) {
	set(&room.Hostel, r.Hostel)
	set(&room.Block, r.Block)
	set(&room.Floor, r.Floor)
	set(&room.RoomNo, r.RoomNo)
	set(&room.BedNo, r.BedNo)
	set(&room.Capacity, r.Capacity)
	set(&room.Amenities, r.Amenities)
	set(&room.RentPerMonth, r.RentPerMonth)
	set(&room.Status, r.Status)
}

// RoomFilter narrows a room listing.
type RoomFilter struct {
	Hostel string `form:"hostel"`
	Status string `form:"status"`
	Floor  string `form:"floor"`
}

// AllocateRoomRequest assigns a student to a room.
type AllocateRoomRequest struct {
	StudentID   string `json:"student_id" validate:"required,notblank"`
	RoomID      string `json:"room_id" validate:"required,notblank"`
	AllocatedBy string `json:"allocated_by"`
	Reason      string `json:"reason"`
}

// DeallocateRoomRequest releases a student's current room.
type DeallocateRoomRequest struct {
	StudentID string `json:"student_id" validate:"required,notblank"`
	Reason    string `json:"reason"`
}

// AllocationFilter narrows an allocation listing.
type AllocationFilter struct {
	StudentID string `form:"student_id"`
	RoomID    string `form:"room_id"`
	Status    string `form:"status"`
}
