package models

// HostelRoom is a bookable bed. CurrentStudentID is set while occupied.
type HostelRoom struct {
	RoomID           string  `json:"room_id"`
	Hostel           string  `json:"hostel"`
	Block            string  `json:"block"`
	Floor            string  `json:"floor"`
	RoomNo           string  `json:"room_no"`
	BedNo            string  `json:"bed_no"`
	Capacity         int     `json:"capacity"`
	CurrentStudentID string  `json:"current_student_id"`
	Status           string  `json:"status"`
	AllocatedOn      string  `json:"allocated_on"`
	ReleasedOn       string  `json:"released_on"`
	Amenities        string  `json:"amenities"`
	RentPerMonth     float64 `json:"rent_per_month"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// HostelAllocation links a student to a room; inactive once released.
type HostelAllocation struct {
	AllocID     string `json:"alloc_id"`
	StudentID   string `json:"student_id"`
	RoomID      string `json:"room_id"`
	AllocatedBy string `json:"allocated_by"`
	AllocatedOn string `json:"allocated_on"`
	ReleasedOn  string `json:"released_on"`
	Reason      string `json:"reason"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// HostelStats summarizes occupancy.
type HostelStats struct {
	TotalRooms        int                    `json:"total_rooms"`
	Occupied          int                    `json:"occupied"`
	Available         int                    `json:"available"`
	Maintenance       int                    `json:"maintenance"`
	OccupancyRate     float64                `json:"occupancy_rate"`
	ActiveAllocations int                    `json:"active_allocations"`
	ByHostel          map[string]*GroupStats `json:"by_hostel"`
	ByBlock           map[string]*GroupStats `json:"by_block"`
}

// GroupStats counts rooms within one hostel or block.
type GroupStats struct {
	Total     int `json:"total"`
	Occupied  int `json:"occupied"`
	Available int `json:"available"`
}
