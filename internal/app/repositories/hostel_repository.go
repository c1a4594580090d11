package repositories

import (
	"fmt"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/audit"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/helpers"
	"github.com/yigit/collegeerp/internal/pkg/idgen"
	"github.com/yigit/collegeerp/internal/store"
)

// RoomRepository handles the HostelRooms table.
type RoomRepository struct {
	tableRepo[models.HostelRoom]
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(log *audit.Logger, clock helpers.Clock) *RoomRepository {
	return &RoomRepository{tableRepo[models.HostelRoom]{
		table:  store.HostelRooms,
		entity: "Room",
		audit:  log,
		clock:  clock,
		touch:  func(r *models.HostelRoom, now string) { r.UpdatedAt = now },
	}}
}

// Create stores a new room.
func (r *RoomRepository) Create(tx *store.Tx, room *models.HostelRoom) error {
	exists, err := r.Exists(tx, room.RoomID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflictError(fmt.Sprintf("Room %s already exists", room.RoomID))
	}
	room.CurrentStudentID = ""
	room.CreatedAt = r.now()
	room.UpdatedAt = room.CreatedAt
	return r.insert(tx, room.RoomID, room, "", "")
}

// AllocationRepository handles the HostelAllocations table.
type AllocationRepository struct {
	tableRepo[models.HostelAllocation]
	ids idgen.Generator
}

// NewAllocationRepository creates a new AllocationRepository
func NewAllocationRepository(log *audit.Logger, ids idgen.Generator, clock helpers.Clock) *AllocationRepository {
	return &AllocationRepository{
		tableRepo: tableRepo[models.HostelAllocation]{
			table:  store.HostelAllocations,
			entity: "Allocation",
			audit:  log,
			clock:  clock,
			touch:  func(a *models.HostelAllocation, now string) { a.UpdatedAt = now },
		},
		ids: ids,
	}
}

// Create stores a new active allocation.
func (r *AllocationRepository) Create(tx *store.Tx, a *models.HostelAllocation) error {
	a.AllocID = r.ids.NewID(idgen.Allocation)
	now := r.now()
	a.Status = models.AllocationActive
	a.AllocatedOn = now
	a.ReleasedOn = ""
	a.CreatedAt = now
	a.UpdatedAt = now
	return r.insert(tx, a.AllocID, a, "", "")
}

// ActiveForStudent returns the student's active allocation, or nil.
func (r *AllocationRepository) ActiveForStudent(tx *store.Tx, studentID string) (*models.HostelAllocation, error) {
	all, err := r.FindAll(tx, "student_id", studentID)
	if err != nil {
		return nil, err
	}
	for _, a := range all {
		if a.Status == models.AllocationActive {
			return a, nil
		}
	}
	return nil, nil
}
