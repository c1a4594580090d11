package services

import (
	"context"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/helpers"
	"github.com/yigit/collegeerp/internal/pkg/validation"
	"github.com/yigit/collegeerp/internal/store"
)

// Hostel audit actions
const (
	ActionAllocate   = "allocate"
	ActionDeallocate = "deallocate"
)

// HostelService manages rooms and runs the allocation workflow. A room is
// available or occupied (or in maintenance); an allocation is active until
// released. The allocation, its room and its student always change together.
type HostelService struct {
	base
}

// CreateRoom adds an available room.
func (s *HostelService) CreateRoom(ctx context.Context, req dto.CreateRoomRequest) (*models.HostelRoom, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	room := req.Room()
	err := s.store.Update(ctx, []string{roomLock(room.RoomID)}, func(tx *store.Tx) error {
		return s.repos.Rooms.Create(tx, room)
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom returns one room.
func (s *HostelService) GetRoom(ctx context.Context, id string) (*models.HostelRoom, error) {
	var room *models.HostelRoom
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		room, err = s.repos.Rooms.Get(tx, id)
		return err
	})
	return room, err
}

// ListRooms returns rooms matching every non-empty filter field.
func (s *HostelService) ListRooms(ctx context.Context, f dto.RoomFilter) ([]*models.HostelRoom, error) {
	var out []*models.HostelRoom
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		out, err = s.repos.Rooms.List(tx, func(r *models.HostelRoom) bool {
			return (f.Hostel == "" || r.Hostel == f.Hostel) &&
				(f.Status == "" || r.Status == f.Status) &&
				(f.Floor == "" || r.Floor == f.Floor)
		})
		return err
	})
	return out, err
}

// UpdateRoom applies a patch to a room. An occupied room keeps its status
// until it is deallocated.
func (s *HostelService) UpdateRoom(ctx context.Context, id string, req dto.UpdateRoomRequest) (*models.HostelRoom, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var updated *models.HostelRoom
	err := s.store.Update(ctx, []string{roomLock(id)}, func(tx *store.Tx) error {
		room, err := s.repos.Rooms.Get(tx, id)
		if err != nil {
			return err
		}
		if req.Status != nil && room.Status == models.RoomOccupied {
			return apperrors.NewConflictError("Room is occupied, deallocate it before changing its status")
		}
		req.Apply(room)
		if err := s.repos.Rooms.Update(tx, id, room, "", ""); err != nil {
			return err
		}
		updated = room
		return nil
	})
	return updated, err
}

// DeleteRoom removes a room that is not occupied.
func (s *HostelService) DeleteRoom(ctx context.Context, id string) error {
	return s.store.Update(ctx, []string{roomLock(id)}, func(tx *store.Tx) error {
		room, err := s.repos.Rooms.Get(tx, id)
		if err != nil {
			return err
		}
		if room.Status == models.RoomOccupied {
			return apperrors.NewConflictError("Cannot delete an occupied room")
		}
		return s.repos.Rooms.Delete(tx, id, "")
	})
}

// Allocate gives a student a room. The room must be available and the
// student must not already hold an active allocation.
func (s *HostelService) Allocate(ctx context.Context, req dto.AllocateRoomRequest) (*models.HostelAllocation, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var alloc *models.HostelAllocation
	err := s.store.Update(ctx, []string{studentLock(req.StudentID), roomLock(req.RoomID)}, func(tx *store.Tx) error {
		student, err := s.repos.Students.Get(tx, req.StudentID)
		if err != nil {
			return err
		}
		room, err := s.repos.Rooms.Get(tx, req.RoomID)
		if err != nil {
			return err
		}
		if room.Status != models.RoomAvailable {
			return apperrors.NewConflictError("Room is not available")
		}
		active, err := s.repos.Allocations.ActiveForStudent(tx, req.StudentID)
		if err != nil {
			return err
		}
		if active != nil {
			return apperrors.NewConflictError("Student already has an active hostel allocation")
		}

		a := &models.HostelAllocation{
			StudentID:   req.StudentID,
			RoomID:      req.RoomID,
			AllocatedBy: req.AllocatedBy,
			Reason:      req.Reason,
		}
		if err := s.repos.Allocations.Create(tx, a); err != nil {
			return err
		}

		room.Status = models.RoomOccupied
		room.CurrentStudentID = req.StudentID
		room.AllocatedOn = a.AllocatedOn
		room.ReleasedOn = ""
		if err := s.repos.Rooms.Update(tx, room.RoomID, room, ActionAllocate, a.AllocID); err != nil {
			return err
		}

		student.HostelAllocID = a.AllocID
		if err := s.repos.Students.Update(tx, student.StudentID, student, ActionAllocate, a.AllocID); err != nil {
			return err
		}
		alloc = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("student_id", req.StudentID).Str("room_id", req.RoomID).Str("alloc_id", alloc.AllocID).Msg("Room allocated")
	return alloc, nil
}

// Deallocate releases the student's active allocation and frees its room.
func (s *HostelService) Deallocate(ctx context.Context, req dto.DeallocateRoomRequest) (*models.HostelAllocation, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	// The room to lock is only known from the allocation, so look it up
	// first and confirm it under the locks.
	current, err := s.StudentAllocation(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	roomID := current.RoomID

	var released *models.HostelAllocation
	err = s.store.Update(ctx, []string{studentLock(req.StudentID), roomLock(roomID)}, func(tx *store.Tx) error {
		a, err := s.repos.Allocations.ActiveForStudent(tx, req.StudentID)
		if err != nil {
			return err
		}
		if a == nil {
			return apperrors.NewResourceNotFoundError("No active hostel allocation for student")
		}
		if a.RoomID != roomID {
			return apperrors.NewConflictError("Allocation changed while releasing it, please retry")
		}

		now := helpers.Timestamp(s.repos.Clock())
		a.Status = models.AllocationInactive
		a.ReleasedOn = now
		if req.Reason != "" {
			a.Reason = req.Reason
		}
		if err := s.repos.Allocations.Update(tx, a.AllocID, a, ActionDeallocate, req.Reason); err != nil {
			return err
		}

		room, err := s.repos.Rooms.Get(tx, roomID)
		if err != nil && !apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return err
		}
		if room != nil {
			room.Status = models.RoomAvailable
			room.CurrentStudentID = ""
			room.ReleasedOn = now
			if err := s.repos.Rooms.Update(tx, roomID, room, ActionDeallocate, a.AllocID); err != nil {
				return err
			}
		}

		student, err := s.repos.Students.Get(tx, req.StudentID)
		if err != nil && !apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return err
		}
		if student != nil {
			student.HostelAllocID = ""
			if err := s.repos.Students.Update(tx, student.StudentID, student, ActionDeallocate, a.AllocID); err != nil {
				return err
			}
		}
		released = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("student_id", req.StudentID).Str("room_id", roomID).Msg("Room released")
	return released, nil
}

// StudentAllocation returns the student's active allocation.
func (s *HostelService) StudentAllocation(ctx context.Context, studentID string) (*models.HostelAllocation, error) {
	var a *models.HostelAllocation
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		a, err = s.repos.Allocations.ActiveForStudent(tx, studentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperrors.NewResourceNotFoundError("No active hostel allocation for student")
	}
	return a, nil
}

// ListAllocations returns allocations matching every non-empty filter field.
func (s *HostelService) ListAllocations(ctx context.Context, f dto.AllocationFilter) ([]*models.HostelAllocation, error) {
	keep := func(a *models.HostelAllocation) bool {
		return (f.StudentID == "" || a.StudentID == f.StudentID) &&
			(f.RoomID == "" || a.RoomID == f.RoomID) &&
			(f.Status == "" || a.Status == f.Status)
	}
	var out []*models.HostelAllocation
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		switch {
		case f.StudentID != "":
			out, err = s.repos.Allocations.FindAll(tx, "student_id", f.StudentID)
		case f.RoomID != "":
			out, err = s.repos.Allocations.FindAll(tx, "room_id", f.RoomID)
		default:
			out, err = s.repos.Allocations.List(tx, nil)
		}
		if err == nil {
			out = filter(out, keep)
		}
		return err
	})
	return out, err
}

// Stats reports occupancy overall and per hostel and block.
func (s *HostelService) Stats(ctx context.Context) (*models.HostelStats, error) {
	stats := &models.HostelStats{
		ByHostel: make(map[string]*models.GroupStats),
		ByBlock:  make(map[string]*models.GroupStats),
	}
	count := func(groups map[string]*models.GroupStats, key string, room *models.HostelRoom) {
		g, ok := groups[key]
		if !ok {
			g = &models.GroupStats{}
			groups[key] = g
		}
		g.Total++
		switch room.Status {
		case models.RoomOccupied:
			g.Occupied++
		case models.RoomAvailable:
			g.Available++
		}
	}

	err := s.store.View(ctx, func(tx *store.Tx) error {
		rooms, err := s.repos.Rooms.List(tx, nil)
		if err != nil {
			return err
		}
		for _, room := range rooms {
			stats.TotalRooms++
			switch room.Status {
			case models.RoomOccupied:
				stats.Occupied++
			case models.RoomAvailable:
				stats.Available++
			case models.RoomMaintenance:
				stats.Maintenance++
			}
			count(stats.ByHostel, room.Hostel, room)
			count(stats.ByBlock, room.Hostel+"/"+room.Block, room)
		}
		active, err := s.repos.Allocations.List(tx, func(a *models.HostelAllocation) bool {
			return a.Status == models.AllocationActive
		})
		if err != nil {
			return err
		}
		stats.ActiveAllocations = len(active)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if stats.TotalRooms > 0 {
		stats.OccupancyRate = round2(float64(stats.Occupied) / float64(stats.TotalRooms) * 100)
	}
	return stats, nil
}
