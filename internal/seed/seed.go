package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/yigit/collegeerp/internal/app/models/dto"
	appServices "github.com/yigit/collegeerp/internal/app/services"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
)

// CreateDefaultData adds a sample admission, course, hostel rooms and fee
// structures. Records that already exist are left alone, so it is safe to
// run on every start.
func CreateDefaultData(ctx context.Context, svc *appServices.Services, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating sample data...")
	var finalErr error // collect errors without stopping the process

	// conflicts mean the record exists from an earlier run
	keep := func(what string, err error) {
		if err == nil {
			lgr.Debug().Str("record", what).Msg("Sample record created")
			return
		}
		if errors.Is(err, apperrors.ErrConflict) {
			return
		}
		lgr.Error().Err(err).Str("record", what).Msg("Error creating sample record")
		finalErr = errors.Join(finalErr, err)
	}

	_, err := svc.Admissions.Create(ctx, dto.CreateAdmissionRequest{
		FirstName:        "Jane",
		LastName:         "Smith",
		Email:            "jane.smith@example.com",
		Phone:            "+1234567890",
		ProgrammeApplied: "Computer Science",
	})
	keep("admission", err)

	_, err = svc.Courses.Create(ctx, dto.CreateCourseRequest{
		CourseID:    "CS101",
		Title:       "Introduction to Programming",
		Credits:     4,
		ProgrammeID: "Computer Science",
		Semester:    1,
	})
	keep("course CS101", err)

	for _, room := range []dto.CreateRoomRequest{
		{RoomID: "BH1-A-101", Hostel: "Boys Hostel 1", Block: "A", Floor: "1", RoomNo: "101", Amenities: "bed,desk", Capacity: 1, RentPerMonth: 3000},
		{RoomID: "BH1-A-102", Hostel: "Boys Hostel 1", Block: "A", Floor: "1", RoomNo: "102", Amenities: "bed,desk,wardrobe", Capacity: 2, RentPerMonth: 2500},
		{RoomID: "GH1-B-201", Hostel: "Girls Hostel 1", Block: "B", Floor: "2", RoomNo: "201", Amenities: "bed,desk", Capacity: 1, RentPerMonth: 3000},
	} {
		_, err = svc.Hostel.CreateRoom(ctx, room)
		keep("room "+room.RoomID, err)
	}

	for _, fee := range []dto.CreateFeeStructureRequest{
		{FeeID: "FEE-CS-TUITION", ProgrammeID: "Computer Science", Component: "Tuition", Amount: 50000, Category: "academic"},
		{FeeID: "FEE-LIBRARY", Component: "Library", Amount: 1500, Category: "academic"},
	} {
		_, err = svc.Fees.CreateFeeStructure(ctx, fee)
		keep("fee "+fee.FeeID, err)
	}

	if finalErr == nil {
		lgr.Info().Msg("Sample data ready")
	}
	return finalErr
}
