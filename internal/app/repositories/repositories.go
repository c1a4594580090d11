package repositories

import (
	"github.com/yigit/collegeerp/internal/audit"
	"github.com/yigit/collegeerp/internal/pkg/helpers"
	"github.com/yigit/collegeerp/internal/pkg/idgen"
)

// Repositories holds all the repository instances
type Repositories struct {
	Admissions    *AdmissionRepository
	Students      *StudentRepository
	Courses       *CourseRepository
	Enrollments   *EnrollmentRepository
	Rooms         *RoomRepository
	Allocations   *AllocationRepository
	FeeStructures *FeeStructureRepository
	Transactions  *TransactionRepository
	Receipts      *ReceiptRepository
	Exams         *ExamRepository
	Marks         *MarksRepository
	Notifications *NotificationRepository

	Audit *audit.Logger
	IDs   idgen.Generator
	Clock helpers.Clock
}

// NewRepositories initializes all repositories over one audit logger, ID
// generator and clock.
func NewRepositories(ids idgen.Generator, clock helpers.Clock) *Repositories {
	if clock == nil {
		clock = helpers.SystemClock
	}
	log := audit.NewLogger(ids, clock)
	return &Repositories{
		Admissions:    NewAdmissionRepository(log, ids, clock),
		Students:      NewStudentRepository(log, ids, clock),
		Courses:       NewCourseRepository(log, clock),
		Enrollments:   NewEnrollmentRepository(log, ids, clock),
		Rooms:         NewRoomRepository(log, clock),
		Allocations:   NewAllocationRepository(log, ids, clock),
		FeeStructures: NewFeeStructureRepository(log, clock),
		Transactions:  NewTransactionRepository(log, ids, clock),
		Receipts:      NewReceiptRepository(log, ids, clock),
		Exams:         NewExamRepository(log, clock),
		Marks:         NewMarksRepository(log, ids, clock),
		Notifications: NewNotificationRepository(log, ids, clock),
		Audit:         log,
		IDs:           ids,
		Clock:         clock,
	}
}
