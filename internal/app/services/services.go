package services

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/yigit/collegeerp/internal/app/repositories"
	"github.com/yigit/collegeerp/internal/pkg/email"
	"github.com/yigit/collegeerp/internal/store"
)

// Services defined in this package:
// - AdmissionService: admission lifecycle and conversion to a student
// - StudentService: student records
// - CourseService: courses and enrollments
// - HostelService: rooms and the allocation workflow
// - FeeService: fee structures, payments and receipts
// - ExamService: exams and marks
// - NotificationService: outgoing notifications
// - AuditService: audit trail queries
type Services struct {
	Admissions    *AdmissionService
	Students      *StudentService
	Courses       *CourseService
	Hostel        *HostelService
	Fees          *FeeService
	Exams         *ExamService
	Notifications *NotificationService
	Audit         *AuditService
}

// Options configures the services.
type Options struct {
	// Currency is used for payments that name neither a currency nor a fee structure.
	Currency string
	// Mailer delivers notifications of type email; nil disables delivery.
	Mailer email.Sender
}

// NewServices wires every service over one store.
func NewServices(st *store.Store, repos *repositories.Repositories, opts Options, log zerolog.Logger) *Services {
	b := base{store: st, repos: repos}
	return &Services{
		Admissions:    &AdmissionService{base: b.with(log, "admissions")},
		Students:      &StudentService{base: b.with(log, "students")},
		Courses:       &CourseService{base: b.with(log, "courses")},
		Hostel:        &HostelService{base: b.with(log, "hostel")},
		Fees:          &FeeService{base: b.with(log, "fees"), currency: opts.Currency},
		Exams:         &ExamService{base: b.with(log, "exams")},
		Notifications: &NotificationService{base: b.with(log, "notifications"), mailer: opts.Mailer},
		Audit:         &AuditService{base: b.with(log, "audit")},
	}
}

type base struct {
	store *store.Store
	repos *repositories.Repositories
	log   zerolog.Logger
}

func (b base) with(log zerolog.Logger, component string) base {
	b.log = log.With().Str("service", component).Logger()
	return b
}

// lock names used to serialize workflows per entity
func studentLock(id string) string { return store.LockKey("student", id) }
func roomLock(id string) string { return store.LockKey("room", id) }
func examLock(id string) string { return store.LockKey("exam", id) }
func courseLock(id string) string { return store.LockKey("course", id) }

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
