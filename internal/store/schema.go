package store

// Table names
const (
	Students          = "Students"
	Admissions        = "Admissions"
	FeeMaster         = "FeeMaster"
	Transactions      = "Transactions"
	Receipts          = "Receipts"
	HostelRooms       = "HostelRooms"
	HostelAllocations = "HostelAllocations"
	Courses           = "Courses"
	Enrollments       = "Enrollments"
	Exams             = "Exams"
	Marks             = "Marks"
	AuditLog          = "AuditLog"
	Notifications     = "Notifications"
)

// TableSchema describes one table. Headers[0] is the primary key column;
// Indexes lists the secondary columns kept in hash indexes.
type TableSchema struct {
	Name    string
	Headers []string
	Indexes []string
}

// Key returns the primary key column.
func (s *TableSchema) Key() string {
	return s.Headers[0]
}

// HasColumn reports whether column is part of the header.
func (s *TableSchema) HasColumn(column string) bool {
	for _, h := range s.Headers {
		if h == column {
			return true
		}
	}
	return false
}

// Schema is the full set of tables, in creation order.
var Schema = []*TableSchema{
	{
		Name: Students,
		Headers: []string{
			"student_id", "admission_id", "first_name", "last_name", "father_name", "mother_name",
			"dob", "gender", "email", "phone", "address", "programme_id", "programme_name",
			"admission_date", "enrollment_status", "year_of_study", "photo_drive_file_id",
			"hostel_alloc_id", "library_card_id", "created_at", "updated_at",
		},
		Indexes: []string{"admission_id", "programme_id"},
	},
	{
		Name: Admissions,
		Headers: []string{
			"admission_id", "application_ref", "applicant_name", "first_name", "last_name", "email",
			"phone", "programme_applied", "documents", "applied_on", "status", "assigned_officer_id",
			"verifier_notes", "admitted_on", "student_id", "created_at", "updated_at",
		},
		Indexes: []string{"email", "status"},
	},
	{
		Name: FeeMaster,
		Headers: []string{
			"fee_id", "programme_id", "component", "amount", "currency", "effective_from",
			"effective_to", "category", "created_at", "updated_at",
		},
		Indexes: []string{"programme_id"},
	},
	{
		Name: Transactions,
		Headers: []string{
			"txn_id", "student_id", "admission_id", "fee_id", "date", "amount", "currency",
			"payment_mode", "gateway_ref", "payment_status", "receipt_id", "created_by",
			"created_at", "notes",
		},
		Indexes: []string{"student_id", "receipt_id"},
	},
	{
		Name: Receipts,
		Headers: []string{
			"receipt_id", "txn_id", "issued_by", "issued_on", "pdf_drive_file_id", "email_sent",
			"created_at",
		},
		Indexes: []string{"txn_id"},
	},
	{
		Name: HostelRooms,
		Headers: []string{
			"room_id", "hostel", "block", "floor", "room_no", "bed_no", "capacity",
			"current_student_id", "status", "allocated_on", "released_on", "amenities",
			"rent_per_month", "created_at", "updated_at",
		},
		Indexes: []string{"current_student_id", "status"},
	},
	{
		Name: HostelAllocations,
		Headers: []string{
			"alloc_id", "student_id", "room_id", "allocated_by", "allocated_on", "released_on",
			"reason", "status", "created_at", "updated_at",
		},
		Indexes: []string{"student_id", "room_id"},
	},
	{
		Name: Courses,
		Headers: []string{
			"course_id", "title", "credits", "programme_id", "semester", "created_at", "updated_at",
		},
		Indexes: []string{"programme_id"},
	},
	{
		Name: Enrollments,
		Headers: []string{
			"enroll_id", "student_id", "course_id", "enrolled_on", "status", "grade", "marks",
			"created_at", "updated_at",
		},
		Indexes: []string{"student_id", "course_id"},
	},
	{
		Name: Exams,
		Headers: []string{
			"exam_id", "course_id", "exam_date", "venue", "invigilator_id", "created_at", "updated_at",
		},
		Indexes: []string{"course_id"},
	},
	{
		Name: Marks,
		Headers: []string{
			"marks_id", "exam_id", "student_id", "marks_obtained", "grade", "entered_by", "entered_on",
		},
		Indexes: []string{"exam_id", "student_id"},
	},
	{
		Name: AuditLog,
		Headers: []string{
			"log_id", "table_name", "entity_id", "action", "user_id", "timestamp", "before",
			"after", "diff", "notes",
		},
		Indexes: []string{"entity_id", "table_name"},
	},
	{
		Name: Notifications,
		Headers: []string{
			"notification_id", "recipient", "type", "subject", "body", "sent_on", "status", "response",
		},
		Indexes: []string{"recipient"},
	},
}

// Lookup returns the schema for a table name.
func Lookup(schemas []*TableSchema, name string) (*TableSchema, bool) {
	for _, s := range schemas {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}
