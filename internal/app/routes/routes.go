package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/collegeerp/internal/app/controllers"
	"github.com/yigit/collegeerp/internal/middleware"
)

// Controllers groups the handlers mounted under /api/v1.
type Controllers struct {
	Admission    *controllers.AdmissionController
	Student      *controllers.StudentController
	Course       *controllers.CourseController
	Hostel       *controllers.HostelController
	Fee          *controllers.FeeController
	Exam         *controllers.ExamController
	Notification *controllers.NotificationController
	Audit        *controllers.AuditController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers) {
	router.GET("/ping", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "pong", "success": true})
	})

	// API version group; every mutation is attributed to X-User-ID
	v1 := router.Group("/api/v1")
	v1.Use(middleware.ActingUser())

	admissions := v1.Group("/admissions")
	{
		admissions.POST("", c.Admission.CreateAdmission)
		admissions.GET("", c.Admission.ListAdmissions)
		admissions.GET("/stats", c.Admission.GetAdmissionStats)
		admissions.GET("/email/:email", c.Admission.ListAdmissionsByEmail)
		admissions.GET("/:id", c.Admission.GetAdmission)
		admissions.PATCH("/:id", c.Admission.UpdateAdmission)
		admissions.DELETE("/:id", c.Admission.DeleteAdmission)
		admissions.PUT("/:id/status", c.Admission.UpdateAdmissionStatus)
		admissions.POST("/:id/admit", c.Admission.AdmitStudent)
	}

	students := v1.Group("/students")
	{
		students.POST("", c.Student.CreateStudent)
		students.GET("", c.Student.ListStudents)
		students.GET("/stats", c.Student.GetStudentStats)
		students.GET("/:id", c.Student.GetStudent)
		students.PATCH("/:id", c.Student.UpdateStudent)
		students.DELETE("/:id", c.Student.DeleteStudent)
		students.GET("/:id/courses", c.Student.GetStudentCourses)
		students.GET("/:id/allocation", c.Student.GetStudentAllocation)
		students.GET("/:id/fees", c.Student.GetStudentFees)
		students.GET("/:id/fee-summary", c.Student.GetStudentFeeSummary)
		students.GET("/:id/results", c.Student.GetStudentResults)
	}

	courses := v1.Group("/courses")
	{
		courses.POST("", c.Course.CreateCourse)
		courses.GET("", c.Course.ListCourses)
		courses.GET("/:id", c.Course.GetCourse)
		courses.PATCH("/:id", c.Course.UpdateCourse)
		courses.DELETE("/:id", c.Course.DeleteCourse)
		courses.POST("/:id/enrollments", c.Course.EnrollStudent)
		courses.GET("/:id/enrollments", c.Course.GetCourseEnrollments)
		courses.GET("/:id/exams", c.Course.GetCourseExams)
	}

	hostel := v1.Group("/hostel")
	{
		hostel.GET("/stats", c.Hostel.GetHostelStats)

		rooms := hostel.Group("/rooms")
		rooms.POST("", c.Hostel.CreateRoom)
		rooms.GET("", c.Hostel.ListRooms)
		rooms.GET("/:id", c.Hostel.GetRoom)
		rooms.PATCH("/:id", c.Hostel.UpdateRoom)
		rooms.DELETE("/:id", c.Hostel.DeleteRoom)

		hostel.POST("/allocations", c.Hostel.Allocate)
		hostel.GET("/allocations", c.Hostel.ListAllocations)
		hostel.POST("/deallocate", c.Hostel.Deallocate)
	}

	fees := v1.Group("/fees")
	{
		fees.GET("/stats", c.Fee.GetFeeStats)

		structures := fees.Group("/structures")
		structures.POST("", c.Fee.CreateFeeStructure)
		structures.GET("", c.Fee.ListFeeStructures)
		structures.GET("/:id", c.Fee.GetFeeStructure)
		structures.PATCH("/:id", c.Fee.UpdateFeeStructure)
		structures.DELETE("/:id", c.Fee.DeleteFeeStructure)

		payments := fees.Group("/payments")
		payments.POST("", c.Fee.CreatePayment)
		payments.GET("", c.Fee.ListPayments)
		payments.GET("/:id", c.Fee.GetPayment)
		payments.POST("/:id/receipt", c.Fee.IssueReceipt)

		fees.GET("/receipts", c.Fee.ListReceipts)
		fees.GET("/receipts/:id", c.Fee.GetReceipt)
	}

	exams := v1.Group("/exams")
	{
		exams.POST("", c.Exam.CreateExam)
		exams.GET("", c.Exam.ListExams)
		exams.GET("/stats", c.Exam.GetExamStats)
		exams.GET("/:id", c.Exam.GetExam)
		exams.PATCH("/:id", c.Exam.UpdateExam)
		exams.DELETE("/:id", c.Exam.DeleteExam)
		exams.GET("/:id/marks", c.Exam.GetExamMarks)
		exams.PUT("/:id/marks/:studentId", c.Exam.EnterMarks)
	}

	notifications := v1.Group("/notifications")
	{
		notifications.POST("", c.Notification.CreateNotification)
		notifications.POST("/bulk", c.Notification.CreateBulkNotifications)
		notifications.GET("", c.Notification.ListNotifications)
		notifications.PATCH("/:id", c.Notification.UpdateNotification)
		notifications.POST("/:id/read", c.Notification.MarkRead)
	}

	v1.GET("/audit", c.Audit.ListAuditLogs)
}
