package model

const (
	AppointmentsTable = "Appointments"
	DocumentsTable    = "Documents"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no-show"
)

// AppointmentItem is the slice of an appointment record the relay reads to
// find who should hear about a change.
type AppointmentItem struct {
	AppointmentID string            `dynamodbav:"appointmentId"`
	UserID        string            `dynamodbav:"userId"`
	LawyerID      string            `dynamodbav:"lawyerId,omitempty"`
	Status        AppointmentStatus `dynamodbav:"status"`
	ScheduledAt   string            `dynamodbav:"scheduledAt,omitempty"`
	UpdatedAt     string            `dynamodbav:"updatedAt,omitempty"`
}

type DocumentItem struct {
	DocumentID string `dynamodbav:"documentId"`
	UserID     string `dynamodbav:"userId"`
	FileName   string `dynamodbav:"fileName,omitempty"`
	Status     string `dynamodbav:"status"`
	UpdatedAt  string `dynamodbav:"updatedAt,omitempty"`
}
