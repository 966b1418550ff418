package repository

import "github.com/eventstack/notification-engine/internal/domain"

const footerNote = "<p style='color: #666; font-size: 12px;'>This is an automated message, please do not reply.</p>"

// DefaultTemplates returns the built-in template set, one per notification
// type. Seeded at startup when a type has no template configured.
func DefaultTemplates() []domain.Template {
	return []domain.Template{
		{
			Name:             "Registration Confirmation",
			NotificationType: domain.TypeRegistrationConfirmation,
			SubjectTemplate:  "Registration confirmed - {{EventName}}",
			HTMLBodyTemplate: `<html>
<body style='font-family: Arial, sans-serif;'>
    <h2 style='color: #4CAF50;'>Registration Confirmed!</h2>
    <p>Hi <strong>{{ParticipantName}}</strong>,</p>
    <p>Your registration for <strong>{{EventName}}</strong> has been confirmed.</p>
    <h3>Event Details:</h3>
    <ul>
        <li><strong>Date:</strong> {{EventDate}}</li>
        <li><strong>Time:</strong> {{EventTime}}</li>
        <li><strong>Location:</strong> {{EventLocation}}</li>
    </ul>
    <p>See you there!</p>
    ` + footerNote + `
</body>
</html>`,
			TextBodyTemplate: ptr("Hi {{ParticipantName}}, your registration for {{EventName}} has been confirmed. Date: {{EventDate}}."),
			Description:      ptr("Confirms a participant's registration for an event"),
			IsActive:         true,
		},
		{
			Name:             "Registration Cancellation",
			NotificationType: domain.TypeRegistrationCancellation,
			SubjectTemplate:  "Registration cancelled - {{EventName}}",
			HTMLBodyTemplate: `<html>
<body style='font-family: Arial, sans-serif;'>
    <h2 style='color: #FF9800;'>Registration Cancelled</h2>
    <p>Hi <strong>{{ParticipantName}}</strong>,</p>
    <p>Your registration for <strong>{{EventName}}</strong> has been cancelled.</p>
    <p>You can register again at any time while spots remain available.</p>
    <p>We hope to see you at a future event!</p>
    ` + footerNote + `
</body>
</html>`,
			TextBodyTemplate: ptr("Hi {{ParticipantName}}, your registration for {{EventName}} has been cancelled."),
			Description:      ptr("Confirms cancellation of a participant's registration"),
			IsActive:         true,
		},
		{
			Name:             "Event Update",
			NotificationType: domain.TypeEventUpdate,
			SubjectTemplate:  "Important update - {{EventName}}",
			HTMLBodyTemplate: `<html>
<body style='font-family: Arial, sans-serif;'>
    <h2 style='color: #2196F3;'>Event Updated</h2>
    <p>Hi <strong>{{ParticipantName}}</strong>,</p>
    <p>The event <strong>{{EventName}}</strong> has been updated.</p>
    <h3>What changed:</h3>
    <p>{{UpdateDetails}}</p>
    <h3>New Details:</h3>
    <ul>
        <li><strong>Date:</strong> {{EventDate}}</li>
        <li><strong>Time:</strong> {{EventTime}}</li>
        <li><strong>Location:</strong> {{EventLocation}}</li>
    </ul>
    <p>Please take note of these changes.</p>
    ` + footerNote + `
</body>
</html>`,
			TextBodyTemplate: ptr("Hi {{ParticipantName}}, the event {{EventName}} has been updated. Details: {{UpdateDetails}}"),
			Description:      ptr("Notifies participants about changes to an event"),
			IsActive:         true,
		},
		{
			Name:             "Event Reminder",
			NotificationType: domain.TypeEventReminder,
			SubjectTemplate:  "Reminder - {{EventName}} is coming up",
			HTMLBodyTemplate: `<html>
<body style='font-family: Arial, sans-serif;'>
    <h2 style='color: #9C27B0;'>Don't forget!</h2>
    <p>Hi <strong>{{ParticipantName}}</strong>,</p>
    <p>This is a reminder that <strong>{{EventName}}</strong> is happening soon.</p>
    <h3>Event Details:</h3>
    <ul>
        <li><strong>Date:</strong> {{EventDate}}</li>
        <li><strong>Time:</strong> {{EventTime}}</li>
        <li><strong>Location:</strong> {{EventLocation}}</li>
    </ul>
    <p>See you there!</p>
    ` + footerNote + `
</body>
</html>`,
			TextBodyTemplate: ptr("Reminder: {{EventName}} takes place on {{EventDate}} at {{EventTime}}. Don't miss it!"),
			Description:      ptr("Reminds participants about an upcoming event"),
			IsActive:         true,
		},
		{
			Name:             "Event Cancellation",
			NotificationType: domain.TypeEventCancellation,
			SubjectTemplate:  "Event cancelled - {{EventName}}",
			HTMLBodyTemplate: `<html>
<body style='font-family: Arial, sans-serif;'>
    <h2 style='color: #F44336;'>Event Cancelled</h2>
    <p>Hi <strong>{{ParticipantName}}</strong>,</p>
    <p>We are sorry to inform you that <strong>{{EventName}}</strong> has been cancelled.</p>
    <h3>Reason:</h3>
    <p>{{CancellationReason}}</p>
    <p>We apologize for any inconvenience and hope to see you at a future event.</p>
    ` + footerNote + `
</body>
</html>`,
			TextBodyTemplate: ptr("Hi {{ParticipantName}}, unfortunately {{EventName}} has been cancelled. Reason: {{CancellationReason}}"),
			Description:      ptr("Notifies participants that an event was cancelled"),
			IsActive:         true,
		},
	}
}

func ptr(s string) *string { return &s }
