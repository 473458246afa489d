package domain

// Role represents a user's access level in the portal.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleClinician Role = "CLINICIAN"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleClinician:
		return true
	}
	return false
}

// FieldType represents the input kind of a custom field.
type FieldType string

const (
	FieldTypeText     FieldType = "TEXT"
	FieldTypeDropdown FieldType = "DROPDOWN"
	FieldTypeNumber   FieldType = "NUMBER"
	FieldTypeCheckbox FieldType = "CHECKBOX"
)

func (t FieldType) String() string { return string(t) }

func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText, FieldTypeDropdown, FieldTypeNumber, FieldTypeCheckbox:
		return true
	}
	return false
}

// AppointmentType classifies a patient entry on a service log.
type AppointmentType string

const (
	AppointmentNew      AppointmentType = "NEW"
	AppointmentFollowup AppointmentType = "FOLLOWUP"
	AppointmentDNA      AppointmentType = "DNA"
)

func (a AppointmentType) String() string { return string(a) }

func (a AppointmentType) IsValid() bool {
	switch a {
	case AppointmentNew, AppointmentFollowup, AppointmentDNA:
		return true
	}
	return false
}

// AuditAction is the kind of mutation an audit record describes.
type AuditAction string

const (
	AuditActionInsert AuditAction = "INSERT"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionInsert, AuditActionUpdate, AuditActionDelete:
		return true
	}
	return false
}
