package staff

import "time"

type Staff struct {
	ID             string     `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	Department     string     `json:"department,omitempty" yaml:"department"`
	Position       string     `json:"position,omitempty" yaml:"position"`
	Type           Type       `json:"staff_type" yaml:"staff_type"`
	JoinDate       *time.Time `json:"join_date,omitempty" yaml:"join_date"`
	LeaveCountDate *time.Time `json:"leave_count_date,omitempty" yaml:"leave_count_date"`
	Active         bool       `json:"active" yaml:"active"`
}

type Type string

const (
	TypeAdmin    Type = "Admin"
	TypeAcademic Type = "Academic"
	TypeLabor    Type = "Labor"
	TypeUnknown  Type = "Unknown"
)

var TypeValues = []string{
	string(TypeAdmin),
	string(TypeAcademic),
	string(TypeLabor),
	string(TypeUnknown),
}

// Unknown returns a placeholder used when a staff record cannot be found.
func Unknown(id string) Staff {
	return Staff{ID: id, Type: TypeUnknown, Active: true}
}
