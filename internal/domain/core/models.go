package core

import "time"

type Employee struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId,omitempty"`
	EmployeeNumber string     `json:"employeeNumber"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	DepartmentID   string     `json:"departmentId,omitempty"`
	PositionID     string     `json:"positionId,omitempty"`
	ManagerID      string     `json:"managerId,omitempty"`
	HireDate       *time.Time `json:"hireDate,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ManagerID string    `json:"managerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Position struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"createdAt"`
}

type EmployeeDraft struct {
	UserID         string
	EmployeeNumber string
	FirstName      string
	LastName       string
	Email          string
	DepartmentID   string
	PositionID     string
	ManagerID      string
	HireDate       *time.Time
	Status         string
}

type EmployeeFilter struct {
	DepartmentID string
	ManagerID    string
	Status       string
	Search       string
}

const (
	EmployeeActive   = "active"
	EmployeeOnLeave  = "on_leave"
	EmployeeInactive = "inactive"
)
