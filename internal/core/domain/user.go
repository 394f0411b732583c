package domain

import "time"

// Role is the canonical authorization class of a user. The numeric role code
// carried by the API is the source of truth; Role is derived from it.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleReceptionist  Role = "receptionist"
	RoleLabTechnician Role = "lab_technician"
	RoleAccountant    Role = "accountant"

	// RoleNone is the fail-closed fallback for role codes outside the known
	// enumeration. It carries no capabilities beyond being authenticated.
	RoleNone Role = "none"
)

// Role codes as assigned by the identity backend.
const (
	RoleCodeAdmin         = 1
	RoleCodeReceptionist  = 2
	RoleCodeLabTechnician = 3
	RoleCodeAccountant    = 4
)

var roleByCode = map[int]Role{
	RoleCodeAdmin:         RoleAdmin,
	RoleCodeReceptionist:  RoleReceptionist,
	RoleCodeLabTechnician: RoleLabTechnician,
	RoleCodeAccountant:    RoleAccountant,
}

var roleNames = map[Role]string{
	RoleAdmin:         "Administrator",
	RoleReceptionist:  "Receptionist",
	RoleLabTechnician: "Lab Technician",
	RoleAccountant:    "Accountant",
	RoleNone:          "Unknown",
}

// RoleFromCode maps a numeric role code to its Role. Unknown codes degrade
// to RoleNone rather than failing, so a backend that adds a role does not
// break older clients.
func RoleFromCode(code int) Role {
	if r, ok := roleByCode[code]; ok {
		return r
	}
	return RoleNone
}

// Name returns the human-readable label for the role.
func (r Role) Name() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return roleNames[RoleNone]
}

// User models an authenticated actor in the clinic system.
type User struct {
	ID        string    `json:"id,omitempty"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	RoleCode  int       `json:"role_code"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`

	// PasswordHash is only populated server-side; it never crosses the wire.
	PasswordHash string `json:"-"`
}

// Role derives the canonical role from the user's role code.
func (u *User) Role() Role {
	return RoleFromCode(u.RoleCode)
}

// RoleName derives the display label from the user's role code.
func (u *User) RoleName() string {
	return u.Role().Name()
}
