package user_service

type UserService struct{}

type UserRole string

const (
	RoleAdmin      UserRole = "fact-admin"
	RoleSuperAdmin UserRole = "fact-super-admin"
)

// User is the session identity as shown to the signed in user.
type User struct {
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Roles        []string `json:"roles"`
	IsSuperAdmin bool     `json:"is_super_admin"`
}
