package domain

// SeedData describes the directory entries and accounts created on an empty
// database.
type SeedData struct {
	Departments []Department
	Roles       []Role
	Users       []SeedUser
}

// SeedUser is an account to create. DepartmentName and RoleName refer to
// entries of the same SeedData.
type SeedUser struct {
	Username       string
	Password       string
	Name           string
	Phone          string
	DepartmentName string
	RoleName       string
}
