package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Access group names used by the permission layer. Groups are plain
// lookup rows; membership is checked per HTTP method group table.
const (
	GroupUser             = "User"
	GroupOrganization     = "Organization"
	GroupOperationProgram = "Operation Program"
	GroupRouteImport      = "Upload Route Dictionary"
)

type User struct {
	id             int64
	email          string
	firstName      string
	lastName       string
	organizationID int64
	groups         []string
	passwordHash   string
	isStaff        bool
	lastLogin      *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

func New(email, firstName, lastName string, organizationID int64) User {
	return User{
		email:          strings.ToLower(strings.TrimSpace(email)),
		firstName:      strings.TrimSpace(firstName),
		lastName:       strings.TrimSpace(lastName),
		organizationID: organizationID,
	}
}

func Hydrate(
	id int64,
	email, firstName, lastName string,
	organizationID int64,
	groups []string,
	passwordHash string,
	isStaff bool,
	lastLogin *time.Time,
	createdAt, updatedAt time.Time,
) User {
	return User{
		id:             id,
		email:          email,
		firstName:      firstName,
		lastName:       lastName,
		organizationID: organizationID,
		groups:         groups,
		passwordHash:   passwordHash,
		isStaff:        isStaff,
		lastLogin:      lastLogin,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (u User) ID() int64             { return u.id }
func (u User) Email() string         { return u.email }
func (u User) FirstName() string     { return u.firstName }
func (u User) LastName() string      { return u.lastName }
func (u User) OrganizationID() int64 { return u.organizationID }
func (u User) Groups() []string      { return u.groups }
func (u User) PasswordHash() string  { return u.passwordHash }
func (u User) IsStaff() bool         { return u.isStaff }
func (u User) LastLogin() *time.Time { return u.lastLogin }
func (u User) CreatedAt() time.Time  { return u.createdAt }
func (u User) UpdatedAt() time.Time  { return u.updatedAt }

func (u User) FullName() string {
	return strings.TrimSpace(u.firstName + " " + u.lastName)
}

func (u User) InGroup(name string) bool {
	for _, g := range u.groups {
		if g == name {
			return true
		}
	}
	return false
}

func (u User) SetGroups(groups []string) User {
	u.groups = groups
	return u
}

func (u User) SetStaff(isStaff bool) User {
	u.isStaff = isStaff
	return u
}

// SetPassword replaces the stored hash with a bcrypt hash of raw.
func (u User) SetPassword(raw string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return u, err
	}
	u.passwordHash = string(hash)
	return u, nil
}

func (u User) CheckPassword(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(raw)) == nil
}
