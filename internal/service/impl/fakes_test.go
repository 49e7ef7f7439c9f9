package impl

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"iam/internal/domain"
	"iam/internal/dto"
	"iam/internal/observability/metrics"
	"iam/internal/service"

	"github.com/google/uuid"
)

func TestMain(m *testing.M) {
	metrics.MustRegister("test")
	os.Exit(m.Run())
}

func newID() uuid.UUID { return uuid.New() }

// ====== users ======

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[domain.UserID]*domain.User
	// everCreated counts deleted users too, so first-user detection does not
	// reset when the map empties.
	everCreated int
	// memberships mirrors what fakeRoleRepo records so FindByIDWithRoles works
	// without a join.
	roles *fakeRoleRepo
}

func newFakeUserRepo(roles *fakeRoleRepo) *fakeUserRepo {
	return &fakeUserRepo{users: make(map[domain.UserID]*domain.User), roles: roles}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
		if existing.PhoneNumber == u.PhoneNumber {
			return domain.ErrDuplicatePhone
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	f.everCreated++
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.users {
		if id == u.ID {
			continue
		}
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
		if existing.PhoneNumber == u.PhoneNumber {
			return domain.ErrDuplicatePhone
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id domain.UserID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return service.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (f *fakeUserRepo) MarkVerified(ctx context.Context, id domain.UserID, channel domain.VerificationChannel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return service.ErrNotFound
	}
	if channel == domain.ChannelPhone {
		u.IsPhoneVerified = true
	} else {
		u.IsEmailVerified = true
	}
	return nil
}

func (f *fakeUserRepo) SetDefaultRole(ctx context.Context, id domain.UserID, roleID domain.RoleID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return service.ErrNotFound
	}
	u.DefaultRoleID = &roleID
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id domain.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, service.ErrNotFound
}

func (f *fakeUserRepo) FindByPhoneNumber(ctx context.Context, phone string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.PhoneNumber == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, service.ErrNotFound
}

func (f *fakeUserRepo) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	if u, err := f.FindByEmail(ctx, identifier); err == nil {
		return u, nil
	}
	return f.FindByPhoneNumber(ctx, identifier)
}

func (f *fakeUserRepo) FindByIDWithRoles(ctx context.Context, id domain.UserID) (*domain.User, []domain.Role, error) {
	u, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	var roles []domain.Role
	if f.roles != nil {
		roles = f.roles.rolesOf(id)
	}
	return u, roles, nil
}

func (f *fakeUserRepo) IsFirstUser(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.everCreated == 0, nil
}

func (f *fakeUserRepo) FindMany(ctx context.Context, q dto.ListQuery) ([]domain.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) CountByDefaultRole(ctx context.Context, roleID domain.RoleID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.users {
		if u.DefaultRoleID != nil && *u.DefaultRoleID == roleID {
			n++
		}
	}
	return n, nil
}

var _ service.UserRepository = (*fakeUserRepo)(nil)

// ====== roles ======

type membership struct {
	userID domain.UserID
	roleID domain.RoleID
}

type fakeRoleRepo struct {
	mu          sync.Mutex
	roles       map[domain.RoleID]*domain.Role
	memberships []membership
	// grants maps role id to the privilege names it holds.
	grants map[domain.RoleID]map[string]bool

	hasPrivilegeErr error
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{
		roles:  make(map[domain.RoleID]*domain.Role),
		grants: make(map[domain.RoleID]map[string]bool),
	}
}

func (f *fakeRoleRepo) addRole(name string, roleType domain.RoleType, isDefault bool) *domain.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	role := &domain.Role{ID: uuid.New(), Name: name, RoleType: roleType, IsDefault: isDefault}
	f.roles[role.ID] = role
	return role
}

func (f *fakeRoleRepo) grant(roleID domain.RoleID, names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grants[roleID] == nil {
		f.grants[roleID] = make(map[string]bool)
	}
	for _, n := range names {
		f.grants[roleID][n] = true
	}
}

func (f *fakeRoleRepo) rolesOf(userID domain.UserID) []domain.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Role
	for _, m := range f.memberships {
		if m.userID == userID {
			if r, ok := f.roles[m.roleID]; ok {
				out = append(out, *r)
			}
		}
	}
	return out
}

func (f *fakeRoleRepo) FindByID(ctx context.Context, id domain.RoleID) (*domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRoleRepo) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, service.ErrNotFound
}

func (f *fakeRoleRepo) FindDefaultRole(ctx context.Context) (*domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.IsDefault {
			cp := *r
			return &cp, nil
		}
	}
	return nil, service.ErrNotFound
}

func (f *fakeRoleRepo) FindSystemRole(ctx context.Context, name string) (*domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Name == name && r.RoleType == domain.RoleTypeSystem {
			cp := *r
			return &cp, nil
		}
	}
	return nil, service.ErrNotFound
}

func (f *fakeRoleRepo) Create(ctx context.Context, r *domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.roles {
		if id != r.ID && existing.Name == r.Name {
			return domain.ErrDuplicateRoleName
		}
	}
	cp := *r
	f.roles[r.ID] = &cp
	return nil
}

func (f *fakeRoleRepo) Update(ctx context.Context, r *domain.Role) error {
	return f.Create(ctx, r)
}

func (f *fakeRoleRepo) Delete(ctx context.Context, id domain.RoleID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.roles, id)
	return nil
}

func (f *fakeRoleRepo) FindMany(ctx context.Context, q dto.ListQuery) ([]domain.Role, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Role
	for _, r := range f.roles {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRoleRepo) AssignToUser(ctx context.Context, userID domain.UserID, roleID domain.RoleID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.memberships {
		if m.userID == userID && m.roleID == roleID {
			return domain.ErrRoleAlreadyAssigned
		}
	}
	f.memberships = append(f.memberships, membership{userID: userID, roleID: roleID})
	return nil
}

func (f *fakeRoleRepo) RemoveFromUser(ctx context.Context, userID domain.UserID, roleID domain.RoleID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.memberships {
		if m.userID == userID && m.roleID == roleID {
			f.memberships = append(f.memberships[:i], f.memberships[i+1:]...)
			return nil
		}
	}
	return domain.ErrAssignmentNotFound
}

func (f *fakeRoleRepo) HasPrivilege(ctx context.Context, roleID domain.RoleID, privilegeName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hasPrivilegeErr != nil {
		return false, f.hasPrivilegeErr
	}
	return f.grants[roleID][privilegeName], nil
}

func (f *fakeRoleRepo) GetUserCount(ctx context.Context, roleID domain.RoleID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.memberships {
		if m.roleID == roleID {
			n++
		}
	}
	return n, nil
}

var _ service.RoleRepository = (*fakeRoleRepo)(nil)

// ====== privileges ======

type grantEdge struct {
	roleID      domain.RoleID
	privilegeID domain.PrivilegeID
}

type fakePrivilegeRepo struct {
	mu         sync.Mutex
	privileges map[domain.PrivilegeID]*domain.Privilege
	edges      []grantEdge
}

func newFakePrivilegeRepo() *fakePrivilegeRepo {
	return &fakePrivilegeRepo{privileges: make(map[domain.PrivilegeID]*domain.Privilege)}
}

func (f *fakePrivilegeRepo) addPrivilege(name string, group domain.PrivilegeGroup) *domain.Privilege {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &domain.Privilege{ID: uuid.New(), PrivilegeName: name, PrivilegeGroup: group}
	f.privileges[p.ID] = p
	return p
}

func (f *fakePrivilegeRepo) FindByID(ctx context.Context, id domain.PrivilegeID) (*domain.Privilege, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.privileges[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePrivilegeRepo) FindByName(ctx context.Context, name string) (*domain.Privilege, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.privileges {
		if p.PrivilegeName == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, service.ErrNotFound
}

func (f *fakePrivilegeRepo) Create(ctx context.Context, p *domain.Privilege) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.privileges {
		if id != p.ID && existing.PrivilegeName == p.PrivilegeName {
			return domain.ErrDuplicatePrivilegeName
		}
	}
	cp := *p
	f.privileges[p.ID] = &cp
	return nil
}

func (f *fakePrivilegeRepo) Update(ctx context.Context, p *domain.Privilege) error {
	return f.Create(ctx, p)
}

func (f *fakePrivilegeRepo) Delete(ctx context.Context, id domain.PrivilegeID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.privileges, id)
	return nil
}

func (f *fakePrivilegeRepo) FindMany(ctx context.Context, q dto.ListQuery) ([]domain.Privilege, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Privilege
	for _, p := range f.privileges {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakePrivilegeRepo) AssignToRole(ctx context.Context, roleID domain.RoleID, privilegeID domain.PrivilegeID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.edges {
		if e.roleID == roleID && e.privilegeID == privilegeID {
			return domain.ErrPrivilegeAlreadyGranted
		}
	}
	f.edges = append(f.edges, grantEdge{roleID: roleID, privilegeID: privilegeID})
	return nil
}

func (f *fakePrivilegeRepo) RemoveFromRole(ctx context.Context, roleID domain.RoleID, privilegeID domain.PrivilegeID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.edges {
		if e.roleID == roleID && e.privilegeID == privilegeID {
			f.edges = append(f.edges[:i], f.edges[i+1:]...)
			return nil
		}
	}
	return domain.ErrAssignmentNotFound
}

func (f *fakePrivilegeRepo) FindByRoleID(ctx context.Context, roleID domain.RoleID) ([]domain.Privilege, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Privilege
	for _, e := range f.edges {
		if e.roleID == roleID {
			if p, ok := f.privileges[e.privilegeID]; ok {
				out = append(out, *p)
			}
		}
	}
	return out, nil
}

var _ service.PrivilegeRepository = (*fakePrivilegeRepo)(nil)

// ====== otps ======

type fakeOtpRepo struct {
	mu   sync.Mutex
	rows []*domain.Otp
}

func newFakeOtpRepo() *fakeOtpRepo { return &fakeOtpRepo{} }

func (f *fakeOtpRepo) Create(ctx context.Context, otp *domain.Otp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *otp
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeOtpRepo) GetDailyCount(ctx context.Context, userID domain.UserID, otpType domain.OtpType) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	count := 0
	for _, row := range f.rows {
		if row.UserID == userID && row.Type == otpType && !row.CreatedAt.Before(midnight) {
			count++
		}
	}
	return count, nil
}

func (f *fakeOtpRepo) Verify(ctx context.Context, code, identifier string, purpose domain.OtpPurpose, maxAttempts int) (*domain.Otp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	live := func(row *domain.Otp) bool {
		return row.Identifier == identifier && row.Purpose == purpose &&
			!row.Used && row.ExpiresAt.After(now) && row.Attempts < maxAttempts
	}
	for _, row := range f.rows {
		if live(row) && row.Code == code {
			row.Used = true
			cp := *row
			return &cp, nil
		}
	}
	for _, row := range f.rows {
		if live(row) {
			row.Attempts++
		}
	}
	return nil, nil
}

func (f *fakeOtpRepo) InvalidateExisting(ctx context.Context, userID domain.UserID, purpose domain.OtpPurpose) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.UserID == userID && row.Purpose == purpose {
			row.Used = true
		}
	}
	return nil
}

var _ service.OtpRepository = (*fakeOtpRepo)(nil)

// ====== blacklist ======

type fakeBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	addErr  error
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{entries: make(map[string]time.Time)}
}

func (f *fakeBlacklist) Add(ctx context.Context, token string, userID domain.UserID, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	if _, ok := f.entries[token]; !ok {
		f.entries[token] = expiresAt
	}
	return nil
}

func (f *fakeBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	exp, ok := f.entries[token]
	return ok && exp.After(time.Now()), nil
}

func (f *fakeBlacklist) Cleanup(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for token, exp := range f.entries {
		if !exp.After(time.Now()) {
			delete(f.entries, token)
			n++
		}
	}
	return n, nil
}

var _ service.BlacklistedTokenRepository = (*fakeBlacklist)(nil)
