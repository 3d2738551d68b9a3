package group

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whopaid/whopaid/pkg/apperr"
)

type fakeRepo struct {
	groups      map[uuid.UUID]*Group
	members     map[uuid.UUID][]*Member
	invitations map[uuid.UUID][]*Invitation
	deleted     []uuid.UUID
	removed     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		groups:      map[uuid.UUID]*Group{},
		members:     map[uuid.UUID][]*Member{},
		invitations: map[uuid.UUID][]*Invitation{},
	}
}

func (f *fakeRepo) CreateWithCreator(_ context.Context, name string, creatorID uuid.UUID) (*Group, error) {
	g := &Group{ID: uuid.New(), Name: name, CreatedBy: creatorID}
	f.groups[g.ID] = g
	f.members[g.ID] = append(f.members[g.ID], &Member{
		ID: uuid.New(), GroupID: g.ID, UserID: creatorID, IsAdmin: true,
	})
	return g, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Group, error) {
	return f.groups[id], nil
}

func (f *fakeRepo) ListByUser(context.Context, uuid.UUID, int, int) ([]*Group, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.groups, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) Members(_ context.Context, groupID uuid.UUID) ([]*Member, error) {
	return f.members[groupID], nil
}

func (f *fakeRepo) GetMember(_ context.Context, groupID, userID uuid.UUID) (*Member, error) {
	for _, m := range f.members[groupID] {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) AddMember(_ context.Context, groupID, userID uuid.UUID, isAdmin bool) (*Member, error) {
	m := &Member{ID: uuid.New(), GroupID: groupID, UserID: userID, IsAdmin: isAdmin}
	f.members[groupID] = append(f.members[groupID], m)
	return m, nil
}

func (f *fakeRepo) RemoveMember(_ context.Context, groupID, userID uuid.UUID) (bool, error) {
	for i, m := range f.members[groupID] {
		if m.UserID == userID {
			f.members[groupID] = append(f.members[groupID][:i], f.members[groupID][i+1:]...)
			f.removed++
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) SetMemberAdmin(_ context.Context, groupID, userID uuid.UUID, isAdmin bool) (bool, error) {
	for _, m := range f.members[groupID] {
		if m.UserID == userID {
			m.IsAdmin = isAdmin
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Invitations(_ context.Context, groupID uuid.UUID) ([]*Invitation, error) {
	return f.invitations[groupID], nil
}

func (f *fakeRepo) GetInvitationByEmail(_ context.Context, groupID uuid.UUID, email string) (*Invitation, error) {
	for _, inv := range f.invitations[groupID] {
		if inv.Email == email {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CreateInvitation(_ context.Context, inv *Invitation) error {
	inv.ID = uuid.New()
	f.invitations[inv.GroupID] = append(f.invitations[inv.GroupID], inv)
	return nil
}

type fakeUsers struct {
	byEmail map[string]uuid.UUID
}

func (f *fakeUsers) LookupByEmail(_ context.Context, email string) (uuid.UUID, string, bool, error) {
	id, ok := f.byEmail[email]
	return id, email, ok, nil
}

func setup() (*Service, *fakeRepo, *fakeUsers) {
	repo := newFakeRepo()
	users := &fakeUsers{byEmail: map[string]uuid.UUID{}}
	return NewService(repo, users), repo, users
}

func TestCreateResolvesEmails(t *testing.T) {
	svc, repo, users := setup()
	creator := uuid.New()
	existing := uuid.New()
	users.byEmail["bob@example.com"] = existing

	g, results, err := svc.Create(context.Background(), creator, &CreateGroupRequest{
		Name:    "Trip",
		Members: []string{"bob@example.com", "carol@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "added", results[0].Status)
	assert.Equal(t, "invited", results[1].Status)

	members, _ := repo.Members(context.Background(), g.ID)
	require.Len(t, members, 2) // creator + bob
	invitations, _ := repo.Invitations(context.Background(), g.ID)
	require.Len(t, invitations, 1)
	assert.Equal(t, "carol@example.com", invitations[0].Email)
	assert.Equal(t, InvitationPending, invitations[0].Status)
	assert.Equal(t, "carol", invitations[0].Name)
}

func TestCreateReportsDuplicates(t *testing.T) {
	svc, _, users := setup()
	creator := uuid.New()
	users.byEmail["bob@example.com"] = uuid.New()

	_, results, err := svc.Create(context.Background(), creator, &CreateGroupRequest{
		Name:    "Trip",
		Members: []string{"bob@example.com", "bob@example.com", "carol@example.com", "carol@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "added", results[0].Status)
	assert.Equal(t, "already_member", results[1].Status)
	assert.Equal(t, "invited", results[2].Status)
	assert.Equal(t, "already_invited", results[3].Status)
}

func TestCreateRequiresName(t *testing.T) {
	svc, _, _ := setup()
	_, _, err := svc.Create(context.Background(), uuid.New(), &CreateGroupRequest{Name: "  "})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestDeleteOnlyByCreator(t *testing.T) {
	svc, repo, _ := setup()
	creator, member := uuid.New(), uuid.New()

	g, _, err := svc.Create(context.Background(), creator, &CreateGroupRequest{Name: "Trip"})
	require.NoError(t, err)
	_, err = repo.AddMember(context.Background(), g.ID, member, true)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), member, g.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization), "got %v", err)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.Delete(context.Background(), creator, g.ID))
	assert.Len(t, repo.deleted, 1)
}

func TestRemoveMemberAuthorization(t *testing.T) {
	svc, repo, _ := setup()
	creator, admin, alice, bob := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	g, _, err := svc.Create(context.Background(), creator, &CreateGroupRequest{Name: "Trip"})
	require.NoError(t, err)
	_, _ = repo.AddMember(context.Background(), g.ID, admin, true)
	_, _ = repo.AddMember(context.Background(), g.ID, alice, false)
	_, _ = repo.AddMember(context.Background(), g.ID, bob, false)

	// A plain member cannot remove someone else, and nothing changes.
	err = svc.RemoveMember(context.Background(), alice, g.ID, bob)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization), "got %v", err)
	assert.Equal(t, 0, repo.removed)

	// Nobody can remove the creator.
	err = svc.RemoveMember(context.Background(), admin, g.ID, creator)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization), "got %v", err)

	// Members can remove themselves.
	require.NoError(t, svc.RemoveMember(context.Background(), bob, g.ID, bob))

	// Admins can remove others.
	require.NoError(t, svc.RemoveMember(context.Background(), admin, g.ID, alice))
	assert.Equal(t, 2, repo.removed)
}

func TestSetAdminOnlyByCreator(t *testing.T) {
	svc, repo, _ := setup()
	creator, admin, alice := uuid.New(), uuid.New(), uuid.New()

	g, _, err := svc.Create(context.Background(), creator, &CreateGroupRequest{Name: "Trip"})
	require.NoError(t, err)
	_, _ = repo.AddMember(context.Background(), g.ID, admin, true)
	_, _ = repo.AddMember(context.Background(), g.ID, alice, false)

	err = svc.SetAdmin(context.Background(), admin, g.ID, alice, true)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization), "got %v", err)

	require.NoError(t, svc.SetAdmin(context.Background(), creator, g.ID, alice, true))
	m, _ := repo.GetMember(context.Background(), g.ID, alice)
	assert.True(t, m.IsAdmin)
}

func TestGetRequiresMembership(t *testing.T) {
	svc, _, _ := setup()
	creator, outsider := uuid.New(), uuid.New()

	g, _, err := svc.Create(context.Background(), creator, &CreateGroupRequest{Name: "Trip"})
	require.NoError(t, err)

	_, _, _, err = svc.Get(context.Background(), outsider, g.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization), "got %v", err)

	_, _, _, err = svc.Get(context.Background(), creator, g.ID)
	assert.NoError(t, err)

	_, _, _, err = svc.Get(context.Background(), creator, uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "got %v", err)
}

func TestAddParticipantRequiresAdmin(t *testing.T) {
	svc, repo, _ := setup()
	creator, alice := uuid.New(), uuid.New()

	g, _, err := svc.Create(context.Background(), creator, &CreateGroupRequest{Name: "Trip"})
	require.NoError(t, err)
	_, _ = repo.AddMember(context.Background(), g.ID, alice, false)

	_, err = svc.AddParticipant(context.Background(), alice, g.ID, &AddParticipantRequest{Email: "x@example.com"})
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization), "got %v", err)

	result, err := svc.AddParticipant(context.Background(), creator, g.ID, &AddParticipantRequest{Email: "x@example.com", Name: "Xavier"})
	require.NoError(t, err)
	assert.Equal(t, "invited", result.Status)

	invitations, _ := repo.Invitations(context.Background(), g.ID)
	require.Len(t, invitations, 1)
	assert.Equal(t, "Xavier", invitations[0].Name)
}

func TestAddParticipantValidatesEmail(t *testing.T) {
	svc, _, _ := setup()
	creator := uuid.New()

	g, _, err := svc.Create(context.Background(), creator, &CreateGroupRequest{Name: "Trip"})
	require.NoError(t, err)

	_, err = svc.AddParticipant(context.Background(), creator, g.ID, &AddParticipantRequest{Email: "not-an-email"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
}
