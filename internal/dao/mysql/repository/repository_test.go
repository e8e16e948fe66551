package repository_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"harmony_server/internal/config"
	"harmony_server/internal/dao/mysql"
	"harmony_server/internal/dao/mysql/repository"
	"harmony_server/internal/model"
	"harmony_server/pkg/enum/request"
	"harmony_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	repos, db, err := mysql.Init(&config.MysqlConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repos
}

func createUser(t *testing.T, repos *repository.Repositories, email string) *model.UserInfo {
	t.Helper()
	u := &model.UserInfo{Email: email, Username: strings.Split(email, "@")[0]}
	require.NoError(t, repos.User.Create(u))
	return u
}

func TestUserRepository(t *testing.T) {
	repos := newRepos(t)
	alice := createUser(t, repos, "alice@example.com")

	got, err := repos.User.FindByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = repos.User.FindByEmail("nobody@example.com")
	assert.True(t, errorx.IsNotFound(err))

	err = repos.User.Create(&model.UserInfo{Email: "alice@example.com", Username: "again"})
	assert.True(t, errorx.HasCode(err, errorx.CodeDuplicate), "got %v", err)
}

func TestTeamMembership(t *testing.T) {
	repos := newRepos(t)
	alice := createUser(t, repos, "alice@example.com")
	bob := createUser(t, repos, "bob@example.com")

	team := &model.Team{Uid: "T1", Name: "Harmony", OwnerId: alice.ID}
	require.NoError(t, repos.Team.Create(team))

	owned, err := repos.Team.FindOwnedBy(alice.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)

	ok, err := repos.TeamLink.Exists(team.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repos.TeamLink.Create(&model.TeamLink{TeamId: team.ID, UserId: bob.ID}))
	ok, err = repos.TeamLink.Exists(team.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	joined, err := repos.Team.FindJoinedBy(bob.ID)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, "T1", joined[0].Uid)

	err = repos.TeamLink.Create(&model.TeamLink{TeamId: team.ID, UserId: bob.ID})
	assert.True(t, errorx.HasCode(err, errorx.CodeDuplicate), "got %v", err)
}

func TestUserLinkBothOrderings(t *testing.T) {
	repos := newRepos(t)
	alice := createUser(t, repos, "alice@example.com")
	bob := createUser(t, repos, "bob@example.com")

	require.NoError(t, repos.UserLink.Create(&model.UserLink{UserId1: alice.ID, UserId2: bob.ID}))

	ok, err := repos.UserLink.Exists(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	err = repos.UserLink.Create(&model.UserLink{UserId1: bob.ID, UserId2: alice.ID})
	assert.True(t, errorx.HasCode(err, errorx.CodeDuplicate), "got %v", err)

	ids, err := repos.UserLink.FriendIds(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, ids)

	removed, err := repos.UserLink.SoftDelete(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	ok, err = repos.UserLink.Exists(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// 解除后可以重新建立关系
	require.NoError(t, repos.UserLink.Create(&model.UserLink{UserId1: bob.ID, UserId2: alice.ID}))
}

func TestRequestClaimIsOneShot(t *testing.T) {
	repos := newRepos(t)
	alice := createUser(t, repos, "alice@example.com")
	bob := createUser(t, repos, "bob@example.com")

	key := model.FriendPendingKey(alice.ID, bob.ID)
	req := &model.Request{
		Uid:        "R1",
		Kind:       request.KindFriend,
		SenderId:   alice.ID,
		ReceiverId: bob.ID,
		Status:     request.StatusPending,
		PendingKey: &key,
	}
	require.NoError(t, repos.Request.Create(req))

	pending, err := repos.Request.HasPending(model.FriendPendingKey(bob.ID, alice.ID))
	require.NoError(t, err)
	assert.True(t, pending)

	dupKey := model.FriendPendingKey(bob.ID, alice.ID)
	err = repos.Request.Create(&model.Request{
		Uid: "R2", Kind: request.KindFriend, SenderId: bob.ID, ReceiverId: alice.ID,
		Status: request.StatusPending, PendingKey: &dupKey,
	})
	assert.True(t, errorx.HasCode(err, errorx.CodeDuplicate), "got %v", err)

	ok, err := repos.Request.Claim(req.ID, request.StatusDeclined, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Request.Claim(req.ID, request.StatusAccepted, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repos.Request.FindPendingByUid("R1")
	assert.True(t, errorx.IsNotFound(err))

	pending, err = repos.Request.HasPending(key)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestListIncomingOrderAndSender(t *testing.T) {
	repos := newRepos(t)
	alice := createUser(t, repos, "alice@example.com")
	carol := createUser(t, repos, "carol@example.com")
	bob := createUser(t, repos, "bob@example.com")

	for i, sender := range []*model.UserInfo{carol, alice} {
		key := model.FriendPendingKey(sender.ID, bob.ID)
		require.NoError(t, repos.Request.Create(&model.Request{
			Uid:        fmt.Sprintf("R%d", i),
			Kind:       request.KindFriend,
			SenderId:   sender.ID,
			ReceiverId: bob.ID,
			Status:     request.StatusPending,
			PendingKey: &key,
		}))
	}

	rows, err := repos.Request.ListIncoming(bob.ID, request.KindFriend)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "R0", rows[0].Uid)
	assert.Equal(t, "carol", rows[0].SenderUsername)
	assert.Equal(t, "alice@example.com", rows[1].SenderEmail)
	assert.Equal(t, request.KindFriend, rows[1].Kind)

	teamRows, err := repos.Request.ListIncoming(bob.ID, request.KindTeam)
	require.NoError(t, err)
	assert.Empty(t, teamRows)
}

func TestTransactionRollsBack(t *testing.T) {
	repos := newRepos(t)

	err := repos.Transaction(func(tx *repository.Repositories) error {
		require.NoError(t, tx.User.Create(&model.UserInfo{Email: "temp@example.com", Username: "temp"}))
		return errorx.ErrServerBusy
	})
	assert.ErrorIs(t, err, errorx.ErrServerBusy)

	_, err = repos.User.FindByEmail("temp@example.com")
	assert.True(t, errorx.IsNotFound(err))
}
