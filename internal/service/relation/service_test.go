package relation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"harmony_server/internal/config"
	"harmony_server/internal/dao/mysql"
	"harmony_server/internal/dao/mysql/repository"
	"harmony_server/internal/infrastructure/mq"
	"harmony_server/internal/model"
	"harmony_server/internal/service/notify"
	"harmony_server/pkg/enum/request"
	"harmony_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sent struct {
	target  string
	event   string
	payload any
}

// recordingNotifier 只把 online 中的目标视为在线
type recordingNotifier struct {
	mu     sync.Mutex
	online map[string]bool
	sent   []sent
}

func (n *recordingNotifier) Notify(target, event string, payload any) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.online[target] {
		return false
	}
	n.sent = append(n.sent, sent{target, event, payload})
	return true
}

func (n *recordingNotifier) NotifyRoom(string, string, any, string) int { return 0 }

func (n *recordingNotifier) events(target string) []sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sent
	for _, s := range n.sent {
		if s.target == target {
			out = append(out, s)
		}
	}
	return out
}

// memoryCache 同步执行任务的内存缓存
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string]string{}} }

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) DeleteByPattern(context.Context, string) error { return nil }

func (c *memoryCache) SubmitTask(action func()) { action() }

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// heldCache 任务先排队，由测试决定执行时机和顺序
type heldCache struct {
	*memoryCache
	mu    sync.Mutex
	tasks []func()
	onSet func(key string)
}

func newHeldCache() *heldCache { return &heldCache{memoryCache: newMemoryCache()} }

func (c *heldCache) SubmitTask(action func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, action)
}

func (c *heldCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.onSet != nil {
		c.onSet(key)
	}
	return c.memoryCache.Set(ctx, key, value, ttl)
}

// runHeld 执行并清空已排队的任务
func (c *heldCache) runHeld() {
	c.mu.Lock()
	tasks := c.tasks
	c.tasks = nil
	c.mu.Unlock()
	for _, task := range tasks {
		task()
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []mq.RelationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e mq.RelationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	db        *gorm.DB
	repos     *repository.Repositories
	notifier  *recordingNotifier
	cache     *memoryCache
	publisher *recordingPublisher
	svc       *Service

	alice, bob, carol *model.UserInfo
	team              *model.Team
}

func newFixture(t *testing.T) *fixture {
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

	f := &fixture{
		db:        db,
		repos:     repos,
		notifier:  &recordingNotifier{online: map[string]bool{}},
		cache:     newMemoryCache(),
		publisher: &recordingPublisher{},
	}
	f.svc = NewRelationService(repos, f.notifier, f.cache, f.publisher, nil)

	f.alice = f.user(t, "alice@example.com", "alice")
	f.bob = f.user(t, "bob@example.com", "bob")
	f.carol = f.user(t, "carol@example.com", "carol")
	f.team = &model.Team{Uid: "T1", Name: "Harmony", OwnerId: f.alice.ID}
	require.NoError(t, repos.Team.Create(f.team))
	return f
}

func (f *fixture) user(t *testing.T, email, name string) *model.UserInfo {
	t.Helper()
	u := &model.UserInfo{Email: email, Username: name}
	require.NoError(t, f.repos.User.Create(u))
	return u
}

func (f *fixture) pendingCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Request{}).Where("status = ?", request.StatusPending).Count(&n).Error)
	return n
}

func TestFriendRequestAcceptFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.notifier.online["alice@example.com"] = true
	f.notifier.online["bob@example.com"] = true

	uid, err := f.svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	got := f.notifier.events("bob@example.com")
	require.Len(t, got, 1)
	assert.Equal(t, notify.EventNewFriendRequest, got[0].event)
	assert.Equal(t, notify.UserPayload{Username: "alice"}, got[0].payload)

	incoming, err := f.svc.ListIncoming(ctx, "bob@example.com", request.KindFriend)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, uid, incoming[0].Uid)
	assert.Equal(t, "alice@example.com", incoming[0].SenderEmail)

	require.NoError(t, f.svc.ResolveRequest(ctx, "bob@example.com", uid, true))

	aliceEvents := f.notifier.events("alice@example.com")
	require.Len(t, aliceEvents, 1)
	assert.Equal(t, notify.EventAcceptFriendRequest, aliceEvents[0].event)
	assert.Equal(t, notify.UserPayload{Username: "bob"}, aliceEvents[0].payload)
	bobEvents := f.notifier.events("bob@example.com")
	require.Len(t, bobEvents, 2)
	assert.Equal(t, notify.EventAcceptFriendRequest, bobEvents[1].event)

	friends, err := f.svc.ListFriends(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob@example.com", friends[0].Email)

	incoming, err = f.svc.ListIncoming(ctx, "bob@example.com", request.KindFriend)
	require.NoError(t, err)
	assert.Empty(t, incoming)

	_, err = f.svc.CreateFriendRequest(ctx, "bob@example.com", "alice@example.com")
	assert.Equal(t, errorx.CodeAlreadyFriends, errorx.GetCode(err))
	assert.Equal(t, "Already friends with this user", err.Error())
}

func TestFriendRequestDuplicatesInBothDirections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	require.NoError(t, err)

	_, err = f.svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	assert.Equal(t, errorx.CodeAlreadyPending, errorx.GetCode(err))
	_, err = f.svc.CreateFriendRequest(ctx, "bob@example.com", "alice@example.com")
	assert.Equal(t, errorx.CodeAlreadyPending, errorx.GetCode(err))

	assert.Equal(t, int64(1), f.pendingCount(t))
}

func TestFriendRequestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateFriendRequest(ctx, "alice@example.com", "nobody@example.com")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	_, err = f.svc.CreateFriendRequest(ctx, "alice@example.com", "alice@example.com")
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = f.svc.CreateFriendRequest(ctx, "ghost@example.com", "bob@example.com")
	assert.Equal(t, errorx.CodeUnknownIdentity, errorx.GetCode(err))
}

func TestDeclineNotifiesSenderAndLeavesNoLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.notifier.online["alice@example.com"] = true

	uid, err := f.svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	require.NoError(t, err)
	require.NoError(t, f.svc.ResolveRequest(ctx, "bob@example.com", uid, false))

	got := f.notifier.events("alice@example.com")
	require.Len(t, got, 1)
	assert.Equal(t, notify.EventRejectFriendRequest, got[0].event)

	ok, err := f.repos.UserLink.Exists(f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	var stored model.Request
	require.NoError(t, f.db.Unscoped().First(&stored, "uid = ?", uid).Error)
	assert.Equal(t, request.StatusDeclined, stored.Status)
	assert.NotNil(t, stored.ResolvedAt)
	assert.True(t, stored.DeletedAt.Valid)
	assert.Nil(t, stored.PendingKey)

	// 拒绝后可以重新申请
	_, err = f.svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	assert.NoError(t, err)
}

func TestResolveTwiceReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid, err := f.svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	require.NoError(t, err)
	require.NoError(t, f.svc.ResolveRequest(ctx, "bob@example.com", uid, true))

	err = f.svc.ResolveRequest(ctx, "bob@example.com", uid, true)
	assert.True(t, errorx.IsNotFound(err))
	err = f.svc.ResolveRequest(ctx, "bob@example.com", uid, false)
	assert.True(t, errorx.IsNotFound(err))

	err = f.svc.ResolveRequest(ctx, "bob@example.com", "no-such-uid", true)
	assert.True(t, errorx.IsNotFound(err))
}

func TestOnlyReceiverCanResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid, err := f.svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	require.NoError(t, err)

	for _, email := range []string{"alice@example.com", "carol@example.com"} {
		err = f.svc.ResolveRequest(ctx, email, uid, true)
		assert.True(t, errorx.IsNotFound(err), email)
	}
	assert.Equal(t, int64(1), f.pendingCount(t))
}

func TestConcurrentResolveSucceedsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid, err := f.svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	require.NoError(t, err)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.svc.ResolveRequest(ctx, "bob@example.com", uid, i%2 == 0)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errorx.IsNotFound(err), "got %v", err)
	}
	assert.Equal(t, 1, ok)
}

func TestTeamRequestFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.notifier.online["bob@example.com"] = true

	uid, err := f.svc.CreateTeamRequest(ctx, "alice@example.com", "bob@example.com", "T1")
	require.NoError(t, err)

	got := f.notifier.events("bob@example.com")
	require.Len(t, got, 1)
	assert.Equal(t, notify.EventNewTeamRequest, got[0].event)
	assert.Equal(t, notify.TeamPayload{Team: "Harmony"}, got[0].payload)

	incoming, err := f.svc.ListIncoming(ctx, "bob@example.com", request.KindTeam)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "Harmony", incoming[0].TeamName)
	assert.Equal(t, "T1", incoming[0].TeamUid)

	_, err = f.svc.CreateTeamRequest(ctx, "alice@example.com", "bob@example.com", "T1")
	assert.Equal(t, errorx.CodeAlreadyInvited, errorx.GetCode(err))
	assert.Equal(t, "User already invited to team", err.Error())

	require.NoError(t, f.svc.ResolveRequest(ctx, "bob@example.com", uid, true))
	member, err := f.repos.TeamLink.Exists(f.team.ID, f.bob.ID)
	require.NoError(t, err)
	assert.True(t, member)

	_, err = f.svc.CreateTeamRequest(ctx, "alice@example.com", "bob@example.com", "T1")
	assert.Equal(t, errorx.CodeAlreadyMember, errorx.GetCode(err))

	// 成员也可以邀请他人
	_, err = f.svc.CreateTeamRequest(ctx, "bob@example.com", "carol@example.com", "T1")
	assert.NoError(t, err)
}

func TestTeamRequestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTeamRequest(ctx, "alice@example.com", "alice@example.com", "T1")
	assert.Equal(t, errorx.CodeAlreadyMember, errorx.GetCode(err))

	_, err = f.svc.CreateTeamRequest(ctx, "alice@example.com", "bob@example.com", "T404")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	_, err = f.svc.CreateTeamRequest(ctx, "alice@example.com", "nobody@example.com", "T1")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	// 非成员不能以团队名义发邀请
	_, err = f.svc.CreateTeamRequest(ctx, "carol@example.com", "bob@example.com", "T1")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestConcurrentTeamRequestsExactlyOneSucceeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateTeamRequest(ctx, "alice@example.com", "bob@example.com", "T1")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, errorx.CodeAlreadyInvited, errorx.GetCode(err), "got %v", err)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(1), f.pendingCount(t))
}

func TestConcurrentFriendRequestsBothDirections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, errs[i] = f.svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
			} else {
				_, errs[i] = f.svc.CreateFriendRequest(ctx, "bob@example.com", "alice@example.com")
			}
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, errorx.CodeAlreadyPending, errorx.GetCode(err), "got %v", err)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(1), f.pendingCount(t))
}

func TestAcceptRollsBackWhenLinkExists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid, err := f.svc.CreateTeamRequest(ctx, "alice@example.com", "bob@example.com", "T1")
	require.NoError(t, err)

	// 成员关系在申请处理前被其他途径建立
	require.NoError(t, f.repos.TeamLink.Create(&model.TeamLink{TeamId: f.team.ID, UserId: f.bob.ID}))

	err = f.svc.ResolveRequest(ctx, "bob@example.com", uid, true)
	assert.Equal(t, errorx.CodeAlreadyMember, errorx.GetCode(err))

	req, err := f.repos.Request.FindPendingByUid(uid)
	require.NoError(t, err)
	assert.Equal(t, request.StatusPending, req.Status)
	assert.Nil(t, req.ResolvedAt)
}

func TestAcceptRollsBackOnStoreFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid, err := f.svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	require.NoError(t, err)

	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_links", func(tx *gorm.DB) {
		if tx.Statement.Table == "users_links" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	err = f.svc.ResolveRequest(ctx, "bob@example.com", uid, true)
	require.Error(t, err)
	assert.Equal(t, errorx.CodeDBError, errorx.GetCode(err))

	req, err := f.repos.Request.FindPendingByUid(uid)
	require.NoError(t, err)
	assert.Equal(t, request.StatusPending, req.Status)

	require.NoError(t, f.db.Callback().Create().Remove("test:fail_links"))
	require.NoError(t, f.svc.ResolveRequest(ctx, "bob@example.com", uid, true))
}

func TestRemoveFriend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid, err := f.svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	require.NoError(t, err)
	require.NoError(t, f.svc.ResolveRequest(ctx, "bob@example.com", uid, true))

	require.NoError(t, f.svc.RemoveFriend(ctx, "bob@example.com", "alice@example.com"))
	err = f.svc.RemoveFriend(ctx, "bob@example.com", "alice@example.com")
	assert.True(t, errorx.IsNotFound(err))

	friends, err := f.svc.ListFriends(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Empty(t, friends)

	_, err = f.svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	assert.NoError(t, err)

	types := make([]string, 0)
	for _, e := range f.publisher.events {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, mq.EventFriendRemoved)
}

func TestListsAreCachedAndInvalidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListIncoming(ctx, "bob@example.com", request.KindFriend)
	require.NoError(t, err)
	key := incomingKey(request.KindFriend, f.bob.ID)
	assert.True(t, f.cache.has(key))

	uid, err := f.svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, f.cache.has(key))

	list, err := f.svc.ListIncoming(ctx, "bob@example.com", request.KindFriend)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.svc.ListFriends(ctx, "alice@example.com")
	require.NoError(t, err)
	require.True(t, f.cache.has(friendListKey(f.alice.ID)))

	require.NoError(t, f.svc.ResolveRequest(ctx, "bob@example.com", uid, true))
	assert.False(t, f.cache.has(key))
	assert.False(t, f.cache.has(friendListKey(f.alice.ID)))
}

func TestListIncomingRejectsUnknownKind(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListIncoming(context.Background(), "bob@example.com", request.Kind("addEnemy"))
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestEventsPublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid, err := f.svc.CreateTeamRequest(ctx, "alice@example.com", "bob@example.com", "T1")
	require.NoError(t, err)
	require.NoError(t, f.svc.ResolveRequest(ctx, "bob@example.com", uid, false))

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, mq.EventRequestCreated, f.publisher.events[0].Type)
	resolved := f.publisher.events[1]
	assert.Equal(t, mq.EventRequestResolved, resolved.Type)
	assert.Equal(t, string(request.StatusDeclined), resolved.Status)
	assert.Equal(t, "T1", resolved.TeamUid)
}

func TestLateRefillDoesNotResurrectResolvedRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := newHeldCache()
	svc := NewRelationService(f.repos, f.notifier, cache, f.publisher, nil)

	uid, err := svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	require.NoError(t, err)

	// 回填任务被挂起，随后的拒绝同步失效
	list, err := svc.ListIncoming(ctx, "bob@example.com", request.KindFriend)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, svc.ResolveRequest(ctx, "bob@example.com", uid, false))

	cache.runHeld()
	key := incomingKey(request.KindFriend, f.bob.ID)
	assert.False(t, cache.has(key))

	list, err = svc.ListIncoming(ctx, "bob@example.com", request.KindFriend)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRefillRevokedWhenInvalidatedDuringSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := newHeldCache()
	svc := NewRelationService(f.repos, f.notifier, cache, f.publisher, nil)

	_, err := svc.ListFriends(ctx, "alice@example.com")
	require.NoError(t, err)

	// 失效发生在回填写入之前的瞬间
	key := friendListKey(f.alice.ID)
	cache.onSet = func(k string) {
		if k == key {
			svc.invalidate(key)
		}
	}
	cache.runHeld()
	assert.False(t, cache.has(key))
}

func TestInvalidateIsSynchronous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := newHeldCache()
	svc := NewRelationService(f.repos, f.notifier, cache, f.publisher, nil)

	key := incomingKey(request.KindFriend, f.bob.ID)
	require.NoError(t, cache.memoryCache.Set(ctx, key, "[]", time.Minute))

	_, err := svc.CreateFriendRequest(ctx, "alice@example.com", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, cache.has(key))
}
