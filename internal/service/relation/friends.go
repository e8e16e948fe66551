package relation

import (
	"context"

	"harmony_server/internal/dto/respond"
	"harmony_server/internal/infrastructure/mq"
	"harmony_server/pkg/errorx"

	"go.uber.org/zap"
)

// ListFriends 用户的好友列表，关系记录的两个方向都计入
func (s *Service) ListFriends(ctx context.Context, email string) ([]respond.FriendRespond, error) {
	repos := s.repos.WithContext(ctx)
	user, err := findActor(repos, email)
	if err != nil {
		return nil, err
	}

	key := friendListKey(user.ID)
	var cached []respond.FriendRespond
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}
	gen := s.generation(key)

	ids, err := repos.UserLink.FriendIds(user.ID)
	if err != nil {
		return nil, err
	}
	users, err := repos.User.FindByIds(ids)
	if err != nil {
		return nil, err
	}
	list := make([]respond.FriendRespond, 0, len(users))
	for _, u := range users {
		list = append(list, respond.FriendRespond{Email: u.Email, Username: u.Username})
	}

	s.cacheSet(key, list, gen)
	return list, nil
}

// RemoveFriend 解除好友关系，之后双方可以重新发起申请
func (s *Service) RemoveFriend(ctx context.Context, email, friendEmail string) error {
	repos := s.repos.WithContext(ctx)
	user, err := findActor(repos, email)
	if err != nil {
		return err
	}
	friend, err := findTarget(repos, friendEmail)
	if err != nil {
		return err
	}

	removed, err := repos.UserLink.SoftDelete(user.ID, friend.ID)
	if err != nil {
		return err
	}
	if !removed {
		return errorx.New(errorx.CodeNotFound, "Not friends with this user")
	}

	zap.L().Info("friend removed", zap.Uint("user", user.ID), zap.Uint("friend", friend.ID))
	s.invalidate(friendListKey(user.ID), friendListKey(friend.ID))
	s.publish(mq.RelationEvent{
		Type:       mq.EventFriendRemoved,
		SenderId:   user.ID,
		ReceiverId: friend.ID,
	})
	return nil
}
